package stream

import (
	"encoding/json"
	"fmt"

	id "handover/pkg/domain"
	audit "handover/pkg/platform/audit"
)

// Decode parses a record value written by Publisher back into an entry.
func Decode(value []byte) (audit.Entry, error) {
	var m message
	if err := json.Unmarshal(value, &m); err != nil {
		return audit.Entry{}, fmt.Errorf("decode audit message: %w", err)
	}
	logID, err := id.ParseLogID(m.LogID)
	if err != nil {
		return audit.Entry{}, err
	}
	transferID, err := id.ParseTransferID(m.TransferID)
	if err != nil {
		return audit.Entry{}, err
	}
	e := audit.Entry{
		LogID:       logID,
		Type:        audit.EntryType(m.Type),
		TransferID:  transferID,
		RefID:       m.RefID,
		Action:      audit.Action(m.Action),
		DetailsJSON: m.Details,
		CreatedAt:   m.CreatedAt,
	}
	if m.ActorID != nil {
		actor, err := id.ParseUserID(*m.ActorID)
		if err != nil {
			return audit.Entry{}, err
		}
		e.ActorID = &actor
	}
	return e, nil
}
