// Package memory holds in-process transfer, step and dispute stores for
// development and tests. Use with ShardedTx to get rollback on failure.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"handover/internal/transfer/models"
	id "handover/pkg/domain"
	"handover/pkg/platform/sentinel"
	txcontext "handover/pkg/platform/tx"
)

type TransferStore struct {
	mu        sync.RWMutex
	transfers map[id.TransferID]models.Transfer
}

func NewTransferStore() *TransferStore {
	return &TransferStore{transfers: make(map[id.TransferID]models.Transfer)}
}

func (s *TransferStore) Create(ctx context.Context, t *models.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transfers[t.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.transfers[t.ID] = *t
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.transfers, t.ID)
	})
	return nil
}

func (s *TransferStore) FindByID(_ context.Context, transferID id.TransferID) (*models.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transfers[transferID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &t, nil
}

// ListByIDs returns the known transfers among transferIDs in creation order.
func (s *TransferStore) ListByIDs(_ context.Context, transferIDs []id.TransferID) ([]*models.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Transfer, 0, len(transferIDs))
	seen := make(map[id.TransferID]struct{}, len(transferIDs))
	for _, transferID := range transferIDs {
		if _, dup := seen[transferID]; dup {
			continue
		}
		seen[transferID] = struct{}{}
		if t, ok := s.transfers[transferID]; ok {
			out = append(out, &t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *TransferStore) UpdateStatus(ctx context.Context, transferID id.TransferID, expectedVersion int64, next models.Status, now time.Time) (*models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.transfers[transferID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if prev.Version != expectedVersion {
		return nil, sentinel.ErrConflict
	}
	updated := prev
	updated.Status = next
	updated.UpdatedAt = now
	updated.Version++
	s.transfers[transferID] = updated
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.transfers[transferID] = prev
	})
	return &updated, nil
}

// StepStore keeps steps per transfer in append order.
type StepStore struct {
	mu         sync.RWMutex
	byID       map[id.StepID]models.VerificationStep
	byTransfer map[id.TransferID][]id.StepID
}

func NewStepStore() *StepStore {
	return &StepStore{
		byID:       make(map[id.StepID]models.VerificationStep),
		byTransfer: make(map[id.TransferID][]id.StepID),
	}
}

func (s *StepStore) Append(ctx context.Context, step *models.VerificationStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[step.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.byID[step.ID] = *step
	s.byTransfer[step.TransferID] = append(s.byTransfer[step.TransferID], step.ID)
	txcontext.OnRollback(ctx, func() { s.remove(step.TransferID, step.ID) })
	return nil
}

func (s *StepStore) remove(transferID id.TransferID, stepID id.StepID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, stepID)
	ids := s.byTransfer[transferID]
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] == stepID {
			s.byTransfer[transferID] = append(ids[:i:i], ids[i+1:]...)
			return
		}
	}
}

func (s *StepStore) FindByID(_ context.Context, stepID id.StepID) (*models.VerificationStep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	step, ok := s.byID[stepID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &step, nil
}

func (s *StepStore) ListByTransfer(_ context.Context, transferID id.TransferID) ([]*models.VerificationStep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byTransfer[transferID]
	out := make([]*models.VerificationStep, 0, len(ids))
	for _, stepID := range ids {
		step := s.byID[stepID]
		out = append(out, &step)
	}
	return out, nil
}

// DisputeStore allows at most one open dispute per transfer.
type DisputeStore struct {
	mu         sync.RWMutex
	byID       map[id.DisputeID]models.Dispute
	byTransfer map[id.TransferID][]id.DisputeID
}

func NewDisputeStore() *DisputeStore {
	return &DisputeStore{
		byID:       make(map[id.DisputeID]models.Dispute),
		byTransfer: make(map[id.TransferID][]id.DisputeID),
	}
}

func (s *DisputeStore) Create(ctx context.Context, d *models.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[d.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	for _, disputeID := range s.byTransfer[d.TransferID] {
		if existing := s.byID[disputeID]; existing.IsOpen() {
			return sentinel.ErrConflict
		}
	}
	s.byID[d.ID] = *d
	s.byTransfer[d.TransferID] = append(s.byTransfer[d.TransferID], d.ID)
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.byID, d.ID)
		ids := s.byTransfer[d.TransferID]
		for i := len(ids) - 1; i >= 0; i-- {
			if ids[i] == d.ID {
				s.byTransfer[d.TransferID] = append(ids[:i:i], ids[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (s *DisputeStore) FindByID(_ context.Context, disputeID id.DisputeID) (*models.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[disputeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &d, nil
}

func (s *DisputeStore) ListByTransfer(_ context.Context, transferID id.TransferID) ([]*models.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byTransfer[transferID]
	out := make([]*models.Dispute, 0, len(ids))
	for _, disputeID := range ids {
		d := s.byID[disputeID]
		out = append(out, &d)
	}
	return out, nil
}

func (s *DisputeStore) Close(ctx context.Context, d *models.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.byID[d.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !prev.IsOpen() {
		return sentinel.ErrConflict
	}
	s.byID[d.ID] = *d
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.byID[d.ID] = prev
	})
	return nil
}
