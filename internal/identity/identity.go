// Package identity is the boundary to the external role provider.
package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	id "handover/pkg/domain"
)

// Role is the capability an actor holds on the platform.
type Role string

const (
	RoleBuyer     Role = "BUYER"
	RoleSeller    Role = "SELLER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
	RoleNone      Role = "NONE"
)

// ParseRole maps unknown values to RoleNone.
func ParseRole(s string) Role {
	switch r := Role(s); r {
	case RoleBuyer, RoleSeller, RoleModerator, RoleAdmin:
		return r
	default:
		return RoleNone
	}
}

// IsReviewer reports moderator or admin capability.
func (r Role) IsReviewer() bool {
	return r == RoleModerator || r == RoleAdmin
}

func (r Role) String() string { return string(r) }

// Provider resolves an actor's role.
type Provider interface {
	RoleOf(ctx context.Context, actorID id.UserID) (Role, error)
}

// StaticProvider serves roles from memory. Unknown actors are RoleNone.
type StaticProvider struct {
	mu    sync.RWMutex
	roles map[id.UserID]Role
}

func NewStaticProvider(roles map[id.UserID]Role) *StaticProvider {
	p := &StaticProvider{roles: make(map[id.UserID]Role, len(roles))}
	for k, v := range roles {
		p.roles[k] = v
	}
	return p
}

func (p *StaticProvider) Set(actorID id.UserID, role Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roles[actorID] = role
}

func (p *StaticProvider) RoleOf(_ context.Context, actorID id.UserID) (Role, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if r, ok := p.roles[actorID]; ok {
		return r, nil
	}
	return RoleNone, nil
}

// ParseAssignments reads "actor=ROLE" pairs separated by commas, as used to
// seed a StaticProvider from configuration.
func ParseAssignments(raw string) (map[id.UserID]Role, error) {
	out := make(map[id.UserID]Role)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		actor, role, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("role assignment %q: want actor=ROLE", pair)
		}
		actorID, err := id.ParseUserID(strings.TrimSpace(actor))
		if err != nil {
			return nil, fmt.Errorf("role assignment %q: %w", pair, err)
		}
		parsed := ParseRole(strings.ToUpper(strings.TrimSpace(role)))
		if parsed == RoleNone {
			return nil, fmt.Errorf("role assignment %q: unknown role", pair)
		}
		out[actorID] = parsed
	}
	return out, nil
}
