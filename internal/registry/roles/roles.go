// Package roles owns the owner/admin/trusted-issuer hierarchy and the
// authorization predicates over it.
//
// The owner is fixed at construction and is implicitly both admin-equivalent
// and trusted-issuer-equivalent without ever being a member of either set. No
// operation can add the owner to, or remove the owner from, those sets.
package roles

import (
	"sync"

	"certledger/internal/registry/models"
	dErrors "certledger/pkg/domain-errors"
)

// Manager holds the role state for one registry instance. It is safe for
// concurrent use on its own; the registry service additionally serializes all
// mutations under its own exclusion domain.
type Manager struct {
	mu             sync.RWMutex
	owner          models.Identity
	admins         map[models.Identity]struct{}
	trustedIssuers map[models.Identity]struct{}
}

// New constructs a Manager with the given owner.
func New(owner models.Identity) *Manager {
	return &Manager{
		owner:          owner,
		admins:         make(map[models.Identity]struct{}),
		trustedIssuers: make(map[models.Identity]struct{}),
	}
}

// Owner returns the fixed owner identity.
func (m *Manager) Owner() models.Identity {
	return m.owner
}

// IsOwner reports whether id is the registry owner.
func (m *Manager) IsOwner(id models.Identity) bool {
	return id == m.owner
}

// IsAdmin reports explicit admin membership. The owner is not a set member but
// every permission check that accepts admins accepts the owner as well.
func (m *Manager) IsAdmin(id models.Identity) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.admins[id]
	return ok
}

// IsTrustedIssuer reports whether id may issue certificates. The owner is
// always implicitly trusted.
func (m *Manager) IsTrustedIssuer(id models.Identity) bool {
	if id == m.owner {
		return true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.trustedIssuers[id]
	return ok
}

// AddAdmin grants the admin role to target. Owner-only. Adding an existing
// admin is a no-op, and so is adding the owner: the owner is already
// admin-equivalent and must never become a set member.
func (m *Manager) AddAdmin(caller, target models.Identity) error {
	if caller != m.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "not an owner")
	}
	if target == m.owner {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[target] = struct{}{}
	return nil
}

// RemoveAdmin revokes the admin role from target. Owner-only; the owner itself
// can never be a removal target. Removing an absent admin is a no-op.
func (m *Manager) RemoveAdmin(caller, target models.Identity) error {
	if caller != m.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "not an owner")
	}
	if target == m.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "cannot remove contract owner or yourself")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.admins, target)
	return nil
}

// AddTrustedIssuer grants issuance rights to target. Owner or admin. Adding an
// existing issuer is a no-op, and so is adding the owner.
func (m *Manager) AddTrustedIssuer(caller, target models.Identity) error {
	if err := m.requireAdmin(caller); err != nil {
		return err
	}
	if target == m.owner {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trustedIssuers[target] = struct{}{}
	return nil
}

// RemoveTrustedIssuer revokes issuance rights from target. Owner or admin; the
// owner itself can never be a removal target.
func (m *Manager) RemoveTrustedIssuer(caller, target models.Identity) error {
	if err := m.requireAdmin(caller); err != nil {
		return err
	}
	if target == m.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "cannot remove contract owner or yourself")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trustedIssuers, target)
	return nil
}

func (m *Manager) requireAdmin(caller models.Identity) error {
	if caller == m.owner {
		return nil
	}
	if m.IsAdmin(caller) {
		return nil
	}
	return dErrors.New(dErrors.CodeUnauthorized, "not an admin")
}
