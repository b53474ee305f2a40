// Package store provides uniqueness-enforcing, insertion-ordered persistence
// of certificate records, keyed by content checksum.
//
// Error Contract:
// All store methods follow this error pattern:
// - Insert returns an error wrapping sentinel.ErrConflict when the checksum is taken
// - Remove returns an error wrapping sentinel.ErrNotFound when the checksum is absent
// - Get returns (nil, nil) when the checksum is absent; absence is not a failure
// - Listings return fresh slices in original insertion order, never live views
package store

import (
	"context"

	"certledger/internal/registry/models"
)

// Store is the persistence boundary of the registry. Memory, Postgres and
// Redis implementations share it; the registry service serializes mutating
// access on top.
type Store interface {
	Insert(ctx context.Context, record *models.CertificateRecord) error
	Get(ctx context.Context, checksum string) (*models.CertificateRecord, error)
	Remove(ctx context.Context, checksum string) error
	ListChecksums(ctx context.Context) ([]string, error)
	ListAll(ctx context.Context) ([]models.CertificateRecord, error)
	ListByIssuer(ctx context.Context, issuer models.Identity) ([]models.CertificateRecord, error)
}
