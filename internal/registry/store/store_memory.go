package store

import (
	"context"
	"fmt"
	"sync"

	"certledger/internal/registry/models"
	"certledger/pkg/platform/sentinel"
)

// MemoryStore keeps certificate records in memory. Insertion order is tracked
// in a side slice so enumeration stays stable across removals.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.CertificateRecord
	order   []string
}

// NewMemoryStore constructs an empty in-memory certificate store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.CertificateRecord)}
}

func (s *MemoryStore) Insert(_ context.Context, record *models.CertificateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.Checksum]; ok {
		return fmt.Errorf("certificate already present: %w", sentinel.ErrConflict)
	}
	s.records[record.Checksum] = *record
	s.order = append(s.order, record.Checksum)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, checksum string) (*models.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[checksum]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Remove hard-deletes the record. Re-inserting the same checksum afterwards
// starts a fresh lifecycle at the end of the insertion order.
func (s *MemoryStore) Remove(_ context.Context, checksum string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[checksum]; !ok {
		return fmt.Errorf("certificate not found: %w", sentinel.ErrNotFound)
	}
	delete(s.records, checksum)
	for i, c := range s.order {
		if c == checksum {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) ListChecksums(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.order...), nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]models.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]models.CertificateRecord, 0, len(s.order))
	for _, checksum := range s.order {
		records = append(records, s.records[checksum])
	}
	return records, nil
}

func (s *MemoryStore) ListByIssuer(_ context.Context, issuer models.Identity) ([]models.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []models.CertificateRecord
	for _, checksum := range s.order {
		if record := s.records[checksum]; record.Issuer == issuer {
			records = append(records, record)
		}
	}
	return records, nil
}
