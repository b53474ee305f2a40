package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"certledger/internal/registry/models"
	"certledger/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) record(checksum string, issuer models.Identity) *models.CertificateRecord {
	issued := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	return &models.CertificateRecord{
		Checksum: checksum,
		Recipient: models.Recipient{
			Name:    "Ada",
			Surname: "Lovelace",
			Email:   "ada@example.org",
		},
		IssueDate:                issued,
		ExpireDate:               issued.Add(30 * models.DayValidity),
		Issuer:                   issuer,
		CertName:                 "Analytical Engines 101",
		IssuerIdentificationName: "Example Academy",
	}
}

func (s *MemoryStoreSuite) TestInsertAndGet() {
	rec := s.record("checksum1", "issuer-a")
	require.NoError(s.T(), s.store.Insert(s.ctx, rec))

	got, err := s.store.Get(s.ctx, "checksum1")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), rec, got)
}

func (s *MemoryStoreSuite) TestGetMissingReturnsNil() {
	got, err := s.store.Get(s.ctx, "nope")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

func (s *MemoryStoreSuite) TestInsertDuplicateConflicts() {
	rec := s.record("checksum1", "issuer-a")
	require.NoError(s.T(), s.store.Insert(s.ctx, rec))

	err := s.store.Insert(s.ctx, rec)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestRemove() {
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum1", "issuer-a")))
	require.NoError(s.T(), s.store.Remove(s.ctx, "checksum1"))

	got, err := s.store.Get(s.ctx, "checksum1")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)

	checksums, err := s.store.ListChecksums(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), checksums)
}

func (s *MemoryStoreSuite) TestRemoveMissing() {
	err := s.store.Remove(s.ctx, "nope")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestListingsPreserveInsertionOrder() {
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum3", "issuer-a")))
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum1", "issuer-b")))
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum2", "issuer-a")))

	checksums, err := s.store.ListChecksums(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"checksum3", "checksum1", "checksum2"}, checksums)

	all, err := s.store.ListAll(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), "checksum3", all[0].Checksum)
	assert.Equal(s.T(), "checksum1", all[1].Checksum)
	assert.Equal(s.T(), "checksum2", all[2].Checksum)
}

func (s *MemoryStoreSuite) TestReinsertAfterRemoveAppendsAtEnd() {
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum1", "issuer-a")))
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum2", "issuer-a")))
	require.NoError(s.T(), s.store.Remove(s.ctx, "checksum1"))
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum1", "issuer-a")))

	checksums, err := s.store.ListChecksums(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"checksum2", "checksum1"}, checksums)
}

func (s *MemoryStoreSuite) TestListByIssuer() {
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum1", "issuer-a")))
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum2", "issuer-b")))
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum3", "issuer-a")))

	records, err := s.store.ListByIssuer(s.ctx, "issuer-a")
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 2)
	assert.Equal(s.T(), "checksum1", records[0].Checksum)
	assert.Equal(s.T(), "checksum3", records[1].Checksum)

	none, err := s.store.ListByIssuer(s.ctx, "issuer-z")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), none)
}

func (s *MemoryStoreSuite) TestGetReturnsCopy() {
	require.NoError(s.T(), s.store.Insert(s.ctx, s.record("checksum1", "issuer-a")))

	got, err := s.store.Get(s.ctx, "checksum1")
	require.NoError(s.T(), err)
	got.CertName = "mutated"

	again, err := s.store.Get(s.ctx, "checksum1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Analytical Engines 101", again.CertName)
}
