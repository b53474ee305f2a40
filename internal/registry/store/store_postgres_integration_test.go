//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certledger/internal/registry/models"
	"certledger/internal/registry/store"
	"certledger/pkg/platform/sentinel"
	"certledger/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(s.ctx))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "certificates"))
}

func (s *PostgresStoreSuite) record(checksum string, issuer models.Identity) *models.CertificateRecord {
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

func (s *PostgresStoreSuite) TestInsertAndGet() {
	rec := s.record("checksum1", "issuer-a")
	s.Require().NoError(s.store.Insert(s.ctx, rec))

	got, err := s.store.Get(s.ctx, "checksum1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(rec.Checksum, got.Checksum)
	s.Equal(rec.Recipient, got.Recipient)
	s.Equal(rec.Issuer, got.Issuer)
	s.True(rec.IssueDate.Equal(got.IssueDate))
	s.True(rec.ExpireDate.Equal(got.ExpireDate))
}

func (s *PostgresStoreSuite) TestGetMissingReturnsNil() {
	got, err := s.store.Get(s.ctx, "nope")
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *PostgresStoreSuite) TestDuplicateInsertConflicts() {
	s.Require().NoError(s.store.Insert(s.ctx, s.record("checksum1", "issuer-a")))

	err := s.store.Insert(s.ctx, s.record("checksum1", "issuer-b"))
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestRemove() {
	s.Require().NoError(s.store.Insert(s.ctx, s.record("checksum1", "issuer-a")))
	s.Require().NoError(s.store.Remove(s.ctx, "checksum1"))

	got, err := s.store.Get(s.ctx, "checksum1")
	s.Require().NoError(err)
	s.Nil(got)

	s.ErrorIs(s.store.Remove(s.ctx, "checksum1"), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestInsertionOrderSurvivesRemoval() {
	for _, checksum := range []string{"checksum3", "checksum1", "checksum2"} {
		s.Require().NoError(s.store.Insert(s.ctx, s.record(checksum, "issuer-a")))
	}
	s.Require().NoError(s.store.Remove(s.ctx, "checksum1"))
	s.Require().NoError(s.store.Insert(s.ctx, s.record("checksum1", "issuer-a")))

	checksums, err := s.store.ListChecksums(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"checksum3", "checksum2", "checksum1"}, checksums)

	records, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal("checksum3", records[0].Checksum)
}

func (s *PostgresStoreSuite) TestListByIssuer() {
	s.Require().NoError(s.store.Insert(s.ctx, s.record("checksum1", "issuer-a")))
	s.Require().NoError(s.store.Insert(s.ctx, s.record("checksum2", "issuer-b")))
	s.Require().NoError(s.store.Insert(s.ctx, s.record("checksum3", "issuer-a")))

	records, err := s.store.ListByIssuer(s.ctx, "issuer-a")
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("checksum1", records[0].Checksum)
	s.Equal("checksum3", records[1].Checksum)
}
