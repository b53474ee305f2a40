package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"certledger/internal/registry/models"
	"certledger/pkg/platform/sentinel"
)

// PostgresStore persists certificate records in PostgreSQL. Insertion order is
// a bigserial position column so enumeration matches the memory store exactly.
// This store is pure I/O; validation and authorization belong to the service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed certificate store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the certificates table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS certificates (
			position BIGSERIAL,
			checksum TEXT PRIMARY KEY,
			recipient_name TEXT NOT NULL,
			recipient_surname TEXT NOT NULL,
			recipient_email TEXT NOT NULL,
			issue_date TIMESTAMPTZ NOT NULL,
			expire_date TIMESTAMPTZ NOT NULL,
			issuer TEXT NOT NULL,
			cert_name TEXT NOT NULL,
			issuer_identification_name TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure certificates schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, record *models.CertificateRecord) error {
	query := `
		INSERT INTO certificates
			(checksum, recipient_name, recipient_surname, recipient_email,
			 issue_date, expire_date, issuer, cert_name, issuer_identification_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.Checksum,
		record.Recipient.Name,
		record.Recipient.Surname,
		record.Recipient.Email,
		record.IssueDate,
		record.ExpireDate,
		string(record.Issuer),
		record.CertName,
		record.IssuerIdentificationName,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("certificate already present: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, checksum string) (*models.CertificateRecord, error) {
	query := selectColumns + ` WHERE checksum = $1`
	record, err := scanCertificate(s.db.QueryRowContext(ctx, query, checksum))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Remove(ctx context.Context, checksum string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM certificates WHERE checksum = $1`, checksum)
	if err != nil {
		return fmt.Errorf("remove certificate: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove certificate: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("certificate not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListChecksums(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT checksum FROM certificates ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list checksums: %w", err)
	}
	defer rows.Close()

	checksums := []string{}
	for rows.Next() {
		var checksum string
		if err := rows.Scan(&checksum); err != nil {
			return nil, fmt.Errorf("scan checksum: %w", err)
		}
		checksums = append(checksums, checksum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list checksums: %w", err)
	}
	return checksums, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.CertificateRecord, error) {
	return s.list(ctx, selectColumns+` ORDER BY position`)
}

func (s *PostgresStore) ListByIssuer(ctx context.Context, issuer models.Identity) ([]models.CertificateRecord, error) {
	return s.list(ctx, selectColumns+` WHERE issuer = $1 ORDER BY position`, string(issuer))
}

const selectColumns = `
	SELECT checksum, recipient_name, recipient_surname, recipient_email,
	       issue_date, expire_date, issuer, cert_name, issuer_identification_name
	FROM certificates
`

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]models.CertificateRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	records := []models.CertificateRecord{}
	for rows.Next() {
		record, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (*models.CertificateRecord, error) {
	var record models.CertificateRecord
	var issuer string
	err := row.Scan(
		&record.Checksum,
		&record.Recipient.Name,
		&record.Recipient.Surname,
		&record.Recipient.Email,
		&record.IssueDate,
		&record.ExpireDate,
		&issuer,
		&record.CertName,
		&record.IssuerIdentificationName,
	)
	if err != nil {
		return nil, err
	}
	record.Issuer = models.Identity(issuer)
	return &record, nil
}
