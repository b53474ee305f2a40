package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"certledger/internal/registry/models"
	"certledger/pkg/platform/sentinel"
)

const (
	// Redis key prefix for certificate records, keyed by checksum.
	certKeyPrefix = "cert:record:"
	// Redis list holding checksums in insertion order.
	certOrderKey = "cert:order"
)

// RedisStore is a Redis-backed certificate store for deployments where several
// read replicas share registry state. Records are JSON blobs keyed by checksum
// with a list keeping insertion order. Mutations rely on the registry service's
// serialization; the store itself performs no cross-key transactions.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed certificate store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Insert(ctx context.Context, record *models.CertificateRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal certificate: %w", err)
	}

	ok, err := s.client.SetNX(ctx, certKeyPrefix+record.Checksum, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	if !ok {
		return fmt.Errorf("certificate already present: %w", sentinel.ErrConflict)
	}
	if err := s.client.RPush(ctx, certOrderKey, record.Checksum).Err(); err != nil {
		return fmt.Errorf("append insertion order: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, checksum string) (*models.CertificateRecord, error) {
	payload, err := s.client.Get(ctx, certKeyPrefix+checksum).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	var record models.CertificateRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("unmarshal certificate: %w", err)
	}
	return &record, nil
}

func (s *RedisStore) Remove(ctx context.Context, checksum string) error {
	deleted, err := s.client.Del(ctx, certKeyPrefix+checksum).Result()
	if err != nil {
		return fmt.Errorf("remove certificate: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("certificate not found: %w", sentinel.ErrNotFound)
	}
	if err := s.client.LRem(ctx, certOrderKey, 1, checksum).Err(); err != nil {
		return fmt.Errorf("trim insertion order: %w", err)
	}
	return nil
}

func (s *RedisStore) ListChecksums(ctx context.Context) ([]string, error) {
	checksums, err := s.client.LRange(ctx, certOrderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list checksums: %w", err)
	}
	return checksums, nil
}

func (s *RedisStore) ListAll(ctx context.Context) ([]models.CertificateRecord, error) {
	checksums, err := s.ListChecksums(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]models.CertificateRecord, 0, len(checksums))
	for _, checksum := range checksums {
		record, err := s.Get(ctx, checksum)
		if err != nil {
			return nil, err
		}
		if record == nil {
			// Order list can briefly trail a removal; skip the gap.
			continue
		}
		records = append(records, *record)
	}
	return records, nil
}

func (s *RedisStore) ListByIssuer(ctx context.Context, issuer models.Identity) ([]models.CertificateRecord, error) {
	records, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	matches := []models.CertificateRecord{}
	for _, record := range records {
		if record.Issuer == issuer {
			matches = append(matches, record)
		}
	}
	return matches, nil
}
