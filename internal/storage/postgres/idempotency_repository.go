package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

const defaultIdempotencyTTL = 24 * time.Hour

type idempotencyRepository struct {
	store *Store
}

// NewIdempotencyRepository создаёт PostgreSQL-реализацию IdempotencyRepository.
func NewIdempotencyRepository(store *Store) domain.IdempotencyRepository {
	return &idempotencyRepository{store: store}
}

func (r *idempotencyRepository) CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	requestHash = strings.TrimSpace(requestHash)

	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}
	if requestHash == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyRequestHashRequired
	}

	now := time.Now().UTC()
	if ttlAt.IsZero() {
		ttlAt = now.Add(defaultIdempotencyTTL)
	}

	var insertErr error
	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		_, insertErr = conn.ExecContext(ctx, `
			INSERT INTO idempotency_keys (
				key, request_hash, response_body, http_status, status, ttl_at, created_at, updated_at
			) VALUES ($1,$2,NULL,NULL,$3,$4,$5,$6)
		`,
			key,
			requestHash,
			string(domain.IdempotencyStatusProcessing),
			ttlAt,
			now,
			now,
		)
		return nil
	})
	if err != nil {
		return domain.IdempotencyRecord{}, err
	}

	if insertErr != nil {
		if isUniqueViolation(insertErr) {
			existing, getErr := r.Get(ctx, key)
			if getErr != nil {
				return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyAlreadyExists
			}
			if existing.RequestHash != requestHash {
				return existing, domain.ErrIdempotencyHashMismatch
			}
			return existing, domain.ErrIdempotencyKeyAlreadyExists
		}
		return domain.IdempotencyRecord{}, wrapError("create idempotency record", insertErr)
	}

	return domain.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      domain.IdempotencyStatusProcessing,
		TTLAt:       ttlAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	var (
		record       domain.IdempotencyRecord
		statusRaw    string
		responseBody []byte
		httpStatus   sql.NullInt64
		found        = true
	)

	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		err := conn.QueryRowContext(ctx, `
			SELECT key, request_hash, response_body, http_status, status, ttl_at, created_at, updated_at
			FROM idempotency_keys
			WHERE key = $1
		`, key).Scan(
			&record.Key,
			&record.RequestHash,
			&responseBody,
			&httpStatus,
			&statusRaw,
			&record.TTLAt,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		if err != nil {
			return wrapError("get idempotency record", err)
		}
		return nil
	})
	if err != nil {
		return domain.IdempotencyRecord{}, err
	}
	if !found {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
	}

	record.Status = domain.IdempotencyStatus(statusRaw)
	if !record.Status.Valid() {
		return domain.IdempotencyRecord{}, fmt.Errorf("invalid idempotency status %q for key %s", statusRaw, key)
	}

	record.ResponseBody = append([]byte(nil), responseBody...)
	if httpStatus.Valid {
		record.HTTPStatus = int(httpStatus.Int64)
	}

	return record, nil
}

func (r *idempotencyRepository) MarkDone(ctx context.Context, key string, responseBody []byte, httpStatus int) error {
	return r.markStatus(ctx, key, domain.IdempotencyStatusDone, responseBody, httpStatus)
}

func (r *idempotencyRepository) MarkFailed(ctx context.Context, key string, responseBody []byte, httpStatus int) error {
	return r.markStatus(ctx, key, domain.IdempotencyStatusFailed, responseBody, httpStatus)
}

// ReclaimFailed захватывает failed-ключ условным UPDATE: выигрывает тот, у кого затронута строка.
func (r *idempotencyRepository) ReclaimFailed(ctx context.Context, key string, ttlAt time.Time) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, domain.ErrIdempotencyKeyRequired
	}

	now := time.Now().UTC()
	if ttlAt.IsZero() {
		ttlAt = now.Add(defaultIdempotencyTTL)
	}

	var affected int64
	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `
			UPDATE idempotency_keys
			SET status = $2,
			    response_body = NULL,
			    http_status = NULL,
			    ttl_at = $3,
			    updated_at = $4
			WHERE key = $1 AND status = $5
		`,
			key,
			string(domain.IdempotencyStatusProcessing),
			ttlAt,
			now,
			string(domain.IdempotencyStatusFailed),
		)
		if err != nil {
			return wrapError("reclaim failed idempotency key", err)
		}

		affected, err = res.RowsAffected()
		if err != nil {
			return wrapError("idempotency rows affected", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	var affected int64
	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		var (
			res sql.Result
			err error
		)
		if limit > 0 {
			res, err = conn.ExecContext(ctx, `
				DELETE FROM idempotency_keys
				WHERE key IN (
					SELECT key
					FROM idempotency_keys
					WHERE ttl_at <= $1
					ORDER BY ttl_at ASC
					LIMIT $2
				)
			`, before, limit)
		} else {
			res, err = conn.ExecContext(ctx, `
				DELETE FROM idempotency_keys
				WHERE ttl_at <= $1
			`, before)
		}
		if err != nil {
			return wrapError("delete expired idempotency records", err)
		}

		affected, err = res.RowsAffected()
		if err != nil {
			return wrapError("idempotency rows affected", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}

func (r *idempotencyRepository) markStatus(ctx context.Context, key string, status domain.IdempotencyStatus, responseBody []byte, httpStatus int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrIdempotencyKeyRequired
	}

	return r.store.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `
			UPDATE idempotency_keys
			SET response_body = $1,
			    http_status = $2,
			    status = $3,
			    updated_at = $4
			WHERE key = $5
		`,
			responseBody,
			httpStatus,
			string(status),
			time.Now().UTC(),
			key,
		)
		if err != nil {
			return wrapError("mark idempotency key status", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return wrapError("idempotency rows affected", err)
		}
		if affected == 0 {
			return domain.ErrIdempotencyKeyNotFound
		}
		return nil
	})
}

var _ domain.IdempotencyRepository = (*idempotencyRepository)(nil)
