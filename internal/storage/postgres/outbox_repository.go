package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

const defaultOutboxPullLimit = 100

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type outboxRepository struct {
	store *Store
}

// NewOutboxRepository создаёт PostgreSQL-реализацию OutboxRepository.
func NewOutboxRepository(store *Store) domain.OutboxRepository {
	return &outboxRepository{store: store}
}

func insertOutboxMessage(ctx context.Context, db execer, msg domain.OutboxMessage, now time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,'pending',0,$6,$7)
	`,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, now, now,
	)
	return err
}

func (r *outboxRepository) Enqueue(ctx context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		if err := insertOutboxMessage(ctx, conn, msg, time.Now().UTC()); err != nil {
			return wrapError("enqueue outbox message", err)
		}
		return nil
	})
	if err != nil {
		return domain.OutboxMessage{}, err
	}

	return msg, nil
}

func (r *outboxRepository) PullPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = defaultOutboxPullLimit
	}

	result := make([]domain.OutboxMessage, 0, limit)
	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `
			SELECT id, aggregate_type, aggregate_id, event_type, payload
			FROM outbox_messages
			WHERE status = 'pending'
			ORDER BY created_at, id
			LIMIT $1
		`, limit)
		if err != nil {
			return wrapError("pull pending outbox messages", err)
		}
		defer rows.Close()

		for rows.Next() {
			var msg domain.OutboxMessage
			if err := rows.Scan(
				&msg.ID,
				&msg.AggregateType,
				&msg.AggregateID,
				&msg.EventType,
				&msg.Payload,
			); err != nil {
				return wrapError("scan outbox message", err)
			}
			result = append(result, msg)
		}
		if err := rows.Err(); err != nil {
			return wrapError("iterate outbox rows", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *outboxRepository) Stats(ctx context.Context) (domain.OutboxStats, error) {
	var (
		stats  domain.OutboxStats
		oldest sql.NullTime
	)

	err := r.store.withConn(ctx, func(conn *sql.Conn) error {
		if err := conn.QueryRowContext(ctx, `
			SELECT COUNT(*), MIN(created_at)
			FROM outbox_messages
			WHERE status = 'pending'
		`).Scan(&stats.PendingCount, &oldest); err != nil {
			return wrapError("outbox stats query", err)
		}
		return nil
	})
	if err != nil {
		return domain.OutboxStats{}, err
	}

	if oldest.Valid {
		stats.OldestPendingAt = oldest.Time.UTC()
	}

	return stats, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	return r.markStatus(ctx, id, "sent")
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string) error {
	return r.markStatus(ctx, id, "failed")
}

func (r *outboxRepository) markStatus(ctx context.Context, id, status string) error {
	return r.store.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `
			UPDATE outbox_messages
			SET status = $2,
			    attempt_count = attempt_count + 1,
			    updated_at = $3
			WHERE id = $1
		`, id, status, time.Now().UTC())
		if err != nil {
			return wrapError(fmt.Sprintf("mark outbox message as %s", status), err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return wrapError(fmt.Sprintf("rows affected for outbox %s", status), err)
		}
		if affected == 0 {
			return domain.ErrOutboxPublish
		}
		return nil
	})
}

var _ domain.OutboxRepository = (*outboxRepository)(nil)
