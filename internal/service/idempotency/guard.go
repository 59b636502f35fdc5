package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

const defaultKeyTTL = 24 * time.Hour

// Replay — сохранённый ответ на повторный запрос с тем же ключом.
type Replay struct {
	HTTPStatus int
	Body       []byte
}

// Guard связывает idempotency-key с результатом первого выполнения запроса.
type Guard struct {
	repo domain.IdempotencyRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewGuard создаёт Guard; ttl<=0 заменяется значением по умолчанию (24h).
func NewGuard(repo domain.IdempotencyRepository, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = defaultKeyTTL
	}
	return &Guard{
		repo: repo,
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// HashRequest возвращает SHA-256 тела запроса в hex.
func HashRequest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Begin регистрирует ключ перед выполнением запроса.
// Если по ключу уже сохранён завершённый ответ, он возвращается для повтора.
// Ключ после ответа 5xx снова допускает выполнение, но только одному из
// конкурирующих повторов; остальные получают ErrIdempotencyInProgress.
func (g *Guard) Begin(ctx context.Context, key string, body []byte) (*Replay, error) {
	ttlAt := g.now().Add(g.ttl)
	record, err := g.repo.CreateProcessing(ctx, key, HashRequest(body), ttlAt)
	switch {
	case err == nil:
		return nil, nil
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
	default:
		return nil, err
	}

	switch record.Status {
	case domain.IdempotencyStatusDone:
		return &Replay{HTTPStatus: record.HTTPStatus, Body: record.ResponseBody}, nil
	case domain.IdempotencyStatusFailed:
		won, err := g.repo.ReclaimFailed(ctx, key, ttlAt)
		if err != nil {
			return nil, err
		}
		if !won {
			return nil, domain.ErrIdempotencyInProgress
		}
		return nil, nil
	default:
		return nil, domain.ErrIdempotencyInProgress
	}
}

// Finish сохраняет ответ: ответы ниже 500 повторяются как есть, 5xx помечаются failed.
func (g *Guard) Finish(ctx context.Context, key string, httpStatus int, body []byte) error {
	var err error
	if httpStatus >= http.StatusInternalServerError {
		err = g.repo.MarkFailed(ctx, key, body, httpStatus)
	} else {
		err = g.repo.MarkDone(ctx, key, body, httpStatus)
	}
	if err != nil {
		return fmt.Errorf("store idempotent response: %w", err)
	}
	return nil
}
