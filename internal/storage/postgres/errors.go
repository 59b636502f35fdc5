package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// SQLSTATE коды, которые различает слой доступа к данным.
const (
	pgCodeForeignKeyViolation = "23503"
	pgCodeUniqueViolation     = "23505"
	pgCodeCheckViolation      = "23514"
	pgCodeNotNullViolation    = "23502"
)

// wrapError добавляет к ошибке хранилища имя операции и доменный признак.
// Исходная ошибка остаётся в цепочке для логов и errors.As.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, classify(err), err)
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeForeignKeyViolation:
			return domain.ErrReferenceViolation
		case pgCodeUniqueViolation:
			return domain.ErrConflict
		case pgCodeCheckViolation, pgCodeNotNullViolation:
			return domain.ErrInvalidRequest
		}
	}
	return domain.ErrDataAccess
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCodeUniqueViolation
	}
	return false
}
