package postgres

import (
	"context"
	"database/sql"
	"strings"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// entityTable описывает, как читать одну сущность: таблица, колонки,
// колонка сортировки и отображение строки в запись.
type entityTable[T any] struct {
	table   string
	columns []string
	orderBy string
	scan    func(row rowScanner) (T, error)
}

// selectQuery строит SELECT по описанию; where добавляется как есть.
func (t entityTable[T]) selectQuery(where string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(t.columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(t.table)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	if t.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(t.orderBy)
	}
	return b.String()
}

// listRows читает все строки сущности; без строк возвращает пустой срез.
func listRows[T any](ctx context.Context, store *Store, t entityTable[T], where string, args ...any) ([]T, error) {
	result := make([]T, 0)

	err := store.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, t.selectQuery(where), args...)
		if err != nil {
			return wrapError("select "+t.table, err)
		}
		defer rows.Close()

		for rows.Next() {
			item, err := t.scan(rows)
			if err != nil {
				return wrapError("scan "+t.table, err)
			}
			result = append(result, item)
		}
		if err := rows.Err(); err != nil {
			return wrapError("iterate "+t.table, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
