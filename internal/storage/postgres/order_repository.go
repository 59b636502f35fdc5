package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

var (
	ordersTable = entityTable[domain.Order]{
		table:   "tb_order",
		columns: []string{"order_id", "order_user_id", "order_address", "order_date", "order_paytype_id"},
		orderBy: "order_id",
		scan: func(row rowScanner) (domain.Order, error) {
			var o domain.Order
			err := row.Scan(&o.ID, &o.UserID, &o.Address, &o.Date, &o.PaytypeID)
			return o, err
		},
	}
	cartTable = entityTable[domain.CartItem]{
		table:   "tb_order_cart",
		columns: []string{"cart_order_id", "cart_prod_id", "cart_prod_count"},
		orderBy: "cart_line_id",
		scan: func(row rowScanner) (domain.CartItem, error) {
			var c domain.CartItem
			err := row.Scan(&c.OrderID, &c.ProductID, &c.Quantity)
			return c, err
		},
	}
)

// OrderRepositoryOption настраивает orderRepository.
type OrderRepositoryOption func(*orderRepository)

// WithOutboxEvents включает запись события order.placed в outbox той же транзакцией.
func WithOutboxEvents() OrderRepositoryOption {
	return func(r *orderRepository) {
		r.outbox = true
	}
}

type orderRepository struct {
	store  *Store
	outbox bool
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store, opts ...OrderRepositoryOption) domain.OrderRepository {
	r := &orderRepository{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PlaceOrder вставляет заказ и все строки корзины одной транзакцией.
// Идентификатор заказа берётся из RETURNING той же вставки.
func (r *orderRepository) PlaceOrder(ctx context.Context, draft domain.OrderDraft, items []domain.CartLine) (int64, error) {
	var orderID int64

	err := r.store.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO tb_order (order_address, order_user_id, order_date, order_paytype_id)
			VALUES ($1, $2, $3, $4)
			RETURNING order_id
		`, draft.Address, draft.UserID, draft.Date, draft.PaytypeID).Scan(&orderID); err != nil {
			return wrapError("insert order", err)
		}

		for idx, item := range items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO tb_order_cart (cart_order_id, cart_prod_id, cart_prod_count)
				VALUES ($1, $2, $3)
			`, orderID, item.ProductID, item.Quantity); err != nil {
				return wrapError(fmt.Sprintf("insert cart line %d", idx), err)
			}
		}

		if r.outbox {
			return r.enqueuePlaced(ctx, tx, orderID, draft, items)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return orderID, nil
}

func (r *orderRepository) enqueuePlaced(ctx context.Context, tx *sql.Tx, orderID int64, draft domain.OrderDraft, items []domain.CartLine) error {
	order := domain.Order{
		ID:        orderID,
		UserID:    draft.UserID,
		Address:   draft.Address,
		Date:      draft.Date,
		PaytypeID: draft.PaytypeID,
	}
	cart := domain.PlaceOrderRequest{Draft: draft, Items: items}.CartItems(orderID)

	msg, err := domain.NewOrderPlacedMessage(order, cart)
	if err != nil {
		return err
	}
	msg.ID = uuid.NewString()

	if err := insertOutboxMessage(ctx, tx, msg, time.Now().UTC()); err != nil {
		return wrapError("enqueue order placed event", err)
	}
	return nil
}

func (r *orderRepository) OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return listRows(ctx, r.store, ordersTable, "order_user_id = $1", userID)
}

func (r *orderRepository) CartByOrder(ctx context.Context, orderID int64) ([]domain.CartItem, error) {
	return listRows(ctx, r.store, cartTable, "cart_order_id = $1", orderID)
}

var _ domain.OrderRepository = (*orderRepository)(nil)
