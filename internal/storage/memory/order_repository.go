package memory

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// OrderRepositoryOption настраивает orderRepositoryInMemory.
type OrderRepositoryOption func(*orderRepositoryInMemory)

// WithOutbox включает запись события order.placed в outbox при размещении заказа.
func WithOutbox(outbox domain.OutboxRepository) OrderRepositoryOption {
	return func(r *orderRepositoryInMemory) {
		r.outbox = outbox
	}
}

// orderRepositoryInMemory — in-memory реализация OrderRepository.
// Размещение выполняется под блокировкой Store: заказ и строки корзины
// появляются вместе или не появляются вовсе.
type orderRepositoryInMemory struct {
	store  *Store
	outbox domain.OutboxRepository
}

// NewOrderRepository возвращает in-memory репозиторий заказов для локальной разработки и тестов.
func NewOrderRepository(store *Store, opts ...OrderRepositoryOption) domain.OrderRepository {
	r := &orderRepositoryInMemory{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *orderRepositoryInMemory) PlaceOrder(ctx context.Context, draft domain.OrderDraft, items []domain.CartLine) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.checkOrderRefs(draft, items); err != nil {
		return 0, err
	}

	orderID := r.store.lastOrderID + 1
	order := domain.Order{
		ID:        orderID,
		UserID:    draft.UserID,
		Address:   draft.Address,
		Date:      draft.Date,
		PaytypeID: draft.PaytypeID,
	}
	cart := domain.PlaceOrderRequest{Draft: draft, Items: items}.CartItems(orderID)

	if r.outbox != nil {
		msg, err := domain.NewOrderPlacedMessage(order, cart)
		if err != nil {
			return 0, err
		}
		if _, err := r.outbox.Enqueue(ctx, msg); err != nil {
			return 0, fmt.Errorf("enqueue order placed event: %w", err)
		}
	}

	// Ниже ошибок нет: запись либо полная, либо её не было.
	r.store.lastOrderID = orderID
	r.store.orders = append(r.store.orders, order)
	r.store.cart = append(r.store.cart, cart...)

	return orderID, nil
}

// checkOrderRefs повторяет внешние ключи и CHECK-ограничения схемы.
func (r *orderRepositoryInMemory) checkOrderRefs(draft domain.OrderDraft, items []domain.CartLine) error {
	if _, ok := r.store.users[draft.UserID]; !ok {
		return fmt.Errorf("insert order: user %d does not exist: %w", draft.UserID, domain.ErrReferenceViolation)
	}
	if _, ok := r.store.paytypes[draft.PaytypeID]; !ok {
		return fmt.Errorf("insert order: paytype %d does not exist: %w", draft.PaytypeID, domain.ErrReferenceViolation)
	}
	for idx, item := range items {
		if _, ok := r.store.products[item.ProductID]; !ok {
			return fmt.Errorf("insert cart line %d: product %d does not exist: %w", idx, item.ProductID, domain.ErrReferenceViolation)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("insert cart line %d: %w", idx, domain.ErrInvalidRequest)
		}
	}
	return nil
}

func (r *orderRepositoryInMemory) OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	// orders хранится в порядке вставки, то есть по возрастанию идентификатора.
	result := make([]domain.Order, 0)
	for _, order := range r.store.orders {
		if order.UserID == userID {
			result = append(result, order)
		}
	}
	return result, nil
}

func (r *orderRepositoryInMemory) CartByOrder(ctx context.Context, orderID int64) ([]domain.CartItem, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.CartItem, 0)
	for _, item := range r.store.cart {
		if item.OrderID == orderID {
			result = append(result, item)
		}
	}
	return result, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
