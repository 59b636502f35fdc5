package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

func sampleDraft(t *testing.T) domain.OrderDraft {
	t.Helper()

	date, err := domain.ParseDate("2026-03-14")
	require.NoError(t, err)
	return domain.OrderDraft{UserID: 7, Address: "12 Main St", Date: date, PaytypeID: 2}
}

func TestOrderRepository_PostgresPlaceOrderPersistsOrderAndCart(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewOrderRepository(store)
	ctx := context.Background()

	draft := sampleDraft(t)
	orderID, err := repo.PlaceOrder(ctx, draft, []domain.CartLine{
		{ProductID: 3, Quantity: 2},
		{ProductID: 9, Quantity: 1},
	})
	require.NoError(t, err)
	require.Positive(t, orderID)

	orders, err := repo.OrdersByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, orderID, orders[0].ID)
	require.Equal(t, "12 Main St", orders[0].Address)
	require.True(t, orders[0].Date.Equal(draft.Date))
	require.Equal(t, int64(2), orders[0].PaytypeID)

	cart, err := repo.CartByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, []domain.CartItem{
		{OrderID: orderID, ProductID: 3, Quantity: 2},
		{OrderID: orderID, ProductID: 9, Quantity: 1},
	}, cart)
}

func TestOrderRepository_PostgresSecondOrderGetsGreaterID(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewOrderRepository(store)
	ctx := context.Background()

	first, err := repo.PlaceOrder(ctx, sampleDraft(t), []domain.CartLine{{ProductID: 3, Quantity: 1}})
	require.NoError(t, err)
	second, err := repo.PlaceOrder(ctx, sampleDraft(t), []domain.CartLine{{ProductID: 9, Quantity: 4}})
	require.NoError(t, err)
	require.Greater(t, second, first)

	orders, err := repo.OrdersByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, first, orders[0].ID)
	require.Equal(t, second, orders[1].ID)
}

func TestOrderRepository_PostgresRollbackLeavesNoRows(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewOrderRepository(store, WithOutboxEvents())
	ctx := context.Background()

	tests := []struct {
		name  string
		draft domain.OrderDraft
		items []domain.CartLine
	}{
		{
			name:  "unknown product in the last line",
			draft: sampleDraft(t),
			items: []domain.CartLine{{ProductID: 3, Quantity: 2}, {ProductID: 404, Quantity: 1}},
		},
		{
			name: "unknown user",
			draft: func() domain.OrderDraft {
				d := sampleDraft(t)
				d.UserID = 404
				return d
			}(),
			items: []domain.CartLine{{ProductID: 3, Quantity: 1}},
		},
		{
			name: "unknown paytype",
			draft: func() domain.OrderDraft {
				d := sampleDraft(t)
				d.PaytypeID = 404
				return d
			}(),
			items: []domain.CartLine{{ProductID: 3, Quantity: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.PlaceOrder(ctx, tt.draft, tt.items)
			require.ErrorIs(t, err, domain.ErrReferenceViolation)

			require.Zero(t, countRowsForIntegrationTest(t, store, "tb_order"))
			require.Zero(t, countRowsForIntegrationTest(t, store, "tb_order_cart"))
			require.Zero(t, countRowsForIntegrationTest(t, store, "outbox_messages"))
		})
	}
}

func TestOrderRepository_PostgresCheckViolationIsInvalidRequest(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewOrderRepository(store)

	_, err := repo.PlaceOrder(context.Background(), sampleDraft(t), []domain.CartLine{{ProductID: 3, Quantity: 0}})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	require.Zero(t, countRowsForIntegrationTest(t, store, "tb_order"))
}

func TestOrderRepository_PostgresCancelledContextRollsBack(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewOrderRepository(store)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := repo.PlaceOrder(ctx, sampleDraft(t), []domain.CartLine{{ProductID: 3, Quantity: 1}})
	require.Error(t, err)
	require.Zero(t, countRowsForIntegrationTest(t, store, "tb_order"))
}

func TestOrderRepository_PostgresWritesOutboxEventInSameTx(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewOrderRepository(store, WithOutboxEvents())
	ctx := context.Background()

	orderID, err := repo.PlaceOrder(ctx, sampleDraft(t), []domain.CartLine{{ProductID: 3, Quantity: 2}})
	require.NoError(t, err)

	pending, err := NewOutboxRepository(store).PullPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, domain.EventTypeOrderPlaced, pending[0].EventType)
	require.Equal(t, domain.AggregateTypeOrder, pending[0].AggregateType)

	var payload domain.OrderPlacedPayload
	require.NoError(t, json.Unmarshal(pending[0].Payload, &payload))
	require.Equal(t, orderID, payload.Order.ID)
	require.Equal(t, []domain.CartItem{{OrderID: orderID, ProductID: 3, Quantity: 2}}, payload.Items)
}

func TestOrderRepository_PostgresUnknownKeysReturnEmpty(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)
	ctx := context.Background()

	orders, err := repo.OrdersByUser(ctx, 404)
	require.NoError(t, err)
	require.Empty(t, orders)

	cart, err := repo.CartByOrder(ctx, 404)
	require.NoError(t, err)
	require.Empty(t, cart)
}
