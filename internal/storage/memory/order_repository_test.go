package memory_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/storage/memory"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.NewStore()
	require.NoError(t, store.Seed(memory.DemoSeed()))
	return store
}

func sampleDraft() domain.OrderDraft {
	return domain.OrderDraft{
		UserID:    7,
		Address:   "12 Main St",
		Date:      domain.NewDate(2026, 3, 14),
		PaytypeID: 2,
	}
}

func TestOrderRepository_PlaceOrderAndRead(t *testing.T) {
	repo := memory.NewOrderRepository(seededStore(t))
	ctx := context.Background()

	orderID, err := repo.PlaceOrder(ctx, sampleDraft(), []domain.CartLine{
		{ProductID: 3, Quantity: 2},
		{ProductID: 9, Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), orderID)

	orders, err := repo.OrdersByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "12 Main St", orders[0].Address)
	require.Equal(t, int64(2), orders[0].PaytypeID)

	cart, err := repo.CartByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, []domain.CartItem{
		{OrderID: orderID, ProductID: 3, Quantity: 2},
		{OrderID: orderID, ProductID: 9, Quantity: 1},
	}, cart)
}

func TestOrderRepository_ReferenceViolationLeavesNoRows(t *testing.T) {
	tests := []struct {
		name  string
		draft func() domain.OrderDraft
		items []domain.CartLine
	}{
		{
			name:  "unknown product",
			draft: sampleDraft,
			items: []domain.CartLine{{ProductID: 3, Quantity: 1}, {ProductID: 404, Quantity: 1}},
		},
		{
			name: "unknown user",
			draft: func() domain.OrderDraft {
				d := sampleDraft()
				d.UserID = 404
				return d
			},
			items: []domain.CartLine{{ProductID: 3, Quantity: 1}},
		},
		{
			name: "unknown paytype",
			draft: func() domain.OrderDraft {
				d := sampleDraft()
				d.PaytypeID = 404
				return d
			},
			items: []domain.CartLine{{ProductID: 3, Quantity: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outbox := memory.NewOutboxRepository()
			repo := memory.NewOrderRepository(seededStore(t), memory.WithOutbox(outbox))
			ctx := context.Background()

			_, err := repo.PlaceOrder(ctx, tt.draft(), tt.items)
			require.ErrorIs(t, err, domain.ErrReferenceViolation)

			orders, err := repo.OrdersByUser(ctx, 7)
			require.NoError(t, err)
			require.Empty(t, orders)
			cart, err := repo.CartByOrder(ctx, 1)
			require.NoError(t, err)
			require.Empty(t, cart)
			require.Empty(t, outbox.AllPending())

			// Идентификатор не расходуется на неудачную попытку.
			id, err := repo.PlaceOrder(ctx, sampleDraft(), []domain.CartLine{{ProductID: 3, Quantity: 1}})
			require.NoError(t, err)
			require.Equal(t, int64(1), id)
		})
	}
}

func TestOrderRepository_NonPositiveQuantityRejected(t *testing.T) {
	repo := memory.NewOrderRepository(seededStore(t))

	_, err := repo.PlaceOrder(context.Background(), sampleDraft(), []domain.CartLine{{ProductID: 3, Quantity: 0}})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestOrderRepository_CancelledContext(t *testing.T) {
	repo := memory.NewOrderRepository(seededStore(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.PlaceOrder(ctx, sampleDraft(), []domain.CartLine{{ProductID: 3, Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrDataAccess)
	require.ErrorIs(t, err, context.Canceled)

	orders, err := repo.OrdersByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestOrderRepository_WritesOrderPlacedEvent(t *testing.T) {
	outbox := memory.NewOutboxRepository()
	repo := memory.NewOrderRepository(seededStore(t), memory.WithOutbox(outbox))

	orderID, err := repo.PlaceOrder(context.Background(), sampleDraft(), []domain.CartLine{{ProductID: 9, Quantity: 3}})
	require.NoError(t, err)

	pending := outbox.AllPending()
	require.Len(t, pending, 1)
	require.Equal(t, domain.EventTypeOrderPlaced, pending[0].EventType)
	require.Equal(t, "1", pending[0].AggregateID)

	var payload domain.OrderPlacedPayload
	require.NoError(t, json.Unmarshal(pending[0].Payload, &payload))
	require.Equal(t, orderID, payload.Order.ID)
	require.Equal(t, []domain.CartItem{{OrderID: orderID, ProductID: 9, Quantity: 3}}, payload.Items)
}

func TestOrderRepository_ConcurrentPlacementsGetDistinctIDs(t *testing.T) {
	repo := memory.NewOrderRepository(seededStore(t))
	ctx := context.Background()

	const workers = 20
	ids := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.PlaceOrder(ctx, sampleDraft(), []domain.CartLine{{ProductID: 3, Quantity: 1}})
			if err == nil {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, workers)
	for id := range ids {
		seen[id] = struct{}{}
	}
	require.Len(t, seen, workers)

	orders, err := repo.OrdersByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, workers)
	for i := 1; i < len(orders); i++ {
		require.Greater(t, orders[i].ID, orders[i-1].ID)
	}
}

func TestOrderRepository_UnknownKeysReturnEmpty(t *testing.T) {
	repo := memory.NewOrderRepository(seededStore(t))
	ctx := context.Background()

	orders, err := repo.OrdersByUser(ctx, 404)
	require.NoError(t, err)
	require.NotNil(t, orders)
	require.Empty(t, orders)

	cart, err := repo.CartByOrder(ctx, 404)
	require.NoError(t, err)
	require.NotNil(t, cart)
	require.Empty(t, cart)
}
