package catalog

import (
	"context"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/storage/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	require.NoError(t, store.Seed(memory.DemoSeed()))

	logger := log.New()
	logger.SetOutput(io.Discard)
	return NewService(memory.NewCatalogRepository(store), log.NewEntry(logger)), store
}

func TestListDishes_EnrichesMissingImage(t *testing.T) {
	svc, _ := newTestService(t)

	dishes, err := svc.ListDishes(context.Background())
	require.NoError(t, err)
	require.Len(t, dishes, 3)
	require.Equal(t, "borscht.png", dishes[0].Image)
	require.Equal(t, domain.DefaultDishImage, dishes[1].Image)
}

func TestListDishes_DoesNotChangeStoredValue(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListDishes(ctx)
	require.NoError(t, err)

	raw, err := memory.NewCatalogRepository(store).ListDishes(ctx)
	require.NoError(t, err)
	require.Empty(t, raw[1].Image)
}

func TestLists_ReturnSeededReferenceData(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	types, err := svc.ListDishTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 3)

	bases, err := svc.ListDishBases(ctx)
	require.NoError(t, err)
	require.Len(t, bases, 3)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), products[0].ID)

	paytypes, err := svc.ListPaytypes(ctx)
	require.NoError(t, err)
	require.Len(t, paytypes, 2)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(7), users[0].ID)
}

func TestCreateDish_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateDish(context.Background(), domain.DishFields{Name: " "})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	require.ErrorIs(t, err, domain.ErrDishNameRequired)
	require.ErrorIs(t, err, domain.ErrDishTypeRequired)
	require.ErrorIs(t, err, domain.ErrDishBaseRequired)
}

func TestDishLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateDish(ctx, domain.DishFields{Name: "Shchi", TypeID: 1, BaseID: 1})
	require.NoError(t, err)

	affected, err := svc.UpdateDish(ctx, id, domain.DishFields{Name: "Green shchi", TypeID: 1, BaseID: 2})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	affected, err = svc.DeleteDish(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	affected, err = svc.DeleteDish(ctx, id)
	require.NoError(t, err)
	require.Zero(t, affected)
}

func TestUpdateDish_RejectsBadID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateDish(context.Background(), 0, domain.DishFields{Name: "x", TypeID: 1, BaseID: 1})
	require.ErrorIs(t, err, domain.ErrIDInvalid)

	_, err = svc.DeleteDish(context.Background(), -5)
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestDeleteDish_ReferencedByStructure(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.DeleteDish(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrReferenceViolation)
}

func TestStructureByDish(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rows, err := svc.StructureByDish(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, int64(1), rows[0].ProductID)

	rows, err = svc.StructureByDish(ctx, 77)
	require.NoError(t, err)
	require.Empty(t, rows)

	_, err = svc.StructureByDish(ctx, 0)
	require.ErrorIs(t, err, domain.ErrIDInvalid)
}
