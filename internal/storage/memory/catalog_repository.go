package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

type catalogRepositoryInMemory struct {
	store *Store
}

// NewCatalogRepository возвращает in-memory каталог поверх общего Store.
func NewCatalogRepository(store *Store) domain.CatalogRepository {
	return &catalogRepositoryInMemory{store: store}
}

func (r *catalogRepositoryInMemory) ListDishes(ctx context.Context) ([]domain.Dish, error) {
	return listSorted(ctx, r.store, func(s *Store) map[int64]domain.Dish { return s.dishes })
}

func (r *catalogRepositoryInMemory) ListDishTypes(ctx context.Context) ([]domain.DishType, error) {
	return listSorted(ctx, r.store, func(s *Store) map[int64]domain.DishType { return s.dishTypes })
}

func (r *catalogRepositoryInMemory) ListDishBases(ctx context.Context) ([]domain.DishBase, error) {
	return listSorted(ctx, r.store, func(s *Store) map[int64]domain.DishBase { return s.dishBases })
}

func (r *catalogRepositoryInMemory) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return listSorted(ctx, r.store, func(s *Store) map[int64]domain.Product { return s.products })
}

func (r *catalogRepositoryInMemory) ListPaytypes(ctx context.Context) ([]domain.Paytype, error) {
	return listSorted(ctx, r.store, func(s *Store) map[int64]domain.Paytype { return s.paytypes })
}

func (r *catalogRepositoryInMemory) ListUsers(ctx context.Context) ([]domain.User, error) {
	return listSorted(ctx, r.store, func(s *Store) map[int64]domain.User { return s.users })
}

func (r *catalogRepositoryInMemory) StructureByDish(ctx context.Context, dishID int64) ([]domain.Structure, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Structure, 0)
	for _, row := range r.store.structure {
		if row.DishID == dishID {
			result = append(result, row)
		}
	}
	sortStructure(result)
	return result, nil
}

func (r *catalogRepositoryInMemory) CreateDish(ctx context.Context, fields domain.DishFields) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkDishRefs(fields.TypeID, fields.BaseID); err != nil {
		return 0, err
	}

	r.store.lastDishID++
	id := r.store.lastDishID
	r.store.dishes[id] = dishFromFields(id, fields)
	return id, nil
}

func (r *catalogRepositoryInMemory) UpdateDish(ctx context.Context, id int64, fields domain.DishFields) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.dishes[id]; !ok {
		return 0, nil
	}
	if err := r.store.checkDishRefs(fields.TypeID, fields.BaseID); err != nil {
		return 0, err
	}

	r.store.dishes[id] = dishFromFields(id, fields)
	return 1, nil
}

func (r *catalogRepositoryInMemory) DeleteDish(ctx context.Context, id int64) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.dishes[id]; !ok {
		return 0, nil
	}
	if slices.ContainsFunc(r.store.structure, func(row domain.Structure) bool { return row.DishID == id }) {
		return 0, fmt.Errorf("dish %d is referenced by structure: %w", id, domain.ErrReferenceViolation)
	}

	delete(r.store.dishes, id)
	return 1, nil
}

func dishFromFields(id int64, fields domain.DishFields) domain.Dish {
	return domain.Dish{
		ID:     id,
		Name:   fields.Name,
		TypeID: fields.TypeID,
		BaseID: fields.BaseID,
		Image:  fields.Image,
	}
}

func listSorted[T any](ctx context.Context, store *Store, table func(*Store) map[int64]T) ([]T, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	return sortedValues(table(store)), nil
}

var _ domain.CatalogRepository = (*catalogRepositoryInMemory)(nil)
