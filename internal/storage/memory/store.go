package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// Store — общее in-memory состояние каталога и заказов.
// Все репозитории пакета работают поверх одного Store, чтобы проверять ссылки
// между таблицами под одной блокировкой.
type Store struct {
	mu sync.RWMutex

	dishTypes map[int64]domain.DishType
	dishBases map[int64]domain.DishBase
	products  map[int64]domain.Product
	dishes    map[int64]domain.Dish
	structure []domain.Structure
	users     map[int64]domain.User
	paytypes  map[int64]domain.Paytype

	orders []domain.Order
	cart   []domain.CartItem

	lastDishID  int64
	lastOrderID int64
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		dishTypes: make(map[int64]domain.DishType),
		dishBases: make(map[int64]domain.DishBase),
		products:  make(map[int64]domain.Product),
		dishes:    make(map[int64]domain.Dish),
		users:     make(map[int64]domain.User),
		paytypes:  make(map[int64]domain.Paytype),
	}
}

// SeedData — справочные данные для начального заполнения.
type SeedData struct {
	DishTypes []domain.DishType
	DishBases []domain.DishBase
	Products  []domain.Product
	Dishes    []domain.Dish
	Structure []domain.Structure
	Users     []domain.User
	Paytypes  []domain.Paytype
}

// Seed добавляет справочные данные, проверяя ссылки блюд и состава.
func (s *Store) Seed(data SeedData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range data.DishTypes {
		s.dishTypes[t.ID] = t
	}
	for _, b := range data.DishBases {
		s.dishBases[b.ID] = b
	}
	for _, p := range data.Products {
		s.products[p.ID] = p
	}
	for _, u := range data.Users {
		s.users[u.ID] = u
	}
	for _, p := range data.Paytypes {
		s.paytypes[p.ID] = p
	}
	for _, d := range data.Dishes {
		if err := s.checkDishRefs(d.TypeID, d.BaseID); err != nil {
			return fmt.Errorf("seed dish %d: %w", d.ID, err)
		}
		s.dishes[d.ID] = d
		s.lastDishID = max(s.lastDishID, d.ID)
	}
	for _, row := range data.Structure {
		if _, ok := s.dishes[row.DishID]; !ok {
			return fmt.Errorf("seed structure: dish %d: %w", row.DishID, domain.ErrReferenceViolation)
		}
		if _, ok := s.products[row.ProductID]; !ok {
			return fmt.Errorf("seed structure: product %d: %w", row.ProductID, domain.ErrReferenceViolation)
		}
		s.structure = append(s.structure, row)
	}

	return nil
}

func (s *Store) checkDishRefs(typeID, baseID int64) error {
	if _, ok := s.dishTypes[typeID]; !ok {
		return fmt.Errorf("dish type %d does not exist: %w", typeID, domain.ErrReferenceViolation)
	}
	if _, ok := s.dishBases[baseID]; !ok {
		return fmt.Errorf("dish base %d does not exist: %w", baseID, domain.ErrReferenceViolation)
	}
	return nil
}

// checkContext повторяет поведение драйвера БД: отменённый запрос даёт ErrDataAccess.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDataAccess, err)
	}
	return nil
}

// sortedValues возвращает значения карты по возрастанию ключа.
func sortedValues[T any](items map[int64]T) []T {
	keys := make([]int64, 0, len(items))
	for id := range items {
		keys = append(keys, id)
	}
	slices.Sort(keys)

	result := make([]T, 0, len(keys))
	for _, id := range keys {
		result = append(result, items[id])
	}
	return result
}

func sortStructure(rows []domain.Structure) {
	slices.SortStableFunc(rows, func(a, b domain.Structure) int {
		return cmp.Compare(a.ProductID, b.ProductID)
	})
}

// DemoSeed — небольшой каталог для локального запуска без базы данных.
func DemoSeed() SeedData {
	return SeedData{
		DishTypes: []domain.DishType{
			{ID: 1, Name: "Soups"},
			{ID: 2, Name: "Salads"},
			{ID: 3, Name: "Main courses"},
		},
		DishBases: []domain.DishBase{
			{ID: 1, Name: "Broth", Exit: 300},
			{ID: 2, Name: "Greens", Exit: 150},
			{ID: 3, Name: "Grain", Exit: 250},
		},
		Products: []domain.Product{
			{ID: 1, Name: "Beef", Protein: 26, Fats: 15, Carbohydrates: 0},
			{ID: 2, Name: "Cabbage", Protein: 1, Fats: 0, Carbohydrates: 6},
			{ID: 3, Name: "Potato", Protein: 2, Fats: 0, Carbohydrates: 17},
			{ID: 4, Name: "Cucumber", Protein: 1, Fats: 0, Carbohydrates: 4},
			{ID: 5, Name: "Buckwheat", Protein: 13, Fats: 3, Carbohydrates: 72},
			{ID: 9, Name: "Beetroot", Protein: 2, Fats: 0, Carbohydrates: 10},
		},
		Dishes: []domain.Dish{
			{ID: 1, Name: "Borscht", TypeID: 1, BaseID: 1, Image: "borscht.png"},
			{ID: 2, Name: "Garden salad", TypeID: 2, BaseID: 2},
			{ID: 3, Name: "Buckwheat with beef", TypeID: 3, BaseID: 3, Image: "buckwheat.png"},
		},
		Structure: []domain.Structure{
			{DishID: 1, ProductID: 1, Weight: 80},
			{DishID: 1, ProductID: 2, Weight: 60},
			{DishID: 1, ProductID: 3, Weight: 50},
			{DishID: 1, ProductID: 9, Weight: 70},
			{DishID: 2, ProductID: 2, Weight: 70},
			{DishID: 2, ProductID: 4, Weight: 80},
			{DishID: 3, ProductID: 1, Weight: 100},
			{DishID: 3, ProductID: 5, Weight: 150},
		},
		Users: []domain.User{
			{
				ID: 7, FirstName: "Anna", LastName: "Smirnova", Patronymic: "Igorevna",
				BirthDate: domain.NewDate(1994, 4, 12), Login: "anna", Password: "demo",
				Phone: "+10000000007", Address: "12 Main St", RoleID: 1,
			},
		},
		Paytypes: []domain.Paytype{
			{ID: 1, Name: "Cash"},
			{ID: 2, Name: "Card"},
		},
	}
}
