// Package catalog отдаёт справочники меню и управляет блюдами.
package catalog

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// Service — прикладной слой каталога.
type Service struct {
	repo   domain.CatalogRepository
	logger *log.Entry
}

// NewService создаёт сервис каталога. logger может быть nil.
func NewService(repo domain.CatalogRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	return &Service{repo: repo, logger: logger}
}

// ListDishes возвращает блюда; пустая ссылка на изображение заменяется заглушкой.
func (s *Service) ListDishes(ctx context.Context) ([]domain.Dish, error) {
	dishes, err := s.repo.ListDishes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range dishes {
		dishes[i] = dishes[i].WithDefaultImage()
	}
	return dishes, nil
}

func (s *Service) ListDishTypes(ctx context.Context) ([]domain.DishType, error) {
	return s.repo.ListDishTypes(ctx)
}

func (s *Service) ListDishBases(ctx context.Context) ([]domain.DishBase, error) {
	return s.repo.ListDishBases(ctx)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) ListPaytypes(ctx context.Context) ([]domain.Paytype, error) {
	return s.repo.ListPaytypes(ctx)
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// StructureByDish возвращает состав блюда; для неизвестного блюда срез пустой.
func (s *Service) StructureByDish(ctx context.Context, dishID int64) ([]domain.Structure, error) {
	if dishID <= 0 {
		return nil, domain.NewValidationError([]error{domain.ErrIDInvalid})
	}
	return s.repo.StructureByDish(ctx, dishID)
}

// CreateDish проверяет поля и возвращает идентификатор нового блюда.
func (s *Service) CreateDish(ctx context.Context, fields domain.DishFields) (int64, error) {
	if err := domain.NewValidationError(fields.Validate()); err != nil {
		return 0, err
	}

	id, err := s.repo.CreateDish(ctx, fields)
	if err != nil {
		return 0, err
	}
	s.logger.WithField("dish_id", id).Info("dish created")
	return id, nil
}

// UpdateDish возвращает число обновлённых строк: 0 означает, что блюда нет.
func (s *Service) UpdateDish(ctx context.Context, id int64, fields domain.DishFields) (int64, error) {
	errs := fields.Validate()
	if id <= 0 {
		errs = append(errs, domain.ErrIDInvalid)
	}
	if err := domain.NewValidationError(errs); err != nil {
		return 0, err
	}

	affected, err := s.repo.UpdateDish(ctx, id, fields)
	if err != nil {
		return 0, err
	}
	s.logger.WithFields(log.Fields{"dish_id": id, "affected": affected}).Debug("dish updated")
	return affected, nil
}

// DeleteDish возвращает число удалённых строк: 0 означает, что блюда нет.
// Блюдо, на которое ссылается состав, не удаляется (ErrReferenceViolation).
func (s *Service) DeleteDish(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, domain.NewValidationError([]error{domain.ErrIDInvalid})
	}

	affected, err := s.repo.DeleteDish(ctx, id)
	if err != nil {
		return 0, err
	}
	s.logger.WithFields(log.Fields{"dish_id": id, "affected": affected}).Debug("dish deleted")
	return affected, nil
}
