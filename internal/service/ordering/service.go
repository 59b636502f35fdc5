// Package ordering размещает заказы и отдаёт историю заказов пользователя.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
)

// Service — прикладной слой размещения заказов.
type Service struct {
	orders   domain.OrderRepository
	paytypes PaytypeSource
	logger   *log.Entry
	metrics  *metrics.OrderMetrics
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics задаёт метрики размещения заказов.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// PaytypeSource отдаёт способы оплаты, доступные при оформлении заказа.
type PaytypeSource interface {
	ListPaytypes(ctx context.Context) ([]domain.Paytype, error)
}

// WithPaytypes задаёт источник способов оплаты; обычно это CatalogRepository.
func WithPaytypes(src PaytypeSource) Option {
	return func(s *Service) {
		s.paytypes = src
	}
}

// WithClock подменяет источник текущего времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создаёт сервис заказов.
func NewService(orders domain.OrderRepository, opts ...Option) *Service {
	s := &Service{
		orders: orders,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "ordering")
	}
	return s
}

// PlaceOrder проверяет запрос и атомарно сохраняет заказ вместе с корзиной.
// Пустая дата заменяется текущей датой в UTC.
func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (int64, error) {
	if req.Draft.Date.IsZero() {
		req.Draft.Date = domain.DateOf(s.now().UTC())
	}

	if errs := req.Validate(); len(errs) > 0 {
		s.metrics.RecordRejected(metrics.RejectValidation)
		return 0, domain.NewValidationError(errs)
	}

	started := s.now()
	orderID, err := s.orders.PlaceOrder(ctx, req.Draft, req.Items)
	if err != nil {
		s.metrics.RecordRejected(rejectReason(err))
		entry := s.logger.WithError(err).WithFields(log.Fields{
			"user_id": req.Draft.UserID,
			"items":   len(req.Items),
		})
		if domain.IsClientError(err) {
			entry.Info("order rejected by storage")
		} else {
			entry.Error("place order failed")
		}
		return 0, fmt.Errorf("place order: %w", err)
	}

	s.metrics.RecordPlaced(len(req.Items), s.now().Sub(started))
	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"user_id":  req.Draft.UserID,
		"items":    len(req.Items),
	}).Info("order placed")

	return orderID, nil
}

// OrdersByUser возвращает заказы пользователя по возрастанию идентификатора.
func (s *Service) OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	if userID <= 0 {
		return nil, domain.NewValidationError([]error{domain.ErrIDInvalid})
	}
	return s.orders.OrdersByUser(ctx, userID)
}

// CartByOrder возвращает строки корзины заказа.
func (s *Service) CartByOrder(ctx context.Context, orderID int64) ([]domain.CartItem, error) {
	if orderID <= 0 {
		return nil, domain.NewValidationError([]error{domain.ErrIDInvalid})
	}
	return s.orders.CartByOrder(ctx, orderID)
}

// ListPaytypes возвращает способы оплаты по возрастанию идентификатора.
func (s *Service) ListPaytypes(ctx context.Context) ([]domain.Paytype, error) {
	if s.paytypes == nil {
		return nil, fmt.Errorf("list paytypes: source is not configured: %w", domain.ErrDataAccess)
	}
	return s.paytypes.ListPaytypes(ctx)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrPoolTimeout):
		return metrics.RejectPool
	case errors.Is(err, domain.ErrReferenceViolation):
		return metrics.RejectReference
	case errors.Is(err, domain.ErrInvalidRequest):
		return metrics.RejectValidation
	default:
		return metrics.RejectStorage
	}
}
