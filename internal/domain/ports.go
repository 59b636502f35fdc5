package domain

import (
	"context"
	"time"
)

// CatalogRepository — доступ к справочным сущностям каталога.
// Списки возвращаются по возрастанию первичного ключа.
type CatalogRepository interface {
	ListDishes(ctx context.Context) ([]Dish, error)
	ListDishTypes(ctx context.Context) ([]DishType, error)
	ListDishBases(ctx context.Context) ([]DishBase, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListPaytypes(ctx context.Context) ([]Paytype, error)
	ListUsers(ctx context.Context) ([]User, error)
	// StructureByDish возвращает состав блюда; пустой срез, если строк нет или блюда нет.
	StructureByDish(ctx context.Context, dishID int64) ([]Structure, error)
	// CreateDish вставляет блюдо и возвращает сгенерированный идентификатор.
	CreateDish(ctx context.Context, fields DishFields) (int64, error)
	// UpdateDish обновляет блюдо и возвращает число затронутых строк (0, если блюда нет).
	UpdateDish(ctx context.Context, id int64, fields DishFields) (int64, error)
	// DeleteDish удаляет блюдо и возвращает число затронутых строк (0, если блюда нет).
	DeleteDish(ctx context.Context, id int64) (int64, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// PlaceOrder атомарно сохраняет заказ и все строки корзины и возвращает
	// сгенерированный идентификатор заказа. При ошибке не остаётся ни одной строки.
	PlaceOrder(ctx context.Context, draft OrderDraft, items []CartLine) (int64, error)
	// OrdersByUser возвращает заказы пользователя по возрастанию идентификатора.
	OrdersByUser(ctx context.Context, userID int64) ([]Order, error)
	// CartByOrder возвращает строки корзины заказа; пустой срез, если их нет.
	CartByOrder(ctx context.Context, orderID int64) ([]CartItem, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(ctx context.Context, key string) (IdempotencyRecord, error)
	MarkDone(ctx context.Context, key string, responseBody []byte, httpStatus int) error
	MarkFailed(ctx context.Context, key string, responseBody []byte, httpStatus int) error
	// ReclaimFailed переводит ключ из failed обратно в processing.
	// true получает только один вызывающий; остальные видят false.
	ReclaimFailed(ctx context.Context, key string, ttlAt time.Time) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error)
}
