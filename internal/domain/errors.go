package domain

import "errors"

var (
	// ErrInvalidRequest — общий признак ошибки валидации; запрос отклонён до обращения к хранилищу.
	ErrInvalidRequest = errors.New("invalid request")
	// Ошибка пустой корзины.
	ErrCartEmpty = errors.New("order must contain at least one cart item")
	// Ошибка некорректного количества товара (<= 0).
	ErrCartQtyInvalid = errors.New("cart item quantity must be greater than zero")
	// Ошибка отсутствующего идентификатора продукта в строке корзины.
	ErrProductRequired = errors.New("cart item product id is required")
	// Ошибка отсутствующего идентификатора пользователя.
	ErrUserRequired = errors.New("order user id is required")
	// Ошибка пустого адреса доставки.
	ErrAddressRequired = errors.New("order address is required")
	// Ошибка отсутствующего способа оплаты.
	ErrPaytypeRequired = errors.New("order paytype id is required")
	// Ошибка некорректной даты заказа.
	ErrOrderDateInvalid = errors.New("order date is invalid")
	// Ошибка пустого названия блюда.
	ErrDishNameRequired = errors.New("dish name is required")
	// Ошибка отсутствующего типа блюда.
	ErrDishTypeRequired = errors.New("dish type id is required")
	// Ошибка отсутствующей основы блюда.
	ErrDishBaseRequired = errors.New("dish base id is required")
	// ErrIDInvalid — идентификатор в запросе не является положительным числом.
	ErrIDInvalid = errors.New("id must be a positive integer")

	// ErrReferenceViolation — хранилище отклонило запись со ссылкой на несуществующую строку
	// (или удаление строки, на которую ещё ссылаются). Клиент может исправить запрос.
	ErrReferenceViolation = errors.New("referential integrity violation")
	// ErrConflict — нарушение уникальности.
	ErrConflict = errors.New("unique constraint violation")
	// ErrDataAccess — потеря соединения, таймаут запроса или иная ошибка хранилища.
	ErrDataAccess = errors.New("data access error")
	// ErrPoolTimeout — не удалось получить соединение из пула за отведённое время; запрос можно повторить.
	ErrPoolTimeout = errors.New("connection pool acquire timeout")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsRetriable сообщает, что запрос можно повторить на усмотрение клиента.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrPoolTimeout)
}

// IsClientError сообщает, что ошибку может исправить клиент.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrReferenceViolation) || errors.Is(err, ErrConflict)
}
