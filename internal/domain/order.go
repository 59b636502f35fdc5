package domain

import (
	"errors"
	"fmt"
	"strings"
)

// OrderStatusPlaced — единственное состояние заказа: он существует, значит размещён.
const OrderStatusPlaced = "placed"

// Order — сохранённый заказ.
type Order struct {
	ID        int64  `json:"order_id"`
	UserID    int64  `json:"order_user_id"`
	Address   string `json:"order_address"`
	Date      Date   `json:"order_date"`
	PaytypeID int64  `json:"order_paytype_id"`
}

// OrderDraft — заказ до вставки, без идентификатора.
type OrderDraft struct {
	UserID    int64  `json:"order_user_id"`
	Address   string `json:"order_address"`
	Date      Date   `json:"order_date"`
	PaytypeID int64  `json:"order_paytype_id"`
}

// CartItem — сохранённая строка корзины заказа.
type CartItem struct {
	OrderID   int64 `json:"cart_order_id"`
	ProductID int64 `json:"cart_prod_id"`
	Quantity  int32 `json:"cart_prod_count"`
}

// CartLine — строка корзины до вставки: идентификатор заказа ещё не известен.
type CartLine struct {
	ProductID int64 `json:"cart_prod_id"`
	Quantity  int32 `json:"cart_prod_count"`
}

// PlaceOrderRequest — составной запрос на размещение заказа.
// Items хранит порядок, в котором клиент передал строки.
type PlaceOrderRequest struct {
	Draft OrderDraft `json:"order"`
	Items []CartLine `json:"items"`
}

// Validate проверяет запрос до обращения к хранилищу и возвращает список замечаний.
// Существование пользователя, способа оплаты и продуктов проверяет хранилище.
func (r PlaceOrderRequest) Validate() []error {
	var errs []error

	if r.Draft.UserID <= 0 {
		errs = append(errs, ErrUserRequired)
	}
	if strings.TrimSpace(r.Draft.Address) == "" {
		errs = append(errs, ErrAddressRequired)
	}
	if r.Draft.PaytypeID <= 0 {
		errs = append(errs, ErrPaytypeRequired)
	}
	if r.Draft.Date.IsZero() {
		errs = append(errs, ErrOrderDateInvalid)
	}
	if len(r.Items) == 0 {
		errs = append(errs, ErrCartEmpty)
	}

	for idx, item := range r.Items {
		if item.ProductID <= 0 {
			errs = append(errs, fmt.Errorf("item[%d]: %w", idx, ErrProductRequired))
		}
		if item.Quantity <= 0 {
			errs = append(errs, fmt.Errorf("item[%d]: %w", idx, ErrCartQtyInvalid))
		}
	}

	return errs
}

// CartItems привязывает строки корзины к сгенерированному идентификатору заказа.
func (r PlaceOrderRequest) CartItems(orderID int64) []CartItem {
	items := make([]CartItem, 0, len(r.Items))
	for _, line := range r.Items {
		items = append(items, CartItem{OrderID: orderID, ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return items
}

// NewValidationError собирает замечания в одну ошибку, которая совпадает
// и с ErrInvalidRequest, и с каждым конкретным замечанием через errors.Is.
func NewValidationError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(errs...))
}
