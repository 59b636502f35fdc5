package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	// AggregateTypeOrder — тип агрегата для событий заказа.
	AggregateTypeOrder = "order"
	// EventTypeOrderPlaced — заказ и корзина зафиксированы одной транзакцией.
	EventTypeOrderPlaced = "order.placed"
)

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OrderPlacedPayload — тело события order.placed.
type OrderPlacedPayload struct {
	Order Order      `json:"order"`
	Items []CartItem `json:"items"`
}

// NewOrderPlacedMessage формирует outbox-сообщение о размещённом заказе.
func NewOrderPlacedMessage(order Order, items []CartItem) (OutboxMessage, error) {
	payload, err := json.Marshal(OrderPlacedPayload{Order: order, Items: items})
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("marshal order placed payload: %w", err)
	}
	return OutboxMessage{
		AggregateType: AggregateTypeOrder,
		AggregateID:   strconv.FormatInt(order.ID, 10),
		EventType:     EventTypeOrderPlaced,
		Payload:       payload,
	}, nil
}
