package domain

import (
	"context"
	"encoding/json"
)

// Processor описывает взаимодействие с платёжным провайдером.
// Каждый метод выполняет ровно один HTTP-вызов к провайдеру.
type Processor interface {
	// AcquireToken получает bearer token по client-credentials grant.
	AcquireToken(ctx context.Context) (string, error)
	// CaptureOrder списывает средства по заказу и возвращает ответ провайдера как есть.
	CaptureOrder(ctx context.Context, token, orderID string) (json.RawMessage, error)
	// CreateOrder создаёт заказ на стороне провайдера (серверный сценарий с redirect).
	CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (CreatedOrder, error)
}

// EventPublisher публикует события checkout наружу; ошибки публикации не влияют на ответ клиенту.
type EventPublisher interface {
	PublishCheckoutEvent(event CheckoutEvent) error
}
