package kafka

import (
	"fmt"

	"github.com/vladislavdragonenkov/paysheet/internal/domain"
)

// TopicCheckoutEvents - topic по умолчанию для событий checkout.
const TopicCheckoutEvents = "paysheet.checkout.events"

// HeaderEventType - заголовок сообщения с типом события.
const HeaderEventType = "event_type"

// CheckoutPublisher публикует события checkout в заданный topic.
// Ключ сообщения - Order Reference, чтобы события одного заказа шли в одну партицию.
type CheckoutPublisher struct {
	producer *Producer
	topic    string
}

// NewCheckoutPublisher создаёт паблишер событий checkout.
func NewCheckoutPublisher(producer *Producer, topic string) *CheckoutPublisher {
	if topic == "" {
		topic = TopicCheckoutEvents
	}
	return &CheckoutPublisher{
		producer: producer,
		topic:    topic,
	}
}

// PublishCheckoutEvent отправляет событие в Kafka.
func (p *CheckoutPublisher) PublishCheckoutEvent(event domain.CheckoutEvent) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka checkout publisher is not initialized")
	}
	return p.producer.PublishEvent(p.topic, event.OrderID, event, map[string]string{
		HeaderEventType: string(event.Type),
	})
}

// Topic возвращает topic публикации.
func (p *CheckoutPublisher) Topic() string {
	return p.topic
}

var _ domain.EventPublisher = (*CheckoutPublisher)(nil)
