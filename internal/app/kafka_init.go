package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/paysheet/internal/messaging/kafka"
)

// checkoutEvents - producer и publisher событий checkout. Нулевое значение
// означает, что события выключены.
type checkoutEvents struct {
	producer  *kafka.Producer
	publisher *kafka.CheckoutPublisher
}

// enabled сообщает, удалось ли подключиться к брокерам.
func (e checkoutEvents) enabled() bool {
	return e.producer != nil && e.publisher != nil
}

// initCheckoutEvents подключается к Kafka, если в конфигурации заданы брокеры.
// Ошибка подключения возвращается вместе с нулевым checkoutEvents: вызывающий
// решает, продолжать ли без событий.
func initCheckoutEvents(cfg Config, logger *log.Entry) (checkoutEvents, error) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		logger.Debug("KAFKA_BROKERS не задан, события checkout не публикуются")
		return checkoutEvents{}, nil
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).WithField("brokers", brokers).
			Warn("kafka недоступна, продолжаем без событий checkout")
		return checkoutEvents{}, err
	}

	publisher := kafka.NewCheckoutPublisher(producer, cfg.KafkaTopic)
	logger.WithFields(log.Fields{
		"brokers": brokers,
		"topic":   publisher.Topic(),
	}).Info("checkout events enabled")
	return checkoutEvents{producer: producer, publisher: publisher}, nil
}

// close закрывает producer; для выключенных событий ничего не делает.
func (e checkoutEvents) close(logger *log.Entry) {
	if e.producer == nil {
		return
	}
	if err := e.producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("kafka producer closed")
}
