// Package checkout связывает получение токена и вызовы провайдера в один сценарий на запрос.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/paysheet/internal/domain"
	"github.com/vladislavdragonenkov/paysheet/internal/metrics"
)

// Значения заказа по умолчанию для демонстрационных страниц.
const (
	DefaultCurrency = "GBP"
	DefaultAmount   = "1.00"
)

// Options задаёт параметры создаваемых заказов.
type Options struct {
	Currency string
	Amount   string
}

// Service выполняет capture и создание заказа. Каждый вызов получает новый токен:
// токен не кешируется и вызовы не повторяются.
type Service struct {
	processor domain.Processor
	publisher domain.EventPublisher
	metrics   *metrics.CheckoutMetrics
	logger    *log.Entry
	opts      Options
}

// NewService создаёт сервис. publisher и checkoutMetrics могут быть nil.
func NewService(
	processor domain.Processor,
	publisher domain.EventPublisher,
	checkoutMetrics *metrics.CheckoutMetrics,
	opts Options,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	if opts.Amount == "" {
		opts.Amount = DefaultAmount
	}
	return &Service{
		processor: processor,
		publisher: publisher,
		metrics:   checkoutMetrics,
		logger:    logger,
		opts:      opts,
	}
}

// Options возвращает параметры заказа (валюта и сумма для клиентского SDK).
func (s *Service) Options() Options {
	return s.opts
}

// Capture получает токен и выполняет capture для orderID.
// Пустой orderID отклоняется до любого обращения к провайдеру.
func (s *Service) Capture(ctx context.Context, orderID string) (json.RawMessage, error) {
	if orderID == "" {
		s.metrics.RecordCapture(metrics.CaptureRejected)
		return nil, domain.ErrOrderIDRequired
	}
	logger := s.logger.WithField("order_id", orderID)

	token, err := s.acquireToken(ctx)
	if err != nil {
		s.metrics.RecordCapture(metrics.CaptureFailed)
		s.publish(domain.EventCaptureFailed, orderID, failureMetadata(err))
		logger.WithError(err).Warn("capture aborted: token request failed")
		return nil, err
	}

	start := time.Now()
	data, err := s.processor.CaptureOrder(ctx, token, orderID)
	s.metrics.RecordUpstreamCall(domain.OpCapture, outcomeOf(err), time.Since(start))
	if err != nil {
		s.metrics.RecordCapture(metrics.CaptureFailed)
		s.publish(domain.EventCaptureFailed, orderID, failureMetadata(err))
		logger.WithError(err).Warn("capture failed")
		return nil, fmt.Errorf("capture order %s: %w", orderID, err)
	}

	s.metrics.RecordCapture(metrics.CaptureSucceeded)
	s.publish(domain.EventCaptureSucceeded, orderID, nil)
	logger.Info("capture completed")
	return data, nil
}

// CreateOrder создаёт заказ у провайдера с return/cancel URL страницы возврата.
func (s *Service) CreateOrder(ctx context.Context, mode domain.Mode, returnURL, cancelURL string) (domain.CreatedOrder, error) {
	token, err := s.acquireToken(ctx)
	if err != nil {
		return domain.CreatedOrder{}, err
	}

	start := time.Now()
	order, err := s.processor.CreateOrder(ctx, token, domain.CreateOrderRequest{
		Currency:  s.opts.Currency,
		Amount:    s.opts.Amount,
		ReturnURL: returnURL,
		CancelURL: cancelURL,
	})
	s.metrics.RecordUpstreamCall(domain.OpCreate, outcomeOf(err), time.Since(start))
	if err != nil {
		s.logger.WithError(err).WithField("mode", mode).Warn("create order failed")
		return domain.CreatedOrder{}, fmt.Errorf("create order: %w", err)
	}

	s.publish(domain.EventOrderCreated, order.ID, map[string]any{"mode": string(mode)})
	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"mode":     mode,
	}).Info("order created")
	return order, nil
}

// RecordBounce фиксирует 302-редирект на custom scheme.
func (s *Service) RecordBounce(orderID, target string) {
	s.metrics.RecordBounce()
	s.publish(domain.EventDeeplinkBounced, orderID, map[string]any{"target": target})
}

func (s *Service) acquireToken(ctx context.Context) (string, error) {
	start := time.Now()
	token, err := s.processor.AcquireToken(ctx)
	s.metrics.RecordUpstreamCall(domain.OpToken, outcomeOf(err), time.Since(start))
	if err != nil {
		return "", fmt.Errorf("acquire token: %w", err)
	}
	return token, nil
}

// publish отправляет событие best-effort: ошибка только логируется.
func (s *Service) publish(eventType domain.CheckoutEventType, orderID string, metadata map[string]any) {
	if s.publisher == nil {
		return
	}
	event := domain.NewCheckoutEvent(eventType, orderID, metadata)
	if err := s.publisher.PublishCheckoutEvent(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   orderID,
			"event_type": eventType,
		}).Warn("failed to publish checkout event")
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	if _, ok := domain.AsUpstream(err); ok {
		return metrics.OutcomeUpstream
	}
	return metrics.OutcomeTransport
}

func failureMetadata(err error) map[string]any {
	meta := map[string]any{"error": err.Error()}
	if upstream, ok := domain.AsUpstream(err); ok {
		meta["upstream_op"] = upstream.Op
		meta["upstream_status"] = upstream.Status
	}
	return meta
}
