package app

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/paysheet/internal/deeplink"
	"github.com/vladislavdragonenkov/paysheet/internal/domain"
	"github.com/vladislavdragonenkov/paysheet/internal/health"
	"github.com/vladislavdragonenkov/paysheet/internal/metrics"
	"github.com/vladislavdragonenkov/paysheet/internal/paypal"
	"github.com/vladislavdragonenkov/paysheet/internal/service/checkout"
	"github.com/vladislavdragonenkov/paysheet/internal/service/httpapi"
	"github.com/vladislavdragonenkov/paysheet/internal/service/processor"
	"github.com/vladislavdragonenkov/paysheet/internal/version"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Processor domain.Processor
	Catalog   *deeplink.Catalog
	Metrics   *metrics.CheckoutMetrics
	Publisher domain.EventPublisher
	Checkout  *checkout.Service
	Logger    *log.Entry

	events checkoutEvents
}

// NewDependencies создаёт зависимости по конфигурации. registerer может быть nil,
// тогда метрики регистрируются в глобальном реестре Prometheus.
// Недоступная Kafka не мешает запуску: события просто не публикуются.
func NewDependencies(cfg Config, registerer prometheus.Registerer, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	proc, err := newProcessor(cfg, logger)
	if err != nil {
		return nil, err
	}

	catalog, err := deeplink.LoadCatalog(cfg.StrategiesFile)
	if err != nil {
		return nil, fmt.Errorf("load deeplink strategies: %w", err)
	}

	var checkoutMetrics *metrics.CheckoutMetrics
	if registerer != nil {
		checkoutMetrics = metrics.NewCheckoutMetricsWithRegisterer(registerer)
	} else {
		checkoutMetrics = metrics.NewCheckoutMetrics()
	}

	deps := &Dependencies{
		Processor: proc,
		Catalog:   catalog,
		Metrics:   checkoutMetrics,
		Logger:    logger,
	}

	if events, err := initCheckoutEvents(cfg, logger); err == nil && events.enabled() {
		deps.events = events
		deps.Publisher = events.publisher
	}

	deps.Checkout = checkout.NewService(
		deps.Processor,
		deps.Publisher,
		deps.Metrics,
		checkout.Options{Currency: cfg.Currency, Amount: cfg.Amount},
		logger.WithField("component", "checkout"),
	)
	return deps, nil
}

// HTTPHandler собирает публичный HTTP-обработчик.
func (d *Dependencies) HTTPHandler(cfg Config) http.Handler {
	server := httpapi.NewServer(d.Checkout, d.Catalog, httpapi.Settings{
		Scheme:        cfg.Scheme,
		RedirectPath:  cfg.RedirectPath,
		PublicBaseURL: cfg.PublicBaseURL,
		ClientID:      cfg.PayPalClientID,
		SDKURL:        cfg.PayPalSDKURL,
		Simulate:      cfg.Processor == ProcessorMock,
		Processor:     cfg.Processor,
		Version:       version.String(),
	}, d.Metrics, d.Logger.WithField("component", "http"))
	return server.Handler()
}

// HealthHandler возвращает /healthz с проверками провайдера, каталога и Kafka.
func (d *Dependencies) HealthHandler(cfg Config) *health.Handler {
	handler := health.NewHandler(version.GetVersion())
	handler.RegisterChecker("processor", health.NewSimpleChecker("processor", func() error {
		if d.Processor == nil {
			return fmt.Errorf("processor %q is not initialized", cfg.Processor)
		}
		return nil
	}))
	handler.RegisterChecker("strategies", health.NewSimpleChecker("strategies", func() error {
		if d.Catalog == nil || d.Catalog.Len() == 0 {
			return deeplink.ErrCatalogEmpty
		}
		return nil
	}))
	if len(cfg.Brokers()) > 0 {
		handler.RegisterChecker("kafka", health.NewOptionalChecker("kafka", func() error {
			if !d.events.enabled() {
				return fmt.Errorf("kafka producer is not connected")
			}
			return nil
		}))
	}
	return handler
}

// Close освобождает внешние ресурсы.
func (d *Dependencies) Close() {
	d.events.close(d.Logger)
	d.events = checkoutEvents{}
}

func newProcessor(cfg Config, logger *log.Entry) (domain.Processor, error) {
	if cfg.Processor == ProcessorMock {
		logger.Warn("используется mock-провайдер: реальные платежи не выполняются")
		return processor.NewMockService(), nil
	}

	client, err := paypal.NewClient(paypal.Config{
		BaseURL:      cfg.PayPalBaseURL,
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		Timeout:      cfg.PayPalTimeout,
	}, nil, logger.WithField("component", "paypal"))
	if err != nil {
		return nil, fmt.Errorf("create paypal client: %w", err)
	}
	return client, nil
}
