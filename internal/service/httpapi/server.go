// Package httpapi обслуживает публичный HTTP-интерфейс: capture, создание заказа,
// bounce-редирект в приложение и демонстрационные страницы стратегий возврата.
package httpapi

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/paysheet/internal/deeplink"
	"github.com/vladislavdragonenkov/paysheet/internal/health"
	"github.com/vladislavdragonenkov/paysheet/internal/metrics"
	"github.com/vladislavdragonenkov/paysheet/internal/service/checkout"
)

// Settings содержит неизменяемые параметры страниц и редиректов.
type Settings struct {
	// Scheme и RedirectPath задают ссылку приложения: <Scheme>://<RedirectPath>.
	Scheme       string
	RedirectPath string
	// PublicBaseURL используется для return/cancel URL; если пуст, берётся из запроса.
	PublicBaseURL string
	// ClientID и SDKURL подключают клиентский скрипт провайдера.
	ClientID string
	SDKURL   string
	// Simulate показывает кнопку имитации оплаты вместо кнопок провайдера.
	Simulate  bool
	Processor string
	Version   string
}

// Server собирает обработчики публичного API.
type Server struct {
	checkout *checkout.Service
	catalog  *deeplink.Catalog
	probe    *health.Probe
	metrics  *metrics.CheckoutMetrics
	settings Settings
	logger   *log.Entry
}

// NewServer создаёт сервер. checkoutMetrics может быть nil.
func NewServer(
	svc *checkout.Service,
	catalog *deeplink.Catalog,
	settings Settings,
	checkoutMetrics *metrics.CheckoutMetrics,
	logger *log.Entry,
) *Server {
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	if catalog == nil {
		catalog = deeplink.DefaultCatalog()
	}
	settings.PublicBaseURL = strings.TrimRight(settings.PublicBaseURL, "/")
	return &Server{
		checkout: svc,
		catalog:  catalog,
		probe:    health.NewProbe(),
		metrics:  checkoutMetrics,
		settings: settings,
		logger:   logger,
	}
}

// inlineRoutes закрепляет исторические адреса демонстрационных страниц за планами каталога.
var inlineRoutes = []struct {
	Path string
	Plan string
}{
	{Path: "/inline-bug", Plan: deeplink.PlanBug},
	{Path: "/inline-fix-top", Plan: deeplink.PlanTop},
	{Path: "/inline-fix-302", Plan: deeplink.PlanBounce},
	{Path: "/inline-fix-combo", Plan: deeplink.PlanCombo},
}

// Handler возвращает корневой обработчик со всеми маршрутами и middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /capture-order", s.handleCaptureOrder)
	mux.HandleFunc("POST /create-order", s.handleCreateOrder)
	mux.HandleFunc("GET "+deeplink.BounceRoute, s.handleBounce)
	mux.Handle("GET /health", s.probe)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	for _, route := range inlineRoutes {
		mux.HandleFunc("GET "+route.Path, s.inlinePage(route.Plan))
	}
	mux.HandleFunc("GET /inline/{strategy}", s.handleStrategyPage)
	mux.HandleFunc("GET /return", s.handleReturn)
	mux.HandleFunc("GET /redirect-flow", s.handleRedirectFlow)

	var handler http.Handler = mux
	handler = NoCache(handler)
	handler = RequestLogger(handler, s.logger, s.metrics)
	handler = RequestID(handler)
	return handler
}
