package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы вызовов провайдера.
const (
	OutcomeSuccess   = "success"
	OutcomeUpstream  = "upstream_error"
	OutcomeTransport = "transport_error"
)

// Результаты capture-запросов.
const (
	CaptureSucceeded = "succeeded"
	CaptureFailed    = "failed"
	CaptureRejected  = "rejected"
)

// CheckoutMetrics содержит метрики checkout и HTTP-слоя.
// Методы безопасно вызывать на nil-указателе.
type CheckoutMetrics struct {
	// Вызовы платёжного провайдера
	upstreamCalls    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec

	// Результаты /capture-order
	captures *prometheus.CounterVec

	// HTTP-слой
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge

	// Deeplink
	bounces   prometheus.Counter
	pageViews *prometheus.CounterVec
}

// NewCheckoutMetrics регистрирует метрики в DefaultRegisterer.
func NewCheckoutMetrics() *CheckoutMetrics {
	return NewCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCheckoutMetricsWithRegisterer регистрирует метрики в заданном реестре (изолированные тесты).
func NewCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		upstreamCalls: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "paysheet_upstream_calls_total",
			Help: "Total number of payment processor calls by operation and outcome",
		}, []string{"op", "outcome"}),
		upstreamDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "paysheet_upstream_call_duration_seconds",
			Help:    "Duration of payment processor calls in seconds",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"op"}),
		captures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "paysheet_captures_total",
			Help: "Total number of capture requests by result",
		}, []string{"result"}),
		httpRequests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "paysheet_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		httpDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "paysheet_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		inFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "paysheet_http_in_flight_requests",
			Help: "Number of HTTP requests currently being served",
		}),
		bounces: registerCounter(registerer, prometheus.CounterOpts{
			Name: "paysheet_deeplink_bounces_total",
			Help: "Total number of 302 bounces to the app scheme",
		}),
		pageViews: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "paysheet_demo_page_views_total",
			Help: "Total number of demonstration page renders by strategy",
		}, []string{"strategy"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordUpstreamCall фиксирует вызов провайдера и его длительность.
func (m *CheckoutMetrics) RecordUpstreamCall(op, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamCalls.WithLabelValues(op, outcome).Inc()
	m.upstreamDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordCapture увеличивает счётчик capture-запросов с заданным результатом.
func (m *CheckoutMetrics) RecordCapture(result string) {
	if m == nil {
		return
	}
	m.captures.WithLabelValues(result).Inc()
}

// RecordHTTPRequest фиксирует обработанный HTTP-запрос.
func (m *CheckoutMetrics) RecordHTTPRequest(route string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RequestStarted увеличивает количество запросов в обработке.
func (m *CheckoutMetrics) RequestStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

// RequestFinished уменьшает количество запросов в обработке.
func (m *CheckoutMetrics) RequestFinished() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}

// RecordBounce увеличивает счётчик 302-редиректов на custom scheme.
func (m *CheckoutMetrics) RecordBounce() {
	if m == nil {
		return
	}
	m.bounces.Inc()
}

// RecordPageView увеличивает счётчик показов демо-страницы стратегии.
func (m *CheckoutMetrics) RecordPageView(strategy string) {
	if m == nil {
		return
	}
	m.pageViews.WithLabelValues(strategy).Inc()
}
