package checkout_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/paysheet/internal/domain"
	"github.com/vladislavdragonenkov/paysheet/internal/metrics"
	"github.com/vladislavdragonenkov/paysheet/internal/service/checkout"
	"github.com/vladislavdragonenkov/paysheet/internal/service/processor"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "test")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.CheckoutEvent
	err    error
}

func (p *recordingPublisher) PublishCheckoutEvent(event domain.CheckoutEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []domain.CheckoutEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.CheckoutEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newService(mock *processor.MockService, publisher domain.EventPublisher) *checkout.Service {
	m := metrics.NewCheckoutMetricsWithRegisterer(prometheus.NewRegistry())
	return checkout.NewService(mock, publisher, m, checkout.Options{}, loggerForTests())
}

func TestCapture_MissingOrderIDMakesNoUpstreamCall(t *testing.T) {
	mock := processor.NewMockService()
	svc := newService(mock, nil)

	_, err := svc.Capture(context.Background(), "")
	require.True(t, errors.Is(err, domain.ErrOrderIDRequired))
	require.Empty(t, mock.Calls())
}

func TestCapture_TokenThenCapture(t *testing.T) {
	mock := processor.NewMockService()
	publisher := &recordingPublisher{}
	svc := newService(mock, publisher)

	data, err := svc.Capture(context.Background(), "5O190127TN364715T")
	require.NoError(t, err)
	require.Contains(t, string(data), "COMPLETED")

	require.Equal(t, []string{processor.CallToken, processor.CallCapture + ":5O190127TN364715T"}, mock.Calls())
	require.Equal(t, []domain.CheckoutEventType{domain.EventCaptureSucceeded}, publisher.types())
}

func TestCapture_TokenFailurePreventsCapture(t *testing.T) {
	mock := processor.NewMockService()
	mock.TokenErr = &domain.UpstreamError{Op: domain.OpToken, Status: http.StatusUnauthorized, Body: []byte(`{"error":"invalid_client"}`)}
	publisher := &recordingPublisher{}
	svc := newService(mock, publisher)

	_, err := svc.Capture(context.Background(), "5O1")
	upstream, ok := domain.AsUpstream(err)
	require.True(t, ok)
	require.Equal(t, domain.OpToken, upstream.Op)

	require.Equal(t, []string{processor.CallToken}, mock.Calls())
	require.Equal(t, []domain.CheckoutEventType{domain.EventCaptureFailed}, publisher.types())
}

func TestCapture_UpstreamErrorIsPreserved(t *testing.T) {
	mock := processor.NewMockService()
	mock.CaptureErr = &domain.UpstreamError{Op: domain.OpCapture, Status: 422, Body: []byte(`{"name":"UNPROCESSABLE_ENTITY"}`)}
	svc := newService(mock, nil)

	_, err := svc.Capture(context.Background(), "5O1")
	upstream, ok := domain.AsUpstream(err)
	require.True(t, ok)
	require.Equal(t, 422, upstream.Status)
	require.JSONEq(t, `{"name":"UNPROCESSABLE_ENTITY"}`, string(upstream.Body))
}

func TestCapture_PublishFailureIsIgnored(t *testing.T) {
	mock := processor.NewMockService()
	publisher := &recordingPublisher{err: errors.New("kafka down")}
	svc := newService(mock, publisher)

	_, err := svc.Capture(context.Background(), "5O1")
	require.NoError(t, err)
	require.Len(t, publisher.types(), 1)
}

func TestCreateOrder(t *testing.T) {
	mock := processor.NewMockService()
	publisher := &recordingPublisher{}
	svc := newService(mock, publisher)

	order, err := svc.CreateOrder(context.Background(), domain.ModeFix, "https://demo.example/return?mode=fix", "https://demo.example/return?mode=fix&cancelled=1")
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	require.Contains(t, order.ApprovalURL, "mode=fix")
	require.Contains(t, order.ApprovalURL, "token="+order.ID)

	require.Equal(t, []string{processor.CallToken, processor.CallCreate}, mock.Calls())
	require.Equal(t, []domain.CheckoutEventType{domain.EventOrderCreated}, publisher.types())
}

func TestCreateOrder_TokenFailure(t *testing.T) {
	mock := processor.NewMockService()
	mock.TokenErr = errors.New("dial tcp: connection refused")
	svc := newService(mock, nil)

	_, err := svc.CreateOrder(context.Background(), domain.ModeBug, "", "")
	require.Error(t, err)
	require.Equal(t, []string{processor.CallToken}, mock.Calls())
}

func TestRecordBounce(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newService(processor.NewMockService(), publisher)

	svc.RecordBounce("5O1", "screwfixapp://order-confirmation?id=5O1")
	require.Equal(t, []domain.CheckoutEventType{domain.EventDeeplinkBounced}, publisher.types())
}

func TestNewService_Defaults(t *testing.T) {
	svc := checkout.NewService(processor.NewMockService(), nil, nil, checkout.Options{}, nil)

	opts := svc.Options()
	require.Equal(t, checkout.DefaultCurrency, opts.Currency)
	require.Equal(t, checkout.DefaultAmount, opts.Amount)

	_, err := svc.Capture(context.Background(), "5O1")
	require.NoError(t, err, "nil metrics and publisher must be tolerated")
}
