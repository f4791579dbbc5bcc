package httpapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/paysheet/internal/deeplink"
	"github.com/vladislavdragonenkov/paysheet/internal/domain"
	"github.com/vladislavdragonenkov/paysheet/internal/metrics"
	"github.com/vladislavdragonenkov/paysheet/internal/service/checkout"
	"github.com/vladislavdragonenkov/paysheet/internal/service/httpapi"
	"github.com/vladislavdragonenkov/paysheet/internal/service/processor"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "test")
}

func defaultSettings() httpapi.Settings {
	return httpapi.Settings{
		Scheme:       "screwfixapp",
		RedirectPath: "order-confirmation",
		ClientID:     "client-id",
		SDKURL:       "https://www.paypal.com/sdk/js",
		Processor:    "mock",
	}
}

func newTestHandler(t *testing.T, mock *processor.MockService, settings httpapi.Settings) http.Handler {
	t.Helper()
	m := metrics.NewCheckoutMetricsWithRegisterer(prometheus.NewRegistry())
	svc := checkout.NewService(mock, nil, m, checkout.Options{}, loggerForTests())
	return httpapi.NewServer(svc, deeplink.DefaultCatalog(), settings, m, loggerForTests()).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCaptureOrder_MissingOrderID(t *testing.T) {
	mock := processor.NewMockService()
	h := newTestHandler(t, mock, defaultSettings())

	rec := do(t, h, http.MethodPost, "/capture-order", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"orderID required"}`, rec.Body.String())
	require.Empty(t, mock.Calls())
}

func TestCaptureOrder_EmptyBody(t *testing.T) {
	mock := processor.NewMockService()
	h := newTestHandler(t, mock, defaultSettings())

	rec := do(t, h, http.MethodPost, "/capture-order", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"orderID required"}`, rec.Body.String())
}

func TestCaptureOrder_WhitespaceOrderIDIsForwarded(t *testing.T) {
	mock := processor.NewMockService()
	h := newTestHandler(t, mock, defaultSettings())

	rec := do(t, h, http.MethodPost, "/capture-order", `{"orderID":"  "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{processor.CallToken, "capture:  "}, mock.Calls())
}

func TestCaptureOrder_MalformedBody(t *testing.T) {
	mock := processor.NewMockService()
	h := newTestHandler(t, mock, defaultSettings())

	rec := do(t, h, http.MethodPost, "/capture-order", `{"orderID":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
	require.Empty(t, mock.Calls())
}

func TestCaptureOrder_Success(t *testing.T) {
	mock := processor.NewMockService()
	h := newTestHandler(t, mock, defaultSettings())

	rec := do(t, h, http.MethodPost, "/capture-order", `{"orderID":"5O190127TN364715T"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, true, body["ok"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "COMPLETED", data["status"])
	require.Equal(t, []string{processor.CallToken, "capture:5O190127TN364715T"}, mock.Calls())
}

func TestCaptureOrder_UpstreamCaptureFailure(t *testing.T) {
	mock := processor.NewMockService()
	mock.CaptureErr = &domain.UpstreamError{
		Op:     domain.OpCapture,
		Status: http.StatusUnprocessableEntity,
		Body:   []byte(`{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_NOT_APPROVED"}]}`),
	}
	h := newTestHandler(t, mock, defaultSettings())

	rec := do(t, h, http.MethodPost, "/capture-order", `{"orderID":"ABC"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t,
		`{"error":"capture failed","details":{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_NOT_APPROVED"}]}}`,
		rec.Body.String())
}

func TestCaptureOrder_TokenFailureSkipsCapture(t *testing.T) {
	mock := processor.NewMockService()
	mock.TokenErr = &domain.UpstreamError{
		Op:     domain.OpToken,
		Status: http.StatusUnauthorized,
		Body:   []byte(`{"error":"invalid_client"}`),
	}
	h := newTestHandler(t, mock, defaultSettings())

	rec := do(t, h, http.MethodPost, "/capture-order", `{"orderID":"ABC"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	require.Equal(t, `oauth2 error 401 {"error":"invalid_client"}`, body["error"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(http.StatusUnauthorized), details["status"])
	require.Equal(t, []string{processor.CallToken}, mock.Calls())
}

func TestCaptureOrder_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, processor.NewMockService(), defaultSettings())

	rec := do(t, h, http.MethodGet, "/capture-order", "")

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBounce_RedirectsToAppScheme(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "plain id", target: "/dl?id=ABC123", want: "screwfixapp://order-confirmation?id=ABC123"},
		{name: "empty id", target: "/dl", want: "screwfixapp://order-confirmation?id="},
		{name: "reserved characters", target: "/dl?id=a%20b%26c", want: "screwfixapp://order-confirmation?id=a%20b%26c"},
		{name: "marks kept like encodeURIComponent", target: "/dl?id=x'(y)*!", want: "screwfixapp://order-confirmation?id=x'(y)*!"},
	}

	h := newTestHandler(t, processor.NewMockService(), defaultSettings())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")

			require.Equal(t, http.StatusFound, rec.Code)
			require.Equal(t, tt.want, rec.Header().Get("Location"))
			require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, processor.NewMockService(), defaultSettings())

	first := decode(t, do(t, h, http.MethodGet, "/health", ""))
	second := decode(t, do(t, h, http.MethodGet, "/health", ""))

	require.Equal(t, true, first["ok"])
	require.GreaterOrEqual(t, second["now"].(float64), first["now"].(float64))
}

func TestNoCacheHeaders(t *testing.T) {
	h := newTestHandler(t, processor.NewMockService(), defaultSettings())

	for _, target := range []string{"/", "/health", "/inline-fix-combo", "/return?mode=fix"} {
		rec := do(t, h, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code, target)
		require.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", rec.Header().Get("Cache-Control"), target)
		require.Equal(t, "no-cache", rec.Header().Get("Pragma"), target)
		require.Equal(t, "0", rec.Header().Get("Expires"), target)
	}
}

func TestRequestID(t *testing.T) {
	h := newTestHandler(t, processor.NewMockService(), defaultSettings())

	rec := do(t, h, http.MethodGet, "/health", "")
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	h := newTestHandler(t, processor.NewMockService(), defaultSettings())

	rec := do(t, h, http.MethodGet, "/nope", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
}
