package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func ok() error { return nil }

func failing(msg string) func() error {
	return func() error { return errors.New(msg) }
}

func TestHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		checkers   map[string]*SimpleChecker
		wantCode   int
		wantStatus Status
	}{
		{
			name:       "no checks",
			wantCode:   http.StatusOK,
			wantStatus: StatusHealthy,
		},
		{
			name: "all healthy",
			checkers: map[string]*SimpleChecker{
				"processor":  NewSimpleChecker("processor", ok),
				"strategies": NewSimpleChecker("strategies", ok),
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusHealthy,
		},
		{
			name: "optional component down",
			checkers: map[string]*SimpleChecker{
				"processor": NewSimpleChecker("processor", ok),
				"kafka":     NewOptionalChecker("kafka", failing("no brokers")),
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
		},
		{
			name: "required component down",
			checkers: map[string]*SimpleChecker{
				"processor": NewSimpleChecker("processor", failing("processor credentials missing")),
				"kafka":     NewOptionalChecker("kafka", failing("no brokers")),
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler("v1.0.0")
			for name, checker := range tt.checkers {
				handler.RegisterChecker(name, checker)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			require.Equal(t, tt.wantCode, w.Code)
			require.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var response Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			require.Equal(t, tt.wantStatus, response.Status)
			require.Equal(t, "v1.0.0", response.Version)
			require.Len(t, response.Checks, len(tt.checkers))
		})
	}
}

func TestHandler_RegisterCheckerReplaces(t *testing.T) {
	handler := NewHandler("test")
	handler.RegisterChecker("processor", NewSimpleChecker("processor", failing("down")))
	handler.RegisterChecker("processor", NewSimpleChecker("processor", ok))

	response := handler.Evaluate()

	require.Equal(t, StatusHealthy, response.Status)
	require.Len(t, response.Checks, 1)
}

func TestLivenessHandler(t *testing.T) {
	w := httptest.NewRecorder()
	LivenessHandler(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		checker  *SimpleChecker
		wantCode int
		wantBody string
	}{
		{name: "ready", checker: NewSimpleChecker("strategies", ok), wantCode: http.StatusOK, wantBody: "ready"},
		{name: "degraded is ready", checker: NewOptionalChecker("kafka", failing("down")), wantCode: http.StatusOK, wantBody: "ready"},
		{name: "not ready", checker: NewSimpleChecker("strategies", failing("empty")), wantCode: http.StatusServiceUnavailable, wantBody: "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler("test")
			handler.RegisterChecker("component", tt.checker)

			w := httptest.NewRecorder()
			handler.ReadinessHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			require.Equal(t, tt.wantCode, w.Code)
			require.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestSimpleChecker(t *testing.T) {
	check := NewSimpleChecker("processor", ok).Check()
	require.Equal(t, "processor", check.Name)
	require.Equal(t, StatusHealthy, check.Status)
	require.Empty(t, check.Message)
	require.GreaterOrEqual(t, check.DurationMs, int64(0))

	check = NewSimpleChecker("processor", failing("credentials missing")).Check()
	require.Equal(t, StatusUnhealthy, check.Status)
	require.Equal(t, "credentials missing", check.Message)

	check = NewOptionalChecker("kafka", failing("no brokers")).Check()
	require.Equal(t, StatusDegraded, check.Status)
	require.Equal(t, "no brokers", check.Message)
}
