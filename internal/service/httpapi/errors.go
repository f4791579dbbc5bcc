package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/paysheet/internal/domain"
)

const msgInvalidBody = "invalid request body"

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type upstreamDetails struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{Error: msg, Details: details})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeCheckoutError переводит ошибку сценария checkout в HTTP-ответ.
// Ответ провайдера на capture возвращается как есть в details.
func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderIDRequired), errors.Is(err, domain.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, rootMessage(err), nil)
		return
	}

	upstream, ok := domain.AsUpstream(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if upstream.Op == domain.OpCapture {
		writeError(w, http.StatusInternalServerError, "capture failed", upstreamBody(upstream.Body))
		return
	}
	writeError(w, http.StatusInternalServerError, upstream.Error(), upstreamDetails{
		Status: upstream.Status,
		Body:   string(upstream.Body),
	})
}

// upstreamBody отдаёт JSON-тело без повторной сериализации, остальное как строку.
func upstreamBody(body []byte) any {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

func rootMessage(err error) string {
	for _, sentinel := range []error{domain.ErrOrderIDRequired, domain.ErrInvalidMode} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
