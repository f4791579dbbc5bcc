package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/vladislavdragonenkov/paysheet/internal/domain"
)

const maxRequestBody = 64 << 10

type captureRequest struct {
	OrderID string `json:"orderID"`
}

type captureResponse struct {
	OK   bool            `json:"ok"`
	Data json.RawMessage `json:"data"`
}

type createOrderResponse struct {
	ApprovalURL string          `json:"approvalUrl"`
	OrderID     string          `json:"orderId"`
	Order       json.RawMessage `json:"order,omitempty"`
}

// handleCaptureOrder выполняет capture одобренного заказа.
// Пустое тело считается запросом без orderID.
func (s *Server) handleCaptureOrder(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}

	data, err := s.checkout.Capture(r.Context(), req.OrderID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", req.OrderID).Warn("capture-order failed")
		writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, captureResponse{OK: true, Data: data})
}

// handleCreateOrder создаёт заказ на стороне сервера; mode попадает в return URL.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	mode, err := domain.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	returnURL := s.returnURL(r, mode)
	cancelURL := returnURL + querySeparator(returnURL) + "cancelled=1"

	order, err := s.checkout.CreateOrder(r.Context(), mode, returnURL, cancelURL)
	if err != nil {
		s.logger.WithError(err).WithField("mode", mode).Warn("create-order failed")
		writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createOrderResponse{
		ApprovalURL: order.ApprovalURL,
		OrderID:     order.ID,
		Order:       order.Raw,
	})
}

func (s *Server) returnURL(r *http.Request, mode domain.Mode) string {
	target := s.baseURL(r) + "/return"
	if mode != domain.ModeNone {
		target += "?mode=" + string(mode)
	}
	return target
}

// baseURL возвращает публичный адрес сервиса. За прокси учитывается X-Forwarded-Proto.
func (s *Server) baseURL(r *http.Request) string {
	if s.settings.PublicBaseURL != "" {
		return s.settings.PublicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + r.Host
}

func querySeparator(rawURL string) string {
	if strings.Contains(rawURL, "?") {
		return "&"
	}
	return "?"
}
