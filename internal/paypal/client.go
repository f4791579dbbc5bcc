// Package paypal реализует domain.Processor поверх PayPal REST API.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/paysheet/internal/domain"
)

// SandboxBaseURL - REST API песочницы PayPal.
const SandboxBaseURL = "https://api-m.sandbox.paypal.com"

// maxBodyBytes ограничивает чтение ответа провайдера.
const maxBodyBytes = 1 << 20

// Config задаёт учётные данные и адрес API.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client выполняет прямые REST-вызовы без кеширования токена и без повторов.
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
	logger     *log.Entry
}

// NewClient создаёт клиента. httpClient может быть nil.
func NewClient(cfg Config, httpClient *http.Client, logger *log.Entry) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, domain.ErrCredentialsRequired
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = SandboxBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = log.WithField("component", "paypal")
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		clientID:   cfg.ClientID,
		secret:     cfg.ClientSecret,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AcquireToken получает access token по client-credentials grant.
func (c *Client) AcquireToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build oauth2 request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("request oauth2 token: %w", err)
	}
	if !isSuccess(status) {
		return "", &domain.UpstreamError{Op: domain.OpToken, Status: status, Body: body}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("decode oauth2 response: %w", err)
	}
	if token.AccessToken == "" {
		return "", domain.ErrTokenMissing
	}
	return token.AccessToken, nil
}

// CaptureOrder выполняет capture и возвращает тело ответа без изменений.
func (c *Client) CaptureOrder(ctx context.Context, token, orderID string) (json.RawMessage, error) {
	if orderID == "" {
		return nil, domain.ErrOrderIDRequired
	}
	endpoint := c.baseURL + "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build capture request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("request capture: %w", err)
	}
	if !isSuccess(status) {
		return nil, &domain.UpstreamError{Op: domain.OpCapture, Status: status, Body: body}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode capture response: invalid json (status %d)", status)
	}
	return json.RawMessage(body), nil
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount amount `json:"amount"`
}

type applicationContext struct {
	ReturnURL  string `json:"return_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
	UserAction string `json:"user_action,omitempty"`
}

type createOrderBody struct {
	Intent             string              `json:"intent"`
	PurchaseUnits      []purchaseUnit      `json:"purchase_units"`
	ApplicationContext *applicationContext `json:"application_context,omitempty"`
}

type orderResponse struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Links  []domain.Link `json:"links"`
}

// CreateOrder создаёт заказ с intent CAPTURE и return/cancel URL приложения.
func (c *Client) CreateOrder(ctx context.Context, token string, in domain.CreateOrderRequest) (domain.CreatedOrder, error) {
	payload := createOrderBody{
		Intent:        "CAPTURE",
		PurchaseUnits: []purchaseUnit{{Amount: amount{CurrencyCode: in.Currency, Value: in.Amount}}},
	}
	if in.ReturnURL != "" || in.CancelURL != "" {
		payload.ApplicationContext = &applicationContext{
			ReturnURL:  in.ReturnURL,
			CancelURL:  in.CancelURL,
			UserAction: "PAY_NOW",
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.CreatedOrder{}, fmt.Errorf("encode create order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/checkout/orders", bytes.NewReader(raw))
	if err != nil {
		return domain.CreatedOrder{}, fmt.Errorf("build create order request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return domain.CreatedOrder{}, fmt.Errorf("request create order: %w", err)
	}
	if !isSuccess(status) {
		return domain.CreatedOrder{}, &domain.UpstreamError{Op: domain.OpCreate, Status: status, Body: body}
	}

	var order orderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return domain.CreatedOrder{}, fmt.Errorf("decode create order response: %w", err)
	}
	approval, ok := domain.ApprovalLink(order.Links)
	if !ok {
		return domain.CreatedOrder{}, fmt.Errorf("order %s: %w", order.ID, domain.ErrApprovalLinkMissing)
	}
	return domain.CreatedOrder{
		ID:          order.ID,
		Status:      order.Status,
		ApprovalURL: approval,
		Raw:         json.RawMessage(body),
	}, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.WithFields(log.Fields{
		"method":      req.Method,
		"path":        req.URL.Path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
		"debug_id":    resp.Header.Get("Paypal-Debug-Id"),
	}).Debug("paypal call finished")

	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

var _ domain.Processor = (*Client)(nil)
