package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/paysheet/internal/domain"
)

// Имена вызовов в журнале MockService.
const (
	CallToken   = "token"
	CallCapture = "capture"
	CallCreate  = "create"
)

// MockService - конфигурируемая заглушка domain.Processor.
// Используется в тестах и в режиме PAYSHEET_PROCESSOR=mock, поэтому безопасна для конкурентного вызова.
type MockService struct {
	mu sync.Mutex

	Token      string
	TokenErr   error
	CaptureErr error
	CreateErr  error
	// ApprovalBaseURL - куда "отправлять" покупателя; по умолчанию страница возврата.
	ApprovalBaseURL string

	calls []string
}

// NewMockService возвращает mock с успешным сценарием по умолчанию.
func NewMockService() *MockService {
	return &MockService{Token: "mock-access-token"}
}

// AcquireToken возвращает заранее настроенный токен и записывает вызов.
func (m *MockService) AcquireToken(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, CallToken)
	if m.TokenErr != nil {
		return "", m.TokenErr
	}
	return m.Token, nil
}

// CaptureOrder возвращает ответ в форме PayPal capture.
func (m *MockService) CaptureOrder(_ context.Context, _ string, orderID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, CallCapture+":"+orderID)
	if orderID == "" {
		return nil, domain.ErrOrderIDRequired
	}
	if m.CaptureErr != nil {
		return nil, m.CaptureErr
	}
	payload, err := json.Marshal(map[string]any{
		"id":     orderID,
		"status": "COMPLETED",
		"purchase_units": []map[string]any{{
			"payments": map[string]any{
				"captures": []map[string]any{{"id": uuid.NewString(), "status": "COMPLETED"}},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode mock capture: %w", err)
	}
	return payload, nil
}

// CreateOrder генерирует идентификатор заказа и ссылку подтверждения.
func (m *MockService) CreateOrder(_ context.Context, _ string, req domain.CreateOrderRequest) (domain.CreatedOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, CallCreate)
	if m.CreateErr != nil {
		return domain.CreatedOrder{}, m.CreateErr
	}

	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:17]
	approval := approvalURL(m.ApprovalBaseURL, req.ReturnURL, id)
	raw, err := json.Marshal(map[string]any{
		"id":     id,
		"status": "CREATED",
		"links":  []domain.Link{{Href: approval, Rel: "approve", Method: "GET"}},
	})
	if err != nil {
		return domain.CreatedOrder{}, fmt.Errorf("encode mock order: %w", err)
	}
	return domain.CreatedOrder{ID: id, Status: "CREATED", ApprovalURL: approval, Raw: raw}, nil
}

// Calls возвращает копию журнала вызовов ("token", "capture:<id>", "create").
func (m *MockService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// approvalURL имитирует redirect провайдера: return URL с token=<id>.
func approvalURL(base, returnURL, id string) string {
	if base != "" {
		return base + "?token=" + id
	}
	if returnURL == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(returnURL, "?") {
		sep = "&"
	}
	return returnURL + sep + "token=" + id + "&PayerID=MOCKPAYER"
}

var _ domain.Processor = (*MockService)(nil)
