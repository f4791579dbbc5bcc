package domain

import (
	"encoding/json"
	"strings"
)

// Mode выбирает демонстрационное поведение страницы возврата.
type Mode string

const (
	// ModeNone - режим не указан, используется исправленный сценарий.
	ModeNone Mode = ""
	// ModeBug - воспроизводит заведомо нерабочий deeplink из iframe.
	ModeBug Mode = "bug"
	// ModeFix - deeplink из top frame с fallback-попытками.
	ModeFix Mode = "fix"
)

// ParseMode нормализует значение query-параметра mode.
func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case ModeNone, ModeBug, ModeFix:
		return mode, nil
	default:
		return ModeNone, ErrInvalidMode
	}
}

// CreateOrderRequest - параметры заказа для серверного создания.
type CreateOrderRequest struct {
	Currency  string
	Amount    string
	ReturnURL string
	CancelURL string
}

// CreatedOrder - результат создания заказа у провайдера.
type CreatedOrder struct {
	// ID - Order Reference, которым затем выполняется capture.
	ID          string
	Status      string
	ApprovalURL string
	// Raw хранит исходный ответ провайдера для отладки.
	Raw json.RawMessage
}

// Link - HATEOAS-ссылка из ответа провайдера.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

// ApprovalLink возвращает ссылку, по которой покупатель подтверждает заказ.
func ApprovalLink(links []Link) (string, bool) {
	for _, link := range links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href, link.Href != ""
		}
	}
	return "", false
}
