package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOrderIDRequired - запрос на capture пришёл без идентификатора заказа.
	ErrOrderIDRequired = errors.New("orderID required")
	// ErrInvalidMode - неизвестный демонстрационный режим (ожидается bug или fix).
	ErrInvalidMode = errors.New("mode must be bug or fix")
	// ErrCredentialsRequired - не заданы client id / secret платёжного провайдера.
	ErrCredentialsRequired = errors.New("processor client id and secret are required")
	// ErrTokenMissing - провайдер ответил 2xx, но без access_token.
	ErrTokenMissing = errors.New("oauth2 response has no access_token")
	// ErrApprovalLinkMissing - созданный заказ не содержит ссылку на подтверждение.
	ErrApprovalLinkMissing = errors.New("order has no approval link")
	// ErrUnknownStrategy - стратегия возврата в приложение не найдена в каталоге.
	ErrUnknownStrategy = errors.New("unknown deeplink strategy")
)

// Операции провайдера, которые попадают в UpstreamError.Op.
const (
	OpToken   = "oauth2"
	OpCapture = "capture"
	OpCreate  = "create order"
)

// UpstreamError описывает не-2xx ответ платёжного провайдера.
// Тело ответа сохраняется без изменений, чтобы его можно было вернуть клиенту.
type UpstreamError struct {
	Op     string
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error %d %s", e.Op, e.Status, strings.TrimSpace(string(e.Body)))
}

// IsClientError сообщает, что ошибка вызвана некорректным входом, а не провайдером.
func IsClientError(err error) bool {
	return errors.Is(err, ErrOrderIDRequired) || errors.Is(err, ErrInvalidMode)
}

// AsUpstream извлекает UpstreamError из цепочки ошибок.
func AsUpstream(err error) (*UpstreamError, bool) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream, true
	}
	return nil, false
}
