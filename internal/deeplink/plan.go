// Package deeplink описывает стратегии возврата из in-app браузера в нативное приложение.
//
// Стратегия (Plan) - упорядоченный список независимых попыток навигации с задержками
// и отложенной кнопкой ручного открытия. Сервер только описывает план; исполняет его
// скрипт страницы. Успех попытки не наблюдаем: хост не сообщает, открылось ли приложение.
package deeplink

import (
	"errors"
	"fmt"
)

// Kind - способ навигации на custom-scheme URL.
type Kind string

const (
	// KindTopReplace - window.top.location.replace(deeplink), без записи в истории.
	KindTopReplace Kind = "top-replace"
	// KindTopAssign - window.top.location.href = deeplink.
	KindTopAssign Kind = "top-assign"
	// KindAnchorClick - программный клик по созданному <a href=deeplink>.
	KindAnchorClick Kind = "anchor-click"
	// KindBounce - переход на same-origin /dl, который отвечает 302 на deeplink.
	KindBounce Kind = "bounce"
	// KindIframe - навигация внутри скрытого iframe; на iOS обычно игнорируется.
	KindIframe Kind = "iframe"
)

var knownKinds = map[Kind]struct{}{
	KindTopReplace:  {},
	KindTopAssign:   {},
	KindAnchorClick: {},
	KindBounce:      {},
	KindIframe:      {},
}

var (
	ErrPlanNameRequired = errors.New("plan name is required")
	ErrPlanEmpty        = errors.New("plan must contain at least one attempt")
	ErrUnknownKind      = errors.New("unknown attempt kind")
	ErrNegativeDelay    = errors.New("delay must be non-negative")
	ErrDelayOrder       = errors.New("attempt delays must be non-decreasing")
	ErrCatalogEmpty     = errors.New("no deeplink strategies defined")
)

// Attempt - одна попытка навигации, запускаемая через DelayMs после подтверждения capture.
type Attempt struct {
	Kind    Kind `json:"kind" yaml:"kind"`
	DelayMs int  `json:"delayMs" yaml:"delay_ms"`
}

// Plan - именованная стратегия возврата в приложение.
type Plan struct {
	Name        string    `json:"name" yaml:"name"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Attempts    []Attempt `json:"attempts" yaml:"attempts"`
	// ManualAfterMs - когда показать кнопку "Open in app"; 0 отключает кнопку и overlay.
	ManualAfterMs int `json:"manualAfterMs" yaml:"manual_after_ms"`
}

// Validate проверяет, что план можно исполнить на странице.
func (p Plan) Validate() error {
	if p.Name == "" {
		return ErrPlanNameRequired
	}
	if len(p.Attempts) == 0 {
		return fmt.Errorf("plan %q: %w", p.Name, ErrPlanEmpty)
	}
	prev := 0
	for i, attempt := range p.Attempts {
		if _, ok := knownKinds[attempt.Kind]; !ok {
			return fmt.Errorf("plan %q attempt %d: %w: %q", p.Name, i, ErrUnknownKind, attempt.Kind)
		}
		if attempt.DelayMs < 0 {
			return fmt.Errorf("plan %q attempt %d: %w", p.Name, i, ErrNegativeDelay)
		}
		if attempt.DelayMs < prev {
			return fmt.Errorf("plan %q attempt %d: %w", p.Name, i, ErrDelayOrder)
		}
		prev = attempt.DelayMs
	}
	if p.ManualAfterMs < 0 {
		return fmt.Errorf("plan %q manual fallback: %w", p.Name, ErrNegativeDelay)
	}
	return nil
}

// HasManualFallback сообщает, показывает ли план кнопку ручного открытия.
func (p Plan) HasManualFallback() bool {
	return p.ManualAfterMs > 0
}

// Uses сообщает, содержит ли план попытку заданного вида.
func (p Plan) Uses(kind Kind) bool {
	for _, attempt := range p.Attempts {
		if attempt.Kind == kind {
			return true
		}
	}
	return false
}
