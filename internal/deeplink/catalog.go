package deeplink

import (
	"fmt"

	"github.com/vladislavdragonenkov/paysheet/internal/domain"
)

// Имена встроенных стратегий.
const (
	PlanBug    = "bug"
	PlanTop    = "top"
	PlanBounce = "bounce"
	PlanCombo  = "combo"
)

// Catalog хранит стратегии в порядке объявления. После построения не изменяется.
type Catalog struct {
	plans  []Plan
	byName map[string]int
}

// NewCatalog строит каталог из планов; план с повторяющимся именем заменяет предыдущий.
func NewCatalog(plans ...Plan) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int, len(plans))}
	for _, plan := range plans {
		if err := plan.Validate(); err != nil {
			return nil, err
		}
		plan.Attempts = append([]Attempt(nil), plan.Attempts...)
		if idx, ok := c.byName[plan.Name]; ok {
			c.plans[idx] = plan
			continue
		}
		c.byName[plan.Name] = len(c.plans)
		c.plans = append(c.plans, plan)
	}
	return c, nil
}

// DefaultCatalog возвращает встроенные стратегии: сломанную и три рабочие.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultPlans()...)
	if err != nil {
		panic(fmt.Sprintf("built-in deeplink plans are invalid: %v", err))
	}
	return c
}

// DefaultPlans возвращает копию встроенных стратегий.
func DefaultPlans() []Plan {
	return []Plan{
		{
			Name:        PlanBug,
			Title:       "BUG: deeplink from iframe (not top)",
			Description: "After capture, the page tries to open the deeplink inside an iframe. iOS often ignores this.",
			Attempts: []Attempt{
				{Kind: KindIframe, DelayMs: 0},
			},
		},
		{
			Name:        PlanTop,
			Title:       "Inline FIX: deeplink from TOP frame",
			Description: "After successful capture we navigate to the app deeplink from the top frame.",
			Attempts: []Attempt{
				{Kind: KindTopReplace, DelayMs: 0},
				{Kind: KindTopAssign, DelayMs: 100},
				{Kind: KindAnchorClick, DelayMs: 200},
			},
			ManualAfterMs: 1000,
		},
		{
			Name:        PlanBounce,
			Title:       "Inline FIX: HTTPS 302 bounce",
			Description: "After capture we navigate to a HTTPS URL on this domain (/dl) which immediately returns a 302 redirect to the custom scheme.",
			Attempts: []Attempt{
				{Kind: KindBounce, DelayMs: 0},
			},
			ManualAfterMs: 1000,
		},
		{
			Name:        PlanCombo,
			Title:       "Inline FIX: top frame + anchor + 302 bounce",
			Description: "Every automatic attempt in sequence, then the manual button.",
			Attempts: []Attempt{
				{Kind: KindTopReplace, DelayMs: 0},
				{Kind: KindTopAssign, DelayMs: 100},
				{Kind: KindAnchorClick, DelayMs: 200},
				{Kind: KindBounce, DelayMs: 400},
			},
			ManualAfterMs: 1000,
		},
	}
}

// Lookup ищет стратегию по имени.
func (c *Catalog) Lookup(name string) (Plan, error) {
	idx, ok := c.byName[name]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, name)
	}
	return c.plans[idx], nil
}

// Plans возвращает стратегии в порядке объявления.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// Len возвращает число стратегий.
func (c *Catalog) Len() int {
	return len(c.plans)
}

// ForMode выбирает стратегию страницы возврата: bug - сломанная, иначе combo.
func (c *Catalog) ForMode(mode domain.Mode) (Plan, error) {
	if mode == domain.ModeBug {
		return c.Lookup(PlanBug)
	}
	return c.Lookup(PlanCombo)
}
