package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// ProbeResponse - ответ публичного /health.
type ProbeResponse struct {
	OK  bool  `json:"ok"`
	Now int64 `json:"now"`
}

// Probe отвечает на /health текущим временем в миллисекундах Unix.
// Значение now не убывает между вызовами, даже если системные часы переведены назад.
type Probe struct {
	last  atomic.Int64
	clock func() time.Time
}

// NewProbe создаёт probe на системных часах.
func NewProbe() *Probe {
	return NewProbeWithClock(time.Now)
}

// NewProbeWithClock создаёт probe с подменяемыми часами.
func NewProbeWithClock(clock func() time.Time) *Probe {
	if clock == nil {
		clock = time.Now
	}
	return &Probe{clock: clock}
}

// Now возвращает монотонно неубывающую отметку времени.
func (p *Probe) Now() int64 {
	now := p.clock().UnixMilli()
	for {
		last := p.last.Load()
		if now <= last {
			return last
		}
		if p.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

// ServeHTTP обрабатывает HTTP запрос
func (p *Probe) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(ProbeResponse{OK: true, Now: p.Now()})
}
