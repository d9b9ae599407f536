// Package metrics holds the small set of instrumentation primitives the
// dispatch engine reports through. Backends (Prometheus, in-process
// counters) implement these without the engine depending on them.
package metrics

import "time"

// Counter is a monotonically increasing metric.
type Counter interface {
	Inc()
	Add(delta float64)
}

// Timer measures one operation. Call ObserveDuration when it completes.
type Timer interface {
	ObserveDuration()
}

// TimerFunc creates a Timer, allowing
// defer m.SiteBuildDuration("get").ObserveDuration().
type TimerFunc func() Timer

// FuncTimer reports the elapsed time to observe once ObserveDuration runs.
type FuncTimer struct {
	start   time.Time
	observe func(time.Duration)
}

func NewFuncTimer(observe func(time.Duration)) *FuncTimer {
	return &FuncTimer{start: time.Now(), observe: observe}
}

func (t *FuncTimer) ObserveDuration() {
	if t.observe != nil {
		t.observe(time.Since(t.start))
	}
}
