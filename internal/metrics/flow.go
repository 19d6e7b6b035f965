package metrics

import (
	"sync"

	"github.com/agbru/glmeal/internal/orchestration"
)

// FlowRecorder counts step changes seen in controller snapshots.
type FlowRecorder struct {
	m *Metrics

	mu   sync.Mutex
	last orchestration.Step
	seen bool
}

// NewFlowRecorder creates a recorder. The first snapshot it receives only
// establishes the baseline step.
func (m *Metrics) NewFlowRecorder() *FlowRecorder {
	return &FlowRecorder{m: m}
}

// Observe is meant to be passed to Controller.Subscribe.
func (r *FlowRecorder) Observe(s orchestration.State) {
	if s.IsLoading {
		r.m.loading.Set(1)
	} else {
		r.m.loading.Set(0)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen && s.CurrentStep != r.last {
		r.m.transitions.WithLabelValues(s.CurrentStep.String()).Inc()
	}
	r.last = s.CurrentStep
	r.seen = true
}
