//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/glmeal/internal/orchestration"
)

// SpinnerRefreshRate is the animation interval of the loading spinner.
const SpinnerRefreshRate = 120 * time.Millisecond

// Spinner abstracts a terminal spinner so the loading indicator can be
// tested without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(w io.Writer) Spinner {
	s := spinner.New(spinner.CharSets[11], SpinnerRefreshRate, spinner.WithWriter(w))
	return &realSpinner{s}
}

// LoadingIndicator drives a Spinner from controller snapshots: it starts
// when a snapshot reports isLoading and stops on the next one that does not.
type LoadingIndicator struct {
	mu      sync.Mutex
	spinner Spinner
	active  bool
}

// NewLoadingIndicator wraps s.
func NewLoadingIndicator(s Spinner) *LoadingIndicator {
	return &LoadingIndicator{spinner: s}
}

// Observe is meant to be registered with Controller.Subscribe.
func (l *LoadingIndicator) Observe(s orchestration.State) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case s.IsLoading && !l.active:
		l.spinner.UpdateSuffix(loadingMessage(s.CurrentStep))
		l.spinner.Start()
		l.active = true
	case !s.IsLoading && l.active:
		l.spinner.Stop()
		l.active = false
	}
}

// Stop halts the spinner if it is still running.
func (l *LoadingIndicator) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active {
		l.spinner.Stop()
		l.active = false
	}
}

func loadingMessage(step orchestration.Step) string {
	switch step {
	case orchestration.StepInput:
		return " Analyzing meal..."
	case orchestration.StepPortions, orchestration.StepResults:
		return " Calculating glycemic load..."
	default:
		return " Working..."
	}
}
