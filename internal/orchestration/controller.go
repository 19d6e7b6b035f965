package orchestration

import (
	"context"
	"sync"

	apperrors "github.com/agbru/glmeal/internal/errors"
	"github.com/agbru/glmeal/internal/logging"
	"github.com/agbru/glmeal/internal/observer"
)

// Controller is the state machine behind the meal-analysis flow.
//
// It is safe for concurrent use. Observers are called synchronously, in
// subscription order, and see snapshots in the order the mutations were
// applied. An observer may call GetState or Subscribe but must not call a
// mutating operation synchronously; doing so blocks forever.
type Controller struct {
	svc     Service
	logger  logging.Logger
	subject *observer.Subject[State]

	mu         sync.Mutex
	state      State
	generation uint64
	busy       bool
	ticket     uint64

	emitMu   sync.Mutex
	emitCond *sync.Cond
	emitNext uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for transition and failure logs.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller in the default state.
//
// Parameters:
//   - svc: The remote collaborator used by SubmitMeal, SubmitMealSmart and
//     CompletePortions.
//   - opts: Optional settings.
//
// Returns:
//   - *Controller: A controller at StepInput with no subscribers.
func NewController(svc Service, opts ...Option) *Controller {
	c := &Controller{
		svc:     svc,
		logger:  logging.Nop(),
		subject: observer.NewSubject(State.Clone),
		state:   DefaultState(),
	}
	c.emitCond = sync.NewCond(&c.emitMu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetState returns a deep copy of the current state.
func (c *Controller) GetState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes exactly this registration and may be called
// any number of times.
func (c *Controller) Subscribe(fn func(State)) observer.Unsubscribe {
	return c.subject.Subscribe(fn)
}

// commitLocked hands the current state to subscribers. It must be called with
// c.mu held and releases it.
func (c *Controller) commitLocked() {
	snapshot := c.state.Clone()
	ticket := c.ticket
	c.ticket++
	c.mu.Unlock()

	c.emitMu.Lock()
	for c.emitNext != ticket {
		c.emitCond.Wait()
	}
	c.emitMu.Unlock()

	defer func() {
		c.emitMu.Lock()
		c.emitNext++
		c.emitCond.Broadcast()
		c.emitMu.Unlock()
	}()
	c.subject.Notify(snapshot)
}

// begin marks the start of a remote call and returns its generation.
func (c *Controller) begin(op string) (uint64, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		c.logger.Warn("operation rejected while another is in flight", logging.String("operation", op))
		return 0, apperrors.ErrBusy
	}
	c.busy = true
	c.state.IsLoading = true
	gen := c.generation
	c.logger.Debug("operation started", logging.String("operation", op), logging.String("step", c.state.CurrentStep.String()))
	c.commitLocked()
	return gen, nil
}

// finish ends a remote call. apply runs under the state lock only when the
// call has not been superseded by Reset; its error is returned unchanged.
func (c *Controller) finish(op string, gen uint64, apply func(*State) error) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Warn("discarding result of superseded operation", logging.String("operation", op))
		return apperrors.ErrSuperseded
	}
	c.busy = false
	c.state.IsLoading = false
	err := apply(&c.state)
	if err != nil {
		c.logger.Error("operation failed", err, logging.String("operation", op), logging.String("step", c.state.CurrentStep.String()))
	} else {
		c.logger.Debug("operation finished", logging.String("operation", op), logging.String("step", c.state.CurrentStep.String()))
	}
	c.commitLocked()
	return err
}

// SubmitMeal parses text with the plain parser and moves to StepPortions.
//
// On failure the step is left unchanged and a ParseFailure wrapping the cause
// is returned. The loading flag is cleared on every exit path. An empty parse
// result is valid and still advances.
func (c *Controller) SubmitMeal(ctx context.Context, text string) error {
	gen, err := c.begin("parse")
	if err != nil {
		return err
	}

	items, callErr := c.svc.ParseMeal(ctx, text)

	return c.finish("parse", gen, func(s *State) error {
		if callErr != nil {
			return apperrors.ParseFailure{Cause: callErr}
		}
		meal := make([]MealItem, len(items))
		copy(meal, items)
		s.FinalMeal = meal
		s.GLResult = nil
		s.CurrentStep = StepPortions
		return nil
	})
}

// SmartOutcome describes how a smart-parse submission was handled.
type SmartOutcome struct {
	// Accepted is false when the service answered with a non-success status.
	Accepted bool
	// Message is the service's explanation for a rejected submission.
	Message string
	// Step is the step the flow moved to.
	Step Step
}

// SubmitMealSmart parses text with the matching parser.
//
// Transport failures and malformed items return a ParseFailure with the step
// unchanged. A non-success status is reported through SmartOutcome, not as an
// error, and also leaves the step unchanged. When at least one item is
// ambiguous the flow moves to StepDisambiguation; otherwise every item is
// resolved directly and the flow moves to StepPortions.
func (c *Controller) SubmitMealSmart(ctx context.Context, text string) (SmartOutcome, error) {
	gen, err := c.begin("smart-parse")
	if err != nil {
		return SmartOutcome{}, err
	}

	res, callErr := c.svc.SmartParse(ctx, text)

	var outcome SmartOutcome
	err = c.finish("smart-parse", gen, func(s *State) error {
		outcome.Step = s.CurrentStep
		if callErr != nil {
			return apperrors.ParseFailure{Cause: callErr}
		}
		if !res.OK() {
			outcome.Message = res.Message
			return nil
		}
		for _, item := range res.Items {
			if verr := item.Validate(); verr != nil {
				return apperrors.ParseFailure{Cause: verr}
			}
		}

		parsed := cloneParsedItems(res.Items)
		if anyAmbiguous(parsed) {
			s.CurrentStep = StepDisambiguation
		} else {
			meal, rerr := Resolve(parsed, nil)
			if rerr != nil {
				return apperrors.ParseFailure{Cause: rerr}
			}
			s.FinalMeal = meal
			s.CurrentStep = StepPortions
		}
		s.ParsedItems = parsed
		s.GLResult = nil
		outcome.Accepted = true
		outcome.Step = s.CurrentStep
		return nil
	})
	return outcome, err
}

// EnterDisambiguation drives the flow into StepDisambiguation with items
// produced outside the controller. No remote call is made.
func (c *Controller) EnterDisambiguation(items []ParsedItem) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	parsed := cloneParsedItems(items)

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return apperrors.ErrBusy
	}
	c.state.ParsedItems = parsed
	c.state.GLResult = nil
	c.state.CurrentStep = StepDisambiguation
	c.logger.Debug("entered disambiguation", logging.Int("items", len(parsed)))
	c.commitLocked()
	return nil
}

// CompleteDisambiguation replaces the meal with resolved and moves to
// StepPortions. Completeness is not checked; negative and non-finite
// quantities are rejected.
func (c *Controller) CompleteDisambiguation(resolved []MealItem) error {
	if err := validateMeal(resolved); err != nil {
		return err
	}
	meal := make([]MealItem, len(resolved))
	copy(meal, resolved)

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return apperrors.ErrBusy
	}
	c.state.FinalMeal = meal
	c.state.GLResult = nil
	c.state.CurrentStep = StepPortions
	c.logger.Debug("disambiguation completed", logging.Int("items", len(meal)))
	c.commitLocked()
	return nil
}

// CompletePortions sends meal to the GL calculator and moves to StepResults.
//
// On failure a CalculationFailure wrapping the cause is returned and only the
// loading flag changes. Quantities are passed through unchecked; the remote
// service reports unusable entries per item.
func (c *Controller) CompletePortions(ctx context.Context, meal []MealItem) error {
	gen, err := c.begin("calculate")
	if err != nil {
		return err
	}

	sent := make([]MealItem, len(meal))
	copy(sent, meal)
	result, callErr := c.svc.CalculateGL(ctx, sent)

	return c.finish("calculate", gen, func(s *State) error {
		if callErr != nil {
			return apperrors.CalculationFailure{Cause: callErr}
		}
		s.GLResult = result.Clone()
		s.CurrentStep = StepResults
		return nil
	})
}

// Reset restores the default state from any step. A remote call still in
// flight is superseded and its result is discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.generation++
	c.busy = false
	c.state = DefaultState()
	c.logger.Debug("flow reset")
	c.commitLocked()
}

func validateMeal(meal []MealItem) error {
	for _, item := range meal {
		if !validQuantity(item.Quantity) {
			return apperrors.ValidationError{Field: "quantity", Message: "quantity of " + item.Food + " must be a finite, non-negative number"}
		}
	}
	return nil
}
