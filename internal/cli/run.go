package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agbru/glmeal/internal/config"
	apperrors "github.com/agbru/glmeal/internal/errors"
	"github.com/agbru/glmeal/internal/format"
	"github.com/agbru/glmeal/internal/logging"
	"github.com/agbru/glmeal/internal/orchestration"
)

// Runner executes one analysis end to end without user interaction.
type Runner struct {
	Controller *orchestration.Controller
	Service    orchestration.Service
	Config     config.AppConfig
	Logger     logging.Logger
	// Spinner overrides the terminal spinner. When nil a spinner writing to
	// os.Stderr is used unless the output is quiet or JSON.
	Spinner Spinner
}

// Run submits the configured meal, resolves ambiguous foods, applies portion
// overrides, calculates the glycemic load and prints the report to out.
func (r *Runner) Run(ctx context.Context, out io.Writer) error {
	logger := r.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	cfg := r.Config
	start := time.Now()

	if sp := r.spinner(); sp != nil {
		indicator := NewLoadingIndicator(sp)
		unsubscribe := r.Controller.Subscribe(indicator.Observe)
		defer func() {
			unsubscribe()
			indicator.Stop()
		}()
	}

	if err := r.submit(ctx, cfg.Meal); err != nil {
		return err
	}

	if r.Controller.GetState().CurrentStep == orchestration.StepDisambiguation {
		resolved, err := r.disambiguate(r.Controller.GetState().ParsedItems)
		if err != nil {
			return err
		}
		if err := r.Controller.CompleteDisambiguation(resolved); err != nil {
			return err
		}
	}

	meal := r.applyPortions(r.Controller.GetState().FinalMeal)
	logger.Debug("meal resolved", logging.Int("items", len(meal)))

	var portions []orchestration.PortionInfo
	if !cfg.Quiet {
		foods := make([]string, len(meal))
		for i, m := range meal {
			foods[i] = m.Food
		}
		portions = orchestration.LookupPortions(ctx, r.Service, foods, cfg.Concurrency, logger)
	}

	if err := r.Controller.CompletePortions(ctx, meal); err != nil {
		return err
	}

	st := r.Controller.GetState()
	if st.GLResult == nil {
		return apperrors.CalculationFailure{Cause: errors.New("no result returned")}
	}
	report := BuildReport(meal, portions, *st.GLResult)
	report.Elapsed = time.Since(start)
	logger.Debug("analysis finished", logging.String("elapsed", format.FormatElapsed(report.Elapsed)))

	switch {
	case cfg.JSON:
		return WriteJSON(out, report)
	case cfg.Quiet:
		DisplayQuiet(out, report)
	default:
		DisplayReport(out, report)
	}
	return nil
}

func (r *Runner) spinner() Spinner {
	if r.Config.Quiet || r.Config.JSON {
		return nil
	}
	if r.Spinner != nil {
		return r.Spinner
	}
	return newSpinner(os.Stderr)
}

func (r *Runner) submit(ctx context.Context, text string) error {
	if !r.Config.Smart {
		return r.Controller.SubmitMeal(ctx, text)
	}
	outcome, err := r.Controller.SubmitMealSmart(ctx, text)
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		msg := outcome.Message
		if msg == "" {
			msg = "the service could not recognise any food in the description"
		}
		return apperrors.ParseFailure{Cause: errors.New(msg)}
	}
	return nil
}

// disambiguate picks a candidate for every ambiguous item: the -choose value
// when one is given, the first candidate otherwise.
func (r *Runner) disambiguate(items []orchestration.ParsedItem) ([]orchestration.MealItem, error) {
	choices := orchestration.FirstChoices(items)
	for i, item := range items {
		if item.Status != orchestration.NeedsDisambiguation {
			continue
		}
		want, ok := r.Config.ChoiceFor(item.OriginalName)
		if !ok {
			continue
		}
		name, found := matchCandidate(item.Matches, want)
		if !found {
			return nil, apperrors.ValidationError{
				Field:   "choose",
				Message: fmt.Sprintf("%q is not a candidate for %q (candidates: %s)", want, item.OriginalName, candidateNames(item.Matches)),
			}
		}
		choices[i] = name
	}
	return orchestration.Resolve(items, choices)
}

func matchCandidate(matches []orchestration.FoodMatch, want string) (string, bool) {
	for _, m := range matches {
		if strings.EqualFold(m.Name, strings.TrimSpace(want)) {
			return m.Name, true
		}
	}
	return "", false
}

func candidateNames(matches []orchestration.FoodMatch) string {
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return strings.Join(names, ", ")
}

func (r *Runner) applyPortions(meal []orchestration.MealItem) []orchestration.MealItem {
	out := make([]orchestration.MealItem, len(meal))
	for i, m := range meal {
		if q, ok := r.Config.PortionFor(m.Food); ok {
			m.Quantity = q
		}
		out[i] = m
	}
	return out
}
