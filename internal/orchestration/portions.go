package orchestration

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/glmeal/internal/logging"
)

// DefaultPortionConcurrency bounds parallel portion lookups when no limit is
// given.
const DefaultPortionConcurrency = 4

// LookupPortions fetches the portion descriptor of every food concurrently.
//
// Lookups that fail are logged and replaced with DefaultPortion, so the
// function never returns an error. The result has the same order as foods.
//
// Parameters:
//   - ctx: Context for the remote calls.
//   - svc: The service answering PortionInfo.
//   - foods: Food names to describe.
//   - limit: Maximum parallel lookups; values below 1 use
//     DefaultPortionConcurrency.
//   - logger: Receives one warning per failed lookup. May be nil.
//
// Returns:
//   - []PortionInfo: One descriptor per food.
func LookupPortions(ctx context.Context, svc Service, foods []string, limit int, logger logging.Logger) []PortionInfo {
	if logger == nil {
		logger = logging.Nop()
	}
	if limit < 1 {
		limit = DefaultPortionConcurrency
	}

	out := make([]PortionInfo, len(foods))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, food := range foods {
		g.Go(func() error {
			info, err := svc.PortionInfo(ctx, food)
			if err != nil {
				logger.Warn("portion lookup failed, using default", logging.String("food", food), logging.Err(err))
				out[i] = DefaultPortion(food)
				return nil
			}
			if info.Food == "" {
				info.Food = food
			}
			out[i] = info
			return nil
		})
	}
	_ = g.Wait()
	return out
}
