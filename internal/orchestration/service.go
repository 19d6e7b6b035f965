package orchestration

import "context"

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

// Service is the remote meal-analysis collaborator used by the controller.
type Service interface {
	// ParseMeal turns free text into meal entries.
	ParseMeal(ctx context.Context, text string) ([]MealItem, error)
	// SmartParse turns free text into parsed items with database matches.
	// A non-success status is reported in the result, not as an error.
	SmartParse(ctx context.Context, text string) (SmartParseResult, error)
	// PortionInfo describes the standard portion of a food.
	PortionInfo(ctx context.Context, food string) (PortionInfo, error)
	// CalculateGL computes the glycemic load of a meal.
	CalculateGL(ctx context.Context, meal []MealItem) (GLResult, error)
}

// SmartParseStatusSuccess is the status of a usable smart-parse response.
const SmartParseStatusSuccess = "success"

// SmartParseResult is the response of Service.SmartParse.
type SmartParseResult struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Items   []ParsedItem `json:"items"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// OK reports whether the response carries items.
func (r SmartParseResult) OK() bool { return r.Status == SmartParseStatusSuccess }

// PortionInfo describes a food's standard portion.
type PortionInfo struct {
	Food          string `json:"food"`
	Unit          string `json:"unit"`
	UnitDesc      string `json:"unit_desc"`
	Source        string `json:"source,omitempty"`
	ReferenceFood string `json:"reference_food,omitempty"`
}

// DefaultPortion is the descriptor used when a portion lookup fails.
func DefaultPortion(food string) PortionInfo {
	return PortionInfo{Food: food, Unit: "serving", UnitDesc: "1 portion", Source: "default"}
}
