package orchestration

import (
	"encoding/json"
	"fmt"
	"math"

	apperrors "github.com/agbru/glmeal/internal/errors"
)

// Step identifies the active screen of the flow.
type Step int

const (
	StepInput Step = iota
	StepDisambiguation
	StepPortions
	StepResults
)

// StepCount is the number of steps shown by progress indicators.
const StepCount = 4

func (s Step) String() string {
	switch s {
	case StepInput:
		return "input"
	case StepDisambiguation:
		return "disambiguation"
	case StepPortions:
		return "portions"
	case StepResults:
		return "results"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Number returns the 1-based position of the step.
func (s Step) Number() int { return int(s) + 1 }

// Valid reports whether s is one of the four defined steps.
func (s Step) Valid() bool { return s >= StepInput && s <= StepResults }

// MarshalText encodes the step by name.
func (s Step) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid step %d", int(s))
	}
	return []byte(s.String()), nil
}

// MealItem is a food and the number of portions eaten.
type MealItem struct {
	Food     string  `json:"food"`
	Quantity float64 `json:"quantity"`
}

// MatchStatus tells how a parsed food name matched the food database.
type MatchStatus int

const (
	SingleMatch MatchStatus = iota + 1
	NeedsDisambiguation
	NeedsAIEstimate
)

var matchStatusNames = map[MatchStatus]string{
	SingleMatch:         "single_match",
	NeedsDisambiguation: "needs_disambiguation",
	NeedsAIEstimate:     "needs_ai",
}

func (m MatchStatus) String() string {
	if name, ok := matchStatusNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MatchStatus(%d)", int(m))
}

// MarshalJSON encodes the status with its wire name.
func (m MatchStatus) MarshalJSON() ([]byte, error) {
	name, ok := matchStatusNames[m]
	if !ok {
		return nil, fmt.Errorf("invalid match status %d", int(m))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a wire name. Unknown names are an error.
func (m *MatchStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for status, n := range matchStatusNames {
		if n == name {
			*m = status
			return nil
		}
	}
	return fmt.Errorf("unknown match status %q", name)
}

// FoodMatch is one database candidate for an ambiguous food name.
type FoodMatch struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit,omitempty"`
	UnitDesc string `json:"unit_desc"`
}

// ParsedItem is a food mention returned by smart parsing.
type ParsedItem struct {
	OriginalName string      `json:"original_name"`
	Quantity     float64     `json:"quantity"`
	Status       MatchStatus `json:"status"`
	SelectedFood string      `json:"selected_food,omitempty"`
	Matches      []FoodMatch `json:"matches,omitempty"`
}

// Validate checks the match-status invariants of the item.
func (p ParsedItem) Validate() error {
	switch p.Status {
	case SingleMatch, NeedsAIEstimate:
		// The service echoes the selected food as a single candidate.
	case NeedsDisambiguation:
		if len(p.Matches) == 0 {
			return apperrors.ValidationError{Field: "matches", Message: fmt.Sprintf("%q needs disambiguation but has no candidates", p.OriginalName)}
		}
	default:
		return apperrors.ValidationError{Field: "status", Message: fmt.Sprintf("%q has invalid status %d", p.OriginalName, int(p.Status))}
	}
	if !validQuantity(p.Quantity) {
		return apperrors.ValidationError{Field: "quantity", Message: fmt.Sprintf("%q has negative or non-finite quantity", p.OriginalName)}
	}
	return nil
}

func validQuantity(q float64) bool {
	return q >= 0 && !math.IsInf(q, 0)
}

// Resolved maps the item to a meal entry. choice names the selected candidate
// and is only consulted for items that need disambiguation.
func (p ParsedItem) Resolved(choice string) (MealItem, error) {
	switch p.Status {
	case SingleMatch:
		food := p.SelectedFood
		if food == "" {
			food = p.OriginalName
		}
		return MealItem{Food: food, Quantity: p.Quantity}, nil
	case NeedsAIEstimate:
		return MealItem{Food: p.OriginalName, Quantity: p.Quantity}, nil
	case NeedsDisambiguation:
		for _, m := range p.Matches {
			if m.Name == choice {
				return MealItem{Food: choice, Quantity: p.Quantity}, nil
			}
		}
		if choice == "" {
			return MealItem{}, apperrors.ValidationError{Field: "choice", Message: fmt.Sprintf("no food selected for %q", p.OriginalName)}
		}
		return MealItem{}, apperrors.ValidationError{Field: "choice", Message: fmt.Sprintf("%q is not a candidate for %q", choice, p.OriginalName)}
	default:
		return MealItem{}, apperrors.ValidationError{Field: "status", Message: fmt.Sprintf("%q has invalid status %d", p.OriginalName, int(p.Status))}
	}
}

// ItemStatus annotates a per-item GL value.
type ItemStatus string

const (
	ItemFound           ItemStatus = ""
	ItemAIEstimated     ItemStatus = "ai_estimated"
	ItemNotFound        ItemStatus = "not_found"
	ItemInvalidQuantity ItemStatus = "invalid_quantity"
	ItemInvalidFormat   ItemStatus = "invalid_format"
)

// GLItem is the GL contribution of one meal entry.
type GLItem struct {
	Food    string     `json:"food"`
	GL      float64    `json:"gl"`
	Status  ItemStatus `json:"status,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Suggestion is advice returned alongside a GL result.
type Suggestion struct {
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Usage reports the caller's daily quota on the remote service.
type Usage struct {
	UsedToday  int `json:"used_today"`
	DailyLimit int `json:"daily_limit"`
	Remaining  int `json:"remaining"`
}

// GLResult is the outcome of a GL calculation.
type GLResult struct {
	TotalGL     float64      `json:"total_gl"`
	Items       []GLItem     `json:"items"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Usage       *Usage       `json:"usage,omitempty"`
}

// Clone returns a deep copy of r.
func (r *GLResult) Clone() *GLResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Items = cloneSlice(r.Items)
	c.Suggestions = cloneSlice(r.Suggestions)
	if r.Usage != nil {
		u := *r.Usage
		c.Usage = &u
	}
	return &c
}

// State is a snapshot of the flow.
type State struct {
	CurrentStep Step         `json:"current_step"`
	ParsedItems []ParsedItem `json:"parsed_items"`
	FinalMeal   []MealItem   `json:"final_meal"`
	GLResult    *GLResult    `json:"gl_result,omitempty"`
	IsLoading   bool         `json:"is_loading"`
}

// DefaultState returns the state of a freshly constructed controller.
func DefaultState() State {
	return State{
		CurrentStep: StepInput,
		ParsedItems: []ParsedItem{},
		FinalMeal:   []MealItem{},
	}
}

// Clone returns a deep copy of s. Empty sequences stay non-nil.
func (s State) Clone() State {
	c := s
	c.ParsedItems = cloneParsedItems(s.ParsedItems)
	c.FinalMeal = make([]MealItem, len(s.FinalMeal))
	copy(c.FinalMeal, s.FinalMeal)
	c.GLResult = s.GLResult.Clone()
	return c
}

// NeedsDisambiguation reports whether any parsed item is ambiguous.
func (s State) NeedsDisambiguation() bool {
	return anyAmbiguous(s.ParsedItems)
}

func anyAmbiguous(items []ParsedItem) bool {
	for _, p := range items {
		if p.Status == NeedsDisambiguation {
			return true
		}
	}
	return false
}

func cloneParsedItems(in []ParsedItem) []ParsedItem {
	out := make([]ParsedItem, len(in))
	for i, p := range in {
		p.Matches = cloneSlice(p.Matches)
		out[i] = p
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
