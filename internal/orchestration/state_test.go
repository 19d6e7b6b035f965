package orchestration

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	apperrors "github.com/agbru/glmeal/internal/errors"
)

func TestStep(t *testing.T) {
	t.Parallel()
	tests := []struct {
		step   Step
		name   string
		number int
	}{
		{StepInput, "input", 1},
		{StepDisambiguation, "disambiguation", 2},
		{StepPortions, "portions", 3},
		{StepResults, "results", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.step.String() != tt.name {
				t.Errorf("String() = %q, want %q", tt.step.String(), tt.name)
			}
			if tt.step.Number() != tt.number {
				t.Errorf("Number() = %d, want %d", tt.step.Number(), tt.number)
			}
			if !tt.step.Valid() {
				t.Error("Valid() = false")
			}
		})
	}

	if Step(9).Valid() {
		t.Error("Step(9) should be invalid")
	}
	if _, err := Step(9).MarshalText(); err == nil {
		t.Error("MarshalText of invalid step should fail")
	}
}

func TestMatchStatusJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		wire    string
		want    MatchStatus
		wantErr bool
	}{
		{`"single_match"`, SingleMatch, false},
		{`"needs_disambiguation"`, NeedsDisambiguation, false},
		{`"needs_ai"`, NeedsAIEstimate, false},
		{`"maybe"`, 0, true},
		{`3`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			t.Parallel()
			var got MatchStatus
			err := json.Unmarshal([]byte(tt.wire), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.wire, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.wire, got, tt.want)
			}
			encoded, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(encoded) != tt.wire {
				t.Errorf("Marshal = %s, want %s", encoded, tt.wire)
			}
		})
	}

	if _, err := json.Marshal(MatchStatus(0)); err == nil {
		t.Error("marshaling the zero status should fail")
	}
}

func TestParsedItemDecode(t *testing.T) {
	t.Parallel()
	body := `{"original_name":"curry","quantity":1,"status":"needs_disambiguation",
		"matches":[{"name":"Chicken Curry (Homemade)","category":"Curries","unit_desc":"1 bowl"}]}`
	var item ParsedItem
	if err := json.Unmarshal([]byte(body), &item); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if item.Status != NeedsDisambiguation || len(item.Matches) != 1 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if err := item.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParsedItemValidate(t *testing.T) {
	t.Parallel()
	match := []FoodMatch{{Name: "Dal (Toor)"}}
	tests := []struct {
		name    string
		item    ParsedItem
		wantErr bool
	}{
		{"single match", ParsedItem{OriginalName: "roti", Quantity: 2, Status: SingleMatch, SelectedFood: "Roti"}, false},
		{"ai estimate", ParsedItem{OriginalName: "poha", Quantity: 1, Status: NeedsAIEstimate}, false},
		{"ambiguous with matches", ParsedItem{OriginalName: "dal", Quantity: 1, Status: NeedsDisambiguation, Matches: match}, false},
		{"ambiguous without matches", ParsedItem{OriginalName: "dal", Quantity: 1, Status: NeedsDisambiguation}, true},
		{"single match echoing its match", ParsedItem{OriginalName: "dal", Status: SingleMatch, SelectedFood: "Dal (Toor)", Matches: match}, false},
		{"ai estimate with empty matches", ParsedItem{OriginalName: "poha", Quantity: 1, Status: NeedsAIEstimate, Matches: []FoodMatch{}}, false},
		{"unknown status", ParsedItem{OriginalName: "dal"}, true},
		{"negative quantity", ParsedItem{OriginalName: "roti", Quantity: -1, Status: SingleMatch}, true},
		{"NaN quantity", ParsedItem{OriginalName: "roti", Quantity: math.NaN(), Status: SingleMatch}, true},
		{"infinite quantity", ParsedItem{OriginalName: "roti", Quantity: math.Inf(1), Status: SingleMatch}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var vErr apperrors.ValidationError
			if err != nil && !errors.As(err, &vErr) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	items := []ParsedItem{
		{OriginalName: "roti", Quantity: 2, Status: SingleMatch, SelectedFood: "Roti (Whole Wheat)"},
		{OriginalName: "curry", Quantity: 1, Status: NeedsDisambiguation, Matches: []FoodMatch{
			{Name: "Chicken Curry (Homemade)"}, {Name: "Chicken Curry (Restaurant)"},
		}},
		{OriginalName: "mystery stew", Quantity: 0.5, Status: NeedsAIEstimate},
		{OriginalName: "rice", Quantity: 1, Status: SingleMatch},
	}

	t.Run("complete choices", func(t *testing.T) {
		t.Parallel()
		meal, err := Resolve(items, map[int]string{1: "Chicken Curry (Restaurant)", 2: "ignored"})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		want := []MealItem{
			{"Roti (Whole Wheat)", 2},
			{"Chicken Curry (Restaurant)", 1},
			{"mystery stew", 0.5},
			{"rice", 1},
		}
		if len(meal) != len(want) {
			t.Fatalf("got %d items, want %d", len(meal), len(want))
		}
		for i := range want {
			if meal[i] != want[i] {
				t.Errorf("meal[%d] = %+v, want %+v", i, meal[i], want[i])
			}
		}
	})

	t.Run("missing choice", func(t *testing.T) {
		t.Parallel()
		if _, err := Resolve(items, nil); err == nil {
			t.Error("expected error for unresolved item")
		}
	})

	t.Run("choice outside candidates", func(t *testing.T) {
		t.Parallel()
		if _, err := Resolve(items, map[int]string{1: "Paneer Tikka"}); err == nil {
			t.Error("expected error for unknown candidate")
		}
	})

	t.Run("first choices", func(t *testing.T) {
		t.Parallel()
		meal, err := Resolve(items, FirstChoices(items))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if meal[1].Food != "Chicken Curry (Homemade)" {
			t.Errorf("meal[1].Food = %q", meal[1].Food)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		meal, err := Resolve(nil, nil)
		if err != nil || meal == nil || len(meal) != 0 {
			t.Errorf("Resolve(nil) = %v, %v; want empty non-nil slice", meal, err)
		}
	})
}

func TestStateCloneIsDeep(t *testing.T) {
	t.Parallel()
	original := State{
		CurrentStep: StepResults,
		ParsedItems: []ParsedItem{{OriginalName: "dal", Status: NeedsDisambiguation, Matches: []FoodMatch{{Name: "Dal"}}}},
		FinalMeal:   []MealItem{{"Dal", 1}},
		GLResult: &GLResult{
			TotalGL:     8,
			Items:       []GLItem{{Food: "Dal", GL: 8}},
			Suggestions: []Suggestion{{Text: "add salad", Reason: "fibre"}},
			Usage:       &Usage{UsedToday: 1, DailyLimit: 10, Remaining: 9},
		},
	}

	c := original.Clone()
	c.ParsedItems[0].Matches[0].Name = "changed"
	c.FinalMeal[0].Quantity = 9
	c.GLResult.TotalGL = 99
	c.GLResult.Items[0].GL = 99
	c.GLResult.Suggestions[0].Text = "changed"
	c.GLResult.Usage.Remaining = 0

	if original.ParsedItems[0].Matches[0].Name != "Dal" ||
		original.FinalMeal[0].Quantity != 1 ||
		original.GLResult.TotalGL != 8 ||
		original.GLResult.Items[0].GL != 8 ||
		original.GLResult.Suggestions[0].Text != "add salad" ||
		original.GLResult.Usage.Remaining != 9 {
		t.Errorf("mutating the clone changed the original: %+v", original)
	}
}

func TestDefaultState(t *testing.T) {
	t.Parallel()
	s := DefaultState()
	if s.CurrentStep != StepInput || s.IsLoading || s.GLResult != nil {
		t.Errorf("unexpected default: %+v", s)
	}
	if s.ParsedItems == nil || s.FinalMeal == nil {
		t.Error("default sequences should be empty, not nil")
	}
	if s.Clone().FinalMeal == nil {
		t.Error("Clone should keep empty sequences non-nil")
	}
}
