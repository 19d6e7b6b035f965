package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/mock/gomock"

	apperrors "github.com/agbru/glmeal/internal/errors"
	"github.com/agbru/glmeal/internal/orchestration"
	"github.com/agbru/glmeal/internal/orchestration/mocks"
)

// harness drives a Model the way the program does: controller snapshots
// arrive before the result message of the command that produced them.
type harness struct {
	t    *testing.T
	ctrl *orchestration.Controller
	svc  *mocks.MockService
	m    Model
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	ctrl := orchestration.NewController(svc)
	return &harness{t: t, ctrl: ctrl, svc: svc, m: NewModel(context.Background(), ctrl, svc, opts)}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) press(k string) {
	h.t.Helper()
	h.run(h.send(keyPress(k)))
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	for cmd != nil {
		msg := cmd()
		var follow tea.Cmd
		if _, ok := msg.(opDoneMsg); ok {
			follow = h.send(StateMsg{State: h.ctrl.GetState()})
		}
		if c := h.send(msg); c != nil && follow == nil {
			follow = c
		}
		cmd = follow
	}
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func assertView(t *testing.T, view string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(view, w) {
			t.Errorf("view missing %q:\n%s", w, view)
		}
	}
}

func TestPlainFlow(t *testing.T) {
	h := newHarness(t, Options{Meal: "2 roti"})
	h.svc.EXPECT().ParseMeal(gomock.Any(), "2 roti").
		Return([]orchestration.MealItem{{Food: "Roti", Quantity: 2}}, nil)
	h.svc.EXPECT().PortionInfo(gomock.Any(), "Roti").
		Return(orchestration.PortionInfo{Food: "Roti", Unit: "piece", UnitDesc: "1 medium roti (40g)"}, nil)
	h.svc.EXPECT().CalculateGL(gomock.Any(), []orchestration.MealItem{{Food: "Roti", Quantity: 2.5}}).
		Return(orchestration.GLResult{
			TotalGL:     18.14,
			Items:       []orchestration.GLItem{{Food: "Roti", GL: 18.14}},
			Suggestions: []orchestration.Suggestion{{Text: "Add a side salad", Reason: "Fibre slows glucose absorption"}},
			Usage:       &orchestration.Usage{UsedToday: 2, DailyLimit: 10, Remaining: 8},
		}, nil)

	assertView(t, h.m.View(), "What did you eat?", "Step 1 of 4")

	h.press("enter")
	if h.m.state.CurrentStep != orchestration.StepPortions {
		t.Fatalf("step = %v, want portions", h.m.state.CurrentStep)
	}
	assertView(t, h.m.View(), "Step 3 of 4", "Roti", "1 medium roti (40g)", "GL ~10.0")

	h.press("+")
	if got := h.m.rows[0].quantity; got != 2.5 {
		t.Fatalf("quantity = %v, want 2.5", got)
	}

	h.press("enter")
	if h.m.state.CurrentStep != orchestration.StepResults {
		t.Fatalf("step = %v, want results", h.m.state.CurrentStep)
	}
	assertView(t, h.m.View(), "Step 4 of 4", "GL 18.1", "Moderate Impact", "* Add a side salad: Fibre slows glucose absorption", "8 remaining")

	h.press("esc")
	if h.m.state.CurrentStep != orchestration.StepInput {
		t.Fatalf("step = %v, want input after start over", h.m.state.CurrentStep)
	}
	if v := h.m.input.Value(); v != "" {
		t.Errorf("input = %q, want cleared", v)
	}
}

func TestSmartFlowWithDisambiguation(t *testing.T) {
	h := newHarness(t, Options{Meal: "2 roti with chicken curry"})
	h.svc.EXPECT().SmartParse(gomock.Any(), "2 roti with chicken curry").
		Return(orchestration.SmartParseResult{
			Status: orchestration.SmartParseStatusSuccess,
			Items: []orchestration.ParsedItem{
				{OriginalName: "roti", Quantity: 2, Status: orchestration.SingleMatch, SelectedFood: "Roti"},
				{OriginalName: "chicken curry", Quantity: 1, Status: orchestration.NeedsDisambiguation, Matches: []orchestration.FoodMatch{
					{Name: "Chicken Curry (Homemade)", Category: "Curries", UnitDesc: "1 bowl (200g)"},
					{Name: "Chicken Curry (Restaurant)", Category: "Curries", UnitDesc: "1 bowl (250g)"},
				}},
			},
		}, nil)
	h.svc.EXPECT().PortionInfo(gomock.Any(), gomock.Any()).
		Return(orchestration.PortionInfo{}, errors.New("unavailable")).AnyTimes()

	h.press("ctrl+s")
	if !h.m.smart {
		t.Fatal("ctrl+s should enable smart matching")
	}
	assertView(t, h.m.View(), "smart matching")

	h.press("enter")
	if h.m.state.CurrentStep != orchestration.StepDisambiguation {
		t.Fatalf("step = %v, want disambiguation", h.m.state.CurrentStep)
	}
	assertView(t, h.m.View(), `Which "chicken curry" did you mean?`, "(1 of 1)", "Chicken Curry (Homemade)", "1 bowl (250g)")

	h.press("down")
	h.press("down")
	if h.m.cursor != 1 {
		t.Fatalf("cursor = %d, want clamped to 1", h.m.cursor)
	}
	h.press("enter")

	if h.m.state.CurrentStep != orchestration.StepPortions {
		t.Fatalf("step = %v, want portions", h.m.state.CurrentStep)
	}
	want := []orchestration.MealItem{{Food: "Roti", Quantity: 2}, {Food: "Chicken Curry (Restaurant)", Quantity: 1}}
	got := h.m.state.FinalMeal
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("final meal = %+v, want %+v", got, want)
	}
	if h.m.rows[1].unitDesc != "1 portion" {
		t.Errorf("failed lookup should fall back to the default portion, got %q", h.m.rows[1].unitDesc)
	}
}

func TestDisambiguationEscResets(t *testing.T) {
	h := newHarness(t, Options{Meal: "curry", Smart: true})
	h.svc.EXPECT().SmartParse(gomock.Any(), "curry").
		Return(orchestration.SmartParseResult{
			Status: orchestration.SmartParseStatusSuccess,
			Items: []orchestration.ParsedItem{{OriginalName: "curry", Quantity: 1, Status: orchestration.NeedsDisambiguation, Matches: []orchestration.FoodMatch{
				{Name: "Dal Curry"}, {Name: "Chicken Curry (Homemade)"},
			}}},
		}, nil)

	h.press("enter")
	h.press("esc")
	if st := h.m.state; st.CurrentStep != orchestration.StepInput || len(st.ParsedItems) != 0 {
		t.Errorf("state = %+v, want reset", st)
	}
}

func TestSmartRejectedShowsNotice(t *testing.T) {
	h := newHarness(t, Options{Meal: "a nice walk", Smart: true})
	h.svc.EXPECT().SmartParse(gomock.Any(), "a nice walk").
		Return(orchestration.SmartParseResult{Status: "error", Message: "No food items found in description"}, nil)

	h.press("enter")
	if h.m.state.CurrentStep != orchestration.StepInput {
		t.Fatalf("step = %v, want input", h.m.state.CurrentStep)
	}
	assertView(t, h.m.View(), "No food items found in description")
	if h.m.input.Value() != "a nice walk" {
		t.Error("input should be kept after a rejected description")
	}
}

func TestSubmitFailureShowsError(t *testing.T) {
	h := newHarness(t, Options{Meal: "rice"})
	h.svc.EXPECT().ParseMeal(gomock.Any(), "rice").Return(nil, errors.New("connection refused"))

	h.press("enter")
	if h.m.state.CurrentStep != orchestration.StepInput || h.m.state.IsLoading {
		t.Fatalf("state = %+v, want idle input", h.m.state)
	}
	assertView(t, h.m.View(), "Error: failed to parse meal: connection refused")

	h.press("esc")
	if h.m.err != nil {
		t.Error("esc on the input screen should clear the error")
	}
}

func TestEmptyInputIsRejected(t *testing.T) {
	h := newHarness(t, Options{})
	if cmd := h.send(keyPress("enter")); cmd != nil {
		t.Error("empty input must not start a submission")
	}
	assertView(t, h.m.View(), "describe what you ate first")
}

func TestCalculateFailureKeepsPortions(t *testing.T) {
	h := newHarness(t, Options{Meal: "rice"})
	h.svc.EXPECT().ParseMeal(gomock.Any(), "rice").Return([]orchestration.MealItem{{Food: "White Rice", Quantity: 1}}, nil)
	h.svc.EXPECT().PortionInfo(gomock.Any(), "White Rice").Return(orchestration.PortionInfo{Food: "White Rice", UnitDesc: "1 cup"}, nil)
	h.svc.EXPECT().CalculateGL(gomock.Any(), gomock.Any()).Return(orchestration.GLResult{}, errors.New("HTTP 429"))

	h.press("enter")
	h.press("enter")
	if h.m.state.CurrentStep != orchestration.StepPortions {
		t.Fatalf("step = %v, want portions after failed calculation", h.m.state.CurrentStep)
	}
	assertView(t, h.m.View(), "Error: ", "HTTP 429", "White Rice")
}

func TestLoadingBlocksInput(t *testing.T) {
	h := newHarness(t, Options{Meal: "rice"})
	h.send(StateMsg{State: orchestration.State{CurrentStep: orchestration.StepInput, IsLoading: true}})

	if cmd := h.send(keyPress("enter")); cmd != nil {
		t.Error("enter while loading should be ignored")
	}
	assertView(t, h.m.View(), "Analyzing your meal...")

	if cmd := h.send(keyPress("esc")); cmd == nil {
		t.Error("esc while loading should reset")
	}
}

func TestStalePortionsIgnored(t *testing.T) {
	h := newHarness(t, Options{})
	h.send(StateMsg{State: orchestration.State{
		CurrentStep: orchestration.StepPortions,
		FinalMeal:   []orchestration.MealItem{{Food: "Roti", Quantity: 1}},
	}})
	h.send(portionsMsg{seq: h.m.portionSeq - 1, infos: []orchestration.PortionInfo{{UnitDesc: "stale"}}})
	if h.m.rows[0].unitDesc != "" {
		t.Errorf("stale lookup applied: %q", h.m.rows[0].unitDesc)
	}
}

func TestDecreaseQuantity(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{2, 1.5},
		{1, 0.5},
		{0.75, 0.5},
		{0.5, 0.5},
		{0.25, 0.25},
	}
	for _, tt := range tests {
		if got := decreaseQuantity(tt.in); got != tt.want {
			t.Errorf("decreaseQuantity(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPortionsFloor(t *testing.T) {
	h := newHarness(t, Options{})
	h.send(StateMsg{State: orchestration.State{
		CurrentStep: orchestration.StepPortions,
		FinalMeal:   []orchestration.MealItem{{Food: "Roti", Quantity: 1}, {Food: "Dal", Quantity: 1}},
	}})
	h.send(keyPress("down"))
	h.send(keyPress("-"))
	h.send(keyPress("-"))
	if got := h.m.rows[1].quantity; got != MinQuantity {
		t.Errorf("quantity = %v, want floor %v", got, MinQuantity)
	}
	if got := h.m.rows[0].quantity; got != 1 {
		t.Errorf("unselected row changed to %v", got)
	}
}

func TestSupersededResultIsSilent(t *testing.T) {
	h := newHarness(t, Options{})
	m := h.m.handleOpDone(opDoneMsg{op: opCalculate, err: apperrors.ErrSuperseded})
	if m.err != nil {
		t.Errorf("superseded completion should not surface an error, got %v", m.err)
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t, Options{})
	cmd := h.send(keyPress("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if h.m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestWindowSize(t *testing.T) {
	h := newHarness(t, Options{})
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	if h.m.width != 100 || h.m.height != 30 {
		t.Errorf("size = %dx%d", h.m.width, h.m.height)
	}
}
