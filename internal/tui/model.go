package tui

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/glmeal/internal/errors"
	"github.com/agbru/glmeal/internal/logging"
	"github.com/agbru/glmeal/internal/orchestration"
)

// Portion adjustment granularity and floor.
const (
	QuantityStep = 0.5
	MinQuantity  = 0.5
)

// maxPanelWidth caps the content panel on wide terminals.
const maxPanelWidth = 80

var errEmptyMeal = apperrors.ValidationError{Field: "meal", Message: "describe what you ate first"}

// Options configures a Model.
type Options struct {
	// Smart starts with the matching parser selected.
	Smart bool
	// Meal pre-fills the input screen.
	Meal string
	// Concurrency bounds parallel portion lookups.
	Concurrency int
	Logger      logging.Logger
	Version     string
}

type portionRow struct {
	food     string
	quantity float64
	unitDesc string
}

// Model is the root bubbletea model. It renders the controller's current
// step and turns key presses into controller operations, which always run
// as commands outside Update.
type Model struct {
	ctx    context.Context
	ctrl   *orchestration.Controller
	svc    orchestration.Service
	opts   Options
	logger logging.Logger
	ref    *programRef

	keymap  KeyMap
	header  HeaderModel
	help    help.Model
	spinner spinner.Model
	input   textinput.Model

	state    orchestration.State
	smart    bool
	err      error
	notice   string
	cancelOp context.CancelFunc

	// Disambiguation: indices of ParsedItems still to resolve.
	pending []int
	cursor  int
	choices map[int]string

	// Portions.
	rows       []portionRow
	rowCursor  int
	portionSeq int

	width    int
	height   int
	quitting bool
}

// NewModel creates a model bound to ctrl. svc answers portion lookups.
func NewModel(ctx context.Context, ctrl *orchestration.Controller, svc orchestration.Service, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	ti := textinput.New()
	ti.Placeholder = "e.g. 2 roti with dal and a cup of rice"
	ti.CharLimit = 500
	ti.Width = 60
	ti.SetValue(opts.Meal)
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	header := NewHeaderModel(opts.Version)
	header.SetSmart(opts.Smart)

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		svc:     svc,
		opts:    opts,
		logger:  logger,
		ref:     &programRef{},
		keymap:  DefaultKeyMap(),
		header:  header,
		help:    help.New(),
		spinner: sp,
		input:   ti,
		state:   ctrl.GetState(),
		smart:   opts.Smart,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		return m.applyState(msg.State)

	case opDoneMsg:
		return m.handleOpDone(msg), nil

	case portionsMsg:
		if msg.seq != m.portionSeq || m.state.CurrentStep != orchestration.StepPortions {
			return m, nil
		}
		m.rows = slices.Clone(m.rows)
		for i, info := range msg.infos {
			if i < len(m.rows) {
				m.rows[i].unitDesc = info.UnitDesc
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state.CurrentStep == orchestration.StepInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyState installs a controller snapshot and prepares the screen when
// the step changed.
func (m Model) applyState(s orchestration.State) (tea.Model, tea.Cmd) {
	prev := m.state.CurrentStep
	m.state = s
	m.header.SetStep(s.CurrentStep)
	if s.CurrentStep == prev {
		return m, nil
	}

	switch s.CurrentStep {
	case orchestration.StepInput:
		m.input.Reset()
		m.input.Focus()
		m.pending, m.choices, m.rows = nil, nil, nil
	case orchestration.StepDisambiguation:
		m.input.Blur()
		m.startDisambiguation()
	case orchestration.StepPortions:
		m.input.Blur()
		m.rows = make([]portionRow, len(s.FinalMeal))
		foods := make([]string, len(s.FinalMeal))
		for i, item := range s.FinalMeal {
			m.rows[i] = portionRow{food: item.Food, quantity: item.Quantity}
			foods[i] = item.Food
		}
		m.rowCursor = 0
		m.portionSeq++
		return m, lookupPortionsCmd(m.ctx, m.svc, foods, m.opts.Concurrency, m.logger, m.portionSeq)
	case orchestration.StepResults:
		m.input.Blur()
	}
	return m, nil
}

func (m *Model) startDisambiguation() {
	m.pending = m.pending[:0:0]
	for i, item := range m.state.ParsedItems {
		if item.Status == orchestration.NeedsDisambiguation {
			m.pending = append(m.pending, i)
		}
	}
	m.cursor = 0
	m.choices = make(map[int]string)
}

func (m Model) handleOpDone(msg opDoneMsg) Model {
	if errors.Is(msg.err, apperrors.ErrSuperseded) {
		return m
	}
	if msg.err != nil {
		m.err = msg.err
		m.logger.Warn("operation failed", logging.Int("op", int(msg.op)), logging.Err(msg.err))
	}

	switch msg.op {
	case opSubmit:
		if msg.smart && msg.err == nil && !msg.outcome.Accepted {
			m.notice = msg.outcome.Message
			if m.notice == "" {
				m.notice = "No food items found in description"
			}
		}
	case opDisambiguate:
		if msg.err != nil {
			m.startDisambiguation()
		}
	case opReset:
		m.err = nil
		m.notice = ""
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Quit) {
		m.quitting = true
		if m.cancelOp != nil {
			m.cancelOp()
		}
		return m, tea.Quit
	}

	if m.state.IsLoading {
		if key.Matches(msg, m.keymap.Back) {
			return m, m.resetCmd()
		}
		return m, nil
	}

	switch m.state.CurrentStep {
	case orchestration.StepInput:
		return m.updateInput(msg)
	case orchestration.StepDisambiguation:
		return m.updateDisambiguation(msg)
	case orchestration.StepPortions:
		return m.updatePortions(msg)
	case orchestration.StepResults:
		if key.Matches(msg, m.keymap.Back) || key.Matches(msg, m.keymap.Submit) {
			return m, m.resetCmd()
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ToggleSmart):
		m.smart = !m.smart
		m.header.SetSmart(m.smart)
		return m, nil
	case key.Matches(msg, m.keymap.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.err = errEmptyMeal
			return m, nil
		}
		m.err = nil
		m.notice = ""
		ctx := m.opContext()
		return m, submitCmd(ctx, m.cancelOp, m.ctrl, text, m.smart)
	case key.Matches(msg, m.keymap.Back):
		m.err = nil
		m.notice = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateDisambiguation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Back) {
		return m, m.resetCmd()
	}
	if len(m.pending) == 0 {
		return m, nil
	}
	item := m.state.ParsedItems[m.pending[0]]

	switch {
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(item.Matches)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Submit):
		m.choices[m.pending[0]] = item.Matches[m.cursor].Name
		m.pending = m.pending[1:]
		m.cursor = 0
		if len(m.pending) > 0 {
			return m, nil
		}
		meal, err := orchestration.Resolve(m.state.ParsedItems, m.choices)
		if err != nil {
			m.err = err
			m.startDisambiguation()
			return m, nil
		}
		m.err = nil
		return m, disambiguateCmd(m.ctrl, meal)
	}
	return m, nil
}

func (m Model) updatePortions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Back):
		return m, m.resetCmd()
	case key.Matches(msg, m.keymap.Up):
		if m.rowCursor > 0 {
			m.rowCursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.rowCursor < len(m.rows)-1 {
			m.rowCursor++
		}
	case key.Matches(msg, m.keymap.Increase):
		if len(m.rows) > 0 {
			m.rows = slices.Clone(m.rows)
			m.rows[m.rowCursor].quantity += QuantityStep
		}
	case key.Matches(msg, m.keymap.Decrease):
		if len(m.rows) > 0 {
			m.rows = slices.Clone(m.rows)
			m.rows[m.rowCursor].quantity = decreaseQuantity(m.rows[m.rowCursor].quantity)
		}
	case key.Matches(msg, m.keymap.Submit):
		meal := make([]orchestration.MealItem, len(m.rows))
		for i, r := range m.rows {
			meal[i] = orchestration.MealItem{Food: r.food, Quantity: r.quantity}
		}
		m.err = nil
		ctx := m.opContext()
		return m, calculateCmd(ctx, m.cancelOp, m.ctrl, meal)
	}
	return m, nil
}

// decreaseQuantity lowers q by one step without going under MinQuantity.
// Quantities already at or below the floor are left alone.
func decreaseQuantity(q float64) float64 {
	switch {
	case q-QuantityStep >= MinQuantity:
		return q - QuantityStep
	case q > MinQuantity:
		return MinQuantity
	default:
		return q
	}
}

// opContext derives a cancellable context for one remote operation and
// remembers its cancel function so a reset can abandon the call.
func (m *Model) opContext() context.Context {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelOp = cancel
	return ctx
}

func (m Model) resetCmd() tea.Cmd {
	cancel := m.cancelOp
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Reset()
		if cancel != nil {
			cancel()
		}
		return opDoneMsg{op: opReset}
	}
}

func submitCmd(ctx context.Context, cancel context.CancelFunc, ctrl *orchestration.Controller, text string, smart bool) tea.Cmd {
	return func() tea.Msg {
		defer cancel()
		if smart {
			outcome, err := ctrl.SubmitMealSmart(ctx, text)
			return opDoneMsg{op: opSubmit, smart: true, outcome: outcome, err: err}
		}
		return opDoneMsg{op: opSubmit, err: ctrl.SubmitMeal(ctx, text)}
	}
}

func disambiguateCmd(ctrl *orchestration.Controller, meal []orchestration.MealItem) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: opDisambiguate, err: ctrl.CompleteDisambiguation(meal)}
	}
}

func calculateCmd(ctx context.Context, cancel context.CancelFunc, ctrl *orchestration.Controller, meal []orchestration.MealItem) tea.Cmd {
	return func() tea.Msg {
		defer cancel()
		return opDoneMsg{op: opCalculate, err: ctrl.CompletePortions(ctx, meal)}
	}
}

func lookupPortionsCmd(ctx context.Context, svc orchestration.Service, foods []string, limit int, logger logging.Logger, seq int) tea.Cmd {
	return func() tea.Msg {
		return portionsMsg{seq: seq, infos: orchestration.LookupPortions(ctx, svc, foods, limit, logger)}
	}
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state.CurrentStep {
	case orchestration.StepInput:
		body = m.viewInput()
	case orchestration.StepDisambiguation:
		body = m.viewDisambiguation()
	case orchestration.StepPortions:
		body = m.viewPortions()
	case orchestration.StepResults:
		body = m.viewResults()
	}

	panel := panelStyle
	if m.width > 0 {
		panel = panel.Width(min(m.width-2, maxPanelWidth))
	}

	parts := []string{m.header.View(), panel.Render(body)}
	if m.state.IsLoading {
		parts = append(parts, " "+m.spinner.View()+" "+loadingText(m.state.CurrentStep))
	}
	if m.notice != "" {
		parts = append(parts, " "+warningStyle.Render(m.notice))
	}
	if m.err != nil {
		parts = append(parts, " "+errorStyle.Render("Error: "+m.err.Error()))
	}
	parts = append(parts, " "+m.help.View(m.screenHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) screenHelp() screenHelp {
	k := m.keymap
	if m.state.IsLoading {
		return screenHelp{k.Back, k.Quit}
	}
	switch m.state.CurrentStep {
	case orchestration.StepDisambiguation:
		return screenHelp{k.Up, k.Down, k.Submit, k.Back, k.Quit}
	case orchestration.StepPortions:
		return screenHelp{k.Up, k.Down, k.Increase, k.Decrease, k.Submit, k.Back, k.Quit}
	case orchestration.StepResults:
		return screenHelp{k.Back, k.Quit}
	default:
		return screenHelp{k.Submit, k.ToggleSmart, k.Quit}
	}
}

func loadingText(step orchestration.Step) string {
	if step == orchestration.StepInput {
		return "Analyzing your meal..."
	}
	return "Calculating glycemic load..."
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code.
func Run(ctx context.Context, ctrl *orchestration.Controller, svc orchestration.Service, opts Options) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(ctx, ctrl, svc, opts)
	unsubscribe := ctrl.Subscribe(model.ref.forwardState)
	defer unsubscribe()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	// Inject the program reference before running so the subscription can Send.
	model.ref.SetProgram(p)
	defer model.ref.SetProgram(nil)

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return apperrors.ExitErrorCanceled
		}
		model.logger.Error("terminal UI failed", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
