package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/agbru/glmeal/internal/client"
	"github.com/agbru/glmeal/internal/format"
	"github.com/agbru/glmeal/internal/orchestration"
	"github.com/agbru/glmeal/internal/ui"
)

// Report is the printable outcome of one analysis.
type Report struct {
	Meal        []ReportItem               `json:"meal"`
	TotalGL     float64                    `json:"total_gl"`
	Band        string                     `json:"band"`
	Items       []orchestration.GLItem     `json:"items"`
	Suggestions []orchestration.Suggestion `json:"suggestions,omitempty"`
	Usage       *orchestration.Usage       `json:"usage,omitempty"`
	// Elapsed is the wall time from submission to result.
	Elapsed time.Duration `json:"-"`
}

// ReportItem is a meal entry with its portion descriptor.
type ReportItem struct {
	Food     string  `json:"food"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	UnitDesc string  `json:"unit_desc,omitempty"`
}

// BuildReport combines the submitted meal, the portion descriptors looked up
// for it and the calculated result. portions is matched to meal by index and
// may be shorter or nil.
func BuildReport(meal []orchestration.MealItem, portions []orchestration.PortionInfo, res orchestration.GLResult) Report {
	items := make([]ReportItem, len(meal))
	for i, m := range meal {
		items[i] = ReportItem{Food: m.Food, Quantity: m.Quantity}
		if i < len(portions) {
			items[i].Unit = portions[i].Unit
			items[i].UnitDesc = portions[i].UnitDesc
		}
	}
	glItems := res.Items
	if glItems == nil {
		glItems = []orchestration.GLItem{}
	}
	return Report{
		Meal:        items,
		TotalGL:     res.TotalGL,
		Band:        format.ClassifyGL(res.TotalGL).String(),
		Items:       glItems,
		Suggestions: res.Suggestions,
		Usage:       res.Usage,
	}
}

// FormatItemStatus returns the annotation printed after a per-item GL value.
func FormatItemStatus(item orchestration.GLItem) string {
	return format.ItemNote(string(item.Status), item.Message)
}

// DisplayReport writes the human-readable result.
func DisplayReport(out io.Writer, r Report) {
	theme := ui.GetCurrentTheme()
	band := format.ClassifyGL(r.TotalGL)

	fmt.Fprintf(out, "%sMeal%s\n", theme.Bold, theme.Reset)
	for _, m := range r.Meal {
		desc := ""
		if m.UnitDesc != "" {
			desc = fmt.Sprintf(" %s(%s)%s", theme.Secondary, m.UnitDesc, theme.Reset)
		}
		fmt.Fprintf(out, "  %s x %s%s\n", format.FormatQuantity(m.Quantity), m.Food, desc)
	}

	fmt.Fprintf(out, "\n%sGlycemic load:%s %s%s%s%s  %s\n",
		theme.Bold, theme.Reset,
		theme.BandColor(band.String()), theme.Bold, format.FormatGL(r.TotalGL), theme.Reset,
		band.Label())
	fmt.Fprintf(out, "  %s\n", band.Description())

	if len(r.Items) > 0 {
		width := 0
		for _, it := range r.Items {
			width = max(width, len(it.Food))
		}
		fmt.Fprintf(out, "\n%sBreakdown%s\n", theme.Bold, theme.Reset)
		for _, it := range r.Items {
			line := fmt.Sprintf("  %-*s  %6s", width, it.Food, format.FormatGL(it.GL))
			if note := FormatItemStatus(it); note != "" {
				color := theme.Warning
				if it.Status != orchestration.ItemAIEstimated {
					color = theme.Error
				}
				line += "  " + color + note + theme.Reset
			}
			fmt.Fprintln(out, line)
		}
	}

	if len(r.Suggestions) > 0 {
		fmt.Fprintf(out, "\n%sSuggestions%s\n", theme.Bold, theme.Reset)
		for _, s := range r.Suggestions {
			if s.Reason != "" {
				fmt.Fprintf(out, "  %s* %s%s: %s\n", theme.Info, s.Text, theme.Reset, s.Reason)
			} else {
				fmt.Fprintf(out, "  %s* %s%s\n", theme.Info, s.Text, theme.Reset)
			}
		}
	}

	if u := r.Usage; u != nil {
		fmt.Fprintf(out, "\n%s%d of %d analyses used today (%d remaining)%s\n",
			theme.Secondary, u.UsedToday, u.DailyLimit, u.Remaining, theme.Reset)
	}
	if r.Elapsed > 0 {
		fmt.Fprintf(out, "%sAnalyzed in %s%s\n", theme.Secondary, format.FormatElapsed(r.Elapsed), theme.Reset)
	}
}

// DisplayQuiet writes only the total, for scripting.
func DisplayQuiet(out io.Writer, r Report) {
	fmt.Fprintln(out, format.FormatGL(r.TotalGL))
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DisplayHealth writes the service liveness report.
func DisplayHealth(out io.Writer, baseURL string, h client.HealthStatus) {
	theme := ui.GetCurrentTheme()
	color := theme.Success
	if !h.Healthy() {
		color = theme.Error
	}
	fmt.Fprintf(out, "%s: %s%s%s\n", baseURL, color, h.Status, theme.Reset)
	fmt.Fprintf(out, "  database loaded: %t\n", h.DatabaseLoaded)
	fmt.Fprintf(out, "  foods:           %d\n", h.TotalFoods)
}

// DisplayFoods writes the food list grouped by category, sorted by name.
func DisplayFoods(out io.Writer, foods []client.FoodSummary) {
	theme := ui.GetCurrentTheme()
	sorted := slices.Clone(foods)
	slices.SortStableFunc(sorted, func(a, b client.FoodSummary) int {
		if c := strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category)); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	var current string
	for i, f := range sorted {
		category := f.Category
		if category == "" {
			category = "other"
		}
		if i == 0 || !strings.EqualFold(category, current) {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s%s%s\n", theme.Bold, category, theme.Reset)
			current = category
		}
		fmt.Fprintf(out, "  %s\n", f.Name)
	}
	fmt.Fprintf(out, "\n%d foods\n", len(foods))
}
