package tui

import (
	"fmt"
	"strings"

	"github.com/agbru/glmeal/internal/format"
	"github.com/agbru/glmeal/internal/orchestration"
)

func (m Model) viewInput() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("What did you eat?"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	mode := dimStyle.Render("off")
	if m.smart {
		mode = smartOnStyle.Render("on")
	}
	b.WriteString(dimStyle.Render("Describe your meal in plain words. Smart matching: "))
	b.WriteString(mode)
	return b.String()
}

func (m Model) viewDisambiguation() string {
	if len(m.pending) == 0 {
		return dimStyle.Render("Saving your choices...")
	}
	idx := m.pending[0]
	item := m.state.ParsedItems[idx]

	total := 0
	for _, p := range m.state.ParsedItems {
		if p.Status == orchestration.NeedsDisambiguation {
			total++
		}
	}
	position := total - len(m.pending) + 1

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n",
		titleStyle.Render(fmt.Sprintf("Which %q did you mean?", item.OriginalName)),
		dimStyle.Render(fmt.Sprintf("(%d of %d)", position, total)))

	for i, match := range item.Matches {
		prefix := "  "
		name := match.Name
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
			name = selectedStyle.Render(name)
		}
		b.WriteString(prefix + name)
		var details []string
		if match.Category != "" {
			details = append(details, match.Category)
		}
		if match.UnitDesc != "" {
			details = append(details, match.UnitDesc)
		}
		if len(details) > 0 {
			b.WriteString(dimStyle.Render("  " + strings.Join(details, ", ")))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewPortions() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("How much did you have?"))
	b.WriteString("\n\n")

	width := 0
	for _, r := range m.rows {
		width = max(width, len(r.food))
	}

	preview := 0.0
	for i, r := range m.rows {
		prefix := "  "
		food := fmt.Sprintf("%-*s", width, r.food)
		if i == m.rowCursor {
			prefix = cursorStyle.Render("> ")
			food = selectedStyle.Render(food)
		}
		gl := format.PreviewGL(r.quantity)
		preview += gl

		fmt.Fprintf(&b, "%s%s  %s %s %s  %s", prefix, food,
			dimStyle.Render("-"), valueStyle.Render(fmt.Sprintf("%5s", format.FormatQuantity(r.quantity))), dimStyle.Render("+"),
			dimStyle.Render("GL ~"+format.FormatGL(gl)))
		if r.unitDesc != "" {
			b.WriteString(dimStyle.Render("  x " + r.unitDesc))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n%s %s", labelStyle.Render("Estimated total:"), valueStyle.Render("~"+format.FormatGL(preview)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press enter to calculate the real glycemic load."))
	return b.String()
}

func (m Model) viewResults() string {
	res := m.state.GLResult
	if res == nil {
		return dimStyle.Render("No result.")
	}
	band := format.ClassifyGL(res.TotalGL)
	bs := bandStyle(band.String())

	var b strings.Builder
	box := totalBoxStyle.BorderForeground(currentTheme.BandColor(band.String())).
		Render(bs.Render("GL "+format.FormatGL(res.TotalGL)) + "  " + bs.Render(band.Label()))
	b.WriteString(box)
	b.WriteString("\n")
	b.WriteString(band.Description())
	b.WriteString("\n\n")

	width := 0
	for _, it := range res.Items {
		width = max(width, len(it.Food))
	}
	aiEstimated := false
	b.WriteString(labelStyle.Render("Breakdown"))
	b.WriteString("\n")
	for _, it := range res.Items {
		fmt.Fprintf(&b, "  %-*s  %s", width, it.Food, valueStyle.Render(fmt.Sprintf("%6s", format.FormatGL(it.GL))))
		if note := format.ItemNote(string(it.Status), it.Message); note != "" {
			style := errorStyle
			if it.Status == orchestration.ItemAIEstimated {
				style = warningStyle
				aiEstimated = true
			}
			b.WriteString("  " + style.Render(note))
		}
		b.WriteString("\n")
	}
	if aiEstimated {
		b.WriteString(dimStyle.Render("AI estimated values are approximations for foods missing from the database."))
		b.WriteString("\n")
	}

	if len(res.Suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Suggestions"))
		b.WriteString("\n")
		for _, s := range res.Suggestions {
			line := "* " + s.Text
			if s.Reason != "" {
				line += ": " + s.Reason
			}
			b.WriteString("  " + suggestStyle.Render(line) + "\n")
		}
	}

	if u := res.Usage; u != nil {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d analyses used today (%d remaining)", u.UsedToday, u.DailyLimit, u.Remaining)))
	}
	return strings.TrimRight(b.String(), "\n")
}
