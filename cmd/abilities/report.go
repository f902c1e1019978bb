package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cory-johannsen/vennt/internal/game/rules"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)

	cellStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingRight(1)

	dimStyle = cellStyle.
			Foreground(lipgloss.Color("#888888"))
)

func usable(entries []rules.Entry) []rules.Entry {
	var out []rules.Entry
	for _, e := range entries {
		if e.Usable {
			out = append(out, e)
		}
	}
	return out
}

func formatCost(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// renderReport draws one table row per entry. Unusable rows are dimmed.
func renderReport(name string, entries []rules.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Ability.Name,
			e.Ability.Path(),
			formatCost(e.XPCost),
			yesNo(e.Usable),
			e.Activation,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ABILITY", "PATH", "XP", "USABLE", "ACTIVATION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(entries) && !entries[row].Usable:
				return dimStyle
			default:
				return cellStyle
			}
		})

	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(name), t.Render())
}

// renderUpdates lists owned abilities with a newer catalog definition.
func renderUpdates(updates []rules.Update) string {
	rows := make([][]string, 0, len(updates))
	for _, u := range updates {
		rows = append(rows, []string{u.Owned.Name, u.Owned.ID, strings.Join(u.Changed, ", ")})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("UPDATE AVAILABLE", "ID", "CHANGED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}
