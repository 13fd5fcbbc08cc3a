package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
)

var (
	keyStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1).Align(lipgloss.Center)
	emptyStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	gridStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Text draws the keys of kb as a bordered grid. Empty keys are blank cells.
func Text(kb *keyboard.Keyboard) string {
	rows := make([][]string, len(kb.Keys))
	for i, row := range kb.Keys {
		rows[i] = make([]string, len(row))
		for j, key := range row {
			if key == "" {
				key = " "
			}
			rows[i][j] = key
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(gridStyle).
		BorderRow(true).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row >= 0 && row < len(kb.Keys) && col < len(kb.Keys[row]) && kb.Keys[row][col] == "" {
				return emptyStyle
			}
			return keyStyle
		})
	return t.Render()
}
