package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/render"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// KeyboardListModel - Interactive keyboard selection
// =============================================================================

// KeyboardListModel is the bubbletea model behind "keyboard browse": a
// scrolling table of keyboards with a live preview of the one under the
// cursor.
type KeyboardListModel struct {
	Keyboards []*keyboard.Keyboard
	Cursor    int
	Selected  *keyboard.Keyboard
	Height    int
	Offset    int
}

// NewKeyboardListModel creates a new keyboard list model.
func NewKeyboardListModel(kbs []*keyboard.Keyboard) KeyboardListModel {
	return KeyboardListModel{Keyboards: kbs, Height: 10}
}

func (m KeyboardListModel) Init() tea.Cmd {
	return nil
}

func (m KeyboardListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Keyboards)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Keyboards) > 0 {
				m.Selected = m.Keyboards[m.Cursor]
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, help line and preview.
		m.Height = msg.Height/2 - 4
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m KeyboardListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Keyboard"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Keyboards) {
		end = len(m.Keyboards)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		kb := m.Keyboards[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		strategy := "—"
		if kb.Strategy != 0 {
			strategy = kb.Strategy.String()
		}
		rows = append(rows, []string{
			cursor,
			kb.Name,
			kb.Alphabet,
			fmt.Sprintf("%dx%d", kb.Rows(), kb.Cols()),
			formatCost(kb.Cost),
			strategy,
			formatRelativeTime(kb.UpdatedAt),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Keyboard", "Alphabet", "Size", "Cost", "Strategy", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				if col == 4 {
					return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
				}
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 5 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Keyboards))))
	b.WriteString("\n\n")

	if len(m.Keyboards) > 0 {
		b.WriteString(render.Text(m.Keyboards[m.Cursor]))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
