package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// GlycanEntry is one selectable row: a sequence plus its optional
// annotation from the dataset.
type GlycanEntry struct {
	Sequence string
	Label    string
}

// GlycanListModel is the bubbletea model for interactive glycan selection
// from a dataset.
type GlycanListModel struct {
	Entries  []GlycanEntry
	Cursor   int
	Selected *GlycanEntry
	Height   int
	Offset   int
}

// NewGlycanListModel creates a new glycan list model.
func NewGlycanListModel(entries []GlycanEntry) GlycanListModel {
	return GlycanListModel{
		Entries: entries,
		Height:  15,
	}
}

func (m GlycanListModel) Init() tea.Cmd {
	return nil
}

func (m GlycanListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			entry := m.Entries[m.Cursor]
			m.Selected = &entry
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m GlycanListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Glycan"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		residues := "—"
		if g, err := glycan.Parse(e.Sequence); err == nil {
			residues = fmt.Sprintf("%d", g.NodeCount())
		}

		label := e.Label
		if label == "" {
			label = "—"
		}

		rows = append(rows, []string{cursor, e.Sequence, label, residues})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Sequence", "Label", "Residues").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}
