package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listPickedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TagPickerModel - Interactive version selection
// =============================================================================

// TagPickerModel is the bubbletea model for picking the versions to compare.
// Versions are returned in the order they were picked, which is the order
// they are merged in.
type TagPickerModel struct {
	Repository string
	Tags       []string
	Cursor     int
	Height     int
	Offset     int
	Confirmed  bool

	picked []string
}

// NewTagPickerModel creates a picker over tags.
func NewTagPickerModel(repository string, tags []string) TagPickerModel {
	return TagPickerModel{
		Repository: repository,
		Tags:       tags,
		Height:     15,
	}
}

// Picked returns the picked tags in pick order, or nil if the picker was
// cancelled.
func (m TagPickerModel) Picked() []string {
	if !m.Confirmed {
		return nil
	}
	return slices.Clone(m.picked)
}

func (m TagPickerModel) Init() tea.Cmd {
	return nil
}

func (m TagPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Confirmed = false
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Tags)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "space", "x":
			m.toggle(m.Tags[m.Cursor])
		case "enter":
			if len(m.picked) == 0 && len(m.Tags) > 0 {
				m.toggle(m.Tags[m.Cursor])
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m *TagPickerModel) toggle(tag string) {
	if i := slices.Index(m.picked, tag); i >= 0 {
		m.picked = slices.Delete(m.picked, i, i+1)
		return
	}
	m.picked = append(m.picked, tag)
}

func (m TagPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select versions of " + m.Repository))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space pick  ⏎ compare  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Tags))
	for i := m.Offset; i < end; i++ {
		tag := m.Tags[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if n := slices.Index(m.picked, tag); n >= 0 {
			mark = fmt.Sprintf("[%d]", n+1)
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, tag)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case slices.Contains(m.picked, tag):
			b.WriteString(listPickedStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d picked", m.Cursor+1, len(m.Tags), len(m.picked))))

	return b.String()
}
