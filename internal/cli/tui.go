package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stacksize/pkg/profile"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ProfilePickerModel - Interactive profile selection
// =============================================================================

// ProfilePickerModel is the bubbletea model for choosing which profiles to
// estimate.
type ProfilePickerModel struct {
	Profiles  []profile.Profile
	Cursor    int
	Chosen    map[int]bool
	Confirmed bool
	Height    int
	Offset    int
}

// NewProfilePickerModel creates a picker with nothing chosen.
func NewProfilePickerModel(profiles []profile.Profile) ProfilePickerModel {
	return ProfilePickerModel{
		Profiles: profiles,
		Chosen:   make(map[int]bool),
		Height:   15,
	}
}

func (m ProfilePickerModel) Init() tea.Cmd {
	return nil
}

func (m ProfilePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Profiles)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			m.Chosen[m.Cursor] = !m.Chosen[m.Cursor]
		case "a":
			all := len(m.Selected()) < len(m.Profiles)
			for i := range m.Profiles {
				m.Chosen[i] = all
			}
		case "enter":
			if len(m.Profiles) == 0 {
				return m, tea.Quit
			}
			if len(m.Selected()) == 0 {
				m.Chosen[m.Cursor] = true
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
	}
	return m, nil
}

// Selected returns the chosen profiles in list order.
func (m ProfilePickerModel) Selected() []profile.Profile {
	var out []profile.Profile
	for i, p := range m.Profiles {
		if m.Chosen[i] {
			out = append(out, p)
		}
	}
	return out
}

func (m ProfilePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Profiles"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ estimate  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Profiles))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Profiles[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Chosen[i] {
			mark = "[x]"
		}
		rows = append(rows, []string{cursor + mark, p.Name, profileSummary(p)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Profile", "Contents").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			base := lipgloss.NewStyle()
			switch {
			case idx == m.Cursor:
				return base.Foreground(colorCyan).Bold(true)
			case m.Chosen[idx]:
				return base.Foreground(colorGreen)
			case col == 2:
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d selected / %d]", len(m.Selected()), len(m.Profiles))))

	return b.String()
}

// pickProfiles runs the picker. It returns nil when the user quits.
func pickProfiles(profiles []profile.Profile) ([]profile.Profile, error) {
	final, err := tea.NewProgram(NewProfilePickerModel(profiles)).Run()
	if err != nil {
		return nil, fmt.Errorf("profile picker: %w", err)
	}
	m := final.(ProfilePickerModel)
	if !m.Confirmed {
		return nil, nil
	}
	return m.Selected(), nil
}
