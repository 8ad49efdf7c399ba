package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel asks a yes/no question.
type ConfirmModel struct {
	title     string
	body      string
	confirmed bool
}

// Init initializes the model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch strings.ToLower(key.String()) {
		case "y":
			m.confirmed = true
			return m, tea.Quit
		case "n", "q", "esc", "ctrl+c", "enter":
			m.confirmed = false
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the UI.
func (m ConfirmModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	if m.body != "" {
		b.WriteString(m.body)
		b.WriteString("\n\n")
	}
	b.WriteString(warningStyle.Render("Proceed? (y/N)"))
	b.WriteString("\n")
	return b.String()
}

// Confirm shows body under title and reports whether the operator
// answered yes.
func Confirm(title, body string) (bool, error) {
	final, err := tea.NewProgram(ConfirmModel{title: title, body: body}).Run()
	if err != nil {
		return false, err
	}
	return final.(ConfirmModel).confirmed, nil
}
