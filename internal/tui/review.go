package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/trackyear/internal/enrich"
	"github.com/handiism/trackyear/internal/model"
	"github.com/handiism/trackyear/internal/review"
)

type reviewState int

const (
	reviewChoosing reviewState = iota
	reviewRetrying
	reviewOverriding
	reviewDone
	reviewError
)

// retryDoneMsg is sent when a retry lookup returns.
type retryDoneMsg struct {
	Result review.Result
	Err    error
}

// ReviewModel walks unresolved records one at a time.
type ReviewModel struct {
	ctx     context.Context
	cancel  context.CancelFunc
	session *review.Session

	state     reviewState
	textInput textinput.Model
	spinner   spinner.Model
	logs      []LogEntry
	err       error

	resolved int
	skipped  int
	quit     bool
}

func newReviewModel(ctx context.Context, session *review.Session) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "1999"
	ti.CharLimit = 4
	ti.Width = 8

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	ctx, cancel := context.WithCancel(ctx)
	m := ReviewModel{
		ctx:       ctx,
		cancel:    cancel,
		session:   session,
		textInput: ti,
		spinner:   sp,
	}
	if _, ok := session.Current(); !ok {
		m.state = reviewDone
	}
	return m
}

// Init initializes the model.
func (m ReviewModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.quit = true
			return m, tea.Quit
		}

		switch m.state {
		case reviewChoosing:
			return m.updateChoosing(msg)
		case reviewOverriding:
			return m.updateOverriding(msg)
		case reviewDone, reviewError:
			if msg.String() == "q" || msg.String() == "enter" || msg.String() == "esc" {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		if m.state == reviewRetrying {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case retryDoneMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, context.Canceled) {
				return m, tea.Quit
			}
			m.state = reviewError
			m.err = msg.Err
			return m, nil
		}
		if msg.Result.Advanced {
			m.resolved++
			m.log(fmt.Sprintf("Found %s", msg.Result.Outcome.Year), enrich.LevelSuccess)
		} else {
			m.log(fmt.Sprintf("Still unresolved: %v", msg.Result.Outcome.Reason), enrich.LevelWarning)
		}
		m.state = reviewChoosing
		m.checkDone()
	}

	if m.state == reviewOverriding {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m ReviewModel) updateChoosing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.state = reviewRetrying
		return m, tea.Batch(m.retry(), m.spinner.Tick)

	case "o":
		m.state = reviewOverriding
		m.textInput.SetValue("")
		return m, m.textInput.Focus()

	case "s":
		return m.apply(review.Decision{Command: review.CommandSkip})

	case "q", "esc":
		m.quit = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ReviewModel) updateOverriding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = reviewChoosing
		m.textInput.Blur()
		return m, nil

	case "enter":
		decision, err := review.Decide(m.textInput.Value())
		if err != nil || decision.Command != review.CommandOverride {
			m.log("Enter a four-digit year", enrich.LevelWarning)
			return m, nil
		}
		m.textInput.Blur()
		m.state = reviewChoosing
		return m.apply(decision)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// apply runs a decision that does not call the oracle.
func (m ReviewModel) apply(decision review.Decision) (tea.Model, tea.Cmd) {
	res, err := m.session.Apply(m.ctx, decision)
	if err != nil {
		m.state = reviewError
		m.err = err
		return m, nil
	}
	switch res.Command {
	case review.CommandSkip:
		m.skipped++
	case review.CommandOverride:
		m.resolved++
		m.log(fmt.Sprintf("Set %s", decision.Year), enrich.LevelSuccess)
	}
	m.checkDone()
	return m, nil
}

func (m ReviewModel) retry() tea.Cmd {
	return func() tea.Msg {
		res, err := m.session.Apply(m.ctx, review.Decision{Command: review.CommandRetry})
		return retryDoneMsg{Result: res, Err: err}
	}
}

func (m *ReviewModel) checkDone() {
	if _, ok := m.session.Current(); !ok {
		m.state = reviewDone
	}
}

func (m *ReviewModel) log(message string, level enrich.ProgressLevel) {
	m.logs = appendLog(m.logs, LogEntry{Message: message, Level: level}, 5)
}

// View renders the UI.
func (m ReviewModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("trackyear review"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Unresolved release years"))
	b.WriteString("\n\n")

	switch m.state {
	case reviewDone:
		b.WriteString(boxStyle.Render(fmt.Sprintf(
			"Review complete\n\nResolved: %d\nSkipped: %d", m.resolved, m.skipped)))
		b.WriteString("\n")
	case reviewError:
		b.WriteString(errorStyle.Render("Error occurred:"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  %s\n", m.err.Error()))
	default:
		b.WriteString(m.viewRecord())
	}

	b.WriteString("\n")
	b.WriteString(renderLogs(m.logs))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m ReviewModel) viewRecord() string {
	rec, ok := m.session.Current()
	if !ok {
		return ""
	}
	pos, total := m.session.Position()

	var b strings.Builder
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Track %d of %d", pos, total)))
	b.WriteString("\n\n")
	b.WriteString(trackStyle.Render(fmt.Sprintf("  ♪ %s - %s", rec.Artist, rec.Title)))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("  Search key:  %s", rec.SearchKey)))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("  Tagged year: %s", taggedYearText(rec.TaggedYear))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + rec.SourceID))
	b.WriteString("\n\n")

	switch m.state {
	case reviewRetrying:
		b.WriteString(m.spinner.View())
		b.WriteString(" Asking again...\n")
	case reviewOverriding:
		b.WriteString("Year: ")
		b.WriteString(m.textInput.View())
		b.WriteString("\n")
	}
	return b.String()
}

func taggedYearText(y model.Year) string {
	if y.Known() {
		return y.String()
	}
	return "none"
}

func (m ReviewModel) helpText() string {
	switch m.state {
	case reviewChoosing:
		return "r: retry lookup • o: enter year • s: skip • q: quit"
	case reviewOverriding:
		return "enter: save • esc: back"
	case reviewRetrying:
		return "ctrl+c: quit"
	}
	return "q: quit"
}

// ReviewSummary reports how a review session ended.
type ReviewSummary struct {
	Resolved int
	Skipped  int

	// Quit is set when the operator left before the end of the queue.
	Quit bool
}

// RunReview runs the review loop over session.
func RunReview(ctx context.Context, session *review.Session) (ReviewSummary, error) {
	p := tea.NewProgram(newReviewModel(ctx, session), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return ReviewSummary{}, err
	}
	m := final.(ReviewModel)
	m.cancel()
	return ReviewSummary{Resolved: m.resolved, Skipped: m.skipped, Quit: m.quit}, m.err
}
