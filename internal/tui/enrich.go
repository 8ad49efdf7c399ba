package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/trackyear/internal/enrich"
)

// Message types
type (
	// ProgressMsg is sent when the runner reports progress.
	ProgressMsg struct {
		Event enrich.ProgressEvent
	}

	// EnrichDoneMsg is sent when the run returns.
	EnrichDoneMsg struct {
		Summary enrich.Summary
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// runTask owns one enrichment run. The program starts it; RunEnrich stops
// it once the program has exited, whichever way that happened.
type runTask struct {
	ctx    context.Context
	cancel context.CancelFunc
	run    func(context.Context) (enrich.Summary, error)
	done   chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool

	summary enrich.Summary
	err     error
}

func newRunTask(ctx context.Context, run func(context.Context) (enrich.Summary, error)) *runTask {
	ctx, cancel := context.WithCancel(ctx)
	return &runTask{ctx: ctx, cancel: cancel, run: run, done: make(chan struct{})}
}

// start runs the task and reports its result. It does nothing once stop
// has been called.
func (t *runTask) start() tea.Msg {
	t.mu.Lock()
	if t.started || t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.started = true
	t.mu.Unlock()

	defer close(t.done)
	t.summary, t.err = t.run(t.ctx)
	return EnrichDoneMsg{Summary: t.summary, Err: t.err}
}

// stop cancels the task and waits for a started run to return.
func (t *runTask) stop() {
	t.cancel()
	t.mu.Lock()
	t.stopped = true
	started := t.started
	t.mu.Unlock()
	if started {
		<-t.done
	}
}

// EnrichModel shows a running enrichment.
type EnrichModel struct {
	task    *runTask
	runner  *enrich.Runner
	verbose bool

	spinner  spinner.Model
	progress progress.Model
	logs     []LogEntry

	done      bool
	completed int
	total     int
	summary   enrich.Summary
	err       error
}

func newEnrichModel(task *runTask, runner *enrich.Runner, verbose bool) EnrichModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return EnrichModel{
		task:     task,
		runner:   runner,
		verbose:  verbose,
		spinner:  sp,
		progress: prog,
	}
}

// Init starts the run.
func (m EnrichModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.task.start, m.tickProgress())
}

func (m EnrichModel) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m EnrichModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.done {
				return m, tea.Quit
			}
			m.task.cancel()
		case "q", "enter":
			if m.done {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Level == enrich.LevelVerbose && !m.verbose {
			return m, nil
		}
		m.logs = appendLog(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level}, 10)

	case EnrichDoneMsg:
		m.done = true
		m.summary = msg.Summary
		m.err = msg.Err
		m.completed, m.total = m.runner.GetProgress()

	case TickMsg:
		if !m.done {
			m.completed, m.total = m.runner.GetProgress()
			var percent float64
			if m.total > 0 {
				percent = float64(m.completed) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m EnrichModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("trackyear"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Release year enrichment"))
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(m.viewError())
	case m.done:
		b.WriteString(m.viewComplete())
	case m.runner.State() == enrich.StateRunning:
		b.WriteString(m.viewRunning())
	default:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Reading catalog and tags..."))
		b.WriteString("\n\n")
	}

	b.WriteString(renderLogs(m.logs))
	b.WriteString("\n")
	if m.done {
		b.WriteString(dimStyle.Render("q: quit"))
	} else {
		b.WriteString(dimStyle.Render("esc: stop (resume later with the same command)"))
	}
	return b.String()
}

func (m EnrichModel) viewRunning() string {
	var b strings.Builder

	var percent float64
	if m.total > 0 {
		percent = float64(m.completed) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d/%d", m.completed, m.total)))
	b.WriteString("\n\n")
	return b.String()
}

func (m EnrichModel) viewComplete() string {
	s := m.summary
	return boxStyle.Render(fmt.Sprintf(
		"Enrichment complete\n\n"+
			"Tracks: %d\n"+
			"Already done: %d\n"+
			"Resolved: %d\n"+
			"Unresolved: %d",
		s.Total, s.Skipped, s.Resolved, s.Unresolved,
	)) + "\n"
}

func (m EnrichModel) viewError() string {
	var b strings.Builder
	if errors.Is(m.err, context.Canceled) {
		b.WriteString(warningStyle.Render(fmt.Sprintf("Stopped after %d/%d tracks. Run again to resume.", m.completed, m.total)))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  %s\n", m.err.Error()))
	return b.String()
}

// eventSink forwards runner events to a running program.
type eventSink struct {
	program *tea.Program
}

func (s *eventSink) send(event enrich.ProgressEvent) {
	if s.program != nil {
		s.program.Send(ProgressMsg{Event: event})
	}
}

// RunEnrich runs the runner built by build under a progress view. build
// receives the callback the runner must report progress through.
func RunEnrich(ctx context.Context, build func(onProgress func(enrich.ProgressEvent)) *enrich.Runner, candidates enrich.Candidates, verbose bool) (enrich.Summary, error) {
	sink := &eventSink{}
	runner := build(sink.send)

	task := newRunTask(ctx, func(ctx context.Context) (enrich.Summary, error) {
		return runner.Run(ctx, candidates)
	})
	p := tea.NewProgram(newEnrichModel(task, runner, verbose), tea.WithContext(ctx))
	sink.program = p

	final, err := p.Run()
	return finish(task, final, err)
}

// finish stops task and turns the program outcome into the run result. A
// program killed through its context reads as a cancelled run.
func finish(task *runTask, final tea.Model, runErr error) (enrich.Summary, error) {
	task.stop()
	if runErr != nil {
		if errors.Is(runErr, tea.ErrProgramKilled) {
			return task.summary, context.Canceled
		}
		return task.summary, runErr
	}
	m, ok := final.(EnrichModel)
	if !ok || !m.done {
		return task.summary, context.Canceled
	}
	return m.summary, m.err
}
