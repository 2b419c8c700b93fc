package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/routepin/internal/app"
	"github.com/sokinpui/routepin/internal/fs"
	"github.com/sokinpui/routepin/internal/ui"
	"github.com/sokinpui/routepin/model"
)

// --- Messages ---
type entryMsg struct {
	entry model.Entry
	done  int
}

type summaryMsg struct {
	model.Summary
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// --- Model ---
type Model struct {
	run     func(context.Context) (model.Summary, error)
	ctx     context.Context
	cancel  context.CancelFunc
	spinner spinner.Model
	state   state
	done    int
	summary model.Summary
	err     error
}

type state int

const (
	stateProcessing state = iota
	stateCancelling
	stateSummary
	stateError
)

// New creates a Model that runs fn when the program starts.
func New(ctx context.Context, fn func(context.Context) (model.Summary, error)) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		run:     fn,
		ctx:     ctx,
		cancel:  cancel,
		spinner: s,
		state:   stateProcessing,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runApp)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Files in flight still finish; wait for the summary.
			m.cancel()
			m.state = stateCancelling
		}
		return m, nil

	case entryMsg:
		m.done = msg.done
		return m, tea.Println(ui.FormatEntry(msg.entry))

	case summaryMsg:
		m.cancel()
		m.state = stateSummary
		m.summary = msg.Summary
		return m, tea.Quit

	case errorMsg:
		m.cancel()
		m.state = stateError
		m.err = msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing || m.state == stateCancelling {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
}

func (m Model) View() string {
	switch m.state {
	case stateProcessing:
		return fmt.Sprintf("%s Processing... %d file(s) done", m.spinner.View(), m.done)
	case stateCancelling:
		return fmt.Sprintf("%s Cancelling, finishing %d file(s)...", m.spinner.View(), m.done)
	case stateError:
		return ui.ErrorStyle.Render("Error: "+m.err.Error()) + "\n"
	case stateSummary:
		return "\n" + ui.RenderSummary(m.summary)
	default:
		return ""
	}
}

func (m Model) runApp() tea.Msg {
	summary, err := m.run(m.ctx)
	if err != nil {
		// The caller prints stack traces once the TUI has released the terminal.
		return errorMsg{err}
	}
	return summaryMsg{Summary: summary}
}

// Run drives a with a spinner and per-file lines, returning the app's result.
func Run(ctx context.Context, a *app.App) (model.Summary, error) {
	m := New(ctx, a.Run)
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	a.SetProgressCallback(func(e model.Entry, done int) {
		e.Path = fs.Rel(e.Path)
		p.Send(entryMsg{entry: e, done: done})
	})

	final, err := p.Run()
	if err != nil {
		return model.Summary{}, fmt.Errorf("error running program: %w", err)
	}
	fm := final.(Model)
	if fm.err != nil {
		return model.Summary{}, fm.err
	}
	return fm.summary, nil
}
