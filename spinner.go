package main

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/gaianet/mcp-smoke/internal/smoke"
)

// checkDoneMsg stops the spinner once the check returns.
type checkDoneMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	label   string
	styles  styles
	done    bool
}

func newSpinnerModel(label string, s styles) spinnerModel {
	return spinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(s.Spinner)),
		label:   label,
		styles:  s,
	}
}

// Init initializes the spinner.
func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case checkDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

// View renders the spinner, and nothing once the check is done so the
// report is not interleaved with it.
func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + m.styles.SpinnerLabel.Render(" Checking "+m.label+"...")
}

// spinnerWaiter returns a [smoke.Waiter] that draws a spinner on w while each
// check runs.
func spinnerWaiter(w io.Writer, s styles, logger *log.Logger) smoke.Waiter {
	return func(label string, fn func() error) error {
		p := tea.NewProgram(
			newSpinnerModel(label, s),
			tea.WithOutput(w),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		)

		errc := make(chan error, 1)
		go func() {
			errc <- fn()
			p.Send(checkDoneMsg{})
		}()

		if _, err := p.Run(); err != nil {
			logger.Debug("spinner stopped", "err", err)
		}
		return <-errc
	}
}
