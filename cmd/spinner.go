package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type thinkingDoneMsg struct {
	reply      string
	sessionKey string
	err        error
}

type thinkingSpinnerModel struct {
	spinner spinner.Model
	label   string
	think   tea.Cmd
	result  thinkingDoneMsg
	done    bool
}

func newThinkingSpinnerModel(label string, think tea.Cmd) thinkingSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return thinkingSpinnerModel{
		spinner: s,
		label:   label,
		think:   think,
	}
}

func (m thinkingSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.think)
}

func (m thinkingSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case thinkingDoneMsg:
		m.done = true
		m.result = msg
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m thinkingSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runThinkingSpinner shows a spinner while the turn runs and returns the
// turn's outcome.
func runThinkingSpinner(ctx context.Context, output io.Writer, turn func(context.Context) (string, string, error)) (string, string, error) {
	thinkCmd := func() tea.Msg {
		reply, sessionKey, err := turn(ctx)
		return thinkingDoneMsg{reply: reply, sessionKey: sessionKey, err: err}
	}

	p := tea.NewProgram(
		newThinkingSpinnerModel("Thinking...", thinkCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", "", err
	}

	result, ok := finalModel.(thinkingSpinnerModel)
	if !ok {
		return "", "", fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.result.reply, result.result.sessionKey, result.result.err
}
