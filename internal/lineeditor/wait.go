package lineeditor

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kir-gadjello/llmsh/internal/assistant"
)

// generateResultMsg carries the outcome of the background
// GenerateCommand call back into the spinner program's Update loop.
type generateResultMsg struct {
	full     string
	commands []string
	err      error
}

// waitModel shows a spinner while a GenerateCommand call runs in the
// background, the same "don't just block with a blank screen" shape the
// teacher's chat TUI uses while streaming a response.
type waitModel struct {
	spinner spinner.Model
	client  *assistant.Client
	prompt  string
	result  generateResultMsg
	done    bool
}

func newWaitModel(client *assistant.Client, prompt string) waitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = dimColor
	return waitModel{spinner: s, client: client, prompt: prompt}
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, generateCmd(m.client, m.prompt))
}

func generateCmd(client *assistant.Client, prompt string) tea.Cmd {
	return func() tea.Msg {
		full, commands, err := client.GenerateCommand(prompt)
		return generateResultMsg{full: full, commands: commands, err: err}
	}
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case generateResultMsg:
		m.result = msg
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m waitModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s asking the assistant...\n", m.spinner.View())
}

// awaitGenerateCommand runs the spinner program and returns the
// assistant's reply once the background call finishes.
func awaitGenerateCommand(client *assistant.Client, prompt string) (string, []string, error) {
	final, err := tea.NewProgram(newWaitModel(client, prompt)).Run()
	if err != nil {
		return "", nil, fmt.Errorf("wait spinner: %w", err)
	}
	wm := final.(waitModel)
	return wm.result.full, wm.result.commands, wm.result.err
}
