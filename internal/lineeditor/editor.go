package lineeditor

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("171")).Bold(true)

// editorModel is a bubbletea Model wrapping a single textarea, the same
// building block the teacher's chatTuiState composes its prompt with.
type editorModel struct {
	prompt   string
	textarea textarea.Model
	signal   Signal
	done     bool
}

func newEditorModel(prompt string) editorModel {
	ta := textarea.New()
	ta.Placeholder = "ask the assistant..."
	ta.Focus()
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	return editorModel{prompt: prompt, textarea: ta}
}

func (m editorModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.signal = Signal{Kind: SignalCtrlC}
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlD:
			m.signal = Signal{Kind: SignalCtrlD}
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			if !msg.Alt {
				m.signal = Signal{Kind: SignalSuccess, Text: m.textarea.Value()}
				m.done = true
				return m, tea.Quit
			}
			// Alt+Enter inserts a literal newline for multi-line prompts.
			// The textarea's own newline binding is plain "enter", so the
			// key is forwarded without its Alt modifier.
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(tea.KeyMsg{Type: tea.KeyEnter})
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m editorModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n", promptStyle.Render(m.prompt), m.textarea.View())
}

// ReadLine runs the synchronous line-editor dialog and returns the
// resulting Signal. It must be called with stdin in its normal
// (non-raw-pty-relay) mode — the Event Loop suspends pty-output relaying
// for the duration per spec.md §4.5.
func ReadLine(prompt string) (Signal, error) {
	m := newEditorModel(prompt)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return Signal{}, fmt.Errorf("line editor: %w", err)
	}
	fm, ok := final.(editorModel)
	if !ok {
		return Signal{}, fmt.Errorf("line editor: unexpected model type %T", final)
	}
	return fm.signal, nil
}
