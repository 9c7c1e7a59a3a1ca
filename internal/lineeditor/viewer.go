package lineeditor

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const viewerHeight = 20
const viewerWidth = 80

// viewerModel shows the assistant's rendered markdown reply in a
// scrollable pane, mirroring the teacher's streamed-answer viewport —
// the reply here arrives whole rather than token-by-token, but a long
// answer still needs scrolling in a terminal shorter than its content.
type viewerModel struct {
	viewport viewport.Model
	done     bool
}

func newViewerModel(content string) viewerModel {
	vp := viewport.New(viewerWidth, viewerHeight)
	vp.SetContent(content)
	return viewerModel{viewport: vp}
}

func (m viewerModel) Init() tea.Cmd { return nil }

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeyCtrlC:
			m.done = true
			return m, tea.Quit
		case tea.KeyRunes:
			if len(msg.Runes) == 1 && msg.Runes[0] == 'q' {
				m.done = true
				return m, tea.Quit
			}
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m viewerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s\n%s", m.viewport.View(), dimColor.Render("↑/↓ scroll · enter/q continue"))
}

// showResponse pages rendered through a scrollable viewport, blocking
// until the user dismisses it.
func showResponse(rendered string) error {
	_, err := tea.NewProgram(newViewerModel(rendered)).Run()
	if err != nil {
		return fmt.Errorf("response viewer: %w", err)
	}
	return nil
}
