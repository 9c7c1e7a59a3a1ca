package lineeditor

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// commandItem adapts a candidate command string to list.Item.
type commandItem string

func (c commandItem) FilterValue() string { return string(c) }
func (c commandItem) Title() string       { return string(c) }
func (c commandItem) Description() string { return "" }

// candidateListModel lets the user pick one of several suggested
// commands, the teacher's "yolo"/single-command flow generalized to the
// multi-candidate case spec.md's generate_command allows for.
type candidateListModel struct {
	list     list.Model
	selected string
	quit     bool
}

func newCandidateListModel(commands []string) candidateListModel {
	items := make([]list.Item, len(commands))
	for i, c := range commands {
		items[i] = commandItem(c)
	}
	l := list.New(items, list.NewDefaultDelegate(), viewerWidth, viewerHeight)
	l.Title = "Suggested commands"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return candidateListModel{list: l}
}

func (m candidateListModel) Init() tea.Cmd { return nil }

func (m candidateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			if it, ok := m.list.SelectedItem().(commandItem); ok {
				m.selected = string(it)
			}
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.quit = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m candidateListModel) View() string {
	return m.list.View()
}

// pickCandidate runs the list picker and returns the chosen command, or
// ok=false if the user backed out without choosing one.
func pickCandidate(commands []string) (command string, ok bool, err error) {
	if len(commands) == 1 {
		return commands[0], true, nil
	}
	final, err := tea.NewProgram(newCandidateListModel(commands)).Run()
	if err != nil {
		return "", false, fmt.Errorf("candidate picker: %w", err)
	}
	cm := final.(candidateListModel)
	if cm.quit || cm.selected == "" {
		return "", false, nil
	}
	return cm.selected, true, nil
}
