package lineeditor

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	markdown "github.com/vlanse/go-term-markdown"
	"golang.org/x/term"

	"github.com/kir-gadjello/llmsh/internal/assistant"
)

var (
	cmdColor = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	keyColor = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimColor = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Dialog drives one assistant-mode round: read a prompt, ask the
// assistant for a command, let the user execute/copy/quit. It implements
// ptyio.AssistantBridge without either package importing the other (the
// interface is structural).
type Dialog struct {
	Client *assistant.Client
}

// RunDialog implements the method ptyio.AssistantBridge expects.
func (d *Dialog) RunDialog() (selectedCommand string, accepted bool, err error) {
	sig, err := ReadLine("assistant> ")
	if err != nil {
		return "", false, err
	}
	switch sig.Kind {
	case SignalCtrlC, SignalCtrlD:
		return "", false, nil
	}

	full, commands, err := awaitGenerateCommand(d.Client, sig.Text)
	if err != nil {
		return "", false, err
	}

	rendered := markdown.Render(full, viewerWidth, 2)
	if err := showResponse(string(rendered)); err != nil {
		return "", false, err
	}

	if len(commands) == 0 {
		return "", false, nil
	}

	command, ok, err := pickCandidate(commands)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	return pickCommand(command)
}

// pickCommand runs the single-key execute/copy/quit picker the teacher's
// interactiveShellMenu implements, minus the revise/describe branches
// that require a live LLM chat loop outside this package's scope.
func pickCommand(command string) (string, bool, error) {
	fmt.Println(cmdColor.Render(command))

	options := []string{"execute", "copy", "quit"}
	parts := make([]string, len(options))
	for i, opt := range options {
		parts[i] = keyColor.Render(opt[:1]) + opt[1:]
	}
	fmt.Printf("%s: ", joinWithDim(parts))

	key, err := readSingleKey()
	if err != nil {
		return "", false, err
	}
	fmt.Print("\r\033[K")

	switch key {
	case 'e', '\r', '\n':
		return command, true, nil
	case 'c':
		if cerr := clipboard.WriteAll(command); cerr != nil {
			fmt.Printf("Error copying to clipboard: %v\n", cerr)
		} else {
			fmt.Println(dimColor.Render("copied the command."))
		}
		return "", false, nil
	default:
		return "", false, nil
	}
}

func joinWithDim(parts []string) string {
	sep := dimColor.Render(" | ")
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

// readSingleKey reads one raw keypress from stdin, restoring terminal
// state before returning.
func readSingleKey() (rune, error) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return 0, err
	}
	defer term.Restore(fd, old)

	buf := make([]byte, 1)
	if _, err := os.Stdin.Read(buf); err != nil {
		return 0, err
	}
	return rune(buf[0]), nil
}
