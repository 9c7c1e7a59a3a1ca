package shelladapter

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureUserRCFile touches ~/.llmshrc if it doesn't exist yet, per
// spec.md §6's filesystem contract.
func EnsureUserRCFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	path := filepath.Join(home, ".llmshrc")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
	} else if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return path, nil
}

// WriteTempRC builds and writes the temp rcfile spec.md §6 describes:
// `source <shell-rc>`, `source ~/.llmshrc`, then the PS0/PS1 export lines
// that wrap the shell's original prompts with a's markers. The file is
// created mode 0600 and the caller is responsible for removing it when
// the session ends.
func WriteTempRC(a Adapter, userRC string, orig PromptValues, m Markers) (string, error) {
	f, err := os.CreateTemp("", "llmsh-rc-*")
	if err != nil {
		return "", fmt.Errorf("create temp rcfile: %w", err)
	}
	defer f.Close()

	if err := f.Chmod(0o600); err != nil {
		return "", fmt.Errorf("chmod temp rcfile: %w", err)
	}

	lines := []string{
		fmt.Sprintf("[ -f %s ] && source %s", a.RCFile(), a.RCFile()),
		fmt.Sprintf("source %s", userRC),
	}
	lines = append(lines, a.InjectMarkers(orig, m)...)

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return "", fmt.Errorf("write temp rcfile: %w", err)
		}
	}

	return f.Name(), nil
}
