package shelladapter

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// ShellInfo describes the shell llmsh is about to wrap: its resolved
// path and a short display name used in the startup banner.
type ShellInfo struct {
	Name string
	Path string
}

// DetectShellInfo resolves the shell to wrap: an explicit override first
// (e.g. a CLI positional argument), then $SHELL, then the parent
// process's own command name, then an OS-appropriate final fallback.
func DetectShellInfo(override string) ShellInfo {
	shellPath := override
	if shellPath == "" {
		shellPath = os.Getenv("SHELL")
	}
	if shellPath == "" {
		shellPath = detectParentShell()
	}
	if shellPath == "" {
		if runtime.GOOS == "windows" {
			shellPath = "powershell"
		} else {
			shellPath = "/bin/sh"
		}
	}

	name := strings.TrimSuffix(filepath.Base(shellPath), ".exe")
	return ShellInfo{Name: name, Path: shellPath}
}

// detectParentShell asks `ps` for the parent process's command name,
// used only when $SHELL isn't set.
func detectParentShell() string {
	if runtime.GOOS == "windows" {
		return ""
	}
	cmd := exec.Command("ps", "-p", fmt.Sprintf("%d", os.Getppid()), "-o", "comm=")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	name := strings.TrimSpace(string(output))
	if name == "" {
		return ""
	}
	if fullPath, err := exec.LookPath(name); err == nil {
		return fullPath
	}
	return name
}

// EnvironmentContext renders a short startup descriptor (shell, OS,
// user, cwd, time) to seed the assistant's first save_context call, the
// same ambient-context idea as the teacher's getEnvironmentContext but
// addressed to a streaming context sink instead of a one-shot LLM prompt.
func EnvironmentContext(info ShellInfo) string {
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "unknown"
	}

	osDisplay := runtime.GOOS
	switch runtime.GOOS {
	case "darwin":
		osDisplay = "darwin (macOS)"
	}

	return fmt.Sprintf("Shell: %s\nOS: %s\nUser: %s\nDirectory: %s\nTime: %s",
		info.Name, osDisplay, user, cwd, time.Now().Format(time.RFC1123))
}
