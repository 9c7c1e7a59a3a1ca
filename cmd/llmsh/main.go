package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kir-gadjello/llmsh/internal/assistant"
	"github.com/kir-gadjello/llmsh/internal/config"
	"github.com/kir-gadjello/llmsh/internal/lineeditor"
	"github.com/kir-gadjello/llmsh/internal/logging"
	"github.com/kir-gadjello/llmsh/internal/ptyio"
	"github.com/kir-gadjello/llmsh/internal/shelladapter"
	"github.com/kir-gadjello/llmsh/internal/shellio"
)

const apiVersion = "1"

func main() {
	var debug bool
	var logFile string
	var socketPath string
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "llmsh [shell]",
		Short: "Transparent pty wrapper that gives a shell session AI superpowers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, debug, logFile, socketPath, configPath)
		},
	}
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Also append logs to this file")
	rootCmd.Flags().StringVar(&socketPath, "socket", "", "Assistant daemon Unix socket path (overrides config)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to llmsh config file (overrides ~/.llmsh/config.yaml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Exiting due to: %v\r\n", err)
		os.Exit(1)
	}
}

func run(args []string, debug bool, logFile string, socketFlag string, configFlag string) error {
	cfg, err := config.LoadFrom(configFlag)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	if logFile == "" {
		logFile = cfg.LogFile
	}
	if err := logging.Init(level, logFile); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	socket := socketFlag
	if socket == "" {
		socket = cfg.Socket
	}
	if socket == "" {
		socket = defaultSocketPath()
	}

	var override string
	if len(args) > 0 {
		override = args[0]
	}
	shellInfo := shelladapter.DetectShellInfo(override)
	shellPath := shellInfo.Path
	if _, err := exec.LookPath(shellPath); err != nil {
		if _, statErr := os.Stat(shellPath); statErr != nil {
			return fmt.Errorf("shell %q not found: %w", shellPath, err)
		}
	}

	adapter := shelladapter.Detect(shellPath)
	markers := shelladapter.NewMarkers()
	if cfg.Shell != nil && cfg.Shell.Glyph != "" {
		markers.Glyph = cfg.Shell.Glyph
	}

	orig, err := shelladapter.ProbePromptValues(shellPath, envMap())
	if err != nil {
		logging.Warn("prompt probe failed, using blank originals", "error", err)
	}

	userRC, err := shelladapter.EnsureUserRCFile()
	if err != nil {
		logging.Warn("could not ensure user rc file", "error", err)
	}

	tempRC, err := shelladapter.WriteTempRC(adapter, userRC, orig, markers)
	if err != nil {
		return fmt.Errorf("write temp rc file: %w", err)
	}

	execArgs, extraEnv, cleanupRC := prepareChildInvocation(adapter, tempRC)
	defer cleanupRC()

	childEnv := append(os.Environ(), extraEnv...)

	fmt.Printf("Starting llmsh in %s...\r\n", shellInfo.Name)

	pt, err := ptyio.Start(shellPath, execArgs, childEnv)
	if err != nil {
		return fmt.Errorf("start pty: %w", err)
	}
	defer pt.Close()

	stopWinsize := ptyio.WatchWinsize(pt.Master)
	defer stopWinsize()

	stopSignals := ptyio.ForwardSignals(pt.Master)
	defer stopSignals()

	restore, err := ptyio.RawMode()
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer restore()

	session, err := shellio.NewSession(shellio.Markers{
		Glyph:     markers.Glyph,
		InputEnd:  markers.InputEnd,
		OutputEnd: markers.OutputEnd,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	client := assistant.New(socket)
	if cfg.Timeouts != nil {
		client.LivenessTimeout = cfg.Timeouts.Liveness(client.LivenessTimeout)
		client.SaveContextTimeout = cfg.Timeouts.SaveContext(client.SaveContextTimeout)
		client.GenerateCommandTimeout = cfg.Timeouts.GenerateCommand(client.GenerateCommandTimeout)
		client.ExitTimeout = cfg.Timeouts.Exit(client.ExitTimeout)
	}
	if motd, err := client.Init(currentUser(), apiVersion); err != nil {
		logging.Warn("assistant init failed, continuing without it", "error", err)
	} else {
		if motd != "" {
			fmt.Printf("%s\r\n", motd)
		}
		if err := client.SaveContext(nil, shelladapter.EnvironmentContext(shellInfo)); err != nil {
			logging.Warn("save_context failed for startup environment descriptor", "error", err)
		}
	}
	defer func() {
		if err := client.Exit(); err != nil {
			logging.Warn("assistant exit failed", "error", err)
		}
	}()

	loop := &ptyio.Loop{
		PTY:       pt,
		Session:   session,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Context:   sessionContextSink{client},
		Assistant: &lineeditor.Dialog{Client: client},
		Logger:    logging.Log,
	}

	return loop.Run()
}

// sessionContextSink adapts assistant.Client.SaveContext to
// ptyio.ContextSink.
type sessionContextSink struct {
	client *assistant.Client
}

func (s sessionContextSink) SaveContext(ev shellio.ContextEvent) error {
	return s.client.SaveContext(ev.Kind, ev.Text)
}

// prepareChildInvocation picks the exec args and environment that get
// tempRC sourced as the child's startup rcfile. bash (and any other
// sh-family shell) supports --rcfile directly; zsh has no such flag, so
// the temp file is relocated into a fresh ZDOTDIR-pointed directory as
// .zshrc instead, the standard substitute. Returns a cleanup func that
// removes whatever got left on disk.
func prepareChildInvocation(a shelladapter.Adapter, tempRC string) (execArgs []string, extraEnv []string, cleanup func()) {
	if a.Family() == shelladapter.Zsh {
		dir, err := os.MkdirTemp("", "llmsh-zdotdir-*")
		if err != nil {
			// Fall back to leaving tempRC where it is; zsh won't source it,
			// but the session still starts with the shell's own prompts.
			return nil, nil, func() { os.Remove(tempRC) }
		}
		dest := filepath.Join(dir, ".zshrc")
		if err := os.Rename(tempRC, dest); err != nil {
			os.RemoveAll(dir)
			return nil, nil, func() { os.Remove(tempRC) }
		}
		return []string{"-i"}, []string{"ZDOTDIR=" + dir}, func() { os.RemoveAll(dir) }
	}
	return []string{"--rcfile", tempRC, "-i"}, nil, func() { os.Remove(tempRC) }
}

func defaultSocketPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/llmsh.sock"
	}
	return filepath.Join(home, ".llmsh", "daemon.sock")
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

func envMap() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			out[parts[0]] = parts[1]
		}
	}
	return out
}
