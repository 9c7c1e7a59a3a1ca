package ptyio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"syscall"

	"github.com/kir-gadjello/llmsh/internal/shellio"
)

// ContextSink receives classified output blocks destined for the
// assistant client's save_context call.
type ContextSink interface {
	SaveContext(ev shellio.ContextEvent) error
}

// AssistantBridge runs the synchronous line-editor dialog that replaces
// raw stdin forwarding while the Input Dispatcher is in AssistantMode.
// It returns the command the user picked (if any) and whether it was
// accepted, matching shellio.Dispatcher.FinishAssistantDialog's contract.
type AssistantBridge interface {
	RunDialog() (selectedCommand string, accepted bool, err error)
}

// Loop is the single-threaded(-per-direction) event loop described in
// spec.md §4.7: one goroutine relays pty output to stdout and the
// assistant client, the other relays stdin to the pty, diverting into
// the assistant dialog on EnterAssistant actions.
type Loop struct {
	PTY       *PTY
	Session   *shellio.Session
	Stdin     io.Reader
	Stdout    io.Writer
	Context   ContextSink
	Assistant AssistantBridge
	Logger    *slog.Logger
}

// Run blocks until the child shell exits or an unrecoverable error
// occurs in either direction, whichever happens first.
func (l *Loop) Run() error {
	errCh := make(chan error, 2)
	go l.pumpOutput(errCh)
	go l.pumpInput(errCh)
	return <-errCh
}

func (l *Loop) pumpOutput(errCh chan<- error) {
	buf := make([]byte, 4096)
	for {
		n, err := l.PTY.Master.Read(buf)
		if n > 0 {
			pr, perr := l.Session.ProcessOutput(buf[:n])
			if len(pr.Stdout) > 0 {
				if _, werr := l.Stdout.Write(pr.Stdout); werr != nil {
					errCh <- fmt.Errorf("write stdout: %w", werr)
					return
				}
			}
			for _, ctxEv := range pr.Context {
				if serr := l.Context.SaveContext(ctxEv); serr != nil && l.Logger != nil {
					l.Logger.Warn("save_context failed", "error", serr)
				}
			}
			if perr != nil {
				errCh <- fmt.Errorf("output parser desynchronized: %w", perr)
				return
			}
		}
		if err != nil {
			// EIO/EOF on the pty master means the child's slave side
			// closed — the child has exited.
			if errors.Is(err, io.EOF) || errors.Is(err, syscall.EIO) {
				errCh <- nil
				return
			}
			errCh <- fmt.Errorf("read pty: %w", err)
			return
		}
	}
}

func (l *Loop) pumpInput(errCh chan<- error) {
	buf := make([]byte, 1024)
	for {
		n, err := l.Stdin.Read(buf)
		if n > 0 {
			if perr := l.handleInputChunk(buf[:n]); perr != nil {
				errCh <- perr
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				errCh <- nil
				return
			}
			errCh <- fmt.Errorf("read stdin: %w", err)
			return
		}
	}
}

func (l *Loop) handleInputChunk(chunk []byte) error {
	action, err := l.Session.Dispatcher.HandleInput(chunk)
	if err != nil {
		return fmt.Errorf("input dispatcher: %w", err)
	}

	switch action.Kind {
	case shellio.WritePTY:
		if _, werr := l.PTY.Master.Write(action.Bytes); werr != nil {
			return fmt.Errorf("write pty: %w", werr)
		}
		return nil

	case shellio.EnterAssistant:
		selected, accepted, derr := l.Assistant.RunDialog()
		if derr != nil && l.Logger != nil {
			l.Logger.Warn("assistant dialog failed", "error", derr)
		}
		out, ferr := l.Session.Dispatcher.FinishAssistantDialog(selected, accepted && derr == nil)
		if ferr != nil {
			return fmt.Errorf("finish assistant dialog: %w", ferr)
		}
		if _, werr := l.PTY.Master.Write(out); werr != nil {
			return fmt.Errorf("write pty: %w", werr)
		}
		return nil

	default:
		return fmt.Errorf("unknown dispatcher action kind %v", action.Kind)
	}
}
