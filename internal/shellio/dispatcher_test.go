package shellio

import "testing"

func TestDispatcherIdleForwardsToPTY(t *testing.T) {
	d := NewDispatcher()
	action, err := d.HandleInput([]byte("echo hi"))
	if err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if action.Kind != WritePTY || string(action.Bytes) != "echo hi" {
		t.Errorf("action = %+v", action)
	}
}

func TestDispatcherActivateRequiresIdle(t *testing.T) {
	d := NewDispatcher()
	if err := d.Activate(); err != nil {
		t.Fatalf("Activate from Idle: %v", err)
	}
	if d.Phase() != PhaseUndetermined {
		t.Fatalf("phase = %s, want Undetermined", d.Phase())
	}
	if err := d.Activate(); err == nil {
		t.Fatal("expected IllegalState activating twice")
	} else if se, ok := err.(*SessionError); !ok || se.Kind != IllegalState {
		t.Fatalf("expected IllegalState error, got %v", err)
	}
}

// S6: assistant-mode activation.
func TestScenarioAssistantModeActivation(t *testing.T) {
	d := NewDispatcher()
	if err := d.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	action, err := d.HandleInput([]byte(":"))
	if err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if action.Kind != EnterAssistant {
		t.Fatalf("action.Kind = %v, want EnterAssistant", action.Kind)
	}
	if d.Phase() != PhaseAssistantMode {
		t.Fatalf("phase = %s, want AssistantMode", d.Phase())
	}

	write, err := d.FinishAssistantDialog("ls -la", true)
	if err != nil {
		t.Fatalf("FinishAssistantDialog: %v", err)
	}
	if string(write) != "\rls -la\r" {
		t.Fatalf("write = %q, want %q", write, "\rls -la\r")
	}
	if d.Phase() != PhaseShellPrompt {
		t.Fatalf("phase = %s, want ShellPrompt", d.Phase())
	}
}

func TestDispatcherUndeterminedWithoutColonForwardsAndEntersShellPrompt(t *testing.T) {
	d := NewDispatcher()
	_ = d.Activate()

	action, err := d.HandleInput([]byte("ls"))
	if err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if action.Kind != WritePTY || string(action.Bytes) != "ls" {
		t.Fatalf("action = %+v", action)
	}
	if d.Phase() != PhaseShellPrompt {
		t.Fatalf("phase = %s, want ShellPrompt", d.Phase())
	}
}

func TestDispatcherCancelledAssistantDialogWritesBareCR(t *testing.T) {
	d := NewDispatcher()
	_ = d.Activate()
	if _, err := d.HandleInput([]byte(":")); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	write, err := d.FinishAssistantDialog("", false)
	if err != nil {
		t.Fatalf("FinishAssistantDialog: %v", err)
	}
	if string(write) != "\r" {
		t.Fatalf("write = %q, want %q", write, "\r")
	}
}

func TestDispatcherRejectsInputDuringAssistantMode(t *testing.T) {
	d := NewDispatcher()
	_ = d.Activate()
	if _, err := d.HandleInput([]byte(":")); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if _, err := d.HandleInput([]byte("x")); err == nil {
		t.Fatal("expected IllegalState for HandleInput during AssistantMode")
	}
}

func TestDispatcherResetReturnsToIdle(t *testing.T) {
	d := NewDispatcher()
	_ = d.Activate()
	d.ResetToIdle()
	if d.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want Idle", d.Phase())
	}
	// Idle accepts Activate again, proving the cycle repeats.
	if err := d.Activate(); err != nil {
		t.Fatalf("Activate after reset: %v", err)
	}
}
