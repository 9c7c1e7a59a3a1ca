package shellio

import "testing"

func testMarkers() Markers {
	return Markers{
		Glyph:     "$>",
		InputEnd:  "\x00IEND\x00",
		OutputEnd: "\x00OEND\x00",
	}
}

// S1: a simple command round-trips through prompt, echoed input, and output.
// The session starts in OutOutput (spec.md §4.3), so the chunk leads with a
// hidden OutputEnd marker the same way the real first prompt does.
func TestSessionScenarioSimpleCommand(t *testing.T) {
	s, err := NewSession(testMarkers())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	chunk := []byte("\x00OEND\x00before$>echo hi\x00IEND\x00hi\n\x00OEND\x00")
	pr, err := s.ProcessOutput(chunk)
	if err != nil {
		t.Fatalf("ProcessOutput: %v", err)
	}
	if string(pr.Stdout) != "before$>echo hihi\n" {
		t.Fatalf("stdout = %q", pr.Stdout)
	}
	if s.Dispatcher.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want Idle", s.Dispatcher.Phase())
	}

	// The pre-glyph "before" text ships with the glyph as the Header
	// block, the post-InputEnd "hi\n" output streams with no Kind, and the
	// CmdInput text "echo hi" ships as one Input-tagged block when
	// InputEnd fires.
	var gotInput bool
	for _, c := range pr.Context {
		if c.Kind != nil && *c.Kind == Input {
			gotInput = true
			if c.Text != "echo hi" {
				t.Fatalf("aggregated input = %q, want %q", c.Text, "echo hi")
			}
		}
	}
	if !gotInput {
		t.Fatal("expected one Input-tagged context block")
	}
}

// S4: an aborted input line (Ctrl-C before Enter) flushes whatever partial
// text had been echoed, tagged InputAborted, and the dispatcher resets.
func TestSessionScenarioAbortedInput(t *testing.T) {
	s, err := NewSession(testMarkers())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	pr, err := s.ProcessOutput([]byte("\x00OEND\x00$>ec^C\x00OEND\x00"))
	if err != nil {
		t.Fatalf("ProcessOutput: %v", err)
	}
	if s.Dispatcher.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want Idle", s.Dispatcher.Phase())
	}
	var gotAborted bool
	for _, c := range pr.Context {
		if c.Kind != nil && *c.Kind == InputAborted {
			gotAborted = true
			if c.Text != "ec^C" {
				t.Fatalf("aborted input = %q, want %q", c.Text, "ec^C")
			}
		}
	}
	if !gotAborted {
		t.Fatal("expected one InputAborted-tagged context block")
	}
}

// Header events synchronize the Input Dispatcher out of Idle.
func TestSessionHeaderActivatesDispatcher(t *testing.T) {
	s, err := NewSession(testMarkers())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, err := s.ProcessOutput([]byte("\x00OEND\x00$>")); err != nil {
		t.Fatalf("ProcessOutput: %v", err)
	}
	if s.Dispatcher.Phase() != PhaseUndetermined {
		t.Fatalf("phase = %s, want Undetermined", s.Dispatcher.Phase())
	}
}

// The session's very first emission is the child shell's own first prompt,
// tagged with a leading OutputEnd marker exactly like every later prompt.
// Starting the Output Parser anywhere other than OutOutput leaves that
// marker with no transition, so its raw bytes would leak into stdout.
func TestSessionFirstPromptHidesLeadingOutputEndMarker(t *testing.T) {
	s, err := NewSession(testMarkers())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	pr, err := s.ProcessOutput([]byte("\x00OEND\x00$>"))
	if err != nil {
		t.Fatalf("ProcessOutput: %v", err)
	}
	if string(pr.Stdout) != "$>" {
		t.Fatalf("stdout = %q, want %q (leading OutputEnd marker must not leak)", pr.Stdout, "$>")
	}
}
