package stream

import (
	"bytes"
	"testing"
)

type testState int

const (
	stIdle testState = iota
	stCmdInput
	stOutput
)

type testEvent int

const (
	evHeader testEvent = iota
	evInput
	evInputAborted
	evOutput
)

func newTestParser(t *testing.T) *Parser[testState, testEvent] {
	t.Helper()
	glyph := "<glyph>"
	iend := "<IEND>"
	oend := "<OEND>"

	sm := StateMap[testState, testEvent]{
		stIdle: {
			{Cond: Condition{Marker: []byte(glyph), Visible: true}, Next: stCmdInput, Event: evHeader},
		},
		stCmdInput: {
			{Cond: Condition{Marker: []byte(iend), Visible: false}, Next: stOutput, Event: evInput},
			{Cond: Condition{Marker: []byte(oend), Visible: false}, Next: stIdle, Event: evInputAborted},
		},
		stOutput: {
			{Cond: Condition{Marker: []byte(iend), Visible: false}, Next: stOutput, Event: evOutput},
			{Cond: Condition{Marker: []byte(oend), Visible: false}, Next: stIdle, Event: evOutput},
		},
	}
	em := EchoMap[testState, testEvent]{
		stIdle:     evOutput,
		stCmdInput: evInput,
		stOutput:   evOutput,
	}

	p, err := New[testState, testEvent](stOutput, sm, em, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// tests start from Idle so each scenario can open with the visible
	// glyph, skipping the leading OutputEnd marker that the initial Output
	// state expects.
	p.state = stIdle
	return p
}

func collectStateChanges(results []Result[testEvent]) []Result[testEvent] {
	var out []Result[testEvent]
	for _, r := range results {
		if r.Kind == StateChange {
			out = append(out, r)
		}
	}
	return out
}

// S1: simple command.
func TestScenarioSimpleCommand(t *testing.T) {
	p := newTestParser(t)
	results := p.Parse([]byte("<glyph>ls<IEND>file1 file2\r\n<OEND>"))
	changes := collectStateChanges(results)
	if len(changes) != 3 {
		t.Fatalf("expected 3 state changes, got %d (%+v)", len(changes), results)
	}
	if changes[0].Event != evHeader || string(changes[0].Step) != "<glyph>" {
		t.Errorf("change 0 = %+v", changes[0])
	}
	if changes[1].Event != evInput || string(changes[1].Step) != "ls" {
		t.Errorf("change 1 = %+v", changes[1])
	}
	if changes[2].Event != evOutput || string(changes[2].Step) != "file1 file2\r\n" {
		t.Errorf("change 2 = %+v", changes[2])
	}
}

// S2: marker split across chunks must not duplicate bytes.
func TestScenarioMarkerSplitAcrossChunks(t *testing.T) {
	p := newTestParser(t)
	var all []Result[testEvent]
	all = append(all, p.Parse([]byte("<glyph>ls<IEND>par"))...)
	all = append(all, p.Parse([]byte("t_of_out<OEND>"))...)

	changes := collectStateChanges(all)
	if len(changes) != 3 {
		t.Fatalf("expected 3 state changes, got %d (%+v)", len(changes), all)
	}
	// "par" was already echoed by the first chunk, so the Output change
	// carries only the remainder.
	if changes[2].Event != evOutput || string(changes[2].Step) != "t_of_out" {
		t.Errorf("change 2 = %+v", changes[2])
	}
	var emitted []byte
	for _, r := range all {
		emitted = append(emitted, r.Step...)
	}
	if string(emitted) != "<glyph>lspart_of_out" {
		t.Errorf("emitted steps = %q, want %q", emitted, "<glyph>lspart_of_out")
	}
}

// S3: invisible marker straddling an Echo boundary must be retroactively
// hidden with backspace-space-backspace correction, never duplicated.
func TestScenarioMarkerStraddlingEcho(t *testing.T) {
	p := newTestParser(t)
	first := p.Parse([]byte("<glyph>ls<IEN"))
	second := p.Parse([]byte("D>out<OEND>"))

	// the first chunk's Echo (if any) must have included the partial
	// marker bytes as ordinary input echo.
	for _, r := range first {
		if r.Kind == Echo && bytes.Contains(r.Step, []byte("<IEN")) {
			t.Logf("echoed partial marker as expected: %q", r.Step)
		}
	}

	changes := collectStateChanges(second)
	if len(changes) == 0 {
		t.Fatalf("expected a state change after completing the marker, got none: %+v", second)
	}
	input := changes[0]
	if input.Event != evInput {
		t.Fatalf("expected Input event, got %+v", input)
	}
	// "<IEN" (4 bytes) was over-consumed by the first Echo.
	if want := bytes.Repeat([]byte("\b \b"), 4); !bytes.Equal(input.Step, want) {
		t.Fatalf("Input step = %q, want %q", input.Step, want)
	}
}

// S4: aborted input (empty command line).
func TestScenarioAbortedInput(t *testing.T) {
	p := newTestParser(t)
	results := p.Parse([]byte("<glyph><OEND>"))
	changes := collectStateChanges(results)
	if len(changes) != 2 {
		t.Fatalf("expected 2 state changes, got %d (%+v)", len(changes), results)
	}
	if changes[1].Event != evInputAborted || len(changes[1].Step) != 0 {
		t.Errorf("change 1 = %+v", changes[1])
	}
}

// S5: multiple commands on one line produce multiple output blocks.
func TestScenarioMultipleCommands(t *testing.T) {
	p := newTestParser(t)
	results := p.Parse([]byte("<glyph>a;b<IEND>A\r\n<IEND>B\r\n<OEND>"))
	changes := collectStateChanges(results)
	if len(changes) != 4 {
		t.Fatalf("expected 4 state changes, got %d (%+v)", len(changes), results)
	}
	if string(changes[1].Step) != "a;b" {
		t.Errorf("input = %q", changes[1].Step)
	}
	if string(changes[2].Step) != "A\r\n" || changes[2].Event != evOutput {
		t.Errorf("first output = %+v", changes[2])
	}
	if string(changes[3].Step) != "B\r\n" || changes[3].Event != evOutput {
		t.Errorf("second output = %+v", changes[3])
	}
}

// Chunk-independence: the classified event sequence is identical
// regardless of how the same total input is chunked.
func TestChunkIndependence(t *testing.T) {
	full := []byte("<glyph>ls -la<IEND>total 0\r\ndrwxr-xr-x\r\n<OEND>")

	chunkings := [][]int{
		{len(full)},
		{1, 1, 1, len(full) - 3},
		{5, 5, 5, 5, len(full) - 20},
	}

	var reference []testEvent
	for ci, lens := range chunkings {
		p := newTestParser(t)
		var events []testEvent
		pos := 0
		for _, l := range lens {
			if pos+l > len(full) {
				l = len(full) - pos
			}
			for _, r := range p.Parse(full[pos : pos+l]) {
				if r.Kind == StateChange {
					events = append(events, r.Event)
				}
			}
			pos += l
		}
		if ci == 0 {
			reference = events
			continue
		}
		if len(events) != len(reference) {
			t.Fatalf("chunking %d: got %d events, want %d", ci, len(events), len(reference))
		}
		for i := range events {
			if events[i] != reference[i] {
				t.Fatalf("chunking %d: event %d = %v, want %v", ci, i, events[i], reference[i])
			}
		}
	}
}

// Bounded buffer: after any sequence of operations the internal buffer
// stays within max_history_length + the largest single chunk.
func TestBoundedBuffer(t *testing.T) {
	p := newTestParser(t)
	chunk := bytes.Repeat([]byte("x"), 200)
	p.Parse(chunk)
	if p.BufferedLen() > p.maxHistory+len(chunk) {
		t.Fatalf("buffer grew to %d, want <= %d", p.BufferedLen(), p.maxHistory+len(chunk))
	}
}

func TestNewRejectsShortHistory(t *testing.T) {
	sm := StateMap[testState, testEvent]{
		stIdle: {{Cond: Condition{Marker: []byte("abcdefgh"), Visible: true}, Next: stCmdInput, Event: evHeader}},
	}
	_, err := New[testState, testEvent](stIdle, sm, EchoMap[testState, testEvent]{}, 4)
	if err == nil {
		t.Fatal("expected error for max_history_length <= longest marker")
	}
}
