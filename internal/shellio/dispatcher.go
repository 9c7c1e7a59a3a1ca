package shellio

import "bytes"

// Phase is the Input Dispatcher's state enum (spec.md §4.4). The dead
// "HermitFollowup" state from the original source is deliberately not
// modeled — nothing in this spec ever reaches it.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUndetermined
	PhaseAssistantMode
	PhaseShellPrompt
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseUndetermined:
		return "Undetermined"
	case PhaseAssistantMode:
		return "AssistantMode"
	case PhaseShellPrompt:
		return "ShellPrompt"
	default:
		return "Unknown"
	}
}

// ActionKind tells the Event Loop what to do with a chunk of stdin bytes.
type ActionKind int

const (
	// WritePTY: forward Bytes to the pty unmodified.
	WritePTY ActionKind = iota
	// EnterAssistant: the signalling bytes are consumed (not written
	// anywhere); the Event Loop must now suspend raw stdin reads and run
	// the line editor synchronously.
	EnterAssistant
)

// Action is the Input Dispatcher's verdict for one stdin chunk.
type Action struct {
	Kind  ActionKind
	Bytes []byte
}

// Dispatcher drives one prompt cycle of stdin routing (spec.md §4.4).
type Dispatcher struct {
	phase Phase
}

// NewDispatcher starts a dispatcher in Idle, awaiting the first prompt
// header from the Output Parser.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{phase: PhaseIdle}
}

// Phase reports the dispatcher's current phase.
func (d *Dispatcher) Phase() Phase { return d.phase }

// Activate handles the Output Parser's Header event: the shell just
// printed its prompt and is about to accept input. Calling Activate from
// any phase other than Idle indicates the Output Parser and Dispatcher
// have desynchronized and is fatal (spec.md §7).
func (d *Dispatcher) Activate() error {
	if d.phase != PhaseIdle {
		return NewIllegalState("activate called while in phase %s", d.phase)
	}
	d.phase = PhaseUndetermined
	return nil
}

// ResetToIdle handles the Output Parser's Input or InputAborted events:
// the command line was submitted or aborted, so the next cycle begins
// once the shell re-prompts.
func (d *Dispatcher) ResetToIdle() {
	d.phase = PhaseIdle
}

// HandleInput routes one chunk of raw stdin bytes according to the
// current phase. It must never be called while Phase() is
// PhaseAssistantMode — the Event Loop suspends stdin reads for the
// duration of the assistant dialog instead.
func (d *Dispatcher) HandleInput(chunk []byte) (Action, error) {
	switch d.phase {
	case PhaseIdle, PhaseShellPrompt:
		return Action{Kind: WritePTY, Bytes: chunk}, nil

	case PhaseUndetermined:
		if bytes.IndexByte(chunk, ':') >= 0 {
			d.phase = PhaseAssistantMode
			return Action{Kind: EnterAssistant}, nil
		}
		d.phase = PhaseShellPrompt
		return Action{Kind: WritePTY, Bytes: chunk}, nil

	case PhaseAssistantMode:
		return Action{}, NewIllegalState("HandleInput called while in AssistantMode")

	default:
		return Action{}, NewIllegalState("unknown dispatcher phase %v", d.phase)
	}
}

// FinishAssistantDialog completes the assistant-mode prompt cycle: if
// accepted, selectedCommand is injected into the shell preceded and
// followed by a carriage return (so the pty's line discipline treats it
// as freshly typed input); if cancelled, only the leading carriage return
// is sent, clearing whatever the shell had echoed so far.
func (d *Dispatcher) FinishAssistantDialog(selectedCommand string, accepted bool) ([]byte, error) {
	if d.phase != PhaseAssistantMode {
		return nil, NewIllegalState("FinishAssistantDialog called while in phase %s", d.phase)
	}
	d.phase = PhaseShellPrompt
	if accepted {
		return []byte("\r" + selectedCommand + "\r"), nil
	}
	return []byte("\r"), nil
}
