// Package shellio builds the Output Parser and Input Dispatcher state
// machines on top of internal/stream, and holds the shell session state
// that ties them together with the assistant client.
package shellio

import "github.com/kir-gadjello/llmsh/internal/stream"

// OutputState is the Output Parser's state enum (spec.md §4.3).
type OutputState int

const (
	OutIdle OutputState = iota
	OutCmdInput
	OutOutput
)

func (s OutputState) String() string {
	switch s {
	case OutIdle:
		return "Idle"
	case OutCmdInput:
		return "CmdInput"
	case OutOutput:
		return "Output"
	default:
		return "Unknown"
	}
}

// OutputEvent is the Output Parser's event enum.
type OutputEvent int

const (
	Header OutputEvent = iota
	Input
	InputAborted
	Output
)

func (e OutputEvent) String() string {
	switch e {
	case Header:
		return "Header"
	case Input:
		return "Input"
	case InputAborted:
		return "InputAborted"
	case Output:
		return "Output"
	default:
		return "Unknown"
	}
}

// Markers is the pair of session-unique marker strings the Shell Adapter
// injects into PS0/PS1, plus the visible glyph that opens CmdInput.
type Markers struct {
	// Glyph is the visible shell-prompt-input-start sequence (PS1 suffix).
	Glyph string
	// InputEnd (PS0) signals the user submitted a command.
	InputEnd string
	// OutputEnd (PS1 prefix) signals the shell returned to its prompt,
	// either after output or after an aborted/empty input line.
	OutputEnd string
}

// NewOutputParser builds the Output Parser state machine described in
// spec.md §4.3: Idle --glyph--> CmdInput --InputEnd--> Output,
// CmdInput --OutputEnd--> Idle (aborted), Output --InputEnd--> Output
// (multiple commands per line), Output --OutputEnd--> Idle.
func NewOutputParser(m Markers) (*stream.Parser[OutputState, OutputEvent], error) {
	sm := stream.StateMap[OutputState, OutputEvent]{
		OutIdle: {
			{Cond: stream.Condition{Marker: []byte(m.Glyph), Visible: true}, Next: OutCmdInput, Event: Header},
		},
		OutCmdInput: {
			{Cond: stream.Condition{Marker: []byte(m.InputEnd), Visible: false}, Next: OutOutput, Event: Input},
			{Cond: stream.Condition{Marker: []byte(m.OutputEnd), Visible: false}, Next: OutIdle, Event: InputAborted},
		},
		OutOutput: {
			{Cond: stream.Condition{Marker: []byte(m.InputEnd), Visible: false}, Next: OutOutput, Event: Output},
			{Cond: stream.Condition{Marker: []byte(m.OutputEnd), Visible: false}, Next: OutIdle, Event: Output},
		},
	}
	em := stream.EchoMap[OutputState, OutputEvent]{
		OutIdle:     Output,
		OutCmdInput: Input,
		OutOutput:   Output,
	}

	longest := len(m.Glyph)
	if l := len(m.InputEnd); l > longest {
		longest = l
	}
	if l := len(m.OutputEnd); l > longest {
		longest = l
	}
	// One full marker of slack beyond the longest marker keeps the
	// post-Echo trim from ever cutting a marker that straddles the trim
	// point (see stream.Parser's invariant).
	maxHistory := longest*2 + 64

	// Start in Output: the child shell's very first emission is its first
	// prompt, tagged with OutputEnd before the glyph the same way every
	// later prompt is. Only Output's OutputEnd transition hides that
	// marker and lands in Idle, whose glyph transition then fires Header
	// within the same Parse() call (spec.md §4.3's documented initial
	// state). Starting in Idle instead leaves that first OutputEnd with
	// no transition, so its raw marker bytes fall through as Echo.
	return stream.New[OutputState, OutputEvent](OutOutput, sm, em, maxHistory)
}

// AggregateLocally reports whether Echo bytes observed while in state s
// should be buffered locally until the next StateChange (so a whole
// command's output ships to the assistant as one block) rather than
// streamed eagerly as they arrive.
func AggregateLocally(s OutputState) bool {
	return s == OutCmdInput
}
