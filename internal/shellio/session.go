package shellio

import (
	"bytes"

	"github.com/kir-gadjello/llmsh/internal/stream"
)

// ContextEvent is one classified byte range destined for the assistant
// client's SaveContext call. Kind is nil for "not yet decided" — eager
// streaming of partial output that has not yet reached a prompt boundary.
type ContextEvent struct {
	Kind *OutputEvent
	Text string
}

// ProcessResult is what came out of feeding one pty read into a Session:
// bytes to relay to the real terminal, plus zero or more context
// submissions to make to the assistant client, in order.
type ProcessResult struct {
	Stdout  []byte
	Context []ContextEvent
}

// Session is the per-connection state from spec.md §3: the Output
// Parser, the Input Dispatcher, and the local aggregation buffer that
// lets a CmdInput block's echoed characters ship to the assistant as one
// SaveContext call instead of streaming byte-by-byte.
type Session struct {
	Dispatcher *Dispatcher
	Markers    Markers

	parser *stream.Parser[OutputState, OutputEvent]
	aggBuf []byte
}

// NewSession creates session state for a freshly-forked child shell.
// Markers must be unique to this session (see internal/shelladapter).
func NewSession(m Markers) (*Session, error) {
	p, err := NewOutputParser(m)
	if err != nil {
		return nil, err
	}
	return &Session{
		Dispatcher: NewDispatcher(),
		Markers:    m,
		parser:     p,
	}, nil
}

// ProcessOutput classifies one chunk read from the pty, synchronizing the
// Input Dispatcher on Header/Input/InputAborted events and aggregating
// CmdInput echoes into one block per spec.md §4.3's aggregate-locally
// flag. An error here is always IllegalState (Output Parser and
// Dispatcher desynchronized) and is fatal per spec.md §7.
func (s *Session) ProcessOutput(chunk []byte) (ProcessResult, error) {
	var pr ProcessResult

	for _, r := range s.parser.Parse(chunk) {
		pr.Stdout = append(pr.Stdout, r.Step...)

		switch r.Kind {
		case stream.Echo:
			if AggregateLocally(s.parser.State()) {
				s.aggBuf = append(s.aggBuf, r.Step...)
				continue
			}
			if len(r.Step) > 0 {
				pr.Context = append(pr.Context, ContextEvent{Text: string(r.Step)})
			}

		case stream.StateChange:
			event := r.Event
			switch event {
			case Header:
				if err := s.Dispatcher.Activate(); err != nil {
					return pr, err
				}
				pr.Context = append(pr.Context, ContextEvent{Kind: &event, Text: string(r.Step)})

			case Input, InputAborted:
				// The step holds the input bytes not yet echoed. Leading
				// "\b \b" triplets erase bytes already in aggBuf (the
				// parser's backspace correction for an over-consumed
				// marker prefix).
				agg, step := s.aggBuf, r.Step
				for len(agg) > 0 && bytes.HasPrefix(step, []byte("\b \b")) {
					agg, step = agg[:len(agg)-1], step[3:]
				}
				text := string(agg) + string(step)
				s.aggBuf = s.aggBuf[:0]
				pr.Context = append(pr.Context, ContextEvent{Kind: &event, Text: text})
				s.Dispatcher.ResetToIdle()

			case Output:
				// Earlier output bytes already streamed eagerly as Echo
				// events; the step holds the rest up to the marker, which
				// streams the same way, with no Kind.
				if len(r.Step) > 0 {
					pr.Context = append(pr.Context, ContextEvent{Text: string(r.Step)})
				}
			}
		}
	}

	return pr, nil
}
