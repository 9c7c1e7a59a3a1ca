// Package stream implements the marker-driven byte state machine that
// underlies llmsh's output classification: a buffer of bytes is fed in
// incrementally and scanned for marker strings that may straddle chunk
// boundaries, emitting classified byte ranges as it goes.
package stream

import (
	"bytes"
	"fmt"
)

// Condition is a transition's firing condition. Only one variant exists
// today — match a literal marker string — but it is kept as its own type
// rather than inlined onto Transition so a second variant can be added
// without reshaping the state map.
type Condition struct {
	Marker  []byte
	Visible bool
}

// Transition describes one edge out of a state: if Cond matches, the
// parser moves to Next and emits Event.
type Transition[S comparable, E any] struct {
	Cond  Condition
	Next  S
	Event E
}

// StateMap declares, for every state, the transitions to try in
// declaration order.
type StateMap[S comparable, E any] map[S][]Transition[S, E]

// EchoMap declares the event tag to attach to bytes that matched no
// transition (plain output) while in a given state.
type EchoMap[S comparable, E any] map[S]E

// Kind discriminates the variants of Result.
type Kind int

const (
	// Done is the zero Kind. Step never returns a Result of this kind: it
	// returns nil once the buffered input is fully scanned.
	Done Kind = iota
	// Echo means no transition matched; Step carries echoed bytes not
	// part of any marker.
	Echo
	// StateChange means a marker matched and the parser moved to a new
	// state; Step carries the visible projection of the consumed range
	// (plus any backspace correction), Aggregated the full consumed
	// range including the marker.
	StateChange
)

// Result is one emission from Step.
type Result[E any] struct {
	Kind       Kind
	Event      E
	Step       []byte
	Aggregated []byte
}

// Parser is a generic marker-driven byte state machine. S is the state
// enum, E the event enum; both are fixed small types per consumer (see
// internal/shellio for the concrete instantiation).
type Parser[S comparable, E any] struct {
	buf          []byte
	parsedLength int
	state        S
	stateMap     StateMap[S, E]
	echoMap      EchoMap[S, E]
	maxHistory   int
}

// New validates the state map and constructs a Parser starting in
// initial. maxHistory must exceed the length of every marker in
// stateMap, per the parser's invariant that a marker can never be
// truncated away by the post-Echo buffer trim.
func New[S comparable, E any](initial S, stateMap StateMap[S, E], echoMap EchoMap[S, E], maxHistory int) (*Parser[S, E], error) {
	longest := 0
	for _, transitions := range stateMap {
		for _, t := range transitions {
			if len(t.Cond.Marker) == 0 {
				return nil, fmt.Errorf("stream: empty marker in transition to %v", t.Next)
			}
			if len(t.Cond.Marker) > longest {
				longest = len(t.Cond.Marker)
			}
		}
	}
	if maxHistory <= longest {
		return nil, fmt.Errorf("stream: max_history_length (%d) must exceed longest marker (%d)", maxHistory, longest)
	}
	return &Parser[S, E]{
		buf:        make([]byte, 0, 4096),
		state:      initial,
		stateMap:   stateMap,
		echoMap:    echoMap,
		maxHistory: maxHistory,
	}, nil
}

// State reports the parser's current state.
func (p *Parser[S, E]) State() S { return p.state }

// Buffer appends bytes to the internal buffer. No emission happens until
// Step is called.
func (p *Parser[S, E]) Buffer(input []byte) {
	p.buf = append(p.buf, input...)
}

// Step produces the next classified emission, or nil once the buffered
// input is fully scanned.
func (p *Parser[S, E]) Step() *Result[E] {
	if len(p.buf) == p.parsedLength {
		return nil
	}

	type match struct {
		index int
		t     Transition[S, E]
	}
	var best *match

	for _, t := range p.stateMap[p.state] {
		markerLen := len(t.Cond.Marker)
		start := p.parsedLength - markerLen
		if start < 0 {
			start = 0
		}
		idx := bytes.Index(p.buf[start:], t.Cond.Marker)
		if idx < 0 {
			continue
		}
		absolute := start + idx
		if best == nil || absolute < best.index {
			best = &match{index: absolute, t: t}
		}
	}

	if best != nil {
		markerLen := len(best.t.Cond.Marker)
		matchEnd := best.index + markerLen
		visibleEnd := matchEnd
		if !best.t.Cond.Visible {
			visibleEnd = best.index
		}

		var step []byte
		if p.parsedLength < visibleEnd {
			step = append([]byte(nil), p.buf[p.parsedLength:visibleEnd]...)
		} else {
			// The prior Echo already emitted bytes that now turn out to
			// have been the start of an invisible marker. Undo them
			// visually on the user's terminal: erase-left-and-overwrite
			// for each over-consumed byte.
			overconsumed := p.parsedLength - visibleEnd
			step = make([]byte, 0, overconsumed*3)
			for i := 0; i < overconsumed; i++ {
				step = append(step, '\b', ' ', '\b')
			}
		}

		aggregated := append([]byte(nil), p.buf[:matchEnd]...)

		p.buf = append([]byte(nil), p.buf[matchEnd:]...)
		p.parsedLength = 0
		p.state = best.t.Next

		return &Result[E]{
			Kind:       StateChange,
			Event:      best.t.Event,
			Step:       step,
			Aggregated: aggregated,
		}
	}

	prevLen := p.parsedLength
	p.parsedLength = len(p.buf)
	echoed := append([]byte(nil), p.buf[prevLen:p.parsedLength]...)

	if len(p.buf) > p.maxHistory {
		p.buf = append([]byte(nil), p.buf[len(p.buf)-p.maxHistory:]...)
		p.parsedLength = len(p.buf)
	}

	return &Result[E]{
		Kind:  Echo,
		Event: p.echoMap[p.state],
		Step:  echoed,
	}
}

// Parse buffers input and repeatedly steps until drained, returning every
// emission in order. A convenience wrapper around Buffer+Step for callers
// that do not need to interleave steps with arriving chunks.
func (p *Parser[S, E]) Parse(input []byte) []Result[E] {
	p.Buffer(input)
	var results []Result[E]
	for {
		r := p.Step()
		if r == nil {
			return results
		}
		results = append(results, *r)
	}
}

// BufferedLen reports the size of the not-yet-classified buffer, for
// callers asserting the bounded-buffer invariant in tests.
func (p *Parser[S, E]) BufferedLen() int { return len(p.buf) }
