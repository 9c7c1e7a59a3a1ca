// Package lineeditor implements the Line Editor collaborator contract
// (spec.md §4.5): a synchronous read_line used while the Input Dispatcher
// is in AssistantMode, plus the candidate-command dialog that drives the
// Assistant Client and hands a chosen command back to the dispatcher.
package lineeditor

// SignalKind discriminates how read_line ended.
type SignalKind int

const (
	// SignalSuccess: the user submitted text (Enter).
	SignalSuccess SignalKind = iota
	// SignalCtrlC: the user cancelled.
	SignalCtrlC
	// SignalCtrlD: the user ended the dialog (EOF-style exit).
	SignalCtrlD
)

// Signal is read_line's return value: spec.md §4.5's
// Signal ∈ {Success(String), CtrlC, CtrlD}.
type Signal struct {
	Kind SignalKind
	Text string
}
