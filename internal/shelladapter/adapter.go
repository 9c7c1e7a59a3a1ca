// Package shelladapter produces the per-shell pieces the wrapper needs to
// start a child shell with prompt markers wired in: the shell's rcfile
// path, its exec arguments, and the marker-bearing PS0/PS1 it writes into
// a temp rc file.
package shelladapter

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Markers mirrors shellio.Markers without importing it, so this package
// has no dependency on the parser — cmd/llmsh wires the two together.
type Markers struct {
	Glyph     string
	InputEnd  string
	OutputEnd string
}

// NewMarkers generates a fresh session-unique marker set. Markers are
// wrapped in a control-byte (SOH) delimiter so they can never collide
// with ordinary shell output, matching the teacher's use of
// unpredictable separators for OSC-style session tracking. NUL is
// avoided deliberately: it cannot survive as part of an exported PS0/PS1
// value (bash environment strings are NUL-terminated), unlike SOH.
func NewMarkers() Markers {
	id := uuid.New().String()
	return Markers{
		Glyph:     fmt.Sprintf("\x01LLMSH-PROMPT-%s\x01", id),
		InputEnd:  fmt.Sprintf("\x01LLMSH-INPUT-END-%s\x01", id),
		OutputEnd: fmt.Sprintf("\x01LLMSH-OUTPUT-END-%s\x01", id),
	}
}

// Family identifies a supported shell.
type Family int

const (
	Bash Family = iota
	Zsh
	CSH
	Unknown
)

// Adapter produces the exec path, rcfile location, and rc injection
// content for one shell family.
type Adapter interface {
	Family() Family
	ExecPath() string
	RCFile() string
	// InjectMarkers returns the lines to append to a temp rcfile that
	// wrap the shell's existing PS0/PS1 with the given markers.
	InjectMarkers(orig PromptValues, m Markers) []string
}

// PromptValues holds a shell's existing PS0/PS1, obtained from the
// environment or probed per spec.md §4.9.
type PromptValues struct {
	PS0 string
	PS1 string
}

// Detect picks an Adapter for shellPath, falling back to the bash/zsh
// adapter for any unrecognized shell family (spec.md §4.9: "currently a
// single bash/zsh-style adapter covers both").
func Detect(shellPath string) Adapter {
	name := strings.TrimSuffix(filepath.Base(shellPath), ".exe")
	switch name {
	case "csh", "tcsh":
		return cshAdapter{path: shellPath}
	default:
		return posixAdapter{path: shellPath, name: name}
	}
}

// posixAdapter covers bash and zsh (and falls back to bash conventions
// for any other POSIX-ish shell), matching spec.md §4.9's "one adapter
// covers both".
type posixAdapter struct {
	path string
	name string
}

func (a posixAdapter) Family() Family {
	if a.name == "zsh" {
		return Zsh
	}
	return Bash
}

func (a posixAdapter) ExecPath() string { return a.path }

func (a posixAdapter) RCFile() string {
	return fmt.Sprintf("~/.%src", a.name)
}

func (a posixAdapter) InjectMarkers(orig PromptValues, m Markers) []string {
	ps1 := replaceOrAppendGlyph(orig.PS1, m.Glyph)
	return []string{
		fmt.Sprintf("export PS0=%s", shellQuote(m.InputEnd+orig.PS0)),
		fmt.Sprintf("export PS1=%s", shellQuote(m.OutputEnd+ps1)),
	}
}

// cshAdapter is a stub: spec.md §4.9 scopes csh as unimplemented
// (`original_source/llmsh/src/shell.rs`'s `Shell::CSH => todo!()`), kept
// here only so Detect has somewhere to route csh/tcsh without silently
// mis-adapting them as POSIX shells.
type cshAdapter struct {
	path string
}

func (a cshAdapter) Family() Family   { return CSH }
func (a cshAdapter) ExecPath() string { return a.path }
func (a cshAdapter) RCFile() string   { return "~/.cshrc" }
func (a cshAdapter) InjectMarkers(PromptValues, Markers) []string {
	panic("shelladapter: csh marker injection is not implemented")
}

// replaceOrAppendGlyph implements spec.md §4.9's trailing-`\$`
// substitution: if the existing PS1 ends in the literal two bytes `\$`,
// that suffix is replaced by the visible glyph; otherwise the glyph is
// appended.
func replaceOrAppendGlyph(ps1, glyph string) string {
	if strings.HasSuffix(ps1, `\$`) {
		return strings.TrimSuffix(ps1, `\$`) + glyph
	}
	return ps1 + glyph
}

// shellQuote wraps a value in double quotes for an `export NAME=value`
// line. Only the double-quote character itself needs escaping here:
// under bash/zsh double-quote rules, backslash keeps its literal meaning
// unless it precedes $, `, ", \, or a newline, so an original PS1's own
// prompt escapes (`\u`, `\h`, `\$`, live `$(...)` substitutions) survive
// untouched, exactly reproducing how the shell displayed it before.
func shellQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// ProbePromptValues reads PS0/PS1 from the environment if set there, else
// falls back to asking the shell itself via `-ic 'printf "%s" "$PSn"'`,
// per spec.md §4.9.
func ProbePromptValues(shellPath string, env map[string]string) (PromptValues, error) {
	pv := PromptValues{PS0: env["PS0"], PS1: env["PS1"]}
	if pv.PS0 == "" {
		val, err := probeVar(shellPath, "PS0")
		if err != nil {
			return PromptValues{}, err
		}
		pv.PS0 = val
	}
	if pv.PS1 == "" {
		val, err := probeVar(shellPath, "PS1")
		if err != nil {
			return PromptValues{}, err
		}
		pv.PS1 = val
	}
	return pv, nil
}

func probeVar(shellPath, name string) (string, error) {
	cmd := exec.Command(shellPath, "-ic", fmt.Sprintf(`printf "%%s" "$%s"`, name))
	out, err := cmd.Output()
	if err != nil {
		// An interactive probe shell can exit non-zero for unrelated
		// reasons (no tty); treat as "no original value" rather than
		// fatal, since spec.md only requires a best-effort probe.
		return "", nil
	}
	return string(out), nil
}
