package stream

import "regexp"

// Order matters: OSC must be tried before the generic C1 pattern, since an
// OSC sequence is itself a C1-introduced sequence and the C1 regexp would
// otherwise truncate it at the first semicolon-adjacent byte.
var (
	oscPattern = regexp.MustCompile(`\x1b\][^\x07]*\x07`)
	csiPattern = regexp.MustCompile(`\x1b[\[?][0-9;]*[A-Za-z]`)
	fePattern  = regexp.MustCompile(`\x1b[FG]`)
	sgrPattern = regexp.MustCompile(`\x1b\[[0-9]+(;[0-9]+)*m`)
	c1Pattern  = regexp.MustCompile(`\x1b[@-_].*?[\x40-\x7e]`)
	belPattern = regexp.MustCompile(`\x07`)

	allowList = map[string]bool{
		"\x1b[D": true, // cursor left
		"\x1b[C": true, // cursor right
	}
)

// Strip removes ANSI control sequences from text before it is exported as
// context to the assistant daemon, preserving a small allow-list of
// sequences that carry no rendering ambiguity in plain text (cursor
// left/right) and deleting everything else that matches.
func Strip(text string) string {
	for _, pattern := range []*regexp.Regexp{oscPattern, sgrPattern, csiPattern, fePattern, c1Pattern} {
		text = pattern.ReplaceAllStringFunc(text, func(seq string) string {
			if allowList[seq] {
				return seq
			}
			return ""
		})
	}
	return belPattern.ReplaceAllString(text, "")
}

// FixNewlines rewrites bare "\n" to "\r\n" so output generated by llmsh
// itself renders correctly while the terminal is in raw mode (where OPOST
// no longer translates newlines for us). Idempotent on already-normalized
// input.
func FixNewlines(text string) string {
	out := make([]byte, 0, len(text)+8)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' && (i == 0 || text[i-1] != '\r') {
			out = append(out, '\r', '\n')
		} else {
			out = append(out, c)
		}
	}
	return string(out)
}
