package shelladapter

import "testing"

func TestDetectRoutesBashAndZsh(t *testing.T) {
	if Detect("/bin/bash").Family() != Bash {
		t.Error("expected bash")
	}
	if Detect("/usr/bin/zsh").Family() != Zsh {
		t.Error("expected zsh")
	}
	if Detect("/bin/csh").Family() != CSH {
		t.Error("expected csh")
	}
	if Detect("/usr/local/bin/fish").Family() != Bash {
		t.Error("expected unrecognized shells to fall back to the posix adapter")
	}
}

func TestNewMarkersAreUniquePerCall(t *testing.T) {
	a := NewMarkers()
	b := NewMarkers()
	if a.Glyph == b.Glyph || a.InputEnd == b.InputEnd || a.OutputEnd == b.OutputEnd {
		t.Fatal("expected distinct markers across sessions")
	}
}

func TestReplaceOrAppendGlyphReplacesTrailingDollarEscape(t *testing.T) {
	got := replaceOrAppendGlyph(`\u@\h \w \$`, "<glyph>")
	want := `\u@\h \w <glyph>`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReplaceOrAppendGlyphAppendsWhenNoTrailingDollar(t *testing.T) {
	got := replaceOrAppendGlyph("%n@%m %~ %#", "<glyph>")
	want := "%n@%m %~ %#<glyph>"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInjectMarkersWrapsOriginalPrompts(t *testing.T) {
	a := posixAdapter{path: "/bin/bash", name: "bash"}
	m := Markers{Glyph: "<G>", InputEnd: "<I>", OutputEnd: "<O>"}
	lines := a.InjectMarkers(PromptValues{PS0: "orig0", PS1: `$ \$`}, m)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != `export PS0="<I>orig0"` {
		t.Errorf("PS0 line = %q", lines[0])
	}
	if lines[1] != `export PS1="<O>$ <G>"` {
		t.Errorf("PS1 line = %q", lines[1])
	}
}
