package errors

import (
	"strings"
	"testing"

	"github.com/mwscript-go/mwsc/internal/lexer"
)

func TestWarningModeIgnoreDropsWarnings(t *testing.T) {
	h := NewHandler(WarningIgnore)
	h.Warning("extra argument ignored", lexer.Position{Line: 1, Column: 1})
	if len(h.Warnings()) != 0 {
		t.Fatalf("expected warnings dropped, got %d", len(h.Warnings()))
	}
	if !h.IsGood() {
		t.Fatalf("expected IsGood true, warnings must not count as errors")
	}
}

func TestWarningModeStrictPromotesToError(t *testing.T) {
	h := NewHandler(WarningStrict)
	h.Warning("precision loss", lexer.Position{Line: 1, Column: 1})
	if len(h.Warnings()) != 0 {
		t.Fatalf("expected no warnings under strict mode, got %d", len(h.Warnings()))
	}
	if len(h.Errors()) != 1 {
		t.Fatalf("expected warning promoted to error, got %d errors", len(h.Errors()))
	}
	if h.IsGood() {
		t.Fatalf("expected IsGood false after promoted warning")
	}
}

func TestWarningModeNormalKeepsWarning(t *testing.T) {
	h := NewHandler(WarningNormal)
	h.Warning("unknown set target", lexer.Position{Line: 2, Column: 3})
	if len(h.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(h.Warnings()))
	}
	if !h.IsGood() {
		t.Fatalf("expected IsGood true, warnings never fail a compile on their own")
	}
}

func TestWarningModeMonotonicity(t *testing.T) {
	pos := lexer.Position{Line: 1, Column: 1}
	counts := map[WarningMode]int{}
	for _, mode := range []WarningMode{WarningIgnore, WarningNormal, WarningStrict} {
		h := NewHandler(mode)
		h.Warning("w1", pos)
		h.Warning("w2", pos)
		counts[mode] = len(h.All())
	}
	if !(counts[WarningIgnore] <= counts[WarningNormal] && counts[WarningNormal] <= counts[WarningStrict]) {
		t.Fatalf("expected monotonic diagnostic counts, got %v", counts)
	}
}

func TestErrorIsNotAffectedByMode(t *testing.T) {
	h := NewHandler(WarningIgnore)
	h.Error("unknown identifier", lexer.Position{Line: 1, Column: 1})
	if h.IsGood() {
		t.Fatalf("expected IsGood false after Error")
	}
}

func TestResetClearsState(t *testing.T) {
	h := NewHandler(WarningNormal)
	h.Error("boom", lexer.Position{Line: 1, Column: 1})
	h.Warning("meh", lexer.Position{Line: 1, Column: 1})
	h.Reset()
	if !h.IsGood() || len(h.All()) != 0 {
		t.Fatalf("expected clean state after Reset")
	}
}

func TestFormatIncludesSourceLineAndCaret(t *testing.T) {
	h := NewHandler(WarningNormal)
	h.SetSource("set x to 1.5\n")
	h.Error("Invalid set target", lexer.Position{Line: 1, Column: 5})
	out := h.FormatAll()
	if out == "" {
		t.Fatalf("expected non-empty formatted output")
	}
	if !strings.Contains(out, "set x to 1.5\n    ^") {
		t.Fatalf("expected the source line followed by a caret under column 5, got %q", out)
	}
}
