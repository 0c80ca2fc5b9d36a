package lexer

import "testing"

func TestNextTokenBasic(t *testing.T) {
	input := "short x\nSet x to 5 ; trailing comment\n"

	tests := []struct {
		typ TokenType
		lit string
	}{
		{SHORT, "short"},
		{IDENT, "x"},
		{NEWLINE, "\n"},
		{SET, "Set"},
		{IDENT, "x"},
		{TO, "to"},
		{INT, "5"},
		{NEWLINE, "\n"},
		{EOF, ""},
	}

	l := New(input, "test.txt")
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.typ {
			t.Fatalf("test[%d]: expected type %s, got %s (%q)", i, tt.typ, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.lit {
			t.Fatalf("test[%d]: expected literal %q, got %q", i, tt.lit, tok.Literal)
		}
	}
}

func TestCaseInsensitiveKeywords(t *testing.T) {
	l := New("WHILE EndWhile", "")
	if tok := l.NextToken(); tok.Type != WHILE {
		t.Fatalf("expected WHILE, got %s", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != ENDWHILE || tok.Literal != "EndWhile" {
		t.Fatalf("expected ENDWHILE with original casing preserved, got %s %q", tok.Type, tok.Literal)
	}
}

func TestFloatLiteral(t *testing.T) {
	l := New("3.14", "")
	tok := l.NextToken()
	if tok.Type != FLOAT || tok.Literal != "3.14" {
		t.Fatalf("expected FLOAT 3.14, got %s %q", tok.Type, tok.Literal)
	}
}

func TestDotNotGreedyWithFloat(t *testing.T) {
	// "a.b" where b is not numeric must lex as IDENT DOT IDENT, not a float;
	// the analyzer (not the lexer) decides whether this is a member access
	// or a synthesized float literal from two numeric atoms.
	l := New("a.b", "")
	want := []TokenType{IDENT, DOT, IDENT, EOF}
	for _, w := range want {
		if tok := l.NextToken(); tok.Type != w {
			t.Fatalf("expected %s, got %s", w, tok.Type)
		}
	}
}

func TestUnaryMinusIsSeparateToken(t *testing.T) {
	l := New("-5", "")
	if tok := l.NextToken(); tok.Type != MINUS {
		t.Fatalf("expected MINUS, got %s", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != INT || tok.Literal != "5" {
		t.Fatalf("expected INT 5, got %s %q", tok.Type, tok.Literal)
	}
}

func TestArrowOperator(t *testing.T) {
	l := New("Player->GetDistance Rat", "")
	want := []struct {
		typ TokenType
		lit string
	}{
		{IDENT, "Player"},
		{ARROW, "->"},
		{IDENT, "GetDistance"},
		{IDENT, "Rat"},
		{EOF, ""},
	}
	for _, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ || tok.Literal != w.lit {
			t.Fatalf("expected %s %q, got %s %q", w.typ, w.lit, tok.Type, tok.Literal)
		}
	}
}

func TestLineCommentStripped(t *testing.T) {
	l := New("short x ; this is a comment\nlong y\n", "")
	var got []TokenType
	for {
		tok := l.NextToken()
		got = append(got, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	want := []TokenType{SHORT, IDENT, NEWLINE, LONG, IDENT, NEWLINE, EOF}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d]: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestUnterminatedStringReportsError(t *testing.T) {
	l := New(`"unterminated`, "")
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a lex error for unterminated string")
	}
}

func TestParentheses(t *testing.T) {
	l := New("( x )", "")
	want := []TokenType{LPAREN, IDENT, RPAREN, EOF}
	for _, w := range want {
		if tok := l.NextToken(); tok.Type != w {
			t.Fatalf("expected %s, got %s", w, tok.Type)
		}
	}
}

func TestPositionTracking(t *testing.T) {
	l := New("short\nlong x", "f.mw")
	tok := l.NextToken()
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Fatalf("expected 1:1, got %d:%d", tok.Pos.Line, tok.Pos.Column)
	}
}
