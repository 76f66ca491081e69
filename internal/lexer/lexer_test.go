package lexer

import "testing"

func TestNextBasicTokens(t *testing.T) {
	l := New("v_bonus := calculate_bonus(p_salary);")
	var got []string
	for {
		tok := l.Next()
		if tok.Kind == EOF {
			break
		}
		got = append(got, tok.Text)
	}
	want := []string{"v_bonus", ":=", "calculate_bonus", "(", "p_salary", ")", ";"}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d tokens %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLexStringWithEscapedQuote(t *testing.T) {
	l := New(`'it''s fine'`)
	tok := l.Next()
	if tok.Kind != String {
		t.Fatalf("got kind %v, want String", tok.Kind)
	}
	if tok.Text != "it's fine" {
		t.Errorf("got %q, want %q", tok.Text, "it's fine")
	}
}

func TestKeywordVsIdent(t *testing.T) {
	l := New("BEGIN foo END")
	toks := []Token{l.Next(), l.Next(), l.Next()}
	if toks[0].Kind != Keyword {
		t.Errorf("BEGIN should lex as Keyword")
	}
	if toks[1].Kind != Ident {
		t.Errorf("foo should lex as Ident")
	}
	if toks[2].Kind != Keyword {
		t.Errorf("END should lex as Keyword")
	}
}

func TestSkipsCommentsAndTrivia(t *testing.T) {
	l := New("-- a comment\n/* block */ v1")
	tok := l.Next()
	if tok.Text != "v1" {
		t.Errorf("got %q, want v1", tok.Text)
	}
}

func TestTwoCharPuncts(t *testing.T) {
	l := New(":= <> <= >= || .. =>")
	var got []string
	for {
		tok := l.Next()
		if tok.Kind == EOF {
			break
		}
		got = append(got, tok.Text)
	}
	want := []string{":=", "<>", "<=", ">=", "||", "..", "=>"}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("token %d: got %q, want %q", i, got[i], w)
		}
	}
}

func TestLineCol(t *testing.T) {
	src := "line1\nline2\nline3"
	line, col := LineCol(src, 7) // 'i' in "line2"
	if line != 2 || col != 2 {
		t.Errorf("got line=%d col=%d, want line=2 col=2", line, col)
	}
}
