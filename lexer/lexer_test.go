package lexer_test

import (
	"testing"

	"github.com/mna/pocketlang/lexer"
	"github.com/mna/pocketlang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := lexer.New(src)
	l.Advance()
	l.Advance()
	var toks []token.Token
	for {
		toks = append(toks, l.Current)
		if l.Current.Type == token.EOF {
			break
		}
		l.Advance()
	}
	return toks
}

func types(toks []token.Token) []token.Type {
	ts := make([]token.Type, len(toks))
	for i, tok := range toks {
		ts[i] = tok.Type
	}
	return ts
}

func TestTwoCharTokens(t *testing.T) {
	toks := scanAll(t, ". .. = == ! != > >= >> < <= << + += - -= * *= / /=")
	require.Equal(t, []token.Type{
		token.DOT, token.DOTDOT, token.EQ, token.EQEQ, token.NOT, token.NOTEQ,
		token.GT, token.GTEQ, token.SRIGHT, token.LT, token.LTEQ, token.SLEFT,
		token.PLUS, token.PLUSEQ, token.MINUS, token.MINUSEQ,
		token.STAR, token.STAREQ, token.SLASH, token.SLASHEQ,
		token.EOF,
	}, types(toks))
}

func TestKeywordsVsName(t *testing.T) {
	toks := scanAll(t, "if elif else while break continue return def native import do end foo")
	require.Equal(t, []token.Type{
		token.IF, token.ELIF, token.ELSE, token.WHILE, token.BREAK, token.CONTINUE,
		token.RETURN, token.DEF, token.NATIVE, token.IMPORT, token.DO, token.END,
		token.NAME, token.EOF,
	}, types(toks))
}

func TestStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb"`)
	require.Len(t, toks, 2)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, "a\nb", toks[0].Str)
}

func TestUnterminatedStringStillReachesEOF(t *testing.T) {
	toks := scanAll(t, `"abc`)
	require.Equal(t, token.ERROR, toks[0].Type)
	require.Equal(t, token.EOF, toks[1].Type)
}

func TestInvalidEscapeReportsAndContinues(t *testing.T) {
	var errs []string
	l := lexer.New(`"a\qb"`)
	l.OnError = func(line int, msg string) { errs = append(errs, msg) }
	l.Advance()
	l.Advance()
	require.Equal(t, token.STRING, l.Current.Type)
	require.Equal(t, "ab", l.Current.Str)
	require.Len(t, errs, 1)
}

func TestNumberLiteral(t *testing.T) {
	toks := scanAll(t, "123.45")
	require.Equal(t, token.NUMBER, toks[0].Type)
	require.InDelta(t, 123.45, toks[0].Num, 1e-9)
}

func TestNewlineIsSignificant(t *testing.T) {
	toks := scanAll(t, "1\n2")
	require.Equal(t, []token.Type{token.NUMBER, token.LINE, token.NUMBER, token.EOF}, types(toks))
}

func TestCommentToEndOfLine(t *testing.T) {
	toks := scanAll(t, "1 # comment\n2")
	require.Equal(t, []token.Type{token.NUMBER, token.LINE, token.NUMBER, token.EOF}, types(toks))
}

func TestEOFIsSticky(t *testing.T) {
	l := lexer.New("")
	l.Advance()
	l.Advance()
	require.Equal(t, token.EOF, l.Current.Type)
	l.Advance()
	require.Equal(t, token.EOF, l.Current.Type)
}
