package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/pocketlang/lexer"
	"github.com/mna/pocketlang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

// TokenizeFiles lexes each file in turn and prints its token stream, one
// token per line, in "line: type" form, or "line: type("literal")" for
// name, number, string and error tokens. A file that fails to read
// is reported and skipped; the remaining files are still processed.
func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	var failed bool
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			failed = true
			continue
		}

		l := lexer.New(string(src))
		l.OnError = func(line int, msg string) {
			fmt.Fprintf(stdio.Stderr, "%s:%d: %s\n", path, line, msg)
		}
		l.Advance()
		l.Advance()
		for {
			tok := l.Current
			fmt.Fprintf(stdio.Stdout, "%d: %s\n", tok.Line, tok.String())
			if tok.Type == token.EOF {
				break
			}
			l.Advance()
		}
	}
	if failed {
		return printError(stdio, fmt.Errorf("tokenize: one or more files could not be read"))
	}
	return nil
}
