package grammar

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

// TestEBNF verifies that grammar.ebnf is self-consistent: every
// non-terminal it references is itself defined, reachable from Program.
// This doesn't check the grammar against the compiler's actual parsing
// behavior (expr.go and stmt.go are the source of truth for that); it
// catches the much more common documentation bug of a rule renamed on one
// side of an edit and not the other.
func TestEBNF(t *testing.T) {
	f, err := os.Open("grammar.ebnf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := ebnf.Parse("grammar.ebnf", f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(g, "Program"); err != nil {
		t.Fatal(err)
	}
}
