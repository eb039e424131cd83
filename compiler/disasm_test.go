package compiler_test

import (
	"strings"
	"testing"

	"github.com/mna/pocketlang/compiler"
	"github.com/stretchr/testify/require"
)

func TestDisassembleShowsBodyAndFunctions(t *testing.T) {
	_, s := compileOK(t, "x = 1\ndef add(a, b) do\nreturn a + b\nend\n")
	out := compiler.Disassemble(s)

	require.Contains(t, out, "== <body> ==")
	require.Contains(t, out, "== add ==")
	require.Contains(t, out, "constant")
	require.Contains(t, out, "set_global")
	require.Contains(t, out, "; x")
	require.Contains(t, out, "get_local")
	require.Contains(t, out, "add")
	require.Contains(t, out, "return")

	// body's instructions come before add's in the output
	require.Less(t, strings.Index(out, "== <body> =="), strings.Index(out, "== add =="))
}

func TestDisassembleNativeFunctionHasNoInstructions(t *testing.T) {
	_, s := compileOK(t, "native sqrt(x)\n")
	out := compiler.Disassemble(s)
	require.Contains(t, out, "== sqrt ==")
	require.Contains(t, out, "<native, arity 1>")
}
