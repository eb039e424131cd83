package compiler_test

import (
	"testing"

	"github.com/mna/pocketlang/compiler"
	"github.com/mna/pocketlang/heap"
	"github.com/mna/pocketlang/value"
	"github.com/stretchr/testify/require"
)

func compileOK(t *testing.T, src string) (*heap.Heap, *heap.Script) {
	t.Helper()
	h := heap.New()
	var errs []string
	s := compiler.Compile(h, "test", src, func(kind, path string, line int, msg string) {
		errs = append(errs, kind+": "+msg)
	})
	require.Empty(t, errs, "unexpected compile diagnostics")
	require.False(t, s.HasErrors)
	return h, s
}

func op(o compiler.Opcode) byte { return byte(o) }

func TestNumberLiteralStatement(t *testing.T) {
	_, s := compileOK(t, "1\n")
	code := s.Body.Fn.Code.Slice()
	require.Equal(t, []byte{
		op(compiler.CONSTANT), 0, 0,
		op(compiler.POP),
		op(compiler.PUSH_NULL),
		op(compiler.RETURN),
	}, code)
	require.Equal(t, 1, s.Literals.Len())
	require.Equal(t, value.Num(1), s.Literals.At(0))
}

func TestStringLiteralStatement(t *testing.T) {
	h, s := compileOK(t, `"hi"` + "\n")
	code := s.Body.Fn.Code.Slice()
	require.Equal(t, []byte{
		op(compiler.CONSTANT), 0, 0,
		op(compiler.POP),
		op(compiler.PUSH_NULL),
		op(compiler.RETURN),
	}, code)
	str, ok := s.Literals.At(0).AsObj().(*value.String)
	require.True(t, ok)
	require.Equal(t, "hi", str.String()[1:len(str.String())-1]) // strip %q quotes
	_ = h
}

func TestBoolAndNullLiterals(t *testing.T) {
	_, s := compileOK(t, "true\nfalse\nnull\n")
	code := s.Body.Fn.Code.Slice()
	require.Equal(t, []byte{
		op(compiler.CONSTANT), 0, 0, op(compiler.POP), // true
		op(compiler.CONSTANT), 0, 1, op(compiler.POP), // false
		op(compiler.PUSH_NULL), op(compiler.POP), // null: not pooled
		op(compiler.PUSH_NULL), op(compiler.RETURN),
	}, code)
	require.Equal(t, 2, s.Literals.Len())
	require.Equal(t, value.TrueValue, s.Literals.At(0))
	require.Equal(t, value.FalseValue, s.Literals.At(1))
}

func TestGlobalAssignmentDeclares(t *testing.T) {
	_, s := compileOK(t, "x = 1\n")
	code := s.Body.Fn.Code.Slice()
	require.Equal(t, []byte{
		op(compiler.CONSTANT), 0, 0,
		op(compiler.SET_GLOBAL), 0, 0,
		op(compiler.POP),
		op(compiler.PUSH_NULL),
		op(compiler.RETURN),
	}, code)
	require.Equal(t, 0, s.ResolveGlobal("x"))
}

func TestCompoundAssignmentOnGlobal(t *testing.T) {
	_, s := compileOK(t, "x = 1\nx += 2\n")
	code := s.Body.Fn.Code.Slice()
	// second statement: GET_GLOBAL x, CONSTANT 2, ADD, SET_GLOBAL x, POP
	require.Contains(t, string(code), string([]byte{
		op(compiler.GET_GLOBAL), 0, 0,
		op(compiler.CONSTANT), 0, 1,
		op(compiler.ADD),
		op(compiler.SET_GLOBAL), 0, 0,
		op(compiler.POP),
	}))
}

func TestIfJumpTargets(t *testing.T) {
	_, s := compileOK(t, "if true do\n1\nend\n")
	code := s.Body.Fn.Code.Slice()
	require.Equal(t, []byte{
		op(compiler.CONSTANT), 0, 0, // true
		op(compiler.JUMP_IF_NOT), 0, 10,
		op(compiler.CONSTANT), 0, 1, // 1
		op(compiler.POP),
		op(compiler.PUSH_NULL),
		op(compiler.RETURN),
	}, code)
}

func TestIfElseBranch(t *testing.T) {
	_, s := compileOK(t, "if true do\n1\nelse\n2\nend\n")
	code := s.Body.Fn.Code.Slice()
	// CONSTANT(true) JUMP_IF_NOT->else CONSTANT(1) POP JUMP->end CONSTANT(2) POP PUSH_NULL RETURN
	require.Equal(t, byte(compiler.JUMP_IF_NOT), code[3])
	elseTarget := int(code[4])<<8 | int(code[5])
	require.Equal(t, byte(compiler.CONSTANT), code[elseTarget])
	require.Equal(t, byte(compiler.JUMP), code[10])
	endTarget := int(code[11])<<8 | int(code[12])
	require.Equal(t, len(code)-2, endTarget) // the RETURN epilogue starts right after the if
}

func TestWhileLoopBackEdge(t *testing.T) {
	_, s := compileOK(t, "while true do\nbreak\nend\n")
	code := s.Body.Fn.Code.Slice()
	// CONSTANT(true) JUMP_IF_NOT<exit> JUMP<break-target placeholder> JUMP<loop start> ...
	require.Equal(t, op(compiler.CONSTANT), code[0])
	require.Equal(t, op(compiler.JUMP_IF_NOT), code[3])
	require.Equal(t, op(compiler.JUMP), code[6]) // break
	breakTarget := int(code[7])<<8 | int(code[8])
	require.Equal(t, op(compiler.JUMP), code[9]) // back-edge to loop start
	backTarget := int(code[10])<<8 | int(code[11])
	require.Equal(t, 0, backTarget)
	exitTarget := int(code[4])<<8 | int(code[5])
	require.Equal(t, breakTarget, exitTarget)
}

func TestFunctionDeclarationArityAndBody(t *testing.T) {
	_, s := compileOK(t, "def add(a, b) do\nreturn a + b\nend\n")
	require.Equal(t, 1, len(s.Functions))
	fn := s.Functions[0]
	require.Equal(t, "add", fn.Name())
	require.Equal(t, 2, fn.Arity)
	code := fn.Fn.Code.Slice()
	require.Equal(t, []byte{
		op(compiler.GET_LOCAL), 0,
		op(compiler.GET_LOCAL), 1,
		op(compiler.ADD),
		op(compiler.RETURN),
		op(compiler.PUSH_NULL),
		op(compiler.RETURN),
	}, code)
}

func TestLocalDeclaredByBareAssignmentIsReadable(t *testing.T) {
	_, s := compileOK(t, "def f() do\nx = 1\nreturn x\nend\n")
	fn := s.Functions[0]
	code := fn.Fn.Code.Slice()
	require.Equal(t, []byte{
		op(compiler.CONSTANT), 0, 0, // x = 1, no SET_LOCAL/POP: the push is the slot
		op(compiler.GET_LOCAL), 0, // return x
		op(compiler.RETURN),
		op(compiler.PUSH_NULL),
		op(compiler.RETURN),
	}, code)
}

func TestNativeDeclarationHasNoBody(t *testing.T) {
	_, s := compileOK(t, "native sqrt(x)\n")
	require.Equal(t, 1, len(s.Functions))
	fn := s.Functions[0]
	require.Equal(t, 1, fn.Arity)
	require.Nil(t, fn.Fn)
}

func TestArrayAndMapLiteralCounts(t *testing.T) {
	_, s := compileOK(t, "[1, 2, 3]\n{1: 2}\n")
	code := s.Body.Fn.Code.Slice()
	require.Equal(t, op(compiler.MAKE_LIST), code[9])
	count := int(code[10])<<8 | int(code[11])
	require.Equal(t, 3, count)
	require.Equal(t, op(compiler.MAKE_MAP), code[19])
	count = int(code[20])<<8 | int(code[21])
	require.Equal(t, 1, count)
}

func TestSubscriptCompoundAssignmentDuplicatesContainerAndIndex(t *testing.T) {
	_, s := compileOK(t, "a = [0]\na[0] += 1\n")
	code := s.Body.Fn.Code.Slice()
	require.Contains(t, string(code), string([]byte{op(compiler.DUP2)}))
	require.Contains(t, string(code), string([]byte{op(compiler.SET_INDEX), op(compiler.PUSH_NULL)}))
}

func TestAttrCompoundAssignmentDuplicatesReceiver(t *testing.T) {
	_, s := compileOK(t, "a = {}\na.x += 1\n")
	code := s.Body.Fn.Code.Slice()
	require.Contains(t, string(code), string([]byte{op(compiler.DUP)}))
	require.Contains(t, string(code), string([]byte{op(compiler.PUSH_NULL)}))
}

func TestBreakOutsideLoopReportsError(t *testing.T) {
	h := heap.New()
	var errs []string
	s := compiler.Compile(h, "test", "break\n", func(kind, path string, line int, msg string) {
		errs = append(errs, msg)
	})
	require.True(t, s.HasErrors)
	require.Len(t, errs, 1)
}

func TestTooManyLocalsReportsOneError(t *testing.T) {
	var src string
	src += "def f("
	for i := 0; i < compiler.MaxLocals+1; i++ {
		if i > 0 {
			src += ", "
		}
		src += "p" + itoa(i)
	}
	src += ") do\nend\n"

	h := heap.New()
	var errs []string
	s := compiler.Compile(h, "test", src, func(kind, path string, line int, msg string) {
		errs = append(errs, msg)
	})
	require.True(t, s.HasErrors)
	require.Len(t, errs, 1)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
