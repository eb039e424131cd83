package compiler

import (
	"fmt"
	"strings"

	"github.com/mna/pocketlang/heap"
)

// Disassemble renders every function in s (body first, then each
// function in declaration order) as human-readable text: one line per
// instruction, offset, source line, mnemonic, decoded operand and, for
// constants, globals, functions, attribute names and imports, the value or
// name the operand refers to.
func Disassemble(s *heap.Script) string {
	var b strings.Builder
	disassembleFunction(&b, s, s.Body)
	for _, fn := range s.Functions {
		b.WriteByte('\n')
		disassembleFunction(&b, s, fn)
	}
	return b.String()
}

func disassembleFunction(b *strings.Builder, s *heap.Script, fn *heap.Function) {
	fmt.Fprintf(b, "== %s ==\n", fn.Name())
	if fn.IsNative() || fn.Fn == nil {
		fmt.Fprintf(b, "  <native, arity %d>\n", fn.Arity)
		return
	}

	code := fn.Fn.Code
	for offset := 0; offset < code.Len(); {
		offset = disassembleInstruction(b, s, fn, offset)
	}
}

func disassembleInstruction(b *strings.Builder, s *heap.Script, fn *heap.Function, offset int) int {
	code := fn.Fn.Code
	op := Opcode(code.At(offset))
	line := int(fn.Fn.Lines.At(offset))
	fmt.Fprintf(b, "%04d %4d %-14s", offset, line, op.String())

	width := op.OperandWidth()
	next := offset + 1 + width
	switch width {
	case 0:
		fmt.Fprintln(b)
	case 1:
		arg := int(code.At(offset + 1))
		fmt.Fprintf(b, " %d\n", arg)
	case 2:
		arg := int(code.At(offset+1))<<8 | int(code.At(offset+2))
		fmt.Fprintf(b, " %d%s\n", arg, operandHint(s, op, arg))
	}
	return next
}

// operandHint resolves a 2-byte operand to the source-level thing it
// names, when that can be read back out of the script's tables: the
// literal value for CONSTANT, the jump target is already absolute so no
// extra hint is needed, and the interned name for GET_ATTR/SET_ATTR/
// IMPORT.
func operandHint(s *heap.Script, op Opcode, arg int) string {
	switch op {
	case CONSTANT:
		if arg < s.Literals.Len() {
			return fmt.Sprintf(" ; %s", s.Literals.At(arg).String())
		}
	case GET_GLOBAL, SET_GLOBAL:
		if arg < s.GlobalNames.Len() {
			return fmt.Sprintf(" ; %s", s.GlobalNames.Get(arg).Data)
		}
	case GET_FUNCTION:
		if arg < len(s.Functions) {
			return fmt.Sprintf(" ; %s", s.Functions[arg].Name())
		}
	case GET_ATTR, SET_ATTR, IMPORT:
		if arg < s.Names.Len() {
			return fmt.Sprintf(" ; %s", s.Names.Get(arg).Data)
		}
	}
	return ""
}
