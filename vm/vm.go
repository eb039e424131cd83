// Package vm defines the narrow surface the compiler and object heap need
// from their external collaborators, and the glue that drives a source
// path through loading and compilation.
//
// The dispatch loop that would execute a compiled script's bytecode, the
// host embedding API (boxing/unboxing helpers for handing values across
// the C-like ABI boundary), and the concrete source loader and error
// reporter are all out of scope: this package declares the interfaces a
// host must satisfy and wires them together only as far as producing a
// compiled *heap.Script, never running one.
package vm

import (
	"fmt"

	"github.com/mna/pocketlang/compiler"
	"github.com/mna/pocketlang/heap"
)

// SourceLoader resolves a logical import path to source text. The host
// decides what a path means (filesystem, embedded archive, network
// fetch); the compiler only ever sees the string it returns. RealPath is
// an optional, more specific identifier for diagnostics (e.g. an absolute
// file path) and may equal path.
type SourceLoader interface {
	Load(path string) (src, realPath string, err error)
}

// ErrorReporter receives one diagnostic at a time during compilation.
// Kind is "lex" or "parse" for compile diagnostics; path is then the
// RealPath reported by the loader for the script being compiled, not
// necessarily the requested path. When the loader itself fails, kind is
// "load", path is the requested path and line is 0.
type ErrorReporter interface {
	Report(kind, path string, line int, msg string)
}

// ReporterFunc adapts a plain function to ErrorReporter.
type ReporterFunc func(kind, path string, line int, msg string)

func (f ReporterFunc) Report(kind, path string, line int, msg string) { f(kind, path, line, msg) }

// Config bundles the collaborators a host supplies to compile a module.
// Heap is the object memory shared by every script compiled through this
// Config; compiling two modules that must be able to reference each
// other's literals or interned strings requires sharing one Heap.
type Config struct {
	Heap     *heap.Heap
	Loader   SourceLoader
	Reporter ErrorReporter
}

// Result is the outcome of CompileModule. RuntimeError is declared for
// the embedding API's benefit (a host running the resulting script's
// bytecode through its own dispatch loop may report it) but CompileModule
// itself, having no dispatch loop, never produces it.
type Result int

const (
	Success Result = iota
	CompileError
	RuntimeError
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case CompileError:
		return "compile error"
	case RuntimeError:
		return "runtime error"
	default:
		return "unknown"
	}
}

// CompileModule loads the source at path through cfg.Loader and compiles
// it into a *heap.Script allocated on cfg.Heap, routing every lexer and
// parser diagnostic to cfg.Reporter. It does not recurse into the
// script's Imports: resolving and linking an imported module's globals
// into the importing script is the loader's and the (out of scope)
// interpreter's job, not the compiler's.
func CompileModule(cfg Config, path string) (*heap.Script, Result) {
	src, realPath, err := cfg.Loader.Load(path)
	if err != nil {
		cfg.Reporter.Report("load", path, 0, err.Error())
		return nil, CompileError
	}
	if realPath == "" {
		realPath = path
	}

	report := func(kind, reportPath string, line int, msg string) {
		cfg.Reporter.Report(kind, reportPath, line, msg)
	}
	script := compiler.Compile(cfg.Heap, realPath, src, compiler.Reporter(report))
	if script.HasErrors {
		return script, CompileError
	}
	return script, Success
}

// StringLoader is the simplest SourceLoader: a fixed map from logical
// path to source text, useful for tests and for embedding a handful of
// scripts directly in a host binary.
type StringLoader map[string]string

func (l StringLoader) Load(path string) (string, string, error) {
	src, ok := l[path]
	if !ok {
		return "", "", fmt.Errorf("vm: no source registered for %q", path)
	}
	return src, path, nil
}
