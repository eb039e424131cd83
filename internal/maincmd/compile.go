package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/pocketlang/compiler"
	"github.com/mna/pocketlang/heap"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return CompileFiles(stdio, args...)
}

// CompileFiles compiles each file independently (each gets its own Heap
// and Script, matching the compiler's one-script-per-source-unit model)
// and prints a disassembly of the resulting bytecode, or any diagnostics
// raised along the way.
func CompileFiles(stdio mainer.Stdio, files ...string) error {
	var failed bool
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			failed = true
			continue
		}

		h := heap.New()
		report := func(kind, reportPath string, line int, msg string) {
			fmt.Fprintf(stdio.Stderr, "%s:%d: %s: %s\n", reportPath, line, kind, msg)
		}
		script := compiler.Compile(h, path, string(src), report)
		if script.HasErrors {
			failed = true
			continue
		}
		fmt.Fprint(stdio.Stdout, compiler.Disassemble(script))
	}
	if failed {
		return printError(stdio, fmt.Errorf("compile: one or more files failed to compile"))
	}
	return nil
}
