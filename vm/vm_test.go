package vm_test

import (
	"testing"

	"github.com/mna/pocketlang/heap"
	"github.com/mna/pocketlang/vm"
	"github.com/stretchr/testify/require"
)

func TestCompileModuleSuccess(t *testing.T) {
	var diags []string
	cfg := vm.Config{
		Heap:   heap.New(),
		Loader: vm.StringLoader{"main": "x = 1\n"},
		Reporter: vm.ReporterFunc(func(kind, path string, line int, msg string) {
			diags = append(diags, msg)
		}),
	}

	script, res := vm.CompileModule(cfg, "main")
	require.Equal(t, vm.Success, res)
	require.Empty(t, diags)
	require.NotNil(t, script)
	require.Equal(t, "main", script.Name)
}

func TestCompileModuleReportsCompileError(t *testing.T) {
	var diags []string
	cfg := vm.Config{
		Heap:   heap.New(),
		Loader: vm.StringLoader{"main": "break\n"},
		Reporter: vm.ReporterFunc(func(kind, path string, line int, msg string) {
			diags = append(diags, msg)
		}),
	}

	_, res := vm.CompileModule(cfg, "main")
	require.Equal(t, vm.CompileError, res)
	require.NotEmpty(t, diags)
}

func TestCompileModuleReportsMissingSource(t *testing.T) {
	var diags []string
	cfg := vm.Config{
		Heap:   heap.New(),
		Loader: vm.StringLoader{},
		Reporter: vm.ReporterFunc(func(kind, path string, line int, msg string) {
			diags = append(diags, kind+": "+msg)
		}),
	}

	script, res := vm.CompileModule(cfg, "missing")
	require.Equal(t, vm.CompileError, res)
	require.Nil(t, script)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0], "load:")
}
