package d3d

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type compileCall struct {
	flags  uint32
	macros []ShaderMacro
}

type compileResult struct {
	blob    []byte
	message string
	err     error
}

// scriptedCompiler answers each Compile call with the next scripted result.
type scriptedCompiler struct {
	results []compileResult
	calls   []compileCall
}

func (c *scriptedCompiler) Compile(_, _ string, flags uint32, macros []ShaderMacro) ([]byte, string, error) {
	c.calls = append(c.calls, compileCall{flags: flags, macros: macros})
	if len(c.calls) > len(c.results) {
		return nil, "no more results", nil
	}
	r := c.results[len(c.calls)-1]
	return r.blob, r.message, r.err
}

func TestCompileToBinaryFirstConfig(t *testing.T) {
	compiler := &scriptedCompiler{results: []compileResult{{blob: []byte{1}}}}
	blob, log, err := CompileToBinary(compiler, "src", "ps_4_0", DefaultCompileConfigs(CompileOptimizationLevel2), LoopFlattenMacros)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, blob)
	assert.Empty(t, log)
	assert.Len(t, compiler.calls, 1)
}

func TestCompileToBinaryLoopUnrollRetry(t *testing.T) {
	compiler := &scriptedCompiler{results: []compileResult{
		{message: "shader.hlsl(12): error X3531: can't unroll loops marked with loop attribute"},
		{blob: []byte{2}},
	}}
	configs := DefaultCompileConfigs(0)
	blob, log, err := CompileToBinary(compiler, "src", "ps_4_0", configs, LoopFlattenMacros)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, blob)
	assert.Contains(t, log, "X3531")

	require.Len(t, compiler.calls, 2)
	assert.Equal(t, compiler.calls[0].flags, compiler.calls[1].flags, "the same config is retried")
	assert.NotNil(t, compiler.calls[0].macros)
	assert.Nil(t, compiler.calls[1].macros)
}

func TestCompileToBinaryFallsThroughConfigs(t *testing.T) {
	compiler := &scriptedCompiler{results: []compileResult{
		{message: "error X4000: oops"},
		{err: fmt.Errorf("compiler crashed")},
		{blob: []byte{3}},
	}}
	configs := FlowControlCompileConfigs(0)
	blob, _, err := CompileToBinary(compiler, "src", "vs_3_0", configs, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, blob)
	require.Len(t, compiler.calls, 3)
	assert.Equal(t, CompilePreferFlowControl, compiler.calls[2].flags)
}

func TestCompileToBinaryAllConfigsFail(t *testing.T) {
	compiler := &scriptedCompiler{}
	blob, log, err := CompileToBinary(compiler, "src", "ps_4_0", DefaultCompileConfigs(0), nil)
	assert.True(t, errors.Is(err, core.ErrCompileFailed))
	assert.False(t, errors.Is(err, core.ErrOutOfMemory))
	assert.Nil(t, blob)
	assert.Contains(t, log, "no more results")
	assert.Len(t, compiler.calls, 3)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "ps_4_0", compileErr.Profile)
	assert.Equal(t, log, compileErr.InfoLog)
}

func TestCompileToBinaryOutOfMemory(t *testing.T) {
	compiler := &scriptedCompiler{results: []compileResult{{err: core.OutOfMemory("compiler ran out of memory")}}}
	_, _, err := CompileToBinary(compiler, "src", "ps_4_0", DefaultCompileConfigs(0), nil)
	assert.True(t, errors.Is(err, core.ErrOutOfMemory))
	assert.Len(t, compiler.calls, 1)
}
