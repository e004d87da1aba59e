package d3d

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spaghettifunk/gles/engine/core"
)

// HLSL compile flags, numerically equal to the D3DCOMPILE_* flags.
const (
	CompileDebug              uint32 = 1 << 0
	CompileSkipValidation     uint32 = 1 << 1
	CompileSkipOptimization   uint32 = 1 << 2
	CompileAvoidFlowControl   uint32 = 1 << 9
	CompilePreferFlowControl  uint32 = 1 << 10
	CompileOptimizationLevel2 uint32 = 1<<14 | 1<<15
	CompileOptimizationLevel3 uint32 = 1 << 15
)

// loopUnrollError is reported by the HLSL compiler when it cannot flatten a
// loop it was asked to.
const loopUnrollError = "error X3531:"

type ShaderMacro struct {
	Name       string
	Definition string
}

// LoopFlattenMacros asks the generated HLSL to flatten loops.
var LoopFlattenMacros = []ShaderMacro{{Name: "ANGLE_ENABLE_LOOP_FLATTEN", Definition: "1"}}

type CompileConfig struct {
	Flags uint32
	Name  string
}

// ShaderCompiler compiles HLSL source for one profile. A compile error is
// reported through the returned info log with a nil blob. An error matching
// core.ErrOutOfMemory aborts compilation; any other error counts as a failed
// attempt.
type ShaderCompiler interface {
	Compile(source, profile string, flags uint32, macros []ShaderMacro) ([]byte, string, error)
}

// CompileError is returned when no configuration produced a blob. It
// matches core.ErrCompileFailed.
type CompileError struct {
	Profile string
	InfoLog string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Profile, core.ErrCompileFailed)
}

func (e *CompileError) Unwrap() error {
	return core.ErrCompileFailed
}

// CompileToBinary tries configs in order and returns the first blob
// produced. A loop-unroll failure retries the same config without macros.
// When every config fails it returns a *CompileError carrying the info log,
// which is also returned as the second value.
func CompileToBinary(compiler ShaderCompiler, source, profile string, configs []CompileConfig, macros []ShaderMacro) ([]byte, string, error) {
	var infoLog strings.Builder

	for i := 0; i < len(configs); i++ {
		config := configs[i]
		blob, message, err := compiler.Compile(source, profile, config.Flags, macros)
		if err != nil {
			if errors.Is(err, core.ErrOutOfMemory) {
				return nil, infoLog.String(), err
			}
			message = err.Error()
		}
		if blob != nil {
			if i > 0 {
				core.LogWarn("shader compiled with the %q configuration", config.Name)
			}
			return blob, infoLog.String(), nil
		}

		core.LogDebug("HLSL %s compile with %q failed: %s", profile, config.Name, message)
		if message != "" {
			infoLog.WriteString(message)
			infoLog.WriteString("\n")
		}
		if macros != nil && strings.Contains(message, loopUnrollError) {
			// Retry the same config without loop flattening.
			macros = nil
			i--
		}
	}
	log := infoLog.String()
	return nil, log, &CompileError{Profile: profile, InfoLog: log}
}

// DefaultCompileConfigs is the fallback order for shader model 4 and up.
func DefaultCompileConfigs(flags uint32) []CompileConfig {
	return []CompileConfig{
		{Flags: flags, Name: "default"},
		{Flags: flags | CompileSkipValidation, Name: "skip validation"},
		{Flags: flags | CompileSkipOptimization, Name: "skip optimization"},
	}
}

// FlowControlCompileConfigs is the fallback order for shader model 3.
func FlowControlCompileConfigs(flags uint32) []CompileConfig {
	return []CompileConfig{
		{Flags: flags, Name: "default"},
		{Flags: flags | CompileAvoidFlowControl, Name: "avoid flow control"},
		{Flags: flags | CompilePreferFlowControl, Name: "prefer flow control"},
	}
}
