package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrContextUnavailable is returned by hosts and backends when no
	// rendering context could be created.
	ErrContextUnavailable = errors.New("rendering context not available")

	// ErrNotInitialized is returned by RenderFrame before Initialize succeeded.
	ErrNotInitialized = errors.New("renderer not initialized")
)

// ShaderCompileError reports a shader stage that failed to compile.
type ShaderCompileError struct {
	Stage ShaderStage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// ShaderLinkError reports a program that failed to link.
type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string {
	return "failed to link program: " + e.Log
}

// UnknownBindingError is returned when an attribute or uniform name was not
// found by introspection of the linked program.
type UnknownBindingError struct {
	Kind string // "attribute" or "uniform"
	Name string
}

func (e *UnknownBindingError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// SetupError wraps any failure of the one-time setup. It is fatal: the
// render loop never starts.
type SetupError struct {
	Step string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s: %v", e.Step, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// AssetError reports a texture source that could not be decoded. The
// affected texture keeps its placeholder pixel.
type AssetError struct {
	Source string
	Err    error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s: %v", e.Source, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }
