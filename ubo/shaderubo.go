// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ubo

import (
	"fmt"
	"log/slog"
	"strings"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/indent"
	"cogentcore.org/core/base/ordmap"
)

var (
	// ErrNoInput is returned when accessing an input that was never registered.
	ErrNoInput = errors.New("ubo: input not registered")

	// ErrTypeMismatch is returned when a value does not fit the type of an input.
	ErrTypeMismatch = errors.New("ubo: value type does not match input type")
)

// DefaultProbe is the [Probe] used by [NewShaderUBO] when none is given.
// Hosts set it once at startup from the active graphics driver.
var DefaultProbe Probe = StaticProbe(false)

// InputTarget is anything that accepts named shader inputs,
// such as a render target or a node in the scene graph.
type InputTarget interface {
	SetShaderInput(name string, value any)
}

// ShaderUBO is a named group of typed shader inputs, with persistent
// storage for efficient per-frame updates and generated GLSL declarations.
// Depending on driver support, the inputs are declared as a native shared
// uniform block or as a plain uniform struct; callers see the same API.
//
// Inputs are registered during setup with [ShaderUBO.RegisterInput],
// before the code is generated with [ShaderUBO.GenerateShaderCode].
// Registering later leaves previously generated code stale.
// Each frame the inputs are updated with [ShaderUBO.UpdateInput] and
// then pushed to targets with [ShaderUBO.BindTo].
// A ShaderUBO is not safe for concurrent use.
type ShaderUBO struct {
	name      string
	bindingID int
	native    bool

	// inputs in registration order
	inputs *ordmap.Map[string, *Cell]
}

// NewShaderUBO returns a new ShaderUBO with the given name. The binding
// slot comes from bindings and native block support from probe, both
// resolved once here. A nil bindings uses [DefaultBindings] and a nil
// probe uses [DefaultProbe].
func NewShaderUBO(name string, bindings *BindingAllocator, probe Probe) *ShaderUBO {
	if bindings == nil {
		bindings = DefaultBindings
	}
	if probe == nil {
		probe = DefaultProbe
	}
	u := &ShaderUBO{
		name:      name,
		bindingID: bindings.Next(),
		native:    probe.NativeBlocks(),
		inputs:    ordmap.New[string, *Cell](),
	}
	slog.Debug("ubo: created", "name", name, "binding", u.bindingID, "native", u.native)
	return u
}

// Name returns the name of the UBO.
func (u *ShaderUBO) Name() string {
	return u.name
}

// BindingID returns the binding slot of the UBO.
func (u *ShaderUBO) BindingID() int {
	return u.bindingID
}

// NativeBlocks returns whether the UBO is declared as a native uniform block.
func (u *ShaderUBO) NativeBlocks() bool {
	return u.native
}

// Len returns the number of registered inputs.
func (u *ShaderUBO) Len() int {
	return u.inputs.Len()
}

// Names returns the input names in registration order.
func (u *ShaderUBO) Names() []string {
	return u.inputs.Keys()
}

// RegisterInput adds a new input of the given type, with zero initialized
// persistent storage, and returns its cell. Registering a name again
// replaces the old cell, and its value, keeping the original position.
func (u *ShaderUBO) RegisterInput(name string, tp Types) *Cell {
	c := NewCell(tp)
	u.inputs.Add(name, c)
	return c
}

// RegisterInputGLSL is [ShaderUBO.RegisterInput] for a GLSL type name.
// Unknown names are logged and registered as float.
func (u *ShaderUBO) RegisterInputGLSL(name, glsl string) *Cell {
	return u.RegisterInput(name, ParseType(glsl))
}

// CellTry returns the cell of the given input, or an error wrapping
// [ErrNoInput] if it was never registered.
func (u *ShaderUBO) CellTry(name string) (*Cell, error) {
	c, ok := u.inputs.ValueByKeyTry(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrNoInput, name, u.name)
	}
	return c, nil
}

// Cell returns the cell of the given input, logging an error and
// returning nil if it was never registered.
func (u *ShaderUBO) Cell(name string) *Cell {
	return errors.Log1(u.CellTry(name))
}

// UpdateInput writes a new value into the storage of an existing input.
// Updating an input that was never registered is a caller error, and
// is returned rather than ignored.
func (u *ShaderUBO) UpdateInput(name string, value any) error {
	c, err := u.CellTry(name)
	if err != nil {
		return err
	}
	if err := c.Set(value); err != nil {
		return fmt.Errorf("ubo %s: input %q: %w", u.name, name, err)
	}
	return nil
}

// Input returns the current value of an existing input.
func (u *ShaderUBO) Input(name string) (any, error) {
	c, err := u.CellTry(name)
	if err != nil {
		return nil, err
	}
	return c.Value(), nil
}

// SetInput is [ShaderUBO.UpdateInput] without boxing the value.
func SetInput[T Storage](u *ShaderUBO, name string, v T) error {
	c, err := u.CellTry(name)
	if err != nil {
		return err
	}
	return SetCell(c, v)
}

// GetInput is [ShaderUBO.Input] returning a typed value.
func GetInput[T Storage](u *ShaderUBO, name string) (T, error) {
	c, err := u.CellTry(name)
	if err != nil {
		var zv T
		return zv, err
	}
	return CellValue[T](c)
}

// InputKey returns the shader input name used for the given input.
func (u *ShaderUBO) InputKey(name string) string {
	return InputKey(u.name, name, u.native)
}

// BindTo sets every input on the target, under [ShaderUBO.InputKey],
// as the live pointer into its storage. Later updates are visible to
// the target without binding again.
func (u *ShaderUBO) BindTo(target InputTarget) {
	for _, kv := range u.inputs.Order {
		target.SetShaderInput(u.InputKey(kv.Key), kv.Value.Pointer())
	}
}

// Layout returns the declaration layout of the current inputs.
func (u *ShaderUBO) Layout() *Layout {
	return BuildLayout(u.inputs)
}

// GenerateShaderCode returns the GLSL code declaring the current inputs.
func (u *ShaderUBO) GenerateShaderCode() string {
	ly := u.Layout()
	if ly.IsEmpty() {
		slog.Debug("ubo: no inputs present", "name", u.name)
	}
	return GenerateCode(u.name, u.bindingID, u.native, ly)
}

// String returns a summary of the UBO and its inputs, for debugging.
func (u *ShaderUBO) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ShaderUBO: %s\tbinding: %d\tnative: %v\n", u.name, u.bindingID, u.native))
	for _, kv := range u.inputs.Order {
		sb.WriteString(fmt.Sprintf("%s%s\t%s\t%v\n", indent.Spaces(1, indentWidth), kv.Key, kv.Value.Type, kv.Value.Value()))
	}
	return sb.String()
}
