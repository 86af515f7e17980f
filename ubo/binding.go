// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ubo

import (
	"sync/atomic"
)

// BindingAllocator hands out binding slots for native uniform blocks.
// Slots start at 0 and strictly increase: a slot is never reused,
// even after the [ShaderUBO] that held it is gone.
type BindingAllocator struct {
	next atomic.Int32
}

// DefaultBindings is the process wide allocator used by
// [NewShaderUBO] when no allocator is given with [WithBindings].
var DefaultBindings = &BindingAllocator{}

// NewBindingAllocator returns a new allocator starting at slot 0.
func NewBindingAllocator() *BindingAllocator {
	return &BindingAllocator{}
}

// Next returns the next free binding slot.
func (ba *BindingAllocator) Next() int {
	return int(ba.next.Add(1) - 1)
}

// Peek returns the slot the next call to Next will return.
func (ba *BindingAllocator) Peek() int {
	return int(ba.next.Load())
}

// Reset starts the allocator over at slot 0. Only for tests or a full
// pipeline reload where no previously generated code is in use.
func (ba *BindingAllocator) Reset() {
	ba.next.Store(0)
}

// Probe reports whether the graphics driver supports native shared
// uniform blocks. It is queried once when a [ShaderUBO] is made.
type Probe interface {
	NativeBlocks() bool
}

// StaticProbe is a [Probe] with a fixed answer.
type StaticProbe bool

func (sp StaticProbe) NativeBlocks() bool {
	return bool(sp)
}

// UniformBufferMarker is the driver type whose registration indicates
// native uniform buffer support in GL builds of the engine.
const UniformBufferMarker = "GLUniformBufferContext"

// TypeRegistry looks up runtime types of the graphics driver by name.
type TypeRegistry interface {
	HasType(name string) bool
}

// RegistryProbe is a [Probe] that looks for a marker type in a
// [TypeRegistry]. An empty Marker means [UniformBufferMarker].
type RegistryProbe struct {
	Registry TypeRegistry
	Marker   string
}

func (rp RegistryProbe) NativeBlocks() bool {
	if rp.Registry == nil {
		return false
	}
	mk := rp.Marker
	if mk == "" {
		mk = UniformBufferMarker
	}
	return rp.Registry.HasType(mk)
}

// TypeSet is a simple [TypeRegistry] backed by a set of names.
type TypeSet map[string]bool

func (ts TypeSet) HasType(name string) bool {
	return ts[name]
}

// InputKey returns the shader input name for the given input of the
// named UBO. It matches the names declared by [GenerateCode]:
// "<ubo>_UBO.<input>" for native blocks and "<ubo>.<input>" otherwise.
func InputKey(uboName, input string, native bool) string {
	if native {
		return BlockTypeName(uboName) + "." + input
	}
	return uboName + "." + input
}
