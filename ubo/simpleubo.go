// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ubo

// SimpleUBO is a plain named set of shader inputs. Unlike [ShaderUBO]
// it has no typed storage, no binding slot and no code generation:
// it just stores values and sets them on targets by name.
type SimpleUBO struct {
	name   string
	inputs map[string]any
}

// NewSimpleUBO returns a new empty SimpleUBO.
func NewSimpleUBO(name string) *SimpleUBO {
	return &SimpleUBO{name: name, inputs: make(map[string]any)}
}

// Name returns the name of the UBO.
func (su *SimpleUBO) Name() string {
	return su.name
}

// AddInput sets the value of the named input, replacing any previous value.
func (su *SimpleUBO) AddInput(name string, value any) {
	su.inputs[name] = value
}

// Len returns the number of inputs.
func (su *SimpleUBO) Len() int {
	return len(su.inputs)
}

// BindTo sets every input on the target as "<ubo>.<input>",
// in no particular order.
func (su *SimpleUBO) BindTo(target InputTarget) {
	for k, v := range su.inputs {
		target.SetShaderInput(su.name+"."+k, v)
	}
}
