// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ubo

import (
	"log/slog"
	"strings"

	"cogentcore.org/core/base/ordmap"
)

// NameKinds classifies an input name by its number of dotted components.
type NameKinds int32

const (
	// Leaf is a plain input name like sun_color.
	Leaf NameKinds = iota

	// Nested is a struct member name like Scattering.sun_color.
	Nested

	// TooDeep is a name with three or more components, which cannot be
	// declared and is dropped from generated code.
	TooDeep
)

func (nk NameKinds) String() string {
	switch nk {
	case Leaf:
		return "Leaf"
	case Nested:
		return "Nested"
	}
	return "TooDeep"
}

// InputName is a classified input name.
type InputName struct {
	Kind NameKinds

	// Full is the name as registered.
	Full string

	// Struct is the struct name for Nested names.
	Struct string

	// Field is the leaf name for Leaf names and the member name for Nested names.
	Field string
}

// ClassifyName splits the name on dots and classifies it.
func ClassifyName(name string) InputName {
	parts := strings.Split(name, ".")
	switch len(parts) {
	case 1:
		return InputName{Kind: Leaf, Full: name, Field: name}
	case 2:
		return InputName{Kind: Nested, Full: name, Struct: parts[0], Field: parts[1]}
	}
	return InputName{Kind: TooDeep, Full: name}
}

// Decl is a single member declaration: a type and a name.
type Decl struct {
	Type Types
	Name string
}

// String returns the GLSL declaration, e.g. "vec3 sun_color;"
func (d Decl) String() string {
	return d.Type.String() + " " + d.Name + ";"
}

// Layout is the declaration tree of a set of inputs, built fresh
// from the current inputs each time code is generated.
type Layout struct {
	// Leaves are the top level declarations, in registration order.
	Leaves []Decl

	// Structs are the struct member declarations keyed by struct name,
	// in order of the first input seen for each struct.
	Structs *ordmap.Map[string, []Decl]

	// Dropped are the names that were too deeply nested to declare.
	Dropped []string
}

// BuildLayout builds the [Layout] for the given inputs in a single pass
// in their iteration order. Too deeply nested names are logged and dropped.
func BuildLayout(inputs *ordmap.Map[string, *Cell]) *Layout {
	ly := &Layout{Structs: ordmap.New[string, []Decl]()}
	for _, kv := range inputs.Order {
		in := ClassifyName(kv.Key)
		switch in.Kind {
		case Leaf:
			ly.Leaves = append(ly.Leaves, Decl{Type: kv.Value.Type, Name: in.Field})
		case Nested:
			fields := ly.Structs.ValueByKey(in.Struct)
			ly.Structs.Add(in.Struct, append(fields, Decl{Type: kv.Value.Type, Name: in.Field}))
		default:
			slog.Warn("ubo: structure definition too nested, not supported", "input", in.Full)
			ly.Dropped = append(ly.Dropped, in.Full)
		}
	}
	return ly
}

// IsEmpty returns true if there is nothing to declare.
func (ly *Layout) IsEmpty() bool {
	return len(ly.Leaves) == 0 && ly.Structs.Len() == 0
}

// NumDecls returns the total number of declared inputs,
// counting each struct member.
func (ly *Layout) NumDecls() int {
	n := len(ly.Leaves)
	for _, kv := range ly.Structs.Order {
		n += len(kv.Value)
	}
	return n
}

// Members returns the members of the main block: the leaf
// declarations followed by one instance per struct.
func (ly *Layout) Members() []string {
	mems := make([]string, 0, len(ly.Leaves)+ly.Structs.Len())
	for _, d := range ly.Leaves {
		mems = append(mems, d.String())
	}
	for _, kv := range ly.Structs.Order {
		mems = append(mems, StructTypeName(kv.Key)+" "+kv.Key+";")
	}
	return mems
}

// StructTypeName returns the GLSL type name generated for a struct.
func StructTypeName(name string) string {
	return name + "_UBOSTRUCT"
}
