// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ubo

import (
	"strconv"
	"strings"

	"cogentcore.org/core/base/indent"
)

// indentWidth is the number of spaces per indent level in generated code.
const indentWidth = 4

// GeneratedHeader starts every generated shader file.
const GeneratedHeader = "#pragma once\n\n" +
	"// Autogenerated by RenderingPipeline\n" +
	"// Do not edit! Your changes will be lost.\n\n"

// GenerateCode returns the GLSL declarations for the given layout.
// Structs are declared first, in layout order, followed by the main
// input block. With native blocks the inputs are a shared uniform block
// at the given binding, otherwise a plain uniform struct, both with the
// instance name name. An empty layout produces only the header.
// The result depends only on its arguments.
func GenerateCode(name string, bindingID int, native bool, ly *Layout) string {
	var sb strings.Builder
	sb.WriteString(GeneratedHeader)
	ind := indent.Spaces(1, indentWidth)

	for _, kv := range ly.Structs.Order {
		sb.WriteString("struct " + StructTypeName(kv.Key) + " {\n")
		for _, d := range kv.Value {
			sb.WriteString(ind + d.String() + "\n")
		}
		sb.WriteString("};\n\n")
	}

	if !ly.IsEmpty() {
		if native {
			sb.WriteString("layout(shared, binding=" + strconv.Itoa(bindingID) + ") uniform " + BlockTypeName(name) + " {\n")
		} else {
			sb.WriteString("uniform struct {\n")
		}
		for _, m := range ly.Members() {
			sb.WriteString(ind + m + "\n")
		}
		sb.WriteString("} " + name + ";\n")
	}

	sb.WriteString("\n")
	return sb.String()
}

// BlockTypeName returns the block type name used for native uniform blocks.
func BlockTypeName(name string) string {
	return name + "_UBO"
}
