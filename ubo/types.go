// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ubo

import (
	"log/slog"
	"reflect"

	"cogentcore.org/core/math32"
)

// See: https://www.khronos.org/opengl/wiki/Data_Type_(GLSL)

// Types is the closed set of GLSL types that a [ShaderUBO] input can hold.
// Each type has a fixed Go storage type, used for the persistent
// backing [Cell] of the input, and a GLSL name used in generated code.
type Types int32

const (
	Int Types = iota
	Float
	Vector2
	Vector3
	Vector4
	Matrix3 // column major, as math32.Matrix3
	Matrix4 // column major, as math32.Matrix4

	TypesN
)

// typeNames are the GLSL names of Types
var typeNames = [TypesN]string{
	Int:     "int",
	Float:   "float",
	Vector2: "vec2",
	Vector3: "vec3",
	Vector4: "vec4",
	Matrix3: "mat3",
	Matrix4: "mat4",
}

// storageTypes are the Go types used to store each of the Types.
var storageTypes = [TypesN]reflect.Type{
	Int:     reflect.TypeFor[int32](),
	Float:   reflect.TypeFor[float32](),
	Vector2: reflect.TypeFor[math32.Vector2](),
	Vector3: reflect.TypeFor[math32.Vector3](),
	Vector4: reflect.TypeFor[math32.Vector4](),
	Matrix3: reflect.TypeFor[math32.Matrix3](),
	Matrix4: reflect.TypeFor[math32.Matrix4](),
}

// TypeSizes gives our data type sizes in bytes, tightly packed.
var TypeSizes = [TypesN]int{
	Int:     4,
	Float:   4,
	Vector2: 8,
	Vector3: 12,
	Vector4: 16,
	Matrix3: 36,
	Matrix4: 64,
}

// String returns the GLSL name of the type.
func (tp Types) String() string {
	if tp < 0 || tp >= TypesN {
		return "float"
	}
	return typeNames[tp]
}

// IsValid returns whether tp is one of the defined Types.
func (tp Types) IsValid() bool {
	return tp >= 0 && tp < TypesN
}

// Bytes returns number of bytes for this type
func (tp Types) Bytes() int {
	if !tp.IsValid() {
		return 4
	}
	return TypeSizes[tp]
}

// StorageType returns the Go type that holds a value of this type.
// Invalid types are stored as float32.
func (tp Types) StorageType() reflect.Type {
	if !tp.IsValid() {
		return storageTypes[Float]
	}
	return storageTypes[tp]
}

// ParseType returns the type for the given GLSL type name.
// Unrecognized names are logged and mapped to [Float], so that a
// misconfigured input degrades to a harmless default.
func ParseType(glsl string) Types {
	for tp, nm := range typeNames {
		if nm == glsl {
			return Types(tp)
		}
	}
	slog.Warn("ubo: unrecognized glsl type, using float", "type", glsl)
	return Float
}

// TypeOfStorage returns the type stored in the given Go type.
// Unrecognized storage types are logged and mapped to [Float].
func TypeOfStorage(rt reflect.Type) Types {
	for tp, st := range storageTypes {
		if st == rt {
			return Types(tp)
		}
	}
	slog.Warn("ubo: unrecognized storage type, using float", "type", rt)
	return Float
}

// TypeOfValue returns the type for the given value, which can be
// a storage value or a pointer to one.
func TypeOfValue(v any) Types {
	rt := reflect.TypeOf(v)
	if rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return TypeOfStorage(rt)
}

// StorageTypeFor returns the Go storage type for the given GLSL type name,
// defaulting to float32 for unknown names.
func StorageTypeFor(glsl string) reflect.Type {
	return ParseType(glsl).StorageType()
}

// GLSLTypeFor returns the GLSL type name for the given Go storage type,
// defaulting to "float" for unknown types.
func GLSLTypeFor(rt reflect.Type) string {
	return TypeOfStorage(rt).String()
}
