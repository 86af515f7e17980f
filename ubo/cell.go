// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ubo

import (
	"fmt"

	"cogentcore.org/core/math32"
)

// Cell is the persistent backing storage for one typed input.
// It is allocated once, and the address of its value never changes
// afterwards: only the contents are written. A render target that
// holds [Cell.Pointer] therefore sees every later update without
// being bound again.
type Cell struct {
	// Type is the GLSL type of the value.
	Type Types

	// ptr is the stable pointer to the value, of Type.StorageType().
	ptr any
}

// NewCell returns a new zero valued cell for the given type.
// Invalid types get float storage.
func NewCell(tp Types) *Cell {
	if !tp.IsValid() {
		tp = Float
	}
	c := &Cell{Type: tp}
	switch tp {
	case Int:
		c.ptr = new(int32)
	case Float:
		c.ptr = new(float32)
	case Vector2:
		c.ptr = new(math32.Vector2)
	case Vector3:
		c.ptr = new(math32.Vector3)
	case Vector4:
		c.ptr = new(math32.Vector4)
	case Matrix3:
		c.ptr = new(math32.Matrix3)
	case Matrix4:
		c.ptr = new(math32.Matrix4)
	}
	return c
}

// Pointer returns the live pointer to the value, for example
// a *float32 or *math32.Vector3. It is the same pointer for the
// whole lifetime of the cell, so readers must not treat it as a snapshot.
func (c *Cell) Pointer() any {
	return c.ptr
}

// Value returns a copy of the current value.
func (c *Cell) Value() any {
	switch p := c.ptr.(type) {
	case *int32:
		return *p
	case *float32:
		return *p
	case *math32.Vector2:
		return *p
	case *math32.Vector3:
		return *p
	case *math32.Vector4:
		return *p
	case *math32.Matrix3:
		return *p
	case *math32.Matrix4:
		return *p
	}
	return nil
}

// Set writes the given value into the cell in place.
// Go numeric types are converted for [Int] and [Float] cells;
// any other mismatch between the value and the cell type is an error.
func (c *Cell) Set(v any) error {
	switch p := c.ptr.(type) {
	case *int32:
		switch x := v.(type) {
		case int32:
			*p = x
		case int:
			*p = int32(x)
		case int64:
			*p = int32(x)
		case uint32:
			*p = int32(x)
		default:
			return c.mismatch(v)
		}
	case *float32:
		switch x := v.(type) {
		case float32:
			*p = x
		case float64:
			*p = float32(x)
		case int:
			*p = float32(x)
		case int32:
			*p = float32(x)
		default:
			return c.mismatch(v)
		}
	case *math32.Vector2:
		x, ok := v.(math32.Vector2)
		if !ok {
			return c.mismatch(v)
		}
		*p = x
	case *math32.Vector3:
		x, ok := v.(math32.Vector3)
		if !ok {
			return c.mismatch(v)
		}
		*p = x
	case *math32.Vector4:
		x, ok := v.(math32.Vector4)
		if !ok {
			return c.mismatch(v)
		}
		*p = x
	case *math32.Matrix3:
		x, ok := v.(math32.Matrix3)
		if !ok {
			return c.mismatch(v)
		}
		*p = x
	case *math32.Matrix4:
		x, ok := v.(math32.Matrix4)
		if !ok {
			return c.mismatch(v)
		}
		*p = x
	}
	return nil
}

func (c *Cell) mismatch(v any) error {
	return fmt.Errorf("%w: cannot store %T in %s input", ErrTypeMismatch, v, c.Type)
}

// Storage is the set of Go types that back a [Cell].
type Storage interface {
	int32 | float32 | math32.Vector2 | math32.Vector3 | math32.Vector4 | math32.Matrix3 | math32.Matrix4
}

// SetCell writes v into the cell without boxing it, which keeps
// per-frame updates of hot values free of allocations.
// It returns an error if T is not the storage type of the cell.
func SetCell[T Storage](c *Cell, v T) error {
	p, ok := c.ptr.(*T)
	if !ok {
		return c.mismatch(v)
	}
	*p = v
	return nil
}

// CellValue returns the current value of the cell as T.
func CellValue[T Storage](c *Cell) (T, error) {
	p, ok := c.ptr.(*T)
	if !ok {
		var zv T
		return zv, fmt.Errorf("%w: %s input is not a %T", ErrTypeMismatch, c.Type, zv)
	}
	return *p, nil
}
