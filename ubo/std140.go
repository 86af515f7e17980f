// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ubo

import (
	"encoding/binary"
	"fmt"
	"math"

	"cogentcore.org/core/base/ordmap"
	"cogentcore.org/core/math32"
)

// Std140Align returns the base alignment of the type in std140 layout.
func (tp Types) Std140Align() int {
	switch tp {
	case Int, Float:
		return 4
	case Vector2:
		return 8
	}
	return 16
}

// Std140Size returns the size of the type in std140 layout.
// Matrix columns are padded to 16 bytes.
func (tp Types) Std140Size() int {
	switch tp {
	case Matrix3:
		return 48
	case Matrix4:
		return 64
	}
	return tp.Bytes()
}

// MemSizeAlign returns the size aligned according to align byte increments
// e.g., if align = 16 and size = 12, it returns 16
func MemSizeAlign(size, align int) int {
	if size%align == 0 {
		return size
	}
	nb := size / align
	return (nb + 1) * align
}

// BlockField is one input placed in a [BlockLayout].
type BlockField struct {
	// Name is the registered input name.
	Name string

	Type Types

	// Offset is the byte offset of the value in the block.
	Offset int

	cell *Cell
}

// BlockLayout is the std140 memory layout of the inputs of a [ShaderUBO],
// in the member order of the generated code: leaves first, then structs.
// It holds the cells of the inputs at the time it was made, so like the
// generated code it must be rebuilt if inputs are registered later.
//
// Native blocks are declared with the shared layout, whose offsets are
// chosen by the driver. The std140 offsets computed here match them on
// drivers that lay out shared blocks like std140, which WebGPU always
// does. On other drivers the offsets must be queried from the linked
// program and applied with [BlockLayout.SetOffsets].
type BlockLayout struct {
	Fields []BlockField

	// Size is the total size of the block in bytes.
	Size int
}

// NewBlockLayout computes the std140 layout of the current inputs of u.
// Too deeply nested inputs are not declared and get no space.
func NewBlockLayout(u *ShaderUBO) *BlockLayout {
	bl := &BlockLayout{}
	structs := ordmap.New[string, []ordmap.KeyValue[string, *Cell]]()
	off := 0
	for _, kv := range u.inputs.Order {
		in := ClassifyName(kv.Key)
		switch in.Kind {
		case Leaf:
			off = bl.place(kv.Key, kv.Value, off)
		case Nested:
			mems := structs.ValueByKey(in.Struct)
			structs.Add(in.Struct, append(mems, kv))
		}
	}
	for _, skv := range structs.Order {
		off = MemSizeAlign(off, 16)
		for _, kv := range skv.Value {
			off = bl.place(kv.Key, kv.Value, off)
		}
		off = MemSizeAlign(off, 16)
	}
	bl.Size = MemSizeAlign(off, 16)
	return bl
}

// place adds a field at the next aligned offset and returns the end offset.
func (bl *BlockLayout) place(name string, c *Cell, off int) int {
	off = MemSizeAlign(off, c.Type.Std140Align())
	bl.Fields = append(bl.Fields, BlockField{Name: name, Type: c.Type, Offset: off, cell: c})
	return off + c.Type.Std140Size()
}

// SetOffsets replaces the offsets of all fields and the block size with
// those queried from the driver, by input name. Every field must be given
// an offset at which its value fits within size.
func (bl *BlockLayout) SetOffsets(offsets map[string]int, size int) error {
	for i := range bl.Fields {
		f := &bl.Fields[i]
		off, ok := offsets[f.Name]
		if !ok {
			return fmt.Errorf("ubo: no offset given for input %q", f.Name)
		}
		if off < 0 || off+f.Type.Std140Size() > size {
			return fmt.Errorf("ubo: input %q at offset %d does not fit in a block of %d bytes", f.Name, off, size)
		}
	}
	for i := range bl.Fields {
		bl.Fields[i].Offset = offsets[bl.Fields[i].Name]
	}
	bl.Size = size
	return nil
}

// Pack writes the current values of all fields into dst, which must
// be at least Size bytes. Padding bytes are left untouched.
// It does not allocate, so it can run every frame.
func (bl *BlockLayout) Pack(dst []byte) error {
	if len(dst) < bl.Size {
		return fmt.Errorf("ubo: pack buffer of %d bytes is smaller than block size %d", len(dst), bl.Size)
	}
	for i := range bl.Fields {
		f := &bl.Fields[i]
		b := dst[f.Offset:]
		switch p := f.cell.ptr.(type) {
		case *int32:
			binary.LittleEndian.PutUint32(b, uint32(*p))
		case *float32:
			putFloats(b, *p)
		case *math32.Vector2:
			putFloats(b, p.X, p.Y)
		case *math32.Vector3:
			putFloats(b, p.X, p.Y, p.Z)
		case *math32.Vector4:
			putFloats(b, p.X, p.Y, p.Z, p.W)
		case *math32.Matrix3:
			for col := 0; col < 3; col++ {
				putFloats(b[16*col:], p[3*col], p[3*col+1], p[3*col+2])
			}
		case *math32.Matrix4:
			putFloats(b, p[:]...)
		}
	}
	return nil
}

func putFloats(b []byte, fs ...float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
}
