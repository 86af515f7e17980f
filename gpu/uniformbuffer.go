// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/renderpipeline/ubo"
	"github.com/cogentcore/webgpu/wgpu"
)

// UniformBuffer holds a WebGPU uniform buffer with the std140 packed
// contents of a [ubo.ShaderUBO]. The layout and staging memory are
// made once, so [UniformBuffer.Write] does not allocate per frame.
// The std140 offsets of [ubo.BlockLayout] are those WebGPU uses for
// uniform buffers. For a GL driver laying out the shared block
// differently, apply the offsets queried from the program to Layout
// with [ubo.BlockLayout.SetOffsets] before the first Write.
type UniformBuffer struct {
	// UBO is the source of the values.
	UBO *ubo.ShaderUBO

	// Layout is the memory layout of UBO, from when the buffer was made.
	Layout *ubo.BlockLayout

	device *wgpu.Device

	// staging is the CPU side copy of the buffer contents.
	staging []byte

	// buffer for the UBO, makes it accessible to the GPU
	buffer *wgpu.Buffer
}

// NewUniformBuffer makes a uniform buffer for the current inputs of u
// on the given device. Inputs registered afterwards are not included.
func NewUniformBuffer(dev *wgpu.Device, u *ubo.ShaderUBO) (*UniformBuffer, error) {
	ub := &UniformBuffer{UBO: u, Layout: ubo.NewBlockLayout(u), device: dev}
	sz := ub.Layout.Size
	if sz == 0 {
		sz = 16 // zero sized buffers are invalid
	}
	ub.staging = make([]byte, sz)
	buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            ubo.BlockTypeName(u.Name()),
		Size:             uint64(sz),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if errors.Log(err) != nil {
		return nil, err
	}
	ub.buffer = buf
	return ub, nil
}

// Buffer returns the GPU buffer, for use in a bind group entry
// at the binding of the UBO.
func (ub *UniformBuffer) Buffer() *wgpu.Buffer {
	return ub.buffer
}

// BindGroupEntry returns the bind group entry for the whole buffer
// at the binding slot of the UBO.
func (ub *UniformBuffer) BindGroupEntry() wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: uint32(ub.UBO.BindingID()),
		Buffer:  ub.buffer,
		Size:    uint64(len(ub.staging)),
	}
}

// Write packs the current values of the UBO and copies them to the GPU.
// Call it once per frame, after all inputs are updated.
func (ub *UniformBuffer) Write() error {
	if ub.buffer == nil {
		return fmt.Errorf("gpu.UniformBuffer Write: buffer is released for UBO: %s", ub.UBO.Name())
	}
	if err := ub.Layout.Pack(ub.staging); err != nil {
		return errors.Log(err)
	}
	return errors.Log(ub.device.GetQueue().WriteBuffer(ub.buffer, 0, ub.staging))
}

// Release releases the GPU buffer.
func (ub *UniformBuffer) Release() {
	if ub.buffer != nil {
		ub.buffer.Release()
		ub.buffer = nil
	}
}
