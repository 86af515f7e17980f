// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpu connects UBOs to the graphics driver: it detects native
// uniform block support and uploads UBO values to WebGPU buffers.
package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// LimitsProbe is a [ubo.Probe] based on the limits of a WebGPU adapter
// or device: native uniform blocks are used whenever the device can
// bind at least one uniform buffer per shader stage.
type LimitsProbe struct {
	Limits wgpu.Limits
}

// NewLimitsProbe returns a probe for the given limits.
func NewLimitsProbe(lim wgpu.Limits) *LimitsProbe {
	return &LimitsProbe{Limits: lim}
}

func (lp *LimitsProbe) NativeBlocks() bool {
	return lp.Limits.MaxUniformBuffersPerShaderStage > 0 && lp.Limits.MaxUniformBufferBindingSize > 0
}
