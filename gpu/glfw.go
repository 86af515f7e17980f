// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !offscreen && ((darwin && !ios) || windows || (linux && !android) || dragonfly || openbsd)

package gpu

import (
	"log/slog"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// note: this file contains the glfw dependencies, for desktop platform builds.

// UniformBufferExtension is the GL extension providing uniform blocks
// on contexts older than GL 3.1.
const UniformBufferExtension = "GL_ARB_uniform_buffer_object"

// GLProbe is a [ubo.Probe] for the OpenGL context made current with glfw.
// Native uniform blocks are used when the context provides
// [UniformBufferExtension]. Without a current context it reports false.
// IMPORTANT: must be used on the thread owning the context!
type GLProbe struct{}

func (GLProbe) NativeBlocks() bool {
	if glfw.GetCurrentContext() == nil {
		slog.Warn("gpu.GLProbe: no current GL context, using uniform struct fallback")
		return false
	}
	return glfw.ExtensionSupported(UniformBufferExtension)
}
