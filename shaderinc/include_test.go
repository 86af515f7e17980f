// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shaderinc

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"cogentcore.org/renderpipeline/ubo"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	fsys := fstest.MapFS{
		"Shader/includes/common.inc.glsl": {Data: []byte("#pragma once\nconst float PI = 3.14159;")},
		"Shader/includes/noise.inc.glsl":  {Data: []byte("#include \"common.inc.glsl\"\nfloat noise(vec2 p);")},
	}
	rs := NewResolver(fsys, "Shader/includes")
	code := "#version 430\n#include \"common.inc.glsl\"\n#include \"noise.inc.glsl\"\nvoid main() {}"
	res := rs.Resolve(code)
	assert.Equal(t, 1, strings.Count(res, "const float PI"))
	assert.Contains(t, res, "float noise(vec2 p);")
	assert.Contains(t, res, `// #include "noise.inc.glsl"`)
	assert.NotContains(t, res, "#pragma once")
	assert.True(t, strings.HasPrefix(res, "#version 430\n"))
}

func TestResolveGenerated(t *testing.T) {
	u := ubo.NewShaderUBO("MainSceneData", ubo.NewBindingAllocator(), ubo.StaticProbe(true))
	u.RegisterInput("camera_pos", ubo.Vector3)
	rs := NewResolver(nil, "")
	rs.SetFile("/$$rptemp/$$main_scene_data.inc.glsl", u.GenerateShaderCode())
	res := rs.Resolve("#include \"/$$rptemp/$$main_scene_data.inc.glsl\"\n#include \"/$$rptemp/$$main_scene_data.inc.glsl\"\nvoid main() {}")
	assert.Equal(t, 1, strings.Count(res, "uniform MainSceneData_UBO"))
	assert.Contains(t, res, "vec3 camera_pos;")
}

func TestResolveMissing(t *testing.T) {
	rs := NewResolver(fstest.MapFS{}, "")
	res := rs.Resolve("#include \"nope.glsl\"\n#include \"broken\nvoid main() {}")
	assert.Equal(t, "// #include \"nope.glsl\"\n// #include \"broken\nvoid main() {}", res)
}

func TestResolveCycle(t *testing.T) {
	fsys := fstest.MapFS{
		"a.glsl": {Data: []byte("#include \"b.glsl\"\nint a;")},
		"b.glsl": {Data: []byte("#include \"a.glsl\"\nint b;")},
	}
	res := NewResolver(fsys, "").Resolve("#include \"a.glsl\"")
	assert.Contains(t, res, "int a;")
	assert.Contains(t, res, "int b;")
}

func TestWithFS(t *testing.T) {
	rs := NewResolver(nil, "")
	prs := rs.WithFS(fstest.MapFS{"stage.frag.glsl": {Data: []byte("#include \"Gen.inc.glsl\"\nvoid main() {}")}})
	rs.SetFile("Gen.inc.glsl", "#pragma once\nuniform float x;")
	b, err := fs.ReadFile(prs.FS, "stage.frag.glsl")
	assert.NoError(t, err)
	assert.Contains(t, prs.Resolve(string(b)), "uniform float x;")
}
