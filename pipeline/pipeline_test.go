// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"cogentcore.org/core/math32"
	"cogentcore.org/renderpipeline/daytime"
	"cogentcore.org/renderpipeline/target"
	"cogentcore.org/renderpipeline/ubo"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testShaders = fstest.MapFS{
	"Test.frag": {Data: []byte("#version 430\n#include \"TimeOfDay.inc.glsl\"\nvoid main() {}\n")},
}

type testStage struct {
	name      string
	pipes     []string
	inputs    []string
	produces  []string
	target    *target.Target
	setShader bool
}

func (ts *testStage) Name() string             { return ts.name }
func (ts *testStage) RequiredPipes() []string  { return ts.pipes }
func (ts *testStage) RequiredInputs() []string { return ts.inputs }

func (ts *testStage) Create(pl *Pipeline) error {
	ts.target = target.New(ts.name + ":Main").AddColorTexture(8)
	ts.target.PrepareOffscreenBuffer()
	return nil
}

func (ts *testStage) SetShaders(pl *Pipeline) error {
	code, err := pl.LoadShader(testShaders, "Test.frag")
	if err != nil {
		return err
	}
	ts.target.SetShader(code)
	ts.setShader = true
	return nil
}

func (ts *testStage) ProducedPipes() map[string]*target.Target {
	pp := map[string]*target.Target{}
	for _, p := range ts.produces {
		pp[p] = ts.target
	}
	return pp
}

func (ts *testStage) Targets() []*target.Target {
	return []*target.Target{ts.target}
}

type testPlugin struct {
	BasePlugin
	stages  []*testStage
	updates int
	created bool
}

func newTestPlugin(id string, stages ...*testStage) *testPlugin {
	return &testPlugin{
		BasePlugin: BasePlugin{
			PluginID:   id,
			PluginName: "Test " + id,
			Settings: map[string]daytime.Setting{
				"sun_intensity": daytime.NewCurve([]daytime.Point{{Time: 0.5, Value: 2}}),
				"sun_color": daytime.NewCurve(
					[]daytime.Point{{Time: 0.5, Value: 1}},
					[]daytime.Point{{Time: 0.5, Value: 0.5}},
					[]daytime.Point{{Time: 0.5, Value: 0.25}}),
			},
		},
		stages: stages,
	}
}

func (tp *testPlugin) SetupStages(pl *Pipeline) error {
	for _, s := range tp.stages {
		pl.AddStage(s)
	}
	return nil
}

func (tp *testPlugin) PipelineCreated(pl *Pipeline) error {
	tp.created = true
	return nil
}

func (tp *testPlugin) Update(pl *Pipeline) {
	tp.updates++
}

func newTestPipeline(t *testing.T, cfg *Config, native bool) (*Pipeline, *testPlugin, *testStage) {
	t.Helper()
	stage := &testStage{name: "Test", pipes: []string{ShadedScenePipe}, inputs: []string{"DefaultSkydome"}, produces: []string{ShadedScenePipe}}
	tp := newTestPlugin("sky", stage)
	if cfg.Enabled == nil {
		cfg.Enabled = []string{"sky"}
	}
	pl := New(cfg, ubo.NewBindingAllocator(), ubo.StaticProbe(native))
	pl.Inputs["DefaultSkydome"] = "skydome"
	pl.AddPlugin(tp)
	return pl, tp, stage
}

func TestSetup(t *testing.T) {
	pl, tp, stage := newTestPipeline(t, &Config{}, true)
	require.NoError(t, pl.Setup())

	assert.Equal(t, 0, pl.MainUBO.BindingID())
	assert.Equal(t, 1, pl.TimeOfDay.BindingID())
	assert.Equal(t, []string{"sky.sun_color", "sky.sun_intensity"}, pl.TimeOfDay.Names())
	assert.True(t, tp.created)
	assert.True(t, stage.setShader)
	assert.Contains(t, stage.target.Shader, "layout(shared, binding=1) uniform TimeOfDay_UBO {")
	assert.Contains(t, stage.target.Shader, "    vec3 sun_color;\n")
	assert.NotContains(t, stage.target.Shader, "#pragma once")

	shaded, ok := pl.Pipe(ShadedScenePipe)
	require.True(t, ok)
	assert.Same(t, stage.target, shaded)
	in, ok := stage.target.ShaderInput("DefaultSkydome")
	require.True(t, ok)
	assert.Equal(t, "skydome", in)
	assert.Len(t, pl.Targets(), 3)

	assert.Error(t, pl.Setup())
}

func TestDisabledPlugin(t *testing.T) {
	pl, tp, stage := newTestPipeline(t, &Config{Enabled: []string{"other"}}, false)
	require.NoError(t, pl.Setup())
	assert.True(t, pl.HasPlugin("sky"))
	assert.False(t, pl.IsEnabled("sky"))
	assert.Nil(t, pl.Plugin("sky"))
	assert.Nil(t, pl.Plugin("unknown"))
	assert.Empty(t, pl.Plugins())
	assert.False(t, tp.created)
	assert.Nil(t, stage.target)
	assert.Equal(t, 0, pl.TimeOfDay.Len())
}

func TestMissingRequirements(t *testing.T) {
	pl, _, stage := newTestPipeline(t, &Config{}, false)
	stage.pipes = []string{"Volumetrics"}
	err := pl.Setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `requires pipe "Volumetrics"`)

	pl, _, _ = newTestPipeline(t, &Config{}, false)
	delete(pl.Inputs, "DefaultSkydome")
	err = pl.Setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `requires input "DefaultSkydome"`)
}

func TestUpdate(t *testing.T) {
	pl, tp, stage := newTestPipeline(t, &Config{}, false)
	require.NoError(t, pl.Setup())
	pl.DaytimeValue = 0.5
	pl.SetCamera(math32.Vec3(1, 2, 3), *math32.Identity4())
	pl.Update(0.25)
	pl.Update(0.25)

	tg := stage.target
	fi, ok := target.InputValue[int32](tg, "MainSceneData.frame_index")
	require.True(t, ok)
	assert.Equal(t, int32(2), fi)
	ft, _ := target.InputValue[float32](tg, "MainSceneData.frame_time")
	assert.Equal(t, float32(0.5), ft)
	pos, _ := target.InputValue[math32.Vector3](tg, "MainSceneData.camera_pos")
	assert.Equal(t, math32.Vec3(1, 2, 3), pos)
	vp, ok := target.InputValue[math32.Matrix4](tg, "MainSceneData.view_proj_mat_no_jitter")
	require.True(t, ok)
	assert.Equal(t, *math32.Identity4(), vp)
	si, _ := target.InputValue[float32](tg, "TimeOfDay.sky.sun_intensity")
	assert.Equal(t, float32(2), si)
	sc, _ := target.InputValue[math32.Vector3](tg, "TimeOfDay.sky.sun_color")
	assert.Equal(t, math32.Vec3(1, 0.5, 0.25), sc)
	assert.Equal(t, 2, tp.updates)

	// bound inputs are live
	pl.Update(0.25)
	fi, _ = target.InputValue[int32](tg, "MainSceneData.frame_index")
	assert.Equal(t, int32(3), fi)
}

func TestSimpleUBO(t *testing.T) {
	pl, _, stage := newTestPipeline(t, &Config{}, true)
	su := ubo.NewSimpleUBO("ColorCorrection")
	su.AddInput("lut", "lut-texture")
	pl.AddSimpleUBO(su)
	require.NoError(t, pl.Setup())
	pl.Update(0)
	in, ok := stage.target.ShaderInput("ColorCorrection.lut")
	require.True(t, ok)
	assert.Equal(t, "lut-texture", in)
	_, ok = stage.target.ShaderInput("MainSceneData_UBO.frame_index")
	assert.True(t, ok)
}

func TestGenerateAutoconfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "autoconfig")
	pl, _, _ := newTestPipeline(t, &Config{AutoconfigDir: dir}, true)
	require.NoError(t, pl.Setup())
	for _, u := range pl.UBOs() {
		b, err := os.ReadFile(filepath.Join(dir, AutoconfigFile(u.Name())))
		require.NoError(t, err)
		assert.Equal(t, u.GenerateShaderCode(), string(b))
	}
}

func TestLoadShaderMissing(t *testing.T) {
	pl, _, _ := newTestPipeline(t, &Config{}, false)
	_, err := pl.LoadShader(testShaders, "Missing.frag")
	assert.Error(t, err)
}

func TestOverrides(t *testing.T) {
	dir := t.TempDir()
	data := "control_points:\n    sky:\n        sun_intensity: [[[0.5, 3]]]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, daytime.Filename), []byte(data), 0o644))
	pl, tp, stage := newTestPipeline(t, &Config{ConfigDir: dir}, false)
	require.NoError(t, pl.Setup())
	assert.True(t, tp.Settings["sun_intensity"].WasModified())
	pl.Update(0)
	si, _ := target.InputValue[float32](stage.target, "TimeOfDay.sky.sun_intensity")
	assert.Equal(t, float32(3), si)

	require.NoError(t, pl.Watch())
	defer pl.Close()
	data = "control_points:\n    sky:\n        sun_intensity: [[[0.5, 4]]]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, daytime.Filename), []byte(data), 0o644))
	assert.Eventually(t, func() bool {
		pl.Update(0)
		si, _ := target.InputValue[float32](stage.target, "TimeOfDay.sky.sun_intensity")
		return si == 4
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSettings(t *testing.T) {
	cfg := &Config{Settings: map[string]map[string]any{
		"sky": {"use_sharpen": true, "name": "x", "scale": 2, "scale64": int64(3), "gain": 0.5},
	}}
	pl, _, _ := newTestPipeline(t, cfg, false)
	assert.True(t, pl.SettingBool("sky", "use_sharpen", false))
	assert.True(t, pl.SettingBool("sky", "missing", true))
	assert.False(t, pl.SettingBool("sky", "name", false))
	assert.Equal(t, float32(2), pl.SettingFloat("sky", "scale", 1))
	assert.Equal(t, float32(3), pl.SettingFloat("sky", "scale64", 1))
	assert.Equal(t, float32(0.5), pl.SettingFloat("sky", "gain", 1))
	assert.Equal(t, float32(1), pl.SettingFloat("sky", "name", 1))
	assert.Equal(t, float32(1), pl.SettingFloat("sky", "missing", 1))
	_, ok := pl.Setting("other", "use_sharpen")
	assert.False(t, ok)
}

func TestOpenConfig(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "pipeline.yaml")
	data := "config_dir: config\nenabled: [scattering, color_correction]\nsettings:\n  color_correction:\n    use_sharpen: true\n"
	require.NoError(t, os.WriteFile(fn, []byte(data), 0o644))
	cfg, err := OpenConfig(fn)
	require.NoError(t, err)
	assert.Equal(t, "config", cfg.ConfigDir)
	assert.Equal(t, []string{"scattering", "color_correction"}, cfg.Enabled)
	assert.Equal(t, true, cfg.Settings["color_correction"]["use_sharpen"])

	_, err = OpenConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOpenConfigTOML(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "pipeline.toml")
	data := "config_dir = \"~/rp\"\nenabled = [\"scattering\"]\n\n[settings.color_correction]\nuse_sharpen = true\nexposure_scale = 2\n"
	require.NoError(t, os.WriteFile(fn, []byte(data), 0o644))
	cfg, err := OpenConfig(fn)
	require.NoError(t, err)
	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "rp"), cfg.ConfigDir)
	assert.Equal(t, []string{"scattering"}, cfg.Enabled)
	assert.Equal(t, true, cfg.Settings["color_correction"]["use_sharpen"])
	pl := New(cfg, ubo.NewBindingAllocator(), nil)
	assert.Equal(t, float32(2), pl.SettingFloat("color_correction", "exposure_scale", 1))
}
