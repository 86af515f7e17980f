// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline is the host of the render stages: it sets up the
// stages of the enabled plugins, generates the shader code of the UBOs,
// and each frame updates the UBOs and binds them to all render targets.
package pipeline

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/math32"
	"cogentcore.org/renderpipeline/daytime"
	"cogentcore.org/renderpipeline/shaderinc"
	"cogentcore.org/renderpipeline/target"
	"cogentcore.org/renderpipeline/ubo"
	"golang.org/x/exp/maps"
)

// Names of the UBOs owned by the pipeline.
const (
	MainUBOName      = "MainSceneData"
	TimeOfDayUBOName = "TimeOfDay"
)

// Names of the pipes provided by the pipeline itself.
const (
	GBufferPipe     = "GBuffer"
	ShadedScenePipe = "ShadedScene"
)

// Pipeline owns the plugins, stages and UBOs of the renderer.
// Setup and the per frame calls must all happen on the render thread.
type Pipeline struct {
	// Config is the configuration.
	Config *Config

	// Bindings allocates the binding slots of the UBOs.
	Bindings *ubo.BindingAllocator

	// Probe detects native uniform block support.
	Probe ubo.Probe

	// MainUBO holds the per frame scene data shared by all stages.
	MainUBO *ubo.ShaderUBO

	// TimeOfDay holds the current values of the time of day settings
	// of all enabled plugins, as plugin.setting inputs.
	TimeOfDay *ubo.ShaderUBO

	// Includes resolves the includes of shaders, including the
	// generated UBO files.
	Includes *shaderinc.Resolver

	// Overrides are the time of day overrides of the plugin settings.
	Overrides *daytime.Overrides

	// Inputs are the named pipeline inputs, such as the default skydome.
	Inputs map[string]any

	// DaytimeValue is the current time of day, in [0, 1].
	DaytimeValue float64

	base       []*target.Target
	plugins    []Plugin
	enabled    map[string]bool
	stages     []Stage
	pipes      map[string]*target.Target
	ubos       []*ubo.ShaderUBO
	simpleUBOs []*ubo.SimpleUBO
	curves     []curveInput
	watcher    *daytime.Watcher
	created    bool
}

// curveInput connects a time of day curve to its TimeOfDay input.
type curveInput struct {
	curve *daytime.Curve
	cell  *ubo.Cell
}

// New returns a new pipeline for the given config. A nil bindings uses
// [ubo.DefaultBindings] and a nil probe uses [ubo.DefaultProbe].
func New(cfg *Config, bindings *ubo.BindingAllocator, probe ubo.Probe) *Pipeline {
	if cfg == nil {
		cfg = &Config{}
	}
	if bindings == nil {
		bindings = ubo.DefaultBindings
	}
	if probe == nil {
		probe = ubo.DefaultProbe
	}
	pl := &Pipeline{
		Config:   cfg,
		Bindings: bindings,
		Probe:    probe,
		Includes: shaderinc.NewResolver(nil, ""),
		Inputs:   make(map[string]any),
		enabled:  make(map[string]bool),
		base: []*target.Target{
			target.New(GBufferPipe).AddColorTexture(16),
			target.New(ShadedScenePipe).AddColorTexture(16),
		},
		pipes: make(map[string]*target.Target),
	}
	for _, tg := range pl.base {
		pl.pipes[tg.Name] = tg
	}
	for _, id := range cfg.Enabled {
		pl.enabled[id] = true
	}
	pl.Overrides = daytime.New(filepath.Join(cfg.ConfigDir, daytime.Filename), pl)
	pl.MainUBO = pl.NewUBO(MainUBOName)
	pl.MainUBO.RegisterInput("camera_pos", ubo.Vector3)
	pl.MainUBO.RegisterInput("view_proj_mat_no_jitter", ubo.Matrix4)
	pl.MainUBO.RegisterInput("frame_delta", ubo.Float)
	pl.MainUBO.RegisterInput("frame_time", ubo.Float)
	pl.MainUBO.RegisterInput("time_of_day", ubo.Float)
	pl.MainUBO.RegisterInput("frame_index", ubo.Int)
	pl.TimeOfDay = pl.NewUBO(TimeOfDayUBOName)
	return pl
}

// AddPlugin adds a plugin, which is enabled if its id is listed in
// [Config.Enabled]. Plugins must be added before [Pipeline.Setup].
func (pl *Pipeline) AddPlugin(p Plugin) {
	pl.plugins = append(pl.plugins, p)
	slog.Debug("pipeline: added plugin", "plugin", p.ID(), "enabled", pl.enabled[p.ID()])
}

// HasPlugin returns whether a plugin with the id was added, enabled or not.
func (pl *Pipeline) HasPlugin(id string) bool {
	return slices.ContainsFunc(pl.plugins, func(p Plugin) bool { return p.ID() == id })
}

// IsEnabled returns whether the plugin with the id is enabled.
func (pl *Pipeline) IsEnabled(id string) bool {
	return pl.enabled[id] && pl.HasPlugin(id)
}

// EnabledPlugin returns the enabled plugin with the id, or nil.
func (pl *Pipeline) EnabledPlugin(id string) Plugin {
	if !pl.enabled[id] {
		return nil
	}
	for _, p := range pl.plugins {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// Plugin returns the enabled plugin with the id, or nil if it is
// disabled or unknown.
func (pl *Pipeline) Plugin(id string) daytime.Plugin {
	p := pl.EnabledPlugin(id)
	if p == nil {
		return nil
	}
	return p
}

// Plugins returns all enabled plugins, in the order they were added.
func (pl *Pipeline) Plugins() []daytime.Plugin {
	var ps []daytime.Plugin
	for _, p := range pl.enabledPlugins() {
		ps = append(ps, p)
	}
	return ps
}

func (pl *Pipeline) enabledPlugins() []Plugin {
	var ps []Plugin
	for _, p := range pl.plugins {
		if pl.enabled[p.ID()] {
			ps = append(ps, p)
		}
	}
	return ps
}

// Setting returns the configured value of a plugin setting.
func (pl *Pipeline) Setting(pluginID, key string) (any, bool) {
	st, ok := pl.Config.Settings[pluginID]
	if !ok {
		return nil, false
	}
	v, ok := st[key]
	return v, ok
}

// SettingBool returns the configured boolean plugin setting, or def
// if it is not set or not a boolean.
func (pl *Pipeline) SettingBool(pluginID, key string, def bool) bool {
	v, ok := pl.Setting(pluginID, key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		slog.Warn("pipeline: setting is not a boolean", "plugin", pluginID, "setting", key, "value", v)
		return def
	}
	return b
}

// SettingFloat returns the configured numeric plugin setting, or def
// if it is not set or not a number. Integers are accepted, as YAML and
// TOML decode whole numbers as integers.
func (pl *Pipeline) SettingFloat(pluginID, key string, def float32) float32 {
	v, ok := pl.Setting(pluginID, key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return float32(x)
	case float32:
		return x
	case int:
		return float32(x)
	case int64:
		return float32(x)
	case uint64:
		return float32(x)
	}
	slog.Warn("pipeline: setting is not a number", "plugin", pluginID, "setting", key, "value", v)
	return def
}

// NewUBO returns a new ShaderUBO using the bindings and probe of the
// pipeline. Its code is generated and it is bound to all targets.
func (pl *Pipeline) NewUBO(name string) *ubo.ShaderUBO {
	u := ubo.NewShaderUBO(name, pl.Bindings, pl.Probe)
	pl.ubos = append(pl.ubos, u)
	return u
}

// UBOs returns all ShaderUBOs of the pipeline.
func (pl *Pipeline) UBOs() []*ubo.ShaderUBO {
	return pl.ubos
}

// AddSimpleUBO adds a SimpleUBO, which is bound to all targets.
func (pl *Pipeline) AddSimpleUBO(su *ubo.SimpleUBO) {
	pl.simpleUBOs = append(pl.simpleUBOs, su)
}

// AddStage adds a stage, called by plugins in [Plugin.SetupStages].
// Stages are created in the order they are added.
func (pl *Pipeline) AddStage(s Stage) {
	pl.stages = append(pl.stages, s)
}

// Stages returns all stages, in order.
func (pl *Pipeline) Stages() []Stage {
	return pl.stages
}

// Pipe returns the target of the named pipe, as produced by the last
// stage providing it.
func (pl *Pipeline) Pipe(name string) (*target.Target, bool) {
	tg, ok := pl.pipes[name]
	return tg, ok
}

// Targets returns the targets of the pipeline pipes and all stages.
func (pl *Pipeline) Targets() []*target.Target {
	tgs := slices.Clone(pl.base)
	for _, s := range pl.stages {
		tgs = append(tgs, s.Targets()...)
	}
	return tgs
}

// Setup sets up the stages of all enabled plugins, generates the UBO code,
// loads the shaders and the time of day overrides. It must be called once.
func (pl *Pipeline) Setup() error {
	if pl.created {
		return errors.New("pipeline: already set up")
	}
	for _, p := range pl.enabledPlugins() {
		if err := p.SetupStages(pl); err != nil {
			return fmt.Errorf("pipeline: setting up stages of plugin %q: %w", p.ID(), err)
		}
	}
	for _, s := range pl.stages {
		if err := pl.createStage(s); err != nil {
			return err
		}
	}
	pl.registerCurves()
	if err := pl.GenerateAutoconfig(); err != nil {
		return err
	}
	for _, s := range pl.stages {
		if err := s.SetShaders(pl); err != nil {
			return fmt.Errorf("pipeline: setting shaders of stage %q: %w", s.Name(), err)
		}
	}
	for _, p := range pl.enabledPlugins() {
		if err := p.PipelineCreated(pl); err != nil {
			return fmt.Errorf("pipeline: plugin %q: %w", p.ID(), err)
		}
	}
	if pl.Config.ConfigDir != "" {
		pl.Overrides.Load()
	}
	pl.created = true
	return nil
}

func (pl *Pipeline) createStage(s Stage) error {
	for _, pipe := range s.RequiredPipes() {
		if _, ok := pl.pipes[pipe]; !ok {
			return fmt.Errorf("pipeline: stage %q requires pipe %q, which no earlier stage produces", s.Name(), pipe)
		}
	}
	for _, in := range s.RequiredInputs() {
		if _, ok := pl.Inputs[in]; !ok {
			return fmt.Errorf("pipeline: stage %q requires input %q, which is not set", s.Name(), in)
		}
	}
	if err := s.Create(pl); err != nil {
		return fmt.Errorf("pipeline: creating stage %q: %w", s.Name(), err)
	}
	for _, tg := range s.Targets() {
		for _, pipe := range s.RequiredPipes() {
			tg.SetShaderInput(pipe, pl.pipes[pipe])
		}
		for _, in := range s.RequiredInputs() {
			tg.SetShaderInput(in, pl.Inputs[in])
		}
	}
	maps.Copy(pl.pipes, s.ProducedPipes())
	slog.Debug("pipeline: created stage", "stage", s.Name(), "targets", len(s.Targets()))
	return nil
}

// registerCurves adds a TimeOfDay input for every time of day curve
// of the enabled plugins: a float for one channel, a vec3 for three.
func (pl *Pipeline) registerCurves() {
	for _, p := range pl.enabledPlugins() {
		settings := p.DaytimeSettings()
		ids := maps.Keys(settings)
		slices.Sort(ids)
		for _, id := range ids {
			cv, ok := settings[id].(*daytime.Curve)
			if !ok {
				continue
			}
			name := p.ID() + "." + id
			var tp ubo.Types
			switch len(cv.Channels) {
			case 1:
				tp = ubo.Float
			case 3:
				tp = ubo.Vector3
			default:
				slog.Warn("pipeline: unsupported number of curve channels", "input", name, "channels", len(cv.Channels))
				continue
			}
			pl.curves = append(pl.curves, curveInput{curve: cv, cell: pl.TimeOfDay.RegisterInput(name, tp)})
		}
	}
}

// AutoconfigFile returns the name of the generated shader file of a UBO.
func AutoconfigFile(uboName string) string {
	return uboName + ".inc.glsl"
}

// GenerateAutoconfig generates the shader code of all UBOs, making it
// available to shader includes as <name>.inc.glsl and writing it to
// [Config.AutoconfigDir] if set.
func (pl *Pipeline) GenerateAutoconfig() error {
	dir := pl.Config.AutoconfigDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pipeline: creating autoconfig dir: %w", err)
		}
	}
	for _, u := range pl.ubos {
		code := u.GenerateShaderCode()
		fn := AutoconfigFile(u.Name())
		pl.Includes.SetFile(fn, code)
		if dir == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, fn), []byte(code), 0o644); err != nil {
			return fmt.Errorf("pipeline: writing generated code of %q: %w", u.Name(), err)
		}
	}
	return nil
}

// LoadShader reads the named shader from fsys and resolves its includes,
// including the generated UBO files.
func (pl *Pipeline) LoadShader(fsys fs.FS, name string) (string, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("pipeline: loading shader: %w", err)
	}
	return pl.Includes.WithFS(fsys).Resolve(string(b)), nil
}

// SetCamera sets the camera inputs of the main UBO.
func (pl *Pipeline) SetCamera(pos math32.Vector3, viewProj math32.Matrix4) {
	errors.Log(ubo.SetInput(pl.MainUBO, "camera_pos", pos))
	errors.Log(ubo.SetInput(pl.MainUBO, "view_proj_mat_no_jitter", viewProj))
}

// Update is called every frame with the time since the last frame, in
// seconds. It applies reloaded overrides, updates the UBO inputs and
// then binds all UBOs to all targets.
func (pl *Pipeline) Update(dt float32) {
	if pl.watcher != nil {
		pl.watcher.Poll()
	}
	mu := pl.MainUBO
	ft := errors.Log1(ubo.GetInput[float32](mu, "frame_time"))
	fi := errors.Log1(ubo.GetInput[int32](mu, "frame_index"))
	errors.Log(ubo.SetInput(mu, "frame_delta", dt))
	errors.Log(ubo.SetInput(mu, "frame_time", ft+dt))
	errors.Log(ubo.SetInput(mu, "time_of_day", float32(pl.DaytimeValue)))
	errors.Log(ubo.SetInput(mu, "frame_index", fi+1))
	for _, ci := range pl.curves {
		t := pl.DaytimeValue
		cv := ci.curve
		if ci.cell.Type == ubo.Vector3 {
			errors.Log(ubo.SetCell(ci.cell, math32.Vec3(float32(cv.Value(0, t)), float32(cv.Value(1, t)), float32(cv.Value(2, t)))))
		} else {
			errors.Log(ubo.SetCell(ci.cell, float32(cv.Value(0, t))))
		}
	}
	for _, p := range pl.enabledPlugins() {
		if up, ok := p.(Updater); ok {
			up.Update(pl)
		}
	}
	pl.Bind()
}

// Bind binds all UBOs to all targets.
func (pl *Pipeline) Bind() {
	for _, tg := range pl.Targets() {
		for _, u := range pl.ubos {
			u.BindTo(tg)
		}
		for _, su := range pl.simpleUBOs {
			su.BindTo(tg)
		}
	}
}

// Watch starts reloading the time of day overrides when the file
// changes. Reloads are applied in [Pipeline.Update].
func (pl *Pipeline) Watch() error {
	if pl.watcher != nil {
		return nil
	}
	w, err := pl.Overrides.Watch()
	if err != nil {
		return err
	}
	pl.watcher = w
	return nil
}

// Close stops watching the overrides file.
func (pl *Pipeline) Close() error {
	if pl.watcher == nil {
		return nil
	}
	err := pl.watcher.Close()
	pl.watcher = nil
	return err
}
