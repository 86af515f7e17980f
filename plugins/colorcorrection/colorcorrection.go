// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package colorcorrection is a plugin for tonemapping and color grading
// through a lookup table, with optional sharpening and auto exposure.
package colorcorrection

import (
	"embed"

	"cogentcore.org/renderpipeline/pipeline"
	"cogentcore.org/renderpipeline/target"
	"cogentcore.org/renderpipeline/ubo"
)

// ID is the id of the plugin.
const ID = "color_correction"

// LUTSize is the size of the default lookup table.
const LUTSize = 64

// ColorCorrectedPipe is the pipe of the color corrected scene.
const ColorCorrectedPipe = "ColorCorrectedScene"

//go:embed shader
var shaders embed.FS

// Plugin is the color correction plugin.
type Plugin struct {
	pipeline.BasePlugin

	// Stage is the color correction stage.
	Stage *Stage

	// Sharpen is the sharpen stage, if enabled by use_sharpen.
	Sharpen *Stage

	// AutoExposure is the auto exposure stage, if enabled by use_auto_exposure.
	AutoExposure *Stage

	// Inputs are the plain inputs of the plugin, as ColorCorrection.<name>.
	Inputs *ubo.SimpleUBO
}

// New returns a new color correction plugin.
func New() *Plugin {
	return &Plugin{BasePlugin: pipeline.BasePlugin{
		PluginID:   ID,
		PluginName: "Color Correction",
	}}
}

func (p *Plugin) SetupStages(pl *pipeline.Pipeline) error {
	p.Stage = &Stage{
		name:     "ColorCorrectionStage",
		target:   "ColorCorrection:Main",
		shader:   "shader/ColorCorrection.frag",
		pipes:    []string{pipeline.ShadedScenePipe},
		produces: ColorCorrectedPipe,
	}
	pl.AddStage(p.Stage)
	if pl.SettingBool(ID, "use_sharpen", false) {
		p.Sharpen = &Stage{
			name:     "SharpenStage",
			target:   "ColorCorrection:Sharpen",
			shader:   "shader/Sharpen.frag",
			pipes:    []string{ColorCorrectedPipe},
			produces: ColorCorrectedPipe,
		}
		pl.AddStage(p.Sharpen)
	}
	if pl.SettingBool(ID, "use_auto_exposure", false) {
		p.AutoExposure = &Stage{
			name:     "AutoExposureStage",
			target:   "ColorCorrection:AutoExposure",
			shader:   "shader/AutoExposure.frag",
			pipes:    []string{pipeline.ShadedScenePipe},
			produces: "Exposure",
		}
		pl.AddStage(p.AutoExposure)
	}
	p.Inputs = ubo.NewSimpleUBO("ColorCorrection")
	p.Inputs.AddInput("exposure_scale", pl.SettingFloat(ID, "exposure_scale", 1))
	pl.AddSimpleUBO(p.Inputs)
	return nil
}

// PipelineCreated loads the default lookup table.
func (p *Plugin) PipelineCreated(pl *pipeline.Pipeline) error {
	lut, err := OpenLUT(shaders, "shader/default_lut.png", LUTSize)
	if err != nil {
		return err
	}
	p.Stage.tg.SetShaderInput("ColorLUT", lut)
	return nil
}

// Stage is a stage rendering a single shader into one target.
type Stage struct {
	name     string
	target   string
	shader   string
	pipes    []string
	produces string
	tg       *target.Target
}

func (st *Stage) Name() string {
	return st.name
}

func (st *Stage) RequiredPipes() []string {
	return st.pipes
}

func (st *Stage) RequiredInputs() []string {
	return nil
}

func (st *Stage) Create(pl *pipeline.Pipeline) error {
	st.tg = target.New(st.target).AddColorTexture(16)
	st.tg.PrepareOffscreenBuffer()
	return nil
}

func (st *Stage) SetShaders(pl *pipeline.Pipeline) error {
	code, err := pl.LoadShader(shaders, st.shader)
	if err != nil {
		return err
	}
	st.tg.SetShader(code)
	return nil
}

func (st *Stage) ProducedPipes() map[string]*target.Target {
	return map[string]*target.Target{st.produces: st.tg}
}

func (st *Stage) Targets() []*target.Target {
	return []*target.Target{st.tg}
}
