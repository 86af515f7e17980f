// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scattering is a plugin applying atmospheric scattering to
// the shaded scene, with the sun intensity and color set by time of day.
package scattering

import (
	"embed"

	"cogentcore.org/renderpipeline/daytime"
	"cogentcore.org/renderpipeline/pipeline"
	"cogentcore.org/renderpipeline/target"
)

// ID is the id of the plugin.
const ID = "scattering"

//go:embed shader/*.frag
var shaders embed.FS

// Plugin is the scattering plugin.
type Plugin struct {
	pipeline.BasePlugin

	// Stage is the stage applying the scattering, set by SetupStages.
	Stage *Stage
}

// New returns a new scattering plugin with the default curves.
func New() *Plugin {
	return &Plugin{BasePlugin: pipeline.BasePlugin{
		PluginID:   ID,
		PluginName: "Atmospheric Scattering",
		Settings: map[string]daytime.Setting{
			"sun_intensity": daytime.NewCurve([]daytime.Point{{Time: 0.25, Value: 0}, {Time: 0.5, Value: 1}, {Time: 0.75, Value: 0}}),
			"sun_color": daytime.NewCurve(
				[]daytime.Point{{Time: 0.5, Value: 1}},
				[]daytime.Point{{Time: 0.5, Value: 0.95}},
				[]daytime.Point{{Time: 0.5, Value: 0.85}}),
		},
	}}
}

func (p *Plugin) SetupStages(pl *pipeline.Pipeline) error {
	p.Stage = &Stage{}
	pl.AddStage(p.Stage)
	return nil
}

// Stage displays the scattering using the precomputed sky.
type Stage struct {
	target *target.Target
}

func (st *Stage) Name() string {
	return "ScatteringStage"
}

func (st *Stage) RequiredPipes() []string {
	return []string{pipeline.ShadedScenePipe, pipeline.GBufferPipe}
}

func (st *Stage) RequiredInputs() []string {
	return []string{"DefaultSkydome"}
}

func (st *Stage) Create(pl *pipeline.Pipeline) error {
	st.target = target.New("Scattering:ApplyScattering").AddColorTexture(16)
	st.target.HasColorAlpha = true
	st.target.PrepareOffscreenBuffer()
	return nil
}

func (st *Stage) SetShaders(pl *pipeline.Pipeline) error {
	code, err := pl.LoadShader(shaders, "shader/ApplyScattering.frag")
	if err != nil {
		return err
	}
	st.target.SetShader(code)
	return nil
}

func (st *Stage) ProducedPipes() map[string]*target.Target {
	return map[string]*target.Target{pipeline.ShadedScenePipe: st.target}
}

func (st *Stage) Targets() []*target.Target {
	return []*target.Target{st.target}
}
