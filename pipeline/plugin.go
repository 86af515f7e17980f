// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"cogentcore.org/renderpipeline/daytime"
	"cogentcore.org/renderpipeline/target"
)

// Plugin adds render stages, and optionally time of day settings,
// to a [Pipeline].
type Plugin interface {
	daytime.Plugin

	// Name is the human readable name of the plugin.
	Name() string

	// SetupStages creates the stages of the plugin with [Pipeline.AddStage].
	SetupStages(pl *Pipeline) error

	// PipelineCreated is called once all stages are created and have shaders.
	PipelineCreated(pl *Pipeline) error
}

// Updater is a [Plugin] that updates its inputs every frame.
type Updater interface {
	Update(pl *Pipeline)
}

// Stage is a render stage: a pass rendering into one or more targets.
type Stage interface {
	Name() string

	// RequiredPipes are the pipes that must be produced by earlier stages.
	RequiredPipes() []string

	// RequiredInputs are the pipeline inputs the stage uses.
	RequiredInputs() []string

	// Create makes the targets of the stage.
	Create(pl *Pipeline) error

	// SetShaders loads the shaders of the targets, after code generation.
	SetShaders(pl *Pipeline) error

	// ProducedPipes are the pipes the stage provides to later stages.
	ProducedPipes() map[string]*target.Target

	// Targets are all targets of the stage.
	Targets() []*target.Target
}

// BasePlugin provides the id, name and time of day settings of a plugin,
// for embedding in plugin types.
type BasePlugin struct {
	PluginID   string
	PluginName string
	Settings   map[string]daytime.Setting
}

func (bp *BasePlugin) ID() string {
	return bp.PluginID
}

func (bp *BasePlugin) Name() string {
	return bp.PluginName
}

func (bp *BasePlugin) DaytimeSettings() map[string]daytime.Setting {
	return bp.Settings
}

func (bp *BasePlugin) PipelineCreated(pl *Pipeline) error {
	return nil
}
