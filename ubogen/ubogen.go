// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ubogen generates the GLSL declarations of a UBO from a
// YAML definition of its inputs, for shaders built outside a pipeline.
package ubogen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/ordmap"
	"cogentcore.org/renderpipeline/ubo"
	"gopkg.in/yaml.v3"
)

// Config contains the configuration information
// used by ubogen.
type Config struct {

	// the YAML file defining the UBO
	Input string `posarg:"0" required:"+"`

	// the output file; if empty, <name>.inc.glsl in the directory of the input
	Output string

	// whether to generate a native shared uniform block instead of a uniform struct
	Native bool

	// the binding slot of the native uniform block
	Binding int
}

// Definition is the YAML definition of a UBO.
type Definition struct {
	Name   string  `yaml:"name"`
	Inputs []Input `yaml:"inputs"`
}

// Input is an input of a [Definition], with a GLSL type.
// Unknown types fall back to float.
type Input struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// ReadDefinition reads a definition from the given YAML file.
func ReadDefinition(filename string) (*Definition, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	def := &Definition{}
	if err := yaml.Unmarshal(b, def); err != nil {
		return nil, fmt.Errorf("ubogen: parsing %q: %w", filename, err)
	}
	if def.Name == "" {
		return nil, errors.New("ubogen: definition has no name")
	}
	return def, nil
}

// Code returns the generated GLSL code of the definition.
func (def *Definition) Code(native bool, binding int) string {
	inputs := ordmap.New[string, *ubo.Cell]()
	for _, in := range def.Inputs {
		if _, has := inputs.ValueByKeyTry(in.Name); has {
			slog.Warn("ubogen: duplicate input, the last type is used", "ubo", def.Name, "input", in.Name)
		}
		inputs.Add(in.Name, ubo.NewCell(ubo.ParseType(in.Type)))
	}
	return ubo.GenerateCode(def.Name, binding, native, ubo.BuildLayout(inputs))
}

// Generate generates the code of the UBO defined in [Config.Input]
// and writes it to [Config.Output].
func Generate(c *Config) error {
	def, err := ReadDefinition(c.Input)
	if err != nil {
		return err
	}
	out := c.Output
	if out == "" {
		out = filepath.Join(filepath.Dir(c.Input), def.Name+".inc.glsl")
	}
	if err := os.WriteFile(out, []byte(def.Code(c.Native, c.Binding)), 0o644); err != nil {
		return fmt.Errorf("ubogen: writing output: %w", err)
	}
	slog.Info("ubogen: generated", "ubo", def.Name, "inputs", len(def.Inputs), "file", out)
	return nil
}
