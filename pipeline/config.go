// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of a [Pipeline], usually loaded from
// pipeline.yaml or pipeline.toml in the config directory.
type Config struct {
	// ConfigDir is the directory of the config files, such as daytime.yaml.
	ConfigDir string `yaml:"config_dir" toml:"config_dir"`

	// AutoconfigDir is where generated shader files are written.
	// If empty, they are only kept in memory for shader includes.
	AutoconfigDir string `yaml:"autoconfig_dir" toml:"autoconfig_dir"`

	// Enabled are the ids of the enabled plugins.
	// Plugins that are added but not listed here are disabled.
	Enabled []string `yaml:"enabled" toml:"enabled"`

	// Settings are the settings of each plugin, by plugin id and setting id.
	Settings map[string]map[string]any `yaml:"settings" toml:"settings"`
}

// OpenConfig reads a config from the given YAML or TOML file, by extension.
// A leading ~ in the directories is expanded to the home directory.
func OpenConfig(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if filepath.Ext(filename) == ".toml" {
		err = toml.Unmarshal(b, cfg)
	} else {
		err = yaml.Unmarshal(b, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("pipeline: parsing config %q: %w", filename, err)
	}
	if cfg.ConfigDir, err = homedir.Expand(cfg.ConfigDir); err != nil {
		return nil, err
	}
	if cfg.AutoconfigDir, err = homedir.Expand(cfg.AutoconfigDir); err != nil {
		return nil, err
	}
	return cfg, nil
}
