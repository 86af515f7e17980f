// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package daytime loads and saves the time of day overrides of plugin
// settings, stored as curves of control points in a YAML file.
package daytime

import (
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/fsx"
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
)

// Filename is the name of the overrides file in the config directory.
const Filename = "daytime.yaml"

// Header starts every written overrides file.
const Header = "\n\n" +
	"# This file was autogenerated by the Time of Day Editor\n" +
	"# Please avoid editing this file manually, instead use the\n" +
	"# Time of Day Editor located at Toolkit/DayTimeEditor/.\n" +
	"# Any comments and formattings in this file will be lost!\n" +
	"\n\n"

// Setting is a time of day setting of a plugin, such as a [Curve].
type Setting interface {
	// WasModified returns whether the setting differs from its default.
	WasModified() bool

	// Serialize returns the setting as a YAML flow value.
	Serialize() string

	// Apply sets the setting from its decoded YAML value.
	Apply(v any) error
}

// Plugin is a plugin with time of day settings.
type Plugin interface {
	ID() string

	// DaytimeSettings returns the settings by id.
	DaytimeSettings() map[string]Setting
}

// Plugins gives access to the plugins of a pipeline.
type Plugins interface {
	// HasPlugin returns whether a plugin with the id is known, enabled or not.
	HasPlugin(id string) bool

	// Plugin returns the enabled plugin with the id, or nil if disabled.
	Plugin(id string) Plugin

	// Plugins returns all enabled plugins, in load order.
	Plugins() []Plugin
}

// Overrides manages the time of day overrides file of a set of plugins.
type Overrides struct {
	// Path is the overrides file.
	Path string

	// Plugins are the plugins the overrides apply to.
	Plugins Plugins

	// Retries is the number of times a failed write is retried.
	Retries uint64

	// RetryInterval is the initial wait before retrying a failed write.
	RetryInterval time.Duration
}

// New returns overrides for the given file and plugins.
func New(path string, plugins Plugins) *Overrides {
	return &Overrides{Path: path, Plugins: plugins, Retries: 2, RetryInterval: 50 * time.Millisecond}
}

// Load reads the overrides file and applies the control points to the
// settings of the plugins. A missing file or a file without the
// control_points root is logged and returns false. Unknown plugins and
// invalid settings are logged and skipped; disabled plugins are skipped.
func (ov *Overrides) Load() bool {
	if !errors.Log1(fsx.FileExists(ov.Path)) {
		slog.Error("daytime: could not load overrides, file not found", "file", ov.Path)
		return false
	}
	b, err := os.ReadFile(ov.Path)
	if err != nil {
		slog.Error("daytime: could not read overrides", "file", ov.Path, "err", err)
		return false
	}
	var root map[string]any
	if err := yaml.Unmarshal(b, &root); err != nil {
		slog.Error("daytime: could not parse overrides", "file", ov.Path, "err", err)
		return false
	}
	cps, has := root["control_points"]
	if !has {
		slog.Error("daytime: root entry 'control_points' not found", "file", ov.Path)
		return false
	}
	if cps == nil {
		return true
	}
	plugins, ok := cps.(map[string]any)
	if !ok {
		slog.Error("daytime: 'control_points' must be a mapping", "file", ov.Path)
		return false
	}
	ov.applyControlPoints(plugins)
	return true
}

func (ov *Overrides) applyControlPoints(plugins map[string]any) {
	ids := maps.Keys(plugins)
	slices.Sort(ids)
	for _, id := range ids {
		if !ov.Plugins.HasPlugin(id) {
			slog.Warn("daytime: skipping invalid plugin", "plugin", id)
			continue
		}
		pl := ov.Plugins.Plugin(id)
		if pl == nil {
			continue
		}
		cvs, ok := plugins[id].(map[string]any)
		if !ok {
			continue
		}
		settings := pl.DaytimeSettings()
		for sid, cv := range cvs {
			st, ok := settings[sid]
			if !ok {
				slog.Warn("daytime: skipping unknown setting", "plugin", id, "setting", sid, "suggestion", closestSetting(sid, settings))
				continue
			}
			if err := st.Apply(cv); err != nil {
				slog.Warn("daytime: skipping invalid setting", "plugin", id, "setting", sid, "err", err)
			}
		}
	}
}

// closestSetting returns the id of the setting most similar to sid,
// for typos made when editing the file by hand.
func closestSetting(sid string, settings map[string]Setting) string {
	lev := metrics.NewLevenshtein()
	best, bestSim := "", 0.5
	for id := range settings {
		if sim := strutil.Similarity(sid, id, lev); sim > bestSim {
			best, bestSim = id, sim
		}
	}
	return best
}

// Generate returns the contents of the overrides file for the current
// settings, listing only the settings that were modified, by plugin id.
func (ov *Overrides) Generate() string {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("control_points:\n")
	plugins := slices.Clone(ov.Plugins.Plugins())
	slices.SortFunc(plugins, func(a, b Plugin) int {
		return strings.Compare(a.ID(), b.ID())
	})
	for _, pl := range plugins {
		settings := pl.DaytimeSettings()
		sids := maps.Keys(settings)
		slices.Sort(sids)
		var mods strings.Builder
		for _, sid := range sids {
			st := settings[sid]
			if st.WasModified() {
				mods.WriteString("        " + sid + ": " + st.Serialize() + "\n")
			}
		}
		if mods.Len() > 0 {
			sb.WriteString("    " + pl.ID() + ":\n")
			sb.WriteString(mods.String())
		}
	}
	sb.WriteString("\n\n")
	return sb.String()
}

// Write saves the overrides file, retrying failed writes. A final
// failure is only logged at debug level: saving is best effort.
func (ov *Overrides) Write() {
	data := []byte(ov.Generate())
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = ov.RetryInterval
	err := backoff.Retry(func() error {
		return os.WriteFile(ov.Path, data, 0o644)
	}, backoff.WithMaxRetries(eb, ov.Retries))
	if err != nil {
		slog.Debug("daytime: failed to write overrides", "file", ov.Path, "err", err)
	}
}
