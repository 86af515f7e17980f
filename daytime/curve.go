// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daytime

import (
	"fmt"
	"slices"
	"strings"

	"cogentcore.org/core/base/errors"
	"gopkg.in/yaml.v3"
)

// Point is a control point of a [Curve]: a time of day in [0, 1]
// and the value at that time.
type Point struct {
	Time, Value float64
}

// Curve is a time of day setting, with one or more channels of control
// points, for example three channels for a color. Values between control
// points are linearly interpolated, wrapping around midnight.
type Curve struct {
	// Channels are the control points of each channel, sorted by time.
	Channels [][]Point

	// defaults are the channels the curve was made with.
	defaults [][]Point
}

// NewCurve returns a new curve with the given default channels.
func NewCurve(channels ...[]Point) *Curve {
	cv := &Curve{}
	for _, ch := range channels {
		ch = slices.Clone(ch)
		sortPoints(ch)
		cv.Channels = append(cv.Channels, ch)
		cv.defaults = append(cv.defaults, slices.Clone(ch))
	}
	return cv
}

func sortPoints(ch []Point) {
	slices.SortFunc(ch, func(a, b Point) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
}

// WasModified returns whether the curve differs from its defaults.
func (cv *Curve) WasModified() bool {
	if len(cv.Channels) != len(cv.defaults) {
		return true
	}
	for i, ch := range cv.Channels {
		if !slices.Equal(ch, cv.defaults[i]) {
			return true
		}
	}
	return false
}

// Reset restores the default control points.
func (cv *Curve) Reset() {
	cv.Channels = cv.Channels[:0]
	for _, ch := range cv.defaults {
		cv.Channels = append(cv.Channels, slices.Clone(ch))
	}
}

// Serialize returns the control points as a single line YAML flow
// sequence, one sequence of [time, value] pairs per channel.
func (cv *Curve) Serialize() string {
	chs := make([][][2]float64, len(cv.Channels))
	for ci, ch := range cv.Channels {
		chs[ci] = make([][2]float64, len(ch))
		for pi, pt := range ch {
			chs[ci][pi] = [2]float64{pt.Time, pt.Value}
		}
	}
	var n yaml.Node
	if errors.Log(n.Encode(chs)) != nil {
		return "[]"
	}
	setFlowStyle(&n)
	b, err := yaml.Marshal(&n)
	if errors.Log(err) != nil {
		return "[]"
	}
	// the emitter may break long flow sequences over lines
	return strings.Join(strings.Fields(string(b)), " ")
}

func setFlowStyle(n *yaml.Node) {
	n.Style = yaml.FlowStyle
	for _, c := range n.Content {
		setFlowStyle(c)
	}
}

// Apply sets the control points from a decoded YAML value in the
// format written by [Curve.Serialize]. The number of channels must
// match the defaults.
func (cv *Curve) Apply(v any) error {
	chs, ok := v.([]any)
	if !ok {
		return fmt.Errorf("daytime: curve must be a list of channels, got %T", v)
	}
	if len(chs) != len(cv.defaults) {
		return fmt.Errorf("daytime: curve has %d channels, expected %d", len(chs), len(cv.defaults))
	}
	channels := make([][]Point, len(chs))
	for ci, ch := range chs {
		pts, ok := ch.([]any)
		if !ok {
			return fmt.Errorf("daytime: channel %d must be a list of points, got %T", ci, ch)
		}
		for _, p := range pts {
			pair, ok := p.([]any)
			if !ok || len(pair) != 2 {
				return fmt.Errorf("daytime: channel %d: point must be a [time, value] pair, got %v", ci, p)
			}
			tm, err := toFloat(pair[0])
			if err != nil {
				return err
			}
			vl, err := toFloat(pair[1])
			if err != nil {
				return err
			}
			channels[ci] = append(channels[ci], Point{Time: tm, Value: vl})
		}
		sortPoints(channels[ci])
	}
	cv.Channels = channels
	return nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	}
	return 0, fmt.Errorf("daytime: %v is not a number", v)
}

// Value returns the value of the given channel at time of day t in [0, 1].
func (cv *Curve) Value(channel int, t float64) float64 {
	if channel < 0 || channel >= len(cv.Channels) {
		return 0
	}
	ch := cv.Channels[channel]
	switch len(ch) {
	case 0:
		return 0
	case 1:
		return ch[0].Value
	}
	// find the control points around t, wrapping around midnight
	prev, next := ch[len(ch)-1], ch[0]
	prev.Time--
	for i, pt := range ch {
		if pt.Time > t {
			next = pt
			if i > 0 {
				prev = ch[i-1]
			}
			break
		}
		prev = pt
		next = ch[0]
		next.Time++
	}
	span := next.Time - prev.Time
	if span <= 0 {
		return prev.Value
	}
	f := (t - prev.Time) / span
	return prev.Value + f*(next.Value-prev.Value)
}
