// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colorcorrection

import (
	"image/color"
	"testing"
	"testing/fstest"

	"cogentcore.org/renderpipeline/pipeline"
	"cogentcore.org/renderpipeline/target"
	"cogentcore.org/renderpipeline/ubo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(t *testing.T, settings map[string]any) (*pipeline.Pipeline, *Plugin) {
	t.Helper()
	cfg := &pipeline.Config{
		Enabled:  []string{ID},
		Settings: map[string]map[string]any{ID: settings},
	}
	pl := pipeline.New(cfg, ubo.NewBindingAllocator(), ubo.StaticProbe(true))
	p := New()
	pl.AddPlugin(p)
	require.NoError(t, pl.Setup())
	return pl, p
}

func TestDefaultStages(t *testing.T) {
	pl, p := newPipeline(t, nil)
	assert.Len(t, pl.Stages(), 1)
	assert.Nil(t, p.Sharpen)
	assert.Nil(t, p.AutoExposure)
	tg := p.Stage.Targets()[0]
	assert.Equal(t, "ColorCorrection:Main", tg.Name)
	assert.Contains(t, tg.Shader, "uniform MainSceneData_UBO {")
	cc, ok := pl.Pipe(ColorCorrectedPipe)
	require.True(t, ok)
	assert.Same(t, tg, cc)

	in, ok := tg.ShaderInput("ColorLUT")
	require.True(t, ok)
	lut := in.(*LUT)
	assert.Equal(t, LUTSize, lut.Size)
}

func TestOptionalStages(t *testing.T) {
	pl, p := newPipeline(t, map[string]any{"use_sharpen": true, "use_auto_exposure": true, "exposure_scale": 2.0})
	require.NotNil(t, p.Sharpen)
	require.NotNil(t, p.AutoExposure)
	assert.Len(t, pl.Stages(), 3)
	cc, _ := pl.Pipe(ColorCorrectedPipe)
	assert.Same(t, p.Sharpen.Targets()[0], cc)
	in, ok := p.Sharpen.Targets()[0].ShaderInput(ColorCorrectedPipe)
	require.True(t, ok)
	assert.Same(t, p.Stage.Targets()[0], in)

	pl.Update(0.016)
	scale, ok := p.AutoExposure.Targets()[0].ShaderInput("ColorCorrection.exposure_scale")
	require.True(t, ok)
	assert.Equal(t, float32(2), scale)
}

func TestShaderDeclaresBoundInputs(t *testing.T) {
	for _, native := range []bool{true, false} {
		cfg := &pipeline.Config{
			Enabled:  []string{ID},
			Settings: map[string]map[string]any{ID: {"use_sharpen": true, "use_auto_exposure": true}},
		}
		pl := pipeline.New(cfg, ubo.NewBindingAllocator(), ubo.StaticProbe(native))
		p := New()
		pl.AddPlugin(p)
		require.NoError(t, pl.Setup())
		pl.Update(0.016)

		for _, st := range []*Stage{p.Stage, p.Sharpen, p.AutoExposure} {
			tg := st.Targets()[0]
			assert.Empty(t, tg.UnboundUniforms(), "native=%v target=%s", native, tg.Name)
		}
		mainTarget := p.Stage.Targets()[0]
		keys := target.New("keys")
		p.Inputs.BindTo(keys)
		require.NotEmpty(t, keys.Inputs())
		for _, key := range keys.Inputs() {
			assert.True(t, mainTarget.Declares(key), "native=%v key=%s", native, key)
		}
		assert.True(t, mainTarget.Declares("ColorLUT"))
	}
}

func TestIntegerExposureScale(t *testing.T) {
	pl, p := newPipeline(t, map[string]any{"exposure_scale": 3})
	pl.Update(0)
	scale, ok := p.Stage.Targets()[0].ShaderInput("ColorCorrection.exposure_scale")
	require.True(t, ok)
	assert.Equal(t, float32(3), scale)
}

func TestDefaultLUT(t *testing.T) {
	lut, err := OpenLUT(shaders, "shader/default_lut.png", LUTSize)
	require.NoError(t, err)
	tests := []struct {
		r, g, b int
		want    color.RGBA
	}{
		{0, 0, 0, color.RGBA{0, 0, 0, 255}},
		{63, 63, 63, color.RGBA{255, 255, 255, 255}},
		{63, 0, 0, color.RGBA{255, 0, 0, 255}},
		{0, 63, 0, color.RGBA{0, 255, 0, 255}},
		{0, 0, 63, color.RGBA{0, 0, 255, 255}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, color.RGBAModel.Convert(lut.At(tt.r, tt.g, tt.b)))
	}
}

func TestLUTSizeMismatch(t *testing.T) {
	_, err := OpenLUT(shaders, "shader/default_lut.png", 32)
	assert.Error(t, err)
	_, err = OpenLUT(fstest.MapFS{}, "missing.png", LUTSize)
	assert.Error(t, err)
}
