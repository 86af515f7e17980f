// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package colorcorrection

import (
	"fmt"
	"image"
	"image/color"
	"io/fs"

	"cogentcore.org/core/base/iox/imagex"
)

// LUT is a 3D color lookup table, stored as Size slices of Size x Size
// placed side by side: red along x within a slice, green along y and
// blue selecting the slice.
type LUT struct {
	Size  int
	Image image.Image
}

// OpenLUT opens a lookup table image with slices of the given size.
func OpenLUT(fsys fs.FS, filename string, size int) (*LUT, error) {
	img, _, err := imagex.OpenFS(fsys, filename)
	if err != nil {
		return nil, err
	}
	bd := img.Bounds()
	if bd.Dx() != size*size || bd.Dy() != size {
		return nil, fmt.Errorf("colorcorrection: LUT %q is %dx%d, expected %dx%d", filename, bd.Dx(), bd.Dy(), size*size, size)
	}
	return &LUT{Size: size, Image: img}, nil
}

// At returns the color of the table at the given indexes, each in [0, Size).
func (l *LUT) At(r, g, b int) color.Color {
	bd := l.Image.Bounds()
	return l.Image.At(bd.Min.X+b*l.Size+r, bd.Min.Y+g)
}
