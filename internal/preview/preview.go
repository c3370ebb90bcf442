// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package preview renders a false-color diagnostic image of a
// classified scene, one color per pixel_mask bit combination. It plays
// the same role as the teacher repository's black-point matching in
// cmd/nightlight/main.go, which reaches for
// github.com/lucasb-eyer/go-colorful to pick a perceptually uniform
// blend in HCL space rather than averaging raw RGB; here each semantic
// class is assigned a hue and pixels with multiple transient bits set
// (e.g. CLOUD and SNOW both present mid-pipeline) blend across the
// relevant hues in that same space instead of fighting over which bit
// wins.
package preview

import (
	"image"
	"image/color"
	"image/png"
	"io"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/skyclear/pcmask/internal/engine"
)

var (
	colorFill   = colorful.Color{R: 0, G: 0, B: 0}
	colorClear  = colorful.Color{R: 0.15, G: 0.15, B: 0.15}
	colorCloud  = colorful.Hcl(0, 0, 0.95).Clamped()
	colorShadow = colorful.Hcl(265, 0.4, 0.25).Clamped()
	colorSnow   = colorful.Hcl(200, 0.1, 0.98).Clamped()
	colorWater  = colorful.Hcl(230, 0.6, 0.45).Clamped()
)

// classColors lists the (bit, color) pairs in blending order: a pixel
// with several bits set blends every matching color in HCL space as a
// running blend that weights each matched color about equally.
var classColors = []struct {
	bit byte
	col colorful.Color
}{
	{engine.Cloud, colorCloud},
	{engine.Shadow, colorShadow},
	{engine.Snow, colorSnow},
	{engine.Water, colorWater},
}

// RenderMask paints an RGBA image of l rows by s columns from a
// pixel_mask array, blending the colors of every set classification
// bit in HCL space and falling back to a neutral clear/fill color when
// no class bit is set.
func RenderMask(pixelMask []byte, l, s int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s, l))
	for row := 0; row < l; row++ {
		for col := 0; col < s; col++ {
			idx := row*s + col
			img.Set(col, row, pixelColor(pixelMask[idx]))
		}
	}
	return img
}

func pixelColor(pm byte) color.Color {
	if pm&engine.Fill != 0 {
		return colorFill.Clamped()
	}

	var matched []colorful.Color
	for _, cc := range classColors {
		if pm&cc.bit != 0 {
			matched = append(matched, cc.col)
		}
	}
	if len(matched) == 0 {
		return colorClear.Clamped()
	}

	blend := matched[0]
	for i := 1; i < len(matched); i++ {
		t := 1.0 / float64(i+1)
		blend = blend.BlendHcl(matched[i], t)
	}
	return blend.Clamped()
}

// WritePNG encodes a rendered mask image to w.
func WritePNG(w io.Writer, img *image.RGBA) error {
	return png.Encode(w, img)
}
