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

package engine

import (
	"github.com/skyclear/pcmask/internal/log"
	"github.com/skyclear/pcmask/internal/pool"
	"github.com/skyclear/pcmask/internal/rasterio"
)

// pass1 performs the per-pixel spectral classification of §4.1: fill
// detection, NDVI/NDSI, the basic cloud/snow/water tests, and the
// clear_mask bookkeeping the later passes rely on.
func (st *state) pass1() error {
	bufs := [rasterio.ReflectiveBandCount][]int16{}
	for b := range bufs {
		bufs[b] = pool.GetInt16(st.s)
	}
	therm := pool.GetInt16(st.s)
	defer func() {
		for b := range bufs {
			pool.PutInt16(bufs[b])
		}
		pool.PutInt16(therm)
	}()

	meta := st.meta

	for row := 0; row < st.l; row++ {
		if row%1000 == 0 {
			log.Verbosef("pass1: row %d/%d\r", row, st.l)
		}

		for b := 0; b < rasterio.ReflectiveBandCount; b++ {
			if err := st.src.GetInputLine(b, row, bufs[b]); err != nil {
				return ioError(row, b, err)
			}
		}
		if err := st.src.GetInputThermLine(row, therm); err != nil {
			return ioThermError(row, err)
		}

		for col := 0; col < st.s; col++ {
			idx := row*st.s + col
			st.imageData++

			rawTherm := therm[col]
			isFill := rawTherm <= FillPixel
			if !isFill {
				for b := 0; b < rasterio.ReflectiveBandCount; b++ {
					if bufs[b][col] == FillPixel {
						isFill = true
						break
					}
				}
			}
			if isFill {
				st.pixelMask[idx] = Fill
				st.clearMask[idx] = ClearFill
				continue
			}

			blue := float64(substitute(bufs[rasterio.Blue][col], meta.SatuValueRef[rasterio.Blue], meta.SatuValueMax[rasterio.Blue]))
			green := float64(substitute(bufs[rasterio.Green][col], meta.SatuValueRef[rasterio.Green], meta.SatuValueMax[rasterio.Green]))
			red := float64(substitute(bufs[rasterio.Red][col], meta.SatuValueRef[rasterio.Red], meta.SatuValueMax[rasterio.Red]))
			nir := float64(substitute(bufs[rasterio.Nir][col], meta.SatuValueRef[rasterio.Nir], meta.SatuValueMax[rasterio.Nir]))
			swir1 := float64(substitute(bufs[rasterio.Swir1][col], meta.SatuValueRef[rasterio.Swir1], meta.SatuValueMax[rasterio.Swir1]))
			swir2 := float64(substitute(bufs[rasterio.Swir2][col], meta.SatuValueRef[rasterio.Swir2], meta.SatuValueMax[rasterio.Swir2]))
			thermal := float64(substitute(rawTherm, meta.ThermSatuValueRef, meta.ThermSatuValueMax))

			ndvi := safeRatio(nir-red, nir+red)
			ndsi := safeRatio(green-swir1, green+swir1)
			hot := blue - 0.5*red - 800

			satuBV := blue >= float64(meta.SatuValueMax[rasterio.Blue])-1 ||
				green >= float64(meta.SatuValueMax[rasterio.Green])-1 ||
				red >= float64(meta.SatuValueMax[rasterio.Red])-1

			cloud := lt(ndsi, 0.8) && lt(ndvi, 0.8) && gt(swir2, 300) && lt(thermal, 2700)
			if cloud {
				visiMean := (blue + green + red) / 3
				var whiteness float64
				if visiMean == 0 {
					whiteness = 100
				} else {
					whiteness = (absf(blue-visiMean) + absf(green-visiMean) + absf(red-visiMean)) / visiMean
				}
				if satuBV {
					whiteness = 0
				}
				cloud = lt(whiteness, 0.7)
			}
			if cloud {
				cloud = gt(hot, 0) || satuBV
			}
			if cloud {
				cloud = swir1 != 0 && gt(nir/swir1, 0.75)
			}

			snow := gt(ndsi, 0.15) && lt(thermal, 1000) && gt(nir, 1100) && gt(green, 1000)
			water := (lt(ndvi, 0.01) && lt(nir, 1100)) ||
				(gt(ndvi, 0) && lt(ndvi, 0.1) && lt(nir, 500))

			var pm byte
			if cloud {
				pm |= Cloud
			}
			if snow {
				pm |= Snow
			}
			if water {
				pm |= Water
			}
			st.pixelMask[idx] = pm

			if cloud {
				st.clearMask[idx] = ClearNone
			} else {
				st.clear++
				cm := Clear
				if water {
					cm |= ClearWater
					st.clearWater++
				} else {
					cm |= ClearLand
					st.clearLand++
				}
				st.clearMask[idx] = cm
			}
		}
	}
	return nil
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0.01
	}
	return num / den
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
