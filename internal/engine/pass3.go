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
	"sync"

	"github.com/skyclear/pcmask/internal/pool"
	"github.com/skyclear/pcmask/internal/rasterio"
	"github.com/skyclear/pcmask/internal/workpool"
)

// pass3 computes the per-pixel cloud probability surfaces: a
// temperature x brightness score over water, and a temperature x
// spectral-variability score over land. Every row is independent of
// every other (it only reads the scalars pass2 already settled and
// writes its own slice of finalProb/wfinalProb), so rows are farmed out
// in contiguous batches via internal/workpool the same way pass5 farms
// out its two flood-fills.
func (st *state) pass3() error {
	n := st.l * st.s
	st.finalProb = pool.GetFloat32(n)
	st.wfinalProb = pool.GetFloat32(n)

	meta := st.meta

	var mu sync.Mutex
	var firstErr error
	recordErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	workpool.RowBatches(st.l, workpool.Workers(), func(lower, upper int) {
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

		for row := lower; row < upper; row++ {
			for b := 0; b < rasterio.ReflectiveBandCount; b++ {
				if err := st.src.GetInputLine(b, row, bufs[b]); err != nil {
					recordErr(ioError(row, b, err))
					return
				}
			}
			if err := st.src.GetInputThermLine(row, therm); err != nil {
				recordErr(ioThermError(row, err))
				return
			}

			for col := 0; col < st.s; col++ {
				idx := row*st.s + col
				if st.pixelMask[idx]&Fill != 0 {
					continue
				}

				blue := float64(substitute(bufs[rasterio.Blue][col], meta.SatuValueRef[rasterio.Blue], meta.SatuValueMax[rasterio.Blue]))
				green := float64(substitute(bufs[rasterio.Green][col], meta.SatuValueRef[rasterio.Green], meta.SatuValueMax[rasterio.Green]))
				red := float64(substitute(bufs[rasterio.Red][col], meta.SatuValueRef[rasterio.Red], meta.SatuValueMax[rasterio.Red]))
				nir := float64(substitute(bufs[rasterio.Nir][col], meta.SatuValueRef[rasterio.Nir], meta.SatuValueMax[rasterio.Nir]))
				swir1 := float64(substitute(bufs[rasterio.Swir1][col], meta.SatuValueRef[rasterio.Swir1], meta.SatuValueMax[rasterio.Swir1]))
				thermal := float64(substitute(therm[col], meta.ThermSatuValueRef, meta.ThermSatuValueMax))

				if st.pixelMask[idx]&Water != 0 {
					wtempProb := (st.tWtemp - thermal) / 400
					if wtempProb < 0 {
						wtempProb = 0
					}
					brightnessProb := clampf(swir1/1100, 0, 1)
					st.wfinalProb[idx] = float32(100 * wtempProb * brightnessProb)
					st.finalProb[idx] = 0
					continue
				}

				ndvi := safeRatio(nir-red, nir+red)
				if ndvi < 0 {
					ndvi = 0
				}
				ndsi := safeRatio(green-swir1, green+swir1)
				if ndsi < 0 {
					ndsi = 0
				}

				visiMean := (blue + green + red) / 3
				var whiteness float64
				if visiMean == 0 {
					whiteness = 100
				} else {
					whiteness = (absf(blue-visiMean) + absf(green-visiMean) + absf(red-visiMean)) / visiMean
				}
				satuBV := blue >= float64(meta.SatuValueMax[rasterio.Blue])-1 ||
					green >= float64(meta.SatuValueMax[rasterio.Green])-1 ||
					red >= float64(meta.SatuValueMax[rasterio.Red])-1
				if satuBV {
					whiteness = 0
				}

				tempProb := (st.tTemph - thermal) / st.tempL
				if tempProb < 0 {
					tempProb = 0
				}
				variProb := 1 - maxf(ndsi, ndvi, whiteness)

				st.finalProb[idx] = float32(100 * tempProb * variProb)
				st.wfinalProb[idx] = 0
			}
		}
	})

	return firstErr
}
