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
	"github.com/skyclear/pcmask/internal/pctstat"
	"github.com/skyclear/pcmask/internal/pool"
	"github.com/skyclear/pcmask/internal/rasterio"
	"github.com/skyclear/pcmask/internal/reconstruct"
	"github.com/skyclear/pcmask/internal/workpool"
)

// pass5 gathers clear-land NIR/SWIR1 samples to derive background
// percentiles, copies the full NIR/SWIR1 rasters, then reconstructs
// each by flood-fill -- the two reconstructions share no mutable state
// and run concurrently.
func (st *state) pass5() error {
	n := st.l * st.s
	st.nirData = pool.GetInt16(n)
	st.swir1Data = pool.GetInt16(n)

	nirBuf := pool.GetInt16(st.s)
	swir1Buf := pool.GetInt16(st.s)
	defer func() {
		pool.PutInt16(nirBuf)
		pool.PutInt16(swir1Buf)
	}()

	nirSamples := make([]int16, 0, n/8+1)
	swir1Samples := make([]int16, 0, n/8+1)
	var nirMin, nirMax, swir1Min, swir1Max int16
	haveNir, haveSwir1 := false, false

	meta := st.meta

	for row := 0; row < st.l; row++ {
		if err := st.src.GetInputLine(rasterio.Nir, row, nirBuf); err != nil {
			return ioError(row, rasterio.Nir, err)
		}
		if err := st.src.GetInputLine(rasterio.Swir1, row, swir1Buf); err != nil {
			return ioError(row, rasterio.Swir1, err)
		}

		rowOff := row * st.s
		for col := 0; col < st.s; col++ {
			idx := rowOff + col
			nir := substitute(nirBuf[col], meta.SatuValueRef[rasterio.Nir], meta.SatuValueMax[rasterio.Nir])
			swir1 := substitute(swir1Buf[col], meta.SatuValueRef[rasterio.Swir1], meta.SatuValueMax[rasterio.Swir1])

			st.nirData[idx] = nir
			st.swir1Data[idx] = swir1

			cm := st.clearMask[idx]
			if cm == ClearFill {
				continue
			}
			if cm&st.landBit != 0 {
				nirSamples = append(nirSamples, nir)
				if !haveNir || nir < nirMin {
					nirMin = nir
				}
				if !haveNir || nir > nirMax {
					nirMax = nir
				}
				haveNir = true

				swir1Samples = append(swir1Samples, swir1)
				if !haveSwir1 || swir1 < swir1Min {
					swir1Min = swir1
				}
				if !haveSwir1 || swir1 > swir1Max {
					swir1Max = swir1
				}
				haveSwir1 = true
			}
		}
	}
	if !haveNir {
		nirMin, nirMax = 0, 0
	}
	if !haveSwir1 {
		swir1Min, swir1Max = 0, 0
	}

	nirBoundary := pctstat.Prctile(nirSamples, nirMin, nirMax, 17.5)
	swir1Boundary := pctstat.Prctile(swir1Samples, swir1Min, swir1Max, 17.5)

	err := workpool.Parallel(
		func() error {
			filled, ferr := reconstruct.FillLocalMinima("nir", st.nirData, st.l, st.s, float32(nirBoundary))
			if ferr != nil {
				return floodFillError("nir", ferr)
			}
			st.filledNirData = filled
			return nil
		},
		func() error {
			filled, ferr := reconstruct.FillLocalMinima("swir1", st.swir1Data, st.l, st.s, float32(swir1Boundary))
			if ferr != nil {
				return floodFillError("swir1", ferr)
			}
			st.filledSwir1Data = filled
			return nil
		},
	)
	return err
}
