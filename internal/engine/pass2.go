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
)

const tempBuffer = 400

// pass2 gathers thermal samples over clear land and clear water and
// derives the low/high land-temperature and high water-temperature
// percentiles that steer passes 3 and 4.
func (st *state) pass2() error {
	therm := pool.GetInt16(st.s)
	defer pool.PutInt16(therm)

	fTemp := make([]int16, 0, st.l*st.s/8+1)
	fWtemp := make([]int16, 0, st.l*st.s/8+1)
	var tempMin, tempMax, wtempMin, wtempMax int16
	haveTemp, haveWtemp := false, false

	for row := 0; row < st.l; row++ {
		if err := st.src.GetInputThermLine(row, therm); err != nil {
			return ioThermError(row, err)
		}
		for col := 0; col < st.s; col++ {
			idx := row*st.s + col
			cm := st.clearMask[idx]
			if cm == ClearFill {
				continue
			}
			t := substitute(therm[col], st.meta.ThermSatuValueRef, st.meta.ThermSatuValueMax)

			if cm&st.landBit != 0 {
				fTemp = append(fTemp, t)
				if !haveTemp || t < tempMin {
					tempMin = t
				}
				if !haveTemp || t > tempMax {
					tempMax = t
				}
				haveTemp = true
			}
			if cm&st.waterBit != 0 {
				fWtemp = append(fWtemp, t)
				if !haveWtemp || t < wtempMin {
					wtempMin = t
				}
				if !haveWtemp || t > wtempMax {
					wtempMax = t
				}
				haveWtemp = true
			}
		}
	}

	if !haveTemp {
		tempMin, tempMax = 0, 0
	}
	if !haveWtemp {
		wtempMin, wtempMax = 0, 0
	}

	st.tTempl = pctstat.Prctile(fTemp, tempMin, tempMax, 17.5)
	st.tTemph = pctstat.Prctile(fTemp, tempMin, tempMax, 82.5)
	st.tWtemp = pctstat.Prctile(fWtemp, wtempMin, wtempMax, 82.5)

	st.tTempl -= tempBuffer
	st.tTemph += tempBuffer
	st.tempL = st.tTemph - st.tTempl

	return nil
}
