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

// pass4 derives the dynamic land and water cloud-probability
// thresholds from the 82.5th percentile of the clear-pixel probability
// surfaces, then assigns a final confidence to every pixel and
// rewrites the CLOUD bit to match.
func (st *state) pass4() error {
	prob := make([]float32, 0, st.l*st.s/8+1)
	wprob := make([]float32, 0, st.l*st.s/8+1)
	var probMin, probMax, wprobMin, wprobMax float32
	haveProb, haveWprob := false, false

	for idx := 0; idx < st.l*st.s; idx++ {
		cm := st.clearMask[idx]
		if cm == ClearFill {
			continue
		}
		if cm&st.landBit != 0 {
			v := st.finalProb[idx]
			prob = append(prob, v)
			if !haveProb || v < probMin {
				probMin = v
			}
			if !haveProb || v > probMax {
				probMax = v
			}
			haveProb = true
		}
		if cm&st.waterBit != 0 {
			v := st.wfinalProb[idx]
			wprob = append(wprob, v)
			if !haveWprob || v < wprobMin {
				wprobMin = v
			}
			if !haveWprob || v > wprobMax {
				wprobMax = v
			}
			haveWprob = true
		}
	}
	if !haveProb {
		probMin, probMax = 0, 0
	}
	if !haveWprob {
		wprobMin, wprobMax = 0, 0
	}

	st.clrMask = pctstat.Prctile2(prob, probMin, probMax, 82.5) + st.cloudProbThreshold
	st.wclrMask = pctstat.Prctile2(wprob, wprobMin, wprobMax, 82.5) + st.cloudProbThreshold

	therm := pool.GetInt16(st.s)
	defer pool.PutInt16(therm)

	extremeCold := st.tTempl + tempBuffer - 3500

	for row := 0; row < st.l; row++ {
		if err := st.src.GetInputThermLine(row, therm); err != nil {
			return ioThermError(row, err)
		}
		for col := 0; col < st.s; col++ {
			idx := row*st.s + col
			if st.pixelMask[idx]&Fill != 0 {
				continue
			}
			thermal := float64(substitute(therm[col], st.meta.ThermSatuValueRef, st.meta.ThermSatuValueMax))

			pm := st.pixelMask[idx]
			isCloud := pm&Cloud != 0
			isWater := pm&Water != 0

			high := (isCloud && !isWater && float64(st.finalProb[idx]) > st.clrMask) ||
				(isCloud && isWater && float64(st.wfinalProb[idx]) > st.wclrMask) ||
				thermal < extremeCold

			if high {
				st.confMask[idx] = ConfHigh
				st.pixelMask[idx] = pm | Cloud
				continue
			}

			med := (isCloud && !isWater && float64(st.finalProb[idx]) > st.clrMask-10) ||
				(isCloud && isWater && float64(st.wfinalProb[idx]) > st.wclrMask-10)

			if med {
				st.confMask[idx] = ConfMed
				st.pixelMask[idx] = pm &^ Cloud
				continue
			}

			st.confMask[idx] = ConfLow
			st.pixelMask[idx] = pm &^ Cloud
		}
	}
	return nil
}
