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

// pass6 assigns the SHADOW bit from the dual-band background residual
// and resolves the WATER/CLOUD conflict left open by P4's "open
// question" behavior (WATER is only cleared for confidence-HIGH
// cloud pixels, since P4 already cleared CLOUD for MED/LOW).
func (st *state) pass6() error {
	for idx := 0; idx < st.l*st.s; idx++ {
		pm := st.pixelMask[idx]
		if pm&Fill != 0 {
			st.confMask[idx] = ConfFillPixel
			continue
		}

		newNir := float64(st.filledNirData[idx]) - float64(st.nirData[idx])
		newSwir1 := float64(st.filledSwir1Data[idx]) - float64(st.swir1Data[idx])
		shadowProb := newNir
		if newSwir1 < shadowProb {
			shadowProb = newSwir1
		}

		if shadowProb > 200 {
			pm |= Shadow
		} else {
			pm &^= Shadow
		}

		if pm&Water != 0 && pm&Cloud != 0 {
			pm &^= Water
		}

		st.pixelMask[idx] = pm
	}
	return nil
}
