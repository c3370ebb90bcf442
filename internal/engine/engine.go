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
	"time"

	"github.com/skyclear/pcmask/internal/log"
	"github.com/skyclear/pcmask/internal/pool"
	"github.com/skyclear/pcmask/internal/rasterio"
)

// state carries everything shared across the six passes of a single
// run. It owns every scratch allocation and is responsible for
// returning every buffer to the pool before Run returns, success or
// failure.
type state struct {
	src  rasterio.Source
	meta rasterio.Meta
	l, s int

	cloudProbThreshold float64

	pixelMask []byte
	confMask  []byte
	clearMask []byte

	imageData, clear, clearLand, clearWater int64
	clearPtm, landPtm, waterPtm             float64

	landBit, waterBit byte

	tTempl, tTemph, tWtemp, tempL float64

	finalProb, wfinalProb []float32

	clrMask, wclrMask float64

	nirData, swir1Data, filledNirData, filledSwir1Data []int16
}

// PassTiming is the wall-clock cost of one completed pass, in the order
// the passes ran. A run that takes the all-cloud shortcut only ever
// reports a single entry, for pass1.
type PassTiming struct {
	Name   string
	Millis int64
}

// Result is everything Run reports back about a completed classification:
// the scene clear-pixel percentage, the buffered low/high
// land-temperature percentiles, and the per-pass timing breakdown.
type Result struct {
	ClearPtm    float64
	TTempl      float64
	TTemph      float64
	PassTimings []PassTiming
}

// Run executes the full six-pass classifier over src, writing pixelMask
// and confMask in place (both must already be sized L*S by the
// caller).
func Run(src rasterio.Source, cloudProbThreshold float64, pixelMask, confMask []byte, verbose bool) (Result, error) {
	l, s := src.Rows(), src.Cols()
	n := l * s
	if len(pixelMask) != n || len(confMask) != n {
		return Result{}, &Error{Kind: AllocationFailure, Msg: "pixel_mask/conf_mask size mismatch"}
	}

	st := &state{
		src:                src,
		meta:               src.Meta(),
		l:                  l,
		s:                  s,
		cloudProbThreshold: cloudProbThreshold,
		pixelMask:          pixelMask,
		confMask:           confMask,
	}

	st.clearMask = pool.GetByte(n)
	defer pool.PutByte(st.clearMask)

	log.SetVerbose(verbose)

	var timings []PassTiming
	track := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		timings = append(timings, PassTiming{Name: name, Millis: time.Since(start).Milliseconds()})
		return err
	}

	if err := track("pass1", st.pass1); err != nil {
		return Result{}, err
	}

	if st.imageData > 0 {
		st.clearPtm = 100 * float64(st.clear) / float64(st.imageData)
		st.landPtm = 100 * float64(st.clearLand) / float64(st.imageData)
		st.waterPtm = 100 * float64(st.clearWater) / float64(st.imageData)
	}

	if st.clearPtm <= 0.1 {
		log.Verbosef("clear_ptm %.4f%% at or below shortcut threshold, skipping passes 2-6\n", st.clearPtm)
		st.allCloudShortcut()
		return Result{ClearPtm: st.clearPtm, TTempl: st.tTempl, TTemph: st.tTemph, PassTimings: timings}, nil
	}

	if st.landPtm >= 0.1 {
		st.landBit = ClearLand
	} else {
		st.landBit = Clear
	}
	if st.waterPtm >= 0.1 {
		st.waterBit = ClearWater
	} else {
		st.waterBit = Clear
	}

	if err := track("pass2", st.pass2); err != nil {
		return Result{}, err
	}
	if err := track("pass3", st.pass3); err != nil {
		return Result{}, err
	}
	defer func() {
		if st.finalProb != nil {
			pool.PutFloat32(st.finalProb)
		}
		if st.wfinalProb != nil {
			pool.PutFloat32(st.wfinalProb)
		}
	}()
	if err := track("pass4", st.pass4); err != nil {
		return Result{}, err
	}
	if err := track("pass5", st.pass5); err != nil {
		return Result{}, err
	}
	defer func() {
		if st.nirData != nil {
			pool.PutInt16(st.nirData)
		}
		if st.swir1Data != nil {
			pool.PutInt16(st.swir1Data)
		}
		if st.filledNirData != nil {
			pool.PutInt16(st.filledNirData)
		}
		if st.filledSwir1Data != nil {
			pool.PutInt16(st.filledSwir1Data)
		}
	}()
	if err := track("pass6", st.pass6); err != nil {
		return Result{}, err
	}

	log.Verbosef("done: clear_ptm=%.4f%% t_templ=%.2f t_temph=%.2f\n", st.clearPtm, st.tTempl, st.tTemph)
	return Result{ClearPtm: st.clearPtm, TTempl: st.tTempl, TTemph: st.tTemph, PassTimings: timings}, nil
}

// allCloudShortcut handles the degenerate case where at most 0.1% of
// the scene is clear: land/water temperature statistics would be
// meaningless, so every non-fill pixel is declared SHADOW iff it is not
// already CLOUD, and passes 2 through 6 are skipped entirely.
func (st *state) allCloudShortcut() {
	st.tTempl, st.tTemph = -1.0, -1.0
	for i := 0; i < st.l*st.s; i++ {
		pm := st.pixelMask[i]
		if pm&Fill != 0 {
			st.confMask[i] = ConfFillPixel
			continue
		}
		if pm&Cloud != 0 {
			st.pixelMask[i] = pm &^ Shadow
		} else {
			st.pixelMask[i] = pm | Shadow
		}
	}
}
