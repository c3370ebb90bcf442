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

// Package reconstruct implements the flood-fill / local-minima-fill
// collaborator the engine consumes in pass 5 (fill_local_minima_in_image,
// §6 of the specification): grayscale morphological reconstruction by
// erosion, raising every regional minimum of a raster to the level of
// its surrounding rim, with a caller-supplied boundary value acting as
// the outer frame around the scene.
//
// The marker image starts at the scene maximum everywhere except the
// border, which is set to the larger of boundary and its own source
// value and held fixed for the lifetime of the reconstruction -- the
// value a border pixel takes when a frame at boundary surrounds the
// image, so the interior drains towards that frame and no pixel ends
// below its source value. Reconstruction then
// proceeds by Vincent's sequential raster / anti-raster scan followed
// by FIFO queue propagation over the interior -- the dual (erosion
// instead of dilation) of the classical algorithm used for hole-filling
// and regional-minima suppression.
package reconstruct

import (
	"fmt"
)

// FillLocalMinima raises every local minimum of src (row-major, L rows
// by S columns) to its surrounding rim level, with boundary as the outer
// frame: each border pixel is held at the larger of boundary and its
// source value. dst is a newly allocated L*S slice with dst[i] >= src[i]
// everywhere; an empty image yields nil. label is used only for
// diagnostics on failure.
func FillLocalMinima(label string, src []int16, l, s int, boundary float32) (dst []int16, err error) {
	n := l * s
	if n == 0 {
		return nil, nil
	}
	if len(src) != n {
		return nil, fmt.Errorf("reconstruct %s: source length %d does not match %dx%d", label, len(src), l, s)
	}

	sceneMax := src[0]
	for _, v := range src {
		if v > sceneMax {
			sceneMax = v
		}
	}
	bound := int16(boundary)

	isBorder := func(row, col int) bool {
		return row == 0 || row == l-1 || col == 0 || col == s-1
	}

	marker := make([]int16, n)
	for row := 0; row < l; row++ {
		for col := 0; col < s; col++ {
			idx := row*s + col
			if isBorder(row, col) {
				marker[idx] = bound
				if src[idx] > bound {
					marker[idx] = src[idx]
				}
			} else {
				marker[idx] = sceneMax
			}
		}
	}

	// Raster scan: pull each interior pixel down toward its
	// already-visited (up, left) neighbors, never below the mask value.
	// The border is a fixed frame and is never recomputed.
	for row := 0; row < l; row++ {
		for col := 0; col < s; col++ {
			if isBorder(row, col) {
				continue
			}
			idx := row*s + col
			v := marker[idx]
			if nv := marker[idx-1]; nv < v {
				v = nv
			}
			if nv := marker[idx-s]; nv < v {
				v = nv
			}
			if v < src[idx] {
				v = src[idx]
			}
			marker[idx] = v
		}
	}

	// Anti-raster scan: pull each interior pixel down toward its
	// not-yet-visited (down, right) neighbors in this pass, seeding the
	// propagation queue with interior pixels whose value may still need
	// to drop further.
	queue := make([]int, 0, n/4+1)
	for row := l - 1; row >= 0; row-- {
		for col := s - 1; col >= 0; col-- {
			if isBorder(row, col) {
				continue
			}
			idx := row*s + col
			v := marker[idx]
			if nv := marker[idx+1]; nv < v {
				v = nv
			}
			if nv := marker[idx+s]; nv < v {
				v = nv
			}
			if v < src[idx] {
				v = src[idx]
			}
			marker[idx] = v

			if needsPropagation(marker, src, idx, row, col, l, s, isBorder) {
				queue = append(queue, idx)
			}
		}
	}

	// FIFO propagation until no interior pixel can be lowered further.
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]

		row, col := idx/s, idx%s
		v := marker[idx]

		tryLower := func(nrow, ncol, nidx int) {
			if isBorder(nrow, ncol) {
				return
			}
			if marker[nidx] > v && marker[nidx] > src[nidx] {
				nv := v
				if nv < src[nidx] {
					nv = src[nidx]
				}
				marker[nidx] = nv
				queue = append(queue, nidx)
			}
		}
		if col > 0 {
			tryLower(row, col-1, idx-1)
		}
		if col < s-1 {
			tryLower(row, col+1, idx+1)
		}
		if row > 0 {
			tryLower(row-1, col, idx-s)
		}
		if row < l-1 {
			tryLower(row+1, col, idx+s)
		}
	}

	return marker, nil
}

// needsPropagation reports whether any already-visited neighbor
// (up/left) of idx is strictly greater than marker[idx] while itself
// still above the mask -- such a neighbor may need to be lowered by
// propagation from idx. Border neighbors are fixed and never queued.
func needsPropagation(marker, src []int16, idx, row, col, l, s int, isBorder func(row, col int) bool) bool {
	v := marker[idx]
	if row > 0 && !isBorder(row-1, col) {
		nidx := idx - s
		if marker[nidx] > v && marker[nidx] > src[nidx] {
			return true
		}
	}
	if col > 0 && !isBorder(row, col-1) {
		nidx := idx - 1
		if marker[nidx] > v && marker[nidx] > src[nidx] {
			return true
		}
	}
	return false
}
