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

// Package pctstat implements the percentile service the engine consumes
// as an external collaborator (prctile / prctile2): an inclusive,
// linear-interpolation rank statistic over a sample array.
//
// The reference C implementation computes this via a running histogram
// bounded by a caller-supplied [min,max]; this Go port instead sorts an
// exact copy of the samples and interpolates between closest ranks with
// gonum.org/v1/gonum/stat.Quantile (stat.LinInterp), remapping the
// fraction so the result is the inclusive percentile at 0-based rank
// f*(n-1), without the histogram's bucketing error.
// Determinism (Testable Property 8) requires an exact, non-sampling
// implementation here -- no random subsampling, unlike the teacher
// repository's FastApprox* family of sampling-based robust estimators.
package pctstat

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Prctile returns the pct-th percentile (0..100) of an int16 sample
// array. min and max are accepted to mirror the consumed contract of
// §6; when they are equal the sample is constant and the percentile is
// returned directly without a sort. n == 0 returns 0 without error.
func Prctile(samples []int16, min, max int16, pct float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	if min == max {
		return float64(min)
	}

	xs := make([]float64, n)
	for i, s := range samples {
		xs[i] = float64(s)
	}
	sort.Float64s(xs)
	return inclusiveQuantile(clampFraction(pct), xs)
}

// Prctile2 is the float32 analogue of Prctile, used over probability
// surfaces (final_prob / wfinal_prob) rather than raw band samples.
func Prctile2(samples []float32, min, max float32, pct float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	if min == max {
		return float64(min)
	}

	xs := make([]float64, n)
	for i, s := range samples {
		xs[i] = float64(s)
	}
	sort.Float64s(xs)
	return inclusiveQuantile(clampFraction(pct), xs)
}

// clampFraction converts a 0..100 percentile into the 0..1 fraction
// gonum's Quantile expects, clamping defensively against callers that
// pass an out-of-range value.
func clampFraction(pct float64) float64 {
	f := pct / 100.0
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// inclusiveQuantile returns the inclusive linear-interpolation quantile f
// (0..1) of the sorted, non-empty xs: the value at 0-based rank f*(n-1),
// interpolated between its two closest ranks. gonum's LinInterp places
// quantile p at rank p*n-1, so f is remapped to the p landing on f*(n-1).
func inclusiveQuantile(f float64, xs []float64) float64 {
	n := float64(len(xs))
	return stat.Quantile((f*(n-1)+1)/n, stat.LinInterp, xs, nil)
}
