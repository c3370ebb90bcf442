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

// Package pool hands out reusable, size-keyed scratch buffers for the
// scene-sized arrays the engine allocates and frees across its six
// passes (clear_mask, per-row band buffers, final_prob/wfinal_prob,
// nir_data, swir1_data), to keep GC pressure down on large scenes. The
// flood-filled rasters are handed to the pool once the run is done; the
// compact percentile sample arrays are plain allocations.
package pool

import (
	"sync"
)

// Don't you wish for generic types in golang? Sigh.

var poolByte = struct {
	sync.RWMutex
	m map[int]*sync.Pool
}{m: make(map[int]*sync.Pool)}

var poolInt16 = struct {
	sync.RWMutex
	m map[int]*sync.Pool
}{m: make(map[int]*sync.Pool)}

var poolFloat32 = struct {
	sync.RWMutex
	m map[int]*sync.Pool
}{m: make(map[int]*sync.Pool)}

// Clear discards all pooled buffers. Intended for tests that run many
// scenes in one process and want a clean baseline between them.
func Clear() {
	poolByte = struct {
		sync.RWMutex
		m map[int]*sync.Pool
	}{m: make(map[int]*sync.Pool)}

	poolInt16 = struct {
		sync.RWMutex
		m map[int]*sync.Pool
	}{m: make(map[int]*sync.Pool)}

	poolFloat32 = struct {
		sync.RWMutex
		m map[int]*sync.Pool
	}{m: make(map[int]*sync.Pool)}
}

func getSizedPoolByte(size int) *sync.Pool {
	poolByte.RLock()
	p := poolByte.m[size]
	poolByte.RUnlock()
	if p == nil {
		p = &sync.Pool{New: func() interface{} { return make([]byte, size) }}
		poolByte.Lock()
		poolByte.m[size] = p
		poolByte.Unlock()
	}
	return p
}

// GetByte retrieves a zeroed []byte of the given length from the pool.
func GetByte(size int) []byte {
	p := getSizedPoolByte(size)
	b := p.Get().([]byte)
	for i := range b {
		b[i] = 0
	}
	return b
}

// PutByte returns a []byte to the pool for reuse.
func PutByte(b []byte) {
	p := getSizedPoolByte(cap(b))
	p.Put(b[:cap(b)])
}

func getSizedPoolInt16(size int) *sync.Pool {
	poolInt16.RLock()
	p := poolInt16.m[size]
	poolInt16.RUnlock()
	if p == nil {
		p = &sync.Pool{New: func() interface{} { return make([]int16, size) }}
		poolInt16.Lock()
		poolInt16.m[size] = p
		poolInt16.Unlock()
	}
	return p
}

// GetInt16 retrieves a zeroed []int16 of the given length from the pool.
func GetInt16(size int) []int16 {
	p := getSizedPoolInt16(size)
	b := p.Get().([]int16)
	for i := range b {
		b[i] = 0
	}
	return b
}

// PutInt16 returns a []int16 to the pool for reuse.
func PutInt16(b []int16) {
	p := getSizedPoolInt16(cap(b))
	p.Put(b[:cap(b)])
}

func getSizedPoolFloat32(size int) *sync.Pool {
	poolFloat32.RLock()
	p := poolFloat32.m[size]
	poolFloat32.RUnlock()
	if p == nil {
		p = &sync.Pool{New: func() interface{} { return make([]float32, size) }}
		poolFloat32.Lock()
		poolFloat32.m[size] = p
		poolFloat32.Unlock()
	}
	return p
}

// GetFloat32 retrieves a zeroed []float32 of the given length from the pool.
func GetFloat32(size int) []float32 {
	p := getSizedPoolFloat32(size)
	b := p.Get().([]float32)
	for i := range b {
		b[i] = 0
	}
	return b
}

// PutFloat32 returns a []float32 to the pool for reuse.
func PutFloat32(b []float32) {
	p := getSizedPoolFloat32(cap(b))
	p.Put(b[:cap(b)])
}
