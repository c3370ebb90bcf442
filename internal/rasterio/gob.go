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

package rasterio

import (
	"bufio"
	"encoding/gob"
	"io"
	"os"
)

// sceneGob is the on-disk serialization of a MemSource, mirroring the
// teacher repository's own FITS reader/writer pairing (one struct that
// round-trips the in-memory representation) but using encoding/gob in
// place of the FITS container, since scenes here have no standardized
// astronomical header to preserve.
type sceneGob struct {
	Rows, Cols int
	Meta       Meta
	Bands      [ReflectiveBandCount][]int16
	Therm      []int16
}

// WriteGob persists src to w in a format LoadGob can read back bit for
// bit, for the CLI's -scene flag to cache a decoded scene between runs.
func WriteGob(w io.Writer, src *MemSource) error {
	bw := bufio.NewWriter(w)
	g := sceneGob{
		Rows:  src.rows,
		Cols:  src.cols,
		Meta:  src.meta,
		Bands: src.bands,
		Therm: src.therm,
	}
	if err := gob.NewEncoder(bw).Encode(&g); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadGob reads a scene previously written by WriteGob.
func LoadGob(r io.Reader) (*MemSource, error) {
	var g sceneGob
	if err := gob.NewDecoder(bufio.NewReader(r)).Decode(&g); err != nil {
		return nil, err
	}
	return &MemSource{rows: g.Rows, cols: g.Cols, meta: g.Meta, bands: g.Bands, therm: g.Therm}, nil
}

// WriteGobFile and LoadGobFile are convenience wrappers around
// WriteGob/LoadGob for the common case of a plain filesystem path.
func WriteGobFile(path string, src *MemSource) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteGob(f, src)
}

func LoadGobFile(path string) (*MemSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadGob(f)
}
