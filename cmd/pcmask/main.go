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

// Command pcmask runs the potential cloud/cloud-shadow/snow classifier
// over a serialized scene. Its flag surface and startup diagnostics
// follow the teacher repository's cmd/nightlight/main.go: a flat set of
// stdlib flag package options, a total-memory line via
// github.com/pbnjay/memory, and an optional background status server.
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/pbnjay/memory"

	"github.com/skyclear/pcmask/internal/engine"
	"github.com/skyclear/pcmask/internal/log"
	"github.com/skyclear/pcmask/internal/preview"
	"github.com/skyclear/pcmask/internal/rasterio"
	"github.com/skyclear/pcmask/internal/statusapi"
)

func main() {
	scenePath := flag.String("scene", "", "path to a gob-encoded scene (see internal/rasterio.WriteGobFile)")
	threshold := flag.Float64("threshold", 22.5, "cloud probability threshold added to the dynamic percentile cutoff")
	verbose := flag.Bool("v", false, "verbose per-pass logging")
	outPath := flag.String("out", "", "write the raw pixel_mask byte array to this path")
	confOutPath := flag.String("confOut", "", "write the raw conf_mask byte array to this path")
	previewPath := flag.String("preview", "", "write a false-color PNG diagnostic of the classification to this path")
	logPath := flag.String("log", "", "also tee log output to this file")
	serveAddr := flag.String("serve", "", "if set, serve a read-only status API on this address (e.g. :8080) after classifying")
	flag.Parse()

	if *logPath != "" {
		if err := log.AlsoToFile(*logPath); err != nil {
			log.Fatalf("opening log file: %v", err)
		}
		defer log.Sync()
	}

	if *scenePath == "" {
		log.Fatal("missing required -scene flag")
	}

	totalMiBs := memory.TotalMemory() / 1024 / 1024
	log.Printf("pcmask starting, %d MiB system memory detected\n", totalMiBs)

	scene, err := rasterio.LoadGobFile(*scenePath)
	if err != nil {
		log.Fatalf("loading scene %s: %v", *scenePath, err)
	}

	l, s := scene.Rows(), scene.Cols()
	pixelMask := make([]byte, l*s)
	confMask := make([]byte, l*s)

	start := time.Now()
	result, err := engine.Run(scene, *threshold, pixelMask, confMask, *verbose)
	elapsed := time.Since(start)
	if err != nil {
		log.Fatalf("classifying %s: %v", *scenePath, err)
	}
	log.Printf("classified %s in %v: clear_ptm=%.2f t_templ=%.1f t_temph=%.1f\n",
		*scenePath, elapsed, result.ClearPtm, result.TTempl, result.TTemph)

	timings := make([]statusapi.PassTiming, len(result.PassTimings))
	for i, pt := range result.PassTimings {
		timings[i] = statusapi.PassTiming{Name: pt.Name, Millis: pt.Millis}
	}

	sum := statusapi.Summary{
		Scene:       *scenePath,
		Rows:        l,
		Cols:        s,
		ClearPtm:    result.ClearPtm,
		TTempl:      result.TTempl,
		TTemph:      result.TTemph,
		CloudPct:    classPct(pixelMask, engine.Cloud),
		ShadowPct:   classPct(pixelMask, engine.Shadow),
		SnowPct:     classPct(pixelMask, engine.Snow),
		WaterPct:    classPct(pixelMask, engine.Water),
		Millis:      elapsed.Milliseconds(),
		PassTimings: timings,
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pixelMask, 0644); err != nil {
			log.Fatalf("writing pixel_mask to %s: %v", *outPath, err)
		}
		log.Printf("wrote pixel_mask (%d bytes) to %s\n", len(pixelMask), *outPath)
	}
	if *confOutPath != "" {
		if err := os.WriteFile(*confOutPath, confMask, 0644); err != nil {
			log.Fatalf("writing conf_mask to %s: %v", *confOutPath, err)
		}
		log.Printf("wrote conf_mask (%d bytes) to %s\n", len(confMask), *confOutPath)
	}

	if *previewPath != "" {
		if err := writePreview(*previewPath, pixelMask, l, s); err != nil {
			log.Fatalf("writing preview: %v", err)
		}
		log.Printf("wrote diagnostic preview to %s\n", *previewPath)
	}

	if *serveAddr != "" {
		srv := statusapi.New(16)
		srv.Post(sum)
		log.Printf("serving status API on %s\n", *serveAddr)
		if err := http.ListenAndServe(*serveAddr, srv.Handler()); err != nil {
			log.Fatalf("status API: %v", err)
		}
	}
}

func classPct(mask []byte, bit byte) float64 {
	if len(mask) == 0 {
		return 0
	}
	var n int
	for _, pm := range mask {
		if pm&bit != 0 {
			n++
		}
	}
	return 100 * float64(n) / float64(len(mask))
}

func writePreview(path string, pixelMask []byte, l, s int) error {
	img := preview.RenderMask(pixelMask, l, s)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return preview.WritePNG(f, img)
}
