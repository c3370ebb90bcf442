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

// Package statusapi serves a thin, read-only HTTP view of the most
// recent classification run, grounded on the teacher repository's own
// internal/rest/serve.go: a gin.Default() engine, an /api/v1 route
// group, and gin.H JSON bodies built from a snapshot struct rather than
// from live engine state (the engine itself has no HTTP awareness).
package statusapi

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// PassTiming is the wall-clock cost of one completed classification
// pass, mirroring internal/engine.PassTiming without importing the
// engine package -- the CLI converts when it calls Post, keeping
// Summary a plain, engine-independent snapshot type.
type PassTiming struct {
	Name   string `json:"name"`
	Millis int64  `json:"millis"`
}

// Summary is a point-in-time snapshot of one completed run, posted by
// the CLI after the engine returns.
type Summary struct {
	Scene       string       `json:"scene"`
	Rows        int          `json:"rows"`
	Cols        int          `json:"cols"`
	ClearPtm    float64      `json:"clear_ptm"`
	TTempl      float64      `json:"t_templ"`
	TTemph      float64      `json:"t_temph"`
	CloudPct    float64      `json:"cloud_pct"`
	ShadowPct   float64      `json:"shadow_pct"`
	SnowPct     float64      `json:"snow_pct"`
	WaterPct    float64      `json:"water_pct"`
	Millis      int64        `json:"millis"`
	PassTimings []PassTiming `json:"pass_timings"`
}

// Server holds the single most recent Summary behind a mutex and
// exposes it over gin's router, mirroring the teacher's pattern of one
// engine instance serving stats accumulated elsewhere in the process.
type Server struct {
	mu      sync.RWMutex
	last    *Summary
	history []Summary
	maxHist int

	engine *gin.Engine
}

// New builds a Server retaining up to maxHist summaries (0 means
// unbounded history is disabled -- only the latest is kept).
func New(maxHist int) *Server {
	s := &Server{maxHist: maxHist}
	r := gin.Default()

	v1 := r.Group("/api/v1")
	v1.GET("/ping", s.getPing)
	v1.GET("/status", s.getStatus)
	v1.GET("/history", s.getHistory)
	v1.GET("/result", s.getResult)

	s.engine = r
	return s
}

// Handler returns the underlying http.Handler, for use with
// http.ListenAndServe or in tests via httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Post records a new Summary as the most recent run.
func (s *Server) Post(sum Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := sum
	s.last = &cp
	if s.maxHist > 0 {
		s.history = append(s.history, sum)
		if len(s.history) > s.maxHist {
			s.history = s.history[len(s.history)-s.maxHist:]
		}
	}
}

func (s *Server) getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getStatus(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run recorded yet"})
		return
	}
	c.JSON(http.StatusOK, s.last)
}

func (s *Server) getHistory(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"history": s.history})
}

// getResult reports the last completed run's classification statistics
// and per-pass wall-clock breakdown, the two figures §18 promises
// beyond the plain liveness/summary views above.
func (s *Server) getResult(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run recorded yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"clear_ptm":    s.last.ClearPtm,
		"t_templ":      s.last.TTempl,
		"t_temph":      s.last.TTemph,
		"pass_timings": s.last.PassTimings,
	})
}
