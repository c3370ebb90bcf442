package statusapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPing(t *testing.T) {
	s := New(4)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}
}

func TestStatusBeforeAnyRunIs404(t *testing.T) {
	s := New(4)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %v, want 404", rec.Code)
	}
}

func TestStatusReflectsLatestPost(t *testing.T) {
	s := New(4)
	s.Post(Summary{Scene: "a", ClearPtm: 10})
	s.Post(Summary{Scene: "b", ClearPtm: 20})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}
	var got Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Scene != "b" {
		t.Errorf("Scene = %v, want b (latest post)", got.Scene)
	}
}

func TestResultBeforeAnyRunIs404(t *testing.T) {
	s := New(4)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/result", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %v, want 404", rec.Code)
	}
}

func TestResultReportsClassificationStatsAndPassTimings(t *testing.T) {
	s := New(4)
	s.Post(Summary{
		Scene:    "a",
		ClearPtm: 42.5,
		TTempl:   2100,
		TTemph:   2900,
		PassTimings: []PassTiming{
			{Name: "pass1", Millis: 12},
			{Name: "pass2", Millis: 3},
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/result", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}
	var got struct {
		ClearPtm    float64      `json:"clear_ptm"`
		TTempl      float64      `json:"t_templ"`
		TTemph      float64      `json:"t_temph"`
		PassTimings []PassTiming `json:"pass_timings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ClearPtm != 42.5 || got.TTempl != 2100 || got.TTemph != 2900 {
		t.Errorf("got %+v, want clear_ptm=42.5 t_templ=2100 t_temph=2900", got)
	}
	if len(got.PassTimings) != 2 || got.PassTimings[0].Name != "pass1" || got.PassTimings[1].Name != "pass2" {
		t.Errorf("pass_timings = %+v, want [pass1 pass2]", got.PassTimings)
	}
}

func TestHistoryBounded(t *testing.T) {
	s := New(2)
	s.Post(Summary{Scene: "a"})
	s.Post(Summary{Scene: "b"})
	s.Post(Summary{Scene: "c"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	s.Handler().ServeHTTP(rec, req)

	var body struct {
		History []Summary `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(body.History) != 2 {
		t.Fatalf("history len = %v, want 2", len(body.History))
	}
	if body.History[0].Scene != "b" || body.History[1].Scene != "c" {
		t.Errorf("history = %+v, want [b c]", body.History)
	}
}
