package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	rec.BattleFinished(game.WinnerDraw)
	router := newMetricsRouter(reg)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, constants.RouteHealthz, nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz: got %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, constants.RouteMetrics, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `llm_fighters_battles_finished_total{winner="draw"} 1`) {
		t.Fatalf("metrics output missing battle counter:\n%s", w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route: got %d", w.Code)
	}
}
