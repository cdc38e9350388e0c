package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/logging"
	"github.com/ericogr/llm-fighters/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// newMetricsRouter serves the registry on /metrics and a liveness probe on
// /healthz.
func newMetricsRouter(reg *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET(constants.RouteMetrics, gin.WrapH(metrics.Handler(reg)))
	router.GET(constants.RouteHealthz, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

// startMetricsServer exposes the recorder counters while battles run. An
// empty addr disables the listener; the returned function stops it.
func startMetricsServer(addr string) (*metrics.Recorder, func()) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewRecorder(reg)
	if addr == "" {
		return rec, func() {}
	}

	srv := &http.Server{Addr: addr, Handler: newMetricsRouter(reg), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logging.Info("Metrics server started", logging.Fields{constants.LogFieldAddr: addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("metrics server failed", err, logging.Fields{constants.LogFieldAddr: addr})
		}
	}()

	return rec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warn("metrics server shutdown", logging.Fields{"error": err.Error()})
		}
	}
}
