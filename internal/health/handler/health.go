// Package handler reports liveness and readiness over HTTP and the standard gRPC health service.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultProbeTimeout = 2 * time.Second

// Probe checks one dependency. Check returns nil when the dependency is usable.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Checker runs readiness probes against the store, the policy engine and optional caches.
type Checker struct {
	probes  []Probe
	timeout time.Duration
	log     *zap.Logger
}

// NewChecker returns a Checker over probes. Probes with a nil Check are ignored.
func NewChecker(log *zap.Logger, probes ...Probe) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Checker{timeout: defaultProbeTimeout, log: log}
	for _, p := range probes {
		if p.Check != nil {
			c.probes = append(c.probes, p)
		}
	}
	return c
}

// Check runs every probe and returns the first failure, prefixed with the probe name.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	for _, p := range c.probes {
		if err := p.Check(ctx); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	return nil
}

// Healthz reports liveness; it never consults dependencies.
func (c *Checker) Healthz(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, "ok", "")
}

// Readyz reports 200 when every probe passes and 503 otherwise.
func (c *Checker) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := c.Check(r.Context()); err != nil {
		c.log.Warn("readiness check failed", zap.Error(err))
		writeStatus(w, http.StatusServiceUnavailable, "unavailable", err.Error())
		return
	}
	writeStatus(w, http.StatusOK, "ready", "")
}

// Watch updates hs with the probe outcome every interval until ctx is done. services are the
// gRPC service names whose status follows the overall status.
func (c *Checker) Watch(ctx context.Context, hs *health.Server, interval time.Duration, services ...string) {
	update := func() {
		st := healthpb.HealthCheckResponse_SERVING
		if err := c.Check(ctx); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", st)
		for _, s := range services {
			hs.SetServingStatus(s, st)
		}
	}
	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

func writeStatus(w http.ResponseWriter, code int, status, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := map[string]string{"status": status}
	if detail != "" {
		body["error"] = detail
	}
	_ = json.NewEncoder(w).Encode(body)
}
