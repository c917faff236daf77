package movierec

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/movierec/internal/usecase/health"
)

// HealthStatus represents the aggregated health of the catalog, cache and poster provider.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

// OK reports whether every component is healthy.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

// Health checks the health of all configured components.
func (c *Client) Health(ctx context.Context) (hs HealthStatus) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, nil, "status", hs.Status) }()

	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
