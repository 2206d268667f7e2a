package observability

import "context"

// HealthStatus represents the health state of a component or service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of an individual stream component.
type Health struct {
	Name    string         `json:"name"`
	Status  HealthStatus   `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ServiceHealth aggregates component health for a /healthz response.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their health,
// e.g. a running broadcast hub.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// HealthFunc adapts a function to HealthChecker.
type HealthFunc func(ctx context.Context) Health

// CheckHealth implements HealthChecker.
func (f HealthFunc) CheckHealth(ctx context.Context) Health { return f(ctx) }

// CheckAll runs every checker and folds the results into one ServiceHealth.
func CheckAll(ctx context.Context, service, version string, checkers ...HealthChecker) *ServiceHealth {
	sh := &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
	for _, c := range checkers {
		sh.add(c.CheckHealth(ctx))
	}
	return sh
}

// add appends a component result; down wins over degraded wins over up.
func (sh *ServiceHealth) add(ch Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}
