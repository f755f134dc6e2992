package health

// Health status constants represent the operational state of a component.
const (
	// StatusHealthy indicates the component is fully operational.
	StatusHealthy = "healthy"

	// StatusDegraded indicates the component is operational but experiencing issues.
	StatusDegraded = "degraded"

	// StatusUnhealthy indicates the component is not operational.
	StatusUnhealthy = "unhealthy"
)

// Status represents the health state of a store, registry or other dependency.
type Status struct {
	// Status is the current health state (healthy, degraded, or unhealthy).
	Status string `json:"status"`

	// Message provides a human-readable description of the health status.
	Message string `json:"message,omitempty"`

	// Details contains additional context such as latency or the error text.
	Details map[string]any `json:"details,omitempty"`
}

// IsHealthy returns true if the status is StatusHealthy.
func (s Status) IsHealthy() bool {
	return s.Status == StatusHealthy
}

// IsDegraded returns true if the status is StatusDegraded.
func (s Status) IsDegraded() bool {
	return s.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is StatusUnhealthy.
func (s Status) IsUnhealthy() bool {
	return s.Status == StatusUnhealthy
}

// Healthy creates a healthy status.
func Healthy(message string, details map[string]any) Status {
	return Status{Status: StatusHealthy, Message: message, Details: details}
}

// Degraded creates a degraded status.
func Degraded(message string, details map[string]any) Status {
	return Status{Status: StatusDegraded, Message: message, Details: details}
}

// Unhealthy creates an unhealthy status.
func Unhealthy(message string, details map[string]any) Status {
	return Status{Status: StatusUnhealthy, Message: message, Details: details}
}
