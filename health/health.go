// Package health checks the dependencies of a flowgraph platform: the graph
// store, the type registries and the definition paths.
//
// Every check returns a Status; Combine folds several of them into one:
//
//	status := health.Combine(
//	    health.StoreCheck(ctx, store, 0),
//	    health.RegistryCheck(ctx, regs, 0),
//	    health.FileCheck("./definitions"),
//	)
//	if status.IsUnhealthy() {
//	    log.Printf("Health check failed: %s", status.Message)
//	}
//
// Checks that succeed slower than their latency threshold report StatusDegraded.
package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/registry"
	"github.com/zero-day-ai/flowgraph/typeid"
)

// DefaultLatencyThreshold is used by the checks when a zero threshold is passed.
const DefaultLatencyThreshold = 500 * time.Millisecond

// probeType is looked up in the registries; it is never registered.
var probeType = typeid.NewComponentTypeID("flowgraph", "health_probe")

// StoreCheck reads a vertex that never exists. graph.ErrNotFound is the expected
// answer; any other error makes the store unhealthy.
func StoreCheck(ctx context.Context, store graph.Store, threshold time.Duration) Status {
	if store == nil {
		return Unhealthy("graph store is not configured", nil)
	}

	start := time.Now()
	_, err := store.GetVertex(ctx, uuid.Nil)
	latency := time.Since(start)

	if err != nil && !errors.Is(err, graph.ErrNotFound) {
		return Unhealthy("graph store is unreachable", map[string]any{
			"error": err.Error(),
		})
	}
	return byLatency("graph store", latency, threshold)
}

// RegistryCheck looks up an unregistered component type in the component registry.
func RegistryCheck(ctx context.Context, regs registry.Registries, threshold time.Duration) Status {
	if regs.Components == nil {
		return Unhealthy("type registry is not configured", nil)
	}

	start := time.Now()
	_, err := regs.Components.Has(ctx, probeType)
	latency := time.Since(start)

	if err != nil {
		return Unhealthy("type registry is unreachable", map[string]any{
			"error": err.Error(),
		})
	}
	return byLatency("type registry", latency, threshold)
}

func byLatency(name string, latency, threshold time.Duration) Status {
	if threshold <= 0 {
		threshold = DefaultLatencyThreshold
	}
	details := map[string]any{"latency_ms": latency.Milliseconds()}
	if latency > threshold {
		return Degraded(fmt.Sprintf("%s is slow", name), details)
	}
	return Healthy(fmt.Sprintf("%s is reachable", name), details)
}

// FileCheck verifies that a file or directory exists at the specified path.
// It returns healthy if the path exists, unhealthy otherwise.
func FileCheck(path string) Status {
	if path == "" {
		return Unhealthy("path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Unhealthy(fmt.Sprintf("path '%s' does not exist", path), map[string]any{
				"path": path,
			})
		}
		return Unhealthy(fmt.Sprintf("failed to stat path '%s'", path), map[string]any{
			"path":  path,
			"error": err.Error(),
		})
	}

	fileType := "file"
	if info.IsDir() {
		fileType = "directory"
	}
	return Healthy(fmt.Sprintf("%s '%s' exists", fileType, path), nil)
}

// Combine aggregates multiple health checks into a single status.
// The result follows this priority:
//   - If any check is unhealthy, the result is unhealthy
//   - If any check is degraded (and none unhealthy), the result is degraded
//   - If all checks are healthy, the result is healthy
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return Healthy("no checks provided", nil)
	}

	var unhealthyChecks []string
	var degradedChecks []string
	var healthyCount int

	for _, check := range checks {
		msg := check.Message
		if msg == "" {
			msg = "unnamed check"
		}
		switch check.Status {
		case StatusUnhealthy:
			unhealthyChecks = append(unhealthyChecks, msg)
		case StatusDegraded:
			degradedChecks = append(degradedChecks, msg)
		case StatusHealthy:
			healthyCount++
		}
	}

	if len(unhealthyChecks) > 0 {
		return Unhealthy(fmt.Sprintf("%d check(s) failed", len(unhealthyChecks)), map[string]any{
			"total":         len(checks),
			"unhealthy":     len(unhealthyChecks),
			"degraded":      len(degradedChecks),
			"healthy":       healthyCount,
			"failed_checks": unhealthyChecks,
		})
	}

	if len(degradedChecks) > 0 {
		return Degraded(fmt.Sprintf("%d check(s) degraded", len(degradedChecks)), map[string]any{
			"total":           len(checks),
			"degraded":        len(degradedChecks),
			"healthy":         healthyCount,
			"degraded_checks": degradedChecks,
		})
	}

	return Healthy(fmt.Sprintf("all %d check(s) passed", len(checks)), nil)
}
