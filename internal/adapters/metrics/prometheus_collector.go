package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "reinforce"
	// Subsystem for daemon metrics
	subsystem = "daemon"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalCollector is the singleton session metrics collector
	// Set by SetGlobalCollector() when metrics are enabled
	globalCollector SessionMetricsRecorder
)

// SessionMetricsRecorder defines the interface for recording session metrics
// events. Adapter code records through the package-level functions so metrics
// stay optional.
type SessionMetricsRecorder interface {
	RecordEngineEvent(eventType string)
	RecordReplacement(strategy string)
	RecordKeyAction(action string, units int)
	RecordOrdersIssued(orders int)
	RecordBridgeState(connected bool)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at daemon startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalCollector sets the global session metrics collector
// This should be called after the collector is created and started
func SetGlobalCollector(collector SessionMetricsRecorder) {
	globalCollector = collector
}

// RecordEngineEvent records a lifecycle event received from the engine
func RecordEngineEvent(eventType string) {
	if globalCollector != nil {
		globalCollector.RecordEngineEvent(eventType)
	}
}

// RecordReplacement records a successful replacement by strategy name
func RecordReplacement(strategy string) {
	if globalCollector != nil {
		globalCollector.RecordReplacement(strategy)
	}
}

// RecordKeyAction records a hotkey-triggered tag or untag and how many units
// it touched
func RecordKeyAction(action string, units int) {
	if globalCollector != nil {
		globalCollector.RecordKeyAction(action, units)
	}
}

// RecordOrdersIssued records orders sent to the engine over the bridge
func RecordOrdersIssued(orders int) {
	if globalCollector != nil {
		globalCollector.RecordOrdersIssued(orders)
	}
}

// RecordBridgeState records whether an engine mod is currently attached
func RecordBridgeState(connected bool) {
	if globalCollector != nil {
		globalCollector.RecordBridgeState(connected)
	}
}
