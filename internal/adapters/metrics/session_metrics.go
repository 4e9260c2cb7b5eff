package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rtsops/reinforce/internal/domain/tracker"
)

// SessionMetricsCollector handles all tracker and engine-event metrics
type SessionMetricsCollector struct {
	// getStats reads the active session's tracker tables; the second return
	// is false when no session is running
	getStats func() (tracker.Stats, bool)

	// Event counters
	engineEventsTotal *prometheus.CounterVec
	replacementsTotal *prometheus.CounterVec
	keyActionsTotal   *prometheus.CounterVec
	taggedUnitsTotal  *prometheus.CounterVec
	ordersIssuedTotal prometheus.Counter

	// Tracker table gauges
	watchedUnits    prometheus.Gauge
	pendingBuilds   prometheus.Gauge
	unitsInTransit  prometheus.Gauge
	bridgeConnected prometheus.Gauge

	// Lifecycle
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewSessionMetricsCollector creates a new session metrics collector
func NewSessionMetricsCollector(getStats func() (tracker.Stats, bool)) *SessionMetricsCollector {
	return &SessionMetricsCollector{
		getStats: getStats,

		engineEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "engine_events_total",
				Help:      "Total number of lifecycle events received from the engine by type",
			},
			[]string{"event"},
		),

		replacementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "replacements_total",
				Help:      "Total number of replacements arranged by strategy",
			},
			[]string{"strategy"},
		),

		keyActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "key_actions_total",
				Help:      "Total number of hotkey-triggered tag and untag actions",
			},
			[]string{"action"},
		),

		taggedUnitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tagged_units_total",
				Help:      "Total number of units touched by tag and untag actions",
			},
			[]string{"action"},
		),

		ordersIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_issued_total",
				Help:      "Total number of orders sent to the engine",
			},
		),

		watchedUnits: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "watched_units",
				Help:      "Number of units currently tracked for replacement",
			},
		),

		pendingBuilds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pending_builds",
				Help:      "Number of factory builds queued and not yet completed",
			},
		),

		unitsInTransit: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "units_in_transit",
				Help:      "Number of tracked units currently aboard a transport",
			},
		),

		bridgeConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bridge_connected",
				Help:      "1 while an engine mod session is attached, 0 otherwise",
			},
		),
	}
}

// Register registers all metrics with the Prometheus registry
func (c *SessionMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	collectors := []prometheus.Collector{
		c.engineEventsTotal,
		c.replacementsTotal,
		c.keyActionsTotal,
		c.taggedUnitsTotal,
		c.ordersIssuedTotal,
		c.watchedUnits,
		c.pendingBuilds,
		c.unitsInTransit,
		c.bridgeConnected,
	}

	for _, collector := range collectors {
		if err := Registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// Start begins the gauge polling goroutine
func (c *SessionMetricsCollector) Start(ctx context.Context) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.collectTrackerGauges(10 * time.Second)
}

// Stop gracefully stops the metrics collection
func (c *SessionMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

// collectTrackerGauges polls tracker table sizes and updates gauges
func (c *SessionMetricsCollector) collectTrackerGauges(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updateTrackerGauges()
		}
	}
}

// updateTrackerGauges reads the active tracker's stats and updates gauges.
// With no active session all gauges drop to zero.
func (c *SessionMetricsCollector) updateTrackerGauges() {
	if c.getStats == nil {
		return
	}

	stats, ok := c.getStats()
	if !ok {
		stats = tracker.Stats{}
	}

	c.watchedUnits.Set(float64(stats.Watches))
	c.pendingBuilds.Set(float64(stats.PendingBuilds))
	c.unitsInTransit.Set(float64(stats.InTransit))
}

// RecordEngineEvent records a lifecycle event received from the engine
func (c *SessionMetricsCollector) RecordEngineEvent(eventType string) {
	c.engineEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordReplacement records a replacement arranged by the named strategy
func (c *SessionMetricsCollector) RecordReplacement(strategy string) {
	c.replacementsTotal.WithLabelValues(strategy).Inc()
}

// RecordKeyAction records a hotkey-triggered action and the units it touched
func (c *SessionMetricsCollector) RecordKeyAction(action string, units int) {
	c.keyActionsTotal.WithLabelValues(action).Inc()
	c.taggedUnitsTotal.WithLabelValues(action).Add(float64(units))
}

// RecordOrdersIssued records orders sent to the engine
func (c *SessionMetricsCollector) RecordOrdersIssued(orders int) {
	c.ordersIssuedTotal.Add(float64(orders))
}

// RecordBridgeState records engine mod attachment
func (c *SessionMetricsCollector) RecordBridgeState(connected bool) {
	if connected {
		c.bridgeConnected.Set(1)
	} else {
		c.bridgeConnected.Set(0)
	}
}
