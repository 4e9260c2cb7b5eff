package enginebridge

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/rtsops/reinforce/internal/adapters/metrics"
	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/shared"
	"github.com/rtsops/reinforce/internal/domain/unit"
)

// defaultOrderDepth caps how much of a unit's queue a query returns when the
// caller does not say otherwise.
const defaultOrderDepth = 32

// Default engine command pacing, applied when the config leaves it unset.
const (
	defaultOrderRate  = 30
	defaultOrderBurst = 60
)

// Gateway implements the domain's EngineGateway and Notifier ports on top of
// the mod connection. Reads answer from the world mirror; writes go over the
// wire, rate limited so replacement bursts never flood the engine's per-tick
// command budget.
type Gateway struct {
	conn    *Connection
	mirror  *Mirror
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewGateway creates a gateway over an established mod connection.
// Non-positive pacing values fall back to 30 commands/s with burst of 60.
func NewGateway(conn *Connection, mirror *Mirror, orderRate float64, orderBurst int, logger *slog.Logger) *Gateway {
	if orderRate <= 0 {
		orderRate = defaultOrderRate
	}
	if orderBurst <= 0 {
		orderBurst = defaultOrderBurst
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		conn:    conn,
		mirror:  mirror,
		limiter: rate.NewLimiter(rate.Limit(orderRate), orderBurst),
		logger:  logger,
	}
}

// Unit returns the mirrored snapshot of a live unit.
func (g *Gateway) Unit(ctx context.Context, unitID unit.ID) (unit.Snapshot, error) {
	data, ok := g.mirror.Unit(unitID)
	if !ok {
		return unit.Snapshot{}, shared.NewUnitNotFoundError(unitID)
	}
	return data.Snapshot(), nil
}

// LiveUnits returns snapshots of every mirrored unit, sorted by ID.
func (g *Gateway) LiveUnits(ctx context.Context) ([]unit.Snapshot, error) {
	data := g.mirror.Units()
	snapshots := make([]unit.Snapshot, 0, len(data))
	for _, u := range data {
		snapshots = append(snapshots, u.Snapshot())
	}
	return snapshots, nil
}

// UnitOrders returns up to depth entries of the unit's mirrored order queue.
func (g *Gateway) UnitOrders(ctx context.Context, unitID unit.ID, depth int) (order.Queue, error) {
	data, ok := g.mirror.Unit(unitID)
	if !ok {
		return nil, shared.NewUnitNotFoundError(unitID)
	}
	if depth <= 0 {
		depth = defaultOrderDepth
	}

	queue := data.OrderQueue()
	return queue[:min(depth, len(queue))], nil
}

// IssueOrders sends an order sequence to a unit. The wire shaping makes the
// first order replace the unit's queue and the rest append behind it.
func (g *Gateway) IssueOrders(ctx context.Context, unitID unit.ID, orders order.Queue) error {
	if len(orders) == 0 {
		return nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	msg := IssueOrdersMessage{UnitID: unitID, Orders: ordersToWire(orders)}
	if err := g.conn.Send(TypeIssueOrders, msg); err != nil {
		return fmt.Errorf("failed to issue orders to unit %d: %w", unitID, err)
	}

	metrics.RecordOrdersIssued(len(orders))
	g.logger.Debug("orders issued", "unit_id", unitID, "orders", len(orders))
	return nil
}

// IssueBuild asks a factory to enqueue construction of the given unit type.
func (g *Gateway) IssueBuild(ctx context.Context, factoryID unit.ID, unitType string) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	msg := IssueBuildMessage{FactoryID: factoryID, UnitType: unitType}
	if err := g.conn.Send(TypeIssueBuild, msg); err != nil {
		return fmt.Errorf("failed to issue build at factory %d: %w", factoryID, err)
	}

	g.logger.Debug("build issued", "factory_id", factoryID, "unit_type", unitType)
	return nil
}

// Notify pushes a console message to the player. Notices skip the command
// rate limiter, they are rare and should not queue behind order bursts.
func (g *Gateway) Notify(ctx context.Context, message string) error {
	if err := g.conn.Send(TypeNotice, NoticeMessage{Text: message}); err != nil {
		return fmt.Errorf("failed to send notice: %w", err)
	}
	return nil
}
