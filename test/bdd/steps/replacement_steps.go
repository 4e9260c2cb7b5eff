package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/shared"
	"github.com/rtsops/reinforce/internal/domain/tracker"
	"github.com/rtsops/reinforce/internal/domain/unit"
	"github.com/rtsops/reinforce/test/helpers"
)

// replacementContext holds state for replacement tracking scenarios
type replacementContext struct {
	gateway  *helpers.MockEngineGateway
	notifier *helpers.MockNotifier
	clock    *shared.MockClock
	trk      *tracker.Tracker

	snapshots map[unit.ID]unit.Snapshot
	captured  map[unit.ID]order.Queue
	lastPlan  order.Queue

	lastTagged     int
	lastReconciled int
}

func (rc *replacementContext) reset() {
	rc.gateway = helpers.NewMockEngineGateway()
	rc.notifier = helpers.NewMockNotifier()
	rc.clock = shared.NewMockClock(time.Now())
	rc.trk = nil
	rc.snapshots = make(map[unit.ID]unit.Snapshot)
	rc.captured = make(map[unit.ID]order.Queue)
	rc.lastPlan = nil
	rc.lastTagged = 0
	rc.lastReconciled = 0
}

// parseOrderSpec turns a space-separated listing such as
// "MOVE(500,500,0) PATROL(200,100,0)" into an order queue. A bare verb
// like "STOP" parses to an order without parameters.
func parseOrderSpec(spec string) (order.Queue, error) {
	fields := strings.Fields(spec)
	queue := make(order.Queue, 0, len(fields))
	for _, field := range fields {
		parsed, err := parseOrderToken(field)
		if err != nil {
			return nil, err
		}
		queue = append(queue, parsed)
	}
	return queue, nil
}

func parseOrderToken(token string) (order.Order, error) {
	open := strings.IndexByte(token, '(')
	if open < 0 {
		return order.New(order.Kind(token)), nil
	}
	if !strings.HasSuffix(token, ")") {
		return order.Order{}, fmt.Errorf("malformed order %q", token)
	}
	kind := order.Kind(token[:open])
	var params []float64
	for _, raw := range strings.Split(token[open+1:len(token)-1], ",") {
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return order.Order{}, fmt.Errorf("malformed order %q: %w", token, err)
		}
		params = append(params, value)
	}
	return order.New(kind, params...), nil
}

// ============================================================================
// World Setup Steps
// ============================================================================

func (rc *replacementContext) aTypeCatalogWith(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("expected a catalog table with a header row and at least one type")
	}

	// First row is the header: name | factory | builds
	infos := make([]unit.TypeInfo, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		if len(row.Cells) < 3 {
			return fmt.Errorf("catalog rows need name, factory and builds columns")
		}
		info := unit.TypeInfo{
			Name:      row.Cells[0].Value,
			IsFactory: row.Cells[1].Value == "yes",
		}
		if builds := strings.TrimSpace(row.Cells[2].Value); builds != "" {
			info.Builds = strings.Fields(builds)
		}
		infos = append(infos, info)
	}

	rc.trk = tracker.New(
		rc.gateway,
		rc.notifier,
		unit.NewCatalog(infos),
		[]tracker.ReplacementStrategy{
			tracker.NewAdoptSiblingStrategy(),
			tracker.NewFactoryBuildStrategy(),
		},
		0,
		rc.clock,
		nil,
	)
	return nil
}

func (rc *replacementContext) aLiveUnitAt(unitType string, unitID, x, y int) error {
	snap := unit.Snapshot{
		ID:       unitID,
		Type:     unitType,
		Team:     1,
		Position: shared.NewPosition(float64(x), float64(y), 0),
	}
	rc.gateway.AddUnit(snap, nil)
	rc.snapshots[unitID] = snap
	return nil
}

func (rc *replacementContext) unitHoldsOrders(unitID int, spec string) error {
	orders, err := parseOrderSpec(spec)
	if err != nil {
		return err
	}
	rc.gateway.SetUnitOrders(unitID, orders)
	return nil
}

// ============================================================================
// Action Steps
// ============================================================================

func (rc *replacementContext) iTagUnitForReplacement(unitID int) error {
	tagged, err := rc.trk.Tag(context.Background(), []unit.ID{unitID})
	if err != nil {
		return err
	}
	rc.lastTagged = tagged

	// Remember what was captured so later assertions can compare the queue
	// a replacement received against the queue the original held.
	if w, ok := rc.trk.WatchOf(unitID); ok {
		rc.captured[unitID] = w.Orders()
	}
	return nil
}

func (rc *replacementContext) iUntagUnit(unitID int) error {
	_, err := rc.trk.Untag(context.Background(), []unit.ID{unitID})
	return err
}

func (rc *replacementContext) unitIsDestroyed(unitID int) error {
	snap, ok := rc.snapshots[unitID]
	if !ok {
		snap = unit.Snapshot{ID: unitID}
	}
	rc.gateway.RemoveUnit(unitID)
	return rc.trk.Apply(context.Background(), tracker.UnitDestroyedEvent{Unit: snap})
}

func (rc *replacementContext) unitVanishesWithoutAnEvent(unitID int) error {
	rc.gateway.RemoveUnit(unitID)
	return nil
}

func (rc *replacementContext) factoryCompletesAUnit(factoryID int, unitType string, unitID int) error {
	snap, ok := rc.snapshots[unitID]
	if !ok {
		return fmt.Errorf("unit %d must be live before factory %d can complete it", unitID, factoryID)
	}
	if snap.Type != unitType {
		return fmt.Errorf("unit %d is a %s, not a %s", unitID, snap.Type, unitType)
	}
	return rc.trk.Apply(context.Background(), tracker.UnitBuiltEvent{Unit: snap, FactoryID: factoryID})
}

func (rc *replacementContext) unitIsLoadedOntoTransport(unitID, transportID int) error {
	snap, ok := rc.snapshots[unitID]
	if !ok {
		return fmt.Errorf("unit %d is not live", unitID)
	}
	return rc.trk.Apply(context.Background(), tracker.UnitLoadedEvent{Unit: snap, TransportID: transportID})
}

func (rc *replacementContext) unitIsUnloaded(unitID int) error {
	snap, ok := rc.snapshots[unitID]
	if !ok {
		snap = unit.Snapshot{ID: unitID}
	}
	return rc.trk.Apply(context.Background(), tracker.UnitUnloadedEvent{Unit: snap})
}

func (rc *replacementContext) theTrackerReconciles() error {
	reconciled, err := rc.trk.Reconcile(context.Background())
	if err != nil {
		return err
	}
	rc.lastReconciled = reconciled
	return nil
}

// ============================================================================
// Assertion Steps
// ============================================================================

func (rc *replacementContext) unitsShouldBeTagged(count int) error {
	if rc.lastTagged != count {
		return fmt.Errorf("expected %d units tagged but got %d", count, rc.lastTagged)
	}
	return nil
}

func (rc *replacementContext) unitShouldBeWatched(unitID int) error {
	if !rc.trk.IsTracked(unitID) {
		return fmt.Errorf("expected unit %d to be watched but it is not", unitID)
	}
	return nil
}

func (rc *replacementContext) unitShouldNotBeWatched(unitID int) error {
	if rc.trk.IsTracked(unitID) {
		return fmt.Errorf("expected unit %d to not be watched but it is", unitID)
	}
	return nil
}

func (rc *replacementContext) theWatchShouldHoldOrders(unitID, count int) error {
	w, ok := rc.trk.WatchOf(unitID)
	if !ok {
		return fmt.Errorf("unit %d has no watch", unitID)
	}
	if got := len(w.Orders()); got != count {
		return fmt.Errorf("expected watch with %d orders but got %d: %s", count, got, w.Orders())
	}
	return nil
}

func (rc *replacementContext) theFirstWatchedOrderShouldBe(unitID int, expected string) error {
	w, ok := rc.trk.WatchOf(unitID)
	if !ok {
		return fmt.Errorf("unit %d has no watch", unitID)
	}
	orders := w.Orders()
	if len(orders) == 0 {
		return fmt.Errorf("watch for unit %d holds no orders", unitID)
	}
	if got := orders[0].String(); got != expected {
		return fmt.Errorf("expected first order '%s' but got '%s'", expected, got)
	}
	return nil
}

func (rc *replacementContext) unitShouldHaveBeenIssuedCapturedOrders(heirID, originalID int) error {
	expected, ok := rc.captured[originalID]
	if !ok {
		return fmt.Errorf("no capture was recorded for unit %d", originalID)
	}
	issued, ok := rc.gateway.LastIssuedTo(heirID)
	if !ok {
		return fmt.Errorf("no orders were issued to unit %d", heirID)
	}
	if !issued.Equal(expected) {
		return fmt.Errorf("expected unit %d to receive %s but got %s", heirID, expected, issued)
	}
	return nil
}

func (rc *replacementContext) unitShouldHaveBeenIssued(unitID int, spec string) error {
	expected, err := parseOrderSpec(spec)
	if err != nil {
		return err
	}
	issued, ok := rc.gateway.LastIssuedTo(unitID)
	if !ok {
		return fmt.Errorf("no orders were issued to unit %d", unitID)
	}
	if !issued.Equal(expected) {
		return fmt.Errorf("expected unit %d to receive %s but got %s", unitID, expected, issued)
	}
	return nil
}

func (rc *replacementContext) unitShouldHaveBeenIssuedNothing(unitID int) error {
	if issued, ok := rc.gateway.LastIssuedTo(unitID); ok {
		return fmt.Errorf("expected nothing issued to unit %d but got %s", unitID, issued)
	}
	return nil
}

func (rc *replacementContext) aNotificationShouldMention(text string) error {
	for _, msg := range rc.notifier.Messages() {
		if strings.Contains(msg, text) {
			return nil
		}
	}
	return fmt.Errorf("no notification mentions '%s', got %v", text, rc.notifier.Messages())
}

func (rc *replacementContext) buildsShouldBePending(count int) error {
	if got := len(rc.trk.Pending()); got != count {
		return fmt.Errorf("expected %d pending builds but got %d", count, got)
	}
	return nil
}

func (rc *replacementContext) noBuildShouldBePending() error {
	return rc.buildsShouldBePending(0)
}

func (rc *replacementContext) aBuildShouldHaveBeenRequested(unitType string, factoryID int) error {
	for _, call := range rc.gateway.IssuedBuildCalls() {
		if call.UnitType == unitType && call.FactoryID == factoryID {
			return nil
		}
	}
	return fmt.Errorf("no build for '%s' was requested at factory %d", unitType, factoryID)
}

func (rc *replacementContext) watchesShouldHaveBeenReconciled(count int) error {
	if rc.lastReconciled != count {
		return fmt.Errorf("expected %d watches reconciled but got %d", count, rc.lastReconciled)
	}
	return nil
}

func (rc *replacementContext) theCachedOrdersShouldBe(unitID int, spec string) error {
	expected, err := parseOrderSpec(spec)
	if err != nil {
		return err
	}
	cached, ok := rc.trk.TransitOrders(unitID)
	if !ok {
		return fmt.Errorf("no orders are cached for unit %d", unitID)
	}
	if !cached.Equal(expected) {
		return fmt.Errorf("expected cache %s but got %s", expected, cached)
	}
	return nil
}

func (rc *replacementContext) noOrdersShouldRemainCached(unitID int) error {
	if cached, ok := rc.trk.TransitOrders(unitID); ok {
		return fmt.Errorf("expected no cache for unit %d but found %s", unitID, cached)
	}
	return nil
}

func (rc *replacementContext) transportShouldHaveBeenIssuedAPlanOf(transportID, count int) error {
	plan, ok := rc.gateway.LastIssuedTo(transportID)
	if !ok {
		return fmt.Errorf("no plan was issued to transport %d", transportID)
	}
	rc.lastPlan = plan
	if len(plan) != count {
		return fmt.Errorf("expected a plan of %d orders but got %d: %s", count, len(plan), plan)
	}
	return nil
}

func (rc *replacementContext) theTransportPlanShouldStartWith(expected string) error {
	if len(rc.lastPlan) == 0 {
		return fmt.Errorf("no transport plan was captured")
	}
	if got := rc.lastPlan[0].String(); got != expected {
		return fmt.Errorf("expected plan to start with '%s' but got '%s'", expected, got)
	}
	return nil
}

func (rc *replacementContext) theTransportPlanShouldInclude(expected string) error {
	for _, o := range rc.lastPlan {
		if o.String() == expected {
			return nil
		}
	}
	return fmt.Errorf("expected plan to include '%s' but got %s", expected, rc.lastPlan)
}

func (rc *replacementContext) theTransportPlanShouldEndWith(expected string) error {
	if len(rc.lastPlan) == 0 {
		return fmt.Errorf("no transport plan was captured")
	}
	if got := rc.lastPlan[len(rc.lastPlan)-1].String(); got != expected {
		return fmt.Errorf("expected plan to end with '%s' but got '%s'", expected, got)
	}
	return nil
}

func (rc *replacementContext) theWatchShouldHaveNoFactoryOrdersLeft(unitID int) error {
	w, ok := rc.trk.WatchOf(unitID)
	if !ok {
		return fmt.Errorf("unit %d has no watch", unitID)
	}
	if w.HasFactoryOrders() {
		return fmt.Errorf("expected no factory orders left but %d remain", len(w.FactoryOrders()))
	}
	return nil
}

func (rc *replacementContext) transportShouldHaveBeenIssuedPlansInTotal(transportID, count int) error {
	total := 0
	for _, call := range rc.gateway.IssuedOrderCalls() {
		if call.UnitID == transportID {
			total++
		}
	}
	if total != count {
		return fmt.Errorf("expected %d plans issued to transport %d but got %d", count, transportID, total)
	}
	return nil
}

// ============================================================================
// Step Registration
// ============================================================================

// InitializeReplacementScenario registers the replacement tracking step definitions
func InitializeReplacementScenario(ctx *godog.ScenarioContext) {
	rc := &replacementContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		rc.reset()
		return ctx, nil
	})

	// World setup steps
	ctx.Step(`^a type catalog with:$`, rc.aTypeCatalogWith)
	ctx.Step(`^a live "([^"]*)" unit (\d+) at \((\d+), (\d+)\)$`, rc.aLiveUnitAt)
	ctx.Step(`^unit (\d+) holds orders "([^"]*)"$`, rc.unitHoldsOrders)
	ctx.Step(`^unit (\d+) now holds orders "([^"]*)"$`, rc.unitHoldsOrders)

	// Action steps
	ctx.Step(`^I tag unit (\d+) for replacement$`, rc.iTagUnitForReplacement)
	ctx.Step(`^I untag unit (\d+)$`, rc.iUntagUnit)
	ctx.Step(`^unit (\d+) is destroyed$`, rc.unitIsDestroyed)
	ctx.Step(`^unit (\d+) vanishes from the world without an event$`, rc.unitVanishesWithoutAnEvent)
	ctx.Step(`^factory (\d+) completes a "([^"]*)" as unit (\d+)$`, rc.factoryCompletesAUnit)
	ctx.Step(`^unit (\d+) is loaded onto transport (\d+)$`, rc.unitIsLoadedOntoTransport)
	ctx.Step(`^unit (\d+) is unloaded$`, rc.unitIsUnloaded)
	ctx.Step(`^the tracker reconciles against the live world$`, rc.theTrackerReconciles)

	// Assertion steps
	ctx.Step(`^(\d+) units? should be tagged$`, rc.unitsShouldBeTagged)
	ctx.Step(`^unit (\d+) should be watched$`, rc.unitShouldBeWatched)
	ctx.Step(`^unit (\d+) should not be watched$`, rc.unitShouldNotBeWatched)
	ctx.Step(`^the watch for unit (\d+) should hold (\d+) orders$`, rc.theWatchShouldHoldOrders)
	ctx.Step(`^the first watched order of unit (\d+) should be "([^"]*)"$`, rc.theFirstWatchedOrderShouldBe)
	ctx.Step(`^unit (\d+) should have been issued the orders captured from unit (\d+)$`, rc.unitShouldHaveBeenIssuedCapturedOrders)
	ctx.Step(`^unit (\d+) should have been issued "([^"]*)"$`, rc.unitShouldHaveBeenIssued)
	ctx.Step(`^unit (\d+) should have been issued nothing$`, rc.unitShouldHaveBeenIssuedNothing)
	ctx.Step(`^a notification should mention "([^"]*)"$`, rc.aNotificationShouldMention)
	ctx.Step(`^(\d+) builds? should be pending$`, rc.buildsShouldBePending)
	ctx.Step(`^no build should be pending$`, rc.noBuildShouldBePending)
	ctx.Step(`^a build for "([^"]*)" should have been requested at factory (\d+)$`, rc.aBuildShouldHaveBeenRequested)
	ctx.Step(`^(\d+) watch(?:es)? should have been reconciled$`, rc.watchesShouldHaveBeenReconciled)
	ctx.Step(`^the cached orders for unit (\d+) should be "([^"]*)"$`, rc.theCachedOrdersShouldBe)
	ctx.Step(`^no orders should remain cached for unit (\d+)$`, rc.noOrdersShouldRemainCached)
	ctx.Step(`^transport (\d+) should have been issued a plan of (\d+) orders$`, rc.transportShouldHaveBeenIssuedAPlanOf)
	ctx.Step(`^the transport plan should start with "([^"]*)"$`, rc.theTransportPlanShouldStartWith)
	ctx.Step(`^the transport plan should include "([^"]*)"$`, rc.theTransportPlanShouldInclude)
	ctx.Step(`^the transport plan should end with "([^"]*)"$`, rc.theTransportPlanShouldEndWith)
	ctx.Step(`^the watch for unit (\d+) should have no factory orders left$`, rc.theWatchShouldHaveNoFactoryOrdersLeft)
	ctx.Step(`^transport (\d+) should have been issued (\d+) plans? in total$`, rc.transportShouldHaveBeenIssuedPlansInTotal)
}
