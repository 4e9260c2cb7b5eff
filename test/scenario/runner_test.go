//go:build scenario

package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rtsops/reinforce/internal/adapters/enginebridge"
	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/application/lifecycle"
	"github.com/rtsops/reinforce/internal/application/sessions"
	"github.com/rtsops/reinforce/internal/application/tracking"
)

const scenarioLuaGlob = "test/scenario/scenarios/*.lua"

// scenarioState accumulates what the script has established so far: the mod
// connection, the last pushed world, and the mediator of the open session.
type scenarioState struct {
	env      *bridgeEnv
	conn     net.Conn
	outbox   *outbox
	mediator common.Mediator
	team     int
	frame    int
	units    map[int]enginebridge.UnitData
}

func TestScenarioScripts(t *testing.T) {
	paths := scenarioLuaPaths(t)
	for _, path := range paths {
		path := path
		scenario, err := loadScenarioFromFile(path)
		if err != nil {
			t.Fatalf("load scenario %s: %v", path, err)
		}
		name := scenario.Name
		if name == "" {
			name = filepath.Base(path)
		}
		t.Run(name, func(t *testing.T) {
			runScenario(t, scenario)
		})
	}
}

func scenarioLuaPaths(t *testing.T) []string {
	t.Helper()

	pattern := filepath.Join(repoRoot(t), scenarioLuaGlob)
	paths, err := filepath.Glob(pattern)
	if err != nil {
		t.Fatalf("glob scenarios: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no scenarios found for %s", pattern)
	}
	sort.Strings(paths)
	return paths
}

func runScenario(t *testing.T, scenario *Scenario) {
	t.Helper()

	env, stop := startEngineBridge(t)
	defer stop()

	conn := dialEngine(t, env.socketPath)
	defer conn.Close()

	state := &scenarioState{
		env:    env,
		conn:   conn,
		outbox: newOutbox(conn),
		team:   1,
		units:  map[int]enginebridge.UnitData{},
	}
	for index, step := range scenario.Steps {
		step := step
		t.Run(fmt.Sprintf("%02d_%s", index+1, step.Kind), func(t *testing.T) {
			runStep(t, state, step)
		})
	}
}

func runStep(t *testing.T, state *scenarioState, step Step) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), scenarioTimeout())
	defer cancel()

	switch step.Kind {
	case "hello":
		runHelloStep(t, state, step)
	case "world_update":
		runWorldStep(t, state, step)
	case "tag":
		runKeyStep(t, state, step, "t")
	case "untag":
		runKeyStep(t, state, step, "u")
	case "unit_destroyed":
		runDestroyStep(t, state, step)
	case "unit_built":
		runBuiltStep(t, state, step)
	case "unit_loaded":
		runLoadedStep(t, state, step)
	case "unit_unloaded":
		runUnloadedStep(t, state, step)
	case "reconcile":
		runReconcileStep(t, ctx, state, step)
	case "expect_orders":
		runExpectOrdersStep(t, state, step)
	case "expect_build":
		runExpectBuildStep(t, state, step)
	case "expect_notice":
		runExpectNoticeStep(t, state, step)
	case "expect_watches":
		runExpectWatchesStep(t, ctx, state, step)
	case "expect_pending":
		runExpectPendingStep(t, ctx, state, step)
	case "expect_status":
		runExpectStatusStep(t, ctx, state, step)
	case "expect_journal":
		runExpectJournalStep(t, ctx, state, step)
	default:
		t.Fatalf("unknown step kind %q", step.Kind)
	}
}

func runHelloStep(t *testing.T, state *scenarioState, step Step) {
	game := optionalString(step.Args, "game", "scenario-game")
	mapName := optionalString(step.Args, "map", "Scenario Map")
	team := optionalInt(step.Args, "team", 1)
	types := readTypeList(t, step.Args, "types")

	state.team = team
	writeWire(t, state.conn, enginebridge.TypeHello, enginebridge.HelloMessage{
		Game:      game,
		Map:       mapName,
		Team:      team,
		UnitTypes: types,
	})

	env := state.outbox.waitNext(t, enginebridge.TypeAck)
	var ack enginebridge.AckMessage
	if err := json.Unmarshal(env.Data, &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if ack.Status != "ok" {
		t.Fatalf("handshake rejected with status %q", ack.Status)
	}

	mediator, ok := state.env.runner.CurrentMediator()
	if !ok {
		t.Fatal("no active session after handshake")
	}
	state.mediator = mediator
}

func runWorldStep(t *testing.T, state *scenarioState, step Step) {
	frame := optionalInt(step.Args, "frame", state.frame+1)
	units := readUnitList(t, state, step.Args, "units")

	state.frame = frame
	state.units = make(map[int]enginebridge.UnitData, len(units))
	for _, u := range units {
		state.units[u.ID] = u
	}

	writeWire(t, state.conn, enginebridge.TypeWorldUpdate, enginebridge.WorldUpdate{
		Frame: frame,
		Units: units,
	})
}

// runKeyStep presses the tag or untag hotkey with the scripted selection.
// Keys match the daemon's default keymap.
func runKeyStep(t *testing.T, state *scenarioState, step Step, key string) {
	ids := readIDList(t, step.Args, "units")
	if len(ids) == 0 {
		t.Fatalf("%s step needs units", step.Kind)
	}

	writeWire(t, state.conn, enginebridge.TypeKeyPressed, enginebridge.KeyPressedMessage{
		Key:             key,
		Alt:             true,
		SelectedUnitIDs: ids,
	})
}

func runDestroyStep(t *testing.T, state *scenarioState, step Step) {
	unitID, ok := readInt(step.Args, "unit")
	if !ok {
		t.Fatal("destroy step needs a unit")
	}

	data := state.unitData(t, unitID, step.Args)
	delete(state.units, unitID)

	writeWire(t, state.conn, enginebridge.TypeUnitDestroyed, enginebridge.UnitDestroyedMessage{
		Unit:       data,
		AttackerID: optionalInt(step.Args, "attacker", 0),
	})
}

func runBuiltStep(t *testing.T, state *scenarioState, step Step) {
	factoryID, ok := readInt(step.Args, "factory")
	if !ok {
		t.Fatal("built step needs a factory")
	}
	entry, ok := step.Args["unit"].(map[string]any)
	if !ok {
		t.Fatal("built step needs a unit table")
	}

	data := unitDataFromMap(t, state, entry)
	state.units[data.ID] = data

	writeWire(t, state.conn, enginebridge.TypeUnitBuilt, enginebridge.UnitBuiltMessage{
		Unit:      data,
		FactoryID: factoryID,
	})
}

func runLoadedStep(t *testing.T, state *scenarioState, step Step) {
	unitID, ok := readInt(step.Args, "unit")
	if !ok {
		t.Fatal("loaded step needs a unit")
	}
	transportID, ok := readInt(step.Args, "transport")
	if !ok {
		t.Fatal("loaded step needs a transport")
	}

	data := state.unitData(t, unitID, step.Args)
	writeWire(t, state.conn, enginebridge.TypeUnitLoaded, enginebridge.UnitLoadedMessage{
		Unit:        data,
		TransportID: transportID,
	})
}

func runUnloadedStep(t *testing.T, state *scenarioState, step Step) {
	unitID, ok := readInt(step.Args, "unit")
	if !ok {
		t.Fatal("unloaded step needs a unit")
	}
	transportID, ok := readInt(step.Args, "transport")
	if !ok {
		t.Fatal("unloaded step needs a transport")
	}

	data := state.unitData(t, unitID, step.Args)
	state.units[unitID] = data

	writeWire(t, state.conn, enginebridge.TypeUnitUnloaded, enginebridge.UnitUnloadedMessage{
		Unit:        data,
		TransportID: transportID,
	})
}

// runReconcileStep sweeps via the mediator, the same path the cron sweeper
// takes. The sweep races the read loop applying the script's last world
// update, so when a count is expected the step retries until it lands.
func runReconcileStep(t *testing.T, ctx context.Context, state *scenarioState, step Step) {
	if state.mediator == nil {
		t.Fatal("reconcile before hello")
	}

	want, wantCount := readInt(step.Args, "expect")

	var last int
	deadline := time.Now().Add(scenarioTimeout())
	for {
		resp, err := state.mediator.Send(ctx, &lifecycle.ReconcileCommand{})
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		last = resp.(*lifecycle.ReconcileResponse).Reconciled
		if !wantCount || last == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("reconciled %d watches, want %d", last, want)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func runExpectOrdersStep(t *testing.T, state *scenarioState, step Step) {
	unitID, ok := readInt(step.Args, "unit")
	if !ok {
		t.Fatal("expect_orders needs a unit")
	}
	spec := requiredString(step.Args, "orders")
	if spec == "" {
		t.Fatal("expect_orders needs orders")
	}
	want := parseOrderList(t, spec)

	env := state.outbox.waitNext(t, enginebridge.TypeIssueOrders)
	var msg enginebridge.IssueOrdersMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("unmarshal issue_orders: %v", err)
	}

	if msg.UnitID != unitID {
		t.Fatalf("orders went to unit %d, want unit %d: %s", msg.UnitID, unitID, renderWireOrders(msg.Orders))
	}
	if len(msg.Orders) != len(want) {
		t.Fatalf("unit %d received %q, want %q", unitID, renderWireOrders(msg.Orders), renderWireOrders(want))
	}
	for i := range want {
		got := msg.Orders[i]
		if got.Kind != want[i].Kind || !floatsEqual(got.Params, want[i].Params) {
			t.Fatalf("order %d is %s, want %s", i+1, renderWireOrder(got), renderWireOrder(want[i]))
		}
		// First order replaces the unit's queue, the rest append behind it.
		if got.Queued != (i > 0) {
			t.Fatalf("order %d queued flag is %v", i+1, got.Queued)
		}
	}
}

func runExpectBuildStep(t *testing.T, state *scenarioState, step Step) {
	factoryID, ok := readInt(step.Args, "factory")
	if !ok {
		t.Fatal("expect_build needs a factory")
	}
	unitType := requiredString(step.Args, "type")
	if unitType == "" {
		t.Fatal("expect_build needs a type")
	}

	env := state.outbox.waitNext(t, enginebridge.TypeIssueBuild)
	var msg enginebridge.IssueBuildMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("unmarshal issue_build: %v", err)
	}

	if msg.FactoryID != factoryID || msg.UnitType != unitType {
		t.Fatalf("build for %q at factory %d, want %q at factory %d",
			msg.UnitType, msg.FactoryID, unitType, factoryID)
	}
}

func runExpectNoticeStep(t *testing.T, state *scenarioState, step Step) {
	contains := requiredString(step.Args, "contains")
	if contains == "" {
		t.Fatal("expect_notice needs a contains text")
	}

	env := state.outbox.waitNext(t, enginebridge.TypeNotice)
	var msg enginebridge.NoticeMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("unmarshal notice: %v", err)
	}

	if !strings.Contains(msg.Text, contains) {
		t.Fatalf("notice %q does not mention %q", msg.Text, contains)
	}
}

func runExpectWatchesStep(t *testing.T, ctx context.Context, state *scenarioState, step Step) {
	if state.mediator == nil {
		t.Fatal("expect_watches before hello")
	}
	count, ok := readInt(step.Args, "count")
	if !ok {
		t.Fatal("expect_watches needs a count")
	}
	wantUnits := readIDList(t, step.Args, "units")

	waitFor(t, "watch table to match", func() (bool, string) {
		resp, err := state.mediator.Send(ctx, &tracking.ListWatchesQuery{})
		if err != nil {
			return false, err.Error()
		}
		watches := resp.(*tracking.ListWatchesResponse).Watches
		if len(watches) != count {
			return false, fmt.Sprintf("have %d watches, want %d", len(watches), count)
		}
		watched := make(map[int]bool, len(watches))
		for _, w := range watches {
			watched[w.UnitID] = true
		}
		for _, id := range wantUnits {
			if !watched[id] {
				return false, fmt.Sprintf("unit %d is not watched", id)
			}
		}
		return true, ""
	})
}

func runExpectPendingStep(t *testing.T, ctx context.Context, state *scenarioState, step Step) {
	if state.mediator == nil {
		t.Fatal("expect_pending before hello")
	}
	count, ok := readInt(step.Args, "count")
	if !ok {
		t.Fatal("expect_pending needs a count")
	}
	wantType := optionalString(step.Args, "type", "")
	wantFactory, wantFactorySet := readInt(step.Args, "factory")

	waitFor(t, "pending builds to match", func() (bool, string) {
		resp, err := state.mediator.Send(ctx, &tracking.ListPendingBuildsQuery{})
		if err != nil {
			return false, err.Error()
		}
		builds := resp.(*tracking.ListPendingBuildsResponse).Builds
		if len(builds) != count {
			return false, fmt.Sprintf("have %d pending builds, want %d", len(builds), count)
		}
		if wantType == "" {
			return true, ""
		}
		for _, b := range builds {
			if b.UnitType != wantType {
				continue
			}
			if wantFactorySet && b.FactoryID != wantFactory {
				continue
			}
			return true, ""
		}
		return false, fmt.Sprintf("no pending %q build", wantType)
	})
}

func runExpectStatusStep(t *testing.T, ctx context.Context, state *scenarioState, step Step) {
	if state.mediator == nil {
		t.Fatal("expect_status before hello")
	}

	waitFor(t, "session status to match", func() (bool, string) {
		resp, err := state.mediator.Send(ctx, &sessions.GetStatusQuery{})
		if err != nil {
			return false, err.Error()
		}
		status := resp.(*sessions.GetStatusResponse).Status

		if want := optionalString(step.Args, "status", ""); want != "" && status.Status != want {
			return false, fmt.Sprintf("status is %s, want %s", status.Status, want)
		}
		if want, ok := readInt(step.Args, "watches"); ok && status.Watches != want {
			return false, fmt.Sprintf("have %d watches, want %d", status.Watches, want)
		}
		if want, ok := readInt(step.Args, "pending"); ok && status.PendingBuilds != want {
			return false, fmt.Sprintf("have %d pending builds, want %d", status.PendingBuilds, want)
		}
		if want, ok := readInt(step.Args, "in_transit"); ok && status.InTransit != want {
			return false, fmt.Sprintf("have %d in transit, want %d", status.InTransit, want)
		}
		return true, ""
	})
}

func runExpectJournalStep(t *testing.T, ctx context.Context, state *scenarioState, step Step) {
	if state.mediator == nil {
		t.Fatal("expect_journal before hello")
	}
	event := requiredString(step.Args, "event")
	if event == "" {
		t.Fatal("expect_journal needs an event")
	}
	contains := optionalString(step.Args, "contains", "")
	atLeast := optionalInt(step.Args, "at_least", 1)

	resp, err := state.mediator.Send(ctx, &sessions.GetStatusQuery{})
	if err != nil {
		t.Fatalf("resolve session id: %v", err)
	}
	sessionID := resp.(*sessions.GetStatusResponse).Status.SessionID

	waitFor(t, fmt.Sprintf("journal to record %q", event), func() (bool, string) {
		entries, err := state.env.journalRepo.ListBySession(ctx, sessionID, 0)
		if err != nil {
			return false, err.Error()
		}
		matched := 0
		for _, entry := range entries {
			if entry.Event != event {
				continue
			}
			if contains != "" && !strings.Contains(entry.Detail, contains) {
				continue
			}
			matched++
		}
		if matched < atLeast {
			return false, fmt.Sprintf("have %d matching entries of %d total, want %d", matched, len(entries), atLeast)
		}
		return true, ""
	})
}

// unitData resolves an event's unit payload from the scripted world, with
// per-event position and order overrides.
func (s *scenarioState) unitData(t *testing.T, id int, args map[string]any) enginebridge.UnitData {
	t.Helper()

	data, ok := s.units[id]
	if !ok {
		t.Fatalf("unit %d is not in the scripted world", id)
	}
	data.X = readFloat(args, "x", data.X)
	data.Y = readFloat(args, "y", data.Y)
	data.Z = readFloat(args, "z", data.Z)
	if spec := optionalString(args, "orders", ""); spec != "" {
		data.Orders = parseOrderList(t, spec)
	}
	return data
}

func readTypeList(t *testing.T, args map[string]any, key string) []enginebridge.UnitTypeData {
	t.Helper()

	value, ok := args[key]
	if !ok {
		t.Fatal("hello step needs types")
	}
	list, ok := value.([]any)
	if !ok {
		t.Fatalf("%s must be a list", key)
	}

	types := make([]enginebridge.UnitTypeData, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			t.Fatalf("%s entries must be tables", key)
		}
		data := enginebridge.UnitTypeData{
			Name:      requiredString(entry, "name"),
			Factory:   optionalBool(entry, "factory", false),
			Transport: optionalBool(entry, "transport", false),
			Builds:    readStringSlice(entry, "builds"),
		}
		if data.Name == "" {
			t.Fatal("unit type needs a name")
		}
		types = append(types, data)
	}
	return types
}

func readUnitList(t *testing.T, state *scenarioState, args map[string]any, key string) []enginebridge.UnitData {
	t.Helper()

	value, ok := args[key]
	if !ok {
		t.Fatalf("world step needs %s", key)
	}
	list, ok := value.([]any)
	if !ok {
		t.Fatalf("%s must be a list", key)
	}

	units := make([]enginebridge.UnitData, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			t.Fatalf("%s entries must be tables", key)
		}
		units = append(units, unitDataFromMap(t, state, entry))
	}
	return units
}

func unitDataFromMap(t *testing.T, state *scenarioState, entry map[string]any) enginebridge.UnitData {
	t.Helper()

	id, ok := readInt(entry, "id")
	if !ok {
		t.Fatal("unit needs an id")
	}
	typeName := requiredString(entry, "type")
	if typeName == "" {
		t.Fatalf("unit %d needs a type", id)
	}

	data := enginebridge.UnitData{
		ID:   id,
		Type: typeName,
		Team: optionalInt(entry, "team", state.team),
		X:    readFloat(entry, "x", 0),
		Y:    readFloat(entry, "y", 0),
		Z:    readFloat(entry, "z", 0),
	}
	if spec := optionalString(entry, "orders", ""); spec != "" {
		data.Orders = parseOrderList(t, spec)
	}
	return data
}

func readIDList(t *testing.T, args map[string]any, key string) []int {
	t.Helper()

	value, ok := args[key]
	if !ok {
		return nil
	}
	list, ok := value.([]any)
	if !ok {
		t.Fatalf("%s must be a list", key)
	}

	ids := make([]int, 0, len(list))
	for _, item := range list {
		switch typed := item.(type) {
		case int:
			ids = append(ids, typed)
		case float64:
			ids = append(ids, int(typed))
		default:
			t.Fatalf("%s entries must be numbers", key)
		}
	}
	return ids
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func requiredString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return ""
}

func readInt(args map[string]any, key string) (int, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return typed, true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}

func readFloat(args map[string]any, key string, fallback float64) float64 {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	switch typed := value.(type) {
	case int:
		return float64(typed)
	case float64:
		return typed
	default:
		return fallback
	}
}

func optionalString(args map[string]any, key, fallback string) string {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return fallback
}

func optionalInt(args map[string]any, key string, fallback int) int {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	switch typed := value.(type) {
	case int:
		return typed
	case float64:
		return int(typed)
	default:
		return fallback
	}
}

func optionalBool(args map[string]any, key string, fallback bool) bool {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		lower := strings.ToLower(strings.TrimSpace(typed))
		if lower == "true" || lower == "yes" || lower == "1" {
			return true
		}
		if lower == "false" || lower == "no" || lower == "0" {
			return false
		}
	}
	return fallback
}

func readStringSlice(args map[string]any, key string) []string {
	value, ok := args[key]
	if !ok {
		return nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if text, ok := item.(string); ok {
			out = append(out, text)
		}
	}
	return out
}
