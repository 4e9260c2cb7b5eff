package enginebridge

import (
	"github.com/rtsops/reinforce/internal/domain/order"
	"github.com/rtsops/reinforce/internal/domain/shared"
	"github.com/rtsops/reinforce/internal/domain/tracker"
	"github.com/rtsops/reinforce/internal/domain/unit"
)

// Message type constants - must stay in sync with the mod's message table.
const (
	// mod -> daemon
	TypeHello         = "hello"
	TypeWorldUpdate   = "world_update"
	TypeUnitDestroyed = "unit_destroyed"
	TypeUnitBuilt     = "unit_built"
	TypeUnitLoaded    = "unit_loaded"
	TypeUnitUnloaded  = "unit_unloaded"
	TypeKeyPressed    = "key_pressed"

	// daemon -> mod
	TypeAck         = "ack"
	TypeIssueOrders = "issue_orders"
	TypeIssueBuild  = "issue_build"
	TypeNotice      = "notice"
)

// HelloMessage opens a session. The mod sends it once per game, right after
// connecting, with the unit-type catalog for the loaded mod.
type HelloMessage struct {
	Game      string         `json:"game"`
	Map       string         `json:"map"`
	Team      int            `json:"team"`
	UnitTypes []UnitTypeData `json:"unitTypes"`
}

// UnitTypeData describes one buildable unit type from the mod's rules.
type UnitTypeData struct {
	Name      string   `json:"name"`
	Factory   bool     `json:"factory,omitempty"`
	Transport bool     `json:"transport,omitempty"`
	Builds    []string `json:"builds,omitempty"`
}

// OrderData is one engine order on the wire. Params follow the engine's
// positional convention, x/elevation/z first for spatial orders.
type OrderData struct {
	Kind   string    `json:"kind"`
	Params []float64 `json:"params,omitempty"`
	Queued bool      `json:"queued,omitempty"`
}

// UnitData is one live unit in a world update or event payload.
// Orders carries the unit's current queue when the mod includes it.
type UnitData struct {
	ID     int         `json:"id"`
	Type   string      `json:"type"`
	Team   int         `json:"team"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Z      float64     `json:"z"`
	Orders []OrderData `json:"orders,omitempty"`
}

// WorldUpdate is the mod's periodic push of every unit the player owns.
type WorldUpdate struct {
	Frame int        `json:"frame"`
	Units []UnitData `json:"units"`
}

type UnitDestroyedMessage struct {
	Unit       UnitData `json:"unit"`
	AttackerID int      `json:"attackerId,omitempty"`
}

type UnitBuiltMessage struct {
	Unit      UnitData `json:"unit"`
	FactoryID int      `json:"factoryId"`
}

type UnitLoadedMessage struct {
	Unit        UnitData `json:"unit"`
	TransportID int      `json:"transportId"`
}

type UnitUnloadedMessage struct {
	Unit        UnitData `json:"unit"`
	TransportID int      `json:"transportId"`
}

// KeyPressedMessage reports a hotkey press together with the player's
// current unit selection.
type KeyPressedMessage struct {
	Key             string `json:"key"`
	Alt             bool   `json:"alt,omitempty"`
	Ctrl            bool   `json:"ctrl,omitempty"`
	Shift           bool   `json:"shift,omitempty"`
	SelectedUnitIDs []int  `json:"selectedUnitIds,omitempty"`
}

type AckMessage struct {
	Status string `json:"status"`
}

type IssueOrdersMessage struct {
	UnitID int         `json:"unitId"`
	Orders []OrderData `json:"orders"`
}

type IssueBuildMessage struct {
	FactoryID int    `json:"factoryId"`
	UnitType  string `json:"unitType"`
}

type NoticeMessage struct {
	Text string `json:"text"`
}

// Snapshot converts wire unit data to the domain view.
func (u UnitData) Snapshot() unit.Snapshot {
	return unit.Snapshot{
		ID:       u.ID,
		Type:     u.Type,
		Team:     u.Team,
		Position: shared.NewPosition(u.X, u.Y, u.Z),
	}
}

// OrderQueue converts the unit's wire orders to a domain queue.
func (u UnitData) OrderQueue() order.Queue {
	if len(u.Orders) == 0 {
		return nil
	}
	queue := make(order.Queue, 0, len(u.Orders))
	for _, o := range u.Orders {
		queue = append(queue, order.Order{
			Kind:   order.Kind(o.Kind),
			Params: append([]float64(nil), o.Params...),
			Queued: o.Queued,
		})
	}
	return queue
}

// DestroyedEvent converts the wire payload to the domain event.
func (m UnitDestroyedMessage) DestroyedEvent() tracker.UnitDestroyedEvent {
	return tracker.UnitDestroyedEvent{Unit: m.Unit.Snapshot(), AttackerID: m.AttackerID}
}

// BuiltEvent converts the wire payload to the domain event.
func (m UnitBuiltMessage) BuiltEvent() tracker.UnitBuiltEvent {
	return tracker.UnitBuiltEvent{Unit: m.Unit.Snapshot(), FactoryID: m.FactoryID}
}

// LoadedEvent converts the wire payload to the domain event.
func (m UnitLoadedMessage) LoadedEvent() tracker.UnitLoadedEvent {
	return tracker.UnitLoadedEvent{Unit: m.Unit.Snapshot(), TransportID: m.TransportID}
}

// UnloadedEvent converts the wire payload to the domain event.
func (m UnitUnloadedMessage) UnloadedEvent() tracker.UnitUnloadedEvent {
	return tracker.UnitUnloadedEvent{Unit: m.Unit.Snapshot(), TransportID: m.TransportID}
}

// ordersToWire shapes a domain queue for the engine. The first order replaces
// the unit's current queue and every later order appends behind it, so the
// queued flag is forced accordingly regardless of what the domain carried.
func ordersToWire(queue order.Queue) []OrderData {
	wire := make([]OrderData, 0, len(queue))
	for i, o := range queue {
		wire = append(wire, OrderData{
			Kind:   string(o.Kind),
			Params: append([]float64(nil), o.Params...),
			Queued: i > 0,
		})
	}
	return wire
}

// catalogFromHello builds the domain unit-type catalog from the handshake.
func catalogFromHello(types []UnitTypeData) *unit.Catalog {
	infos := make([]unit.TypeInfo, 0, len(types))
	for _, t := range types {
		infos = append(infos, unit.TypeInfo{
			Name:         t.Name,
			IsFactory:    t.Factory,
			CanTransport: t.Transport,
			Builds:       append([]string(nil), t.Builds...),
		})
	}
	return unit.NewCatalog(infos)
}
