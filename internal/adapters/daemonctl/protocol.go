// Package daemonctl carries the control-plane protocol between the reinforce
// CLI and the daemon. Requests and replies travel as length-prefixed JSON
// envelopes over a Unix socket, one request per envelope.
package daemonctl

import "time"

// Operation names carried in the request envelope type.
const (
	OpHealth        = "health"
	OpStatus        = "status"
	OpWatches       = "watches"
	OpPendingBuilds = "pending_builds"
	OpTagUnits      = "tag_units"
	OpUntagUnits    = "untag_units"
	OpStopSession   = "stop_session"
	OpSessions      = "sessions"
	OpJournal       = "journal"
)

// Reply envelope types.
const (
	ReplyOK    = "ok"
	ReplyError = "error"
)

// ErrorReply carries the failure message for ReplyError envelopes.
type ErrorReply struct {
	Error string `json:"error"`
}

// Requests

type TagUnitsRequest struct {
	UnitIDs []int `json:"unit_ids"`
}

type UntagUnitsRequest struct {
	UnitIDs []int `json:"unit_ids"`
}

type SessionsRequest struct {
	Limit int `json:"limit,omitempty"`
}

type JournalRequest struct {
	SessionID string `json:"session_id"`
	Limit     int    `json:"limit,omitempty"`
}

// Replies

type HealthReply struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	SessionActive bool   `json:"session_active"`
}

type StatusReply struct {
	SessionID     string  `json:"session_id"`
	GameID        string  `json:"game_id,omitempty"`
	MapName       string  `json:"map_name"`
	Team          int     `json:"team"`
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Watches       int     `json:"watches"`
	PendingBuilds int     `json:"pending_builds"`
	InTransit     int     `json:"in_transit"`
}

type WatchInfo struct {
	UnitID        int       `json:"unit_id"`
	UnitType      string    `json:"unit_type"`
	Orders        []string  `json:"orders"`
	FactoryOrders []string  `json:"factory_orders,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type WatchesReply struct {
	Watches []WatchInfo `json:"watches"`
}

type PendingBuildInfo struct {
	UnitType  string    `json:"unit_type"`
	FactoryID int       `json:"factory_id"`
	Orders    []string  `json:"orders"`
	QueuedAt  time.Time `json:"queued_at"`
}

type PendingBuildsReply struct {
	Builds []PendingBuildInfo `json:"builds"`
}

type TagUnitsReply struct {
	Tagged int `json:"tagged"`
}

type UntagUnitsReply struct {
	Removed int `json:"removed"`
}

type StopSessionReply struct {
	SessionID string `json:"session_id"`
}

type SessionInfo struct {
	SessionID string     `json:"session_id"`
	GameID    string     `json:"game_id,omitempty"`
	MapName   string     `json:"map_name"`
	Team      int        `json:"team"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type SessionsReply struct {
	Sessions []SessionInfo `json:"sessions"`
}

type JournalEntryInfo struct {
	Event     string    `json:"event"`
	UnitID    int       `json:"unit_id,omitempty"`
	UnitType  string    `json:"unit_type,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type JournalReply struct {
	SessionID string             `json:"session_id"`
	Entries   []JournalEntryInfo `json:"entries"`
}
