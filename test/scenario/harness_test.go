//go:build scenario

package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rtsops/reinforce/internal/adapters/enginebridge"
	"github.com/rtsops/reinforce/internal/adapters/persistence"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/tracker"
	"github.com/rtsops/reinforce/internal/infrastructure/database"
	"github.com/rtsops/reinforce/pkg/wire"
)

func scenarioTimeout() time.Duration {
	return 5 * time.Second
}

// bridgeEnv is one scenario's daemon: an engine bridge on a throwaway unix
// socket, backed by an in-memory database so journal expectations can read
// what the handlers persisted.
type bridgeEnv struct {
	runner      *enginebridge.SessionRunner
	server      *enginebridge.Server
	journalRepo session.JournalRepository
	socketPath  string
}

// startEngineBridge boots a daemon with both replacement strategies active,
// mirroring the shipped default configuration.
func startEngineBridge(t *testing.T) (*bridgeEnv, func()) {
	t.Helper()

	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("create test database: %v", err)
	}
	sessionRepo := persistence.NewSessionRepository(db)
	journalRepo := persistence.NewJournalRepository(db)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := enginebridge.NewSessionRunner(sessionRepo, journalRepo, nil, enginebridge.RunnerConfig{
		StrategyNames: []string{tracker.StrategyAdoptSibling, tracker.StrategyFactoryBuild},
	}, nil, nil, logger)

	socketPath := filepath.Join(t.TempDir(), "reinforced.sock")
	server := enginebridge.NewServer(socketPath, runner, logger)

	ctx, cancel := context.WithCancel(context.Background())
	if err := server.Start(ctx); err != nil {
		cancel()
		database.Close(db)
		t.Fatalf("start engine bridge: %v", err)
	}

	env := &bridgeEnv{
		runner:      runner,
		server:      server,
		journalRepo: journalRepo,
		socketPath:  socketPath,
	}
	stop := func() {
		server.Stop()
		cancel()
		database.Close(db)
	}
	return env, stop
}

// dialEngine connects the mod side of the socket.
func dialEngine(t *testing.T, socketPath string) net.Conn {
	t.Helper()

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial engine bridge: %v", err)
	}
	return conn
}

// outbox drains daemon-to-mod envelopes off the socket into per-type queues.
// Expectation steps consume each type's stream in arrival order; demuxing by
// type keeps an unasserted notice from shadowing the order frame a script is
// actually waiting for.
type outbox struct {
	mu     sync.Mutex
	byType map[string][]wire.Envelope
	closed error
}

func newOutbox(conn net.Conn) *outbox {
	o := &outbox{byType: make(map[string][]wire.Envelope)}
	go o.readLoop(conn)
	return o
}

func (o *outbox) readLoop(conn net.Conn) {
	for {
		env, err := wire.ReadEnvelope(conn)
		if err != nil {
			o.mu.Lock()
			o.closed = err
			o.mu.Unlock()
			return
		}
		o.mu.Lock()
		o.byType[env.Type] = append(o.byType[env.Type], env)
		o.mu.Unlock()
	}
}

// next pops the oldest unconsumed envelope of the given type.
func (o *outbox) next(msgType string) (wire.Envelope, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	queue := o.byType[msgType]
	if len(queue) == 0 {
		return wire.Envelope{}, false
	}
	o.byType[msgType] = queue[1:]
	return queue[0], true
}

// waitNext blocks until an envelope of the given type arrives.
func (o *outbox) waitNext(t *testing.T, msgType string) wire.Envelope {
	t.Helper()

	deadline := time.Now().Add(scenarioTimeout())
	for time.Now().Before(deadline) {
		if env, ok := o.next(msgType); ok {
			return env
		}
		time.Sleep(10 * time.Millisecond)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	queued := make([]string, 0, len(o.byType))
	for queuedType, queue := range o.byType {
		if len(queue) > 0 {
			queued = append(queued, fmt.Sprintf("%s x%d", queuedType, len(queue)))
		}
	}
	sort.Strings(queued)
	t.Fatalf("no %q message within %v, queued: [%s], read error: %v",
		msgType, scenarioTimeout(), strings.Join(queued, " "), o.closed)
	return wire.Envelope{}
}

func writeWire(t *testing.T, conn net.Conn, msgType string, data any) {
	t.Helper()

	env, err := wire.NewEnvelope(msgType, data)
	if err != nil {
		t.Fatalf("marshal %s: %v", msgType, err)
	}
	if err := conn.SetWriteDeadline(time.Now().Add(scenarioTimeout())); err != nil {
		t.Fatalf("set write deadline: %v", err)
	}
	if err := wire.WriteEnvelope(conn, env); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// waitFor polls a condition until it holds or the scenario timeout passes.
// Mediator state trails the socket by however long the read loop takes, so
// state expectations poll instead of asserting a single sample.
func waitFor(t *testing.T, description string, check func() (bool, string)) {
	t.Helper()

	deadline := time.Now().Add(scenarioTimeout())
	last := "no observation"
	for time.Now().Before(deadline) {
		ok, detail := check()
		if ok {
			return
		}
		if detail != "" {
			last = detail
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s: %s", description, last)
}

// parseOrderList turns a compact spec like "MOVE(10,0,20) PATROL(50,0,50)"
// into wire order data. Bare kinds like STOP carry no params.
func parseOrderList(t *testing.T, spec string) []enginebridge.OrderData {
	t.Helper()

	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil
	}
	orders := make([]enginebridge.OrderData, 0, len(fields))
	for _, token := range fields {
		orders = append(orders, parseOrderToken(t, token))
	}
	return orders
}

func parseOrderToken(t *testing.T, token string) enginebridge.OrderData {
	t.Helper()

	open := strings.IndexByte(token, '(')
	if open < 0 {
		return enginebridge.OrderData{Kind: token}
	}
	if !strings.HasSuffix(token, ")") {
		t.Fatalf("malformed order %q", token)
	}

	kind := token[:open]
	body := token[open+1 : len(token)-1]
	var params []float64
	if body != "" {
		for _, part := range strings.Split(body, ",") {
			value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				t.Fatalf("malformed order %q: %v", token, err)
			}
			params = append(params, value)
		}
	}
	return enginebridge.OrderData{Kind: kind, Params: params}
}

func renderWireOrders(orders []enginebridge.OrderData) string {
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		parts = append(parts, renderWireOrder(o))
	}
	return strings.Join(parts, " ")
}

func renderWireOrder(o enginebridge.OrderData) string {
	if len(o.Params) == 0 {
		return o.Kind
	}
	params := make([]string, 0, len(o.Params))
	for _, p := range o.Params {
		params = append(params, strconv.FormatFloat(p, 'f', -1, 64))
	}
	return fmt.Sprintf("%s(%s)", o.Kind, strings.Join(params, ","))
}

func repoRoot(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve runtime caller")
	}

	dir := filepath.Dir(filename)
	for {
		candidate := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(candidate); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	t.Fatalf("go.mod not found from %s", filename)
	return ""
}
