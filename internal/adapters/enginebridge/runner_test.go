package enginebridge_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsops/reinforce/internal/adapters/enginebridge"
	"github.com/rtsops/reinforce/internal/application/sessions"
	"github.com/rtsops/reinforce/internal/application/tracking"
	"github.com/rtsops/reinforce/internal/domain/shared"
	"github.com/rtsops/reinforce/pkg/wire"
)

func newTestRunner() *enginebridge.SessionRunner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return enginebridge.NewSessionRunner(nil, nil, nil, enginebridge.RunnerConfig{}, nil, shared.NewMockClock(time.Time{}), logger)
}

func testHello() enginebridge.HelloMessage {
	return enginebridge.HelloMessage{
		Game: "iron-dawn",
		Map:  "Twin Rivers",
		Team: 1,
		UnitTypes: []enginebridge.UnitTypeData{
			{Name: "tank"},
			{Name: "scout"},
			{Name: "vehicle_plant", Factory: true, Builds: []string{"tank", "scout"}},
		},
	}
}

func writeWire(t *testing.T, conn net.Conn, msgType string, data any) {
	t.Helper()
	env, err := wire.NewEnvelope(msgType, data)
	require.NoError(t, err)
	require.NoError(t, conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, wire.WriteEnvelope(conn, env))
}

func readWire(t *testing.T, conn net.Conn) wire.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	env, err := wire.ReadEnvelope(conn)
	require.NoError(t, err)
	return env
}

// handshake drives hello/ack and leaves the session open.
func handshake(t *testing.T, conn net.Conn) {
	t.Helper()
	writeWire(t, conn, enginebridge.TypeHello, testHello())

	env := readWire(t, conn)
	require.Equal(t, enginebridge.TypeAck, env.Type)

	var ack enginebridge.AckMessage
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	require.Equal(t, "ok", ack.Status)
}

func TestSessionRunner_HandshakeOpensSession(t *testing.T) {
	// Arrange
	runner := newTestRunner()
	daemonSide, modSide := net.Pipe()
	go runner.HandleConn(daemonSide)
	defer modSide.Close()

	// Act
	handshake(t, modSide)

	// Assert
	med, ok := runner.CurrentMediator()
	require.True(t, ok)

	resp, err := med.Send(context.Background(), &sessions.GetStatusQuery{})
	require.NoError(t, err)

	status := resp.(*sessions.GetStatusResponse).Status
	assert.Contains(t, status.SessionID, "sess-twin-rivers-")
	assert.Equal(t, "RUNNING", status.Status)
	assert.Equal(t, "Twin Rivers", status.MapName)
	assert.Equal(t, 1, status.Team)
	assert.Equal(t, 0, status.Watches)
}

func TestSessionRunner_ReplacementFlowOverWire(t *testing.T) {
	// Arrange
	runner := newTestRunner()
	daemonSide, modSide := net.Pipe()
	go runner.HandleConn(daemonSide)
	defer modSide.Close()

	handshake(t, modSide)

	writeWire(t, modSide, enginebridge.TypeWorldUpdate, enginebridge.WorldUpdate{
		Frame: 100,
		Units: []enginebridge.UnitData{
			{ID: 1, Type: "tank", Team: 1, X: 10, Z: 20, Orders: []enginebridge.OrderData{
				{Kind: "PATROL", Params: []float64{50, 0, 50}},
			}},
			{ID: 2, Type: "tank", Team: 1, X: 30, Z: 40},
		},
	})

	// Act: tag unit 1 via hotkey, then report it destroyed
	writeWire(t, modSide, enginebridge.TypeKeyPressed, enginebridge.KeyPressedMessage{
		Key: "t", Alt: true, SelectedUnitIDs: []int{1},
	})

	tagNotice := readWire(t, modSide)
	require.Equal(t, enginebridge.TypeNotice, tagNotice.Type)

	writeWire(t, modSide, enginebridge.TypeUnitDestroyed, enginebridge.UnitDestroyedMessage{
		Unit: enginebridge.UnitData{ID: 1, Type: "tank", Team: 1, X: 12, Z: 22},
	})

	// Assert: the sibling receives the captured program over the wire
	orderEnv := readWire(t, modSide)
	require.Equal(t, enginebridge.TypeIssueOrders, orderEnv.Type)

	var issued enginebridge.IssueOrdersMessage
	require.NoError(t, json.Unmarshal(orderEnv.Data, &issued))
	assert.Equal(t, 2, issued.UnitID)
	require.Len(t, issued.Orders, 2)

	assert.Equal(t, "MOVE", issued.Orders[0].Kind)
	assert.Equal(t, []float64{10, 0, 20}, issued.Orders[0].Params, "first leg returns to the tag-time position")
	assert.False(t, issued.Orders[0].Queued, "first order replaces the sibling's queue")

	assert.Equal(t, "PATROL", issued.Orders[1].Kind)
	assert.Equal(t, []float64{50, 0, 50}, issued.Orders[1].Params)
	assert.True(t, issued.Orders[1].Queued, "later orders append behind the first")

	adoptNotice := readWire(t, modSide)
	require.Equal(t, enginebridge.TypeNotice, adoptNotice.Type)

	var notice enginebridge.NoticeMessage
	require.NoError(t, json.Unmarshal(adoptNotice.Data, &notice))
	assert.Contains(t, notice.Text, "adopted by unit 2")

	med, ok := runner.CurrentMediator()
	require.True(t, ok)
	resp, err := med.Send(context.Background(), &tracking.ListWatchesQuery{})
	require.NoError(t, err)

	watches := resp.(*tracking.ListWatchesResponse).Watches
	require.Len(t, watches, 1)
	assert.Equal(t, 2, watches[0].UnitID)
}

func TestSessionRunner_SecondHandshakeRejected(t *testing.T) {
	// Arrange
	runner := newTestRunner()
	daemonSide, modSide := net.Pipe()
	go runner.HandleConn(daemonSide)
	defer modSide.Close()
	handshake(t, modSide)

	secondDaemonSide, secondModSide := net.Pipe()
	go runner.HandleConn(secondDaemonSide)
	defer secondModSide.Close()

	// Act
	writeWire(t, secondModSide, enginebridge.TypeHello, testHello())
	env := readWire(t, secondModSide)

	// Assert
	require.Equal(t, enginebridge.TypeAck, env.Type)

	var ack enginebridge.AckMessage
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	assert.Equal(t, "busy", ack.Status)
}

func TestSessionRunner_StopSessionWindsDown(t *testing.T) {
	// Arrange
	runner := newTestRunner()
	daemonSide, modSide := net.Pipe()
	go runner.HandleConn(daemonSide)
	defer modSide.Close()
	handshake(t, modSide)

	// Act
	require.NoError(t, runner.StopSession(context.Background()))

	// Assert
	assert.Eventually(t, func() bool {
		_, ok := runner.CurrentMediator()
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "session slot frees once the connection closes")
}

func TestSessionRunner_ConnectionDropFreesSlot(t *testing.T) {
	// Arrange
	runner := newTestRunner()
	daemonSide, modSide := net.Pipe()
	go runner.HandleConn(daemonSide)
	handshake(t, modSide)

	// Act
	require.NoError(t, modSide.Close())

	// Assert
	assert.Eventually(t, func() bool {
		_, ok := runner.CurrentMediator()
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
