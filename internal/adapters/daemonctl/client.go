package daemonctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rtsops/reinforce/pkg/wire"
)

const (
	dialTimeout    = 5 * time.Second
	requestTimeout = 10 * time.Second
)

// Client talks to the daemon over the control socket. One client holds one
// connection; calls are serialized because replies carry no request IDs.
type Client struct {
	conn       net.Conn
	socketPath string
	mu         sync.Mutex
}

// NewClient connects to the daemon control socket.
func NewClient(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}

	return &Client{
		conn:       conn,
		socketPath: socketPath,
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (*HealthReply, error) {
	var reply HealthReply
	if err := c.roundTrip(ctx, OpHealth, struct{}{}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Status(ctx context.Context) (*StatusReply, error) {
	var reply StatusReply
	if err := c.roundTrip(ctx, OpStatus, struct{}{}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Watches(ctx context.Context) (*WatchesReply, error) {
	var reply WatchesReply
	if err := c.roundTrip(ctx, OpWatches, struct{}{}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) PendingBuilds(ctx context.Context) (*PendingBuildsReply, error) {
	var reply PendingBuildsReply
	if err := c.roundTrip(ctx, OpPendingBuilds, struct{}{}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) TagUnits(ctx context.Context, unitIDs []int) (*TagUnitsReply, error) {
	var reply TagUnitsReply
	if err := c.roundTrip(ctx, OpTagUnits, TagUnitsRequest{UnitIDs: unitIDs}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) UntagUnits(ctx context.Context, unitIDs []int) (*UntagUnitsReply, error) {
	var reply UntagUnitsReply
	if err := c.roundTrip(ctx, OpUntagUnits, UntagUnitsRequest{UnitIDs: unitIDs}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) StopSession(ctx context.Context) (*StopSessionReply, error) {
	var reply StopSessionReply
	if err := c.roundTrip(ctx, OpStopSession, struct{}{}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Sessions(ctx context.Context, limit int) (*SessionsReply, error) {
	var reply SessionsReply
	if err := c.roundTrip(ctx, OpSessions, SessionsRequest{Limit: limit}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Journal(ctx context.Context, sessionID string, limit int) (*JournalReply, error) {
	var reply JournalReply
	if err := c.roundTrip(ctx, OpJournal, JournalRequest{SessionID: sessionID, Limit: limit}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// roundTrip sends one request envelope and decodes the matching reply.
func (c *Client) roundTrip(ctx context.Context, op string, payload any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(requestTimeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set deadline: %w", err)
	}

	env, err := wire.NewEnvelope(op, payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	if err := wire.WriteEnvelope(c.conn, env); err != nil {
		return fmt.Errorf("control call failed: %w", err)
	}

	reply, err := wire.ReadEnvelope(c.conn)
	if err != nil {
		return fmt.Errorf("control call failed: %w", err)
	}

	switch reply.Type {
	case ReplyError:
		var errReply ErrorReply
		if err := json.Unmarshal(reply.Data, &errReply); err != nil {
			return fmt.Errorf("malformed error reply: %w", err)
		}
		return errors.New(errReply.Error)
	case ReplyOK:
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(reply.Data, out); err != nil {
			return fmt.Errorf("failed to decode reply: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unexpected reply type: %s", reply.Type)
	}
}
