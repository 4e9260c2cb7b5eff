package enginebridge

import (
	"log/slog"
	"net"
	"sync"

	"github.com/rtsops/reinforce/pkg/wire"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env wire.Envelope) (*wire.Envelope, error)

// Connection represents the game mod talking to the daemon. One connection
// lives exactly as long as one game session.
type Connection struct {
	conn     net.Conn
	handlers map[string]Handler
	logger   *slog.Logger

	// writeMu serializes frames: the gateway issues orders from command
	// handlers while the read loop writes acks.
	writeMu sync.Mutex
}

func NewConnection(conn net.Conn, logger *slog.Logger) *Connection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connection{
		conn:     conn,
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := wire.NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wire.WriteEnvelope(c.conn, env)
}

// Close closes the underlying conn, which also unblocks ReadLoop.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// ReadLoop blocks until the connection closes or errors. It owns the conn
// lifetime so callers don't need to track cleanup. Handlers run on this
// goroutine, which is what keeps lifecycle events serialized.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()

	for {
		env, err := wire.ReadEnvelope(c.conn)
		if err != nil {
			c.logger.Info("engine connection read ended", "error", err)
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			c.logger.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			c.logger.Error("handler error", "type", env.Type, "error", err)
			continue
		}

		if resp != nil {
			c.writeMu.Lock()
			err := wire.WriteEnvelope(c.conn, *resp)
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
		}
	}
}
