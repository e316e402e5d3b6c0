package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// Client is one connection to the bus.
type Client struct {
	conn net.Conn
	id   string
	mu   sync.Mutex
}

// Dial connects to the bus listening on socketPath.
func Dial(ctx context.Context, socketPath string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to bus: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}
	return nil
}

// Subscribe asks the bus to deliver pipe messages sent by others to this
// connection. id must be unique per instance.
func (c *Client) Subscribe(id string) error {
	c.id = id
	return c.send(Message{Type: MsgSubscribe, ClientID: id})
}

// Send publishes p to every other subscriber.
func (c *Client) Send(p PipePayload) error {
	return c.send(Message{Type: MsgPipe, ClientID: c.id, Pipe: &p})
}

// Ping asks the bus for a pong.
func (c *Client) Ping() error {
	return c.send(Message{Type: MsgPing})
}

// Listen calls fn for every message until the connection closes. A close
// initiated by Close is not an error.
func (c *Client) Listen(fn func(Message)) error {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		fn(msg)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Close unsubscribes (when subscribed) and closes the connection.
func (c *Client) Close() error {
	if c.id != "" {
		_ = c.send(Message{Type: MsgUnsubscribe, ClientID: c.id})
	}
	return c.conn.Close()
}
