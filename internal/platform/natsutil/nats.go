package natsutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/todo-1m/webclient/internal/messaging"
)

type Client struct {
	Conn *nats.Conn
	JS   nats.JetStreamContext
}

func ConnectJetStream(url string) (*Client, error) {
	conn, err := nats.Connect(url, nats.Name("todo-web"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		_ = conn.Drain()
		conn.Close()
		return nil, err
	}
	if err := messaging.EnsureStreams(js); err != nil {
		_ = conn.Drain()
		conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, JS: js}, nil
}

func ConnectJetStreamWithRetry(ctx context.Context, url string, timeout time.Duration) (*Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ConnectJetStream(url)
		if err == nil {
			return client, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("connect jetstream timeout after %s: %w", timeout, lastErr)
}

func (c *Client) Close() {
	if c == nil || c.Conn == nil {
		return
	}
	_ = c.Conn.Drain()
	c.Conn.Close()
}

// Ready reports whether the connection is usable.
func (c *Client) Ready() error {
	if c == nil || c.Conn == nil {
		return errors.New("nats connection is nil")
	}
	if status := c.Conn.Status(); status != nats.CONNECTED {
		return fmt.Errorf("nats is not connected: %s", status.String())
	}
	return nil
}

type Publisher interface {
	Publish(subject string, payload []byte) error
}

type JetStreamPublisher struct {
	JS nats.JetStreamContext
}

func (p JetStreamPublisher) Publish(subject string, payload []byte) error {
	_, err := p.JS.Publish(subject, payload)
	return err
}

// Subscriber delivers raw payloads published on subject (wildcards allowed)
// until the returned func is called.
type Subscriber interface {
	Subscribe(subject string, handler func(payload []byte)) (unsubscribe func() error, err error)
}

type JetStreamSubscriber struct {
	JS nats.JetStreamContext
}

// Subscribe creates an ephemeral consumer that only sees new messages.
func (s JetStreamSubscriber) Subscribe(subject string, handler func([]byte)) (func() error, error) {
	sub, err := s.JS.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	}, nats.DeliverNew(), nats.AckNone())
	if err != nil {
		return nil, err
	}
	return sub.Unsubscribe, nil
}
