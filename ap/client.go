package ap

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// request is the actor's internal mailbox item.
type request struct {
	spanID string

	shutdown bool

	status   chan Status
	config   chan Config
	enable   chan error
	disable  chan error
	setValue *setValueRequest
}

type setValueRequest struct {
	key, value string
	done       chan error
}

func (r request) isShutdown() bool { return r.shutdown }

// Broadcast is an event a subscriber receives outside of any specific
// request-reply exchange.
type Broadcast int

const (
	BroadcastReady Broadcast = iota
	BroadcastConnected
	BroadcastDisconnected
	BroadcastUnknownEvent
)

// RequestClient issues requests to a running Runtime. It is cheap to copy
// and safe for concurrent use.
type RequestClient struct {
	requests chan<- request
}

func newSpanID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func (c RequestClient) send(ctx context.Context, r request) error {
	select {
	case c.requests <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetStatus issues STATUS.
func (c RequestClient) GetStatus(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), status: reply}); err != nil {
		return Status{}, err
	}
	select {
	case status := <-reply:
		return status, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// GetConfig issues GET_CONFIG.
func (c RequestClient) GetConfig(ctx context.Context) (Config, error) {
	reply := make(chan Config, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), config: reply}); err != nil {
		return Config{}, err
	}
	select {
	case config := <-reply:
		return config, nil
	case <-ctx.Done():
		return Config{}, ctx.Err()
	}
}

// Enable issues ENABLE.
func (c RequestClient) Enable(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), enable: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disable issues DISABLE.
func (c RequestClient) Disable(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), disable: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetValue issues "SET <key> <value>".
func (c RequestClient) SetValue(ctx context.Context, key, value string) error {
	done := make(chan error, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), setValue: &setValueRequest{key: key, value: value, done: done}}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown asks the runtime actor to stop after finishing any in-flight
// request.
func (c RequestClient) Shutdown(ctx context.Context) error {
	return c.send(ctx, request{spanID: newSpanID(), shutdown: true})
}

func setValueCommand(r setValueRequest) string {
	return fmt.Sprintf("SET %s %s", r.key, r.value)
}
