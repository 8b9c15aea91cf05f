package ap

import (
	"context"
	"time"

	wifictrl "github.com/novalabsxyz/wifi-ctrl"
	"github.com/novalabsxyz/wifi-ctrl/internal/broadcast"
	"github.com/novalabsxyz/wifi-ctrl/internal/logger"
	"github.com/novalabsxyz/wifi-ctrl/internal/unixsock"
)

const (
	syncBufferSize  = 2048
	eventBufferSize = 256
)

// Runtime is the single-threaded actor that owns the AP control-socket
// connections. Build one with Setup, then call Run from a goroutine of the
// caller's choosing.
type Runtime struct {
	socketPath    string
	attachOptions []string
	requests      chan request
	hub           *broadcast.Hub[Broadcast]
}

// Run drives the actor until ctx is cancelled or a client sends Shutdown,
// whichever happens first.
func (rt *Runtime) Run(ctx context.Context) error {
	logger.Infof(ctx, "starting wifi ap process")

	eventHandle, deferredEvent, err := unixsock.Open(ctx, rt.socketPath, "hostapd_async.sock", eventBufferSize, rt.requests, request.isShutdown)
	if err != nil {
		return err
	}
	defer eventHandle.Close()

	events := make(chan event, eventBufferSize)
	sock := &eventSocket{handle: eventHandle, attachOptions: rt.attachOptions, events: events}
	eventErrs := make(chan error, 1)
	go func() { eventErrs <- sock.run(ctx) }()

	handle, deferredSync, err := unixsock.Open(ctx, rt.socketPath, "mapper_hostapd_sync.sock", syncBufferSize, rt.requests, request.isShutdown)
	if err != nil {
		return err
	}
	defer handle.Close()

	for _, r := range append(deferredEvent, deferredSync...) {
		if r.isShutdown() {
			return nil
		}
		rt.handleRequest(ctx, handle, r)
	}

	rt.hub.Send(BroadcastReady)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-eventErrs:
			return err
		case ev, ok := <-events:
			if !ok {
				return wifictrl.ErrEventChannelClosed
			}
			rt.handleEvent(ev)
		case r, ok := <-rt.requests:
			if !ok {
				return wifictrl.ErrRequestChannelClosed
			}
			if r.shutdown {
				return nil
			}
			rt.handleRequest(ctx, handle, r)
		}
	}
}

func (rt *Runtime) handleEvent(ev event) {
	switch ev.kind {
	case eventSTAConnected:
		rt.hub.Send(BroadcastConnected)
	case eventSTADisconnected:
		rt.hub.Send(BroadcastDisconnected)
	case eventUnknown:
		rt.hub.Send(BroadcastUnknownEvent)
	}
}

func (rt *Runtime) handleRequest(ctx context.Context, handle *unixsock.Handle, r request) {
	logger.Debugf(ctx, "[%s] handling request", r.spanID)
	switch {
	case r.status != nil:
		status, err := rt.requestStatus(handle)
		if err != nil {
			logger.Errorf(ctx, "[%s] STATUS: %v", r.spanID, err)
			close(r.status)
			return
		}
		r.status <- status
	case r.config != nil:
		config, err := rt.requestConfig(handle)
		if err != nil {
			logger.Errorf(ctx, "[%s] GET_CONFIG: %v", r.spanID, err)
			close(r.config)
			return
		}
		r.config <- config
	case r.enable != nil:
		r.enable <- handle.Command([]byte("ENABLE"))
	case r.disable != nil:
		r.disable <- handle.Command([]byte("DISABLE"))
	case r.setValue != nil:
		r.setValue.done <- handle.Command([]byte(setValueCommand(*r.setValue)))
	}
}

func (rt *Runtime) requestStatus(handle *unixsock.Handle) (Status, error) {
	if _, err := handle.Send([]byte("STATUS")); err != nil {
		return Status{}, err
	}
	n, err := handle.RecvWithTimeout(time.Second)
	if err != nil {
		return Status{}, err
	}
	return parseStatus(string(handle.Buf[:n]))
}

func (rt *Runtime) requestConfig(handle *unixsock.Handle) (Config, error) {
	if _, err := handle.Send([]byte("GET_CONFIG")); err != nil {
		return Config{}, err
	}
	n, err := handle.RecvWithTimeout(time.Second)
	if err != nil {
		return Config{}, err
	}
	return parseConfig(string(handle.Buf[:n]))
}
