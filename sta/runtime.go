package sta

import (
	"context"
	"fmt"
	"strconv"
	"time"

	wifictrl "github.com/novalabsxyz/wifi-ctrl"
	"github.com/novalabsxyz/wifi-ctrl/internal/broadcast"
	"github.com/novalabsxyz/wifi-ctrl/internal/logger"
	"github.com/novalabsxyz/wifi-ctrl/internal/unixsock"
)

const (
	syncBufferSize  = 10240
	eventBufferSize = 256
)

// Runtime is the single-threaded actor that owns the STA control-socket
// connections. Build one with Setup, then call Run from a goroutine of the
// caller's choosing.
type Runtime struct {
	socketPath    string
	requests      chan request
	hub           *broadcast.Hub[Broadcast]
	selectTimeout time.Duration
}

// Run drives the actor until ctx is cancelled or a client sends Shutdown,
// whichever happens first. It opens the sync control socket, then the
// ATTACH'd event socket, replays any requests that arrived while those were
// connecting, announces BroadcastReady, and then serves requests and
// daemon events until told to stop.
func (rt *Runtime) Run(ctx context.Context) error {
	logger.Infof(ctx, "starting wifi station process")

	handle, deferredSync, err := unixsock.Open(ctx, rt.socketPath, "mapper_wpa_ctrl_sync.sock", syncBufferSize, rt.requests, request.isShutdown)
	if err != nil {
		return err
	}
	defer handle.Close()

	eventHandle, deferredEvent, err := unixsock.Open(ctx, rt.socketPath, "mapper_wpa_ctrl_async.sock", eventBufferSize, rt.requests, request.isShutdown)
	if err != nil {
		return err
	}
	defer eventHandle.Close()

	events := make(chan event, eventBufferSize)
	sock := &eventSocket{handle: eventHandle, events: events}
	eventErrs := make(chan error, 1)
	go func() { eventErrs <- sock.run(ctx) }()

	var scanRequests []chan []ScanResult
	var selectRequest *request

	for _, r := range append(deferredSync, deferredEvent...) {
		if r.isShutdown() {
			return nil
		}
		rt.handleRequest(ctx, handle, r, &scanRequests, &selectRequest)
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
			rt.handleEvent(ctx, handle, ev, &scanRequests, &selectRequest)
		case r, ok := <-rt.requests:
			if !ok {
				return wifictrl.ErrRequestChannelClosed
			}
			if r.shutdown {
				return nil
			}
			if r.selectTimeout {
				// Only the timer of the select currently in the slot may
				// time it out; a timer left over from an earlier, already
				// resolved select is ignored.
				if selectRequest != nil && selectRequest.spanID == r.spanID {
					selectRequest.selectResult <- SelectTimeout
					selectRequest = nil
				}
				continue
			}
			rt.handleRequest(ctx, handle, r, &scanRequests, &selectRequest)
		}
	}
}

func (rt *Runtime) handleEvent(ctx context.Context, handle *unixsock.Handle, ev event, scanRequests *[]chan []ScanResult, selectRequest **request) {
	switch ev {
	case eventScanComplete:
		if _, err := handle.Send([]byte("SCAN_RESULTS")); err != nil {
			logger.Errorf(ctx, "sending SCAN_RESULTS: %v", err)
			return
		}
		n, err := handle.RecvWithTimeout(time.Second)
		if err != nil {
			logger.Errorf(ctx, "receiving SCAN_RESULTS: %v", err)
			return
		}
		results := parseScanResults(string(handle.Buf[:n]))
		for _, waiter := range *scanRequests {
			waiter <- results
		}
		*scanRequests = nil
	case eventConnected:
		rt.hub.Send(BroadcastConnected)
		if *selectRequest != nil {
			(*selectRequest).selectResult <- SelectSuccess
			*selectRequest = nil
		}
	case eventDisconnected:
		rt.hub.Send(BroadcastDisconnected)
	case eventNetworkNotFound:
		rt.hub.Send(BroadcastNetworkNotFound)
		if *selectRequest != nil {
			(*selectRequest).selectResult <- SelectNotFound
			*selectRequest = nil
		}
	case eventWrongPsk:
		rt.hub.Send(BroadcastWrongPsk)
		if *selectRequest != nil {
			(*selectRequest).selectResult <- SelectWrongPsk
			*selectRequest = nil
		}
	}
}

func (rt *Runtime) handleRequest(ctx context.Context, handle *unixsock.Handle, r request, scanRequests *[]chan []ScanResult, selectRequest **request) {
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
	case r.scan != nil:
		*scanRequests = append(*scanRequests, r.scan)
		if err := handle.Command([]byte("SCAN")); err != nil {
			logger.Debugf(ctx, "[%s] error requesting SCAN: %v", r.spanID, err)
		}
	case r.networks != nil:
		results, err := rt.requestNetworks(handle)
		if err != nil {
			logger.Errorf(ctx, "[%s] LIST_NETWORKS: %v", r.spanID, err)
			close(r.networks)
			return
		}
		r.networks <- results
	case r.addNetwork != nil:
		id, err := rt.requestAddNetwork(handle)
		if err != nil {
			logger.Errorf(ctx, "[%s] ADD_NETWORK: %v", r.spanID, err)
			close(r.addNetwork)
			return
		}
		logger.Debugf(ctx, "[%s] created network %d", r.spanID, id)
		r.addNetwork <- id
	case r.setNetwork != nil:
		cmd := fmt.Sprintf("SET_NETWORK %d %s", r.setNetwork.networkID, formatSetNetworkParam(*r.setNetwork))
		if err := handle.Command([]byte(cmd)); err != nil {
			logger.Warningf(ctx, "[%s] setting network parameter: %v", r.spanID, err)
		}
		close(r.setNetworkDone)
	case r.saveConfig != nil:
		if err := handle.Command([]byte("SAVE_CONFIG")); err != nil {
			logger.Warningf(ctx, "[%s] saving config: %v", r.spanID, err)
		}
		close(r.saveConfig)
	case r.removeNetwork != nil:
		cmd := fmt.Sprintf("REMOVE_NETWORK %d", *r.removeNetwork)
		if err := handle.Command([]byte(cmd)); err != nil {
			logger.Warningf(ctx, "[%s] removing network %d: %v", r.spanID, *r.removeNetwork, err)
		}
		close(r.removeDone)
	case r.removeAll != nil:
		if err := handle.Command([]byte("REMOVE_NETWORK all")); err != nil {
			logger.Warningf(ctx, "[%s] removing all networks: %v", r.spanID, err)
		}
		close(r.removeAll)
	case r.selectNetwork != nil:
		rt.handleSelectNetwork(ctx, handle, r, selectRequest)
	}
}

// handleSelectNetwork implements the SELECT_NETWORK flow, including the
// already-connected short-circuit: once the daemon accepts SELECT_NETWORK,
// if STATUS reports the requested network id as connected, resolve
// immediately without occupying the single in-flight select slot, since the
// daemon emits no connect event when its state does not change.
func (rt *Runtime) handleSelectNetwork(ctx context.Context, handle *unixsock.Handle, r request, selectRequest **request) {
	id := *r.selectNetwork

	if *selectRequest != nil {
		logger.Warningf(ctx, "[%s] select request already pending, dropping this one", r.spanID)
		r.selectResult <- SelectPendingSelect
		return
	}

	cmd := fmt.Sprintf("SELECT_NETWORK %d", id)
	if err := handle.Command([]byte(cmd)); err != nil {
		logger.Warningf(ctx, "[%s] selecting network %d: %v", r.spanID, id, err)
		r.selectResult <- SelectInvalidNetworkID
		return
	}
	logger.Debugf(ctx, "[%s] selected network %d", r.spanID, id)

	if status, err := rt.requestStatus(handle); err == nil {
		if status["wpa_state"] == "COMPLETED" && status["id"] == strconv.Itoa(id) {
			r.selectResult <- SelectAlreadyConnected
			return
		}
	}

	pending := r
	*selectRequest = &pending
	timeout := rt.selectTimeout
	self := rt.requests
	go func() {
		select {
		case <-time.After(timeout):
			select {
			case self <- request{spanID: pending.spanID, selectTimeout: true}:
			case <-ctx.Done():
			}
		case <-ctx.Done():
		}
	}()
}

func (rt *Runtime) requestStatus(handle *unixsock.Handle) (Status, error) {
	if _, err := handle.Send([]byte("STATUS")); err != nil {
		return nil, err
	}
	n, err := handle.RecvWithTimeout(time.Second)
	if err != nil {
		return nil, err
	}
	return parseStatus(string(handle.Buf[:n]))
}

func (rt *Runtime) requestNetworks(handle *unixsock.Handle) ([]NetworkResult, error) {
	if _, err := handle.Send([]byte("LIST_NETWORKS")); err != nil {
		return nil, err
	}
	n, err := handle.RecvWithTimeout(time.Second)
	if err != nil {
		return nil, err
	}
	return networksFromListing(string(handle.Buf[:n]), handle)
}

func (rt *Runtime) requestAddNetwork(handle *unixsock.Handle) (int, error) {
	if _, err := handle.Send([]byte("ADD_NETWORK")); err != nil {
		return 0, err
	}
	n, err := handle.RecvWithTimeout(time.Second)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(trimReply(handle.Buf[:n]))
}

func formatSetNetworkParam(p setNetworkRequest) string {
	switch p.param {
	case paramSSID:
		return fmt.Sprintf(`ssid "%s"`, p.value)
	case paramPSK:
		return fmt.Sprintf(`psk "%s"`, p.value)
	case paramBSSID:
		return fmt.Sprintf("bssid %s", p.value)
	case paramKeyMgmt:
		return fmt.Sprintf("key_mgmt %s", p.value)
	default:
		return ""
	}
}
