package sta

import (
	"context"

	"github.com/google/uuid"
)

// setNetworkParam identifies which SET_NETWORK field a setNetwork request
// is writing, supplementing the original_source's ssid/psk-only surface
// with bssid and key_mgmt (a later revision's operation list).
type setNetworkParam int

const (
	paramSSID setNetworkParam = iota
	paramPSK
	paramBSSID
	paramKeyMgmt
)

type setNetworkRequest struct {
	networkID int
	param     setNetworkParam
	value     string
}

// request is the actor's internal mailbox item. Every variant not handled
// by a dedicated field is nil on that field.
type request struct {
	spanID string

	shutdown bool

	status         chan Status
	scan           chan []ScanResult
	networks       chan []NetworkResult
	addNetwork     chan int
	setNetwork     *setNetworkRequest
	setNetworkDone chan struct{}
	saveConfig     chan struct{}
	removeNetwork  *int
	removeDone     chan struct{}
	removeAll      chan struct{}
	selectNetwork  *int
	selectResult   chan SelectResult
	selectTimeout  bool
}

func (r request) isShutdown() bool { return r.shutdown }

// Broadcast is an event a subscriber receives outside of any specific
// request-reply exchange.
type Broadcast int

const (
	BroadcastReady Broadcast = iota
	BroadcastConnected
	BroadcastDisconnected
	BroadcastNetworkNotFound
	BroadcastWrongPsk
)

// RequestClient issues requests to a running Runtime. It is cheap to clone
// (copy) and safe for concurrent use, matching original_source's
// #[derive(Clone)] RequestClient.
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

// GetScan issues SCAN and waits for the daemon's next scan-complete event;
// every caller still waiting when that event arrives receives the same
// SCAN_RESULTS list.
func (c RequestClient) GetScan(ctx context.Context) ([]ScanResult, error) {
	reply := make(chan []ScanResult, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), scan: reply}); err != nil {
		return nil, err
	}
	select {
	case results := <-reply:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetNetworks requests the LIST_NETWORKS table, with each row's SSID
// resolved via a follow-up GET_NETWORK query.
func (c RequestClient) GetNetworks(ctx context.Context) ([]NetworkResult, error) {
	reply := make(chan []NetworkResult, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), networks: reply}); err != nil {
		return nil, err
	}
	select {
	case results := <-reply:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetStatus requests the current STATUS map.
func (c RequestClient) GetStatus(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), status: reply}); err != nil {
		return nil, err
	}
	select {
	case status := <-reply:
		return status, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AddNetwork issues ADD_NETWORK and returns the new network id.
func (c RequestClient) AddNetwork(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), addNetwork: reply}); err != nil {
		return 0, err
	}
	select {
	case id := <-reply:
		return id, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (c RequestClient) setNetwork(ctx context.Context, networkID int, param setNetworkParam, value string) error {
	done := make(chan struct{}, 1)
	if err := c.send(ctx, request{
		spanID:         newSpanID(),
		setNetwork:     &setNetworkRequest{networkID: networkID, param: param, value: value},
		setNetworkDone: done,
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetNetworkSSID issues SET_NETWORK <id> ssid "<ssid>".
func (c RequestClient) SetNetworkSSID(ctx context.Context, networkID int, ssid string) error {
	return c.setNetwork(ctx, networkID, paramSSID, ssid)
}

// SetNetworkPSK issues SET_NETWORK <id> psk "<psk>".
func (c RequestClient) SetNetworkPSK(ctx context.Context, networkID int, psk string) error {
	return c.setNetwork(ctx, networkID, paramPSK, psk)
}

// SetNetworkBSSID issues SET_NETWORK <id> bssid <bssid>, pinning the
// network entry to a specific access point.
func (c RequestClient) SetNetworkBSSID(ctx context.Context, networkID int, bssid string) error {
	return c.setNetwork(ctx, networkID, paramBSSID, bssid)
}

// SetNetworkKeyMgmt issues SET_NETWORK <id> key_mgmt <value>, e.g. "NONE"
// for an open network or "WPA-PSK" for a pre-shared-key network.
func (c RequestClient) SetNetworkKeyMgmt(ctx context.Context, networkID int, keyMgmt string) error {
	return c.setNetwork(ctx, networkID, paramKeyMgmt, keyMgmt)
}

// SaveConfig issues SAVE_CONFIG, persisting the in-memory network list to
// wpa_supplicant's configuration file.
func (c RequestClient) SaveConfig(ctx context.Context) error {
	done := make(chan struct{}, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), saveConfig: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RemoveNetwork issues REMOVE_NETWORK <id>.
func (c RequestClient) RemoveNetwork(ctx context.Context, networkID int) error {
	done := make(chan struct{}, 1)
	id := networkID
	if err := c.send(ctx, request{spanID: newSpanID(), removeNetwork: &id, removeDone: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RemoveAllNetworks issues REMOVE_NETWORK all, clearing every configured
// network entry. Supplements the ssid/psk-only original with the fuller
// later-revision network-management surface.
func (c RequestClient) RemoveAllNetworks(ctx context.Context) error {
	done := make(chan struct{}, 1)
	if err := c.send(ctx, request{spanID: newSpanID(), removeAll: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SelectNetwork issues SELECT_NETWORK <id> and waits for it to resolve into
// a connection, a rejection, or a timeout. Only one SelectNetwork may be in
// flight at a time; a second call while one is pending immediately resolves
// to SelectPendingSelect without touching the daemon.
func (c RequestClient) SelectNetwork(ctx context.Context, networkID int) (SelectResult, error) {
	reply := make(chan SelectResult, 1)
	id := networkID
	if err := c.send(ctx, request{spanID: newSpanID(), selectNetwork: &id, selectResult: reply}); err != nil {
		return 0, err
	}
	select {
	case result := <-reply:
		return result, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Shutdown asks the runtime actor to stop after finishing any in-flight
// request.
func (c RequestClient) Shutdown(ctx context.Context) error {
	return c.send(ctx, request{spanID: newSpanID(), shutdown: true})
}
