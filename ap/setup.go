package ap

import (
	"github.com/novalabsxyz/wifi-ctrl/internal/broadcast"
)

// defaultSocketPath is hostapd's conventional control-socket directory
// entry for the primary AP interface.
const defaultSocketPath = "/var/run/hostapd/wlan1"

// defaultRequestBuffer and defaultBroadcastBuffer size the request and
// broadcast channels, matching the station side's WifiSetup<C, B> defaults
// (original_source has no standalone ap/setup.rs in the retrieved pack, so
// this mirrors sta/setup.rs's constants for consistency across the two
// packages).
const (
	defaultRequestBuffer   = 32
	defaultBroadcastBuffer = 32
)

// Setup builds a Runtime, its RequestClient, and a broadcast subscription
// that all share the same underlying channels. Configure it, then call
// Complete to obtain the Runtime to run.
type Setup struct {
	socketPath      string
	attachOptions   []string
	requestBuffer   int
	broadcastBuffer int
}

// NewSetup returns a Setup with hostapd's default socket path and the
// teacher-style channel-size defaults.
func NewSetup() *Setup {
	return &Setup{
		socketPath:      defaultSocketPath,
		requestBuffer:   defaultRequestBuffer,
		broadcastBuffer: defaultBroadcastBuffer,
	}
}

// SetSocketPath overrides the default control-socket path. Interface
// enumeration is the caller's responsibility.
func (s *Setup) SetSocketPath(path string) *Setup {
	s.socketPath = path
	return s
}

// SetAttachOptions sets extra tokens appended to the ATTACH command, e.g.
// to scope the event subscription to a specific BSS on a multi-BSSID
// interface.
func (s *Setup) SetAttachOptions(opts ...string) *Setup {
	s.attachOptions = opts
	return s
}

// SetRequestQueueCapacity overrides the request channel's buffer size (C).
func (s *Setup) SetRequestQueueCapacity(c int) *Setup {
	s.requestBuffer = c
	return s
}

// SetBroadcastQueueCapacity overrides each subscriber's broadcast channel
// buffer size (B).
func (s *Setup) SetBroadcastQueueCapacity(b int) *Setup {
	s.broadcastBuffer = b
	return s
}

// Complete returns the configured Runtime along with a RequestClient and
// broadcast subscription wired to it. Call Runtime.Run exactly once, from
// whichever goroutine should own the control-socket connections.
func (s *Setup) Complete() (*Runtime, RequestClient, *broadcast.Subscription[Broadcast]) {
	requests := make(chan request, s.requestBuffer)
	hub := broadcast.NewHub[Broadcast](s.broadcastBuffer)

	rt := &Runtime{
		socketPath:    s.socketPath,
		attachOptions: s.attachOptions,
		requests:      requests,
		hub:           hub,
	}
	client := RequestClient{requests: requests}
	sub := hub.Subscribe()
	return rt, client, sub
}
