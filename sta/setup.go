package sta

import (
	"time"

	"github.com/novalabsxyz/wifi-ctrl/internal/broadcast"
)

// defaultSocketPath is wpa_supplicant's conventional control-socket
// directory entry for the primary station interface.
const defaultSocketPath = "/var/run/wpa_supplicant/wlan0"

// defaultRequestBuffer and defaultBroadcastBuffer size the request and
// broadcast channels, matching original_source/src/sta/setup.rs's
// WifiSetup<const C: usize = 32, const B: usize = 32> defaults.
const (
	defaultRequestBuffer   = 32
	defaultBroadcastBuffer = 32
)

// defaultSelectTimeout bounds how long a SelectNetwork request waits for a
// correlated daemon event before resolving to SelectTimeout.
const defaultSelectTimeout = 10 * time.Second

// Setup builds a Runtime, its RequestClient, and a broadcast subscription
// that all share the same underlying channels. Configure it, then call
// Complete to obtain the Runtime to run.
type Setup struct {
	socketPath      string
	requestBuffer   int
	broadcastBuffer int
	selectTimeout   time.Duration
}

// NewSetup returns a Setup with wpa_supplicant's default socket path and
// the teacher-style channel-size defaults.
func NewSetup() *Setup {
	return &Setup{
		socketPath:      defaultSocketPath,
		requestBuffer:   defaultRequestBuffer,
		broadcastBuffer: defaultBroadcastBuffer,
		selectTimeout:   defaultSelectTimeout,
	}
}

// SetSocketPath overrides the default control-socket path. Interface
// enumeration (choosing which path corresponds to which radio) is the
// caller's responsibility.
func (s *Setup) SetSocketPath(path string) *Setup {
	s.socketPath = path
	return s
}

// SetSelectTimeout overrides how long SelectNetwork waits before resolving
// to SelectTimeout.
func (s *Setup) SetSelectTimeout(d time.Duration) *Setup {
	s.selectTimeout = d
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
		requests:      requests,
		hub:           hub,
		selectTimeout: s.selectTimeout,
	}
	client := RequestClient{requests: requests}
	sub := hub.Subscribe()
	return rt, client, sub
}
