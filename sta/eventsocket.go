package sta

import (
	"context"
	"strings"
	"time"

	wifictrl "github.com/novalabsxyz/wifi-ctrl"
	"github.com/novalabsxyz/wifi-ctrl/internal/logger"
	"github.com/novalabsxyz/wifi-ctrl/internal/retry"
	"github.com/novalabsxyz/wifi-ctrl/internal/unixsock"
)

// event is an unsolicited wpa_supplicant control-socket notification,
// classified from the ATTACH'd event stream.
type event int

const (
	eventScanComplete event = iota
	eventConnected
	eventDisconnected
	eventNetworkNotFound
	eventWrongPsk
)

// eventSocket owns the ATTACH'd control-socket connection and classifies
// every line it receives into an event, mirroring
// original_source/src/sta/event_socket.rs's substring matching.
type eventSocket struct {
	handle *unixsock.Handle
	events chan<- event
}

func classifyEventLine(line string) (event, bool) {
	switch {
	case strings.HasSuffix(line, "CTRL-EVENT-SCAN-RESULTS"):
		return eventScanComplete, true
	case strings.Contains(line, "CTRL-EVENT-CONNECTED"):
		return eventConnected, true
	case strings.Contains(line, "CTRL-EVENT-DISCONNECTED"):
		return eventDisconnected, true
	case strings.Contains(line, "CTRL-EVENT-NETWORK-NOT-FOUND"):
		return eventNetworkNotFound, true
	case strings.Contains(line, "CTRL-EVENT-SSID-TEMP-DISABLED") && strings.Contains(line, "reason=WRONG_KEY"):
		return eventWrongPsk, true
	default:
		return 0, false
	}
}

// run attaches to the event stream and forwards classified events until the
// handle's connection is closed or a read fails. ATTACH is retried every
// 250ms until it succeeds, matching the two-phase startup handshake used on
// the hostapd side (original_source/src/ap/event_socket.rs), so a daemon
// that's still initializing its control interface doesn't abort start-up.
func (s *eventSocket) run(ctx context.Context) error {
	backoff := retry.NewConstantBackoff(250 * time.Millisecond)
	err := retry.Retry(ctx, backoff, func() error {
		return s.handle.Command([]byte("ATTACH"))
	}, func(err error, _ time.Duration) {
		logger.Debugf(ctx, "ATTACH failed, retrying: %v", err)
	})
	if err != nil {
		return err
	}
	err = retry.Retry(ctx, backoff, func() error {
		return s.handle.Command([]byte("LOG_LEVEL DEBUG"))
	}, func(err error, _ time.Duration) {
		logger.Debugf(ctx, "LOG_LEVEL DEBUG failed, retrying: %v", err)
	})
	if err != nil {
		return err
	}
	logger.Infof(ctx, "wpa_ctrl event stream registered")
	for {
		n, err := s.handle.Recv()
		if err != nil {
			return wifictrl.UnexpectedResponseError{Response: err.Error()}
		}
		line := strings.TrimSpace(string(s.handle.Buf[:n]))
		logger.Debugf(ctx, "wpa_ctrl event: %s", line)
		if ev, ok := classifyEventLine(line); ok {
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
