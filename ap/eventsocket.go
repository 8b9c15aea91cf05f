package ap

import (
	"context"
	"strings"
	"time"

	wifictrl "github.com/novalabsxyz/wifi-ctrl"
	"github.com/novalabsxyz/wifi-ctrl/internal/logger"
	"github.com/novalabsxyz/wifi-ctrl/internal/retry"
	"github.com/novalabsxyz/wifi-ctrl/internal/unixsock"
)

// event is an unsolicited hostapd control-socket notification.
type event struct {
	kind eventKind
	mac  string
	raw  string
}

type eventKind int

const (
	eventSTAConnected eventKind = iota
	eventSTADisconnected
	eventUnknown
)

func classifyEventLine(line string) event {
	if i := strings.Index(line, "AP-STA-DISCONNECTED"); i >= 0 {
		mac := strings.TrimSpace(line[i+len("AP-STA-DISCONNECTED"):])
		return event{kind: eventSTADisconnected, mac: mac}
	}
	if i := strings.Index(line, "AP-STA-CONNECTED"); i >= 0 {
		mac := strings.TrimSpace(line[i+len("AP-STA-CONNECTED"):])
		return event{kind: eventSTAConnected, mac: mac}
	}
	return event{kind: eventUnknown, raw: line}
}

// eventSocket owns the ATTACH'd control-socket connection and classifies
// every line it receives into an event, mirroring
// original_source/src/ap/event_socket.rs.
type eventSocket struct {
	handle        *unixsock.Handle
	attachOptions []string
	events        chan<- event
}

// run attaches to the event stream (retrying ATTACH, then LOG_LEVEL DEBUG,
// every 250ms until each succeeds, per original_source) and forwards
// classified events until the connection is closed or a read fails.
func (s *eventSocket) run(ctx context.Context) error {
	attachCmd := "ATTACH"
	if len(s.attachOptions) > 0 {
		attachCmd += " " + strings.Join(s.attachOptions, " ")
	}

	backoff := retry.NewConstantBackoff(250 * time.Millisecond)
	if err := retry.Retry(ctx, backoff, func() error {
		return s.handle.Command([]byte(attachCmd))
	}, nil); err != nil {
		return err
	}
	if err := retry.Retry(ctx, backoff, func() error {
		return s.handle.Command([]byte("LOG_LEVEL DEBUG"))
	}, nil); err != nil {
		return err
	}
	logger.Infof(ctx, "hostapd event stream registered")

	for {
		n, err := s.handle.Recv()
		if err != nil {
			return wifictrl.UnexpectedResponseError{Response: err.Error()}
		}
		line := strings.TrimSpace(string(s.handle.Buf[:n]))
		ev := classifyEventLine(line)
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
