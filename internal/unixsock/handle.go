// Package unixsock implements the control-socket half of a daemon
// connection: a private bind address connected to the daemon's well-known
// Unix datagram socket, plus the connect-retry and command/reply framing
// shared by the ap and sta packages. It is grounded on
// original_source/src/socket_handle.rs for the retry/timeout semantics, and
// on the teacher's mdns.go (syscall.RawConn.Control socket-option tuning)
// and netboot.go (bind-retry-loop idiom) for the Go expression of it.
package unixsock

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	wifictrl "github.com/novalabsxyz/wifi-ctrl"
	"github.com/novalabsxyz/wifi-ctrl/internal/logger"
	"github.com/novalabsxyz/wifi-ctrl/internal/retry"
)

const (
	connectRetryInterval = time.Second
	connectRetryWindow   = 5 * time.Minute
	defaultCommandWait   = time.Second
)

// Handle is a connected Unix datagram socket with a fixed-size scratch
// buffer for replies, bound to a private address under its own temp
// directory (removed on Close).
type Handle struct {
	dir  string
	conn *net.UnixConn
	Buf  []byte
}

// Open binds a private datagram socket under a fresh temp directory and
// connects it to socketPath, retrying once a second for up to five minutes.
// While waiting, requests arriving on requests are drained into the
// returned slice so the caller can replay them once connected, instead of
// blocking the requester's own send for the entire retry window. If
// isShutdown reports one of those requests as a shutdown signal, Open
// abandons the connect attempt and returns wifictrl.ErrStartupAborted
// rather than continuing to wait.
func Open[R any](ctx context.Context, socketPath, tmpLabel string, bufSize int, requests <-chan R, isShutdown func(R) bool) (*Handle, []R, error) {
	dir, err := os.MkdirTemp("", "wifictrl-")
	if err != nil {
		return nil, nil, err
	}

	laddr := &net.UnixAddr{Name: filepath.Join(dir, tmpLabel), Net: "unixgram"}
	raddr := &net.UnixAddr{Name: socketPath, Net: "unixgram"}

	// retryCtx lets the notify callback below cut the retry short (fatal
	// dial error or a deferred shutdown request) without waiting out the
	// rest of the current backoff delay.
	retryCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	deadline := time.Now().Add(connectRetryWindow)
	var (
		deferred []R
		conn     *net.UnixConn
		fatalErr error
		shutdown bool
		attempt  int
	)

	backoff := retry.WithMaxDuration(retry.NewConstantBackoff(connectRetryInterval), connectRetryWindow)
	retryErr := retry.Retry(retryCtx, backoff, func() error {
		c, dialErr := net.DialUnix("unixgram", laddr, raddr)
		if dialErr == nil {
			if err := setRecvBuffer(c, bufSize); err != nil {
				c.Close()
				fatalErr = err
				cancel()
				return err
			}
			conn = c
			return nil
		}
		if errors.Is(dialErr, os.ErrPermission) {
			fatalErr = wifictrl.PermissionDeniedOpeningSocketError{Path: socketPath, Err: dialErr}
			cancel()
		}
		return dialErr
	}, func(err error, _ time.Duration) {
		if fatalErr != nil {
			return
		}
		attempt++
		if attempt%60 == 1 {
			logger.Infof(ctx, "failed to connect to %s, retrying for %s more", socketPath, time.Until(deadline).Round(time.Second))
		}
		select {
		case req, ok := <-requests:
			if ok {
				deferred = append(deferred, req)
				if isShutdown(req) {
					shutdown = true
					cancel()
				}
			}
		default:
		}
	})

	switch {
	case retryErr == nil && conn != nil:
		return &Handle{dir: dir, conn: conn, Buf: make([]byte, bufSize)}, deferred, nil
	case fatalErr != nil:
		os.RemoveAll(dir)
		return nil, deferred, fatalErr
	case shutdown || ctx.Err() != nil:
		os.RemoveAll(dir)
		return nil, deferred, wifictrl.ErrStartupAborted
	default:
		os.RemoveAll(dir)
		return nil, deferred, wifictrl.TimeoutOpeningSocketError{Path: socketPath}
	}
}

func setRecvBuffer(conn *net.UnixConn, size int) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, size)
	}); err != nil {
		return err
	}
	return sockErr
}

// Command sends cmd as a single datagram and waits up to one second for a
// literal "OK" reply, matching the daemons' ok/fail command convention.
func (h *Handle) Command(cmd []byte) error {
	n, err := h.conn.Write(cmd)
	if err != nil {
		return err
	}
	if n != len(cmd) {
		return wifictrl.DidNotWriteAllBytesError{Wrote: n, Want: len(cmd)}
	}
	return h.ExpectOK(defaultCommandWait)
}

// ExpectOK waits up to timeout for the next reply and requires it to be
// exactly "OK".
func (h *Handle) ExpectOK(timeout time.Duration) error {
	n, err := h.RecvWithTimeout(timeout)
	if err != nil {
		return err
	}
	s := strings.TrimSpace(string(h.Buf[:n]))
	if s != "OK" {
		return wifictrl.UnexpectedResponseError{Response: s}
	}
	return nil
}

// RecvWithTimeout reads one datagram into Buf, returning the byte count, or
// wifictrl.ErrTimeout if none arrives within timeout.
func (h *Handle) RecvWithTimeout(timeout time.Duration) (int, error) {
	if err := h.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := h.conn.Read(h.Buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return 0, wifictrl.ErrTimeout
		}
		return 0, err
	}
	return n, nil
}

// Recv blocks indefinitely for the next datagram; used by the event
// socket's continuous read loop, which has no per-read timeout of its own.
func (h *Handle) Recv() (int, error) {
	if err := h.conn.SetReadDeadline(time.Time{}); err != nil {
		return 0, err
	}
	return h.conn.Read(h.Buf)
}

// Send writes b as a single datagram without waiting for a reply.
func (h *Handle) Send(b []byte) (int, error) {
	return h.conn.Write(b)
}

// Close closes the underlying socket and removes its temp directory.
func (h *Handle) Close() error {
	err := h.conn.Close()
	os.RemoveAll(h.dir)
	return err
}
