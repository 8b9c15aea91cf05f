package unixsock

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"
)

// fakeDaemon is a minimal scripted Unix-datagram daemon: it replies to a
// received datagram whose text is a key of replies with the mapped string,
// and ignores any other datagram, modeled on the
// teacher's hand-written-fake test idiom (e.g. fakeMDNS in
// dev_finder_test.go) rather than a generated mock.
func startFakeDaemon(t *testing.T, path string, replies map[string]string) {
	t.Helper()
	addr := &net.UnixAddr{Name: path, Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		t.Fatalf("ListenUnixgram: %v", err)
	}
	go func() {
		buf := make([]byte, 4096)
		for {
			n, from, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			reply, ok := replies[string(buf[:n])]
			if !ok {
				continue
			}
			_, _ = conn.WriteTo([]byte(reply), from)
		}
	}()
	t.Cleanup(func() { conn.Close() })
}

func TestOpenAndCommandOK(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "daemon.sock")
	startFakeDaemon(t, sockPath, map[string]string{"PING": "OK"})

	requests := make(chan struct{})
	h, deferred, err := Open[struct{}](context.Background(), sockPath, "client.sock", 4096, requests, func(struct{}) bool { return false })
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()
	if len(deferred) != 0 {
		t.Fatalf("unexpected deferred requests: %v", deferred)
	}

	if err := h.Command([]byte("PING")); err != nil {
		t.Fatalf("Command: %v", err)
	}
}

func TestCommandUnexpectedResponse(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "daemon.sock")
	startFakeDaemon(t, sockPath, map[string]string{"BAD": "FAIL"})

	requests := make(chan struct{})
	h, _, err := Open[struct{}](context.Background(), sockPath, "client.sock", 4096, requests, func(struct{}) bool { return false })
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	err = h.Command([]byte("BAD"))
	if err == nil {
		t.Fatal("expected error for non-OK reply")
	}
}

func TestRecvWithTimeoutTimesOut(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "daemon.sock")
	startFakeDaemon(t, sockPath, map[string]string{})

	requests := make(chan struct{})
	h, _, err := Open[struct{}](context.Background(), sockPath, "client.sock", 4096, requests, func(struct{}) bool { return false })
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	start := time.Now()
	_, err = h.RecvWithTimeout(50 * time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Fatal("RecvWithTimeout took too long")
	}
}

func TestOpenTimesOutWhenNoDaemon(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "does-not-exist.sock")

	requests := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, _, err := Open[struct{}](ctx, sockPath, "client.sock", 4096, requests, func(struct{}) bool { return false })
	if err == nil {
		t.Fatal("expected error connecting to nonexistent socket")
	}
}

func TestOpenAbortsOnDeferredShutdown(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "does-not-exist.sock")

	type req struct{ shutdown bool }
	requests := make(chan req, 1)
	requests <- req{shutdown: true}

	_, _, err := Open[req](context.Background(), sockPath, "client.sock", 4096, requests, func(r req) bool { return r.shutdown })
	if err == nil {
		t.Fatal("expected ErrStartupAborted")
	}
}
