package ipc

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/1broseidon/ledge/internal/runtimepath"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("LEDGE_RUNTIME_DIR", t.TempDir())

	s, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func dialTestServer(t *testing.T) net.Conn {
	t.Helper()
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		t.Fatalf("SocketPath: %v", err)
	}
	conn, err := net.DialTimeout("unix", socketPath, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func sendLine(t *testing.T, conn net.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readResponse(t *testing.T, reader *bufio.Reader) *Response {
	t.Helper()
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	return &resp
}

func TestCommandsRejectedBeforeDockAttached(t *testing.T) {
	startTestServer(t)
	conn := dialTestServer(t)
	reader := bufio.NewReader(conn)

	sendLine(t, conn, Request{Command: CommandGetStatus})

	resp := readResponse(t, reader)
	if resp.Status != "ERROR" {
		t.Fatalf("status = %q, want ERROR before attachment", resp.Status)
	}
}

func TestSubscribeReceivesPushedEvents(t *testing.T) {
	s := startTestServer(t)
	conn := dialTestServer(t)
	reader := bufio.NewReader(conn)

	sendLine(t, conn, Request{Command: CommandSubscribe})
	if resp := readResponse(t, reader); resp.Status != "OK" {
		t.Fatalf("subscribe status = %q, want OK", resp.Status)
	}

	// Registration happens after the acknowledgement is written, so the
	// subscriber is visible once the OK arrives... but only to the handler
	// goroutine ordering; poll until the server counts it.
	deadline := time.Now().Add(2 * time.Second)
	for s.subscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.Emit("set-auto-hide", true); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if ev.Event != "set-auto-hide" {
		t.Fatalf("event = %q, want set-auto-hide", ev.Event)
	}
	var hidden bool
	if err := json.Unmarshal(ev.Payload, &hidden); err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if !hidden {
		t.Fatal("payload = false, want true")
	}
}

func TestEmitDropsDeadSubscribers(t *testing.T) {
	s := startTestServer(t)
	conn := dialTestServer(t)
	reader := bufio.NewReader(conn)

	sendLine(t, conn, Request{Command: CommandSubscribe})
	if resp := readResponse(t, reader); resp.Status != "OK" {
		t.Fatalf("subscribe status = %q, want OK", resp.Status)
	}
	deadline := time.Now().Add(2 * time.Second)
	for s.subscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	// The closed connection fails on some write; the server must shed it
	// rather than retrying forever.
	deadline = time.Now().Add(2 * time.Second)
	for s.subscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("dead subscriber never dropped")
		}
		s.Emit("set-auto-hide", false)
		time.Sleep(5 * time.Millisecond)
	}
}

func TestUnknownCommand(t *testing.T) {
	startTestServer(t)
	conn := dialTestServer(t)
	reader := bufio.NewReader(conn)

	sendLine(t, conn, Request{Command: "EXPLODE"})

	resp := readResponse(t, reader)
	if resp.Status != "ERROR" {
		t.Fatalf("status = %q, want ERROR", resp.Status)
	}
}
