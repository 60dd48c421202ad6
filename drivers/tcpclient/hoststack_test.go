package tcpclient

import (
	"io"
	"net"
	"strconv"
	"testing"
	"time"
)

// startServer runs handler for every accepted connection and returns the
// listener's port.
func startServer(t *testing.T, handler func(net.Conn)) uint16 {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handler(conn)
		}
	}()
	return uint16(ln.Addr().(*net.TCPAddr).Port)
}

func TestHostStack_Exchange(t *testing.T) {
	port := startServer(t, func(conn net.Conn) {
		defer conn.Close()
		buf := make([]byte, 256)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		conn.Write([]byte("OK got "))
		conn.Write([]byte(strconv.Itoa(n)))
	})

	s := NewHostStack()
	c, err := New(s, Config{ServerIP: "127.0.0.1", ServerPort: port})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := c.SendText("hello over loopback")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !resp.Success || resp.Code != CodeOK {
		t.Fatalf("success = %v, code = %v, data = %q", resp.Success, resp.Code, resp.Data)
	}
	if string(resp.Data) != "OK got 19" {
		t.Fatalf("data = %q", resp.Data)
	}
	if resp.RoundTripMs < 0 {
		t.Errorf("round trip %d ms is negative", resp.RoundTripMs)
	}
}

func TestHostStack_SilentServerTimesOut(t *testing.T) {
	port := startServer(t, func(conn net.Conn) {
		// Accept, read, never answer. The client's Close ends the read.
		io.Copy(io.Discard, conn)
		conn.Close()
	})

	s := NewHostStack()
	c, err := New(s, Config{
		ServerIP:        "127.0.0.1",
		ServerPort:      port,
		ResponseTimeout: 150 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	startAt := time.Now()
	_, err = c.SendText("anyone there")
	if err != CodeResponseTimeout {
		t.Fatalf("err = %v, want CodeResponseTimeout", err)
	}
	if elapsed := time.Since(startAt); elapsed < 150*time.Millisecond {
		t.Errorf("returned after %v, before the response budget", elapsed)
	}
}

func TestHostStack_ConnectRefused(t *testing.T) {
	// Grab a port that is free and closed.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	ln.Close()

	s := NewHostStack()
	c, err := New(s, Config{
		ServerIP:       "127.0.0.1",
		ServerPort:     port,
		ConnectTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	startAt := time.Now()
	_, err = c.SendText("ping")
	if err != CodeConnectTimeout {
		t.Fatalf("err = %v, want CodeConnectTimeout", err)
	}
	if elapsed := time.Since(startAt); elapsed > time.Second {
		t.Errorf("refusal took %v, should fail well before the budget", elapsed)
	}
}

func TestHostStack_SequentialRequests(t *testing.T) {
	port := startServer(t, func(conn net.Conn) {
		defer conn.Close()
		buf := make([]byte, 64)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		conn.Write([]byte("OK "))
		conn.Write(buf[:n])
	})

	s := NewHostStack()
	c, err := New(s, Config{ServerIP: "127.0.0.1", ServerPort: port})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, msg := range []string{"first", "second", "third"} {
		resp, err := c.SendText(msg)
		if err != nil {
			t.Fatalf("Send(%q): %v", msg, err)
		}
		if string(resp.Data) != "OK "+msg {
			t.Fatalf("Send(%q): data = %q", msg, resp.Data)
		}
	}
}
