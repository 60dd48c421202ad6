// Package tcpclient performs one request/response exchange per call over a
// freshly opened TCP connection, cooperatively yielding to the host network
// stack while it waits. The caller's thread is monopolised for the duration
// of a request; that is the intended model on a single-core target.
package tcpclient

import (
	"bytes"
	"time"

	"picolink-go/x/conv"
	"picolink-go/x/netx"
)

const (
	// respBufSize bounds the accumulated response, terminator included.
	respBufSize = 512

	DefaultConnectTimeout  = 5 * time.Second
	DefaultResponseTimeout = 10 * time.Second

	pollInterval = 10 * time.Millisecond
)

// Config for one client instance.
type Config struct {
	ServerIP   string // dotted decimal, at most 15 chars
	ServerPort uint16 // 1..65535

	ConnectTimeout  time.Duration // default 5 s
	ResponseTimeout time.Duration // default 10 s

	// Status, when set, receives human-readable progress strings.
	Status func(msg string)

	// Accept decides whether an accumulated response counts as success.
	// It is a content heuristic, not a protocol parser; the default matches
	// an "OK" or "200" substring. Callers needing stricter semantics must
	// inspect Response.Data themselves.
	Accept func(resp []byte) bool
}

// Response describes the outcome of one Send call.
type Response struct {
	Success     bool
	Code        Code
	Data        []byte // accumulated response bytes, at most respBufSize-1
	Len         int
	RoundTripMs int64 // connect initiation to completion
}

// DefaultAccept is the stock success heuristic.
func DefaultAccept(resp []byte) bool {
	return bytes.Contains(resp, []byte("OK")) || bytes.Contains(resp, []byte("200"))
}

// Client holds the configuration and the transient state of the request in
// flight. One instance serialises its own requests; it must not be shared
// for concurrent overlapping Send calls.
type Client struct {
	cfg   Config
	stack Stack
	addr  netx.Addr

	tr Transport // non-nil only while a request is in flight

	connected bool
	complete  bool
	success   bool
	resp      [respBufSize]byte
	respLen   int
	start     time.Time
	rtt       time.Duration
}

// New validates the configuration and returns a reusable client.
func New(stack Stack, cfg Config) (*Client, error) {
	if stack == nil || cfg.ServerIP == "" || cfg.ServerPort == 0 {
		return nil, CodeInvalidArgument
	}
	addr, ok := netx.ParseIPv4(cfg.ServerIP)
	if !ok {
		println("[tcpclient] invalid server address:", cfg.ServerIP)
		return nil, CodeInvalidArgument
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = DefaultResponseTimeout
	}
	if cfg.Accept == nil {
		cfg.Accept = DefaultAccept
	}
	return &Client{cfg: cfg, stack: stack, addr: addr}, nil
}

// Ready reports whether the link layer is up; the cheap precondition to
// check before attempting a request.
func Ready(stack Stack) bool {
	return stack != nil && stack.LinkUp()
}

// SendText sends a string payload.
func (c *Client) SendText(s string) (Response, error) {
	return c.Send([]byte(s))
}

// Send performs one request/response exchange: connect, write the payload,
// accumulate the response until the peer closes or errors, then close the
// transport. Two independent timeout budgets apply, one for the connect
// phase and one for the response phase (restarted after the write).
//
// On a transport failure the returned error is the failing Code and the
// response carries it. On a completed exchange the error is nil and
// Response.Code is CodeOK or CodeReceiveFailed depending on the accept
// heuristic. No failure path leaves the transport open.
func (c *Client) Send(data []byte) (Response, error) {
	if c == nil || len(data) == 0 {
		return fail(CodeInvalidArgument)
	}
	if !c.stack.LinkUp() {
		return fail(CodeWifiNotReady)
	}

	c.reset()
	c.start = time.Now()
	c.status("Connecting to server...")

	tr, err := c.stack.NewTransport()
	if err != nil || tr == nil {
		return fail(CodeResourceExhausted)
	}
	c.tr = tr
	tr.Start(Callbacks{
		Connected: c.onConnected,
		Failed:    c.onFailed,
		Received:  c.onReceived,
		Sent:      c.onSent,
		Closed:    c.onClosed,
	})

	if err := tr.Connect(c.addr, c.cfg.ServerPort); err != nil {
		println("[tcpclient] connect initiation failed:", err.Error())
		c.closeTransport()
		return fail(CodeConnectFailed)
	}

	c.waitUntil(func() bool { return c.connected || c.complete },
		time.Now().Add(c.cfg.ConnectTimeout))
	if !c.connected {
		c.closeTransport()
		return fail(CodeConnectTimeout)
	}

	c.status("Sending data...")
	if err := c.tr.Write(data); err != nil {
		println("[tcpclient] write failed:", err.Error())
		c.closeTransport()
		return fail(CodeSendFailed)
	}

	// Response budget runs from the end of sending, not from connect.
	c.waitUntil(func() bool { return c.complete },
		time.Now().Add(c.cfg.ResponseTimeout))
	c.closeTransport()
	if !c.complete {
		return fail(CodeResponseTimeout)
	}

	code := CodeReceiveFailed
	if c.success {
		code = CodeOK
	}
	resp := Response{
		Success:     c.success,
		Code:        code,
		Data:        append([]byte(nil), c.resp[:c.respLen]...),
		Len:         c.respLen,
		RoundTripMs: c.rtt.Milliseconds(),
	}
	if resp.Success {
		println("[tcpclient] request complete:", resp.Len, "bytes in", resp.RoundTripMs, "ms")
	} else {
		println("[tcpclient] request complete without acknowledgment:", resp.Len, "bytes")
	}
	return resp, nil
}

// Destroy aborts any still-open transport. The abort is non-graceful: a
// live peer sees the connection reset. The client must not be used after.
func (c *Client) Destroy() {
	if c == nil {
		return
	}
	if c.tr != nil {
		println("[tcpclient] aborting live transport")
		c.tr.Abort()
		c.tr = nil
	}
}

// waitUntil cooperatively polls the stack until pred holds or the deadline
// passes, then reports pred one final time so events delivered by the last
// poll are not lost.
func (c *Client) waitUntil(pred func() bool, deadline time.Time) bool {
	for !pred() && time.Now().Before(deadline) {
		c.stack.Poll()
		time.Sleep(pollInterval)
	}
	return pred()
}

func (c *Client) reset() {
	c.connected = false
	c.complete = false
	c.success = false
	c.respLen = 0
	c.rtt = 0
	c.resp = [respBufSize]byte{}
}

func (c *Client) closeTransport() {
	if c.tr != nil {
		_ = c.tr.Close()
		c.tr = nil
	}
}

func (c *Client) status(msg string) {
	if c.cfg.Status != nil {
		c.cfg.Status(msg)
	}
}

func fail(code Code) (Response, error) {
	println("[tcpclient]", ErrorString(code))
	return Response{Success: false, Code: code}, code
}

// -----------------------------------------------------------------------------
// Stack callbacks (fire inside Poll)
// -----------------------------------------------------------------------------

func (c *Client) onConnected() {
	c.connected = true
	c.status("Connected to server")
}

func (c *Client) onFailed(err error) {
	println("[tcpclient] transport error:", err.Error())
	c.success = false
	c.complete = true
	c.rtt = time.Since(c.start)
	c.status("TCP error: " + err.Error())
}

// onReceived appends as much as fits in the remaining buffer capacity and
// discards the rest; the receive window is fixed and never grows.
func (c *Client) onReceived(p []byte) {
	if len(p) == 0 {
		return
	}
	space := respBufSize - c.respLen - 1
	n := len(p)
	if n > space {
		n = space
	}
	if n > 0 {
		copy(c.resp[c.respLen:], p[:n])
		c.respLen += n
	}
	if c.cfg.Accept(c.resp[:c.respLen]) {
		c.success = true
	}
	if c.cfg.Status != nil {
		var buf [20]byte
		c.cfg.Status("Received " + string(conv.Itoa(buf[:], int64(c.respLen))) + " bytes")
	}
}

func (c *Client) onSent(n int) {
	println("[tcpclient] sent", n, "bytes")
}

func (c *Client) onClosed() {
	c.complete = true
	c.rtt = time.Since(c.start)
}
