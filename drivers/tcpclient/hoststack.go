package tcpclient

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"

	"picolink-go/x/netx"
)

// HostStack backs the Stack boundary with the operating system's socket
// layer. Socket work happens on background goroutines, but every callback
// is queued and delivered from inside Poll, so the client still observes
// the strict callbacks-on-the-poll-thread sequencing it was written for.
type HostStack struct {
	events chan func()
}

// Compile-time checks.
var (
	_ Stack     = (*HostStack)(nil)
	_ Transport = (*hostTransport)(nil)
)

func NewHostStack() *HostStack {
	return &HostStack{events: make(chan func(), 256)}
}

// LinkUp is always true on a host: the OS owns link management.
func (s *HostStack) LinkUp() bool { return true }

func (s *HostStack) NewTransport() (Transport, error) {
	return &hostTransport{stack: s}, nil
}

// Poll drains and runs all queued events without blocking.
func (s *HostStack) Poll() {
	for {
		select {
		case fn := <-s.events:
			fn()
		default:
			return
		}
	}
}

func (s *HostStack) post(fn func()) { s.events <- fn }

var errNotConnected = errors.New("transport not connected")

type hostTransport struct {
	stack  *HostStack
	cb     Callbacks
	cancel context.CancelFunc

	// done is only touched on the poll thread; it mutes events queued
	// before Close so a finished request cannot leak callbacks into the
	// next one.
	done bool

	mu     sync.Mutex // guards conn/closed against the dial goroutine
	conn   net.Conn
	closed bool
}

func (t *hostTransport) Start(cb Callbacks) { t.cb = cb }

func (t *hostTransport) Connect(addr netx.Addr, port uint16) error {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	target := net.JoinHostPort(addr.String(), strconv.Itoa(int(port)))

	go func() {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", target)
		if err != nil {
			t.emit(func() {
				if t.cb.Failed != nil {
					t.cb.Failed(err)
				}
			})
			return
		}
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			conn.Close()
			return
		}
		t.conn = conn
		t.mu.Unlock()

		t.emit(func() {
			if t.cb.Connected != nil {
				t.cb.Connected()
			}
		})
		t.readLoop(conn)
	}()
	return nil
}

func (t *hostTransport) readLoop(conn net.Conn) {
	buf := make([]byte, respBufSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			t.emit(func() {
				if t.cb.Received != nil {
					t.cb.Received(data)
				}
			})
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				t.emit(func() {
					if t.cb.Closed != nil {
						t.cb.Closed()
					}
				})
			} else {
				t.emit(func() {
					if t.cb.Failed != nil {
						t.cb.Failed(err)
					}
				})
			}
			return
		}
	}
}

// emit queues an event for the next Poll, dropped if the transport has
// been closed in the meantime.
func (t *hostTransport) emit(fn func()) {
	t.stack.post(func() {
		if t.done {
			return
		}
		fn()
	})
}

func (t *hostTransport) Write(p []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return errNotConnected
	}
	n, err := conn.Write(p)
	if err != nil {
		return err
	}
	t.emit(func() {
		if t.cb.Sent != nil {
			t.cb.Sent(n)
		}
	})
	return nil
}

func (t *hostTransport) Close() error {
	t.done = true
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.closed = true
	t.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// Abort matches Close on a host socket; the stack has no half-open state
// worth preserving here.
func (t *hostTransport) Abort() { _ = t.Close() }
