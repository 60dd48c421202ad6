package tcpclient

import (
	"picolink-go/x/netx"
)

// Callbacks are invoked by the stack from inside Poll, on the same logical
// thread that is spinning in Send. Unset members are simply skipped.
type Callbacks struct {
	Connected func()
	Failed    func(err error)
	Received  func(p []byte)
	Sent      func(n int)
	Closed    func() // peer closed the connection
}

// Transport is one connection handle owned by the network stack.
type Transport interface {
	// Start binds the callbacks before any connect attempt.
	Start(cb Callbacks)
	// Connect initiates an asynchronous connect. A non-nil error means the
	// stack rejected the attempt synchronously.
	Connect(addr netx.Addr, port uint16) error
	// Write queues the payload and flushes it to the wire.
	Write(p []byte) error
	// Close shuts the connection down gracefully.
	Close() error
	// Abort tears the connection down immediately.
	Abort()
}

// Stack is the host network-stack boundary consumed by the client.
type Stack interface {
	// LinkUp reports whether the underlying link layer is associated.
	LinkUp() bool
	// NewTransport allocates a fresh connection handle.
	NewTransport() (Transport, error)
	// Poll runs pending stack work; all callbacks fire inside this call.
	Poll()
}
