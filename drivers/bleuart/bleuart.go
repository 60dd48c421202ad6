// Package bleuart implements a Nordic-UART-style BLE peripheral: it
// advertises under a configurable name, accepts a single central, and pushes
// outbound messages as notifications on the TX characteristic. All state
// transitions are driven by stack events delivered from the host's poll
// loop; nothing here blocks or locks.
package bleuart

import (
	"picolink-go/errcode"
	"picolink-go/x/conv"
)

const (
	// MaxMessageLen bounds one outbound message, terminator byte included.
	MaxMessageLen = 128
	// MaxDeviceNameLen bounds the advertised device name, terminator included.
	MaxDeviceNameLen = 32
	// AdvPayloadMax is the link-layer advertising PDU payload limit.
	AdvPayloadMax = 31
)

// State of the peripheral connection lifecycle.
type State uint8

const (
	StateDisabled State = iota
	StateInitializing
	StateAdvertising
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "DISABLED"
	case StateInitializing:
		return "INITIALIZING"
	case StateAdvertising:
		return "ADVERTISING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// SendStatus distinguishes the ways a send can be refused.
type SendStatus uint8

const (
	SendOK SendStatus = iota
	SendNotConnected
	SendNotSubscribed
	SendEmptyMessage
)

func (s SendStatus) String() string {
	switch s {
	case SendOK:
		return "ok"
	case SendNotConnected:
		return "not connected"
	case SendNotSubscribed:
		return "not subscribed"
	case SendEmptyMessage:
		return "empty message"
	default:
		return "unknown"
	}
}

// Driver owns the whole peripheral context: connection state, the outbound
// message buffer, and the advertising payload. The board has one radio, so
// one Driver instance exists per application; it is passed explicitly
// rather than held in package state.
type Driver struct {
	stack Stack

	state      State
	subscribed bool
	conn       ConnHandle
	connCb     func(connected bool)
	rxCb       func(data []byte)

	name    [MaxDeviceNameLen]byte
	nameLen int

	msg    [MaxMessageLen]byte
	msgLen int

	adv    [AdvPayloadMax]byte
	advLen int
}

// New returns a driver bound to the given stack. Call Init to power on.
func New(stack Stack) *Driver {
	return &Driver{stack: stack}
}

// Init validates the device name, registers with the stack, and powers the
// radio on. Advertising starts asynchronously once the stack reports ready;
// Init does not wait for it. On failure the driver stays DISABLED so the
// caller may retry with a corrected name.
func (d *Driver) Init(deviceName string) error {
	if d.state != StateDisabled {
		return errcode.Busy
	}
	if len(deviceName) == 0 || len(deviceName) >= MaxDeviceNameLen {
		println("[bleuart] invalid device name")
		return errcode.InvalidName
	}
	d.nameLen = copy(d.name[:], deviceName)

	d.state = StateInitializing
	if err := d.stack.PowerOn(d); err != nil {
		d.state = StateDisabled
		d.nameLen = 0
		return err
	}
	println("[bleuart] initialised, waiting for stack ready")
	return nil
}

// Send queues one message for notification. It reports false unless a
// central is connected with notifications enabled; use TrySend when the
// refusal reason matters.
func (d *Driver) Send(message string) bool {
	return d.TrySend([]byte(message)) == SendOK
}

// TrySend copies the message into the outbound buffer and requests a
// stack-level notify. Delivery is fire-and-forget: there is no
// acknowledgment and no retry at this layer. Oversized messages are
// truncated to MaxMessageLen-1 bytes.
func (d *Driver) TrySend(message []byte) SendStatus {
	if d.state != StateConnected {
		return SendNotConnected
	}
	if !d.subscribed {
		return SendNotSubscribed
	}
	if len(message) == 0 {
		return SendEmptyMessage
	}
	n := len(message)
	if n > MaxMessageLen-1 {
		println("[bleuart] message too long, truncating to", MaxMessageLen-1, "bytes")
		n = MaxMessageLen - 1
	}
	copy(d.msg[:], message[:n])
	d.msgLen = n

	if err := d.stack.Notify(d.conn, d.msg[:d.msgLen]); err != nil {
		println("[bleuart] notify failed:", err.Error())
	}
	return SendOK
}

// IsConnected reports whether a central is connected AND has enabled
// notifications. This is the sole gate applications should consult before
// calling Send; a bare link-layer connection is not enough.
func (d *Driver) IsConnected() bool {
	return d.state == StateConnected && d.subscribed
}

// State returns the current lifecycle state.
func (d *Driver) State() State { return d.state }

// DeviceName returns the name passed to Init.
func (d *Driver) DeviceName() string { return string(d.name[:d.nameLen]) }

// SetConnectHandler registers a callback fired with true once a central
// enables notifications, and with false on disconnect. Pass nil to clear.
func (d *Driver) SetConnectHandler(fn func(connected bool)) { d.connCb = fn }

// SetReceiveHandler registers a callback for data the central writes to
// the RX characteristic. The slice is only valid during the call.
func (d *Driver) SetReceiveHandler(fn func(data []byte)) { d.rxCb = fn }

// Stop disables advertising and drops any live connection. Idempotent.
func (d *Driver) Stop() {
	if d.state == StateDisabled {
		return
	}
	println("[bleuart] stopping")
	if err := d.stack.EnableAdvertising(false); err != nil {
		println("[bleuart] disable advertising failed:", err.Error())
	}
	if d.state == StateConnected {
		d.stack.Disconnect(d.conn)
	}
	d.state = StateDisabled
	d.subscribed = false
	d.conn = 0
}

// -----------------------------------------------------------------------------
// Events (called by the stack from its poll loop)
// -----------------------------------------------------------------------------

var _ Events = (*Driver)(nil)

// StackReady builds the advertising payload and enables advertising.
func (d *Driver) StackReady() {
	if d.state != StateInitializing {
		return
	}
	d.advLen = buildAdvPayload(d.adv[:], d.name[:d.nameLen])

	// The payload doubles as scan-response data so scanners that only read
	// one of the two still see the name.
	if err := d.stack.SetAdvertisingData(d.adv[:d.advLen], d.adv[:d.advLen]); err != nil {
		println("[bleuart] set advertising data failed:", err.Error())
	}
	if err := d.stack.EnableAdvertising(true); err != nil {
		println("[bleuart] enable advertising failed:", err.Error())
	}
	d.state = StateAdvertising
	println("[bleuart] advertising as", d.DeviceName())
}

func (d *Driver) CentralConnected(h ConnHandle) {
	d.conn = h
	d.state = StateConnected
	var hex [8]byte
	println("[bleuart] central connected, handle 0x" + string(conv.U32Hex(hex[:], uint32(h))))
	// The application callback waits for the notify subscription.
}

func (d *Driver) CentralDisconnected(h ConnHandle) {
	if d.state != StateConnected {
		return
	}
	println("[bleuart] central disconnected")
	d.state = StateAdvertising
	d.subscribed = false
	d.conn = 0

	if d.connCb != nil {
		d.connCb(false)
	}

	// Re-arm so the next central can find us.
	if err := d.stack.EnableAdvertising(true); err != nil {
		println("[bleuart] re-enable advertising failed:", err.Error())
	}
}

// CharacteristicWrite tracks the TX client configuration descriptor and
// hands RX characteristic payloads to the application. The first
// notify-enable write fires the application "connected" callback.
func (d *Driver) CharacteristicWrite(h ConnHandle, attr Attr, data []byte) {
	if attr == AttrRXValue {
		if d.rxCb != nil && len(data) > 0 {
			d.rxCb(data)
		}
		return
	}
	if attr != AttrTXConfig || len(data) < 2 {
		return
	}
	cfg := uint16(data[0]) | uint16(data[1])<<8
	was := d.subscribed
	d.subscribed = cfg&0x0001 != 0

	if d.subscribed {
		println("[bleuart] notifications enabled")
	} else {
		println("[bleuart] notifications disabled")
	}
	if !was && d.subscribed && d.connCb != nil {
		d.connCb(true)
	}
}

// CharacteristicRead serves reads of the TX value from the outbound buffer.
func (d *Driver) CharacteristicRead(h ConnHandle, attr Attr, offset int, buf []byte) int {
	if attr != AttrTXValue || offset < 0 || offset >= d.msgLen {
		return 0
	}
	return copy(buf, d.msg[offset:d.msgLen])
}
