package bleuart

// ConnHandle is an opaque per-connection identifier supplied by the stack.
// It is only meaningful while a central is connected.
type ConnHandle uint16

// Attr identifies the GATT attributes of the UART service without exposing
// stack-specific ATT handles.
type Attr uint8

const (
	AttrTXValue  Attr = iota // notify-value attribute (device -> central)
	AttrTXConfig             // client characteristic configuration descriptor
	AttrRXValue              // write-value attribute (central -> device)
)

// Stack is the host radio/GATT boundary consumed by the driver.
// Implementations register the driver's Events sink during PowerOn and
// invoke it from their poll loop; the driver never blocks on the stack.
type Stack interface {
	// PowerOn initialises the radio layers and registers the event sink.
	// The stack must deliver StackReady once the radio is operational.
	PowerOn(events Events) error
	// SetAdvertisingData installs the advertising payload and its
	// scan-response mirror. Both are at most 31 bytes.
	SetAdvertisingData(adv, scanResp []byte) error
	// EnableAdvertising turns connectable advertising on or off.
	EnableAdvertising(on bool) error
	// Notify pushes a value change on the TX characteristic.
	Notify(h ConnHandle, data []byte) error
	// Disconnect drops the given connection.
	Disconnect(h ConnHandle) error
}

// Events is the driver surface the stack calls into. All invocations happen
// on the host's single poll thread; there is no internal locking.
type Events interface {
	StackReady()
	CentralConnected(h ConnHandle)
	CentralDisconnected(h ConnHandle)
	CharacteristicWrite(h ConnHandle, attr Attr, data []byte)
	// CharacteristicRead fills buf from the attribute value at offset and
	// returns the number of bytes written.
	CharacteristicRead(h ConnHandle, attr Attr, offset int, buf []byte) int
}
