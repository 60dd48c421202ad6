package bleuart

// Advertising data field types (Bluetooth Core Supplement, Part A).
const (
	adTypeFlags             = 0x01
	adTypeCompleteLocalName = 0x09

	// LE General Discoverable Mode, BR/EDR not supported.
	advFlagsValue = 0x06
)

// buildAdvPayload assembles the advertising payload into dst: a fixed
// 3-byte flags field, then the complete local name if it fits. Returns the
// payload length. dst must be AdvPayloadMax bytes; a name that would push
// the payload past the PDU limit is omitted entirely rather than clipped.
func buildAdvPayload(dst []byte, name []byte) int {
	n := 0
	dst[n] = 2 // field length
	dst[n+1] = adTypeFlags
	dst[n+2] = advFlagsValue
	n += 3

	if len(name) > 0 && n+2+len(name) <= len(dst) {
		dst[n] = byte(len(name) + 1)
		dst[n+1] = adTypeCompleteLocalName
		copy(dst[n+2:], name)
		n += 2 + len(name)
	}
	return n
}
