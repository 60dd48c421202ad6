package netx

// Addr is an IPv4 address in network byte order.
type Addr [4]byte

// MaxIPv4StringLen is the longest dotted-decimal form ("255.255.255.255").
const MaxIPv4StringLen = 15

// ParseIPv4 parses a dotted-decimal quad without allocating.
// Leading zeros are tolerated but each octet must fit in 0..255.
func ParseIPv4(s string) (Addr, bool) {
	var a Addr
	if len(s) == 0 || len(s) > MaxIPv4StringLen {
		return a, false
	}
	octet := 0
	digits := 0
	idx := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			octet = octet*10 + int(c-'0')
			digits++
			if digits > 3 || octet > 255 {
				return Addr{}, false
			}
		case c == '.':
			if digits == 0 || idx == 3 {
				return Addr{}, false
			}
			a[idx] = byte(octet)
			idx++
			octet, digits = 0, 0
		default:
			return Addr{}, false
		}
	}
	if digits == 0 || idx != 3 {
		return Addr{}, false
	}
	a[3] = byte(octet)
	return a, true
}

// String renders the address as dotted decimal.
func (a Addr) String() string {
	var buf [MaxIPv4StringLen]byte
	n := 0
	for i := 0; i < 4; i++ {
		if i > 0 {
			buf[n] = '.'
			n++
		}
		n += utoa(buf[n:], a[i])
	}
	return string(buf[:n])
}

func utoa(dst []byte, v byte) int {
	if v >= 100 {
		dst[0] = '0' + v/100
		dst[1] = '0' + (v/10)%10
		dst[2] = '0' + v%10
		return 3
	}
	if v >= 10 {
		dst[0] = '0' + v/10
		dst[1] = '0' + v%10
		return 2
	}
	dst[0] = '0' + v
	return 1
}
