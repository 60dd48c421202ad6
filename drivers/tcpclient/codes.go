package tcpclient

// Code is the stable result code of a request. Failures are negative and
// implement error so they can travel both as return values and over the bus.
type Code int

const (
	CodeOK                Code = 0
	CodeWifiNotReady      Code = -1 // link layer not associated
	CodeInvalidArgument   Code = -2
	CodeResourceExhausted Code = -3 // no transport handle available
	CodeConnectFailed     Code = -4 // connect rejected synchronously
	CodeConnectTimeout    Code = -5
	CodeSendFailed        Code = -6
	CodeResponseTimeout   Code = -7
	CodeReceiveFailed     Code = -8 // exchange completed, accept heuristic unmatched
)

func (c Code) Error() string { return ErrorString(c) }

// ErrorString maps a result code to human-readable text.
func ErrorString(c Code) string {
	switch c {
	case CodeOK:
		return "success"
	case CodeWifiNotReady:
		return "wifi not ready"
	case CodeInvalidArgument:
		return "invalid arguments"
	case CodeResourceExhausted:
		return "no transport available"
	case CodeConnectFailed:
		return "connect initiation failed"
	case CodeConnectTimeout:
		return "connect timeout"
	case CodeSendFailed:
		return "send failed"
	case CodeResponseTimeout:
		return "response timeout"
	case CodeReceiveFailed:
		return "receive failed"
	default:
		return "unknown error"
	}
}
