// Package uplink moves device data off the board. Telemetry samples stream
// over the BLE link whenever a central is subscribed, and bus peers can
// request a one-shot TCP push of an arbitrary payload.
package uplink

import (
	"context"

	"picolink-go/bus"
	"picolink-go/drivers/tcpclient"
	"picolink-go/types"
	"picolink-go/x/fmtx"
	"picolink-go/x/timex"
)

var (
	topicTelemetry = bus.T("telemetry", "#")
	topicPush      = bus.T("uplink", "control", "push")
	topicLinkBLE   = bus.T("link", "ble")
)

// BLESender is the notify-capable side of the BLE UART driver.
type BLESender interface {
	IsConnected() bool
	Send(s string) bool
}

// TCPSender performs one request/response exchange.
type TCPSender interface {
	SendText(s string) (tcpclient.Response, error)
}

type Service struct {
	ble BLESender
	tcp TCPSender

	conn *bus.Connection // set by Start
}

func New(ble BLESender, tcp TCPSender) *Service {
	return &Service{ble: ble, tcp: tcp}
}

// OnBLEState publishes the retained BLE link state. Wire it to the BLE
// driver's connection callback; it is safe to call before Start.
func (s *Service) OnBLEState(connected bool) {
	if s.conn == nil {
		return
	}
	st := types.LinkState{Link: types.LinkDown, TS: timex.NowMs()}
	if connected {
		st.Link = types.LinkUp
	}
	s.conn.Publish(s.conn.NewMessage(topicLinkBLE, st, true))
}

func (s *Service) serviceLoop(ctx context.Context) {
	telSub := s.conn.Subscribe(topicTelemetry)
	defer s.conn.Unsubscribe(telSub)
	pushSub := s.conn.Subscribe(topicPush)
	defer s.conn.Unsubscribe(pushSub)

	for {
		select {
		case <-ctx.Done():
			println("Info: uplink service stopping")
			return
		case msg := <-telSub.Channel():
			s.forwardTelemetry(msg)
		case msg := <-pushSub.Channel():
			s.handlePush(msg)
		}
	}
}

// forwardTelemetry streams a sample over BLE when a central is listening.
// Samples with no listener are dropped, not queued; the retained bus copy
// already serves late consumers.
func (s *Service) forwardTelemetry(msg *bus.Message) {
	if s.ble == nil || !s.ble.IsConnected() {
		return
	}
	line, ok := encodePayload(msg.Payload)
	if !ok {
		return
	}
	if !s.ble.Send(line) {
		println("Warn: uplink BLE send failed")
	}
}

func (s *Service) handlePush(msg *bus.Message) {
	data, ok := pushData(msg.Payload)
	if !ok || data == "" {
		s.reply(msg, types.ErrorReply{Error: "invalid_payload"})
		return
	}
	if s.tcp == nil {
		s.reply(msg, types.ErrorReply{Error: "no_transport"})
		return
	}
	resp, err := s.tcp.SendText(data)
	if err != nil {
		s.reply(msg, types.ErrorReply{Error: tcpclient.ErrorString(resp.Code)})
		return
	}
	if !resp.Success {
		s.reply(msg, types.ErrorReply{Error: tcpclient.ErrorString(resp.Code)})
		return
	}
	s.reply(msg, types.OKReply{OK: true})
}

func (s *Service) reply(msg *bus.Message, payload any) {
	if len(msg.ReplyTo) == 0 {
		return
	}
	s.conn.Publish(s.conn.NewMessage(msg.ReplyTo, payload, false))
}

// encodePayload renders a bus payload as one line of JSON text for the
// notify pipe. Only the payload shapes the services publish are handled.
func encodePayload(payload any) (string, bool) {
	switch v := payload.(type) {
	case types.PowerSample:
		return fmtx.Sprintf(
			`{"bus_mv":%d,"shunt_uv":%d,"current_ua":%d,"power_uw":%d,"battery_pct":%d,"ts_ms":%d}`,
			v.BusMilliVolts, v.ShuntMicroVolts, v.CurrentMicroAmps,
			v.PowerMicroWatts, v.BatteryPercent, v.TS), true
	case string:
		return v, true
	default:
		return "", false
	}
}

// pushData accepts either a bare string or a {"data": "..."} object.
func pushData(payload any) (string, bool) {
	switch v := payload.(type) {
	case string:
		return v, true
	case map[string]any:
		d, ok := v["data"].(string)
		return d, ok
	default:
		return "", false
	}
}

// Start launches the uplink loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	s.conn = conn
	go s.serviceLoop(ctx)
	return nil
}
