package main

import (
	"context"
	"time"

	"picolink-go/bus"
	"picolink-go/drivers/tcpclient"
	"picolink-go/services/config"
	"picolink-go/services/telemetry"
	"picolink-go/services/uplink"
	"picolink-go/types"
	"picolink-go/x/fmtx"
	"picolink-go/x/strx"
)

// rampSource fakes a discharging battery for bench runs without the power
// monitor attached.
type rampSource struct {
	mv int32
}

func (r *rampSource) Sample() (types.PowerSample, error) {
	if r.mv == 0 || r.mv < 3000 {
		r.mv = 4200
	}
	r.mv -= 10
	return types.PowerSample{
		BusMilliVolts:  r.mv,
		BatteryPercent: uint8((r.mv - 3000) / 12),
	}, nil
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico-w")
	b := bus.NewBus(4, "+", "#")

	println("[main] starting config service")
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	// Wait for the retained uplink section before building the TCP client.
	ui := b.NewConnection("ui")
	cfgSub := ui.Subscribe(bus.T("config", "uplink"))
	var tcp uplink.TCPSender
	select {
	case m := <-cfgSub.Channel():
		if c, ok := m.Payload.(map[string]any); ok {
			ip, _ := c["server_ip"].(string)
			port, _ := c["server_port"].(float64)
			client, err := tcpclient.New(tcpclient.NewHostStack(), tcpclient.Config{
				ServerIP:   strx.Coalesce(ip, "127.0.0.1"),
				ServerPort: uint16(port),
				Status:     func(msg string) { println("[tcp]", msg) },
			})
			if err != nil {
				println("[main] tcp client unavailable:", err.Error())
			} else {
				tcp = client
			}
		}
	case <-time.After(2 * time.Second):
		println("[main] no uplink config, TCP push disabled")
	}
	ui.Unsubscribe(cfgSub)

	println("[main] starting telemetry service")
	tel := telemetry.New(&rampSource{})
	_ = tel.Start(ctx, b.NewConnection("telemetry"))

	println("[main] starting uplink service")
	up := uplink.New(nil, tcp)
	_ = up.Start(ctx, b.NewConnection("uplink"))

	// Diagnostics: mirror telemetry and link state to the console.
	mon := ui.Subscribe(bus.T("telemetry", "#"))
	links := ui.Subscribe(bus.T("link", "#"))
	for {
		select {
		case m := <-mon.Channel():
			if s, ok := m.Payload.(types.PowerSample); ok {
				println(fmtx.Sprintf("[monitor] %d mV, %d%%", s.BusMilliVolts, s.BatteryPercent))
			}
		case m := <-links.Channel():
			if st, ok := m.Payload.(types.LinkState); ok {
				println("[monitor] link:", string(st.Link))
			}
		}
	}
}
