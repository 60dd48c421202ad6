// Package telemetry samples the power monitor on a configurable interval
// and publishes each reading retained on telemetry/power, so late
// subscribers always see the most recent sample.
package telemetry

import (
	"context"
	"time"

	"picolink-go/bus"
	"picolink-go/types"
	"picolink-go/x/timex"
)

const (
	DefaultIntervalMs = 5000
	MinIntervalMs     = 100
)

var (
	topicConfig = bus.T("config", "telemetry")
	topicPower  = bus.T("telemetry", "power")
)

// Source produces one power reading per call. The INA219 adaptor is the
// production implementation; tests script their own.
type Source interface {
	Sample() (types.PowerSample, error)
}

type Service struct {
	src        Source
	intervalMs uint32
}

func New(src Source) *Service {
	return &Service{src: src, intervalMs: DefaultIntervalMs}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(time.Duration(s.intervalMs) * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: telemetry service stopping")
			return
		case <-tick.C:
			s.sampleAndPublish(conn)
		case msg := <-cfgSub.Channel():
			if ms, ok := intervalFromConfig(msg.Payload); ok && ms != s.intervalMs {
				s.intervalMs = ms
				tick.Reset(time.Duration(ms) * time.Millisecond)
				println("Info: telemetry interval set to", ms, "ms")
			}
		}
	}
}

func (s *Service) sampleAndPublish(conn *bus.Connection) {
	sample, err := s.src.Sample()
	if err != nil {
		println("Warn: telemetry sample failed:", err.Error())
		return
	}
	sample.TS = timex.NowMs()
	conn.Publish(conn.NewMessage(topicPower, sample, true))
}

// intervalFromConfig pulls interval_ms out of a config section payload,
// clamping to the minimum.
func intervalFromConfig(payload any) (uint32, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	iv, ok := m["interval_ms"]
	if !ok {
		return 0, false
	}
	f, ok := iv.(float64)
	if !ok || f <= 0 {
		return 0, false
	}
	ms := uint32(f)
	if ms < MinIntervalMs {
		ms = MinIntervalMs
	}
	return ms, true
}

// Start launches the telemetry loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
