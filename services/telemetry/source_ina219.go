package telemetry

import (
	"picolink-go/drivers/ina219"
	"picolink-go/types"
)

// INA219Source adapts the power-monitor driver to the Source boundary,
// folding the four channel reads into one sample.
type INA219Source struct {
	Dev *ina219.Device

	// Battery gauge window; both zero disables the percentage.
	EmptyMilliVolts int32
	FullMilliVolts  int32
}

func (s *INA219Source) Sample() (types.PowerSample, error) {
	var out types.PowerSample

	bus, err := s.Dev.BusMilliVolts()
	if err != nil {
		return out, err
	}
	shunt, err := s.Dev.ShuntMicroVolts()
	if err != nil {
		return out, err
	}
	out.BusMilliVolts = bus
	out.ShuntMicroVolts = shunt

	// Current and power stay zero on a voltage-only (uncalibrated) part.
	if ua, err := s.Dev.CurrentMicroAmps(); err == nil {
		out.CurrentMicroAmps = ua
	}
	if uw, err := s.Dev.PowerMicroWatts(); err == nil {
		out.PowerMicroWatts = uw
	}

	if s.FullMilliVolts > s.EmptyMilliVolts {
		out.BatteryPercent = ina219.BatteryPercent(bus, s.EmptyMilliVolts, s.FullMilliVolts)
	}
	return out, nil
}
