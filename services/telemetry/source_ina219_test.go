package telemetry

import (
	"testing"

	"tinygo.org/x/drivers"

	"picolink-go/drivers/ina219"
)

// Compile-time check.
var _ drivers.I2C = (*regFileI2C)(nil)

// Register-file fake with INA219 word layout (MSB first).
type regFileI2C struct {
	regs [6]uint16
}

func (f *regFileI2C) Tx(addr uint16, w, r []byte) error {
	if len(w) == 1 && len(r) == 2 {
		v := f.regs[w[0]]
		r[0] = byte(v >> 8)
		r[1] = byte(v)
		return nil
	}
	if len(w) == 3 {
		f.regs[w[0]] = uint16(w[1])<<8 | uint16(w[2])
		return nil
	}
	return nil
}

func TestINA219Source_FoldsChannels(t *testing.T) {
	f := &regFileI2C{}
	f.regs[2] = 900 << 3             // bus: 3600 mV
	f.regs[1] = 2500                 // shunt: 25000 µV
	f.regs[4] = 2500                 // current: 250000 µA at 100 µA/LSB
	f.regs[3] = 100                  // power: 200000 µW at 2 mW/LSB
	dev := ina219.New(f, ina219.Config{ShuntMilliOhm: 100, MaxCurrentMicroAmp: 3_276_700})

	src := &INA219Source{Dev: dev, EmptyMilliVolts: 3000, FullMilliVolts: 4200}
	s, err := src.Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if s.BusMilliVolts != 3600 || s.ShuntMicroVolts != 25_000 {
		t.Fatalf("voltages = %d mV / %d µV", s.BusMilliVolts, s.ShuntMicroVolts)
	}
	if s.CurrentMicroAmps != 250_000 || s.PowerMicroWatts != 200_000 {
		t.Fatalf("current/power = %d µA / %d µW", s.CurrentMicroAmps, s.PowerMicroWatts)
	}
	if s.BatteryPercent != 50 {
		t.Fatalf("battery = %d%%, want 50", s.BatteryPercent)
	}
}

func TestINA219Source_VoltageOnlyPart(t *testing.T) {
	f := &regFileI2C{}
	f.regs[2] = 1000 << 3 // 4000 mV
	dev := ina219.New(f, ina219.Config{})

	src := &INA219Source{Dev: dev}
	s, err := src.Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if s.BusMilliVolts != 4000 {
		t.Fatalf("bus = %d mV", s.BusMilliVolts)
	}
	if s.CurrentMicroAmps != 0 || s.PowerMicroWatts != 0 {
		t.Fatal("uncalibrated part reported current/power")
	}
	if s.BatteryPercent != 0 {
		t.Fatal("battery percent without a gauge window")
	}
}
