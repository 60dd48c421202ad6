package ina219

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeI2C)(nil)

// Register-file fake.
type fakeI2C struct {
	regs   [6]uint16
	failTx bool
	writes []struct {
		reg byte
		val uint16
	}
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if f.failTx {
		return errors.New("nak")
	}
	// Pointer write + word read.
	if len(w) == 1 && len(r) == 2 {
		v := f.regs[w[0]]
		r[0] = byte(v >> 8)
		r[1] = byte(v)
		return nil
	}
	// Word write.
	if len(w) == 3 && len(r) == 0 {
		v := uint16(w[1])<<8 | uint16(w[2])
		f.regs[w[0]] = v
		f.writes = append(f.writes, struct {
			reg byte
			val uint16
		}{w[0], v})
		return nil
	}
	return errors.New("unexpected transaction shape")
}

func newCalibrated(f *fakeI2C) *Device {
	// 100 mΩ shunt at 3.2767 A full scale: 100 µA/LSB, CAL 4096.
	return New(f, Config{ShuntMilliOhm: 100, MaxCurrentMicroAmp: 3_276_700})
}

func TestCalibrationValue(t *testing.T) {
	f := &fakeI2C{}
	d := newCalibrated(f)
	if d.currentLSBnA != 100_000 {
		t.Fatalf("current LSB = %d nA, want 100000", d.currentLSBnA)
	}
	if d.cal != 4096 {
		t.Fatalf("cal = %d, want 4096", d.cal)
	}

	if err := d.Configure(); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if len(f.writes) != 2 {
		t.Fatalf("writes = %d, want config + calibration", len(f.writes))
	}
	if f.writes[0].reg != regConfig || f.writes[0].val != cfgDefault {
		t.Errorf("config write = %#x to reg %#x", f.writes[0].val, f.writes[0].reg)
	}
	if f.writes[1].reg != regCalibration || f.writes[1].val != 4096 {
		t.Errorf("calibration write = %#x to reg %#x", f.writes[1].val, f.writes[1].reg)
	}
}

func TestVoltageScaling(t *testing.T) {
	f := &fakeI2C{}
	d := New(f, Config{})

	// +32.00 mV across the shunt: 3200 counts at 10 µV/LSB.
	f.regs[regShuntVolt] = 3200
	uv, err := d.ShuntMicroVolts()
	if err != nil || uv != 32_000 {
		t.Errorf("shunt = %d µV (%v), want 32000", uv, err)
	}

	// Negative shunt voltage comes back in two's complement.
	negShunt := int16(-1500)
	f.regs[regShuntVolt] = uint16(negShunt)
	uv, err = d.ShuntMicroVolts()
	if err != nil || uv != -15_000 {
		t.Errorf("shunt = %d µV (%v), want -15000", uv, err)
	}

	// 12.0 V bus: 3000 counts at 4 mV/LSB, shifted into bits 15:3.
	f.regs[regBusVolt] = 3000 << 3
	mv, err := d.BusMilliVolts()
	if err != nil || mv != 12_000 {
		t.Errorf("bus = %d mV (%v), want 12000", mv, err)
	}

	// Flag bits must not leak into the value.
	f.regs[regBusVolt] = 3000<<3 | busConvReady | busOverflow
	mv, _ = d.BusMilliVolts()
	if mv != 12_000 {
		t.Errorf("bus with flags = %d mV, want 12000", mv)
	}
}

func TestCurrentAndPowerScaling(t *testing.T) {
	f := &fakeI2C{}
	d := newCalibrated(f)

	// 1.0 A at 100 µA/LSB.
	f.regs[regCurrent] = 10_000
	ua, err := d.CurrentMicroAmps()
	if err != nil || ua != 1_000_000 {
		t.Errorf("current = %d µA (%v), want 1000000", ua, err)
	}

	// Discharge direction.
	negCurrent := int16(-5000)
	f.regs[regCurrent] = uint16(negCurrent)
	ua, err = d.CurrentMicroAmps()
	if err != nil || ua != -500_000 {
		t.Errorf("current = %d µA (%v), want -500000", ua, err)
	}

	// 2000 counts at 20*100 µA... power LSB is 2 mW here.
	f.regs[regPower] = 2000
	uw, err := d.PowerMicroWatts()
	if err != nil || uw != 4_000_000 {
		t.Errorf("power = %d µW (%v), want 4000000", uw, err)
	}
}

func TestUncalibratedReadings(t *testing.T) {
	f := &fakeI2C{}
	d := New(f, Config{}) // no shunt configured

	if _, err := d.CurrentMicroAmps(); err != ErrNotCalibrated {
		t.Errorf("current err = %v, want ErrNotCalibrated", err)
	}
	if _, err := d.PowerMicroWatts(); err != ErrNotCalibrated {
		t.Errorf("power err = %v, want ErrNotCalibrated", err)
	}
	// Voltage channels stay available.
	if _, err := d.BusMilliVolts(); err != nil {
		t.Errorf("bus err = %v", err)
	}
}

func TestOverflowFlag(t *testing.T) {
	f := &fakeI2C{}
	d := newCalibrated(f)
	f.regs[regBusVolt] = busOverflow
	if _, err := d.CurrentMicroAmps(); err != ErrOverflow {
		t.Errorf("err = %v, want ErrOverflow", err)
	}
}

func TestPresentAndReset(t *testing.T) {
	f := &fakeI2C{}
	d := New(f, Config{})
	if !d.Present() {
		t.Error("Present = false on a responsive bus")
	}
	f.failTx = true
	if d.Present() {
		t.Error("Present = true on a dead bus")
	}

	f.failTx = false
	if err := d.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	last := f.writes[len(f.writes)-1]
	if last.reg != regConfig || last.val != cfgReset {
		t.Errorf("reset write = %#x to reg %#x", last.val, last.reg)
	}
}

func TestBatteryPercent(t *testing.T) {
	cases := []struct {
		bus, empty, full int32
		want             uint8
	}{
		{3000, 3000, 4200, 0},
		{4200, 3000, 4200, 100},
		{3600, 3000, 4200, 50},
		{2500, 3000, 4200, 0},   // below empty clamps
		{5000, 3000, 4200, 100}, // above full clamps
		{3600, 4200, 3000, 0},   // inverted window
	}
	for _, c := range cases {
		if got := BatteryPercent(c.bus, c.empty, c.full); got != c.want {
			t.Errorf("BatteryPercent(%d, %d, %d) = %d, want %d", c.bus, c.empty, c.full, got, c.want)
		}
	}
}
