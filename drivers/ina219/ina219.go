// Package ina219 provides a minimal TinyGo driver for the INA219 bidirectional
// current/power monitor.
//
// Design notes (datasheet references):
// • I2C, read/write word protocol; data-high then data-low (MSB first).
// • Default 7-bit address = 0b1000000.
// • Integer-only telemetry scaling: shunt 10 µV/LSB, bus 4 mV/LSB from
//   bits 15:3, current and power derived from the calibration register.
// • CAL = 0.04096 / (currentLSB * Rshunt), computed here in nA and mΩ so
//   no floating point is involved.
package ina219

import (
	"errors"

	"tinygo.org/x/drivers"

	"picolink-go/x/mathx"
)

// ---------------- Top level vars ----------------

var (
	ErrNotCalibrated = errors.New("calibration not set")
	ErrOverflow      = errors.New("power/current computation overflowed")
)

// ---------------- Types and configuration ----------------

type Config struct {
	Address uint16

	// ShuntMilliOhm is the external sense resistor. Zero keeps the driver
	// voltage-only: Current/Power readings return ErrNotCalibrated.
	ShuntMilliOhm uint32

	// MaxCurrentMicroAmp sets the expected full-scale current, from which
	// the current LSB is derived (full scale / 32767). Zero defaults to
	// 3.2767 A, giving the classic 100 µA/LSB.
	MaxCurrentMicroAmp uint32

	// ConfigWord overrides the CONFIG register; zero uses the continuous
	// 32V /8-PGA 12-bit default.
	ConfigWord uint16
}

type Device struct {
	i2c  drivers.I2C
	addr uint16

	cfgWord      uint16
	cal          uint16
	currentLSBnA uint32

	// Fixed buffers to avoid per-call heap allocations.
	w [3]byte
	r [2]byte
}

func New(i2c drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	word := cfg.ConfigWord
	if word == 0 {
		word = cfgDefault
	}
	d := &Device{i2c: i2c, addr: addr, cfgWord: word}
	if cfg.ShuntMilliOhm != 0 {
		maxUA := cfg.MaxCurrentMicroAmp
		if maxUA == 0 {
			maxUA = 3_276_700
		}
		d.currentLSBnA = uint32(mathx.RoundDiv(uint64(maxUA)*1000, 32767))
		// CAL = 0.04096 V / (lsb_A * R_Ω) = 4.096e10 / (lsb_nA * R_mΩ)
		cal := uint64(40_960_000_000) / (uint64(d.currentLSBnA) * uint64(cfg.ShuntMilliOhm))
		if cal > 0xFFFE {
			cal = 0xFFFE
		}
		d.cal = uint16(cal) &^ 1 // bit 0 is reserved, always 0
	}
	return d
}

// Configure writes the configuration and calibration registers. Must run
// once after power-up and again after any Reset.
func (d *Device) Configure() error {
	if err := d.writeWord(regConfig, d.cfgWord); err != nil {
		return err
	}
	if d.cal != 0 {
		return d.writeWord(regCalibration, d.cal)
	}
	return nil
}

// Present probes the device with a config read.
func (d *Device) Present() bool {
	_, err := d.readWord(regConfig)
	return err == nil
}

// Reset issues a software reset; all registers revert to power-on defaults,
// so Configure must follow.
func (d *Device) Reset() error {
	return d.writeWord(regConfig, cfgReset)
}

// ---------------- Telemetry (integer units) ----------------

func (d *Device) ShuntMicroVolts() (int32, error) {
	raw, err := d.readS16(regShuntVolt)
	if err != nil {
		return 0, err
	}
	return int32(raw) * 10, nil
}

func (d *Device) BusMilliVolts() (int32, error) {
	raw, err := d.readWord(regBusVolt)
	if err != nil {
		return 0, err
	}
	return int32(raw>>3) * 4, nil
}

// ConversionReady reports the CNVR flag; it clears on a power read.
func (d *Device) ConversionReady() (bool, error) {
	raw, err := d.readWord(regBusVolt)
	if err != nil {
		return false, err
	}
	return raw&busConvReady != 0, nil
}

func (d *Device) CurrentMicroAmps() (int32, error) {
	if d.cal == 0 {
		return 0, ErrNotCalibrated
	}
	if err := d.checkOverflow(); err != nil {
		return 0, err
	}
	raw, err := d.readS16(regCurrent)
	if err != nil {
		return 0, err
	}
	return int32(int64(raw) * int64(d.currentLSBnA) / 1000), nil
}

func (d *Device) PowerMicroWatts() (int32, error) {
	if d.cal == 0 {
		return 0, ErrNotCalibrated
	}
	raw, err := d.readWord(regPower)
	if err != nil {
		return 0, err
	}
	// Power LSB = 20 * current LSB.
	return int32(int64(raw) * 20 * int64(d.currentLSBnA) / 1000), nil
}

func (d *Device) checkOverflow() error {
	raw, err := d.readWord(regBusVolt)
	if err != nil {
		return err
	}
	if raw&busOverflow != 0 {
		return ErrOverflow
	}
	return nil
}

// BatteryPercent maps the bus voltage linearly onto empty..full, clamped
// to 0..100. A crude single-cell gauge, adequate for reporting over a
// telemetry link.
func BatteryPercent(busMV, emptyMV, fullMV int32) uint8 {
	if fullMV <= emptyMV || fullMV > 0xFFFF {
		return 0
	}
	mv := mathx.Clamp(busMV, emptyMV, fullMV)
	return uint8(mathx.MapU16(uint16(mv), uint16(emptyMV), uint16(fullMV), 0, 100))
}

// ---------------- I2C word protocol ----------------

func (d *Device) readWord(reg byte) (uint16, error) {
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:2]); err != nil {
		return 0, err
	}
	// Big-endian: HIGH then LOW.
	return uint16(d.r[0])<<8 | uint16(d.r[1]), nil
}

func (d *Device) readS16(reg byte) (int16, error) {
	u, err := d.readWord(reg)
	return int16(u), err
}

func (d *Device) writeWord(reg byte, val uint16) error {
	d.w[0] = reg
	d.w[1] = byte(val >> 8) // high
	d.w[2] = byte(val)      // low
	return d.i2c.Tx(d.addr, d.w[:3], nil)
}
