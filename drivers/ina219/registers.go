// Package ina219 provides constants for register addresses and bitfields used
// in the operation of the INA219 current/power monitor.
package ina219

const (
	// 7-bit I2C address with A1=A0=GND.
	AddressDefault = 0x40

	// --- Register pointers (16-bit word registers, MSB first) ---

	regConfig      = 0x00 // R/W
	regShuntVolt   = 0x01 // R, signed, 10 µV/LSB
	regBusVolt     = 0x02 // R, value in bits 15:3, 4 mV/LSB
	regPower       = 0x03 // R, 20*currentLSB per count
	regCurrent     = 0x04 // R, signed, currentLSB per count
	regCalibration = 0x05 // R/W

	// --- CONFIG bits (0x00) ---

	cfgReset = 1 << 15

	// 32V bus range, /8 PGA (±320 mV), 12-bit conversions on both
	// channels, continuous shunt+bus mode.
	cfgDefault = 0x399F

	// --- BUS_VOLTAGE flag bits (0x02) ---

	busConvReady = 1 << 1
	busOverflow  = 1 << 0
)
