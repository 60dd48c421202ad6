// Package powerswitch drives a high-side load switch through one GPIO.
// The default polarity assumes a P-channel MOSFET with a pull-up on the
// gate: driving the pin low turns the load on, so the load stays off
// through reset while the pin is still an input.
package powerswitch

import (
	"picolink-go/errcode"
	"picolink-go/types"
)

type Config struct {
	// ActiveHigh inverts the default gate-low-is-on polarity, for N-channel
	// low-side or logic-level enable pins.
	ActiveHigh bool

	// InitialOn powers the load as part of Init.
	InitialOn bool
}

type Driver struct {
	pin        types.GPIOPin
	activeHigh bool
	on         bool
	ready      bool
}

func New(pin types.GPIOPin, cfg Config) *Driver {
	return &Driver{pin: pin, activeHigh: cfg.ActiveHigh, on: cfg.InitialOn}
}

// Init claims the pin as an output at the configured initial state.
func (d *Driver) Init() error {
	if d == nil || d.pin == nil {
		return errcode.InvalidParams
	}
	if err := d.pin.ConfigureOutput(d.level(d.on)); err != nil {
		println("[powerswitch] pin", d.pin.Number(), "configure failed:", err.Error())
		return errcode.Error
	}
	d.ready = true
	println("[powerswitch] pin", d.pin.Number(), "ready, on =", d.on)
	return nil
}

// Enable powers the load. changed is false when it was already on.
func (d *Driver) Enable() (changed bool, err error) { return d.set(true) }

// Disable cuts the load. changed is false when it was already off.
func (d *Driver) Disable() (changed bool, err error) { return d.set(false) }

func (d *Driver) Toggle() error {
	if d == nil || !d.ready {
		return errcode.NotInitialized
	}
	_, err := d.set(!d.on)
	return err
}

// IsEnabled reports the commanded state, not a readback of the gate.
func (d *Driver) IsEnabled() bool { return d != nil && d.on }

func (d *Driver) set(on bool) (bool, error) {
	if d == nil || !d.ready {
		return false, errcode.NotInitialized
	}
	if d.on == on {
		return false, nil
	}
	d.pin.Set(d.level(on))
	d.on = on
	return true, nil
}

// level translates the logical state into the gate level.
func (d *Driver) level(on bool) bool {
	if d.activeHigh {
		return on
	}
	return !on
}
