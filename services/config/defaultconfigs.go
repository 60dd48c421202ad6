package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPicoW = `{
  "ble": {
      "name": "picolink"
  },
  "telemetry": {
      "interval_ms": 5000,
      "battery_empty_mv": 3000,
      "battery_full_mv": 4200
  },
  "uplink": {
      "server_ip": "192.168.1.10",
      "server_port": 9000
  },
  "power": {
      "switch_pin": 22
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico-w": []byte(cfgPicoW),
}
