// ble-uart-demo advertises a Nordic UART Service peripheral and echoes
// every line a central writes back as a notification, prefixed "echo: ".
// Pair it with any NUS terminal app.
package main

import (
	"os"
	"time"

	"picolink-go/drivers/bleuart"
)

func main() {
	name := "picolink"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}

	ble := bleuart.New(bleuart.NewBluetoothStack())

	ble.SetConnectHandler(func(connected bool) {
		if connected {
			println("[demo] central subscribed")
		} else {
			println("[demo] central gone, advertising again")
		}
	})
	ble.SetReceiveHandler(func(data []byte) {
		println("[demo] rx:", string(data))
		if !ble.Send("echo: " + string(data)) {
			println("[demo] echo dropped, central not subscribed")
		}
	})

	if err := ble.Init(name); err != nil {
		println("[demo] init failed:", err.Error())
		os.Exit(1)
	}
	println("[demo] advertising as", ble.DeviceName())

	// Periodic heartbeat over the notify pipe while a central listens.
	tick := time.NewTicker(10 * time.Second)
	defer tick.Stop()
	for range tick.C {
		if ble.IsConnected() {
			ble.Send("tick")
		}
	}
}
