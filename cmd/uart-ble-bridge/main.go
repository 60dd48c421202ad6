//go:build rp2040

// uart-ble-bridge pipes UART0 traffic through the Nordic UART Service:
// bytes arriving on the wire go out as notifications, and central writes
// come back out of the UART. A transparent serial-over-BLE link.
package main

import (
	"context"
	"time"

	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"picolink-go/drivers/bleuart"
)

const (
	baud    = 115200
	txPin   = machine.GPIO0
	rxPin   = machine.GPIO1
	bleName = "pico-bridge"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[bridge] boot")

	hw := uartx.UART0
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       txPin,
		RX:       rxPin,
	}); err != nil {
		println("[bridge] uart configure failed:", err.Error())
		return
	}

	ble := bleuart.New(bleuart.NewBluetoothStack())
	ble.SetConnectHandler(func(connected bool) {
		if connected {
			println("[bridge] central subscribed, bridging")
		} else {
			println("[bridge] central gone")
		}
	})
	ble.SetReceiveHandler(func(data []byte) {
		if _, err := hw.Write(data); err != nil {
			println("[bridge] uart write failed:", err.Error())
		}
	})

	if err := ble.Init(bleName); err != nil {
		println("[bridge] ble init failed:", err.Error())
		return
	}

	// UART -> BLE. Reads block until at least one byte arrives; frames
	// are whatever the wire delivers, capped to one notify payload.
	ctx := context.Background()
	buf := make([]byte, bleuart.MaxMessageLen-1)
	for {
		n, err := hw.RecvSomeContext(ctx, buf)
		if err != nil {
			println("[bridge] uart read failed:", err.Error())
			continue
		}
		if n == 0 || !ble.IsConnected() {
			continue
		}
		if st := ble.TrySend(buf[:n]); st != bleuart.SendOK {
			println("[bridge] dropped", n, "bytes:", st.String())
		}
	}
}
