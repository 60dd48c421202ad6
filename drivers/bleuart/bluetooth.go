package bleuart

import (
	"tinygo.org/x/bluetooth"
)

// BluetoothStack backs the Stack boundary with tinygo.org/x/bluetooth,
// exposing the Nordic UART Service table. On the Pico the library's poll
// context serialises all callbacks; on hosts they arrive on the library's
// event goroutine, which is fine for demo wiring but not for anything that
// needs the strict single-thread model the driver assumes on-target.
type BluetoothStack struct {
	adapter *bluetooth.Adapter

	events Events
	adv    *bluetooth.Advertisement
	txChar bluetooth.Characteristic

	dev    bluetooth.Device
	handle ConnHandle
}

// Compile-time check that BluetoothStack implements Stack.
var _ Stack = (*BluetoothStack)(nil)

// NewBluetoothStack wraps the platform default adapter.
func NewBluetoothStack() *BluetoothStack {
	return &BluetoothStack{adapter: bluetooth.DefaultAdapter}
}

func (s *BluetoothStack) PowerOn(events Events) error {
	s.events = events

	if err := s.adapter.Enable(); err != nil {
		return err
	}

	err := s.adapter.AddService(&bluetooth.Service{
		UUID: bluetooth.ServiceUUIDNordicUART,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &s.txChar,
				UUID:   bluetooth.CharacteristicUUIDUARTTX,
				Flags:  bluetooth.CharacteristicNotifyPermission | bluetooth.CharacteristicReadPermission,
			},
			{
				UUID:  bluetooth.CharacteristicUUIDUARTRX,
				Flags: bluetooth.CharacteristicWritePermission | bluetooth.CharacteristicWriteWithoutResponsePermission,
				WriteEvent: func(client bluetooth.Connection, offset int, value []byte) {
					s.events.CharacteristicWrite(s.handle, AttrRXValue, value)
				},
			},
		},
	})
	if err != nil {
		return err
	}

	s.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if connected {
			s.dev = device
			s.handle++
			s.events.CentralConnected(s.handle)
			// The portable GATT server manages the CCCD internally and does
			// not surface subscribe writes, so a connected central is
			// reported as already subscribed.
			s.events.CharacteristicWrite(s.handle, AttrTXConfig, []byte{0x01, 0x00})
		} else {
			s.events.CentralDisconnected(s.handle)
		}
	})

	s.events.StackReady()
	return nil
}

func (s *BluetoothStack) SetAdvertisingData(adv, scanResp []byte) error {
	// The portable API builds the PDU itself; recover the name from the
	// driver-built payload and let the library place it.
	s.adv = s.adapter.DefaultAdvertisement()
	return s.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    localNameFromPayload(adv),
		ServiceUUIDs: []bluetooth.UUID{bluetooth.ServiceUUIDNordicUART},
	})
}

func (s *BluetoothStack) EnableAdvertising(on bool) error {
	if s.adv == nil {
		return nil
	}
	if on {
		return s.adv.Start()
	}
	return s.adv.Stop()
}

func (s *BluetoothStack) Notify(h ConnHandle, data []byte) error {
	_, err := s.txChar.Write(data)
	return err
}

func (s *BluetoothStack) Disconnect(h ConnHandle) error {
	return s.dev.Disconnect()
}

// localNameFromPayload walks the AD fields for a complete-local-name entry.
func localNameFromPayload(p []byte) string {
	for i := 0; i+1 < len(p); {
		l := int(p[i])
		if l == 0 || i+1+l > len(p) {
			break
		}
		if p[i+1] == adTypeCompleteLocalName {
			return string(p[i+2 : i+1+l])
		}
		i += 1 + l
	}
	return ""
}
