// drivers/pixel/ws2812_rp2.go
//go:build rp2040 || rp2350

package pixel

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// WS2812 drives a NeoPixel strip on a single GPIO.
type WS2812 struct {
	*Buffer
	dev ws2812.Device
}

func NewWS2812(pin machine.Pin, count int, brightness uint8) *WS2812 {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &WS2812{
		Buffer: NewBuffer(count, brightness),
		dev:    ws2812.NewWS2812(pin),
	}
}

func (s *WS2812) Show() error {
	return s.dev.WriteColors(s.Scaled())
}
