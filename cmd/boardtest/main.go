// cmd/boardtest/main.go
//
// boardtest exercises the indicator hardware without the service graph:
// each status pattern runs for a few seconds, bracketed by the intro and
// maintenance melodies. Flash it to verify wiring before a kit build.
//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"telemetrykit-go/drivers/pixel"
	"telemetrykit-go/drivers/speaker"
	"telemetrykit-go/services/indicator"
	"telemetrykit-go/status"
)

const (
	pixelPin   = machine.GP8
	speakerPin = machine.GP9
	pixelCount = 2
	brightness = 51

	dwell = 5 * time.Second
)

var sequence = []status.Status{
	status.None,
	status.NotReady,
	status.ReadyToSend,
	status.WaitingGNSS,
	status.Maintenance,
}

func main() {
	time.Sleep(2 * time.Second)
	println("boardtest: indicator exercise")

	strip := pixel.NewWS2812(pixelPin, pixelCount, brightness)
	spk, err := speaker.NewPWM(machine.PWM4, speakerPin)
	if err != nil {
		println("boardtest: speaker:", err.Error())
		return
	}

	cell := status.NewCell(nil)

	for _, name := range []string{"vanilla", "sensory"} {
		prof := indicator.ProfileByName(name)
		eng := indicator.New(cell, strip, spk, prof)

		println("boardtest: profile", name, "intro")
		eng.PlayIntro()

		ctx, cancel := context.WithCancel(context.Background())
		go eng.Run(ctx)

		for _, st := range sequence {
			println("boardtest:", name, st.String())
			cell.Set(st)
			time.Sleep(dwell)
		}

		cancel()
		time.Sleep(100 * time.Millisecond)

		println("boardtest: profile", name, "maintenance melody")
		eng.PlayMaintenance()
		time.Sleep(time.Second)
	}

	strip.Clear()
	strip.Show()
	println("boardtest: done")
	select {}
}
