//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"

	"tinygo.org/x/drivers/tone"

	"telemetrykit-go/drivers/pixel"
	"telemetrykit-go/drivers/speaker"
	"telemetrykit-go/services/telemetry"
	"telemetrykit-go/services/watchdog"
	"telemetrykit-go/types"
)

// Held low at power-on to drop into maintenance mode.
const maintenancePin = machine.GP22

func newStrip(cfg types.IndicatorConfig) pixel.Strip {
	return pixel.NewWS2812(machine.Pin(cfg.PixelPin), cfg.PixelCount, cfg.Brightness)
}

func newBeeper(cfg types.IndicatorConfig) speaker.Beeper {
	pin := machine.Pin(cfg.SpeakerPin)
	spk, err := speaker.NewPWM(pwmForPin(pin), pin)
	if err != nil {
		println("Error: main: speaker:", err.Error())
		return speaker.Mute{}
	}
	return spk
}

// pwmForPin returns the PWM slice owning pin; on RP2 each slice serves two
// consecutive pins.
func pwmForPin(pin machine.Pin) tone.PWM {
	switch (uint8(pin) / 2) % 8 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

func newWatchdogHardware() watchdog.Hardware {
	return watchdog.ChipWatchdog{}
}

func newEnvProbe(cfg types.TelemetryConfig) (telemetry.EnvProbe, error) {
	return telemetry.NewEnvProbe(cfg)
}

func startGNSS(ctx context.Context, cfg types.TelemetryConfig, tr *telemetry.Tracker) error {
	return telemetry.StartGNSS(ctx, cfg, tr)
}

func maintenanceRequested() bool {
	maintenancePin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return !maintenancePin.Get()
}
