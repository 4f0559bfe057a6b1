package main

import (
	"context"
	"time"

	"telemetrykit-go/bus"
	"telemetrykit-go/errcode"
	"telemetrykit-go/services/config"
	"telemetrykit-go/services/indicator"
	"telemetrykit-go/services/maintenance"
	"telemetrykit-go/services/telemetry"
	"telemetrykit-go/services/uplink"
	"telemetrykit-go/services/watchdog"
	"telemetrykit-go/status"
	"telemetrykit-go/types"
	"telemetrykit-go/x/timex"
)

// deviceID selects the embedded config profile. Override at link time with
// -ldflags "-X main.deviceID=kit-sensory".
var deviceID = "kit-vanilla"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("Info: telemetry kit starting, profile", deviceID)

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)

	b := bus.New(8)
	config.NewService().Start(ctx, b.NewConnection("config"))

	// Our own sections come from retained messages, so subscribing after
	// the publisher ran is fine too.
	boot := b.NewConnection("main")
	indCfg := waitIndicatorConfig(ctx, boot)
	telCfg := waitTelemetryConfig(ctx, boot)

	strip := newStrip(indCfg)
	spk := newBeeper(indCfg)

	cell := status.NewCell(b.NewConnection("status"))
	eng := indicator.New(cell, strip, spk, indicator.ProfileByName(indCfg.Profile))

	eng.PlayIntro()

	if err := watchdog.New(b.NewConnection("watchdog"), newWatchdogHardware()).Start(ctx); err != nil {
		println("Error: main: watchdog:", err.Error())
	}

	go eng.Run(ctx)

	if maintenanceRequested() {
		maintenance.Enter(ctx, b.NewConnection("maintenance"), cell, eng)
		return
	}

	cell.Set(status.NotReady)

	tracker := telemetry.NewTracker(timex.Ms(telCfg.FreshMaxMS, 10*time.Second))
	if err := startGNSS(ctx, telCfg, tracker); err != nil {
		println("Error: main: gnss:", err.Error())
	}

	env, err := newEnvProbe(telCfg)
	if err != nil {
		println("Error: main: env probe:", err.Error())
		env = noEnv{}
	}

	telemetry.New(b.NewConnection("telemetry"), cell, env, tracker).Start(ctx)
	uplink.Start(ctx, b.NewConnection("uplink"))

	// Park here: a "command/maintenance" from the gateway flips the
	// device into maintenance mode at runtime.
	maintenance.Watch(ctx, b.NewConnection("maintenance"), cell, eng)
}

func waitIndicatorConfig(ctx context.Context, conn *bus.Connection) types.IndicatorConfig {
	sub := conn.Subscribe(bus.T("config", "indicator"))
	defer conn.Unsubscribe(sub)
	for {
		select {
		case msg := <-sub.Channel():
			if c, ok := config.DecodeIndicator(msg.Payload); ok {
				return c
			}
		case <-ctx.Done():
			return types.IndicatorConfig{}
		}
	}
}

func waitTelemetryConfig(ctx context.Context, conn *bus.Connection) types.TelemetryConfig {
	sub := conn.Subscribe(bus.T("config", "telemetry"))
	defer conn.Unsubscribe(sub)
	for {
		select {
		case msg := <-sub.Channel():
			if c, ok := config.DecodeTelemetry(msg.Payload); ok {
				return c
			}
		case <-ctx.Done():
			return types.TelemetryConfig{}
		}
	}
}

// noEnv keeps the poll loop alive when the sensor is absent or broken.
type noEnv struct{}

func (noEnv) Sample(context.Context) (telemetry.EnvSample, error) {
	return telemetry.EnvSample{}, &errcode.E{C: errcode.SensorFault, Op: "main", Msg: "no environment sensor"}
}
