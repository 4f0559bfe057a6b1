//go:build !rp2040 && !rp2350

package main

import (
	"context"
	"io"
	"net"
	"os"

	"telemetrykit-go/drivers/pixel"
	"telemetrykit-go/drivers/speaker"
	"telemetrykit-go/services/telemetry"
	"telemetrykit-go/services/uplink"
	"telemetrykit-go/services/watchdog"
	"telemetrykit-go/types"
)

// The host has no UART; the uplink talks to an in-process peer that answers
// pings and swallows everything else, so the link comes up and the full
// status flow can be watched from a desk.
func init() {
	uplink.RegisterDial("uart", func(ctx context.Context, _ types.UplinkConfig) (io.ReadWriteCloser, error) {
		local, remote := net.Pipe()
		go hostPeer(ctx, remote)
		return local, nil
	})
}

func hostPeer(ctx context.Context, rwc io.ReadWriteCloser) {
	defer rwc.Close()
	rd := uplink.NewFrameReader(rwc)
	wr := uplink.NewFrameWriter(rwc)
	for ctx.Err() == nil {
		f, err := rd.ReadFrame()
		if err != nil {
			return
		}
		switch f.Type {
		case uplink.FramePing:
			if err := wr.WriteFrame(uplink.Frame{Type: uplink.FramePong}); err != nil {
				return
			}
		case uplink.FrameClose:
			return
		}
	}
}

// Host build runs the full service graph against recorders so the firmware
// can be exercised without a board attached.

func newStrip(cfg types.IndicatorConfig) pixel.Strip {
	return pixel.NewRecorder(cfg.PixelCount, cfg.Brightness)
}

func newBeeper(types.IndicatorConfig) speaker.Beeper {
	return speaker.NewRecorder()
}

func newWatchdogHardware() watchdog.Hardware {
	return &watchdog.FakeWatchdog{}
}

func newEnvProbe(types.TelemetryConfig) (telemetry.EnvProbe, error) {
	return stubEnv{}, nil
}

type stubEnv struct{}

func (stubEnv) Sample(context.Context) (telemetry.EnvSample, error) {
	return telemetry.EnvSample{
		Temperature: types.TemperatureValue{DeciC: 210},
		Humidity:    types.HumidityValue{RHx100: 5000},
		Pressure:    types.PressureValue{DecihPa: 10132},
		HasPressure: true,
	}, nil
}

func startGNSS(_ context.Context, _ types.TelemetryConfig, tr *telemetry.Tracker) error {
	// Pretend the receiver locks immediately.
	tr.Update(types.PositionValue{LatUDeg: 51_477_900, LonUDeg: -1_500, AltM: 46, Sats: 9}, true)
	return nil
}

func maintenanceRequested() bool {
	return os.Getenv("KIT_MAINTENANCE") == "1"
}
