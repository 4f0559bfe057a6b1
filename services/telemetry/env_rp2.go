// services/telemetry/env_rp2.go
//go:build rp2040 || rp2350

package telemetry

import (
	"context"
	"machine"

	"tinygo.org/x/drivers/bme280"
	"tinygo.org/x/drivers/sht4x"

	"telemetrykit-go/drivers/aht20"
	"telemetrykit-go/errcode"
	"telemetrykit-go/types"
)

// NewEnvProbe configures the I2C bus named in the config and wraps the
// requested sensor behind the portable EnvProbe seam.
func NewEnvProbe(cfg types.TelemetryConfig) (EnvProbe, error) {
	const op = "telemetry.NewEnvProbe"

	i2c := machine.I2C0
	if cfg.EnvBus == "i2c1" {
		i2c = machine.I2C1
	}
	if err := i2c.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz}); err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: op, Err: err}
	}

	switch cfg.EnvSensor {
	case "", "bme280":
		d := bme280.New(i2c)
		d.Configure()
		if !d.Connected() {
			return nil, &errcode.E{C: errcode.SensorFault, Op: op, Msg: "bme280 not responding"}
		}
		return &bme280Probe{device: &d}, nil
	case "sht4x":
		d := sht4x.New(i2c)
		return &sht4xProbe{device: &d}, nil
	case "aht20":
		d := aht20.New(i2c)
		d.Configure()
		return &aht20Probe{device: &d}, nil
	default:
		return nil, &errcode.E{C: errcode.Unsupported, Op: op, Msg: "env sensor " + cfg.EnvSensor}
	}
}

type bme280Probe struct {
	device *bme280.Device
}

func (p *bme280Probe) Sample(_ context.Context) (EnvSample, error) {
	t, err := p.device.ReadTemperature() // milli-degrees C
	if err != nil {
		return EnvSample{}, err
	}
	h, err := p.device.ReadHumidity() // hundredths of a percent
	if err != nil {
		return EnvSample{}, err
	}
	pr, err := p.device.ReadPressure() // milli-pascals
	if err != nil {
		return EnvSample{}, err
	}
	return EnvSample{
		Temperature: types.TemperatureValue{DeciC: int16(t / 100)},
		Humidity:    types.HumidityValue{RHx100: uint16(h)},
		Pressure:    types.PressureValue{DecihPa: uint32(pr / 10000)},
		HasPressure: true,
	}, nil
}

type aht20Probe struct {
	device *aht20.Device
}

func (p *aht20Probe) Sample(_ context.Context) (EnvSample, error) {
	var s aht20.Sample
	if err := p.device.Read(&s); err != nil {
		return EnvSample{}, err
	}
	return EnvSample{
		Temperature: types.TemperatureValue{DeciC: int16(s.DeciCelsius())},
		Humidity:    types.HumidityValue{RHx100: uint16(s.CentiRelHumidity())},
	}, nil
}

type sht4xProbe struct {
	device *sht4x.Device
}

func (p *sht4xProbe) Sample(_ context.Context) (EnvSample, error) {
	t, rh, err := p.device.ReadTemperatureHumidity() // milli-C, milli-percent
	if err != nil {
		return EnvSample{}, err
	}
	return EnvSample{
		Temperature: types.TemperatureValue{DeciC: int16(t / 100)},
		Humidity:    types.HumidityValue{RHx100: uint16(rh / 10)},
	}, nil
}
