// services/telemetry/service.go
package telemetry

import (
	"context"
	"time"

	"telemetrykit-go/bus"
	"telemetrykit-go/errcode"
	"telemetrykit-go/services/config"
	"telemetrykit-go/status"
	"telemetrykit-go/types"
	"telemetrykit-go/x/timex"
)

var (
	topicConfig    = bus.T("config", "telemetry")
	topicLinkState = bus.T("uplink", "state")
	topicFix       = bus.T("telemetry", "fix")
	topicFeed      = bus.T("watchdog", "feed")
)

func topicReading(kind string) bus.Topic { return bus.T("telemetry", "reading", kind) }

// EnvSample is one round of environment measurements. HasPressure is false
// for sensors that only report temperature and humidity.
type EnvSample struct {
	Temperature types.TemperatureValue
	Humidity    types.HumidityValue
	Pressure    types.PressureValue
	HasPressure bool
}

// EnvProbe is the platform seam for the environment sensor.
type EnvProbe interface {
	Sample(ctx context.Context) (EnvSample, error)
}

// FixSource yields the current GNSS fix, if any. *Tracker implements it.
type FixSource interface {
	Fix() (types.PositionValue, bool)
}

// Service polls the sensors, publishes readings on the bus and drives the
// device status cell from link and fix conditions.
type Service struct {
	conn *bus.Connection
	cell *status.Cell
	env  EnvProbe
	fix  FixSource
}

func New(conn *bus.Connection, cell *status.Cell, env EnvProbe, fix FixSource) *Service {
	return &Service{conn: conn, cell: cell, env: env, fix: fix}
}

func (s *Service) Start(ctx context.Context) {
	go func() {
		if err := s.run(ctx); err != nil && ctx.Err() == nil {
			println("Error: telemetry:", err.Error())
		}
	}()
}

func (s *Service) run(ctx context.Context) error {
	const op = "telemetry.run"

	cfgSub := s.conn.Subscribe(topicConfig)
	linkSub := s.conn.Subscribe(topicLinkState)

	var cfg types.TelemetryConfig
	select {
	case msg := <-cfgSub.Channel():
		c, ok := config.DecodeTelemetry(msg.Payload)
		if !ok {
			return &errcode.E{C: errcode.InvalidPayload, Op: op, Msg: "bad telemetry config"}
		}
		cfg = c
	case <-ctx.Done():
		return ctx.Err()
	}

	poll := timex.Ms(cfg.PollMS, 2*time.Second)
	linkUp := false

	s.cell.Set(status.NotReady)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-linkSub.Channel():
			if st, ok := msg.Payload.(types.UplinkState); ok {
				linkUp = st.Link == types.LinkUp
			}
		case msg := <-cfgSub.Channel():
			if c, ok := config.DecodeTelemetry(msg.Payload); ok {
				cfg = c
			}
		case <-ticker.C:
			s.cycle(ctx, cfg, linkUp)
		}
	}
}

// cycle runs one poll round. It never blocks on the bus: a wedged consumer
// must not stop the watchdog feed.
func (s *Service) cycle(ctx context.Context, cfg types.TelemetryConfig, linkUp bool) {
	// Maintenance is sticky. Once the operator owns the device the
	// producer stops competing for the status cell.
	if s.cell.Get() == status.Maintenance {
		return
	}

	// The loop itself being alive is what the watchdog cares about, so
	// feed it even while the link is down or the fix is missing.
	s.conn.Publish(&bus.Message{Topic: topicFeed, Payload: timex.NowMs()})

	if !linkUp {
		s.cell.Set(status.NotReady)
		return
	}

	pos, haveFix := s.fix.Fix()
	s.conn.Publish(&bus.Message{
		Topic:    topicFix,
		Payload:  types.FixState{Valid: haveFix, Position: pos, TS: timex.NowMs()},
		Retained: true,
	})

	if cfg.RequireFix && !haveFix {
		s.cell.Set(status.WaitingGNSS)
		return
	}

	s.cell.Set(status.ReadyToSend)

	now := timex.NowMs()
	sample, err := s.env.Sample(ctx)
	if err != nil {
		println("Error: telemetry: env sample:", (&errcode.E{C: errcode.SensorFault, Op: "telemetry.cycle", Err: err}).Error())
	} else {
		s.publishReading("temperature", sample.Temperature, now)
		s.publishReading("humidity", sample.Humidity, now)
		if sample.HasPressure {
			s.publishReading("pressure", sample.Pressure, now)
		}
	}
	if haveFix {
		s.publishReading("position", pos, now)
	}
}

func (s *Service) publishReading(kind string, payload any, tsMs int64) {
	s.conn.Publish(&bus.Message{
		Topic:   topicReading(kind),
		Payload: types.Reading{Kind: kind, Payload: payload, TsMs: tsMs},
	})
}
