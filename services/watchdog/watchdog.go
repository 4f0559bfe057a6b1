// services/watchdog/watchdog.go
package watchdog

import (
	"context"
	"time"

	"telemetrykit-go/bus"
	"telemetrykit-go/services/config"
	"telemetrykit-go/status"
	"telemetrykit-go/x/mathx"
	"telemetrykit-go/x/timex"
)

var (
	topicConfig = bus.T("config", "watchdog")
	topicFeed   = bus.T("watchdog", "feed")
)

// Hardware is the platform watchdog. Arm starts it with the given timeout;
// Feed postpones the reset. On RP2 the watchdog cannot be disarmed once
// started, so suspension is done by self-feeding, not by stopping it.
type Hardware interface {
	Arm(timeout time.Duration) error
	Feed()
}

// Service arms the hardware watchdog and relays feeds from the bus. While
// the device status is maintenance it feeds autonomously so an operator
// session is never cut short by a reset.
type Service struct {
	conn *bus.Connection
	hw   Hardware
}

func New(conn *bus.Connection, hw Hardware) *Service {
	return &Service{conn: conn, hw: hw}
}

func (s *Service) Start(ctx context.Context) error {
	go s.run(ctx)
	return nil
}

func (s *Service) run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	feedSub := s.conn.Subscribe(topicFeed)
	statSub := s.conn.Subscribe(status.TopicDevice)

	var timeout time.Duration
	select {
	case msg := <-cfgSub.Channel():
		c, _ := config.DecodeWatchdog(msg.Payload)
		timeout = timex.Ms(c.TimeoutMS, 8*time.Second)
	case <-ctx.Done():
		return
	}

	if err := s.hw.Arm(timeout); err != nil {
		println("Error: watchdog: arm:", err.Error())
		return
	}
	println("Info: watchdog armed,", timeout.String())

	// Self-feed cadence while suspended, well inside the timeout but
	// never so fast it starves the loop.
	self := time.NewTicker(mathx.Clamp(timeout/4, 10*time.Millisecond, 2*time.Second))
	defer self.Stop()

	suspended := false
	for {
		select {
		case <-ctx.Done():
			println("Info: watchdog service stopping")
			return
		case <-feedSub.Channel():
			if !suspended {
				s.hw.Feed()
			}
		case msg := <-statSub.Channel():
			if ann, ok := msg.Payload.(status.Announcement); ok {
				was := suspended
				suspended = ann.Status == status.Maintenance.String()
				if suspended && !was {
					println("Info: watchdog suspended for maintenance")
				}
			}
		case <-self.C:
			if suspended {
				s.hw.Feed()
			}
		}
	}
}
