// services/watchdog/hw_rp2.go
//go:build rp2040 || rp2350

package watchdog

import (
	"machine"
	"time"
)

// ChipWatchdog drives the RP2 hardware watchdog.
type ChipWatchdog struct{}

func (ChipWatchdog) Arm(timeout time.Duration) error {
	ms := uint32(timeout.Milliseconds())
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: ms}); err != nil {
		return err
	}
	machine.Watchdog.Start()
	return nil
}

func (ChipWatchdog) Feed() {
	machine.Watchdog.Update()
}
