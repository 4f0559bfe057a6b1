// drivers/speaker/pwm_rp2.go
//go:build rp2040 || rp2350

package speaker

import (
	"machine"

	"tinygo.org/x/drivers/tone"

	"telemetrykit-go/x/timex"
)

// PWM drives the speaker from a PWM slice via the tone driver.
type PWM struct {
	spk tone.Speaker
}

// NewPWM claims pin on the given PWM slice. The slice must be the one that
// owns the pin (e.g. machine.PWM4 for GP8/GP9 on the Pico).
func NewPWM(pwm tone.PWM, pin machine.Pin) (*PWM, error) {
	spk, err := tone.New(pwm, pin)
	if err != nil {
		return nil, err
	}
	return &PWM{spk: spk}, nil
}

func (p *PWM) SetToneHz(freqHz uint32) error {
	if freqHz == 0 {
		p.spk.Stop()
		return nil
	}
	return p.spk.SetPeriod(timex.PeriodFromHz(freqHz))
}

func (p *PWM) Off() {
	p.spk.Stop()
}
