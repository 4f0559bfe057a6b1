// drivers/speaker/speaker.go
package speaker

// Beeper drives a piezo speaker with square-wave tones. Start/stop only;
// timing is the caller's job.
type Beeper interface {
	// SetToneHz starts a tone at the given frequency. 0 is equivalent to Off.
	SetToneHz(freqHz uint32) error
	// Off silences the speaker.
	Off()
}

// Mute is a Beeper for boards without a speaker fitted.
type Mute struct{}

func (Mute) SetToneHz(uint32) error { return nil }
func (Mute) Off()                   {}
