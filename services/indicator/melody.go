// services/indicator/melody.go
package indicator

import (
	"time"

	"telemetrykit-go/drivers/speaker"
)

// Piano note frequencies (Hz), sixth octave. The melodies only reach E6..G6
// but the neighbours cost nothing and save a lookup when tables change.
const (
	NoteC6  uint32 = 1047
	NoteCs6 uint32 = 1109
	NoteD6  uint32 = 1175
	NoteDs6 uint32 = 1245
	NoteE6  uint32 = 1319
	NoteF6  uint32 = 1397
	NoteFs6 uint32 = 1480
	NoteG6  uint32 = 1568
	NoteGs6 uint32 = 1661
	NoteA6  uint32 = 1760
	NoteAs6 uint32 = 1865
	NoteB6  uint32 = 1976
)

// Note is one melody step: tone for Hold, then silence for Gap.
type Note struct {
	FreqHz uint32
	Hold   time.Duration
	Gap    time.Duration
}

// Melody is played front to back, each step blocking for its duration.
type Melody []Note

// Duration is the total blocking time of the melody.
func (m Melody) Duration() time.Duration {
	var d time.Duration
	for _, n := range m {
		d += n.Hold + n.Gap
	}
	return d
}

// Play sounds the melody on b, one note at a time. It blocks for exactly
// Duration() worth of ticks and leaves the speaker silent, even when tick
// reports cancellation mid-note. Tone errors are ignored; a mute speaker
// just shortens the notification to its visual half.
func (m Melody) Play(b speaker.Beeper, tick Tick) {
	for _, n := range m {
		_ = b.SetToneHz(n.FreqHz)
		if !tick(n.Hold) {
			b.Off()
			return
		}
		b.Off()
		if n.Gap > 0 && !tick(n.Gap) {
			return
		}
	}
}
