// services/indicator/profile.go
package indicator

import "time"

// Profile bundles the timing constants and melody shapes that differ between
// kit builds. Everything the render loop and the melody player consume comes
// from here, so a build variant is one table entry, not a fork of the code.
type Profile struct {
	Name string

	// Phase length for the alternating (non-burst) patterns.
	BlinkInterval time.Duration

	// Green "publishing" burst.
	BurstOn    time.Duration
	BurstCount int
	BurstRest  time.Duration

	// When true, the boot and waiting-GNSS patterns alternate the two pixels
	// against each other; when false both pixels move together.
	BootAntiphase    bool
	WaitingAntiphase bool

	Intro       Melody
	Maintenance Melody
}

// Vanilla is the dual-pixel kit: antiphase waiting pattern, two-phrase
// maintenance melody.
var Vanilla = Profile{
	Name:             "vanilla",
	BlinkInterval:    240 * time.Millisecond,
	BurstOn:          40 * time.Millisecond,
	BurstCount:       4,
	BurstRest:        1200 * time.Millisecond,
	BootAntiphase:    true,
	WaitingAntiphase: true,
	Intro: Melody{
		{FreqHz: NoteE6, Hold: 120 * time.Millisecond},
		{FreqHz: NoteF6, Hold: 120 * time.Millisecond},
		{FreqHz: NoteG6, Hold: 320 * time.Millisecond},
	},
	Maintenance: Melody{
		{FreqHz: NoteE6, Hold: 120 * time.Millisecond, Gap: 80 * time.Millisecond},
		{FreqHz: NoteE6, Hold: 120 * time.Millisecond, Gap: 80 * time.Millisecond},
		{FreqHz: NoteF6, Hold: 120 * time.Millisecond, Gap: 80 * time.Millisecond},
		{FreqHz: NoteG6, Hold: 280 * time.Millisecond},
		{FreqHz: NoteE6, Hold: 120 * time.Millisecond},
		{FreqHz: NoteF6, Hold: 120 * time.Millisecond},
		{FreqHz: NoteG6, Hold: 320 * time.Millisecond},
	},
}

// Sensory is the older build: pixels move together while waiting for a fix,
// slower intro, single held maintenance tone.
var Sensory = Profile{
	Name:          "sensory",
	BlinkInterval: 240 * time.Millisecond,
	BurstOn:       40 * time.Millisecond,
	BurstCount:    4,
	BurstRest:     1200 * time.Millisecond,
	Intro: Melody{
		{FreqHz: NoteE6, Hold: 160 * time.Millisecond},
		{FreqHz: NoteF6, Hold: 160 * time.Millisecond},
		{FreqHz: NoteG6, Hold: 320 * time.Millisecond},
	},
	Maintenance: Melody{
		{FreqHz: NoteE6, Hold: 1600 * time.Millisecond},
	},
}

// ProfileByName resolves a config string; unknown names fall back to Vanilla.
func ProfileByName(name string) Profile {
	switch name {
	case "sensory":
		return Sensory
	case "vanilla", "":
		return Vanilla
	}
	return Vanilla
}
