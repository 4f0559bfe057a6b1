// services/indicator/patterns.go
package indicator

import (
	"image/color"
	"time"

	"telemetrykit-go/drivers/pixel"
	"telemetrykit-go/status"
)

// Pattern colors at full intensity; the strip applies brightness.
var (
	red     = color.RGBA{R: 255}
	green   = color.RGBA{G: 255}
	blue    = color.RGBA{B: 255}
	magenta = color.RGBA{R: 255, B: 255}
)

// Frame is one timed step of a render cycle: the colors of pixels 0 and 1,
// held for Hold. Patterns never touch any other pixel index.
type Frame struct {
	P0, P1 color.RGBA
	Hold   time.Duration
}

// Cycle returns the frame sequence for one full render cycle of s under
// profile p. It is a pure function of (profile, status); executing the frames
// is the engine's job. Unknown status values return nil: the engine renders
// nothing for that cycle, deliberately.
func Cycle(p Profile, s status.Status) []Frame {
	switch s {
	case status.None:
		return alternating(magenta, p.BlinkInterval, p.BootAntiphase)
	case status.NotReady:
		return alternating(red, p.BlinkInterval, true)
	case status.ReadyToSend:
		return burst(green, p.BurstOn, p.BurstCount, p.BurstRest)
	case status.WaitingGNSS:
		return alternating(blue, p.BlinkInterval, p.WaitingAntiphase)
	case status.Maintenance:
		return alternating(magenta, p.BlinkInterval, false)
	default:
		return nil
	}
}

// alternating yields two phases of length interval. With antiphase the two
// pixels swap (0 lit while 1 dark, then the reverse); otherwise both light
// together and then both go dark.
func alternating(c color.RGBA, interval time.Duration, antiphase bool) []Frame {
	if antiphase {
		return []Frame{
			{P0: c, P1: pixel.Off, Hold: interval},
			{P0: pixel.Off, P1: c, Hold: interval},
		}
	}
	return []Frame{
		{P0: c, P1: c, Hold: interval},
		{P0: pixel.Off, P1: pixel.Off, Hold: interval},
	}
}

// burst yields count on/off flashes of both pixels followed by a rest with
// the strip dark.
func burst(c color.RGBA, on time.Duration, count int, rest time.Duration) []Frame {
	frames := make([]Frame, 0, 2*count+1)
	for i := 0; i < count; i++ {
		frames = append(frames,
			Frame{P0: c, P1: c, Hold: on},
			Frame{P0: pixel.Off, P1: pixel.Off, Hold: on},
		)
	}
	return append(frames, Frame{P0: pixel.Off, P1: pixel.Off, Hold: rest})
}
