// services/indicator/indicator.go
//
// The indicator engine is the only writer to the LED strip and the speaker.
// It polls the shared status cell and renders the matching pattern, forever.
// The producer side (telemetry/uplink control flow) never touches the
// hardware; the status cell is the whole interface between the two.
package indicator

import (
	"context"
	"time"

	"telemetrykit-go/drivers/pixel"
	"telemetrykit-go/drivers/speaker"
	"telemetrykit-go/status"
)

// Tick waits for d and reports whether to continue (false => cancelled).
// Injectable so tests drive time instead of sleeping through it.
type Tick func(d time.Duration) bool

// emptyCyclePoll bounds the re-poll rate when a status has no pattern, so an
// unhandled value degrades to a dark strip instead of a busy spin.
const emptyCyclePoll = 50 * time.Millisecond

type Engine struct {
	cell  *status.Cell
	strip pixel.Strip
	spk   speaker.Beeper
	prof  Profile
	tick  Tick
}

// Option tweaks an Engine at construction.
type Option func(*Engine)

// WithTick replaces the sleep function. Tests use this to run patterns at
// full speed while still observing every frame and its intended hold time.
func WithTick(t Tick) Option {
	return func(e *Engine) { e.tick = t }
}

// New wires an engine to its hardware and status source. The strip and
// speaker must already be initialized; the engine assumes exclusive
// ownership of both from here on.
func New(cell *status.Cell, strip pixel.Strip, spk speaker.Beeper, prof Profile, opts ...Option) *Engine {
	e := &Engine{cell: cell, strip: strip, spk: spk, prof: prof}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Run renders the pattern for the current status in an endless loop. On the
// device it is launched on its own goroutine with a background context and
// never returns; ctx cancellation exists for tests and orderly host demos.
//
// Each cycle: darken the strip, load the status once, render that status's
// frames. A status write landing mid-cycle is picked up on the next cycle;
// intermediate values between two polls are never rendered. Strip write
// errors are ignored: there is no feedback channel from the hardware, and a
// failed flush just costs one frame.
func (e *Engine) Run(ctx context.Context) {
	tick := e.tick
	if tick == nil {
		tick = sleepTick(ctx)
	}
	println("Info: indicator engine running, profile", e.prof.Name)

	for {
		if ctx.Err() != nil {
			return
		}
		e.strip.Clear()
		_ = e.strip.Show()

		frames := Cycle(e.prof, e.cell.Get())
		if len(frames) == 0 {
			if !tick(emptyCyclePoll) {
				return
			}
			continue
		}
		for _, f := range frames {
			e.strip.SetPixel(0, f.P0)
			e.strip.SetPixel(1, f.P1)
			_ = e.strip.Show()
			if !tick(f.Hold) {
				return
			}
		}
	}
}

// PlayIntro blocks for the intro melody's full duration, then returns with
// the speaker silent. Called once from the boot sequence, before the render
// loop starts.
func (e *Engine) PlayIntro() {
	e.play(e.prof.Intro)
}

// PlayMaintenance blocks for the maintenance melody. Called once on entry
// into maintenance mode; the render loop keeps flashing magenta around it.
func (e *Engine) PlayMaintenance() {
	e.play(e.prof.Maintenance)
}

func (e *Engine) play(m Melody) {
	tick := e.tick
	if tick == nil {
		tick = func(d time.Duration) bool {
			time.Sleep(d)
			return true
		}
	}
	m.Play(e.spk, tick)
}

// sleepTick sleeps for real but wakes early on cancellation.
func sleepTick(ctx context.Context) Tick {
	return func(d time.Duration) bool {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			return true
		}
	}
}
