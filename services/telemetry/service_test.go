// services/telemetry/service_test.go
package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"telemetrykit-go/bus"
	"telemetrykit-go/status"
	"telemetrykit-go/types"
	"telemetrykit-go/x/timex"
)

type fakeEnv struct {
	mu     sync.Mutex
	sample EnvSample
	err    error
	calls  int
}

func (f *fakeEnv) Sample(_ context.Context) (EnvSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.sample, f.err
}

func (f *fakeEnv) set(s EnvSample, err error) {
	f.mu.Lock()
	f.sample, f.err = s, err
	f.mu.Unlock()
}

type fakeFix struct {
	mu  sync.Mutex
	pos types.PositionValue
	ok  bool
}

func (f *fakeFix) Fix() (types.PositionValue, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos, f.ok
}

func (f *fakeFix) set(pos types.PositionValue, ok bool) {
	f.mu.Lock()
	f.pos, f.ok = pos, ok
	f.mu.Unlock()
}

type harness struct {
	b    *bus.Bus
	conn *bus.Connection
	ctl  *bus.Connection
	cell *status.Cell
	env  *fakeEnv
	fix  *fakeFix
}

func startService(t *testing.T, requireFix bool) (*harness, context.CancelFunc) {
	t.Helper()

	b := bus.New(32)
	conn := b.NewConnection("telemetry")
	ctl := b.NewConnection("test-ctl")
	cell := status.NewCell(b.NewConnection("cell"))

	// Retained so the service picks them up on subscribe.
	ctl.Publish(&bus.Message{
		Topic: topicConfig,
		Payload: map[string]any{
			"poll_ms":     float64(5),
			"require_fix": requireFix,
		},
		Retained: true,
	})

	h := &harness{
		b: b, conn: conn, ctl: ctl, cell: cell,
		env: &fakeEnv{sample: EnvSample{
			Temperature: types.TemperatureValue{DeciC: 215},
			Humidity:    types.HumidityValue{RHx100: 4550},
			Pressure:    types.PressureValue{DecihPa: 10132},
			HasPressure: true,
		}},
		fix: &fakeFix{},
	}

	ctx, cancel := context.WithCancel(context.Background())
	New(conn, cell, h.env, h.fix).Start(ctx)
	return h, cancel
}

func (h *harness) setLink(up bool) {
	st := types.LinkDown
	if up {
		st = types.LinkUp
	}
	h.ctl.Publish(&bus.Message{
		Topic:    topicLinkState,
		Payload:  types.UplinkState{Link: st, TS: timex.NowMs()},
		Retained: true,
	})
}

func waitStatus(t *testing.T, cell *status.Cell, want status.Status) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cell.Get() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("status = %v, want %v", cell.Get(), want)
}

func TestLinkDownMeansNotReady(t *testing.T) {
	h, cancel := startService(t, false)
	defer cancel()

	waitStatus(t, h.cell, status.NotReady)

	h.setLink(true)
	waitStatus(t, h.cell, status.ReadyToSend)

	h.setLink(false)
	waitStatus(t, h.cell, status.NotReady)
}

func TestWaitsForFixWhenRequired(t *testing.T) {
	h, cancel := startService(t, true)
	defer cancel()

	h.setLink(true)
	waitStatus(t, h.cell, status.WaitingGNSS)

	h.fix.set(types.PositionValue{LatUDeg: 51_500_000, LonUDeg: -120_000, Sats: 7}, true)
	waitStatus(t, h.cell, status.ReadyToSend)
}

func TestPublishesReadings(t *testing.T) {
	h, cancel := startService(t, false)
	defer cancel()

	sub := h.ctl.Subscribe(bus.T("telemetry", "reading", bus.Wildcard))

	h.setLink(true)

	seen := map[string]types.Reading{}
	deadline := time.After(time.Second)
	for len(seen) < 3 {
		select {
		case msg := <-sub.Channel():
			r, ok := msg.Payload.(types.Reading)
			if !ok {
				t.Fatalf("payload %T on %v", msg.Payload, msg.Topic)
			}
			seen[r.Kind] = r
		case <-deadline:
			t.Fatalf("got kinds %v, want temperature, humidity and pressure", seen)
		}
	}

	if tv, ok := seen["temperature"].Payload.(types.TemperatureValue); !ok || tv.DeciC != 215 {
		t.Fatalf("temperature payload = %#v", seen["temperature"].Payload)
	}
	if seen["temperature"].TsMs == 0 {
		t.Fatal("reading missing timestamp")
	}
}

func TestRetainsFixState(t *testing.T) {
	h, cancel := startService(t, false)
	defer cancel()

	sub := h.ctl.Subscribe(topicFix)
	h.setLink(true)

	waitFix := func(want bool) types.FixState {
		deadline := time.After(time.Second)
		for {
			select {
			case msg := <-sub.Channel():
				st, ok := msg.Payload.(types.FixState)
				if !ok {
					t.Fatalf("payload %T on %v", msg.Payload, msg.Topic)
				}
				if !msg.Retained {
					t.Fatal("fix state not retained")
				}
				if st.Valid == want {
					return st
				}
			case <-deadline:
				t.Fatalf("no fix state with valid=%v", want)
			}
		}
	}

	st := waitFix(false)
	if st.Position != (types.PositionValue{}) {
		t.Fatalf("position without a fix = %#v", st.Position)
	}

	h.fix.set(types.PositionValue{LatUDeg: 51_500_000, LonUDeg: -120_000, AltM: 32, Sats: 8}, true)
	st = waitFix(true)
	if st.Position.LatUDeg != 51_500_000 || st.Position.Sats != 8 {
		t.Fatalf("fix position = %#v", st.Position)
	}
	if st.TS == 0 {
		t.Fatal("fix state missing timestamp")
	}
}

func TestEnvErrorDoesNotStopLoop(t *testing.T) {
	h, cancel := startService(t, false)
	defer cancel()

	feed := h.ctl.Subscribe(topicFeed)

	h.env.set(EnvSample{}, context.DeadlineExceeded)
	h.setLink(true)
	waitStatus(t, h.cell, status.ReadyToSend)

	// Watchdog still gets fed while the sensor is failing.
	for i := 0; i < 2; i++ {
		select {
		case <-feed.Channel():
		case <-time.After(time.Second):
			t.Fatal("watchdog feed stopped")
		}
	}
}

func TestMaintenanceIsSticky(t *testing.T) {
	h, cancel := startService(t, false)
	defer cancel()

	h.setLink(true)
	waitStatus(t, h.cell, status.ReadyToSend)

	h.cell.Set(status.Maintenance)
	time.Sleep(50 * time.Millisecond)
	if got := h.cell.Get(); got != status.Maintenance {
		t.Fatalf("status = %v after maintenance, want it held", got)
	}
}

func TestTrackerStaleness(t *testing.T) {
	tr := NewTracker(20 * time.Millisecond)

	if _, ok := tr.Fix(); ok {
		t.Fatal("fresh tracker reports a fix")
	}

	tr.Update(types.PositionValue{LatUDeg: 1, Sats: 5}, true)
	if pos, ok := tr.Fix(); !ok || pos.LatUDeg != 1 {
		t.Fatalf("fix = %#v, %v", pos, ok)
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := tr.Fix(); ok {
		t.Fatal("stale fix still reported valid")
	}

	tr.Update(types.PositionValue{}, false)
	if _, ok := tr.Fix(); ok {
		t.Fatal("invalid fix reported valid")
	}
}
