// services/watchdog/watchdog_test.go
package watchdog

import (
	"context"
	"testing"
	"time"

	"telemetrykit-go/bus"
	"telemetrykit-go/status"
	"telemetrykit-go/x/timex"
)

func start(t *testing.T, timeoutMS int) (*bus.Connection, *FakeWatchdog, context.CancelFunc) {
	t.Helper()

	b := bus.New(16)
	ctl := b.NewConnection("test-ctl")
	ctl.Publish(&bus.Message{
		Topic:    topicConfig,
		Payload:  map[string]any{"timeout_ms": float64(timeoutMS)},
		Retained: true,
	})

	hw := &FakeWatchdog{}
	ctx, cancel := context.WithCancel(context.Background())
	if err := New(b.NewConnection("watchdog"), hw).Start(ctx); err != nil {
		t.Fatal(err)
	}
	return ctl, hw, cancel
}

func waitArmed(t *testing.T, hw *FakeWatchdog, want time.Duration) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hw.Armed() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("armed = %v, want %v", hw.Armed(), want)
}

func waitFeeds(t *testing.T, hw *FakeWatchdog, atLeast int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hw.Feeds() >= atLeast {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("feeds = %d, want >= %d", hw.Feeds(), atLeast)
}

func TestArmsWithConfiguredTimeout(t *testing.T) {
	_, hw, cancel := start(t, 5000)
	defer cancel()
	waitArmed(t, hw, timex.Ms(5000, 0))
}

func TestRelaysFeeds(t *testing.T) {
	ctl, hw, cancel := start(t, 5000)
	defer cancel()
	waitArmed(t, hw, 5*time.Second)

	ctl.Publish(&bus.Message{Topic: topicFeed, Payload: timex.NowMs()})
	ctl.Publish(&bus.Message{Topic: topicFeed, Payload: timex.NowMs()})
	waitFeeds(t, hw, 2)
}

func TestMaintenanceSelfFeeds(t *testing.T) {
	ctl, hw, cancel := start(t, 100) // self-feed tick every 25ms
	defer cancel()
	waitArmed(t, hw, 100*time.Millisecond)

	ctl.Publish(&bus.Message{
		Topic:    status.TopicDevice,
		Payload:  status.Announcement{Status: status.Maintenance.String(), TS: timex.NowMs()},
		Retained: true,
	})

	// No bus feeds arrive, yet the hardware keeps getting fed.
	waitFeeds(t, hw, 3)
}

func TestFeedsIgnoredWhileSuspended(t *testing.T) {
	ctl, hw, cancel := start(t, 60_000) // self-feed tick far beyond the test
	defer cancel()
	waitArmed(t, hw, time.Minute)

	ctl.Publish(&bus.Message{
		Topic:    status.TopicDevice,
		Payload:  status.Announcement{Status: status.Maintenance.String(), TS: timex.NowMs()},
		Retained: true,
	})
	time.Sleep(20 * time.Millisecond)

	before := hw.Feeds()
	ctl.Publish(&bus.Message{Topic: topicFeed, Payload: timex.NowMs()})
	time.Sleep(20 * time.Millisecond)
	if got := hw.Feeds(); got != before {
		t.Fatalf("feeds = %d, want %d while suspended", got, before)
	}
}
