// bus/cmd/selftest/main.go
//
// On-device smoke test for the message bus. `go test` covers the host; this
// binary proves the same semantics hold under the TinyGo scheduler on real
// hardware. Solid LED means all passed, slow blink means a failure.
//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"telemetrykit-go/bus"
)

func expect(sub *bus.Subscription, want string, timeout time.Duration) bool {
	select {
	case got := <-sub.Channel():
		s, ok := got.Payload.(string)
		return ok && s == want
	case <-time.After(timeout):
		return false
	}
}

func expectNone(sub *bus.Subscription, timeout time.Duration) bool {
	select {
	case <-sub.Channel():
		return false
	case <-time.After(timeout):
		return true
	}
}

func testBasicPubSub() bool {
	b := bus.New(4)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(bus.T("config", "indicator"))

	conn.Publish(&bus.Message{Topic: bus.T("config", "indicator"), Payload: "hello"})
	return expect(sub, "hello", 100*time.Millisecond)
}

func testRetainedMessage() bool {
	b := bus.New(2)
	conn := b.NewConnection("test")

	conn.Publish(&bus.Message{Topic: bus.T("status", "device"), Payload: "persist", Retained: true})
	sub := conn.Subscribe(bus.T("status", "device"))
	return expect(sub, "persist", 100*time.Millisecond)
}

func testRetainedClear() bool {
	b := bus.New(4)
	conn := b.NewConnection("test")

	conn.Publish(&bus.Message{Topic: bus.T("status", "device"), Payload: "stale", Retained: true})
	conn.Publish(&bus.Message{Topic: bus.T("status", "device"), Payload: nil, Retained: true})
	sub := conn.Subscribe(bus.T("status", "device"))
	return expectNone(sub, 60*time.Millisecond)
}

func testWildcard() bool {
	b := bus.New(8)
	conn := b.NewConnection("test")

	sAny := conn.Subscribe(bus.T("telemetry", "reading", bus.Wildcard))
	sNo := conn.Subscribe(bus.T("telemetry", "fix"))

	conn.Publish(&bus.Message{Topic: bus.T("telemetry", "reading", "temperature"), Payload: "m1"})
	if !expect(sAny, "m1", 100*time.Millisecond) {
		return false
	}
	return expectNone(sNo, 60*time.Millisecond)
}

func testDropOldest() bool {
	b := bus.New(2)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(bus.T("q"))

	conn.Publish(&bus.Message{Topic: bus.T("q"), Payload: "a"})
	conn.Publish(&bus.Message{Topic: bus.T("q"), Payload: "b"})
	conn.Publish(&bus.Message{Topic: bus.T("q"), Payload: "c"})

	// "a" fell off the front; "b" then "c" remain.
	return expect(sub, "b", 100*time.Millisecond) && expect(sub, "c", 100*time.Millisecond)
}

func testDisconnect() bool {
	b := bus.New(4)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(bus.T("x"))
	conn.Disconnect()

	other := b.NewConnection("other")
	other.Publish(&bus.Message{Topic: bus.T("x"), Payload: "gone"})

	// Channel is closed; a receive must not yield a message.
	select {
	case m := <-sub.Channel():
		return m == nil
	case <-time.After(60 * time.Millisecond):
		return true
	}
}

func main() {
	time.Sleep(250 * time.Millisecond)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High()

	tests := []struct {
		name string
		fn   func() bool
	}{
		{"BasicPubSub", testBasicPubSub},
		{"RetainedMessage", testRetainedMessage},
		{"RetainedClear", testRetainedClear},
		{"Wildcard", testWildcard},
		{"DropOldest", testDropOldest},
		{"Disconnect", testDisconnect},
	}

	failed := 0
	println("== bus self-test starting ==")
	for _, tc := range tests {
		if tc.fn() {
			println("[PASS]", tc.name)
		} else {
			println("[FAIL]", tc.name)
			failed++
		}
		time.Sleep(10 * time.Millisecond)
	}
	println("== done,", failed, "failed ==")

	if failed == 0 {
		for {
			led.High()
			time.Sleep(2 * time.Second)
		}
	}
	for {
		led.High()
		time.Sleep(250 * time.Millisecond)
		led.Low()
		time.Sleep(250 * time.Millisecond)
	}
}
