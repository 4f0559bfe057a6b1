// services/maintenance/maintenance.go
package maintenance

import (
	"context"

	"telemetrykit-go/bus"
	"telemetrykit-go/services/indicator"
	"telemetrykit-go/status"
	"telemetrykit-go/x/timex"
)

var (
	topicCommand = bus.T("command", bus.Wildcard)
	topicEnter   = bus.T("command", "maintenance")
)

// Watch blocks until a gateway pushes a maintenance command, then enters
// maintenance mode. Gives the remote side the same path into the mode the
// boot-time button provides locally. Returns only when ctx is cancelled.
func Watch(ctx context.Context, conn *bus.Connection, cell *status.Cell, eng *indicator.Engine) {
	sub := conn.Subscribe(topicEnter)
	select {
	case <-ctx.Done():
		conn.Unsubscribe(sub)
		return
	case <-sub.Channel():
		conn.Unsubscribe(sub)
		println("Info: maintenance requested over the link")
		Enter(ctx, conn, cell, eng)
	}
}

// Enter puts the device into maintenance mode and holds it there. The status
// write lands first so the watchdog starts self-feeding and other producers
// stand down; the melody then plays to completion before the command loop
// takes over. Returns only when ctx is cancelled.
func Enter(ctx context.Context, conn *bus.Connection, cell *status.Cell, eng *indicator.Engine) {
	cell.Set(status.Maintenance)
	eng.PlayMaintenance()

	cmdSub := conn.Subscribe(topicCommand)
	println("Info: maintenance mode, awaiting commands")

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-cmdSub.Channel():
			handle(conn, msg)
		}
	}
}

func handle(conn *bus.Connection, msg *bus.Message) {
	if len(msg.Topic) < 2 {
		return
	}
	switch msg.Topic[1] {
	case "ping":
		conn.Publish(&bus.Message{
			Topic:   bus.T("command", "pong"),
			Payload: timex.NowMs(),
		})
	case "restart":
		// The watchdog reset path: stop self-feeding by leaving
		// maintenance, then let the timeout fire.
		println("Info: maintenance: restart requested")
		conn.Publish(&bus.Message{
			Topic:    status.TopicDevice,
			Payload:  status.Announcement{Status: status.None.String(), TS: timex.NowMs()},
			Retained: true,
		})
	default:
		println("Info: maintenance: ignoring command", msg.Topic[1])
	}
}
