// status/status.go
package status

import (
	"sync/atomic"

	"telemetrykit-go/bus"
	"telemetrykit-go/x/timex"
)

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

// Status is the device-wide operating mode. Exactly one value holds at any
// instant; writers overwrite unconditionally (last writer wins).
type Status uint8

const (
	None        Status = iota // idle/boot, no connectivity attempted yet
	NotReady                  // powered but not linked to the broker
	ReadyToSend               // linked and actively publishing telemetry
	WaitingGNSS               // linked, waiting on a valid positional fix
	Maintenance               // configuration mode; terminal until restart
)

func (s Status) String() string {
	switch s {
	case None:
		return "none"
	case NotReady:
		return "not_ready"
	case ReadyToSend:
		return "ready_to_send"
	case WaitingGNSS:
		return "waiting_gnss"
	case Maintenance:
		return "maintenance"
	}
	return "unknown"
}

// -----------------------------------------------------------------------------
// Cell
// -----------------------------------------------------------------------------

// TopicDevice carries the retained copy of the current status.
var TopicDevice = bus.T("status", "device")

// Announcement is the retained bus payload mirrored on every Set.
type Announcement struct {
	Status string `json:"status"`
	TS     int64  `json:"ts_ms"`
}

// Cell holds the current Status. It is shared by reference between the
// producer (network/sensor control flow) and the consumer (indicator engine);
// there is no other channel between the two.
//
// There is no transition table: any state may follow any state, e.g.
// ReadyToSend -> NotReady on a dropped link mid-publish.
type Cell struct {
	v    atomic.Int32
	conn *bus.Connection // nil => no announcements
}

// NewCell returns a cell holding None. conn may be nil; when set, every write
// is mirrored as a retained message on TopicDevice so bus services can react
// to mode changes without polling the cell.
func NewCell(conn *bus.Connection) *Cell {
	return &Cell{conn: conn}
}

// Set overwrites the current status. It never blocks: the store is atomic and
// the bus publish is queue-drop, so callers on the control path pay no wait.
func (c *Cell) Set(s Status) {
	c.v.Store(int32(s))
	if c.conn != nil {
		c.conn.Publish(&bus.Message{
			Topic:    TopicDevice,
			Payload:  Announcement{Status: s.String(), TS: timex.NowMs()},
			Retained: true,
		})
	}
}

// Get returns the current status. Reads may trail a concurrent Set by at most
// one render cycle on the consumer side; that staleness is accepted.
func (c *Cell) Get() Status {
	return Status(c.v.Load())
}
