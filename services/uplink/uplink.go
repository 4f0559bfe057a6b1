// services/uplink/uplink.go
//
// The uplink owns the framed link off the device. Local telemetry readings
// and status announcements are forwarded out; frames pushed by the gateway
// (config updates, commands) are published onto the local bus. Link health
// is retained on "uplink/state", which is how the telemetry control flow
// learns whether the device counts as connected.
package uplink

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"telemetrykit-go/bus"
	"telemetrykit-go/services/config"
	"telemetrykit-go/types"
	"telemetrykit-go/x/timex"
)

const defaultRetry = 5 * time.Second

var (
	topicState    = bus.T("uplink", "state")
	topicConfig   = bus.T("config", "uplink")
	topicReadings = bus.T("telemetry", "reading", bus.Wildcard)
	topicStatus   = bus.T("status", "device")
)

// Dial opens the physical link for one session. Injected by platform code:
// the UART dialler on the device, net.Pipe in tests.
type Dial func(ctx context.Context, cfg types.UplinkConfig) (io.ReadWriteCloser, error)

var (
	dialMu   sync.RWMutex
	diallers = map[string]Dial{}
)

// RegisterDial adds a transport by name ("uart", "pipe", ...).
func RegisterDial(name string, d Dial) {
	dialMu.Lock()
	diallers[name] = d
	dialMu.Unlock()
}

func dialFor(name string) (Dial, bool) {
	dialMu.RLock()
	d, ok := diallers[name]
	dialMu.RUnlock()
	return d, ok
}

type Service struct {
	conn *bus.Connection
}

// Start launches the uplink supervisor. It returns immediately; the link
// runs until ctx is cancelled.
func Start(ctx context.Context, conn *bus.Connection) *Service {
	s := &Service{conn: conn}
	go s.run(ctx)
	return s
}

// run waits for configuration, then supervises the link with a fixed retry
// delay between sessions. Dropped sessions mark the state down; the
// telemetry loop reacts by degrading the device status.
func (s *Service) run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	defer s.conn.Unsubscribe(cfgSub)

	s.publishState(types.LinkDown, "")

	var cfg types.UplinkConfig
	select {
	case <-ctx.Done():
		return
	case msg := <-cfgSub.Channel():
		c, ok := config.DecodeUplink(msg.Payload)
		if !ok || c.Transport == "" {
			println("Error: uplink: bad config payload")
			return
		}
		cfg = c
	}

	dial, ok := dialFor(cfg.Transport)
	if !ok {
		println("Error: uplink: unknown transport", cfg.Transport)
		s.publishState(types.LinkDown, "unknown transport")
		return
	}
	retry := timex.Ms(cfg.RetryMS, defaultRetry)

	for {
		if ctx.Err() != nil {
			return
		}
		rwc, err := dial(ctx, cfg)
		if err != nil {
			s.publishState(types.LinkDown, err.Error())
			if !sleep(ctx, retry) {
				return
			}
			continue
		}

		err = s.pump(ctx, rwc)
		_ = rwc.Close()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.publishState(types.LinkDown, err.Error())
		} else {
			s.publishState(types.LinkDown, "")
		}
		if !sleep(ctx, retry) {
			return
		}
	}
}

// pump owns one live session: forwards readings and status out, routes
// inbound pub frames onto the local bus, answers pings. Returns when the
// link errors or ctx is cancelled (nil error).
func (s *Service) pump(ctx context.Context, rwc io.ReadWriteCloser) error {
	readSub := s.conn.Subscribe(topicReadings)
	defer s.conn.Unsubscribe(readSub)
	statSub := s.conn.Subscribe(topicStatus)
	defer s.conn.Unsubscribe(statSub)

	// Announce up only once forwarding is actually in place.
	s.publishState(types.LinkUp, "")

	wr := NewFrameWriter(rwc)
	rd := NewFrameReader(rwc)

	inbound := make(chan Frame, 8)
	errCh := make(chan error, 1)
	go func() {
		for {
			f, err := rd.ReadFrame()
			if err != nil {
				errCh <- err
				return
			}
			select {
			case inbound <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	ping := time.NewTicker(5 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = wr.WriteFrame(Frame{Type: FrameClose})
			return nil
		case err := <-errCh:
			return err
		case msg := <-readSub.Channel():
			if err := writePub(wr, msg); err != nil {
				return err
			}
		case msg := <-statSub.Channel():
			if err := writePub(wr, msg); err != nil {
				return err
			}
		case f := <-inbound:
			s.handleInbound(wr, f)
		case <-ping.C:
			if err := wr.WriteFrame(Frame{Type: FramePing}); err != nil {
				return err
			}
		}
	}
}

func (s *Service) handleInbound(wr *FrameWriter, f Frame) {
	switch f.Type {
	case FramePing:
		_ = wr.WriteFrame(Frame{Type: FramePong})
	case FramePong:
		// Link alive; nothing to record yet.
	case FramePub:
		var body PubBody
		if err := json.Unmarshal(f.Payload, &body); err != nil || len(body.Topic) == 0 {
			println("Error: uplink: bad inbound pub frame")
			return
		}
		s.conn.Publish(&bus.Message{Topic: bus.Topic(body.Topic), Payload: body.Payload})
	}
}

func writePub(wr *FrameWriter, msg *bus.Message) error {
	body, err := json.Marshal(PubBody{
		Topic:   []string(msg.Topic),
		Payload: msg.Payload,
		TsMs:    timex.NowMs(),
	})
	if err != nil {
		println("Error: uplink: encode:", err.Error())
		return nil // a single unencodable payload should not drop the link
	}
	return wr.WriteFrame(Frame{Type: FramePub, Payload: body})
}

func (s *Service) publishState(link types.LinkState, errStr string) {
	s.conn.Publish(&bus.Message{
		Topic:    topicState,
		Payload:  types.UplinkState{Link: link, TS: timex.NowMs(), Error: errStr},
		Retained: true,
	})
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
