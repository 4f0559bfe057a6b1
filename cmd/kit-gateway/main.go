// kit-gateway bridges a kit's framed serial uplink to an MQTT broker.
// Readings and status frames arriving from the device are republished as
// JSON under <prefix>/<topic...>; MQTT messages under <prefix>/command/# are
// sent back down the wire.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/lmittmann/tint"

	"telemetrykit-go/services/uplink"
)

type options struct {
	serial   string
	broker   string
	clientID string
	prefix   string
	logLevel string
}

func main() {
	var opts options
	flag.StringVar(&opts.serial, "serial", "/dev/ttyACM0", "serial device carrying the kit uplink")
	flag.StringVar(&opts.broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.StringVar(&opts.clientID, "client-id", "kit-gateway", "MQTT client ID")
	flag.StringVar(&opts.prefix, "prefix", "kit", "MQTT topic prefix")
	flag.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.Parse()

	logger := newLogger(opts.logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	h := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	})
	return slog.New(h).With("app", "kit-gateway")
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	client, err := connectMQTT(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	// The serial device is expected to be configured (baud, raw mode)
	// before the gateway starts, e.g. via stty.
	port, err := os.OpenFile(opts.serial, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open serial: %w", err)
	}
	defer port.Close()
	logger.Info("serial open", "device", opts.serial)

	return bridge(ctx, port, client, opts.prefix, logger)
}

func connectMQTT(ctx context.Context, opts options, logger *slog.Logger) (mqtt.Client, error) {
	mopts := mqtt.NewClientOptions()
	mopts.AddBroker(opts.broker)
	mopts.SetClientID(opts.clientID)
	mopts.SetCleanSession(true)
	mopts.SetAutoReconnect(true)
	mopts.SetConnectRetry(true)
	mopts.SetConnectRetryInterval(5 * time.Second)
	mopts.SetKeepAlive(30 * time.Second)
	mopts.SetPingTimeout(10 * time.Second)

	mopts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("mqtt connected", "broker", opts.broker)
	})
	mopts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(mopts)
	token := client.Connect()

	const poll = 200 * time.Millisecond
	for !token.WaitTimeout(poll) {
		if ctx.Err() != nil {
			client.Disconnect(0)
			return nil, ctx.Err()
		}
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return client, nil
}

// bridge pumps frames in both directions until the serial link errors or ctx
// is cancelled.
func bridge(ctx context.Context, port io.ReadWriteCloser, client mqtt.Client, prefix string, logger *slog.Logger) error {
	rd := uplink.NewFrameReader(port)
	wr := uplink.NewFrameWriter(port)

	// Downlink: MQTT commands become pub frames on the wire.
	downlink := make(chan uplink.Frame, 16)
	cmdTopic := prefix + "/command/#"
	token := client.Subscribe(cmdTopic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		f, err := commandFrame(prefix, msg)
		if err != nil {
			logger.Warn("dropping command", "topic", msg.Topic(), "error", err)
			return
		}
		select {
		case downlink <- f:
		default:
			logger.Warn("downlink queue full, dropping command", "topic", msg.Topic())
		}
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", cmdTopic, err)
	}
	logger.Info("bridging", "commands", cmdTopic)

	frames := make(chan uplink.Frame)
	errCh := make(chan error, 1)
	go func() {
		for {
			f, err := rd.ReadFrame()
			if err != nil {
				errCh <- err
				return
			}
			frames <- f
		}
	}()

	for {
		select {
		case <-ctx.Done():
			wr.WriteFrame(uplink.Frame{Type: uplink.FrameClose})
			return ctx.Err()
		case err := <-errCh:
			return fmt.Errorf("serial read: %w", err)
		case f := <-downlink:
			if err := wr.WriteFrame(f); err != nil {
				return fmt.Errorf("serial write: %w", err)
			}
		case f := <-frames:
			if err := handleFrame(wr, client, prefix, f, logger); err != nil {
				return err
			}
		}
	}
}

func handleFrame(wr *uplink.FrameWriter, client mqtt.Client, prefix string, f uplink.Frame, logger *slog.Logger) error {
	switch f.Type {
	case uplink.FramePing:
		return wr.WriteFrame(uplink.Frame{Type: uplink.FramePong})
	case uplink.FramePub:
		var body uplink.PubBody
		if err := json.Unmarshal(f.Payload, &body); err != nil {
			logger.Warn("bad pub frame", "error", err)
			return nil
		}
		topic := prefix + "/" + strings.Join(body.Topic, "/")
		logger.Debug("publishing", "topic", topic)
		client.Publish(topic, 1, false, f.Payload)
		return nil
	case uplink.FrameClose:
		return errors.New("device closed the link")
	default:
		logger.Debug("ignoring frame", "type", f.Type)
		return nil
	}
}

// commandFrame turns an MQTT command message into a pub frame addressed at
// the device's internal bus, e.g. <prefix>/command/restart -> command/restart.
func commandFrame(prefix string, msg mqtt.Message) (uplink.Frame, error) {
	rel := strings.TrimPrefix(msg.Topic(), prefix+"/")
	segs := strings.Split(rel, "/")
	if len(segs) < 2 || segs[0] != "command" {
		return uplink.Frame{}, errors.New("not a command topic")
	}

	var payload any
	if len(msg.Payload()) > 0 {
		if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
			return uplink.Frame{}, fmt.Errorf("payload: %w", err)
		}
	}

	raw, err := json.Marshal(uplink.PubBody{
		Topic:   segs,
		Payload: payload,
		TsMs:    time.Now().UnixMilli(),
	})
	if err != nil {
		return uplink.Frame{}, err
	}
	return uplink.Frame{Type: uplink.FramePub, Payload: raw}, nil
}
