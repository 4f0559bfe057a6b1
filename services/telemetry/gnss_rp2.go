// services/telemetry/gnss_rp2.go
//go:build rp2040 || rp2350

package telemetry

import (
	"context"
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/gps"

	"telemetrykit-go/errcode"
	"telemetrykit-go/types"
)

// NMEA sentences are capped at 82 characters including framing.
const nmeaMaxLen = 82

// StartGNSS opens the configured UART, parses the NMEA stream and feeds the
// tracker. It returns once the reader goroutine is running.
func StartGNSS(ctx context.Context, cfg types.TelemetryConfig, tr *Tracker) error {
	const op = "telemetry.StartGNSS"

	var hw *uartx.UART
	tx, rx := machine.UART1_TX_PIN, machine.UART1_RX_PIN
	switch cfg.GNSSUART {
	case "uart0":
		hw = uartx.UART0
		tx, rx = machine.UART0_TX_PIN, machine.UART0_RX_PIN
	case "", "uart1":
		hw = uartx.UART1
	default:
		return &errcode.E{C: errcode.Unsupported, Op: op, Msg: "uart " + cfg.GNSSUART}
	}
	baud := cfg.GNSSBaud
	if baud == 0 {
		baud = 9600
	}
	if err := hw.Configure(uartx.UARTConfig{BaudRate: uint32(baud), TX: tx, RX: rx}); err != nil {
		return &errcode.E{C: errcode.Error, Op: op, Err: err}
	}

	go feed(ctx, hw, tr)
	return nil
}

func feed(ctx context.Context, hw *uartx.UART, tr *Tracker) {
	parser := gps.NewParser()
	line := make([]byte, 0, nmeaMaxLen)
	buf := make([]byte, 64)

	for ctx.Err() == nil {
		n, err := hw.RecvSomeContext(ctx, buf)
		if err != nil {
			return
		}
		for _, b := range buf[:n] {
			switch b {
			case '\r':
				// dropped, sentences end \r\n
			case '\n':
				if len(line) > 0 && line[0] == '$' {
					handleSentence(&parser, string(line), tr)
				}
				line = line[:0]
			default:
				if len(line) < nmeaMaxLen {
					line = append(line, b)
				}
			}
		}
	}
}

func handleSentence(parser *gps.Parser, sentence string, tr *Tracker) {
	fix, err := parser.Parse(sentence)
	if err != nil {
		// Non-position sentences and checksum noise are routine, skip.
		return
	}
	tr.Update(types.PositionValue{
		LatUDeg: int32(fix.Latitude * 1e6),
		LonUDeg: int32(fix.Longitude * 1e6),
		AltM:    fix.Altitude,
		Sats:    fix.Satellites,
	}, fix.Valid)
}
