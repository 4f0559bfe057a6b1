// services/uplink/uart_rp2.go
//go:build rp2040 || rp2350

package uplink

import (
	"context"
	"io"

	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"telemetrykit-go/types"
)

func init() { RegisterDial("uart", uartDial) }

// uartDial opens the configured UART with board-default pins. "Dialling" a
// UART cannot fail beyond configuration; session loss surfaces later as
// read/write errors.
func uartDial(ctx context.Context, cfg types.UplinkConfig) (io.ReadWriteCloser, error) {
	var hw *uartx.UART
	var tx, rx machine.Pin
	switch cfg.UART {
	case "uart1":
		hw = uartx.UART1
		tx, rx = machine.UART1_TX_PIN, machine.UART1_RX_PIN
	default:
		hw = uartx.UART0
		tx, rx = machine.UART0_TX_PIN, machine.UART0_RX_PIN
	}
	baud := uint32(cfg.Baud)
	if baud == 0 {
		baud = 115200
	}
	if err := hw.Configure(uartx.UARTConfig{BaudRate: baud, TX: tx, RX: rx}); err != nil {
		return nil, err
	}
	return &uartLink{ctx: ctx, u: hw}, nil
}

// uartLink adapts uartx to io.ReadWriteCloser. Reads block until at least
// one byte arrives or the session context ends.
type uartLink struct {
	ctx context.Context
	u   *uartx.UART
}

func (l *uartLink) Read(p []byte) (int, error)  { return l.u.RecvSomeContext(l.ctx, p) }
func (l *uartLink) Write(p []byte) (int, error) { return l.u.Write(p) }
func (l *uartLink) Close() error                { return nil }
