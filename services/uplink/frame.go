// services/uplink/frame.go
package uplink

import (
	"fmt"
	"io"
)

// Wire framing for the device<->gateway link: 1 type byte, 2 length bytes,
// payload. Pub payloads are JSON-encoded PubBody documents. The gateway side
// (cmd/kit-gateway) shares this codec.

const (
	FramePing  byte = 0x01
	FramePong  byte = 0x02
	FramePub   byte = 0x10
	FrameClose byte = 0x7f
)

type Frame struct {
	Type    byte
	Payload []byte
}

// PubBody carries one bus message across the link.
type PubBody struct {
	Topic   []string `json:"topic"`
	Payload any      `json:"payload"`
	TsMs    int64    `json:"ts_ms"`
}

type FrameReader struct{ r io.Reader }
type FrameWriter struct{ w io.Writer }

func NewFrameReader(r io.Reader) *FrameReader { return &FrameReader{r: r} }
func NewFrameWriter(w io.Writer) *FrameWriter { return &FrameWriter{w: w} }

func (fr *FrameReader) ReadFrame() (Frame, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		return Frame{}, err
	}
	n := int(hdr[1])<<8 | int(hdr[2])
	var buf []byte
	if n > 0 {
		buf = make([]byte, n)
		if _, err := io.ReadFull(fr.r, buf); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Type: hdr[0], Payload: buf}, nil
}

func (fw *FrameWriter) WriteFrame(f Frame) error {
	if len(f.Payload) > 0xFFFF {
		return fmt.Errorf("frame too large: %d", len(f.Payload))
	}
	hdr := []byte{f.Type, byte(len(f.Payload) >> 8), byte(len(f.Payload))}
	if _, err := fw.w.Write(hdr); err != nil {
		return err
	}
	if len(f.Payload) > 0 {
		_, err := fw.w.Write(f.Payload)
		return err
	}
	return nil
}
