// Package aht20 drives the AHT20 temperature/humidity sensor over I2C.
// Two-phase API: Trigger starts a conversion, Collect fetches it once ready.
// Read wraps both with bounded polling.
//
// The I2C bus must perform a write followed by a repeated-start read when
// both w and r are given, without releasing the bus.
//
// No floating point: results come back fixed-point, tenths of a degree and
// hundredths of a percent.
package aht20

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

const Address = 0x38

const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

var (
	ErrTimeout  = errors.New("aht20: timeout")
	ErrNotReady = errors.New("aht20: not ready")
)

const (
	pollInterval   = 15 * time.Millisecond
	collectTimeout = 250 * time.Millisecond
)

// Device wraps an I2C connection to an AHT20.
type Device struct {
	bus     drivers.I2C
	Address uint16
	buf     [7]byte
}

// New creates the device handle. The I2C bus must already be configured;
// the hardware is not touched until Configure.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure initialises and calibrates the sensor if it has not been already.
func (d *Device) Configure() {
	st, _ := d.Status()
	if st&statusCalibrated != 0 {
		return
	}
	// Tolerate devices that do not ACK the init immediately.
	_ = d.bus.Tx(d.Address, []byte{cmdInitialize, 0x08, 0x00}, nil)
	time.Sleep(10 * time.Millisecond)
}

// Reset issues a soft reset. Give the device ~20ms before the next command.
func (d *Device) Reset() {
	_ = d.bus.Tx(d.Address, []byte{cmdSoftReset}, nil)
}

func (d *Device) Status() (byte, error) {
	data := []byte{0}
	if err := d.bus.Tx(d.Address, []byte{cmdStatus}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// Trigger starts a measurement, a quick register write with no blocking.
// Conversion takes roughly 80ms.
func (d *Device) Trigger() error {
	return d.bus.Tx(d.Address, []byte{cmdTrigger, 0x33, 0x00}, nil)
}

// Collect reads one measurement. Returns ErrNotReady while the conversion
// is still running.
func (d *Device) Collect(out *Sample) error {
	data := d.buf[:]
	if err := d.bus.Tx(d.Address, nil, data); err != nil {
		return err
	}
	if (data[0]&statusCalibrated) == 0 || (data[0]&statusBusy) != 0 {
		return ErrNotReady
	}
	out.RawHumidity = (uint32(data[1]) << 12) | (uint32(data[2]) << 4) | (uint32(data[3]) >> 4)
	out.RawTemp = (uint32(data[3]&0x0F) << 16) | (uint32(data[4]) << 8) | uint32(data[5])
	return nil
}

// Read performs a full cycle: Trigger then poll Collect until it succeeds
// or the timeout elapses.
func (d *Device) Read(out *Sample) error {
	if err := d.Trigger(); err != nil {
		return err
	}
	deadline := time.Now().Add(collectTimeout)
	for {
		err := d.Collect(out)
		switch err {
		case nil:
			return nil
		case ErrNotReady:
			if time.Now().After(deadline) {
				return ErrTimeout
			}
			time.Sleep(pollInterval)
		default:
			return err
		}
	}
}

// Sample holds one raw measurement.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

// DeciCelsius returns tenths of a degree C.
func (s Sample) DeciCelsius() int32 {
	return ((int32(s.RawTemp) * 2000) / 0x100000) - 500
}

// CentiRelHumidity returns hundredths of a percent RH.
func (s Sample) CentiRelHumidity() int32 {
	return (int32(s.RawHumidity) * 10000) / 0x100000
}
