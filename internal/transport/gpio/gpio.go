// Package gpio implements the SLAPI bit-banged parallel transport (4-bit
// nibble or 8-bit byte wide) on top of periph.io/x/periph's GPIO pins.
package gpio

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

// Config names the pins and timing parameters for a parallel link. Pin
// names are resolved once, at link construction, via gpioreg.ByName.
type Config struct {
	DataPins      []string
	ValidPin      string
	AckPin        string
	Timeout       time.Duration // 0 disables the timeout and waits forever
	MinHoldTime   time.Duration
}

// link holds the resolved pins shared by the 4-bit and 8-bit transports.
// VALID is driven by the writer of the current nibble/byte and read by the
// other side; ACK is the mirror image. Both idle low.
type link struct {
	data    []gpio.PinIO
	valid   gpio.PinIO
	ack     gpio.PinIO
	timeout time.Duration
	minHold time.Duration
}

func resolvePins(cfg Config) (*link, error) {
	if len(cfg.DataPins) == 0 {
		return nil, fmt.Errorf("gpio: no data pins configured")
	}
	data := make([]gpio.PinIO, len(cfg.DataPins))
	for i, name := range cfg.DataPins {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("gpio: unknown data pin %q", name)
		}
		data[i] = pin
	}
	validPin := gpioreg.ByName(cfg.ValidPin)
	if validPin == nil {
		return nil, fmt.Errorf("gpio: unknown VALID pin %q", cfg.ValidPin)
	}
	ackPin := gpioreg.ByName(cfg.AckPin)
	if ackPin == nil {
		return nil, fmt.Errorf("gpio: unknown ACK pin %q", cfg.AckPin)
	}
	return &link{
		data:    data,
		valid:   validPin,
		ack:     ackPin,
		timeout: cfg.Timeout,
		minHold: cfg.MinHoldTime,
	}, nil
}

// setDataOutput switches the data lines and VALID to outputs, idle low, and
// ACK to an input with a pull-up (mirrors the far side driving it low when
// idle). Called before every write so that line direction is always
// consistent with who is about to drive it.
func (l *link) setDataOutput() error {
	for _, pin := range l.data {
		if err := pin.Out(gpio.Low); err != nil {
			return fmt.Errorf("gpio: data pin %s to output: %w", pin, err)
		}
	}
	if err := l.ack.In(gpio.Up, gpio.None); err != nil {
		return fmt.Errorf("gpio: ack pin to input: %w", err)
	}
	if err := l.valid.Out(gpio.Low); err != nil {
		return fmt.Errorf("gpio: valid pin to output: %w", err)
	}
	return nil
}

// setDataInput switches the data lines and ACK to outputs/inputs for
// reading: data and VALID become inputs, ACK becomes an output idle low.
func (l *link) setDataInput() error {
	for _, pin := range l.data {
		if err := pin.In(gpio.Up, gpio.None); err != nil {
			return fmt.Errorf("gpio: data pin %s to input: %w", pin, err)
		}
	}
	if err := l.valid.In(gpio.Up, gpio.None); err != nil {
		return fmt.Errorf("gpio: valid pin to input: %w", err)
	}
	if err := l.ack.Out(gpio.Low); err != nil {
		return fmt.Errorf("gpio: ack pin to output: %w", err)
	}
	return nil
}

func (l *link) waitUntilValidIs(want gpio.Level) error {
	return waitUntilLevel(l.valid, want, l.timeout, "VALID")
}

func (l *link) waitUntilAckIs(want gpio.Level) error {
	return waitUntilLevel(l.ack, want, l.timeout, "ACK")
}

// waitUntilLevel busy-polls pin until it reads want, or until timeout
// elapses. timeout of 0 waits forever, matching the wire protocol's
// "0 disables the timeout" convention.
func waitUntilLevel(pin gpio.PinIn, want gpio.Level, timeout time.Duration, label string) error {
	if timeout == 0 {
		for pin.Read() != want {
		}
		return nil
	}
	deadline := time.Now().Add(timeout)
	for pin.Read() != want {
		if time.Now().After(deadline) {
			return fmt.Errorf("gpio: timeout waiting for %s to be %s", label, want)
		}
	}
	return nil
}

func (l *link) hold() {
	if l.minHold > 0 {
		time.Sleep(l.minHold)
	}
}

func levelOfBit(v, bit uint) gpio.Level {
	return (v>>bit)&1 == 1
}

func bitOfLevel(l gpio.Level) uint {
	if l {
		return 1
	}
	return 0
}
