package gpio

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"

	"github.com/rockcat/slapi-bridge/internal/transport"
)

// Byte8 is the 8-bit-wide parallel transport: one byte per VALID/ACK
// handshake, no nibble splitting.
type Byte8 struct {
	*link
}

// NewByte8 resolves cfg's pins (exactly 8 data lines) and returns a
// transport ready to read and write.
func NewByte8(cfg Config) (*Byte8, error) {
	if len(cfg.DataPins) != 8 {
		return nil, fmt.Errorf("gpio: 8bit mode requires 8 data pins, got %d", len(cfg.DataPins))
	}
	l, err := resolvePins(cfg)
	if err != nil {
		return nil, err
	}
	if err := l.setDataInput(); err != nil {
		return nil, err
	}
	return &Byte8{link: l}, nil
}

func (b8 *Byte8) writeByte(b byte) error {
	if err := b8.setDataOutput(); err != nil {
		return err
	}
	for i, pin := range b8.data {
		if err := pin.Out(levelOfBit(uint(b), uint(i))); err != nil {
			return err
		}
	}
	if err := b8.valid.Out(gpio.High); err != nil {
		return err
	}
	if err := b8.waitUntilAckIs(gpio.High); err != nil {
		return err
	}
	if err := b8.valid.Out(gpio.Low); err != nil {
		return err
	}
	return b8.waitUntilAckIs(gpio.Low)
}

func (b8 *Byte8) readByte() (byte, error) {
	if err := b8.setDataInput(); err != nil {
		return 0, err
	}
	if err := b8.waitUntilValidIs(gpio.High); err != nil {
		return 0, err
	}
	var v uint
	for i, pin := range b8.data {
		v |= bitOfLevel(pin.Read()) << uint(i)
	}
	if err := b8.ack.Out(gpio.High); err != nil {
		return 0, err
	}
	if err := b8.waitUntilValidIs(gpio.Low); err != nil {
		return 0, err
	}
	if err := b8.ack.Out(gpio.Low); err != nil {
		return 0, err
	}
	return byte(v), nil
}

func (b8 *Byte8) Read(b []byte) (int, error) {
	for i := range b {
		v, err := b8.readByte()
		if err != nil {
			return i, err
		}
		b[i] = v
	}
	return len(b), nil
}

func (b8 *Byte8) Write(b []byte) (int, error) {
	for i, v := range b {
		if err := b8.writeByte(v); err != nil {
			return i, err
		}
	}
	return len(b), nil
}

func (b8 *Byte8) Init(transport.Options) error { return nil }
func (b8 *Byte8) SetReadMode() error            { return b8.setDataInput() }
func (b8 *Byte8) SetWriteMode() error           { return b8.setDataOutput() }
func (b8 *Byte8) Close() error                  { return nil }

var _ transport.Transport = (*Byte8)(nil)
