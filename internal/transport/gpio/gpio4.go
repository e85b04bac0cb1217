package gpio

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"

	"github.com/rockcat/slapi-bridge/internal/transport"
)

// Nibble4 is the 4-bit-wide parallel transport: every byte crosses the
// wire as two nibbles, high nibble first.
type Nibble4 struct {
	*link
}

// NewNibble4 resolves cfg's pins (exactly 4 data lines) and returns a
// transport ready to read and write.
func NewNibble4(cfg Config) (*Nibble4, error) {
	if len(cfg.DataPins) != 4 {
		return nil, fmt.Errorf("gpio: 4bit mode requires 4 data pins, got %d", len(cfg.DataPins))
	}
	l, err := resolvePins(cfg)
	if err != nil {
		return nil, err
	}
	if err := l.setDataInput(); err != nil {
		return nil, err
	}
	return &Nibble4{link: l}, nil
}

func (n *Nibble4) writeNibble(nibble uint) error {
	if err := n.setDataOutput(); err != nil {
		return err
	}
	if err := n.waitUntilAckIs(gpio.Low); err != nil {
		return err
	}
	for i, pin := range n.data {
		if err := pin.Out(levelOfBit(nibble, uint(i))); err != nil {
			return err
		}
	}
	if err := n.valid.Out(gpio.High); err != nil {
		return err
	}
	if err := n.waitUntilAckIs(gpio.High); err != nil {
		return err
	}
	if err := n.valid.Out(gpio.Low); err != nil {
		return err
	}
	n.hold()
	return nil
}

func (n *Nibble4) readNibble() (uint, error) {
	if err := n.setDataInput(); err != nil {
		return 0, err
	}
	// Resync: only start a new nibble once VALID is observed low.
	if err := n.waitUntilValidIs(gpio.Low); err != nil {
		return 0, err
	}
	if err := n.waitUntilValidIs(gpio.High); err != nil {
		return 0, err
	}
	var nibble uint
	for i, pin := range n.data {
		nibble |= bitOfLevel(pin.Read()) << uint(i)
	}
	if err := n.ack.Out(gpio.High); err != nil {
		return 0, err
	}
	n.hold()
	if err := n.waitUntilValidIs(gpio.Low); err != nil {
		return 0, err
	}
	if err := n.ack.Out(gpio.Low); err != nil {
		return 0, err
	}
	n.hold()
	return nibble, nil
}

func splitNibbles(b byte) (high, low uint) {
	return uint(b>>4) & 0x0F, uint(b) & 0x0F
}

func joinNibbles(high, low uint) byte {
	return byte(high<<4 | low)
}

func (n *Nibble4) writeByte(b byte) error {
	high, low := splitNibbles(b)
	if err := n.writeNibble(high); err != nil {
		return err
	}
	return n.writeNibble(low)
}

func (n *Nibble4) readByte() (byte, error) {
	high, err := n.readNibble()
	if err != nil {
		return 0, err
	}
	low, err := n.readNibble()
	if err != nil {
		return 0, err
	}
	return joinNibbles(high, low), nil
}

func (n *Nibble4) Read(b []byte) (int, error) {
	for i := range b {
		v, err := n.readByte()
		if err != nil {
			return i, err
		}
		b[i] = v
	}
	return len(b), nil
}

func (n *Nibble4) Write(b []byte) (int, error) {
	for i, v := range b {
		if err := n.writeByte(v); err != nil {
			return i, err
		}
	}
	return len(b), nil
}

func (n *Nibble4) Init(transport.Options) error { return nil }
func (n *Nibble4) SetReadMode() error            { return n.setDataInput() }
func (n *Nibble4) SetWriteMode() error           { return n.setDataOutput() }
func (n *Nibble4) Close() error                  { return nil }

var _ transport.Transport = (*Nibble4)(nil)
