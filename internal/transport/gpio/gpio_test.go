package gpio

import (
	"sync"
	"testing"
	"time"

	"periph.io/x/periph/conn/gpio"
)

// fakePin is a minimal gpio.PinIO for exercising the handshake helpers
// without real hardware.
type fakePin struct {
	name string

	mu    sync.Mutex
	level gpio.Level
	pull  gpio.Pull
}

func (p *fakePin) String() string      { return p.name }
func (p *fakePin) Number() int         { return -1 }
func (p *fakePin) Function() string    { return "" }

func (p *fakePin) In(pull gpio.Pull, _ gpio.Edge) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pull = pull
	return nil
}

func (p *fakePin) Read() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *fakePin) WaitForEdge(time.Duration) bool { return false }

func (p *fakePin) Pull() gpio.Pull {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pull
}

func (p *fakePin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = l
	return nil
}

func (p *fakePin) PWM(duty int) error { return nil }

func (p *fakePin) setLevel(l gpio.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = l
}

var _ gpio.PinIO = (*fakePin)(nil)

func TestWaitUntilLevelSucceedsImmediately(t *testing.T) {
	pin := &fakePin{name: "p", level: gpio.High}
	if err := waitUntilLevel(pin, gpio.High, time.Second, "TEST"); err != nil {
		t.Fatalf("waitUntilLevel: %v", err)
	}
}

func TestWaitUntilLevelTimesOut(t *testing.T) {
	pin := &fakePin{name: "p", level: gpio.Low}
	err := waitUntilLevel(pin, gpio.High, 20*time.Millisecond, "TEST")
	if err == nil {
		t.Fatal("waitUntilLevel: want timeout error, got nil")
	}
}

func TestWaitUntilLevelObservesFlip(t *testing.T) {
	pin := &fakePin{name: "p", level: gpio.Low}
	go func() {
		time.Sleep(5 * time.Millisecond)
		pin.setLevel(gpio.High)
	}()
	if err := waitUntilLevel(pin, gpio.High, time.Second, "TEST"); err != nil {
		t.Fatalf("waitUntilLevel: %v", err)
	}
}

func TestSplitJoinNibblesRoundTrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		high, low := splitNibbles(byte(b))
		if got := joinNibbles(high, low); got != byte(b) {
			t.Fatalf("splitNibbles/joinNibbles(%d) round-trip got %d", b, got)
		}
		if high > 0x0F || low > 0x0F {
			t.Fatalf("splitNibbles(%d) = %d, %d: nibble out of range", b, high, low)
		}
	}
}

func TestLevelBitRoundTrip(t *testing.T) {
	for bit := uint(0); bit < 8; bit++ {
		if got := bitOfLevel(levelOfBit(1<<bit, bit)); got != 1 {
			t.Fatalf("bit %d: want set, got clear", bit)
		}
		if got := bitOfLevel(levelOfBit(0, bit)); got != 0 {
			t.Fatalf("bit %d: want clear, got set", bit)
		}
	}
}
