package slapi

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestSession(script string) (*Session, *fakeTransport) {
	ft := newFakeTransport(script)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewSession(ft, log, nil), ft
}

func TestReadLineStripsCRLF(t *testing.T) {
	s, _ := newTestSession("DOMAIN example.com\r\n")
	line, err := s.readLine()
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if line != "DOMAIN example.com" {
		t.Errorf("readLine = %q, want %q", line, "DOMAIN example.com")
	}
}

func TestReadLineInterceptsXONXOFF(t *testing.T) {
	s, _ := newTestSession("AB\x13CD\x11EF\r\n")
	s.state.Flow = FlowXONXOFF
	line, err := s.readLine()
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if line != "ABCDEF" {
		t.Errorf("readLine = %q, want %q (XON/XOFF bytes should be stripped)", line, "ABCDEF")
	}
}

func TestReadLinePausesOnXOFF(t *testing.T) {
	s, _ := newTestSession("\x13\r\n")
	s.state.Flow = FlowXONXOFF
	if _, err := s.readLine(); err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if !s.paused {
		t.Error("expected session to remain paused after XOFF with no following XON")
	}
}

func TestWriteRawWritesFullBuffer(t *testing.T) {
	s, ft := newTestSession("")
	s.writeRaw([]byte("hello"))
	if ft.Out.String() != "hello" {
		t.Errorf("Out = %q, want %q", ft.Out.String(), "hello")
	}
}
