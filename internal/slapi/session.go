package slapi

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rockcat/slapi-bridge/internal/metrics"
	"github.com/rockcat/slapi-bridge/internal/transport"
)

const (
	crlf       = "\r\n"
	doubleCRLF = "\r\n\r\n"
)

var (
	soh  = []byte{0x01}
	stx  = []byte{0x02}
	eot  = []byte{0x04}
	xon  = byte(0x11)
	xoff = byte(0x13)
)

const headersAuthBearerPrefix = "HEADERS Authorization Bearer "

var httpMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true, "HEAD": true,
	"OPTIONS": true, "TRACE": true, "CONNECT": true, "PATCH": true,
}

// Session owns the single control loop that reads lines off transport,
// dispatches SLAPI commands, and relays HTTP requests.
type Session struct {
	transport transport.Transport
	state     *State
	log       *logrus.Logger

	paused bool

	collector *metrics.RelayCollector
}

// NewSession builds a session bound to t. log must not be nil; collector
// may be nil to disable Prometheus export of relay connections.
func NewSession(t transport.Transport, log *logrus.Logger, collector *metrics.RelayCollector) *Session {
	return &Session{
		transport: t,
		state:     NewState(),
		log:       log,
		collector: collector,
	}
}

// Start runs the control loop until the transport fails.
// It never returns on success; it returns only when the transport itself
// reports a fatal error.
func (s *Session) Start() error {
	s.log.Info("slapi session starting")
	s.writeRaw([]byte("SLAPI/1.0 READY" + crlf))

	for {
		if err := s.transport.SetReadMode(); err != nil {
			return fmt.Errorf("slapi: set read mode: %w", err)
		}
		line, err := s.readLine()
		if err != nil {
			return fmt.Errorf("slapi: read line: %w", err)
		}
		if line == "" {
			continue
		}

		method := line
		if idx := strings.IndexByte(line, ' '); idx >= 0 {
			method = line[:idx]
		}

		if httpMethods[method] {
			s.handleHTTPLine(line)
		} else {
			s.handleCommand(line)
		}
	}
}

func (s *Session) handleHTTPLine(line string) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) != 3 {
		s.slapiError("400", fmt.Sprintf("malformed request line: %q", line))
		return
	}
	method, path := fields[0], fields[1]

	headers, body, err := s.readHTTPRequest(method)
	if err != nil {
		s.slapiError("400", err.Error())
		return
	}

	if err := s.transport.SetWriteMode(); err != nil {
		s.log.WithError(err).Error("set write mode")
		return
	}
	s.sendHTTP(method, path, headers, body, "", 0)
}
