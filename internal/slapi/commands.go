package slapi

import (
	"strconv"
	"strings"

	"github.com/rockcat/slapi-bridge/internal/transport"
)

func (s *Session) ok() {
	s.writeRaw([]byte("OK" + crlf))
}

func (s *Session) slapiError(code, msg string) {
	entry := s.log.WithField("code", code)
	if strings.HasPrefix(code, "5") {
		entry.Error(msg)
	} else {
		entry.Warn(msg)
	}
	s.writeRaw([]byte("SLAPI/1.0 " + code + " " + msg + crlf))
}

// handleCommand dispatches a non-HTTP line to the matching SLAPI command.
// Every branch either applies its change to s.state atomically (it is
// validated before any mutation) or replies with an error and leaves state
// untouched: 400 for bad input, 500 when the transport rejects a SERIAL
// reconfiguration.
func (s *Session) handleCommand(line string) {
	parts := strings.SplitN(line, " ", 2)
	cmd := parts[0]

	switch cmd {
	case "DOMAIN":
		if len(parts) < 2 {
			s.slapiError("400", "DOMAIN requires an argument")
			return
		}
		s.state.Domain = strings.TrimSpace(parts[1])
		s.ok()

	case "RESPONSE":
		s.handleResponse(parts)

	case "FLOW":
		if len(parts) < 2 {
			s.slapiError("400", "FLOW requires an argument")
			return
		}
		s.state.Flow = FlowMode(strings.TrimSpace(parts[1]))
		s.ok()

	case "SERIAL":
		s.handleSerial(parts)

	case "HEADERS":
		s.handleHeaders(parts)

	case "HTTPS":
		s.state.UseSSL = SSLForceHTTPS
		s.ok()

	case "HTTP":
		s.state.UseSSL = SSLForceHTTP
		s.ok()

	default:
		s.slapiError("400", "Unknown command")
	}
}

func (s *Session) handleResponse(parts []string) {
	if len(parts) < 2 {
		s.slapiError("400", "RESPONSE requires an argument")
		return
	}
	args := strings.SplitN(parts[1], " ", 2)
	switch strings.TrimSpace(args[0]) {
	case "HDRS_ON":
		s.state.SendHeaders = true
		s.ok()
	case "HDRS_OFF":
		s.state.SendHeaders = false
		s.ok()
	case "JSONPATH":
		if len(args) == 1 {
			s.state.JSONPath = ""
		} else {
			s.state.JSONPath = strings.TrimSpace(args[1])
		}
		s.ok()
	default:
		s.slapiError("400", "Unknown RESPONSE subcommand")
	}
}

func (s *Session) handleSerial(parts []string) {
	if len(parts) < 2 {
		s.slapiError("400", "SERIAL requires an argument")
		return
	}
	cfg := strings.Split(parts[1], ",")
	if len(cfg) != 4 {
		s.slapiError("400", "SERIAL requires baud,bits,parity,stop")
		return
	}
	baud, err := strconv.Atoi(cfg[0])
	if err != nil {
		s.slapiError("400", "invalid baud rate")
		return
	}
	bits, err := strconv.Atoi(cfg[1])
	if err != nil {
		s.slapiError("400", "invalid data bits")
		return
	}
	stop, err := strconv.Atoi(cfg[3])
	if err != nil {
		s.slapiError("400", "invalid stop bits")
		return
	}
	parity := transport.ParityNone
	switch cfg[2] {
	case "E":
		parity = transport.ParityEven
	case "O":
		parity = transport.ParityOdd
	}

	if err := s.transport.Init(transport.Options{
		BaudRate: baud,
		DataBits: bits,
		Parity:   parity,
		StopBits: stop,
	}); err != nil {
		s.slapiError("500", "reconfiguring transport: "+err.Error())
		return
	}
	s.ok()
}

func (s *Session) handleHeaders(parts []string) {
	if len(parts) == 1 {
		if len(s.state.DefaultHeaders) == 0 {
			s.writeRaw([]byte("(no default headers)" + crlf))
			return
		}
		for k, v := range s.state.DefaultHeaders {
			s.writeRaw([]byte(k + ": " + v + crlf))
		}
		return
	}

	args := strings.SplitN(parts[1], " ", 2)
	switch {
	case args[0] == "CLEAR":
		s.state.DefaultHeaders = make(map[string]string)
		s.ok()
	case len(args) >= 2:
		s.state.setHeader(args[0], args[1])
		s.ok()
	default:
		s.slapiError("400", "HEADERS requires header name and value")
	}
}
