package slapi

import "github.com/sirupsen/logrus"

// readLine and writeRaw are the session's only data paths to and from the
// transport: every command reply, relay byte, and incoming request line
// passes through one of these two.

// writeRaw writes data to the transport a chunk at a time, busy-waiting
// on s.paused whenever XON/XOFF flow control is active. Short writes are
// looped exactly like any io.Writer contract requires.
func (s *Session) writeRaw(data []byte) {
	if s.state.Flow == FlowXONXOFF {
		for s.paused {
		}
	}
	written := 0
	for written < len(data) {
		n, err := s.transport.Write(data[written:])
		if err != nil {
			s.log.WithError(err).Error("transport write failed")
			return
		}
		if n == 0 {
			continue
		}
		written += n
	}
}

// readLine reads bytes one at a time until a CRLF-terminated line is
// assembled, stripping XON/XOFF control bytes when flow control is
// active and logging everything else at debug level (with the bearer
// token on a HEADERS Authorization line redacted).
func (s *Session) readLine() (string, error) {
	var buf []byte
	hide := false
	one := make([]byte, 1)

	for {
		n, err := s.transport.Read(one)
		if err != nil {
			return "", err
		}
		if n == 0 {
			continue
		}
		b := one[0]

		if string(buf) == headersAuthBearerPrefix {
			hide = true
		}

		if hide && b != '\r' && b != '\n' {
			s.debugByte('*')
		} else {
			s.debugByte(b)
		}

		if s.state.Flow == FlowXONXOFF {
			if b == xoff {
				s.paused = true
				continue
			}
			if b == xon {
				s.paused = false
				continue
			}
		}

		buf = append(buf, b)
		if len(buf) >= 2 && buf[len(buf)-2] == '\r' && buf[len(buf)-1] == '\n' {
			return string(buf[:len(buf)-2]), nil
		}
	}
}

func (s *Session) debugByte(b byte) {
	if !s.log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	s.log.Debugf("%c", b)
}
