// Package netstats instruments outbound relay connections: byte counters,
// first-I/O timestamps, and a TCP_INFO snapshot taken at open and close.
package netstats

import (
	"net"
	"strconv"
	"time"

	"github.com/rockcat/slapi-bridge/internal/netstats/tcpinfo"
)

const (
	Opened = 0
	Closed = 1
)

// ReportFn is invoked once when a wrapped connection opens and once when it
// closes, so callers can log or export a summary of the completed relay leg.
type ReportFn func(c *Conn, state int)

// Conn wraps a net.Conn used for a single SLAPI relay leg, tracking byte
// counts, first-I/O timestamps and, on Linux, TCP_INFO at open and close.
type Conn struct {
	net.Conn

	report func(*Conn, int)

	OpenedAt    time.Time
	ClosedAt    time.Time
	FirstReadAt time.Time
	FirstWriteAt time.Time

	SentBytes int64
	RecvBytes int64
	SentErr   error
	RecvErr   error

	OpenedInfo *tcpinfo.Info
	ClosedInfo *tcpinfo.Info
	InfoErr    error
}

// WrapConn wraps ncon, gathers an opening TCP_INFO snapshot and reports the
// open event through report (which may be nil).
func WrapConn(ncon net.Conn, report ReportFn) *Conn {
	c := &Conn{
		Conn:     ncon,
		report:   report,
		OpenedAt: time.Now(),
	}
	c.gather(Opened)
	return c
}

func (c *Conn) gather(state int) {
	if !tcpinfo.Supported() {
		if c.report != nil {
			c.report(c, state)
		}
		return
	}

	tcpConn, ok := c.Conn.(*net.TCPConn)
	if ok {
		rawConn, err := tcpConn.SyscallConn()
		if err != nil {
			c.InfoErr = err
		} else {
			var info *tcpinfo.Info
			if ctlErr := rawConn.Control(func(fd uintptr) {
				info, err = tcpinfo.GetTCPInfo(fd)
			}); ctlErr != nil {
				c.InfoErr = ctlErr
			} else if err != nil {
				c.InfoErr = err
			} else if state == Opened {
				c.OpenedInfo = info
			} else {
				c.ClosedInfo = info
			}
		}
	}

	if c.report != nil {
		c.report(c, state)
	}
}

// Close gathers a closing TCP_INFO snapshot, reports the close event and
// closes the underlying connection.
func (c *Conn) Close() error {
	c.ClosedAt = time.Now()
	c.gather(Closed)
	return c.Conn.Close()
}

func (c *Conn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	if err == nil && n > 0 && c.FirstReadAt.IsZero() {
		c.FirstReadAt = time.Now()
	}
	c.RecvBytes += int64(n)
	if netErr, ok := err.(net.Error); ok && !netErr.Timeout() {
		c.RecvErr = err
	} else if err != nil && !ok {
		c.RecvErr = err
	}
	return n, err
}

func (c *Conn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	if err == nil && n > 0 && c.FirstWriteAt.IsZero() {
		c.FirstWriteAt = time.Now()
	}
	c.SentBytes += int64(n)
	if netErr, ok := err.(net.Error); ok && !netErr.Timeout() {
		c.SentErr = err
	} else if err != nil && !ok {
		c.SentErr = err
	}
	return n, err
}

// Warnings summarizes anything about the connection worth a relay log line:
// nonzero retransmits at open or close.
func (c *Conn) Warnings() []string {
	var warns []string
	for _, info := range []*tcpinfo.Info{c.OpenedInfo, c.ClosedInfo} {
		if info == nil {
			continue
		}
		if info.Retransmits > 0 {
			warns = append(warns, "retransmits="+strconv.Itoa(int(info.Retransmits)))
		}
	}
	return warns
}

// Duration returns how long the connection was open. Call after Close.
func (c *Conn) Duration() time.Duration {
	if c.ClosedAt.IsZero() {
		return time.Since(c.OpenedAt)
	}
	return c.ClosedAt.Sub(c.OpenedAt)
}
