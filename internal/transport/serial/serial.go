// Package serial implements the SLAPI UART transport on top of
// daedaluz/goserial's termios ioctl wrappers.
package serial

import (
	"fmt"

	goserial "github.com/daedaluz/goserial"

	"github.com/rockcat/slapi-bridge/internal/transport"
)

var baudRates = map[int]goserial.CFlag{
	50:      goserial.B50,
	75:      goserial.B75,
	110:     goserial.B110,
	134:     goserial.B134,
	150:     goserial.B150,
	200:     goserial.B200,
	300:     goserial.B300,
	600:     goserial.B600,
	1200:    goserial.B1200,
	1800:    goserial.B1800,
	2400:    goserial.B2400,
	4800:    goserial.B4800,
	9600:    goserial.B9600,
	19200:   goserial.B19200,
	38400:   goserial.B38400,
	57600:   goserial.B57600,
	115200:  goserial.B115200,
	230400:  goserial.B230400,
	460800:  goserial.B460800,
	921600:  goserial.B921600,
	1000000: goserial.B1000000,
}

var dataBits = map[int]goserial.CFlag{
	5: goserial.CS5,
	6: goserial.CS6,
	7: goserial.CS7,
	8: goserial.CS8,
}

func cflagForBaud(rate int) (goserial.CFlag, error) {
	baud, ok := baudRates[rate]
	if !ok {
		return 0, fmt.Errorf("serial: unsupported baud rate %d", rate)
	}
	return baud, nil
}

func cflagForDataBits(bits int) goserial.CFlag {
	if flag, ok := dataBits[bits]; ok {
		return flag
	}
	return goserial.CS8
}

// Port is the UART SLAPI transport. It is full-duplex, so SetReadMode and
// SetWriteMode are no-ops; they exist only to satisfy transport.Transport.
type Port struct {
	path string
	port *goserial.Port
}

// Open opens the character device at path and applies opts.
func Open(path string, opts transport.Options) (*Port, error) {
	p, err := goserial.Open(path, nil)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", path, err)
	}
	port := &Port{path: path, port: p}
	if err := port.Init(opts); err != nil {
		p.Close()
		return nil, err
	}
	return port, nil
}

// Init reconfigures baud rate, data bits, parity, stop bits and optional
// RTS/CTS hardware flow control on the already-open device.
func (p *Port) Init(opts transport.Options) error {
	attrs, err := p.port.GetAttr2()
	if err != nil {
		return fmt.Errorf("serial: get attrs: %w", err)
	}
	attrs.MakeRaw()

	baud, err := cflagForBaud(opts.BaudRate)
	if err != nil {
		return err
	}
	attrs.SetSpeed(baud)

	bits := cflagForDataBits(opts.DataBits)
	attrs.Cflag &^= goserial.CSIZE
	attrs.Cflag |= bits

	switch opts.Parity {
	case transport.ParityEven:
		attrs.Cflag |= goserial.PARENB
		attrs.Cflag &^= goserial.PARODD
	case transport.ParityOdd:
		attrs.Cflag |= goserial.PARENB | goserial.PARODD
	default:
		attrs.Cflag &^= goserial.PARENB
	}

	if opts.StopBits >= 2 {
		attrs.Cflag |= goserial.CSTOPB
	} else {
		attrs.Cflag &^= goserial.CSTOPB
	}

	if opts.RTSPin != 0 || opts.CTSPin != 0 {
		attrs.Cflag |= goserial.CRTSCTS
	} else {
		attrs.Cflag &^= goserial.CRTSCTS
	}

	attrs.Cflag |= goserial.CREAD | goserial.CLOCAL

	if err := p.port.SetAttr2(goserial.TCSANOW, attrs); err != nil {
		return fmt.Errorf("serial: set attrs: %w", err)
	}
	return nil
}

func (p *Port) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *Port) Write(b []byte) (int, error) { return p.port.Write(b) }
func (p *Port) Close() error                { return p.port.Close() }

// SetReadMode and SetWriteMode are no-ops: a UART is full-duplex.
func (p *Port) SetReadMode() error  { return nil }
func (p *Port) SetWriteMode() error { return nil }
