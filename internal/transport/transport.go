// Package transport defines the capability set every SLAPI link (UART or
// bit-banged parallel GPIO) must provide to the session engine.
package transport

import "io"

// Options carries the subset of the SERIAL/config settings that apply to
// the active transport. Fields meaningless to a given transport are
// ignored by its Init.
type Options struct {
	BaudRate int
	DataBits int
	Parity   Parity
	StopBits int

	RTSPin int
	CTSPin int
}

type Parity int

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// Transport is a byte link to the tethered host. Read and
// Write may perform short reads/writes, exactly like any io.ReadWriter;
// callers loop until they have what they need.
//
// SetReadMode and SetWriteMode exist for half-duplex links (the parallel
// GPIO transport) that must switch pin direction before moving data in a
// given direction. A full-duplex transport (UART) implements both as
// no-ops.
type Transport interface {
	io.ReadWriter
	io.Closer

	// Init (re)configures the transport, e.g. in response to a SERIAL
	// command changing baud rate mid-session.
	Init(Options) error

	SetReadMode() error
	SetWriteMode() error
}
