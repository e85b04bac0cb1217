// Package slapi implements the line-oriented SLAPI control protocol: a
// session reads commands or HTTP requests over a Transport, relays HTTP
// requests over TCP/TLS, and frames the response back to the tethered
// host.
package slapi

import "strings"

// FlowMode selects whether the line reader intercepts XON/XOFF bytes.
type FlowMode string

const (
	FlowOff    FlowMode = "OFF"
	FlowXONXOFF FlowMode = "X"
)

// SSLMode overrides scheme auto-detection for the relayed request.
type SSLMode int

const (
	SSLAuto SSLMode = iota
	SSLForceHTTP
	SSLForceHTTPS
)

// State is the session's mutable configuration, touched only from the
// single control goroutine running Session.Start.
type State struct {
	Domain         string
	SendHeaders    bool
	Flow           FlowMode
	DefaultHeaders map[string]string // keys are lowercase
	JSONPath       string
	UseSSL         SSLMode
}

// NewState returns the default session state: headers on, flow control
// off, no domain, no default headers, no JSONPath filter, scheme
// auto-detected from the request.
func NewState() *State {
	return &State{
		SendHeaders:    true,
		Flow:           FlowOff,
		DefaultHeaders: make(map[string]string),
		UseSSL:         SSLAuto,
	}
}

func (s *State) setHeader(name, value string) {
	s.DefaultHeaders[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
}
