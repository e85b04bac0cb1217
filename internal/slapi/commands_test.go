package slapi

import (
	"strings"
	"testing"
)

func TestHandleCommandDomain(t *testing.T) {
	s, ft := newTestSession("")
	s.handleCommand("DOMAIN example.com")
	if s.state.Domain != "example.com" {
		t.Errorf("Domain = %q, want %q", s.state.Domain, "example.com")
	}
	if !strings.Contains(ft.Out.String(), "OK\r\n") {
		t.Errorf("expected OK reply, got %q", ft.Out.String())
	}
}

func TestHandleCommandDomainMissingArgument(t *testing.T) {
	s, ft := newTestSession("")
	s.handleCommand("DOMAIN")
	if s.state.Domain != "" {
		t.Errorf("Domain should remain unset on error, got %q", s.state.Domain)
	}
	if !strings.Contains(ft.Out.String(), "400") {
		t.Errorf("expected 400 error reply, got %q", ft.Out.String())
	}
}

func TestHandleCommandResponseJSONPath(t *testing.T) {
	s, _ := newTestSession("")
	s.handleCommand("RESPONSE JSONPATH $.data.id")
	if s.state.JSONPath != "$.data.id" {
		t.Errorf("JSONPath = %q, want %q", s.state.JSONPath, "$.data.id")
	}

	s.handleCommand("RESPONSE JSONPATH")
	if s.state.JSONPath != "" {
		t.Errorf("JSONPath should clear when no argument given, got %q", s.state.JSONPath)
	}
}

func TestHandleCommandResponseHeaderToggle(t *testing.T) {
	s, _ := newTestSession("")
	s.handleCommand("RESPONSE HDRS_OFF")
	if s.state.SendHeaders {
		t.Error("SendHeaders should be false after HDRS_OFF")
	}
	s.handleCommand("RESPONSE HDRS_ON")
	if !s.state.SendHeaders {
		t.Error("SendHeaders should be true after HDRS_ON")
	}
}

func TestHandleCommandHeadersSetAndList(t *testing.T) {
	s, ft := newTestSession("")
	s.handleCommand("HEADERS Authorization Bearer xyz")
	if s.state.DefaultHeaders["authorization"] != "Bearer xyz" {
		t.Errorf("header not stored lowercased: %v", s.state.DefaultHeaders)
	}

	ft.Out.Reset()
	s.handleCommand("HEADERS")
	if !strings.Contains(ft.Out.String(), "authorization: Bearer xyz") {
		t.Errorf("expected header listing, got %q", ft.Out.String())
	}
}

func TestHandleCommandHeadersClear(t *testing.T) {
	s, _ := newTestSession("")
	s.state.DefaultHeaders["x"] = "y"
	s.handleCommand("HEADERS CLEAR")
	if len(s.state.DefaultHeaders) != 0 {
		t.Errorf("expected headers cleared, got %v", s.state.DefaultHeaders)
	}
}

func TestHandleCommandHTTPSHTTPOverride(t *testing.T) {
	s, _ := newTestSession("")
	s.handleCommand("HTTPS")
	if s.state.UseSSL != SSLForceHTTPS {
		t.Errorf("UseSSL = %v, want SSLForceHTTPS", s.state.UseSSL)
	}
	s.handleCommand("HTTP")
	if s.state.UseSSL != SSLForceHTTP {
		t.Errorf("UseSSL = %v, want SSLForceHTTP", s.state.UseSSL)
	}
}

func TestHandleCommandUnknown(t *testing.T) {
	s, ft := newTestSession("")
	s.handleCommand("BOGUS")
	if !strings.Contains(ft.Out.String(), "400") {
		t.Errorf("expected 400 for unknown command, got %q", ft.Out.String())
	}
}
