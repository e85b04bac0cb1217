package slapi

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/rs/xid"

	"github.com/rockcat/slapi-bridge/internal/netstats"
	"github.com/rockcat/slapi-bridge/internal/slapi/jsonpath"
)

const maxRedirects = 5

// readHTTPRequest reads header lines until a blank line, then (for methods
// that carry one) a body, also terminated by a blank line. It mirrors the
// tethered host's framing: there is no Content-Length on the wire from the
// host, only a second blank line.
func (s *Session) readHTTPRequest(method string) (map[string]string, []byte, error) {
	headers := make(map[string]string)

	for {
		line, err := s.readLine()
		if err != nil {
			return nil, nil, err
		}
		if line == "" {
			break
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			return nil, nil, fmt.Errorf("invalid header line (missing colon): %s", line)
		}
		name := strings.TrimSpace(line[:idx])
		if name == "" || strings.ContainsAny(name[:1], "{[<\"") {
			return nil, nil, fmt.Errorf("invalid header name: %s", name)
		}
		headers[strings.ToLower(name)] = strings.TrimSpace(line[idx+1:])
	}

	var body []byte
	if method == "POST" || method == "PUT" || method == "PATCH" {
		var bodyLines []string
		for {
			line, err := s.readLine()
			if err != nil {
				return nil, nil, err
			}
			if line == "" {
				break
			}
			bodyLines = append(bodyLines, line)
		}
		if len(bodyLines) > 0 {
			body = []byte(strings.Join(bodyLines, crlf) + doubleCRLF)
		}
	}

	return headers, body, nil
}

// recvUntil reads from conn until marker has appeared in the accumulated
// buffer, returning everything read so far (which may extend past marker).
func recvUntil(conn net.Conn, marker []byte) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, 4096)
	for !bytes.Contains(buf, marker) {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

// sendHTTP relays one HTTP request to host (the Host header, or
// redirectHost when following a redirect) and frames the response back
// over the transport. It recurses on 3xx responses up to maxRedirects.
func (s *Session) sendHTTP(method, path string, headers map[string]string, body []byte, redirectHost string, redirects int) {
	reqHeaders := make(map[string]string, len(s.state.DefaultHeaders)+len(headers))
	for k, v := range s.state.DefaultHeaders {
		reqHeaders[k] = v
	}
	for k, v := range headers {
		reqHeaders[k] = v
	}

	host := redirectHost
	if host == "" {
		host = headers["host"]
	}
	if host == "" {
		if s.state.Domain == "" {
			s.slapiError("400", "DOMAIN not set and no Host header provided")
			return
		}
		host = s.state.Domain
		reqHeaders["host"] = host
	}

	useSSL := false
	port := 80
	switch {
	case strings.HasPrefix(host, "https://"):
		useSSL = true
		port = 443
		host = host[len("https://"):]
	case strings.HasPrefix(host, "http://"):
		host = host[len("http://"):]
	}

	if s.state.UseSSL != SSLAuto {
		useSSL = s.state.UseSSL == SSLForceHTTPS
		if useSSL {
			port = 443
		} else {
			port = 80
		}
	}

	host = strings.TrimSuffix(host, "/")
	if h, p, err := net.SplitHostPort(host); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			host, port = h, n
		}
	}

	switch {
	case useSSL:
		reqHeaders["host"] = host + ":443"
	case port != 80:
		reqHeaders["host"] = fmt.Sprintf("%s:%d", host, port)
	default:
		reqHeaders["host"] = host
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	rawConn, err := net.Dial("tcp", addr)
	if err != nil {
		s.slapiError("500", fmt.Sprintf("connection failed to %s: %v", addr, err))
		return
	}

	id := xid.New().String()
	conn := netstats.WrapConn(rawConn, func(c *netstats.Conn, state int) {
		if state == netstats.Closed {
			if s.collector != nil {
				s.collector.Remove(c)
			}
			for _, w := range c.Warnings() {
				s.log.WithField("relay_id", id).Warn(w)
			}
		}
	})
	if s.collector != nil {
		s.collector.Add(conn, []string{id, host})
	}
	defer conn.Close()

	var tlsConn net.Conn = conn
	if useSSL {
		tlsConn = tls.Client(conn, &tls.Config{ServerName: host})
	}

	if len(body) > 0 {
		reqHeaders["content-length"] = strconv.Itoa(len(body))
	}

	var req strings.Builder
	fmt.Fprintf(&req, "%s %s HTTP/1.1%s", method, path, crlf)
	for k, v := range reqHeaders {
		fmt.Fprintf(&req, "%s: %s%s", k, v, crlf)
	}
	req.WriteString(crlf)

	if _, err := tlsConn.Write([]byte(req.String())); err != nil {
		s.slapiError("500", "writing request: "+err.Error())
		return
	}
	if len(body) > 0 {
		if _, err := tlsConn.Write(body); err != nil {
			s.slapiError("500", "writing body: "+err.Error())
			return
		}
	}

	firstHeaders, err := recvUntil(tlsConn, []byte(crlf))
	if err != nil {
		s.slapiError("500", "reading response: "+err.Error())
		return
	}
	idx := bytes.Index(firstHeaders, []byte(crlf))
	statusLine := firstHeaders[:idx]
	rawHeaders := firstHeaders[idx+len(crlf):]

	if !bytes.Contains(rawHeaders, []byte(doubleCRLF)) {
		rest, err := recvUntil(tlsConn, []byte(doubleCRLF))
		if err != nil {
			s.slapiError("500", "reading response headers: "+err.Error())
			return
		}
		rawHeaders = append(rawHeaders, rest...)
	}

	hdrIdx := bytes.Index(rawHeaders, []byte(doubleCRLF))
	respHeaders := rawHeaders[:hdrIdx]
	respBody := append([]byte{}, rawHeaders[hdrIdx+len(doubleCRLF):]...)

	statusCode := 0
	if fields := bytes.Fields(statusLine); len(fields) >= 2 {
		statusCode, _ = strconv.Atoi(string(fields[1]))
	}

	remainingLength := 0
	contentType := ""
	location := ""
	for _, line := range bytes.Split(respHeaders, []byte(crlf)) {
		lower := strings.ToLower(string(line))
		switch {
		case strings.HasPrefix(lower, "content-length"):
			if parts := strings.SplitN(string(line), ":", 2); len(parts) == 2 {
				if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
					remainingLength = n - len(respBody)
				}
			}
		case strings.HasPrefix(lower, "content-type"):
			if parts := strings.SplitN(string(line), ":", 2); len(parts) == 2 {
				contentType = strings.TrimSpace(parts[1])
			}
		case strings.HasPrefix(lower, "location"):
			if parts := strings.SplitN(string(line), ":", 2); len(parts) == 2 {
				location = strings.TrimSpace(parts[1])
			}
		}
	}

	if isRedirectStatus(statusCode) && location != "" {
		if redirects >= maxRedirects {
			s.slapiError("500", "too many redirects")
			return
		}
		newMethod := method
		newBody := body
		if statusCode == 303 {
			newMethod = "GET"
			newBody = nil
		}
		s.sendHTTP(newMethod, path, reqHeaders, newBody, location, redirects+1)
		return
	}

	s.writeRaw(statusLine)
	s.writeRaw([]byte(crlf))

	if s.state.SendHeaders {
		s.writeRaw(soh)
		s.writeRaw(respHeaders)
		s.writeRaw([]byte(crlf))
	}

	for remainingLength > 0 {
		n := remainingLength
		if n > 4096 {
			n = 4096
		}
		chunk := make([]byte, n)
		read, err := tlsConn.Read(chunk)
		if read > 0 {
			respBody = append(respBody, chunk[:read]...)
			remainingLength -= read
		}
		if err != nil {
			break
		}
	}

	if s.state.JSONPath != "" && strings.Contains(contentType, "application/json") {
		respBody = s.applyJSONPathFilter(respBody)
	}

	s.writeRaw(stx)
	s.writeRaw(respBody)
	s.writeRaw([]byte(doubleCRLF))
	s.writeRaw(eot)
}

func (s *Session) applyJSONPathFilter(body []byte) []byte {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		s.log.WithError(err).Warn("jsonpath: response body is not valid JSON")
		return nil
	}
	filtered := jsonpath.Eval(data, s.state.JSONPath)
	out, err := json.Marshal(filtered)
	if err != nil {
		s.log.WithError(err).Warn("jsonpath: marshaling filtered result")
		return nil
	}
	return out
}

func isRedirectStatus(code int) bool {
	switch code {
	case 301, 302, 303, 307, 308:
		return true
	default:
		return false
	}
}
