package slapi

import (
	"bytes"
	"io"
	"sync"

	"github.com/rockcat/slapi-bridge/internal/transport"
)

// fakeTransport is an in-memory transport.Transport: writes go to Out,
// reads come from a preloaded buffer. SetReadMode/SetWriteMode are no-ops,
// matching a full-duplex link.
type fakeTransport struct {
	mu  sync.Mutex
	in  *bytes.Reader
	Out bytes.Buffer
}

func newFakeTransport(script string) *fakeTransport {
	return &fakeTransport{in: bytes.NewReader([]byte(script))}
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.in.Read(p)
	if err == io.EOF {
		return n, io.EOF
	}
	return n, err
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Out.Write(p)
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) Init(opts transport.Options) error { return nil }

func (f *fakeTransport) SetReadMode() error  { return nil }
func (f *fakeTransport) SetWriteMode() error { return nil }
