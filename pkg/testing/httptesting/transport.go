package httptesting

import (
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

type RoundTripFunc func(req *http.Request) (*http.Response, error)

// MockTransport routes requests to handlers registered by method and path and
// counts the requests it served.
type MockTransport struct {
	mu       sync.Mutex
	handlers map[string]map[string]RoundTripFunc
	calls    map[string]int
}

func (transport *MockTransport) handle(method, path string, f RoundTripFunc) {
	transport.mu.Lock()
	defer transport.mu.Unlock()

	if transport.handlers == nil {
		transport.handlers = make(map[string]map[string]RoundTripFunc)
	}

	if transport.handlers[method] == nil {
		transport.handlers[method] = make(map[string]RoundTripFunc)
	}

	transport.handlers[method][path] = f
}

func (transport *MockTransport) GET(path string, f RoundTripFunc) {
	transport.handle(http.MethodGet, path, f)
}

func (transport *MockTransport) POST(path string, f RoundTripFunc) {
	transport.handle(http.MethodPost, path, f)
}

func (transport *MockTransport) PUT(path string, f RoundTripFunc) {
	transport.handle(http.MethodPut, path, f)
}

func (transport *MockTransport) DELETE(path string, f RoundTripFunc) {
	transport.handle(http.MethodDelete, path, f)
}

// Calls returns how many requests were served for the method and path.
func (transport *MockTransport) Calls(method, path string) int {
	transport.mu.Lock()
	defer transport.mu.Unlock()
	return transport.calls[strings.ToUpper(method)+" "+path]
}

func (transport *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	method := strings.ToUpper(req.Method)

	transport.mu.Lock()
	f, ok := transport.handlers[method][req.URL.Path]
	if ok {
		if transport.calls == nil {
			transport.calls = make(map[string]int)
		}
		transport.calls[method+" "+req.URL.Path]++
	}
	transport.mu.Unlock()

	if !ok {
		return nil, errors.Errorf("roundtrip mock to %s %s is not defined", req.Method, req.URL.Path)
	}

	return f(req)
}

func MockWithJsonReply(url string, rawData interface{}) *http.Client {
	tripFunc := func(_ *http.Request) (*http.Response, error) {
		return BuildResponseJson(http.StatusOK, rawData), nil
	}

	transport := &MockTransport{}
	transport.GET(url, tripFunc)
	transport.POST(url, tripFunc)
	return &http.Client{Transport: transport}
}
