// Package testutil provides a recording transport and assertion helpers
// for testing operations without a manager.
// This package is designed to be import-cycle safe and can be used from any
// package except catalystwan's internal tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/broady/catalystwan"
	"github.com/hashicorp/go-version"
)

// Reply is a canned transport reply.
type Reply struct {
	Status int
	Body   []byte
	Err    error
}

// FakeTransport records requests and answers them with queued replies.
// When the queue holds a single reply it is repeated. The zero value
// answers every request with an empty 200 response.
type FakeTransport struct {
	mu       sync.Mutex
	version  *version.Version
	role     catalystwan.Role
	replies  []Reply
	requests []*catalystwan.Request
	bodies   [][]byte
}

var _ catalystwan.Transport = (*FakeTransport)(nil)

// NewFakeTransport creates a transport with no session state.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// WithAPIVersion sets the reported API version. It panics on an invalid
// version.
func (f *FakeTransport) WithAPIVersion(v string) *FakeTransport {
	parsed := catalystwan.ParseManagerVersion(v)
	if parsed == nil {
		panic("testutil: invalid version " + v)
	}
	f.version = parsed
	return f
}

// WithRole sets the session role.
func (f *FakeTransport) WithRole(r catalystwan.Role) *FakeTransport {
	f.role = r
	return f
}

// RespondJSON queues a 200 reply with body.
func (f *FakeTransport) RespondJSON(body string) *FakeTransport {
	return f.Respond(Reply{Status: http.StatusOK, Body: []byte(body)})
}

// RespondError queues a failing reply.
func (f *FakeTransport) RespondError(err error) *FakeTransport {
	return f.Respond(Reply{Err: err})
}

// Respond queues r.
func (f *FakeTransport) Respond(r Reply) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, r)
	return f
}

// APIVersion implements catalystwan.Transport.
func (f *FakeTransport) APIVersion() *version.Version {
	return f.version
}

// SessionRole implements catalystwan.Transport.
func (f *FakeTransport) SessionRole() catalystwan.Role {
	return f.role
}

// Request implements catalystwan.Transport. Reader bodies are drained so
// tests can inspect them with Body.
func (f *FakeTransport) Request(ctx context.Context, req *catalystwan.Request) (catalystwan.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body []byte
	switch b := req.Body.(type) {
	case []byte:
		body = b
	case string:
		body = []byte(b)
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, err
		}
		body = data
	}
	f.requests = append(f.requests, req)
	f.bodies = append(f.bodies, body)

	reply := Reply{Status: http.StatusOK}
	switch len(f.replies) {
	case 0:
	case 1:
		reply = f.replies[0]
	default:
		reply, f.replies = f.replies[0], f.replies[1:]
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &catalystwan.BufferedResponse{
		StatusCode: reply.Status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       reply.Body,
	}, nil
}

// Calls returns the number of requests received.
func (f *FakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Requests returns the requests received so far.
func (f *FakeTransport) Requests() []*catalystwan.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*catalystwan.Request(nil), f.requests...)
}

// LastRequest returns the most recent request, or nil.
func (f *FakeTransport) LastRequest() *catalystwan.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

// Body returns the serialized body of the i-th request.
func (f *FakeTransport) Body(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[i]
}

// AssertCalls checks that the transport received n requests.
func AssertCalls(t *testing.T, f *FakeTransport, n int) {
	t.Helper()
	if got := f.Calls(); got != n {
		t.Fatalf("expected %d transport calls, got %d", n, got)
	}
}

// AssertRequest checks the method and URL of a request.
func AssertRequest(t *testing.T, req *catalystwan.Request, method, url string) {
	t.Helper()
	if req == nil {
		t.Fatalf("expected %s %s, got no request", method, url)
	}
	if req.Method != method || req.URL != url {
		t.Errorf("expected %s %s, got %s %s", method, url, req.Method, req.URL)
	}
}

// AssertHeader checks that a request header has the expected value.
func AssertHeader(t *testing.T, req *catalystwan.Request, key, expectedValue string) {
	t.Helper()
	actual := req.Headers[key]
	if actual != expectedValue {
		t.Errorf("expected header %s=%s, got %s", key, expectedValue, actual)
	}
}

// AssertJSONBody compares a body with expected JSON, ignoring formatting.
func AssertJSONBody(t *testing.T, body []byte, expected string) {
	t.Helper()
	var expectedData, actualData any
	if err := json.Unmarshal([]byte(expected), &expectedData); err != nil {
		t.Fatalf("invalid expected JSON: %v", err)
	}
	if err := json.Unmarshal(body, &actualData); err != nil {
		t.Fatalf("body is not JSON: %v\nBody: %s", err, body)
	}

	expectedStr, _ := json.MarshalIndent(expectedData, "", "  ")
	actualStr, _ := json.MarshalIndent(actualData, "", "  ")

	if !bytes.Equal(expectedStr, actualStr) {
		t.Errorf("body mismatch:\nExpected:\n%s\nActual:\n%s", expectedStr, actualStr)
	}
}
