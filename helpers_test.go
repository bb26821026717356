package catalystwan

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-version"
)

// recordingTransport answers every request with body and keeps the
// requests it received.
type recordingTransport struct {
	version  *version.Version
	role     Role
	body     string
	err      error
	requests []*Request
}

func (r *recordingTransport) Request(ctx context.Context, req *Request) (Response, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &BufferedResponse{StatusCode: http.StatusOK, Body: []byte(r.body)}, nil
}

func (r *recordingTransport) APIVersion() *version.Version { return r.version }

func (r *recordingTransport) SessionRole() Role { return r.role }

func (r *recordingTransport) last() *Request {
	if len(r.requests) == 0 {
		return nil
	}
	return r.requests[len(r.requests)-1]
}

// newHost returns a host over a recording transport that replies with
// body, logging into the returned buffer.
func newHost(body string) (*Endpoints, *recordingTransport, *bytes.Buffer) {
	var logs bytes.Buffer
	rt := &recordingTransport{body: body}
	host := NewEndpoints(rt).WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	return host, rt, &logs
}

// bodyBytes returns the serialized body of req.
func bodyBytes(req *Request) []byte {
	switch b := req.Body.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	case io.Reader:
		data, _ := io.ReadAll(b)
		return data
	}
	return nil
}
