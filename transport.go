package catalystwan

import (
	"context"
	"io"
	"net/url"

	"github.com/hashicorp/go-version"
)

// Transport sends the requests prepared by operations. Implementations must
// be safe for concurrent use; httptransport.Client is the reference one.
type Transport interface {
	// Request sends req and returns the buffered response. Non-2xx
	// statuses and I/O failures are reported as errors and are returned
	// to the operation caller unchanged.
	Request(ctx context.Context, req *Request) (Response, error)

	// APIVersion returns the API version reported by the server, or nil
	// while it is still unknown.
	APIVersion() *version.Version

	// SessionRole returns the classification of the current session, or
	// RoleUnknown while it is still unknown.
	SessionRole() Role
}

// Request is a single transport call. It is built by the dispatcher and
// consumed exactly once.
type Request struct {
	Method string
	// URL is the base path joined with the materialized URL template,
	// e.g. "/dataservice/admin/user/alice".
	URL string

	PreparedBody

	// Params holds the query parameters, if the operation declares them.
	Params url.Values

	// Options are the extra transport options declared on the operation
	// (see WithTransportOption). They are passed through untouched.
	Options map[string]any
}

// PreparedBody is the serialized form of an operation payload.
type PreparedBody struct {
	// Body is one of nil, []byte, string, io.Reader, or a map[string]any of
	// form fields sent alongside Multipart parts.
	Body any

	Headers map[string]string

	// Multipart maps form field names to file parts. The core never reads
	// or closes the readers; they stay owned by the caller.
	Multipart map[string]FilePart
}

// FilePart is a file attached to a multipart request.
type FilePart struct {
	Filename string
	Content  io.Reader
}

// CustomPayload is implemented by payloads that prepare their own body,
// typically multipart uploads.
type CustomPayload interface {
	Prepare() (*PreparedBody, error)
}

// Response is the transport response consumed by the response decoder.
// BufferedResponse provides a complete implementation.
type Response interface {
	Text() string
	Bytes() []byte
	JSON() (any, error)

	// DecodeModel parses the JSON value found at key (the whole document
	// when key is empty) into the model pointed to by into.
	DecodeModel(key string, into any) error

	// DecodeSequence parses the JSON array found at key (the whole
	// document when key is empty) element by element into into. A single
	// JSON object is treated as a one-element array.
	DecodeSequence(key string, into SequenceTarget) error
}

// SequenceTarget receives decoded sequence elements one at a time.
// *DataSequence implements it.
type SequenceTarget interface {
	AppendJSON(data []byte) error
}
