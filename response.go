package catalystwan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Empty represents a declared void return. Operations that return nothing
// must say so with Empty; a missing return type is a declaration error.
//
// Example:
//
//	var createUser = catalystwan.Post[CreateUserArgs, catalystwan.Empty](
//	    "AdministrationUserAndGroup.CreateUser", "/admin/user")
type Empty *struct{}

// JSON denotes an arbitrary JSON document. As a payload it is always sent
// as JSON; as a return it is the parsed document (optionally the value
// selected by the response key).
type JSON any

// BufferedResponse is a fully read HTTP response. It implements Response.
type BufferedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the body as a string.
func (r *BufferedResponse) Text() string {
	return string(r.Body)
}

// Bytes returns the raw body.
func (r *BufferedResponse) Bytes() []byte {
	return r.Body
}

// JSON parses the body.
func (r *BufferedResponse) JSON() (any, error) {
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, wrapError(CodeDecodeType, err, "response is not valid JSON: %v", err)
	}
	return v, nil
}

// DecodeModel implements Response.
func (r *BufferedResponse) DecodeModel(key string, into any) error {
	data, err := selectJSON(r.Body, key)
	if err != nil {
		return err
	}
	switch jsonKindOf(data) {
	case '{':
	case '[':
		return Errorf(CodeDecodeType, "%s contains an array, expected object", describeKey(key))
	default:
		return Errorf(CodeDecodeType, "%s contains %s, expected object", describeKey(key), describeJSON(data))
	}
	return parseModelInto(into, data)
}

// DecodeSequence implements Response.
func (r *BufferedResponse) DecodeSequence(key string, into SequenceTarget) error {
	data, err := selectJSON(r.Body, key)
	if err != nil {
		return err
	}
	switch jsonKindOf(data) {
	case '{':
		return into.AppendJSON(data)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return wrapError(CodeDecodeType, err, "cannot decode %s: %v", describeKey(key), err)
		}
		for _, item := range items {
			if err := into.AppendJSON(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return Errorf(CodeDecodeType, "%s contains %s, expected list", describeKey(key), describeJSON(data))
	}
}

// selectJSON returns the raw JSON value at key, or the whole document when
// key is empty.
func selectJSON(body []byte, key string) ([]byte, error) {
	if key == "" {
		return body, nil
	}
	if jsonKindOf(body) != '{' {
		return nil, Errorf(CodeDecodeType, "expected JSON object to select %q, found %s", key, describeJSON(body))
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, wrapError(CodeDecodeType, err, "response is not valid JSON: %v", err)
	}
	raw, ok := obj[key]
	if !ok {
		return nil, Errorf(CodeDecodeType, "key %q not found in response", key)
	}
	return raw, nil
}

// jsonKindOf returns the first significant byte of a JSON document.
func jsonKindOf(data []byte) byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func describeJSON(data []byte) string {
	switch k := jsonKindOf(data); {
	case k == 0:
		return "nothing"
	case k == '{':
		return "an object"
	case k == '[':
		return "an array"
	case k == '"':
		return "a string"
	case k == 'n':
		return "null"
	case k == 't' || k == 'f':
		return "a boolean"
	default:
		return "a number"
	}
}

func describeKey(key string) string {
	if key == "" {
		return "response"
	}
	return fmt.Sprintf("value at %q", key)
}
