package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBodyTooLarge is returned when a response body exceeds the client's
// size limit.
var ErrBodyTooLarge = errors.New("response body too large")

// ErrorInfo is the error envelope returned by the manager:
//
//	{"error": {"message": "...", "details": "...", "code": "..."}}
type ErrorInfo struct {
	Message string `json:"message"`
	Details string `json:"details"`
	Code    string `json:"code"`
}

// HTTPError indicates that the server returned a status >= 400.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	// Info is the decoded error envelope, or nil if the body had none.
	Info *ErrorInfo
	Body []byte
}

// Error implements error.
func (e *HTTPError) Error() string {
	if e.Info != nil && e.Info.Message != "" {
		if e.Info.Details != "" {
			return fmt.Sprintf("httptransport: %s %s failed: %d: %s: %s", e.Method, e.URL, e.StatusCode, e.Info.Message, e.Info.Details)
		}
		return fmt.Sprintf("httptransport: %s %s failed: %d: %s", e.Method, e.URL, e.StatusCode, e.Info.Message)
	}
	return fmt.Sprintf("httptransport: %s %s failed: %d", e.Method, e.URL, e.StatusCode)
}

// parseErrorInfo extracts the error envelope from a response body.
func parseErrorInfo(body []byte) *ErrorInfo {
	var envelope struct {
		Error *ErrorInfo `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	return envelope.Error
}
