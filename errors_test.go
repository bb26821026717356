package catalystwan

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestNewError(t *testing.T) {
	err := NewError(CodeDecodeType, "response is not valid JSON")
	if err.Code != CodeDecodeType {
		t.Errorf("expected code %s, got %s", CodeDecodeType, err.Code)
	}
	if err.Message != "response is not valid JSON" {
		t.Errorf("expected message 'response is not valid JSON', got %s", err.Message)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(CodeInvalidArgument, "url field %q is not bound", "username")
	if err.Message != `url field "username" is not bound` {
		t.Errorf("expected formatted message, got %s", err.Message)
	}
}

func TestErrorError(t *testing.T) {
	tests := []struct {
		err      *Error
		expected string
	}{
		{NewError(CodeDeclaration, "Users.Find: missing return type"), "declaration: Users.Find: missing return type"},
		{ErrViewMismatch, "view_mismatch"},
	}
	for _, tt := range tests {
		if tt.err.Error() != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
		}
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("calling: %w", Errorf(CodeVersionMismatch, "requires >=20.9"))

	if !errors.Is(err, ErrVersionMismatch) {
		t.Error("expected wrapped error to match ErrVersionMismatch")
	}
	if errors.Is(err, ErrViewMismatch) {
		t.Error("expected no match for ErrViewMismatch")
	}
	if errors.Is(err, NewError(CodeVersionMismatch, "other")) {
		t.Error("expected errors with messages to never act as sentinels")
	}
	if CodeOf(err) != CodeVersionMismatch {
		t.Errorf("expected code %s, got %s", CodeVersionMismatch, CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("expected empty code for plain errors")
	}
}

func TestWrapError_Unwrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := wrapError(CodeDecodeType, cause, "cannot parse User: %v", cause)
	if !errors.Is(err, cause) {
		t.Error("expected error to unwrap to its cause")
	}
	if err.WithDetail("k", "v").Unwrap() != cause {
		t.Error("expected WithDetail to keep the cause")
	}
}

func TestWithDetails(t *testing.T) {
	base := NewError(CodePayloadType, "bad").WithDetail("a", 1)
	merged := base.WithDetails(map[string]any{"b": 2})

	if len(base.Details) != 1 {
		t.Errorf("expected original details to be unchanged, got %v", base.Details)
	}
	if merged.Details["a"] != 1 || merged.Details["b"] != 2 {
		t.Errorf("expected merged details, got %v", merged.Details)
	}
	if base.WithDetails(nil) != base {
		t.Error("expected WithDetails(nil) to return the receiver")
	}
}

func TestPayloadValidationError(t *testing.T) {
	type user struct {
		UserName string `json:"userName" validate:"required"`
		Group    string `json:"group" validate:"oneof=netadmin operator"`
		Retries  int    `json:"retries" validate:"min=1"`
	}

	err := payloadValidationError("User", validate.Struct(user{Group: "root"}))
	if err.Code != CodePayloadType {
		t.Errorf("expected code %s, got %s", CodePayloadType, err.Code)
	}
	for _, want := range []string{"userName: required", "group: must be one of: netadmin operator", "retries: must be at least 1"} {
		if !strings.Contains(err.Message, want) {
			t.Errorf("expected message to contain %q, got %q", want, err.Message)
		}
	}
	if err.Details["user.userName"] != "required" {
		t.Errorf("expected detail for user.userName, got %v", err.Details)
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		t.Error("expected error to unwrap to validator errors")
	}

	other := payloadValidationError("User", errors.New("boom"))
	if other.Message != "invalid User payload: boom" {
		t.Errorf("expected generic message, got %q", other.Message)
	}
}
