package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/broady/catalystwan"
)

func testContext(ctx context.Context, name string) context.Context {
	return catalystwan.NewOperationContext(ctx, &catalystwan.OperationInfo{Name: name, Method: "GET"})
}

func okHandler(ctx context.Context, req *catalystwan.Request) (catalystwan.Response, error) {
	return &catalystwan.BufferedResponse{StatusCode: 200, Body: []byte("response")}, nil
}

func TestLoggingInterceptor_Success(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	interceptor := LoggingInterceptor(logger)

	ctx := testContext(context.Background(), "AdministrationUserAndGroup.FindUsers")

	result, err := interceptor(ctx, &catalystwan.Request{Method: "GET", URL: "/dataservice/admin/user"}, okHandler)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if result == nil || result.Text() != "response" {
		t.Errorf("expected response, got %v", result)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "request started") {
		t.Error("expected 'request started' in log output")
	}
	if !strings.Contains(logOutput, "request completed") {
		t.Error("expected 'request completed' in log output")
	}
	if !strings.Contains(logOutput, "AdministrationUserAndGroup.FindUsers") {
		t.Error("expected operation name in log output")
	}
	if !strings.Contains(logOutput, "/dataservice/admin/user") {
		t.Error("expected url in log output")
	}
}

func TestLoggingInterceptor_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	interceptor := LoggingInterceptor(logger)

	ctx := testContext(context.Background(), "Test.Op")

	testErr := errors.New("test error")
	handler := func(ctx context.Context, req *catalystwan.Request) (catalystwan.Response, error) {
		return nil, testErr
	}

	result, err := interceptor(ctx, &catalystwan.Request{Method: "POST"}, handler)

	if err != testErr {
		t.Errorf("expected test error, got %v", err)
	}

	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "request failed") {
		t.Error("expected 'request failed' in log output")
	}
	if !strings.Contains(logOutput, "test error") {
		t.Error("expected error message in log output")
	}
}

func TestLoggingInterceptor_NilLogger(t *testing.T) {
	// Should not panic with nil logger, should use default
	interceptor := LoggingInterceptor(nil)

	_, err := interceptor(context.Background(), &catalystwan.Request{Method: "GET"}, okHandler)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoggingInterceptor_LogsDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	interceptor := LoggingInterceptor(logger)

	_, err := interceptor(testContext(context.Background(), "Test.Op"), &catalystwan.Request{Method: "GET"}, okHandler)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "duration") {
		t.Error("expected 'duration' in log output")
	}
}

func TestLoggingInterceptor_PropagatesContext(t *testing.T) {
	interceptor := LoggingInterceptor(slog.New(slog.DiscardHandler))

	type ctxKey string
	key := ctxKey("test-key")
	ctx := testContext(context.WithValue(context.Background(), key, "test-value"), "Test.Op")

	handler := func(ctx context.Context, req *catalystwan.Request) (catalystwan.Response, error) {
		if ctx.Value(key) != "test-value" {
			t.Error("expected context value to be propagated")
		}
		if _, ok := catalystwan.OperationFromContext(ctx); !ok {
			t.Error("expected operation in context")
		}
		return nil, nil
	}

	if _, err := interceptor(ctx, &catalystwan.Request{Method: "GET"}, handler); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHeaderInterceptor(t *testing.T) {
	interceptor := HeaderInterceptor(map[string]string{
		"X-XSRF-TOKEN": "token",
		"content-type": "text/plain",
	})

	req := &catalystwan.Request{Method: "POST"}
	req.Headers = map[string]string{"content-type": "application/json"}

	handler := func(ctx context.Context, req *catalystwan.Request) (catalystwan.Response, error) {
		if got := req.Headers["X-XSRF-TOKEN"]; got != "token" {
			t.Errorf("expected X-XSRF-TOKEN=token, got %q", got)
		}
		if got := req.Headers["content-type"]; got != "application/json" {
			t.Errorf("expected payload content-type to win, got %q", got)
		}
		return nil, nil
	}

	if _, err := interceptor(context.Background(), req, handler); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
