package catalystwan

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestChainInterceptors_Empty(t *testing.T) {
	if chainInterceptors(nil) != nil {
		t.Error("expected nil chain for empty interceptors")
	}
}

func TestChainInterceptors_Order(t *testing.T) {
	var order []string
	mark := func(name string) Interceptor {
		return func(ctx context.Context, req *Request, next HandlerFunc) (Response, error) {
			order = append(order, "before-"+name)
			res, err := next(ctx, req)
			order = append(order, "after-"+name)
			return res, err
		}
	}

	chain := chainInterceptors([]Interceptor{mark("1"), mark("2")})
	handler := func(ctx context.Context, req *Request) (Response, error) {
		order = append(order, "handler")
		return &BufferedResponse{StatusCode: http.StatusOK}, nil
	}
	if _, err := chain(context.Background(), &Request{}, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"before-1", "before-2", "handler", "after-2", "after-1"}
	if len(order) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, order)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("at %d: expected %s, got %s", i, expected[i], order[i])
		}
	}
}

func TestInterceptor_Dispatch(t *testing.T) {
	reg := NewRegistry()
	op := Get[NoArgs, JSON]("Test.Status", "/status", InRegistry(reg))
	host, rt, _ := newHost(`{"ok":true}`)

	var seen string
	host.WithInterceptor(func(ctx context.Context, req *Request, next HandlerFunc) (Response, error) {
		info, ok := OperationFromContext(ctx)
		if !ok {
			t.Error("expected operation in interceptor context")
		} else {
			seen = info.Name
		}
		req.Headers = map[string]string{"x-trace": "1"}
		return next(ctx, req)
	})

	if _, err := op.Call(context.Background(), host, NoArgs{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "Test.Status" {
		t.Errorf("expected Test.Status, got %q", seen)
	}
	if rt.last().Headers["x-trace"] != "1" {
		t.Errorf("expected modified request to reach the transport, got %v", rt.last().Headers)
	}
}

func TestInterceptor_ShortCircuit(t *testing.T) {
	reg := NewRegistry()
	op := Get[NoArgs, JSON]("Test.Status", "/status", InRegistry(reg))
	host, rt, _ := newHost(`{}`)

	denied := errors.New("denied")
	host.WithInterceptor(func(ctx context.Context, req *Request, next HandlerFunc) (Response, error) {
		return nil, denied
	})

	if _, err := op.Call(context.Background(), host, NoArgs{}); !errors.Is(err, denied) {
		t.Errorf("expected interceptor error, got %v", err)
	}
	if len(rt.requests) != 0 {
		t.Errorf("expected no transport calls, got %d", len(rt.requests))
	}
}
