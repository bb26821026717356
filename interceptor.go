package catalystwan

import (
	"context"
)

// HandlerFunc sends a prepared request. It is the next step of an
// interceptor chain; the last one calls the transport.
type HandlerFunc func(ctx context.Context, req *Request) (Response, error)

// Interceptor wraps the transport call of every operation invoked through
// a host. The operation being called is available from
// OperationFromContext:
//
//	func timing(ctx context.Context, req *catalystwan.Request, next catalystwan.HandlerFunc) (catalystwan.Response, error) {
//	    start := time.Now()
//	    res, err := next(ctx, req)
//	    op, _ := catalystwan.OperationFromContext(ctx)
//	    log.Printf("%s took %v", op.Name, time.Since(start))
//	    return res, err
//	}
//
// Interceptors can:
//   - Inspect or modify the request before calling next
//   - Inspect the response or error after calling next
//   - Short-circuit by returning without calling next
type Interceptor func(ctx context.Context, req *Request, next HandlerFunc) (Response, error)

// chainInterceptors combines multiple interceptors into a single one.
// The first interceptor in the slice is the outer-most one (runs first).
func chainInterceptors(interceptors []Interceptor) Interceptor {
	if len(interceptors) == 0 {
		return nil
	}
	if len(interceptors) == 1 {
		return interceptors[0]
	}
	return func(ctx context.Context, req *Request, handler HandlerFunc) (Response, error) {
		// Chain: i[0] -> i[1] -> ... -> handler
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			current := interceptors[i]
			next := chain
			chain = func(ctx context.Context, req *Request) (Response, error) {
				return current(ctx, req, next)
			}
		}
		return chain(ctx, req)
	}
}
