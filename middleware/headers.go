package middleware

import (
	"context"
	"maps"

	"github.com/broady/catalystwan"
)

// HeaderInterceptor adds headers to every request, such as the XSRF token
// the manager requires on mutating calls. Headers set by the operation
// payload take precedence.
func HeaderInterceptor(headers map[string]string) catalystwan.Interceptor {
	fixed := maps.Clone(headers)
	return func(ctx context.Context, req *catalystwan.Request, next catalystwan.HandlerFunc) (catalystwan.Response, error) {
		merged := make(map[string]string, len(fixed)+len(req.Headers))
		maps.Copy(merged, fixed)
		maps.Copy(merged, req.Headers)
		req.Headers = merged
		return next(ctx, req)
	}
}
