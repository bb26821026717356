package catalystwan

import (
	"context"
)

type contextKey struct {
	name string
}

var operationKey = &contextKey{"operation"}

// OperationFromContext returns the operation being dispatched. It is set
// for interceptors and for the transport call.
func OperationFromContext(ctx context.Context) (*OperationInfo, bool) {
	info, ok := ctx.Value(operationKey).(*OperationInfo)
	return info, ok
}

// NewOperationContext returns a context carrying info. The dispatcher
// calls it for every operation; it is exported for tests of interceptors.
func NewOperationContext(ctx context.Context, info *OperationInfo) context.Context {
	return context.WithValue(ctx, operationKey, info)
}
