package catalystwan

import (
	"log/slog"
	"strings"

	"github.com/hashicorp/go-version"
)

// DefaultBasePath is prefixed to every operation URL.
const DefaultBasePath = "/dataservice"

// Endpoints is the host of declared operations. API groups embed it and
// expose one method per operation:
//
//	type AdministrationUserAndGroup struct {
//	    *catalystwan.Endpoints
//	}
//
//	func (e *AdministrationUserAndGroup) FindUsers(ctx context.Context) (*catalystwan.DataSequence[User], error) {
//	    return findUsers.Call(ctx, e.Endpoints, catalystwan.NoArgs{})
//	}
type Endpoints struct {
	transport    Transport
	basePath     string
	logger       *slog.Logger
	interceptors []Interceptor
}

// NewEndpoints returns a host sending requests through t.
func NewEndpoints(t Transport) *Endpoints {
	return &Endpoints{
		transport: t,
		basePath:  DefaultBasePath,
	}
}

// WithBasePath replaces the URL prefix. It returns the host for chaining.
func (e *Endpoints) WithBasePath(path string) *Endpoints {
	e.basePath = strings.TrimSuffix(path, "/")
	return e
}

// WithLogger sets the logger used for guard warnings.
// If not set, slog.Default() will be used.
func (e *Endpoints) WithLogger(logger *slog.Logger) *Endpoints {
	e.logger = logger
	return e
}

// WithInterceptor adds an interceptor around the transport call.
// Interceptors run in the order they were added.
func (e *Endpoints) WithInterceptor(i Interceptor) *Endpoints {
	e.interceptors = append(e.interceptors, i)
	return e
}

// Transport returns the transport requests are sent through.
func (e *Endpoints) Transport() Transport {
	return e.transport
}

// BasePath returns the URL prefix.
func (e *Endpoints) BasePath() string {
	return e.basePath
}

// Logger returns the host logger.
func (e *Endpoints) Logger() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

// APIVersion returns the API version of the session, or nil if unknown.
func (e *Endpoints) APIVersion() *version.Version {
	return e.transport.APIVersion()
}

// SessionRole returns the role of the session.
func (e *Endpoints) SessionRole() Role {
	return e.transport.SessionRole()
}
