package endpoints

import (
	"context"

	"github.com/broady/catalystwan"
	"github.com/hashicorp/go-version"
)

// ServerInfo describes the manager and the current session.
type ServerInfo struct {
	Server          *string  `json:"server,omitempty"`
	PlatformVersion string   `json:"platformVersion"`
	TenancyMode     *string  `json:"tenancyMode,omitempty"`
	UserMode        *string  `json:"userMode,omitempty"`
	ViewMode        *string  `json:"viewMode,omitempty"`
	User            *string  `json:"user,omitempty"`
	Locale          *string  `json:"locale,omitempty"`
	Roles           []string `json:"roles,omitempty"`
	CSRFToken       *string  `json:"CSRFToken,omitempty"`
	ProviderDomain  *string  `json:"providerDomain,omitempty"`
	TenantID        *string  `json:"tenantId,omitempty"`
}

// Version parses the platform version, or returns nil if it is not a
// version.
func (s *ServerInfo) Version() *version.Version {
	return catalystwan.ParseManagerVersion(s.PlatformVersion)
}

// APIVersion is the major.minor API version served by the manager.
func (s *ServerInfo) APIVersion() *version.Version {
	return catalystwan.ParseAPIVersion(s.PlatformVersion)
}

// Role classifies the session from the reported modes.
func (s *ServerInfo) Role() catalystwan.Role {
	return catalystwan.DetermineRole(deref(s.TenancyMode), deref(s.UserMode), deref(s.ViewMode))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var (
	serverInfo = catalystwan.Get[catalystwan.NoArgs, *ServerInfo](
		"Client.Server", "/client/server", catalystwan.WithResponseKey("data"))
	serverReady = catalystwan.Get[catalystwan.NoArgs, catalystwan.JSON](
		"Client.ServerReady", "/client/server/ready")
)

// Client reports information about the manager itself.
type Client struct {
	*catalystwan.Endpoints
}

func (c Client) Server(ctx context.Context) (*ServerInfo, error) {
	return serverInfo.Call(ctx, c.Endpoints, catalystwan.NoArgs{})
}

// ServerReady returns the readiness document of the manager.
func (c Client) ServerReady(ctx context.Context) (catalystwan.JSON, error) {
	return serverReady.Call(ctx, c.Endpoints, catalystwan.NoArgs{})
}
