package catalystwan

import "fmt"

// Role classifies an authenticated session.
type Role string

const (
	RoleUnknown          Role = ""
	SingleTenantView     Role = "single-tenant"
	ProviderView         Role = "provider"
	TenantView           Role = "tenant"
	ProviderAsTenantView Role = "provider-as-tenant"
)

// Roles lists every defined role.
var Roles = []Role{SingleTenantView, ProviderView, TenantView, ProviderAsTenantView}

// ParseRole returns the role named s.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	if s == "" {
		return RoleUnknown, nil
	}
	return RoleUnknown, Errorf(CodeInvalidArgument, "unknown role %q", s)
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return string(r)
}

// Tenancy, user and view modes reported by the manager after login.
const (
	TenancySingleTenant = "SingleTenant"
	TenancyMultiTenant  = "MultiTenant"
	ModeProvider        = "provider"
	ModeTenant          = "tenant"
)

// DetermineRole classifies a session from the modes the manager reports.
// Unrecognized combinations yield RoleUnknown.
func DetermineRole(tenancyMode, userMode, viewMode string) Role {
	switch fmt.Sprintf("%s/%s/%s", tenancyMode, userMode, viewMode) {
	case TenancySingleTenant + "/" + ModeTenant + "/" + ModeTenant:
		return SingleTenantView
	case TenancyMultiTenant + "/" + ModeProvider + "/" + ModeProvider:
		return ProviderView
	case TenancyMultiTenant + "/" + ModeProvider + "/" + ModeTenant:
		return ProviderAsTenantView
	case TenancyMultiTenant + "/" + ModeTenant + "/" + ModeTenant:
		return TenantView
	}
	return RoleUnknown
}
