package endpoints

import (
	"context"
	"errors"

	"github.com/broady/catalystwan"
)

// Tenant is a tenant of a multitenant manager.
type Tenant struct {
	Name                             string           `json:"name" validate:"required"`
	Desc                             string           `json:"desc" validate:"required"`
	OrgName                          string           `json:"orgName" validate:"required"`
	Subdomain                        string           `json:"subDomain" validate:"required"`
	FlakeID                          *int             `json:"flakeId,omitempty"`
	VBondAddress                     *string          `json:"vBondAddress,omitempty"`
	EdgeConnectorSystemIP            *string          `json:"edgeConnectorSystemIp,omitempty"`
	EdgeConnectorEnable              *bool            `json:"edgeConnectorEnable,omitempty"`
	VSmarts                          []string         `json:"vSmarts,omitempty"`
	WANEdgeForecast                  *int             `json:"wanEdgeForecast,omitempty"`
	SAMLSpInfo                       *string          `json:"samlSpInfo,omitempty"`
	IDPMap                           catalystwan.JSON `json:"idpMap,omitempty"`
	ConfigDBClusterServiceName       *string          `json:"configDBClusterServiceName,omitempty"`
	EdgeConnectorTunnelInterfaceName *string          `json:"edgeConnectorTunnelInterfaceName,omitempty"`
	TenantID                         *string          `json:"tenantId,omitempty"`
	SPMetadata                       *string          `json:"spMetadata,omitempty"`
	State                            *string          `json:"state,omitempty"`
	WANEdgePresent                   *int             `json:"wanEdgePresent,omitempty"`
}

type TenantDeleteRequest struct {
	Password string `json:"password" validate:"required"`
}

type TenantBulkDeleteRequest struct {
	Password     string   `json:"password" validate:"required"`
	TenantIDList []string `json:"tenantIdList" validate:"min=1"`
}

type TenantTaskID struct {
	ID string `json:"id"`
}

type ControlStatus struct {
	ControlUp   int `json:"controlUp"`
	Partial     int `json:"partial"`
	ControlDown int `json:"controlDown"`
}

type SiteHealth struct {
	FullConnectivity    int `json:"fullConnectivity"`
	PartialConnectivity int `json:"partialConnectivity"`
	NoConnectivity      int `json:"noConnectivity"`
}

type VEdgeHealth struct {
	Normal  int `json:"normal"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
}

type VSmartStatus struct {
	Up   int `json:"up"`
	Down int `json:"down"`
}

type TenantStatus struct {
	TenantID      string        `json:"tenantId"`
	TenantName    string        `json:"tenantName"`
	ControlStatus ControlStatus `json:"controlStatus"`
	SiteHealth    SiteHealth    `json:"siteHealth"`
	VEdgeHealth   VEdgeHealth   `json:"vEdgeHealth"`
	VSmartStatus  VSmartStatus  `json:"vSmartStatus"`
}

type TenantUpdateRequest struct {
	TenantID                         string  `json:"tenantId" validate:"required"`
	Subdomain                        string  `json:"subDomain"`
	Desc                             string  `json:"desc"`
	WANEdgeForecast                  *int    `json:"wanEdgeForecast,omitempty"`
	EdgeConnectorEnable              *bool   `json:"edgeConnectorEnable,omitempty"`
	EdgeConnectorSystemIP            *string `json:"edgeConnectorSystemIp,omitempty"`
	EdgeConnectorTunnelInterfaceName *string `json:"edgeConnectorTunnelInterfaceName,omitempty"`
}

// NewTenantUpdateRequest builds an update request from a tenant read from
// the manager.
func NewTenantUpdateRequest(t Tenant) (TenantUpdateRequest, error) {
	if t.TenantID == nil || *t.TenantID == "" {
		return TenantUpdateRequest{}, errors.New("tenantId required for update request")
	}
	return TenantUpdateRequest{
		TenantID:                         *t.TenantID,
		Subdomain:                        t.Subdomain,
		Desc:                             t.Desc,
		WANEdgeForecast:                  t.WANEdgeForecast,
		EdgeConnectorEnable:              t.EdgeConnectorEnable,
		EdgeConnectorSystemIP:            t.EdgeConnectorSystemIP,
		EdgeConnectorTunnelInterfaceName: t.EdgeConnectorTunnelInterfaceName,
	}, nil
}

type VSmartPlacementUpdateRequest struct {
	SrcVSmartUUID  string `json:"srcvSmartUuid" validate:"required"`
	DestVSmartUUID string `json:"destvSmartUuid" validate:"required"`
}

type VSmartTenantCapacity struct {
	VSmartUUID          string `json:"vSmartUuid"`
	TotalTenantCapacity int    `json:"totalTenantCapacity"`
	CurrentTenantCount  int    `json:"currentTenantCount"`
}

// VSmartTenantMap lists the tenants hosted by each vSmart.
type VSmartTenantMap struct {
	Data map[string][]Tenant `json:"data"`
}

type VSessionID struct {
	VSessionID string `json:"VSessionId"`
}

type tenantIDArgs struct {
	TenantID string `param:"tenant_id"`
}

type tenantPayloadArgs[P any] struct {
	TenantID string `param:"tenant_id"`
	Payload  P
}

var (
	provider         = []catalystwan.Role{catalystwan.ProviderView}
	providerOrTenant = []catalystwan.Role{catalystwan.ProviderView, catalystwan.ProviderAsTenantView}
)

var (
	createTenant = catalystwan.Post[payloadArgs[Tenant], *Tenant](
		"TenantManagement.CreateTenant", "/tenant").
		View(catalystwan.Lenient, provider...)
	createTenantAsync = catalystwan.Post[payloadArgs[Tenant], *TenantTaskID](
		"TenantManagement.CreateTenantAsync", "/tenant/async").
		View(catalystwan.Lenient, provider...)
	createTenantAsyncBulk = catalystwan.Post[payloadArgs[[]Tenant], *TenantTaskID](
		"TenantManagement.CreateTenantAsyncBulk", "/tenant/bulk/async").
		Versions(">=20.4", catalystwan.Lenient).
		View(catalystwan.Lenient, provider...)
	deleteTenant = catalystwan.Delete[tenantPayloadArgs[TenantDeleteRequest], catalystwan.Empty](
		"TenantManagement.DeleteTenant", "/tenant/{tenant_id}/delete").
		View(catalystwan.Lenient, provider...)
	deleteTenantAsyncBulk = catalystwan.Delete[payloadArgs[TenantBulkDeleteRequest], *TenantTaskID](
		"TenantManagement.DeleteTenantAsyncBulk", "/tenant/bulk/async").
		Versions(">=20.4", catalystwan.Lenient).
		View(catalystwan.Lenient, provider...)
	getAllTenantStatuses = catalystwan.Get[catalystwan.NoArgs, *catalystwan.DataSequence[TenantStatus]](
		"TenantManagement.GetAllTenantStatuses", "/tenantstatus", catalystwan.WithResponseKey("data")).
		View(catalystwan.Lenient, providerOrTenant...)
	getAllTenants = catalystwan.Get[catalystwan.NoArgs, *catalystwan.DataSequence[Tenant]](
		"TenantManagement.GetAllTenants", "/tenant", catalystwan.WithResponseKey("data")).
		View(catalystwan.Lenient, providerOrTenant...)
	getTenant = catalystwan.Get[tenantIDArgs, *Tenant](
		"TenantManagement.GetTenant", "/tenant/{tenant_id}").
		View(catalystwan.Lenient, providerOrTenant...)
	getTenantHostingCapacityOnVSmarts = catalystwan.Get[catalystwan.NoArgs, *catalystwan.DataSequence[VSmartTenantCapacity]](
		"TenantManagement.GetTenantHostingCapacityOnVSmarts", "/tenant/vsmart/capacity", catalystwan.WithResponseKey("data")).
		View(catalystwan.Lenient, provider...)
	getTenantVSmartMapping = catalystwan.Get[catalystwan.NoArgs, *VSmartTenantMap](
		"TenantManagement.GetTenantVSmartMapping", "/tenant/vsmart").
		View(catalystwan.Lenient, providerOrTenant...)
	updateTenant = catalystwan.Put[tenantPayloadArgs[TenantUpdateRequest], *Tenant](
		"TenantManagement.UpdateTenant", "/tenant/{tenant_id}").
		View(catalystwan.Lenient, provider...)
	updateTenantVSmartPlacement = catalystwan.Put[tenantPayloadArgs[VSmartPlacementUpdateRequest], catalystwan.Empty](
		"TenantManagement.UpdateTenantVSmartPlacement", "/tenant/{tenant_id}/vsmart").
		View(catalystwan.Lenient, provider...)
	vsessionID = catalystwan.Post[tenantIDArgs, *VSessionID](
		"TenantManagement.VSessionID", "/tenant/{tenant_id}/vsessionid").
		View(catalystwan.Lenient, provider...)
)

// TenantManagement manages the tenants of a multitenant manager. All
// operations are restricted to provider sessions, some also to
// provider-as-tenant sessions.
type TenantManagement struct {
	*catalystwan.Endpoints
}

func (t TenantManagement) CreateTenant(ctx context.Context, tenant Tenant) (*Tenant, error) {
	return createTenant.Call(ctx, t.Endpoints, payloadArgs[Tenant]{tenant})
}

func (t TenantManagement) CreateTenantAsync(ctx context.Context, tenant Tenant) (*TenantTaskID, error) {
	return createTenantAsync.Call(ctx, t.Endpoints, payloadArgs[Tenant]{tenant})
}

func (t TenantManagement) CreateTenantAsyncBulk(ctx context.Context, tenants []Tenant) (*TenantTaskID, error) {
	return createTenantAsyncBulk.Call(ctx, t.Endpoints, payloadArgs[[]Tenant]{tenants})
}

func (t TenantManagement) DeleteTenant(ctx context.Context, tenantID string, req TenantDeleteRequest) error {
	_, err := deleteTenant.Call(ctx, t.Endpoints, tenantPayloadArgs[TenantDeleteRequest]{tenantID, req})
	return err
}

func (t TenantManagement) DeleteTenantAsyncBulk(ctx context.Context, req TenantBulkDeleteRequest) (*TenantTaskID, error) {
	return deleteTenantAsyncBulk.Call(ctx, t.Endpoints, payloadArgs[TenantBulkDeleteRequest]{req})
}

func (t TenantManagement) GetAllTenantStatuses(ctx context.Context) (*catalystwan.DataSequence[TenantStatus], error) {
	return getAllTenantStatuses.Call(ctx, t.Endpoints, catalystwan.NoArgs{})
}

func (t TenantManagement) GetAllTenants(ctx context.Context) (*catalystwan.DataSequence[Tenant], error) {
	return getAllTenants.Call(ctx, t.Endpoints, catalystwan.NoArgs{})
}

func (t TenantManagement) GetTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	return getTenant.Call(ctx, t.Endpoints, tenantIDArgs{tenantID})
}

func (t TenantManagement) GetTenantHostingCapacityOnVSmarts(ctx context.Context) (*catalystwan.DataSequence[VSmartTenantCapacity], error) {
	return getTenantHostingCapacityOnVSmarts.Call(ctx, t.Endpoints, catalystwan.NoArgs{})
}

func (t TenantManagement) GetTenantVSmartMapping(ctx context.Context) (*VSmartTenantMap, error) {
	return getTenantVSmartMapping.Call(ctx, t.Endpoints, catalystwan.NoArgs{})
}

func (t TenantManagement) UpdateTenant(ctx context.Context, tenantID string, req TenantUpdateRequest) (*Tenant, error) {
	return updateTenant.Call(ctx, t.Endpoints, tenantPayloadArgs[TenantUpdateRequest]{tenantID, req})
}

func (t TenantManagement) UpdateTenantVSmartPlacement(ctx context.Context, tenantID string, req VSmartPlacementUpdateRequest) error {
	_, err := updateTenantVSmartPlacement.Call(ctx, t.Endpoints, tenantPayloadArgs[VSmartPlacementUpdateRequest]{tenantID, req})
	return err
}

func (t TenantManagement) VSessionID(ctx context.Context, tenantID string) (*VSessionID, error) {
	return vsessionID.Call(ctx, t.Endpoints, tenantIDArgs{tenantID})
}
