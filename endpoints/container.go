// Package endpoints declares manager operations on top of catalystwan and
// groups them by API area.
package endpoints

import "github.com/broady/catalystwan"

// APIContainer holds one value per API group, all sharing the same host.
type APIContainer struct {
	AdministrationUserAndGroup   AdministrationUserAndGroup
	Client                       Client
	ConfigurationDeviceInventory ConfigurationDeviceInventory
	TenantManagement             TenantManagement
}

// NewAPIContainer binds every group to host.
func NewAPIContainer(host *catalystwan.Endpoints) *APIContainer {
	return &APIContainer{
		AdministrationUserAndGroup:   AdministrationUserAndGroup{host},
		Client:                       Client{host},
		ConfigurationDeviceInventory: ConfigurationDeviceInventory{host},
		TenantManagement:             TenantManagement{host},
	}
}

// Registry returns the registry holding the declarations of this package.
func Registry() *catalystwan.Registry {
	return catalystwan.DefaultRegistry
}
