package endpoints

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/broady/catalystwan"
	"github.com/google/uuid"
)

type UnlockDeviceDetail struct {
	DeviceID string `json:"deviceId" validate:"required"`
	DeviceIP string `json:"deviceIP" validate:"required"`
}

type DeviceUnlockPayload struct {
	DeviceType string               `json:"deviceType" validate:"required"`
	Devices    []UnlockDeviceDetail `json:"devices" validate:"dive"`
}

type DeviceUnlockResponse struct {
	ParentTaskID string `json:"parentTaskId"`
}

// Personality is the role of a device in the overlay.
type Personality string

const (
	PersonalityEdge    Personality = "vedge"
	PersonalityVBond   Personality = "vbond"
	PersonalityVSmart  Personality = "vsmart"
	PersonalityVManage Personality = "vmanage"
)

type DeviceCreationPayload struct {
	DeviceIP    string      `json:"deviceIP" validate:"required"`
	GenerateCSR bool        `json:"generateCSR"`
	Password    string      `json:"password" validate:"required"`
	Personality Personality `json:"personality" validate:"oneof=vedge vbond vsmart vmanage"`
	Port        *string     `json:"port,omitempty"`
	Protocol    string      `json:"protocol" validate:"omitempty,oneof=DTLS TLS"`
	Username    string      `json:"username" validate:"required"`
}

type DeviceDeletionResponse struct {
	LocalDeleteFromDB *bool   `json:"localDeleteFromDB,omitempty"`
	ID                *string `json:"id,omitempty"`
	Status            *string `json:"status,omitempty"`
}

// DeviceCategory selects the devices listed by GetDeviceDetails.
type DeviceCategory string

const (
	DeviceCategoryControllers DeviceCategory = "controllers"
	DeviceCategoryVEdges      DeviceCategory = "vedges"
)

// DeviceDetailsResponse is one device of the inventory. Only a subset of
// the fields reported by the manager is decoded.
type DeviceDetailsResponse struct {
	DeviceType          *string  `json:"deviceType,omitempty"`
	SerialNumber        *string  `json:"serialNumber,omitempty"`
	UUID                *string  `json:"uuid,omitempty"`
	ManagementSystemIP  *string  `json:"managementSystemIP,omitempty"`
	ChasisNumber        *string  `json:"chasisNumber,omitempty"`
	ConfigOperationMode *string  `json:"configOperationMode,omitempty"`
	DeviceModel         *string  `json:"deviceModel,omitempty"`
	DeviceState         *string  `json:"deviceState,omitempty"`
	Validity            *string  `json:"validity,omitempty"`
	PlatformFamily      *string  `json:"platformFamily,omitempty"`
	Username            *string  `json:"username,omitempty"`
	State               *string  `json:"state,omitempty"`
	GlobalState         *string  `json:"globalState,omitempty"`
	Valid               *string  `json:"valid,omitempty"`
	DeviceIP            *string  `json:"deviceIP,omitempty"`
	Activity            []string `json:"activity,omitempty"`
	CertInstallStatus   *string  `json:"certInstallStatus,omitempty"`
	Org                 *string  `json:"org,omitempty"`
	Personality         *string  `json:"personality,omitempty"`
	ResourceGroup       *string  `json:"resourceGroup,omitempty"`
	ID                  *string  `json:"id,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	DraftMode           *string  `json:"draftMode,omitempty"`
	DeviceLock          *string  `json:"device-lock,omitempty"`
	ManagedBy           *string  `json:"managed-by,omitempty"`
	ConfiguredSiteID    *string  `json:"configuredSiteId,omitempty"`
	Template            *string  `json:"template,omitempty"`
	TemplateID          *string  `json:"templateId,omitempty"`
	TemplateStatus      *string  `json:"templateStatus,omitempty"`
	DomainID            *string  `json:"domain-id,omitempty"`
	SystemIP            *string  `json:"system-ip,omitempty"`
	SiteID              *string  `json:"site-id,omitempty"`
	HostName            *string  `json:"host-name,omitempty"`
	Version             *string  `json:"version,omitempty"`
	Reachability        *string  `json:"reachability,omitempty"`
	LastUpdated         *int64   `json:"lastupdated,omitempty"`
	UptimeDate          *int64   `json:"uptime-date,omitempty"`
	DefaultVersion      *string  `json:"defaultVersion,omitempty"`
	AvailableVersions   []string `json:"availableVersions,omitempty"`
	SiteName            *string  `json:"site-name,omitempty"`
}

// DeviceDetailsQueryParams filters GetDeviceDetails. Unset fields are not
// sent.
type DeviceDetailsQueryParams struct {
	Model    *string  `json:"model,omitempty"`
	State    []string `json:"state,omitempty"`
	UUID     []string `json:"uuid,omitempty"`
	DeviceIP []string `json:"deviceIP,omitempty"`
	Validity []string `json:"validity,omitempty"`
	Family   *string  `json:"family,omitempty"`
}

// Validity is the state assigned to devices of an uploaded serial file.
type Validity string

const (
	ValidityValid   Validity = "valid"
	ValidityInvalid Validity = "invalid"
)

type SmartAccountSyncParams struct {
	Password       string   `json:"password" validate:"required"`
	Username       string   `json:"username" validate:"required"`
	ValidityString Validity `json:"validity_string" validate:"omitempty,oneof=valid invalid"`
}

type ProcessID struct {
	ProcessID string `json:"processId"`
}

// SerialFilePayload uploads a WAN edge serial file as multipart form data.
type SerialFilePayload struct {
	Name     string
	Content  io.Reader
	Validity Validity

	file *os.File
}

var _ catalystwan.CustomPayload = (*SerialFilePayload)(nil)

// OpenSerialFile opens the serial file at path. The caller must Close the
// payload once the upload is done.
func OpenSerialFile(path string, validity Validity) (*SerialFilePayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &SerialFilePayload{
		Name:     filepath.Base(path),
		Content:  f,
		Validity: validity,
		file:     f,
	}, nil
}

// Prepare implements catalystwan.CustomPayload.
func (p *SerialFilePayload) Prepare() (*catalystwan.PreparedBody, error) {
	if p.Content == nil {
		return nil, fmt.Errorf("serial file %q has no content", p.Name)
	}
	validity := p.Validity
	if validity == "" {
		validity = ValidityValid
	}
	return &catalystwan.PreparedBody{
		Body: map[string]any{
			"validity": string(validity),
			"upload":   true,
		},
		Multipart: map[string]catalystwan.FilePart{
			"file": {Filename: p.Name, Content: p.Content},
		},
	}, nil
}

// Close closes the file opened by OpenSerialFile.
func (p *SerialFilePayload) Close() error {
	if p.file == nil {
		return nil
	}
	return p.file.Close()
}

type ConfigType string

const (
	ConfigTypeCloudInit     ConfigType = "cloudinit"
	ConfigTypeEncodedString ConfigType = "encodedstring"
)

type GenerateBootstrapConfigurationQueryParams struct {
	ConfigType      ConfigType `json:"configtype,omitempty"`
	InclDefRootCert bool       `json:"inclDefRootCert"`
	Version         string     `json:"version,omitempty"`
}

// DefaultBootstrapParams are the parameters used by the manager UI.
func DefaultBootstrapParams() GenerateBootstrapConfigurationQueryParams {
	return GenerateBootstrapConfigurationQueryParams{ConfigType: ConfigTypeCloudInit, Version: "v1"}
}

type BootstrapConfiguration struct {
	BootstrapConfig *string `json:"bootstrapConfig,omitempty"`
}

type UploadSerialFileResponse struct {
	VedgeListUploadMsg    *string `json:"vedgeListUploadMsg,omitempty"`
	VedgeListUploadStatus *string `json:"vedgeListUploadStatus,omitempty"`
	ID                    *string `json:"id,omitempty"`
	VedgeListStatusCode   *string `json:"vedgeListStatusCode,omitempty"`
	// ActivityList is either a list or a message.
	ActivityList any `json:"activityList,omitempty"`
}

type unlockArgs struct {
	DeviceUUID uuid.UUID `param:"device_uuid"`
	Payload    DeviceUnlockPayload
}

type deviceUUIDArgs struct {
	UUID uuid.UUID `param:"uuid"`
}

type deviceDetailsArgs struct {
	DeviceCategory DeviceCategory `param:"device_category"`
	Params         DeviceDetailsQueryParams
}

type bootstrapArgs struct {
	UUID   uuid.UUID `param:"uuid"`
	Params GenerateBootstrapConfigurationQueryParams
}

var (
	unlockDevice = catalystwan.Post[unlockArgs, *DeviceUnlockResponse](
		"ConfigurationDeviceInventory.Unlock", "/system/device/{device_uuid}/unlock").
		Versions(">=20.9", catalystwan.Lenient)
	createDevice = catalystwan.Post[payloadArgs[DeviceCreationPayload], catalystwan.Empty](
		"ConfigurationDeviceInventory.CreateDevice", "/system/device")
	deleteDevice = catalystwan.Delete[deviceUUIDArgs, *DeviceDeletionResponse](
		"ConfigurationDeviceInventory.DeleteDevice", "/system/device/{uuid}")
	// Covers /system/device/controllers and /system/device/vedges.
	getDeviceDetails = catalystwan.Get[deviceDetailsArgs, *catalystwan.DataSequence[DeviceDetailsResponse]](
		"ConfigurationDeviceInventory.GetDeviceDetails", "/system/device/{device_category}",
		catalystwan.WithResponseKey("data"))
	syncDevicesFromSmartAccount = catalystwan.Post[payloadArgs[SmartAccountSyncParams], *ProcessID](
		"ConfigurationDeviceInventory.SyncDevicesFromSmartAccount", "/system/device/smartaccount/sync")
	uploadWANEdgeList = catalystwan.Post[payloadArgs[*SerialFilePayload], *UploadSerialFileResponse](
		"ConfigurationDeviceInventory.UploadWANEdgeList", "/system/device/fileupload")
	generateBootstrapConfiguration = catalystwan.Get[bootstrapArgs, *BootstrapConfiguration](
		"ConfigurationDeviceInventory.GenerateBootstrapConfiguration", "/system/device/bootstrap/device/{uuid}")
)

// ConfigurationDeviceInventory manages the device inventory.
type ConfigurationDeviceInventory struct {
	*catalystwan.Endpoints
}

// Unlock releases devices locked by a configuration change. Requires 20.9
// or later.
func (c ConfigurationDeviceInventory) Unlock(ctx context.Context, deviceUUID uuid.UUID, payload DeviceUnlockPayload) (*DeviceUnlockResponse, error) {
	return unlockDevice.Call(ctx, c.Endpoints, unlockArgs{deviceUUID, payload})
}

func (c ConfigurationDeviceInventory) CreateDevice(ctx context.Context, payload DeviceCreationPayload) error {
	_, err := createDevice.Call(ctx, c.Endpoints, payloadArgs[DeviceCreationPayload]{payload})
	return err
}

func (c ConfigurationDeviceInventory) DeleteDevice(ctx context.Context, id uuid.UUID) (*DeviceDeletionResponse, error) {
	return deleteDevice.Call(ctx, c.Endpoints, deviceUUIDArgs{id})
}

func (c ConfigurationDeviceInventory) GetDeviceDetails(ctx context.Context, category DeviceCategory, params DeviceDetailsQueryParams) (*catalystwan.DataSequence[DeviceDetailsResponse], error) {
	return getDeviceDetails.Call(ctx, c.Endpoints, deviceDetailsArgs{category, params})
}

func (c ConfigurationDeviceInventory) SyncDevicesFromSmartAccount(ctx context.Context, params SmartAccountSyncParams) (*ProcessID, error) {
	if params.ValidityString == "" {
		params.ValidityString = ValidityValid
	}
	return syncDevicesFromSmartAccount.Call(ctx, c.Endpoints, payloadArgs[SmartAccountSyncParams]{params})
}

// UploadWANEdgeList uploads a serial file. The payload is not closed.
func (c ConfigurationDeviceInventory) UploadWANEdgeList(ctx context.Context, payload *SerialFilePayload) (*UploadSerialFileResponse, error) {
	return uploadWANEdgeList.Call(ctx, c.Endpoints, payloadArgs[*SerialFilePayload]{payload})
}

func (c ConfigurationDeviceInventory) GenerateBootstrapConfiguration(ctx context.Context, id uuid.UUID, params GenerateBootstrapConfigurationQueryParams) (*BootstrapConfiguration, error) {
	return generateBootstrapConfiguration.Call(ctx, c.Endpoints, bootstrapArgs{id, params})
}
