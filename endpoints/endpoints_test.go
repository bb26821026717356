package endpoints_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/broady/catalystwan"
	"github.com/broady/catalystwan/endpoints"
	"github.com/broady/catalystwan/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func newAPI(t *testing.T, ft *testutil.FakeTransport) (*endpoints.APIContainer, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	host := catalystwan.NewEndpoints(ft).
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	return endpoints.NewAPIContainer(host), &logs
}

func ptr[T any](v T) *T {
	return &v
}

func TestFindUsers(t *testing.T) {
	ft := testutil.NewFakeTransport().
		RespondJSON(`{"data":[{"userName":"admin","group":["netadmin"]},{"userName":"bob","group":[],"locale":"en_US"}]}`)
	api, _ := newAPI(t, ft)

	users, err := api.AdministrationUserAndGroup.FindUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertRequest(t, ft.LastRequest(), "GET", "/dataservice/admin/user")

	expected := []endpoints.User{
		{Username: "admin", Group: []string{"netadmin"}},
		{Username: "bob", Group: []string{}, Locale: ptr("en_US")},
	}
	if diff := cmp.Diff(expected, users.Items()); diff != "" {
		t.Errorf("users mismatch (-want +got):\n%s", diff)
	}

	bob, err := users.FilterBy(map[string]any{"userName": "bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bob.Len() != 1 {
		t.Errorf("expected 1 user named bob, got %d", bob.Len())
	}
}

func TestCreateUser(t *testing.T) {
	ft := testutil.NewFakeTransport()
	api, _ := newAPI(t, ft)

	err := api.AdministrationUserAndGroup.CreateUser(context.Background(), endpoints.User{
		Username: "alice",
		Password: ptr("secret"),
		Group:    []string{"basic"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := ft.LastRequest()
	testutil.AssertRequest(t, req, "POST", "/dataservice/admin/user")
	testutil.AssertHeader(t, req, "content-type", "application/json")
	testutil.AssertJSONBody(t, ft.Body(0), `{"userName":"alice","password":"secret","group":["basic"]}`)
}

func TestCreateUser_Invalid(t *testing.T) {
	ft := testutil.NewFakeTransport()
	api, _ := newAPI(t, ft)

	err := api.AdministrationUserAndGroup.CreateUser(context.Background(), endpoints.User{Group: []string{"basic"}})
	if !errors.Is(err, catalystwan.ErrPayloadType) {
		t.Fatalf("expected payload type error, got %v", err)
	}
	testutil.AssertCalls(t, ft, 0)
}

func TestUpdateUser_Union(t *testing.T) {
	tests := []struct {
		name     string
		change   endpoints.UserChange
		expected string
	}{
		{
			name:     "user",
			change:   endpoints.User{Username: "alice", Group: []string{"basic"}},
			expected: `{"userName":"alice","group":["basic"]}`,
		},
		{
			name:     "update request",
			change:   endpoints.UserUpdateRequest{Username: "alice", Locale: ptr("fr_FR")},
			expected: `{"userName":"alice","currentPassword":false,"showPassword":false,"showConfirmPassword":false,"locale":"fr_FR"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := testutil.NewFakeTransport()
			api, _ := newAPI(t, ft)
			if err := api.AdministrationUserAndGroup.UpdateUser(context.Background(), "alice", tt.change); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertRequest(t, ft.LastRequest(), "PUT", "/dataservice/admin/user/alice")
			testutil.AssertJSONBody(t, ft.Body(0), tt.expected)
		})
	}
}

func TestDeleteResourceGroup(t *testing.T) {
	ft := testutil.NewFakeTransport().WithAPIVersion("20.9")
	api, logs := newAPI(t, ft)

	if err := api.AdministrationUserAndGroup.DeleteResourceGroup(context.Background(), "rg-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := ft.LastRequest()
	testutil.AssertRequest(t, req, "DELETE", "/dataservice/admin/resourcegroup/rg-1")
	if diff := cmp.Diff(map[string]any{"json": map[string]any{}}, req.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %s", logs.String())
	}
}

func TestFindResourceGroups_UnsupportedVersion(t *testing.T) {
	ft := testutil.NewFakeTransport().WithAPIVersion("20.13").RespondJSON(`[]`)
	api, logs := newAPI(t, ft)

	groups, err := api.AdministrationUserAndGroup.FindResourceGroups(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if groups.Len() != 0 {
		t.Errorf("expected no groups, got %d", groups.Len())
	}
	testutil.AssertCalls(t, ft, 1)
	if !strings.Contains(logs.String(), "unsupported api version") {
		t.Errorf("expected version warning, got %q", logs.String())
	}
}

func TestUnlock(t *testing.T) {
	id := uuid.MustParse("6a4a3b1e-1c7f-4d9a-9a51-0d7c2b8f5e10")
	ft := testutil.NewFakeTransport().WithAPIVersion("20.12.0-144-li").RespondJSON(`{"parentTaskId":"task-1"}`)
	api, logs := newAPI(t, ft)

	resp, err := api.ConfigurationDeviceInventory.Unlock(context.Background(), id, endpoints.DeviceUnlockPayload{
		DeviceType: "vedge",
		Devices:    []endpoints.UnlockDeviceDetail{{DeviceID: "C8K-1", DeviceIP: "10.0.0.1"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ParentTaskID != "task-1" {
		t.Errorf("expected parent task task-1, got %q", resp.ParentTaskID)
	}
	testutil.AssertRequest(t, ft.LastRequest(), "POST", "/dataservice/system/device/"+id.String()+"/unlock")
	testutil.AssertJSONBody(t, ft.Body(0), `{"deviceType":"vedge","devices":[{"deviceId":"C8K-1","deviceIP":"10.0.0.1"}]}`)
	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %s", logs.String())
	}
}

func TestGetDeviceDetails(t *testing.T) {
	ft := testutil.NewFakeTransport().
		RespondJSON(`{"data":{"deviceType":"vedge","uuid":"C8K-1","host-name":"edge1"}}`)
	api, _ := newAPI(t, ft)

	devices, err := api.ConfigurationDeviceInventory.GetDeviceDetails(context.Background(),
		endpoints.DeviceCategoryVEdges,
		endpoints.DeviceDetailsQueryParams{Model: ptr("vedge-C8000V"), State: []string{"tokengenerated", "bootstrapconfiggenerated"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := ft.LastRequest()
	testutil.AssertRequest(t, req, "GET", "/dataservice/system/device/vedges")
	if got := req.Params.Get("model"); got != "vedge-C8000V" {
		t.Errorf("expected model param, got %q", got)
	}
	if diff := cmp.Diff([]string{"tokengenerated", "bootstrapconfiggenerated"}, req.Params["state"]); diff != "" {
		t.Errorf("state params mismatch (-want +got):\n%s", diff)
	}
	if req.Params.Has("family") {
		t.Errorf("expected unset family to be omitted, got %q", req.Params.Get("family"))
	}

	// A single object at the key is a one-element sequence.
	if devices.Len() != 1 {
		t.Fatalf("expected 1 device, got %d", devices.Len())
	}
	if host := devices.At(0).HostName; host == nil || *host != "edge1" {
		t.Errorf("expected host-name edge1, got %v", host)
	}
}

func TestUploadWANEdgeList(t *testing.T) {
	ft := testutil.NewFakeTransport().RespondJSON(`{"vedgeListUploadStatus":"success","activityList":["uploaded 2"]}`)
	api, _ := newAPI(t, ft)

	payload := &endpoints.SerialFilePayload{
		Name:    "serials.viptela",
		Content: strings.NewReader("serial-file-content"),
	}
	resp, err := api.ConfigurationDeviceInventory.UploadWANEdgeList(context.Background(), payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.VedgeListUploadStatus == nil || *resp.VedgeListUploadStatus != "success" {
		t.Errorf("expected upload status success, got %v", resp.VedgeListUploadStatus)
	}

	req := ft.LastRequest()
	testutil.AssertRequest(t, req, "POST", "/dataservice/system/device/fileupload")
	if diff := cmp.Diff(map[string]any{"validity": "valid", "upload": true}, req.Body); diff != "" {
		t.Errorf("form fields mismatch (-want +got):\n%s", diff)
	}
	part, ok := req.Multipart["file"]
	if !ok {
		t.Fatal("expected file part")
	}
	if part.Filename != "serials.viptela" {
		t.Errorf("expected filename serials.viptela, got %q", part.Filename)
	}
	data, _ := io.ReadAll(part.Content)
	if string(data) != "serial-file-content" {
		t.Errorf("expected file content, got %q", data)
	}
}

func TestOpenSerialFile(t *testing.T) {
	if _, err := endpoints.OpenSerialFile(t.TempDir()+"/missing.viptela", endpoints.ValidityValid); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTenantManagement_View(t *testing.T) {
	tests := []struct {
		name string
		role catalystwan.Role
		warn bool
	}{
		{"provider", catalystwan.ProviderView, false},
		{"provider as tenant", catalystwan.ProviderAsTenantView, false},
		{"tenant", catalystwan.TenantView, true},
		{"unknown", catalystwan.RoleUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := testutil.NewFakeTransport().WithRole(tt.role).
				RespondJSON(`{"data":[{"name":"t1","desc":"first","orgName":"org","subDomain":"t1.example.com"}]}`)
			api, logs := newAPI(t, ft)

			tenants, err := api.TenantManagement.GetAllTenants(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tenants.Len() != 1 || tenants.At(0).Name != "t1" {
				t.Errorf("expected tenant t1, got %v", tenants)
			}
			warned := strings.Contains(logs.String(), "unsupported session role")
			if warned != tt.warn {
				t.Errorf("expected warning=%v, got logs %q", tt.warn, logs.String())
			}
		})
	}
}

func TestCreateTenantAsyncBulk(t *testing.T) {
	ft := testutil.NewFakeTransport().WithRole(catalystwan.ProviderView).WithAPIVersion("20.12").
		RespondJSON(`{"id":"task-7"}`)
	api, _ := newAPI(t, ft)

	task, err := api.TenantManagement.CreateTenantAsyncBulk(context.Background(), []endpoints.Tenant{
		{Name: "t1", Desc: "one", OrgName: "org", Subdomain: "t1.example.com"},
		{Name: "t2", Desc: "two", OrgName: "org", Subdomain: "t2.example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "task-7" {
		t.Errorf("expected task-7, got %q", task.ID)
	}
	testutil.AssertJSONBody(t, ft.Body(0), `[
		{"name":"t1","desc":"one","orgName":"org","subDomain":"t1.example.com"},
		{"name":"t2","desc":"two","orgName":"org","subDomain":"t2.example.com"}
	]`)
}

func TestNewTenantUpdateRequest(t *testing.T) {
	if _, err := endpoints.NewTenantUpdateRequest(endpoints.Tenant{Name: "t1"}); err == nil {
		t.Error("expected error for tenant without id")
	}
	req, err := endpoints.NewTenantUpdateRequest(endpoints.Tenant{TenantID: ptr("id-1"), Subdomain: "t1", Desc: "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := endpoints.TenantUpdateRequest{TenantID: "id-1", Subdomain: "t1", Desc: "d"}
	if diff := cmp.Diff(expected, req); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestServerInfo(t *testing.T) {
	ft := testutil.NewFakeTransport().RespondJSON(`{"data":{
		"platformVersion":"20.12.0-144-li",
		"tenancyMode":"MultiTenant",
		"userMode":"provider",
		"viewMode":"tenant"
	}}`)
	api, _ := newAPI(t, ft)

	info, err := api.Client.Server(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertRequest(t, ft.LastRequest(), "GET", "/dataservice/client/server")
	if got := info.Role(); got != catalystwan.ProviderAsTenantView {
		t.Errorf("expected provider-as-tenant, got %s", got)
	}
	if got := info.APIVersion().String(); got != "20.12" {
		t.Errorf("expected api version 20.12, got %s", got)
	}
}

func TestUserGroupTasks(t *testing.T) {
	var g endpoints.UserGroup
	g.EnableRead("Device Inventory", "Tenant Management")
	g.EnableReadWrite("Device Inventory")
	g.Disable("Tenant Management")

	expected := []endpoints.UserGroupTask{
		{Enabled: true, Feature: "Device Inventory", Read: true, Write: true},
		{Feature: "Tenant Management"},
	}
	if diff := cmp.Diff(expected, g.Tasks); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
	if _, ok := g.Task("Audit Log"); ok {
		t.Error("expected no task for Audit Log")
	}
}

func TestRegistry(t *testing.T) {
	reg := endpoints.Registry()
	for _, name := range []string{
		"AdministrationUserAndGroup.FindUsers",
		"ConfigurationDeviceInventory.UploadWANEdgeList",
		"TenantManagement.GetTenant",
		"Client.Server",
	} {
		if _, ok := reg.Lookup(name); !ok {
			t.Errorf("expected %s to be declared", name)
		}
	}

	info, _ := reg.Lookup("AdministrationUserAndGroup.UpdateUser")
	if got := info.Payload.String(); got != "Union[User, UserUpdateRequest]" {
		t.Errorf("expected union payload, got %s", got)
	}
	info, _ = reg.Lookup("ConfigurationDeviceInventory.UploadWANEdgeList")
	if info.Payload.Kind != catalystwan.KindCustom {
		t.Errorf("expected custom payload, got %s", info.Payload.Kind)
	}
}
