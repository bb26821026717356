package endpoints

import (
	"context"
	"reflect"

	"github.com/broady/catalystwan"
)

// User is a manager user account.
type User struct {
	Username    string   `json:"userName" validate:"required"`
	Password    *string  `json:"password,omitempty"`
	Group       []string `json:"group"`
	Locale      *string  `json:"locale,omitempty"`
	Description *string  `json:"description,omitempty"`
	// ResourceGroup can be set only for >=20.5, <20.13, where it defaults
	// to "global".
	ResourceGroup *string `json:"resGroupName,omitempty"`
	// ResourceDomain can be set only for >=20.13, where it defaults to
	// "all".
	ResourceDomain *string `json:"resourceDomainName,omitempty"`
}

// UserUpdateRequest changes an existing user.
type UserUpdateRequest struct {
	Username            string   `json:"userName" validate:"required"`
	CurrentPassword     bool     `json:"currentPassword"`
	ShowPassword        bool     `json:"showPassword"`
	ShowConfirmPassword bool     `json:"showConfirmPassword"`
	CurrentUserPassword *string  `json:"currentUserPassword,omitempty"`
	Password            *string  `json:"password,omitempty"`
	Group               []string `json:"group,omitempty"`
	Locale              *string  `json:"locale,omitempty"`
	Description         *string  `json:"description,omitempty"`
	ResourceGroup       *string  `json:"resGroupName,omitempty"`
	ResourceDomain      *string  `json:"resourceDomainName,omitempty"`
}

// UserChange is either a full User or a UserUpdateRequest.
type UserChange interface {
	userChange()
}

func (User) userChange()              {}
func (UserUpdateRequest) userChange() {}

var userChangeType = catalystwan.RegisterUnion[UserChange](
	reflect.TypeFor[User](),
	reflect.TypeFor[UserUpdateRequest](),
)

type UserRole struct {
	IsAdmin bool `json:"isAdmin"`
}

type UserAuthType struct {
	UserAuthType string `json:"userAuthType"`
}

// UserGroupTask is the permission of a user group on one feature.
type UserGroupTask struct {
	Enabled bool   `json:"enabled"`
	Feature string `json:"feature" validate:"required"`
	Read    bool   `json:"read"`
	Write   bool   `json:"write"`
}

type UserGroup struct {
	GroupName string          `json:"groupName" validate:"required"`
	Tasks     []UserGroupTask `json:"tasks" validate:"dive"`
}

// Task returns the task for feature.
func (g *UserGroup) Task(feature string) (UserGroupTask, bool) {
	for _, t := range g.Tasks {
		if t.Feature == feature {
			return t, true
		}
	}
	return UserGroupTask{}, false
}

// UpdateTask replaces the task with the same feature, or appends task.
func (g *UserGroup) UpdateTask(task UserGroupTask) {
	for i, t := range g.Tasks {
		if t.Feature == task.Feature {
			g.Tasks[i] = task
			return
		}
	}
	g.Tasks = append(g.Tasks, task)
}

// EnableRead grants read-only access to features.
func (g *UserGroup) EnableRead(features ...string) {
	for _, f := range features {
		g.UpdateTask(UserGroupTask{Enabled: true, Feature: f, Read: true})
	}
}

// EnableReadWrite grants read and write access to features.
func (g *UserGroup) EnableReadWrite(features ...string) {
	for _, f := range features {
		g.UpdateTask(UserGroupTask{Enabled: true, Feature: f, Read: true, Write: true})
	}
}

// Disable revokes access to features.
func (g *UserGroup) Disable(features ...string) {
	for _, f := range features {
		g.UpdateTask(UserGroupTask{Feature: f})
	}
}

type UserResetRequest struct {
	Username string `json:"userName" validate:"required"`
}

// ActiveSession is a logged-in session. Times are epoch milliseconds.
type ActiveSession struct {
	UUID         string  `json:"uuid"`
	SourceIP     *string `json:"sourceIp,omitempty"`
	RemoteHost   *string `json:"remoteHost,omitempty"`
	RawUsername  *string `json:"rawUserName,omitempty"`
	RawID        *string `json:"rawId,omitempty"`
	TenantDomain *string `json:"tenantDomain,omitempty"`
	TenantID     *string `json:"tenantId,omitempty"`
	UserMode     *string `json:"userMode,omitempty"`

	// UserGroup is a JSON array quoted as a string by the manager.
	UserGroup *string `json:"userGroup,omitempty"`

	CreateDateTime   *int64 `json:"createDateTime,omitempty"`
	LastAccessedTime *int64 `json:"lastAccessedTime,omitempty"`
}

type SessionsDeleteRequest struct {
	Data []ActiveSession `json:"data"`
}

// NewSessionsDeleteRequest builds a request invalidating sessions. Only the
// identifying fields are kept.
func NewSessionsDeleteRequest(sessions ...ActiveSession) SessionsDeleteRequest {
	req := SessionsDeleteRequest{Data: make([]ActiveSession, 0, len(sessions))}
	for _, s := range sessions {
		req.Data = append(req.Data, ActiveSession{UUID: s.UUID, TenantID: s.TenantID, RawID: s.RawID})
	}
	return req
}

type InvalidateSessionMessage struct {
	Message *string `json:"message,omitempty"`
}

type ProfilePasswordUpdateRequest struct {
	OldPassword string `json:"oldpassword" validate:"required"`
	NewPassword string `json:"newpassword" validate:"required"`
}

type ResourceGroup struct {
	ID               *string           `json:"id,omitempty"`
	Name             string            `json:"name" validate:"required"`
	Desc             string            `json:"desc"`
	SiteIDs          []int             `json:"siteIds"`
	DeviceIPs        []string          `json:"deviceIPs,omitempty"`
	MgmtSystemIPsMap map[string]string `json:"mgmtSytemIpsMap,omitempty"`
	UUIDSystemIPsMap map[string]string `json:"uuidSytemIpsMap,omitempty"`
}

type ResourceGroupUpdateRequest struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Desc    string `json:"desc"`
	SiteIDs []int  `json:"siteIds"`
}

type ResourceGroupSwitchRequest struct {
	ResourceGroupName string `json:"resourceGroupName" validate:"required"`
}

type usernameArgs struct {
	Username string
}

type groupNameArgs struct {
	GroupName string `param:"group_name"`
}

type groupIDArgs struct {
	GroupID string `param:"group_id"`
}

type resourceGroupUpdateArgs struct {
	GroupID string `param:"group_id"`
	Payload ResourceGroupUpdateRequest
}

type userGroupUpdateArgs struct {
	GroupName string `param:"group_name"`
	Payload   UserGroup
}

type payloadArgs[P any] struct {
	Payload P
}

type usernamePayloadArgs[P any] struct {
	Username string
	Payload  P
}

const resourceGroupVersions = ">20.4, <20.13"

var (
	createUser = catalystwan.Post[payloadArgs[User], catalystwan.Empty](
		"AdministrationUserAndGroup.CreateUser", "/admin/user")
	createUserGroup = catalystwan.Post[payloadArgs[UserGroup], catalystwan.Empty](
		"AdministrationUserAndGroup.CreateUserGroup", "/admin/usergroup")
	deleteUser = catalystwan.Delete[usernameArgs, catalystwan.Empty](
		"AdministrationUserAndGroup.DeleteUser", "/admin/user/{username}")
	deleteUserGroup = catalystwan.Delete[groupNameArgs, catalystwan.Empty](
		"AdministrationUserAndGroup.DeleteUserGroup", "/admin/usergroup/{group_name}")
	findUserAuthType = catalystwan.Get[catalystwan.NoArgs, *UserAuthType](
		"AdministrationUserAndGroup.FindUserAuthType", "/admin/user/userAuthType")
	findUserGroups = catalystwan.Get[catalystwan.NoArgs, *catalystwan.DataSequence[UserGroup]](
		"AdministrationUserAndGroup.FindUserGroups", "/admin/usergroup", catalystwan.WithResponseKey("data"))
	findUserRole = catalystwan.Get[catalystwan.NoArgs, *UserRole](
		"AdministrationUserAndGroup.FindUserRole", "/admin/user/role")
	findUsers = catalystwan.Get[catalystwan.NoArgs, *catalystwan.DataSequence[User]](
		"AdministrationUserAndGroup.FindUsers", "/admin/user", catalystwan.WithResponseKey("data"))
	getActiveSessions = catalystwan.Get[catalystwan.NoArgs, *catalystwan.DataSequence[ActiveSession]](
		"AdministrationUserAndGroup.GetActiveSessions", "/admin/user/activeSessions", catalystwan.WithResponseKey("data"))
	removeSessions = catalystwan.Delete[payloadArgs[SessionsDeleteRequest], *InvalidateSessionMessage](
		"AdministrationUserAndGroup.RemoveSessions", "/admin/user/removeSessions", catalystwan.WithResponseKey("data"))
	resetUser = catalystwan.Post[payloadArgs[UserResetRequest], catalystwan.Empty](
		"AdministrationUserAndGroup.ResetUser", "/admin/user/reset")

	findResourceGroups = catalystwan.Get[catalystwan.NoArgs, *catalystwan.DataSequence[ResourceGroup]](
		"AdministrationUserAndGroup.FindResourceGroups", "/admin/resourcegroup").
		Versions(resourceGroupVersions, catalystwan.Lenient)
	switchResourceGroup = catalystwan.Post[payloadArgs[ResourceGroupSwitchRequest], catalystwan.Empty](
		"AdministrationUserAndGroup.SwitchResourceGroup", "/admin/resourcegroup/switch").
		Versions(resourceGroupVersions, catalystwan.Lenient)
	updateResourceGroup = catalystwan.Put[resourceGroupUpdateArgs, catalystwan.Empty](
		"AdministrationUserAndGroup.UpdateResourceGroup", "/admin/resourcegroup/{group_id}").
		Versions(resourceGroupVersions, catalystwan.Lenient)
	deleteResourceGroup = catalystwan.Delete[groupIDArgs, catalystwan.Empty](
		"AdministrationUserAndGroup.DeleteResourceGroup", "/admin/resourcegroup/{group_id}",
		catalystwan.WithTransportOption("json", map[string]any{})).
		Versions(resourceGroupVersions, catalystwan.Lenient)
	createResourceGroup = catalystwan.Post[payloadArgs[ResourceGroup], catalystwan.Empty](
		"AdministrationUserAndGroup.CreateResourceGroup", "/admin/resourcegroup").
		Versions(resourceGroupVersions, catalystwan.Lenient)

	updatePassword = catalystwan.Put[usernamePayloadArgs[UserUpdateRequest], catalystwan.Empty](
		"AdministrationUserAndGroup.UpdatePassword", "/admin/user/password/{username}")
	updateProfilePassword = catalystwan.Put[payloadArgs[ProfilePasswordUpdateRequest], catalystwan.Empty](
		"AdministrationUserAndGroup.UpdateProfilePassword", "/admin/user/profile/password")
	updateUser = catalystwan.Put[usernamePayloadArgs[UserChange], catalystwan.Empty](
		"AdministrationUserAndGroup.UpdateUser", "/admin/user/{username}")
	updateUserGroup = catalystwan.Put[userGroupUpdateArgs, catalystwan.Empty](
		"AdministrationUserAndGroup.UpdateUserGroup", "/admin/usergroup/{group_name}")
)

// AdministrationUserAndGroup manages users, user groups, sessions and
// resource groups.
type AdministrationUserAndGroup struct {
	*catalystwan.Endpoints
}

func (a AdministrationUserAndGroup) CreateUser(ctx context.Context, user User) error {
	_, err := createUser.Call(ctx, a.Endpoints, payloadArgs[User]{user})
	return err
}

func (a AdministrationUserAndGroup) CreateUserGroup(ctx context.Context, group UserGroup) error {
	_, err := createUserGroup.Call(ctx, a.Endpoints, payloadArgs[UserGroup]{group})
	return err
}

func (a AdministrationUserAndGroup) DeleteUser(ctx context.Context, username string) error {
	_, err := deleteUser.Call(ctx, a.Endpoints, usernameArgs{username})
	return err
}

func (a AdministrationUserAndGroup) DeleteUserGroup(ctx context.Context, groupName string) error {
	_, err := deleteUserGroup.Call(ctx, a.Endpoints, groupNameArgs{groupName})
	return err
}

func (a AdministrationUserAndGroup) FindUserAuthType(ctx context.Context) (*UserAuthType, error) {
	return findUserAuthType.Call(ctx, a.Endpoints, catalystwan.NoArgs{})
}

func (a AdministrationUserAndGroup) FindUserGroups(ctx context.Context) (*catalystwan.DataSequence[UserGroup], error) {
	return findUserGroups.Call(ctx, a.Endpoints, catalystwan.NoArgs{})
}

func (a AdministrationUserAndGroup) FindUserRole(ctx context.Context) (*UserRole, error) {
	return findUserRole.Call(ctx, a.Endpoints, catalystwan.NoArgs{})
}

func (a AdministrationUserAndGroup) FindUsers(ctx context.Context) (*catalystwan.DataSequence[User], error) {
	return findUsers.Call(ctx, a.Endpoints, catalystwan.NoArgs{})
}

func (a AdministrationUserAndGroup) GetActiveSessions(ctx context.Context) (*catalystwan.DataSequence[ActiveSession], error) {
	return getActiveSessions.Call(ctx, a.Endpoints, catalystwan.NoArgs{})
}

func (a AdministrationUserAndGroup) RemoveSessions(ctx context.Context, req SessionsDeleteRequest) (*InvalidateSessionMessage, error) {
	return removeSessions.Call(ctx, a.Endpoints, payloadArgs[SessionsDeleteRequest]{req})
}

func (a AdministrationUserAndGroup) ResetUser(ctx context.Context, req UserResetRequest) error {
	_, err := resetUser.Call(ctx, a.Endpoints, payloadArgs[UserResetRequest]{req})
	return err
}

func (a AdministrationUserAndGroup) FindResourceGroups(ctx context.Context) (*catalystwan.DataSequence[ResourceGroup], error) {
	return findResourceGroups.Call(ctx, a.Endpoints, catalystwan.NoArgs{})
}

func (a AdministrationUserAndGroup) SwitchResourceGroup(ctx context.Context, req ResourceGroupSwitchRequest) error {
	_, err := switchResourceGroup.Call(ctx, a.Endpoints, payloadArgs[ResourceGroupSwitchRequest]{req})
	return err
}

func (a AdministrationUserAndGroup) UpdateResourceGroup(ctx context.Context, groupID string, req ResourceGroupUpdateRequest) error {
	_, err := updateResourceGroup.Call(ctx, a.Endpoints, resourceGroupUpdateArgs{groupID, req})
	return err
}

// DeleteResourceGroup sends an empty JSON object as the body; the manager
// rejects the call without one.
func (a AdministrationUserAndGroup) DeleteResourceGroup(ctx context.Context, groupID string) error {
	_, err := deleteResourceGroup.Call(ctx, a.Endpoints, groupIDArgs{groupID})
	return err
}

func (a AdministrationUserAndGroup) CreateResourceGroup(ctx context.Context, group ResourceGroup) error {
	_, err := createResourceGroup.Call(ctx, a.Endpoints, payloadArgs[ResourceGroup]{group})
	return err
}

func (a AdministrationUserAndGroup) UpdatePassword(ctx context.Context, username string, req UserUpdateRequest) error {
	_, err := updatePassword.Call(ctx, a.Endpoints, usernamePayloadArgs[UserUpdateRequest]{username, req})
	return err
}

func (a AdministrationUserAndGroup) UpdateProfilePassword(ctx context.Context, req ProfilePasswordUpdateRequest) error {
	_, err := updateProfilePassword.Call(ctx, a.Endpoints, payloadArgs[ProfilePasswordUpdateRequest]{req})
	return err
}

// UpdateUser accepts a User or a UserUpdateRequest.
func (a AdministrationUserAndGroup) UpdateUser(ctx context.Context, username string, change UserChange) error {
	_, err := updateUser.Call(ctx, a.Endpoints, usernamePayloadArgs[UserChange]{username, change})
	return err
}

func (a AdministrationUserAndGroup) UpdateUserGroup(ctx context.Context, groupName string, group UserGroup) error {
	_, err := updateUserGroup.Call(ctx, a.Endpoints, userGroupUpdateArgs{groupName, group})
	return err
}
