package authz

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionMatrix(t *testing.T) {
	tests := []struct {
		role Role
		want []Permission
	}{
		{RoleSystemAdministrator, []Permission{PermissionSystemManage, PermissionLogView, PermissionConnectorManage, PermissionRecordCreate, PermissionRecordEdit, PermissionPolicyManage}},
		{RoleComplianceManager, []Permission{PermissionRecordCreate, PermissionRecordEdit, PermissionRecordDelete, PermissionLegalHoldManage, PermissionPolicyManage, PermissionLogView, PermissionConnectorManage}},
		{RoleRecordsOfficer, []Permission{PermissionRecordCreate, PermissionRecordEdit}},
		{RoleLegalAnalyst, []Permission{PermissionLegalHoldManage, PermissionLogView}},
		{RoleInternalAuditor, []Permission{PermissionLogView}},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, PermissionsFor(tt.role))
		})
	}
}

func TestHasPermissionIsTotal(t *testing.T) {
	roles := append([]Role{0, 42}, RoleValues()...)
	for _, role := range roles {
		for _, p := range PermissionValues() {
			first := HasPermission(role, p)
			assert.Equal(t, first, HasPermission(role, p), "%s/%s must be deterministic", role, p)
		}
	}
	for _, p := range PermissionValues() {
		assert.False(t, HasPermission(Role(0), p))
		assert.False(t, HasPermission(Role(42), p))
	}
}

func TestOnlyComplianceManagerMayDelete(t *testing.T) {
	for _, role := range RoleValues() {
		got := HasPermission(role, PermissionRecordDelete)
		assert.Equal(t, role == RoleComplianceManager, got, role.String())
	}
}

func TestOperationalRolesAreSubsets(t *testing.T) {
	// The records officer and auditor capabilities overlap with the compliance
	// manager's; every overlapping grant must also be held by the manager.
	for _, lower := range []Role{RoleRecordsOfficer, RoleLegalAnalyst, RoleInternalAuditor} {
		for _, p := range PermissionsFor(lower) {
			assert.True(t, HasPermission(RoleComplianceManager, p), "%s grants %s", lower, p)
		}
	}
}

func TestGateRequire(t *testing.T) {
	var denied []Permission
	g := &Gate{OnDeny: func(_ Role, p Permission) { denied = append(denied, p) }}

	require.NoError(t, g.Require(RoleComplianceManager, PermissionRecordDelete))
	require.NoError(t, g.Require(RoleSystemAdministrator, PermissionPolicyManage, PermissionSystemManage))

	err := g.Require(RoleRecordsOfficer, PermissionRecordEdit, PermissionRecordDelete)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Contains(t, err.Error(), "RECORD_DELETE")
	assert.Equal(t, []Permission{PermissionRecordDelete}, denied)
}

func TestNilGateRequire(t *testing.T) {
	var g *Gate
	assert.ErrorIs(t, g.Require(RoleInternalAuditor, PermissionSystemManage), ErrUnauthorized)
}

func TestRoleText(t *testing.T) {
	data, err := json.Marshal(RoleComplianceManager)
	require.NoError(t, err)
	assert.Equal(t, `"Compliance Manager"`, string(data))

	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"internal auditor"`), &r))
	assert.Equal(t, RoleInternalAuditor, r)

	assert.Error(t, json.Unmarshal([]byte(`"Superuser"`), &r))
	assert.Equal(t, "Role(0)", Role(0).String())
}

func TestPermissionString(t *testing.T) {
	assert.Equal(t, "LEGAL_HOLD_MANAGE", PermissionLegalHoldManage.String())
	p, err := PermissionString("connector_manage")
	require.NoError(t, err)
	assert.Equal(t, PermissionConnectorManage, p)
}
