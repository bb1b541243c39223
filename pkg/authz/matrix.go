package authz

// PermissionsFor returns the permission set granted to a role. Roles outside
// the enumeration get nothing.
func PermissionsFor(role Role) []Permission {
	switch role {
	case RoleSystemAdministrator:
		return []Permission{
			PermissionSystemManage,
			PermissionLogView,
			PermissionConnectorManage,
			PermissionRecordCreate,
			PermissionRecordEdit,
			PermissionPolicyManage,
		}
	case RoleComplianceManager:
		return []Permission{
			PermissionRecordCreate,
			PermissionRecordEdit,
			PermissionRecordDelete,
			PermissionLegalHoldManage,
			PermissionPolicyManage,
			PermissionLogView,
			PermissionConnectorManage,
		}
	case RoleRecordsOfficer:
		return []Permission{
			PermissionRecordCreate,
			PermissionRecordEdit,
		}
	case RoleLegalAnalyst:
		return []Permission{
			PermissionLegalHoldManage,
			PermissionLogView,
		}
	case RoleInternalAuditor:
		return []Permission{
			PermissionLogView,
		}
	default:
		return nil
	}
}

// HasPermission reports whether role is granted permission.
func HasPermission(role Role, permission Permission) bool {
	for _, p := range PermissionsFor(role) {
		if p == permission {
			return true
		}
	}
	return false
}
