// Package authz implements the authorization gate for the records store.
//
// Roles and permissions are closed enumerations. The permission matrix is a
// total, pure function over the role set:
//
//	authz.HasPermission(authz.RoleComplianceManager, authz.PermissionRecordDelete) // true
//	authz.HasPermission(authz.RoleRecordsOfficer, authz.PermissionRecordDelete)    // false
//
// Every mutating entry point calls Gate.Require before it touches state. A
// rejected call returns ErrUnauthorized and leaves no trace: rejections are
// not written to the audit trail.
package authz
