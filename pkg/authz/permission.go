package authz

//go:generate go run github.com/dmarkham/enumer -type Permission -trimprefix Permission -transform snake-upper -json -text -output permission.gen.go

// Permission is a capability checked by the gate before a mutation.
type Permission int

const (
	PermissionSystemManage    Permission = iota + 1 // settings and user management
	PermissionRecordCreate                          // register documents
	PermissionRecordEdit                            // edit record metadata
	PermissionRecordDelete                          // secure disposition
	PermissionLegalHoldManage                       // apply and release legal holds
	PermissionPolicyManage                          // create and edit policies and schedules
	PermissionLogView                               // read the audit trail
	PermissionConnectorManage                       // add, remove, sync data sources
)
