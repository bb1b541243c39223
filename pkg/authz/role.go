package authz

//go:generate go run github.com/dmarkham/enumer -type Role -linecomment -json -text -yaml -output role.gen.go

// Role is the sole authorization input of an identity.
type Role int

const (
	RoleSystemAdministrator Role = iota + 1 // System Administrator
	RoleComplianceManager                   // Compliance Manager
	RoleRecordsOfficer                      // Records Officer
	RoleLegalAnalyst                        // Legal Analyst
	RoleInternalAuditor                     // Internal Auditor
)
