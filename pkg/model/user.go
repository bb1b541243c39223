package model

import (
	"time"

	"github.com/cyberarian/rekama-sys/pkg/authz"
)

type UserProfile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      authz.Role `json:"role"`
	Avatar    string     `json:"avatar,omitempty"`
	LastLogin time.Time  `json:"lastLogin,omitempty"`
}

func (u *UserProfile) Validate() error {
	if u.ID == "" {
		return invalid("id", `""`)
	}
	if u.Email == "" {
		return invalid("email", `""`)
	}
	if !u.Role.IsARole() {
		return invalid("role", u.Role)
	}
	return nil
}

// AppSettings is the singleton organization configuration.
type AppSettings struct {
	OrganizationName string `json:"organizationName"`
	AdminEmail       string `json:"adminEmail"`
	RetentionDefault int    `json:"retentionDefault"`
	AutoScan         bool   `json:"autoScan"`
	EmailAlerts      bool   `json:"emailAlerts"`
}

// DefaultSettings are used when no settings have been stored.
func DefaultSettings() AppSettings {
	return AppSettings{
		OrganizationName: "Acme Corp",
		AdminEmail:       "admin@rekama.sys",
		RetentionDefault: 7,
		AutoScan:         true,
		EmailAlerts:      true,
	}
}
