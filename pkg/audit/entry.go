package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

// Entry adapts a committed audit trail entry to the syslog Event form.
type Entry struct {
	model.AuditLog
}

var _ Event = Entry{}

func (e Entry) MessageID() string {
	return strings.ToLower(strings.ReplaceAll(string(e.Action), "_", "-"))
}

func (e Entry) Message() string {
	return fmt.Sprintf("%s performed %s on %s", e.User, e.Action, e.Resource)
}

func (e Entry) Severity() Severity {
	return SyslogSeverity(e.AuditLog.Severity)
}

func (e Entry) Facility() int {
	switch e.Action {
	case model.ActionLogin, model.ActionLogout, model.ActionTimeout, model.ActionSwitchUser:
		return FacilityAuthPriv
	}
	return FacilityAudit
}

func (e Entry) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"resource": e.Resource,
		},
		SDIDAction: {
			"operation": string(e.Action),
			"severity":  string(e.AuditLog.Severity),
			"id":        e.ID,
		},
	}
	if e.Action == model.ActionCertificateOfDestruction {
		var cert model.DestructionCertificate
		if err := json.Unmarshal(e.Metadata, &cert); err == nil {
			sd[SDIDDisposal] = map[string]string{
				"record":   cert.RecordID,
				"checksum": cert.Checksum,
				"method":   cert.Method,
			}
		}
	}
	return sd
}
