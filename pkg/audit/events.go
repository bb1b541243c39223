package audit

import (
	"encoding/json"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

// Recordable is an event that becomes an audit trail entry.
type Recordable interface {
	Entry() model.AuditLog
}

func metadata(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// SessionEvent covers LOGIN, LOGOUT, TIMEOUT and SWITCH_USER.
type SessionEvent struct {
	User     string
	Action   model.Action
	Target   string // the identity switched to
	ClientIP string
}

func (e SessionEvent) Entry() model.AuditLog {
	resource := "System"
	meta := map[string]string{}
	if e.Target != "" {
		resource = e.Target
		meta["target"] = e.Target
	}
	if e.ClientIP != "" {
		meta["clientIp"] = e.ClientIP
	}
	return model.AuditLog{
		User:     e.User,
		Action:   e.Action,
		Resource: resource,
		Severity: model.SeverityLow,
		Metadata: metadata(meta),
	}
}

// RecordEvent covers CREATE_RECORD and UPDATE_RECORD.
type RecordEvent struct {
	User   string
	Action model.Action
	Record model.DocumentRecord
}

func (e RecordEvent) Entry() model.AuditLog {
	return model.AuditLog{
		User:     e.User,
		Action:   e.Action,
		Resource: e.Record.Title,
		Severity: model.SeverityLow,
		Metadata: metadata(map[string]any{
			"recordId":       e.Record.ID,
			"version":        e.Record.Version,
			"classification": e.Record.Classification,
		}),
	}
}

// LegalHoldEvent is written when a hold is applied or released.
type LegalHoldEvent struct {
	User    string
	Record  model.DocumentRecord
	Applied bool
	Reason  string
}

func (e LegalHoldEvent) Entry() model.AuditLog {
	action := model.ActionLegalHoldReleased
	if e.Applied {
		action = model.ActionLegalHoldApplied
	}
	meta := map[string]any{"recordId": e.Record.ID}
	if e.Reason != "" {
		meta["reason"] = e.Reason
	}
	return model.AuditLog{
		User:     e.User,
		Action:   action,
		Resource: e.Record.Title,
		Severity: model.SeverityHigh,
		Metadata: metadata(meta),
	}
}

// DisposalDateEvent is written when a disposal date is computed from a
// retention schedule. A nil DisposalDate means the trigger is event based
// and the date was cleared.
type DisposalDateEvent struct {
	User         string
	Record       model.DocumentRecord
	Schedule     model.RetentionSchedule
	DisposalDate *time.Time
}

func (e DisposalDateEvent) Entry() model.AuditLog {
	meta := map[string]any{
		"recordId":     e.Record.ID,
		"scheduleCode": e.Schedule.Code,
		"trigger":      e.Schedule.Trigger,
	}
	if e.DisposalDate != nil {
		meta["disposalDate"] = e.DisposalDate.UTC()
	}
	return model.AuditLog{
		User:     e.User,
		Action:   model.ActionComputeDisposalDate,
		Resource: e.Record.Title,
		Severity: model.SeverityLow,
		Metadata: metadata(meta),
	}
}

// PolicyEvent covers CREATE_POLICY, UPDATE_POLICY and DELETE_POLICY.
type PolicyEvent struct {
	User   string
	Action model.Action
	Policy model.Policy
}

func (e PolicyEvent) Entry() model.AuditLog {
	severity := model.SeverityMedium
	if e.Action == model.ActionDeletePolicy {
		severity = model.SeverityHigh
	}
	return model.AuditLog{
		User:     e.User,
		Action:   e.Action,
		Resource: e.Policy.Name,
		Severity: severity,
		Metadata: metadata(map[string]string{"policyId": e.Policy.ID}),
	}
}

// ScheduleEvent covers CREATE_SCHEDULE and DELETE_SCHEDULE.
type ScheduleEvent struct {
	User     string
	Action   model.Action
	Schedule model.RetentionSchedule
}

func (e ScheduleEvent) Entry() model.AuditLog {
	severity := model.SeverityMedium
	if e.Action == model.ActionDeleteSchedule {
		severity = model.SeverityHigh
	}
	return model.AuditLog{
		User:     e.User,
		Action:   e.Action,
		Resource: e.Schedule.Code,
		Severity: severity,
		Metadata: metadata(map[string]any{
			"scheduleId":     e.Schedule.ID,
			"retentionYears": e.Schedule.RetentionYears,
		}),
	}
}

// ConnectorEvent covers ADD, UPDATE, DELETE, PAUSE and RESUME.
type ConnectorEvent struct {
	User      string
	Action    model.Action
	Connector model.Connector
}

func (e ConnectorEvent) Entry() model.AuditLog {
	var severity model.Severity
	switch e.Action {
	case model.ActionAddConnector, model.ActionDeleteConnector:
		severity = model.SeverityHigh
	default:
		severity = model.SeverityMedium
	}
	return model.AuditLog{
		User:     e.User,
		Action:   e.Action,
		Resource: e.Connector.Name,
		Severity: severity,
		Metadata: metadata(map[string]string{
			"connectorId": e.Connector.ID,
			"type":        string(e.Connector.Type),
		}),
	}
}

// SyncEvent is written after every sync that was not skipped.
type SyncEvent struct {
	User       string
	Connector  model.Connector
	Discovered int
	Err        error
}

func (e SyncEvent) Entry() model.AuditLog {
	meta := map[string]any{
		"connectorId":  e.Connector.ID,
		"discovered":   e.Discovered,
		"itemsIndexed": e.Connector.ItemsIndexed,
	}
	severity := model.SeverityLow
	if e.Err != nil {
		severity = model.SeverityHigh
		meta["error"] = e.Err.Error()
	}
	return model.AuditLog{
		User:     e.User,
		Action:   model.ActionSyncConnector,
		Resource: e.Connector.Name,
		Severity: severity,
		Metadata: metadata(meta),
	}
}

// UserEvent covers CREATE_USER, UPDATE_USER and DELETE_USER.
type UserEvent struct {
	User    string
	Action  model.Action
	Subject model.UserProfile
}

func (e UserEvent) Entry() model.AuditLog {
	severity := model.SeverityHigh
	if e.Action == model.ActionUpdateUser {
		severity = model.SeverityMedium
	}
	return model.AuditLog{
		User:     e.User,
		Action:   e.Action,
		Resource: e.Subject.Email,
		Severity: severity,
		Metadata: metadata(map[string]string{
			"userId": e.Subject.ID,
			"role":   e.Subject.Role.String(),
		}),
	}
}

// ConfigurationEvent is written when the settings change.
type ConfigurationEvent struct {
	User     string
	Settings model.AppSettings
}

func (e ConfigurationEvent) Entry() model.AuditLog {
	return model.AuditLog{
		User:     e.User,
		Action:   model.ActionUpdateConfiguration,
		Resource: "System Settings",
		Severity: model.SeverityMedium,
		Metadata: metadata(e.Settings),
	}
}

// ExportEvent is written after a full export was taken.
type ExportEvent struct {
	User    string
	Records int
	Logs    int
}

func (e ExportEvent) Entry() model.AuditLog {
	return model.AuditLog{
		User:     e.User,
		Action:   model.ActionDataExport,
		Resource: "Full System Backup",
		Severity: model.SeverityMedium,
		Metadata: metadata(map[string]int{"records": e.Records, "logs": e.Logs}),
	}
}
