package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/model"
)

func fixedLogger(buf *bytes.Buffer) *Logger {
	logger := NewLogger()
	logger.SetWriter(buf)
	logger.hostname = "host"
	logger.pid = 42
	logger.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return logger
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := fixedLogger(&buf)

	logger.Log(Entry{model.AuditLog{
		ID:       "log_1",
		User:     "admin@rekama.sys",
		Action:   model.ActionLogin,
		Resource: "System",
		Severity: model.SeverityLow,
	}})

	want := `<86>1 2026-03-01T12:00:00.000Z host rekama 42 login ` +
		`[action@32473 id="log_1" operation="LOGIN" severity="Low"]` +
		`[auth@32473 user="admin@rekama.sys"]` +
		`[subject@32473 resource="System"]` +
		` admin@rekama.sys performed LOGIN on System` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("Log() =\n%q\nwant\n%q", got, want)
	}
}

func TestEntry(t *testing.T) {
	tests := []struct {
		name      string
		entry     model.AuditLog
		wantMsgID string
		wantSev   Severity
		wantFac   int
	}{
		{
			name:      "session event",
			entry:     model.AuditLog{Action: model.ActionTimeout, Severity: model.SeverityLow},
			wantMsgID: "timeout",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuthPriv,
		},
		{
			name:      "legal hold",
			entry:     model.AuditLog{Action: model.ActionLegalHoldApplied, Severity: model.SeverityHigh},
			wantMsgID: "legal-hold-applied",
			wantSev:   SeverityWarning,
			wantFac:   FacilityAudit,
		},
		{
			name:      "critical",
			entry:     model.AuditLog{Action: model.ActionDeleteUser, Severity: model.SeverityCritical},
			wantMsgID: "delete-user",
			wantSev:   SeverityCritical,
			wantFac:   FacilityAudit,
		},
		{
			name:      "medium",
			entry:     model.AuditLog{Action: model.ActionDataExport, Severity: model.SeverityMedium},
			wantMsgID: "data-export",
			wantSev:   SeverityNotice,
			wantFac:   FacilityAudit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{tt.entry}
			if got := e.MessageID(); got != tt.wantMsgID {
				t.Errorf("MessageID() = %q, want %q", got, tt.wantMsgID)
			}
			if got := e.Severity(); got != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", got, tt.wantSev)
			}
			if got := e.Facility(); got != tt.wantFac {
				t.Errorf("Facility() = %v, want %v", got, tt.wantFac)
			}
		})
	}
}

func TestEntryCertificateStructuredData(t *testing.T) {
	cert := model.DestructionCertificate{RecordID: "rec_1", Checksum: "abc", Method: model.DestructionMethod}
	meta, _ := json.Marshal(cert)
	sd := Entry{model.AuditLog{Action: model.ActionCertificateOfDestruction, Metadata: meta}}.StructuredData()

	disposal, ok := sd[SDIDDisposal]
	if !ok {
		t.Fatal("expected disposal structured data")
	}
	if disposal["record"] != "rec_1" || disposal["checksum"] != "abc" {
		t.Errorf("unexpected disposal data: %v", disposal)
	}
}

func decodeMeta(t *testing.T, entry model.AuditLog) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(entry.Metadata, &m); err != nil {
		t.Fatalf("metadata is not a JSON object: %v", err)
	}
	return m
}

func TestSessionEvent(t *testing.T) {
	entry := SessionEvent{User: "admin@rekama.sys", Action: model.ActionLogin, ClientIP: "10.0.0.1"}.Entry()
	if entry.Resource != "System" {
		t.Errorf("Resource = %q, want System", entry.Resource)
	}
	if decodeMeta(t, entry)["clientIp"] != "10.0.0.1" {
		t.Error("expected client ip in metadata")
	}

	entry = SessionEvent{User: "admin@rekama.sys", Action: model.ActionSwitchUser, Target: "tom@rekama.sys"}.Entry()
	if entry.Resource != "tom@rekama.sys" {
		t.Errorf("Resource = %q, want the switch target", entry.Resource)
	}
}

func TestLegalHoldEvent(t *testing.T) {
	rec := model.DocumentRecord{ID: "rec_1", Title: "Contract.pdf"}
	applied := LegalHoldEvent{User: "u", Record: rec, Applied: true, Reason: "litigation"}.Entry()
	released := LegalHoldEvent{User: "u", Record: rec}.Entry()

	if applied.Action != model.ActionLegalHoldApplied || released.Action != model.ActionLegalHoldReleased {
		t.Errorf("unexpected actions %s / %s", applied.Action, released.Action)
	}
	if applied.Severity != model.SeverityHigh {
		t.Errorf("Severity = %s, want High", applied.Severity)
	}
	if decodeMeta(t, applied)["reason"] != "litigation" {
		t.Error("expected reason in metadata")
	}
}

func TestSyncEvent(t *testing.T) {
	c := model.Connector{ID: "c1", Name: "Drive", ItemsIndexed: 7}
	ok := SyncEvent{User: "u", Connector: c, Discovered: 2}.Entry()
	if ok.Severity != model.SeverityLow {
		t.Errorf("Severity = %s, want Low", ok.Severity)
	}
	failed := SyncEvent{User: "u", Connector: c, Err: errors.New("remote unreachable")}.Entry()
	if failed.Severity != model.SeverityHigh {
		t.Errorf("Severity = %s, want High", failed.Severity)
	}
	if decodeMeta(t, failed)["error"] != "remote unreachable" {
		t.Error("expected error in metadata")
	}
}

func TestEventSeverities(t *testing.T) {
	tests := []struct {
		name  string
		event Recordable
		want  model.Severity
	}{
		{"add connector", ConnectorEvent{Action: model.ActionAddConnector}, model.SeverityHigh},
		{"delete connector", ConnectorEvent{Action: model.ActionDeleteConnector}, model.SeverityHigh},
		{"pause connector", ConnectorEvent{Action: model.ActionPauseConnector}, model.SeverityMedium},
		{"create user", UserEvent{Action: model.ActionCreateUser, Subject: model.UserProfile{Role: authz.RoleLegalAnalyst}}, model.SeverityHigh},
		{"update user", UserEvent{Action: model.ActionUpdateUser}, model.SeverityMedium},
		{"configuration", ConfigurationEvent{}, model.SeverityMedium},
		{"export", ExportEvent{}, model.SeverityMedium},
		{"delete policy", PolicyEvent{Action: model.ActionDeletePolicy}, model.SeverityHigh},
		{"create record", RecordEvent{Action: model.ActionCreateRecord}, model.SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Entry().Severity; got != tt.want {
				t.Errorf("Severity = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDisposalDateEvent(t *testing.T) {
	d := time.Date(2033, 1, 1, 0, 0, 0, 0, time.UTC)
	entry := DisposalDateEvent{
		Record:       model.DocumentRecord{ID: "rec_1"},
		Schedule:     model.RetentionSchedule{Code: "FIN-001", Trigger: model.TriggerCreation},
		DisposalDate: &d,
	}.Entry()
	meta := decodeMeta(t, entry)
	if meta["scheduleCode"] != "FIN-001" {
		t.Errorf("scheduleCode = %v", meta["scheduleCode"])
	}
	if !strings.HasPrefix(meta["disposalDate"].(string), "2033-01-01") {
		t.Errorf("disposalDate = %v", meta["disposalDate"])
	}
}

func TestDigest(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := make([]model.AuditLog, DigestSize+5)
	for i := range entries {
		entries[i] = model.AuditLog{Timestamp: ts, User: "admin", Action: model.ActionLogin, Resource: "System", Severity: model.SeverityLow}
	}
	digest := Digest(entries)
	lines := strings.Split(digest, "\n")
	if len(lines) != DigestSize {
		t.Fatalf("Digest() has %d lines, want %d", len(lines), DigestSize)
	}
	want := "[2026-03-01T12:00:00.000Z] admin performed LOGIN on System (Severity: Low)"
	if lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
	if Digest(nil) != "" {
		t.Error("empty digest expected")
	}
}

func TestStructuredDataIsSorted(t *testing.T) {
	sd := map[string]map[string]string{
		"b@1": {"z": "1", "a": "2"},
		"a@1": {"k": "v"},
	}
	got := formatStructuredData(sd)
	want := `[a@1 k="v"][b@1 a="2" z="1"]`
	if got != want {
		t.Errorf("formatStructuredData() = %q, want %q", got, want)
	}
	if formatStructuredData(nil) != "" {
		t.Error("expected empty string for no data")
	}
}

func TestEscapeSDValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", `"simple"`},
		{`with"quote`, `"with\"quote"`},
		{`with\backslash`, `"with\\backslash"`},
		{"with]bracket", `"with\]bracket"`},
	}
	for _, tt := range tests {
		if got := escapeSDValue(tt.input); got != tt.want {
			t.Errorf("escapeSDValue(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
