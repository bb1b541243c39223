package store

import (
	"encoding/json"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/model"
)

// Seeded identifiers.
const (
	SeedAdminID   = "usr_admin"
	SeedOfficerID = "usr_officer"
	SeedViewerID  = "usr_viewer"
)

func yearsFrom(t time.Time, years int) *time.Time {
	d := t.AddDate(years, 0, 0)
	return &d
}

// seedImage builds the first-run data set.
func seedImage(now time.Time) *image {
	img := newImage()

	for _, sch := range []model.RetentionSchedule{
		{ID: "sch_001", Code: "FIN-001", Name: "Financial Records", Description: "Tax returns, invoices, and ledgers.", RetentionYears: 7, Trigger: model.TriggerCreation},
		{ID: "sch_002", Code: "HR-005", Name: "Employee Personnel Files", Description: "Contracts and reviews.", RetentionYears: 10, Trigger: model.TriggerLastModified},
		{ID: "sch_003", Code: "GEN-001", Name: "General Correspondence", Description: "Routine emails and memos.", RetentionYears: 3, Trigger: model.TriggerCreation},
	} {
		img.schedules[sch.ID] = sch
	}

	for _, c := range []model.Connector{
		{ID: "conn_001", Name: "Corporate SharePoint", Type: model.ConnectorSharePoint, Status: model.ConnectorActive, ItemsIndexed: 14502, LastSync: now, TargetURL: "https://acme.sharepoint.com/sites/corp"},
		{ID: "conn_google_drive_01", Name: "Shared Team Drive", Type: model.ConnectorGoogleDrive, Status: model.ConnectorActive, ItemsIndexed: 12, LastSync: now, TargetURL: "https://drive.google.com/drive/folders/shared-team"},
	} {
		img.connectors[c.ID] = c
	}

	for _, r := range []model.DocumentRecord{
		{
			ID: "rec_001", Title: "Financial_Report_Q3_2024.pdf", Type: model.DocumentPDF,
			Classification: model.ClassificationConfidential, Status: model.StatusActive, RiskScore: 65,
			Source: "SharePoint", UploadedAt: now, RetentionScheduleID: "sch_001",
			DisposalDate: yearsFrom(now, 7), Checksum: "a1b2c3d4e5f67890abcdef1234567890", Version: 1,
			Custodian: "Finance Dept", Format: "application/pdf",
		},
		{
			ID: "rec_002", Title: "Employee_Handbook_v2.docx", Type: model.DocumentDOCX,
			Classification: model.ClassificationInternal, Status: model.StatusActive, RiskScore: 10,
			Source: "OneDrive", UploadedAt: now.Add(-24 * time.Hour), RetentionScheduleID: "sch_002",
			DisposalDate: yearsFrom(now, 10), Checksum: "0987654321fedcba0987654321fedcba", Version: 2,
			Custodian: "HR Dept", Format: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		{
			ID: "rec_gdrive_01", Title: "Project_Phoenix_Specs.pdf", Type: model.DocumentPDF,
			Classification: model.ClassificationInternal, Status: model.StatusActive, RiskScore: 25,
			Source: "Shared Team Drive", UploadedAt: now,
			Checksum: "e5f67890abcdef1234567890a1b2c3d4", Version: 1,
			Custodian: "Engineering", Format: "application/pdf",
		},
		{
			ID: "rec_gdrive_02", Title: "Q4_Budget_Draft.xlsx", Type: model.DocumentXLSX,
			Classification: model.ClassificationConfidential, Status: model.StatusActive, RiskScore: 75,
			Source: "Shared Team Drive", UploadedAt: now, RetentionScheduleID: "sch_001",
			DisposalDate: yearsFrom(now, 7), Checksum: "bcdef1234567890a1b2c3d4e5f67890a", Version: 3,
			Custodian: "Finance", Format: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		},
	} {
		img.records[r.ID] = r
	}

	content, _ := json.Marshal(map[string]any{
		"retention_period_years": 7,
		"data_types":             []string{"tax", "financial"},
		"disposition":            "secure_destroy",
	})
	img.policies["pol_001"] = model.Policy{
		ID:          "pol_001",
		Name:        "Data Retention Policy",
		Description: "Standard retention for financial documents.",
		Content:     string(content),
		CreatedAt:   now,
	}

	for _, u := range []model.UserProfile{
		{ID: SeedAdminID, Name: "John Admin", Email: "admin@rekama.sys", Role: authz.RoleSystemAdministrator, Avatar: "JA", LastLogin: now},
		{ID: SeedOfficerID, Name: "Sarah Officer", Email: "sarah@rekama.sys", Role: authz.RoleRecordsOfficer, Avatar: "SO", LastLogin: now},
		{ID: SeedViewerID, Name: "Tom Viewer", Email: "tom@rekama.sys", Role: authz.RoleInternalAuditor, Avatar: "TV", LastLogin: now},
	} {
		img.users[u.ID] = u
	}

	login := model.AuditLog{
		ID:        "log_1",
		Timestamp: now,
		User:      "admin@rekama.sys",
		Action:    model.ActionLogin,
		Resource:  "System",
		Severity:  model.SeverityLow,
		Metadata:  json.RawMessage(`{}`),
	}
	img.logs = append(img.logs, login)
	img.logIDs[login.ID] = struct{}{}

	settings, _ := json.Marshal(model.DefaultSettings())
	img.singletons[settingsKey] = settings
	return img
}
