package model

import "time"

// DocumentRecord is a governed document. ID, Checksum and UploadedAt are
// fixed at creation.
type DocumentRecord struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Type                DocumentType   `json:"type"`
	Classification      Classification `json:"classification"`
	Status              RecordStatus   `json:"status"`
	RiskScore           int            `json:"riskScore"`
	Source              string         `json:"source"`
	UploadedAt          time.Time      `json:"uploadedAt"`
	LegalHold           bool           `json:"legalHold"`
	RetentionScheduleID string         `json:"retentionScheduleId,omitempty"`
	DisposalDate        *time.Time     `json:"disposalDate,omitempty"`
	Checksum            string         `json:"checksum"`
	Version             int            `json:"version"`
	Custodian           string         `json:"custodian"`
	Format              string         `json:"format"`
}

// Validate checks the enumerated and ranged fields.
func (r *DocumentRecord) Validate() error {
	if r.ID == "" {
		return invalid("id", `""`)
	}
	if r.Type != "" && !r.Type.Valid() {
		return invalid("type", r.Type)
	}
	if !r.Classification.Valid() {
		return invalid("classification", r.Classification)
	}
	if !r.Status.Valid() {
		return invalid("status", r.Status)
	}
	if r.RiskScore < 0 || r.RiskScore > 100 {
		return invalid("riskScore", r.RiskScore)
	}
	return nil
}

// Clone returns a deep copy.
func (r DocumentRecord) Clone() DocumentRecord {
	if r.DisposalDate != nil {
		d := *r.DisposalDate
		r.DisposalDate = &d
	}
	return r
}

// RecordPatch is a partial update. Nil fields are left untouched. ID,
// Checksum and UploadedAt exist only so that attempts to change them can be
// rejected.
type RecordPatch struct {
	ID                  *string         `json:"id,omitempty"`
	Checksum            *string         `json:"checksum,omitempty"`
	UploadedAt          *time.Time      `json:"uploadedAt,omitempty"`
	Title               *string         `json:"title,omitempty"`
	Type                *DocumentType   `json:"type,omitempty"`
	Classification      *Classification `json:"classification,omitempty"`
	Status              *RecordStatus   `json:"status,omitempty"`
	RiskScore           *int            `json:"riskScore,omitempty"`
	Source              *string         `json:"source,omitempty"`
	LegalHold           *bool           `json:"legalHold,omitempty"`
	RetentionScheduleID *string         `json:"retentionScheduleId,omitempty"`
	DisposalDate        *time.Time      `json:"disposalDate,omitempty"`
	ClearDisposalDate   bool            `json:"clearDisposalDate,omitempty"`
	Custodian           *string         `json:"custodian,omitempty"`
	Format              *string         `json:"format,omitempty"`
}

// ImmutableFields lists the immutable fields the patch tries to set.
func (p RecordPatch) ImmutableFields() []string {
	var fields []string
	if p.ID != nil {
		fields = append(fields, "id")
	}
	if p.Checksum != nil {
		fields = append(fields, "checksum")
	}
	if p.UploadedAt != nil {
		fields = append(fields, "uploadedAt")
	}
	return fields
}

// RetentionFields lists the retention fields the patch touches. A record
// under legal hold keeps these frozen.
func (p RecordPatch) RetentionFields() []string {
	var fields []string
	if p.RetentionScheduleID != nil {
		fields = append(fields, "retentionScheduleId")
	}
	if p.DisposalDate != nil || p.ClearDisposalDate {
		fields = append(fields, "disposalDate")
	}
	return fields
}

// Empty reports whether the patch changes nothing.
func (p RecordPatch) Empty() bool {
	return p.Title == nil && p.Type == nil && p.Classification == nil &&
		p.Status == nil && p.RiskScore == nil && p.Source == nil &&
		p.LegalHold == nil && p.RetentionScheduleID == nil &&
		p.DisposalDate == nil && !p.ClearDisposalDate &&
		p.Custodian == nil && p.Format == nil &&
		len(p.ImmutableFields()) == 0
}

// Apply writes the mutable fields of the patch onto r.
func (p RecordPatch) Apply(r *DocumentRecord) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Classification != nil {
		r.Classification = *p.Classification
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.RiskScore != nil {
		r.RiskScore = *p.RiskScore
	}
	if p.Source != nil {
		r.Source = *p.Source
	}
	if p.LegalHold != nil {
		r.LegalHold = *p.LegalHold
	}
	if p.RetentionScheduleID != nil {
		r.RetentionScheduleID = *p.RetentionScheduleID
	}
	if p.ClearDisposalDate {
		r.DisposalDate = nil
	}
	if p.DisposalDate != nil {
		d := *p.DisposalDate
		r.DisposalDate = &d
	}
	if p.Custodian != nil {
		r.Custodian = *p.Custodian
	}
	if p.Format != nil {
		r.Format = *p.Format
	}
}

// DestructionCertificate is the proof written to the audit trail before a
// record is erased.
type DestructionCertificate struct {
	RecordID       string         `json:"recordId"`
	Title          string         `json:"title"`
	Checksum       string         `json:"checksum"`
	Classification Classification `json:"classification"`
	DisposalDate   time.Time      `json:"disposalDate"`
	AuthorizedBy   string         `json:"authorizedBy"`
	Method         string         `json:"method"`
}

// DestructionMethod is the method label recorded on every certificate.
const DestructionMethod = "Secure Digital Erasure (Overwrite)"
