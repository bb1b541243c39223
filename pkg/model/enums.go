package model

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when an entity carries a value outside its domain.
var ErrInvalid = errors.New("invalid value")

type Classification string

const (
	ClassificationPublic       Classification = "Public"
	ClassificationInternal     Classification = "Internal"
	ClassificationConfidential Classification = "Confidential"
	ClassificationRestricted   Classification = "Restricted"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassificationPublic, ClassificationInternal, ClassificationConfidential, ClassificationRestricted:
		return true
	}
	return false
}

type RecordStatus string

const (
	StatusActive    RecordStatus = "Active"
	StatusArchived  RecordStatus = "Archived"
	StatusDestroyed RecordStatus = "Destroyed"
	StatusReview    RecordStatus = "Review"
)

func (s RecordStatus) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDestroyed, StatusReview:
		return true
	}
	return false
}

type DocumentType string

const (
	DocumentPDF  DocumentType = "PDF"
	DocumentDOCX DocumentType = "DOCX"
	DocumentXLSX DocumentType = "XLSX"
	DocumentTXT  DocumentType = "TXT"
)

func (d DocumentType) Valid() bool {
	switch d {
	case DocumentPDF, DocumentDOCX, DocumentXLSX, DocumentTXT:
		return true
	}
	return false
}

// Trigger is the event from which a retention period is counted.
type Trigger string

const (
	TriggerCreation     Trigger = "Creation"
	TriggerLastModified Trigger = "LastModified"
	TriggerEvent        Trigger = "Event"
)

func (t Trigger) Valid() bool {
	switch t {
	case TriggerCreation, TriggerLastModified, TriggerEvent:
		return true
	}
	return false
}

type ConnectorType string

const (
	ConnectorSharePoint  ConnectorType = "SharePoint"
	ConnectorOneDrive    ConnectorType = "OneDrive"
	ConnectorExchange    ConnectorType = "Exchange"
	ConnectorS3          ConnectorType = "S3"
	ConnectorGoogleDrive ConnectorType = "GoogleDrive"
	ConnectorSlack       ConnectorType = "Slack"
)

func (c ConnectorType) Valid() bool {
	switch c {
	case ConnectorSharePoint, ConnectorOneDrive, ConnectorExchange, ConnectorS3, ConnectorGoogleDrive, ConnectorSlack:
		return true
	}
	return false
}

type ConnectorStatus string

const (
	ConnectorActive  ConnectorStatus = "Active"
	ConnectorSyncing ConnectorStatus = "Syncing"
	ConnectorError   ConnectorStatus = "Error"
	ConnectorPaused  ConnectorStatus = "Paused"
)

func (c ConnectorStatus) Valid() bool {
	switch c {
	case ConnectorActive, ConnectorSyncing, ConnectorError, ConnectorPaused:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

func invalid(field string, value any) error {
	return fmt.Errorf("%w: %s %v", ErrInvalid, field, value)
}
