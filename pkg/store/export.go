package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

// Compliance is the attestation block attached to every export.
type Compliance struct {
	ISO15489 bool   `json:"iso_15489"`
	ISO16175 bool   `json:"iso_16175"`
	ISO27001 string `json:"iso_27001"`
}

// Export is a full point-in-time dump. Logs hold every audit entry.
type Export struct {
	Records     []model.DocumentRecord    `json:"records"`
	Policies    []model.Policy            `json:"policies"`
	Schedules   []model.RetentionSchedule `json:"schedules"`
	Connectors  []model.Connector         `json:"connectors"`
	Logs        []model.AuditLog          `json:"logs"`
	Users       []model.UserProfile       `json:"users"`
	Settings    model.AppSettings         `json:"settings"`
	CurrentUser *model.UserProfile        `json:"user,omitempty"`
	ExportedAt  time.Time                 `json:"exportedAt"`
	Compliance  Compliance                `json:"compliance"`
}

// Export dumps the committed image. currentUser is recorded as-is.
func (s *Store) Export(currentUser *model.UserProfile) Export {
	img := s.current.Load()
	return Export{
		Records:     sortedRecords(img.records),
		Policies:    sortedPolicies(img.policies),
		Schedules:   sortedSchedules(img.schedules),
		Connectors:  sortedConnectors(img.connectors),
		Logs:        newestLogs(img.logs, 0),
		Users:       sortedUsers(img.users),
		Settings:    settingsFrom(img),
		CurrentUser: currentUser,
		ExportedAt:  s.now().UTC(),
		Compliance: Compliance{
			ISO15489: true,
			ISO16175: true,
			ISO27001: "partial",
		},
	}
}

// Import replaces the whole schema with the contents of an export and saves
// it. Entities are validated and keys must be unique.
func (s *Store) Import(ctx context.Context, exp Export) error {
	img, err := imageFromExport(exp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, img); err != nil {
		return err
	}
	if latest := img.latest(); latest.After(s.lastTick) {
		s.lastTick = latest
	}
	s.current.Store(img)
	s.logger.Info("imported record store",
		"records", len(img.records),
		"logs", len(img.logs),
	)
	return nil
}

func imageFromExport(exp Export) (*image, error) {
	img := newImage()
	for _, r := range exp.Records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, ok := img.records[r.ID]; ok {
			return nil, fmt.Errorf("%w: record %q", ErrDuplicateKey, r.ID)
		}
		img.records[r.ID] = r.Clone()
	}
	for _, p := range exp.Policies {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, ok := img.policies[p.ID]; ok {
			return nil, fmt.Errorf("%w: policy %q", ErrDuplicateKey, p.ID)
		}
		img.policies[p.ID] = p
	}
	for _, sch := range exp.Schedules {
		if err := sch.Validate(); err != nil {
			return nil, err
		}
		if _, ok := img.schedules[sch.ID]; ok {
			return nil, fmt.Errorf("%w: schedule %q", ErrDuplicateKey, sch.ID)
		}
		img.schedules[sch.ID] = sch
	}
	for _, c := range exp.Connectors {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := img.connectors[c.ID]; ok {
			return nil, fmt.Errorf("%w: connector %q", ErrDuplicateKey, c.ID)
		}
		img.connectors[c.ID] = c
	}
	for _, u := range exp.Users {
		if err := u.Validate(); err != nil {
			return nil, err
		}
		if _, ok := img.users[u.ID]; ok {
			return nil, fmt.Errorf("%w: user %q", ErrDuplicateKey, u.ID)
		}
		img.users[u.ID] = u
	}
	// Exports list logs newest first.
	for i := len(exp.Logs) - 1; i >= 0; i-- {
		l := exp.Logs[i]
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if _, ok := img.logIDs[l.ID]; ok {
			return nil, fmt.Errorf("%w: audit entry %q", ErrDuplicateKey, l.ID)
		}
		img.logs = append(img.logs, l.Clone())
		img.logIDs[l.ID] = struct{}{}
	}
	tx := &Tx{img: img}
	if err := tx.PutSettings(exp.Settings); err != nil {
		return nil, err
	}
	return img, nil
}
