package model

import "time"

type Policy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p *Policy) Validate() error {
	if p.ID == "" {
		return invalid("id", `""`)
	}
	if p.Name == "" {
		return invalid("name", `""`)
	}
	return nil
}

// RetentionSchedule maps a trigger to a retention period.
type RetentionSchedule struct {
	ID             string  `json:"id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	RetentionYears int     `json:"retentionYears"`
	Trigger        Trigger `json:"trigger"`
}

func (s *RetentionSchedule) Validate() error {
	if s.ID == "" {
		return invalid("id", `""`)
	}
	if s.Code == "" {
		return invalid("code", `""`)
	}
	if s.RetentionYears <= 0 {
		return invalid("retentionYears", s.RetentionYears)
	}
	if !s.Trigger.Valid() {
		return invalid("trigger", s.Trigger)
	}
	return nil
}
