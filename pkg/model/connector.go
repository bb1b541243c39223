package model

import "time"

// Connector is an external source adapter. Records belong to it when their
// Source equals its Name.
type Connector struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Type             ConnectorType   `json:"type"`
	Status           ConnectorStatus `json:"status"`
	ItemsIndexed     int             `json:"itemsIndexed"`
	LastSync         time.Time       `json:"lastSync"`
	TargetURL        string          `json:"targetUrl,omitempty"`
	LastErrorMessage string          `json:"lastErrorMessage,omitempty"`
}

func (c *Connector) Validate() error {
	if c.ID == "" {
		return invalid("id", `""`)
	}
	if c.Name == "" {
		return invalid("name", `""`)
	}
	if !c.Type.Valid() {
		return invalid("type", c.Type)
	}
	if !c.Status.Valid() {
		return invalid("status", c.Status)
	}
	if c.ItemsIndexed < 0 {
		return invalid("itemsIndexed", c.ItemsIndexed)
	}
	return nil
}

// ConnectorPatch carries the user-editable connector fields.
type ConnectorPatch struct {
	Name      *string        `json:"name,omitempty"`
	Type      *ConnectorType `json:"type,omitempty"`
	TargetURL *string        `json:"targetUrl,omitempty"`
}

func (p ConnectorPatch) Apply(c *Connector) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.TargetURL != nil {
		c.TargetURL = *p.TargetURL
	}
}
