package store

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

// snapshotFormat is bumped whenever the encoded layout changes.
const snapshotFormat = 1

// image is one complete version of the schema. A published image is never
// modified; mutations work on a clone.
type image struct {
	records    map[string]model.DocumentRecord
	policies   map[string]model.Policy
	schedules  map[string]model.RetentionSchedule
	connectors map[string]model.Connector
	users      map[string]model.UserProfile
	singletons map[string]json.RawMessage
	// logs are kept in append order.
	logs   []model.AuditLog
	logIDs map[string]struct{}
}

func newImage() *image {
	return &image{
		records:    map[string]model.DocumentRecord{},
		policies:   map[string]model.Policy{},
		schedules:  map[string]model.RetentionSchedule{},
		connectors: map[string]model.Connector{},
		users:      map[string]model.UserProfile{},
		singletons: map[string]json.RawMessage{},
		logIDs:     map[string]struct{}{},
	}
}

// clone copies every table. Entity values are copied by value; nested
// pointers and slices are replaced, never written through, so sharing them
// with the parent image is safe.
func (img *image) clone() *image {
	return &image{
		records:    maps.Clone(img.records),
		policies:   maps.Clone(img.policies),
		schedules:  maps.Clone(img.schedules),
		connectors: maps.Clone(img.connectors),
		users:      maps.Clone(img.users),
		singletons: maps.Clone(img.singletons),
		logs:       img.logs[:len(img.logs):len(img.logs)],
		logIDs:     maps.Clone(img.logIDs),
	}
}

// latest returns the newest timestamp held anywhere in the image.
func (img *image) latest() time.Time {
	var t time.Time
	later := func(c time.Time) {
		if c.After(t) {
			t = c
		}
	}
	for _, r := range img.records {
		later(r.UploadedAt)
	}
	for _, p := range img.policies {
		later(p.CreatedAt)
	}
	for _, c := range img.connectors {
		later(c.LastSync)
	}
	for _, u := range img.users {
		later(u.LastLogin)
	}
	for _, l := range img.logs {
		later(l.Timestamp)
	}
	return t.UTC()
}

// interruptSyncs moves connectors left Syncing by a process that stopped
// mid-sync to Error and returns their names.
func (img *image) interruptSyncs() []string {
	var names []string
	for _, id := range slices.Sorted(maps.Keys(img.connectors)) {
		c := img.connectors[id]
		if c.Status != model.ConnectorSyncing {
			continue
		}
		c.Status = model.ConnectorError
		c.LastErrorMessage = InterruptedSyncMessage
		img.connectors[id] = c
		names = append(names, c.Name)
	}
	return names
}

type snapshot struct {
	Format     int                        `json:"format"`
	Records    []model.DocumentRecord     `json:"records"`
	Policies   []model.Policy             `json:"policies"`
	Schedules  []model.RetentionSchedule  `json:"schedules"`
	Connectors []model.Connector          `json:"connectors"`
	Users      []model.UserProfile        `json:"users"`
	Logs       []model.AuditLog           `json:"logs"`
	Singletons map[string]json.RawMessage `json:"singletons"`
}

func byID[T any](m map[string]T) []T {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func (img *image) encode() ([]byte, error) {
	return json.Marshal(snapshot{
		Format:     snapshotFormat,
		Records:    byID(img.records),
		Policies:   byID(img.policies),
		Schedules:  byID(img.schedules),
		Connectors: byID(img.connectors),
		Users:      byID(img.users),
		Logs:       img.logs,
		Singletons: img.singletons,
	})
}

func decodeImage(data []byte) (*image, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Format != snapshotFormat {
		return nil, fmt.Errorf("unsupported snapshot format %d", snap.Format)
	}
	img := newImage()
	for _, r := range snap.Records {
		img.records[r.ID] = r
	}
	for _, p := range snap.Policies {
		img.policies[p.ID] = p
	}
	for _, s := range snap.Schedules {
		img.schedules[s.ID] = s
	}
	for _, c := range snap.Connectors {
		img.connectors[c.ID] = c
	}
	for _, u := range snap.Users {
		img.users[u.ID] = u
	}
	for k, v := range snap.Singletons {
		img.singletons[k] = v
	}
	img.logs = snap.Logs
	for _, l := range snap.Logs {
		img.logIDs[l.ID] = struct{}{}
	}
	return img, nil
}

// sortedRecords orders records newest first.
func sortedRecords(m map[string]model.DocumentRecord) []model.DocumentRecord {
	out := make([]model.DocumentRecord, 0, len(m))
	for _, r := range m {
		out = append(out, r.Clone())
	}
	slices.SortFunc(out, func(a, b model.DocumentRecord) int {
		if c := b.UploadedAt.Compare(a.UploadedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func sortedPolicies(m map[string]model.Policy) []model.Policy {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b model.Policy) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func sortedSchedules(m map[string]model.RetentionSchedule) []model.RetentionSchedule {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b model.RetentionSchedule) int {
		if c := strings.Compare(a.Code, b.Code); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func sortedConnectors(m map[string]model.Connector) []model.Connector {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b model.Connector) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func sortedUsers(m map[string]model.UserProfile) []model.UserProfile {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b model.UserProfile) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// newestLogs returns up to limit entries, newest first. Entries sharing a
// timestamp keep reverse append order. A limit <= 0 returns every entry.
func newestLogs(logs []model.AuditLog, limit int) []model.AuditLog {
	out := make([]model.AuditLog, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		out = append(out, logs[i].Clone())
	}
	slices.SortStableFunc(out, func(a, b model.AuditLog) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
