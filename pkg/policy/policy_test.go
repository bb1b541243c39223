package policy

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/durability"
	"github.com/cyberarian/rekama-sys/pkg/governance"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

var admin = &identity.Identity{UserID: store.SeedAdminID, Email: "admin@rekama.sys", Role: authz.RoleSystemAdministrator}

const retentionDoc = `---
id: pol_retention
---
# Records Retention Policy

All *financial* records are kept for seven years
after creation.

## Scope

Applies to every department.
`

const scheduleDoc = `- !policy
  id: pol_privacy
  name: Privacy Policy
  content: |
    Personal data is minimised.
- !schedule
  code: LEG-010
  name: Contracts
  retention_years: 12
  trigger: Event
- !schedule
  code: FIN-001
  name: Financial Records
  retention_years: 7
  trigger: Creation
`

func newLoader(t *testing.T) (*Loader, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), durability.NewMemory())
	require.NoError(t, err)
	return NewLoader(governance.New(st), admin), st
}

func TestParseMarkdown(t *testing.T) {
	p, err := ParseMarkdown([]byte(retentionDoc))
	require.NoError(t, err)

	assert.Equal(t, "pol_retention", p.ID)
	assert.Equal(t, "Records Retention Policy", p.Name)
	assert.Equal(t, "All financial records are kept for seven years after creation.", p.Description)
	assert.True(t, strings.HasPrefix(p.Content, "# Records Retention Policy"))
	assert.Contains(t, p.Content, "## Scope")
}

func TestParseMarkdownWithoutHeading(t *testing.T) {
	_, err := ParseMarkdown([]byte("just text\n"))
	require.Error(t, err)

	_, err = ParseMarkdown([]byte("---\nid: x\n# never closed\n"))
	require.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	statements, err := ParseYAML(strings.NewReader(scheduleDoc))
	require.NoError(t, err)
	require.Len(t, statements, 3)

	p := statements[0].(PolicyStatement)
	assert.Equal(t, "Privacy Policy", p.Name)
	assert.Equal(t, "Personal data is minimised.\n", p.Content)

	sch := statements[1].(ScheduleStatement)
	assert.Equal(t, model.TriggerEvent, sch.Trigger)
	assert.Equal(t, 12, sch.RetentionYears)

	var buf bytes.Buffer
	require.NoError(t, yaml.NewEncoder(&buf).Encode(statements))
	assert.Contains(t, buf.String(), "- !schedule")
}

func TestParseYAMLRejectsUnknownTags(t *testing.T) {
	_, err := ParseYAML(strings.NewReader("- !variable db/password\n"))
	require.Error(t, err)

	_, err = ParseYAML(strings.NewReader("name: not a list\n"))
	require.Error(t, err)
}

func TestParseByExtension(t *testing.T) {
	_, err := Parse("notes.txt", strings.NewReader(""))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	statements, err := Parse("RETENTION.MD", strings.NewReader(retentionDoc))
	require.NoError(t, err)
	assert.Equal(t, KindPolicy, statements[0].Kind())
}

func TestLoad(t *testing.T) {
	l, st := newLoader(t)
	ctx := context.Background()

	statements, err := ParseYAML(strings.NewReader(scheduleDoc))
	require.NoError(t, err)

	res, err := l.Load(ctx, statements)
	require.NoError(t, err)
	assert.Equal(t, []string{"pol_privacy"}, res.Policies)
	assert.Len(t, res.Schedules, 1)
	assert.Equal(t, []string{"FIN-001"}, res.Unchanged)
	assert.Equal(t, model.ActionCreateSchedule, st.Logs()[0].Action)

	// A second load replaces the policy and skips known schedules.
	res, err = l.Load(ctx, statements)
	require.NoError(t, err)
	assert.Empty(t, res.Schedules)
	assert.ElementsMatch(t, []string{"FIN-001", "LEG-010"}, res.Unchanged)
	assert.Equal(t, model.ActionUpdatePolicy, st.Logs()[0].Action)
}

func TestLoadValidatesFirst(t *testing.T) {
	l, st := newLoader(t)
	before := len(st.AllLogs())

	_, err := l.Load(context.Background(), Statements{
		PolicyStatement{Name: "Fine"},
		ScheduleStatement{Code: "BAD-1", RetentionYears: 0, Trigger: model.TriggerCreation},
	})
	require.Error(t, err)
	assert.Len(t, st.AllLogs(), before)
}

func TestLoadRequiresPolicyPermission(t *testing.T) {
	st, err := store.Open(context.Background(), durability.NewMemory())
	require.NoError(t, err)
	auditor := &identity.Identity{UserID: store.SeedViewerID, Email: "tom@rekama.sys", Role: authz.RoleInternalAuditor}

	_, err = NewLoader(governance.New(st), auditor).Load(context.Background(), Statements{PolicyStatement{Name: "x"}})
	require.ErrorIs(t, err, authz.ErrUnauthorized)
}

func TestLoadDir(t *testing.T) {
	l, st := newLoader(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte(retentionDoc), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte(scheduleDoc), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("ignored"), 0o600))

	require.NoError(t, l.LoadDir(context.Background(), dir))

	p, err := st.Policy("pol_retention")
	require.NoError(t, err)
	assert.Equal(t, "Records Retention Policy", p.Name)
	_, err = st.Policy("pol_privacy")
	require.NoError(t, err)
}

func TestWatchReloads(t *testing.T) {
	l, st := newLoader(t)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loaded := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- l.Watch(ctx, dir, func(path string, _ *LoadResult, err error) {
			if err == nil {
				loaded <- filepath.Base(path)
			}
		})
	}()

	path := filepath.Join(dir, "retention.md")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(retentionDoc), 0o600)
		select {
		case name := <-loaded:
			return name == "retention.md"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	_, err := st.Policy("pol_retention")
	require.NoError(t, err)

	cancel()
	require.NoError(t, <-done)
}
