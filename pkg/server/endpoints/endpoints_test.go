package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberarian/rekama-sys/pkg/connector"
	"github.com/cyberarian/rekama-sys/pkg/durability"
	"github.com/cyberarian/rekama-sys/pkg/governance"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/metrics"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/server"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

type testEnv struct {
	srv     *server.Server
	store   *store.Store
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := store.Open(context.Background(), durability.NewMemory())
	require.NoError(t, err)

	s := server.NewServer(server.Options{
		Service:    governance.New(st),
		Connectors: connector.NewEngine(st, connector.WithDiscoverer(connector.NewSimulatedFeed(rand.NewPCG(1, 2)))),
		Sessions:   identity.NewSessions(st),
		Tokens:     identity.NewTokenIssuer([]byte("test-secret"), time.Hour),
		Metrics:    metrics.New(),
		AccessLog:  io.Discard,
	}, "127.0.0.1", "0")
	RegisterAll(s)

	return &testEnv{srv: s, store: st, handler: s.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, userID string) string {
	t.Helper()
	w := e.do(t, "POST", "/api/session", "", LoginRequest{UserID: userID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// complianceManager creates a Compliance Manager account and signs it in.
func (e *testEnv) complianceManager(t *testing.T) string {
	t.Helper()
	admin := e.login(t, store.SeedAdminID)
	w := e.do(t, "POST", "/api/users", admin, map[string]interface{}{
		"id":    "usr_carol",
		"name":  "Carol Compliance",
		"email": "carol@rekama.sys",
		"role":  "Compliance Manager",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return e.login(t, "usr_carol")
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStatusIsPublic(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "GET", "/api/status", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[StatusResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Storage.Degraded)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "GET", "/api/records", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, "GET", "/api/records", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("GET", "/api/records", nil)
	req.Header.Set("Authorization", `Token token="abc"`)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginAndWhoami(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "POST", "/api/session", "", LoginRequest{UserID: "usr_nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	token := env.login(t, store.SeedViewerID)
	w = env.do(t, "GET", "/api/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeBody[identity.Identity](t, w)
	assert.Equal(t, "tom@rekama.sys", id.Email)
	assert.Equal(t, model.ActionLogin, env.store.Logs()[0].Action)
}

func TestSwitchAndLogout(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, store.SeedAdminID)

	w := env.do(t, "POST", "/api/session/switch", token, LoginRequest{UserID: store.SeedOfficerID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	switched := decodeBody[SessionResponse](t, w)
	assert.Equal(t, "sarah@rekama.sys", switched.Identity.Email)

	// The old token names the same session, which now acts as the officer.
	w = env.do(t, "GET", "/api/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sarah@rekama.sys", decodeBody[identity.Identity](t, w).Email)

	entry := env.store.Logs()[0]
	assert.Equal(t, model.ActionSwitchUser, entry.Action)
	assert.Equal(t, "admin@rekama.sys", entry.User)

	w = env.do(t, "DELETE", "/api/session", switched.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, "GET", "/api/session", switched.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSwitchNeedsSystemManage(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, store.SeedViewerID)
	logs := len(env.store.AllLogs())

	w := env.do(t, "POST", "/api/session/switch", token, LoginRequest{UserID: store.SeedAdminID})
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Len(t, env.store.AllLogs(), logs)

	w = env.do(t, "GET", "/api/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, store.SeedViewerID, decodeBody[identity.Identity](t, w).UserID)
}

func TestRecordLifecycle(t *testing.T) {
	env := newTestEnv(t)
	officer := env.login(t, store.SeedOfficerID)
	manager := env.complianceManager(t)

	w := env.do(t, "POST", "/api/records", officer, model.DocumentRecord{
		ID:             "rec_contract",
		Title:          "Supplier Contract.pdf",
		Type:           model.DocumentPDF,
		Classification: model.ClassificationConfidential,
		Status:         model.StatusActive,
		RiskScore:      20,
		Source:         "Upload",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[model.DocumentRecord](t, w)
	assert.Len(t, created.Checksum, 32)

	w = env.do(t, "PATCH", "/api/records/rec_contract", officer, map[string]string{"checksum": "ffff"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, "POST", "/api/records/rec_contract/hold", officer, LegalHoldRequest{Reason: "litigation"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "POST", "/api/records/rec_contract/hold", manager, LegalHoldRequest{Reason: "litigation"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeBody[model.DocumentRecord](t, w).LegalHold)

	w = env.do(t, "DELETE", "/api/records/rec_contract", manager, nil)
	assert.Equal(t, http.StatusLocked, w.Code)
	w = env.do(t, "POST", "/api/records/rec_contract/disposal-date", officer, DisposalDateRequest{ScheduleID: "sch_001"})
	assert.Equal(t, http.StatusLocked, w.Code)

	w = env.do(t, "DELETE", "/api/records/rec_contract/hold", manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, "POST", "/api/records/rec_contract/disposal-date", officer, DisposalDateRequest{ScheduleID: "sch_001"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decodeBody[model.DocumentRecord](t, w).DisposalDate)

	w = env.do(t, "DELETE", "/api/records/rec_contract", officer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "DELETE", "/api/records/rec_contract", manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cert := decodeBody[model.DestructionCertificate](t, w)
	assert.Equal(t, "rec_contract", cert.RecordID)
	assert.Equal(t, "carol@rekama.sys", cert.AuthorizedBy)

	w = env.do(t, "GET", "/api/records/rec_contract", officer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusDestroyed, decodeBody[model.DocumentRecord](t, w).Status)
}

func TestListRecordsBySource(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, store.SeedViewerID)

	w := env.do(t, "GET", "/api/records?source=Shared+Team+Drive", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decodeBody[[]model.DocumentRecord](t, w)
	assert.Len(t, records, 2)

	w = env.do(t, "GET", "/api/records/rec_missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPoliciesAndSchedules(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, store.SeedAdminID)
	officer := env.login(t, store.SeedOfficerID)

	w := env.do(t, "POST", "/api/policies", admin, model.Policy{ID: "pol_001", Name: "Duplicate"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, "POST", "/api/policies", officer, model.Policy{Name: "Not allowed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "PUT", "/api/policies/pol_001", admin, model.Policy{Name: "Retention Policy v2", Content: "Keep it."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req := httptest.NewRequest("GET", "/api/policies/pol_001", nil)
	req.Header.Set("Authorization", "Bearer "+officer)
	req.Header.Set("Accept", "text/plain")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Keep it.", rec.Body.String())

	// System administrators lack RECORD_DELETE but hold both policy permissions.
	w = env.do(t, "DELETE", "/api/policies/pol_001", admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, "GET", "/api/policies/pol_001", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, "POST", "/api/schedules", admin, model.RetentionSchedule{Code: "FIN-001", Name: "dup", RetentionYears: 1, Trigger: model.TriggerEvent})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = env.do(t, "POST", "/api/schedules", admin, model.RetentionSchedule{Code: "LEG-001", Name: "Legal", RetentionYears: 0, Trigger: model.TriggerEvent})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, "DELETE", "/api/schedules/sch_003", admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestConnectors(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, store.SeedAdminID)
	officer := env.login(t, store.SeedOfficerID)

	w := env.do(t, "POST", "/api/connectors/conn_google_drive_01/sync", officer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "POST", "/api/connectors/conn_google_drive_01/sync", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[SyncResponse](t, w)
	assert.Equal(t, model.ConnectorActive, resp.Connector.Status)
	assert.LessOrEqual(t, len(resp.Discovered), connector.MaxDiscoveredPerSync)

	w = env.do(t, "POST", "/api/connectors/conn_google_drive_01/pause", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, "POST", "/api/connectors/conn_google_drive_01/pause", admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, "POST", "/api/connectors/conn_google_drive_01/sync", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody[SyncResponse](t, w).Skipped)

	name := "Team Drive"
	w = env.do(t, "PATCH", "/api/connectors/conn_google_drive_01", admin, model.ConnectorPatch{Name: &name})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, name, decodeBody[model.Connector](t, w).Name)

	w = env.do(t, "DELETE", "/api/connectors/conn_001", admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, "GET", "/api/connectors", admin, nil)
	assert.Len(t, decodeBody[[]model.Connector](t, w), 1)
}

func TestUsersAndSettings(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, store.SeedAdminID)

	w := env.do(t, "DELETE", "/api/users/"+store.SeedAdminID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "PUT", "/api/settings", admin, model.AppSettings{OrganizationName: "Rekama", RetentionDefault: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "PUT", "/api/settings", admin, model.AppSettings{OrganizationName: "Rekama Ltd", RetentionDefault: 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, "GET", "/api/settings", admin, nil)
	assert.Equal(t, "Rekama Ltd", decodeBody[model.AppSettings](t, w).OrganizationName)

	w = env.do(t, "DELETE", "/api/users/"+store.SeedViewerID, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, "GET", "/api/users", admin, nil)
	assert.Len(t, decodeBody[[]model.UserProfile](t, w), 2)
}

func TestLogsExportAndReset(t *testing.T) {
	env := newTestEnv(t)
	auditor := env.login(t, store.SeedViewerID)
	admin := env.login(t, store.SeedAdminID)

	w := env.do(t, "GET", "/api/logs", auditor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody[[]model.AuditLog](t, w))

	w = env.do(t, "GET", "/api/logs?format=digest", auditor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "performed LOGIN")

	w = env.do(t, "GET", "/api/export", auditor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "GET", "/api/export", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"))
	exp := decodeBody[store.Export](t, w)
	assert.True(t, exp.Compliance.ISO15489)
	assert.Equal(t, "partial", exp.Compliance.ISO27001)
	assert.Equal(t, model.ActionDataExport, env.store.Logs()[0].Action)

	w = env.do(t, "POST", "/api/reset", admin, ResetRequest{Confirm: "yes"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "POST", "/api/reset", admin, ResetRequest{Confirm: store.ResetConfirmation})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, "POST", "/api/import", admin, exp)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.Len(t, env.store.Records(), len(exp.Records))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "GET", "/api/status", "", nil)

	w := env.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `rekama_http_requests_total{method="GET",route="/api/status",status="200"}`)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{governance.ErrUnauthorized, http.StatusForbidden},
		{store.ErrNotFound, http.StatusNotFound},
		{store.ErrDuplicateKey, http.StatusConflict},
		{connector.ErrSyncInProgress, http.StatusConflict},
		{store.ErrImmutableField, http.StatusUnprocessableEntity},
		{store.ErrLegalHoldBlock, http.StatusLocked},
		{store.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{governance.ErrNoSchedule, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err), tt.err.Error())
	}
}
