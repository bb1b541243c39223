package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/cyberarian/rekama-sys/pkg/store"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	authToken    string
	remembered   map[string]string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:         tc,
		remembered: make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^a freshly seeded Rekama server$`, s.aFreshlySeededRekamaServer)
	sc.Step(`^I am signed in as "([^"]*)"$`, s.iAmSignedInAs)
	sc.Step(`^I sign in as "([^"]*)"$`, s.iSignInAs)
	sc.Step(`^I switch to "([^"]*)"$`, s.iSwitchTo)
	sc.Step(`^I sign out$`, s.iSignOut)
	sc.Step(`^a user "([^"]*)" with role "([^"]*)" exists$`, s.aUserWithRoleExists)

	// Request steps
	sc.Step(`^I send a (GET|DELETE|POST) request to "([^"]*)"$`, s.iSendARequestTo)
	sc.Step(`^I send a (POST|PUT|PATCH) request to "([^"]*)" with body:$`, s.iSendARequestWithBody)
	sc.Step(`^I remember the response field "([^"]*)" as "([^"]*)"$`, s.iRememberTheResponseField)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response should be a list of (\d+) items?$`, s.theResponseShouldBeAListOf)
	sc.Step(`^the response body should contain "([^"]*)"$`, s.theResponseBodyShouldContain)

	// Storage steps
	sc.Step(`^the audit database should contain (\d+) "([^"]*)" entr(?:y|ies)$`, s.theAuditDatabaseShouldContain)
	sc.Step(`^the snapshot stored in the database should be sealed$`, s.theSnapshotShouldBeSealed)

	// Connector steps
	sc.Step(`^I sync connector "([^"]*)" (\d+) times?$`, s.iSyncConnectorTimes)
	sc.Step(`^there should be (\d+) records from source "([^"]*)"$`, s.thereShouldBeRecordsFromSource)
}

// Background steps

func (s *StepsContext) aFreshlySeededRekamaServer() error {
	if err := s.iAmSignedInAs(store.SeedAdminID); err != nil {
		return err
	}
	body := fmt.Sprintf(`{"confirm": %q}`, store.ResetConfirmation)
	if err := s.do("POST", "/api/reset", strings.NewReader(body)); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusNoContent {
		return fmt.Errorf("reset failed: %d %s", s.response.StatusCode, s.responseBody)
	}
	// The audit mirror outlives a reset.
	if _, err := s.tc.RawDB.Exec(`TRUNCATE audit_messages`); err != nil {
		return err
	}
	s.authToken = ""
	return nil
}

func (s *StepsContext) iAmSignedInAs(userID string) error {
	if err := s.iSignInAs(userID); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusCreated {
		return fmt.Errorf("sign in as %s failed: %d %s", userID, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) iSignInAs(userID string) error {
	s.authToken = ""
	body := fmt.Sprintf(`{"userId": %q}`, userID)
	if err := s.do("POST", "/api/session", strings.NewReader(body)); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusCreated {
		return nil
	}
	return s.takeToken()
}

func (s *StepsContext) iSwitchTo(userID string) error {
	body := fmt.Sprintf(`{"userId": %q}`, userID)
	if err := s.do("POST", "/api/session/switch", strings.NewReader(body)); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("switch to %s failed: %d %s", userID, s.response.StatusCode, s.responseBody)
	}
	return s.takeToken()
}

// takeToken keeps the bearer token from a session response.
func (s *StepsContext) takeToken() error {
	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(s.responseBody, &session); err != nil {
		return err
	}
	s.authToken = session.Token
	return nil
}

func (s *StepsContext) iSignOut() error {
	return s.do("DELETE", "/api/session", nil)
}

func (s *StepsContext) aUserWithRoleExists(userID, role string) error {
	body := fmt.Sprintf(`{"id": %q, "name": %q, "email": %q, "role": %q}`,
		userID, userID, userID+"@rekama.sys", role)
	if err := s.do("POST", "/api/users", strings.NewReader(body)); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusCreated {
		return fmt.Errorf("create user %s failed: %d %s", userID, s.response.StatusCode, s.responseBody)
	}
	return nil
}

// Request steps

func (s *StepsContext) iSendARequestTo(method, path string) error {
	return s.do(method, s.expand(path), nil)
}

func (s *StepsContext) iSendARequestWithBody(method, path string, body *godog.DocString) error {
	return s.do(method, s.expand(path), strings.NewReader(s.expand(body.Content)))
}

func (s *StepsContext) iRememberTheResponseField(field, name string) error {
	v, err := s.field(field)
	if err != nil {
		return err
	}
	s.remembered[name] = v
	return nil
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBe(field, expected string) error {
	v, err := s.field(field)
	if err != nil {
		return err
	}
	if v != s.expand(expected) {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, v)
	}
	return nil
}

func (s *StepsContext) theResponseShouldBeAListOf(n int) error {
	var items []json.RawMessage
	if err := json.Unmarshal(s.responseBody, &items); err != nil {
		return fmt.Errorf("response is not a list: %w", err)
	}
	if len(items) != n {
		return fmt.Errorf("expected %d items, got %d", n, len(items))
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldContain(text string) error {
	if !bytes.Contains(s.responseBody, []byte(text)) {
		return fmt.Errorf("response body does not contain %q: %s", text, s.responseBody)
	}
	return nil
}

// Storage steps

func (s *StepsContext) theAuditDatabaseShouldContain(n int, action string) error {
	var count int
	if err := s.tc.RawDB.QueryRow(`SELECT count(*) FROM audit_messages WHERE action = $1`, action).Scan(&count); err != nil {
		return err
	}
	if count != n {
		return fmt.Errorf("expected %d %s entries in audit_messages, got %d", n, action, count)
	}
	return nil
}

func (s *StepsContext) theSnapshotShouldBeSealed() error {
	var image []byte
	if err := s.tc.RawDB.QueryRow(`SELECT image FROM rekama_snapshots WHERE name = 'default'`).Scan(&image); err != nil {
		return err
	}
	if json.Valid(image) {
		return fmt.Errorf("snapshot is stored as plain JSON")
	}
	if bytes.Contains(image, []byte("admin@rekama.sys")) {
		return fmt.Errorf("snapshot leaks user data")
	}
	return nil
}

// Connector steps

func (s *StepsContext) iSyncConnectorTimes(id string, times int) error {
	for i := 0; i < times; i++ {
		if err := s.do("POST", "/api/connectors/"+id+"/sync", nil); err != nil {
			return err
		}
		if s.response.StatusCode != http.StatusOK {
			return fmt.Errorf("sync %d of %s failed: %d %s", i+1, id, s.response.StatusCode, s.responseBody)
		}
	}
	return nil
}

func (s *StepsContext) thereShouldBeRecordsFromSource(n int, source string) error {
	req, err := http.NewRequest("GET", s.tc.ServerURL+"/api/records", nil)
	if err != nil {
		return err
	}
	q := req.URL.Query()
	q.Set("source", source)
	req.URL.RawQuery = q.Encode()
	if err := s.send(req); err != nil {
		return err
	}
	return s.theResponseShouldBeAListOf(n)
}

// Helpers

func (s *StepsContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, s.tc.ServerURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req)
}

func (s *StepsContext) send(req *http.Request) error {
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}
	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

// expand replaces {name} with remembered values.
func (s *StepsContext) expand(text string) string {
	for name, v := range s.remembered {
		text = strings.ReplaceAll(text, "{"+name+"}", v)
	}
	return text
}

// field resolves a dotted path in the JSON response. Numeric segments index
// into lists.
func (s *StepsContext) field(path string) (string, error) {
	var v any
	if err := json.Unmarshal(s.responseBody, &v); err != nil {
		return "", fmt.Errorf("response is not JSON: %w", err)
	}
	for _, seg := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return "", fmt.Errorf("field %q not found in %s", path, s.responseBody)
			}
			v = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return "", fmt.Errorf("bad index %q in %q", seg, path)
			}
			v = node[i]
		default:
			return "", fmt.Errorf("cannot descend into %q of %q", seg, path)
		}
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case nil:
		return "", nil
	default:
		b, err := json.Marshal(val)
		return string(b), err
	}
}
