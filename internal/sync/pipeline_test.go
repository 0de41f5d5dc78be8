package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crm-ad-sync/internal/domain"
	"crm-ad-sync/internal/providers/directory"
	"crm-ad-sync/internal/providers/dynamics"
)

type fakeCRM struct {
	users   []domain.CRMUser
	listErr error

	updates   map[string]map[string]string
	updateErr map[string]error
}

func (f *fakeCRM) ListEnabledUsers(ctx context.Context) ([]domain.CRMUser, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

func (f *fakeCRM) UpdateUser(ctx context.Context, id string, payload map[string]string) error {
	if err := f.updateErr[id]; err != nil {
		return err
	}
	if f.updates == nil {
		f.updates = map[string]map[string]string{}
	}
	f.updates[id] = payload
	return nil
}

type fakeDirectory struct {
	entries map[string]*domain.DirectoryUser
	err     error
}

func (f *fakeDirectory) RetrieveUserProperties(ctx context.Context, domainAccountName string) (*domain.DirectoryUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[domainAccountName], nil
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestRunListFailureIsFatal(t *testing.T) {
	captureLog(t)

	crm := &fakeCRM{listErr: errors.New("connection refused")}
	dir := &fakeDirectory{}

	_, err := Run(context.Background(), crm, dir, Options{})
	if err == nil {
		t.Fatal("Expected listing failure to abort the run")
	}
	if !strings.Contains(err.Error(), "list users") {
		t.Errorf("Expected wrapped list error, got %q", err.Error())
	}
}

func TestRunDirectoryMissIsSkipped(t *testing.T) {
	logs := captureLog(t)

	crm := &fakeCRM{users: []domain.CRMUser{
		{ID: "u1", DomainName: `CONTOSO\ghost`},
		{ID: "u2", DomainName: `CONTOSO\jdoe`},
	}}
	dir := &fakeDirectory{entries: map[string]*domain.DirectoryUser{
		`CONTOSO\jdoe`: {FirstName: "John", LastName: "Doe"},
	}}

	report, err := Run(context.Background(), crm, dir, Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if report.Count(OutcomeSkipped) != 1 {
		t.Errorf("Expected 1 skipped, got %d", report.Count(OutcomeSkipped))
	}
	if report.Count(OutcomeUpdated) != 1 {
		t.Errorf("Expected 1 updated, got %d", report.Count(OutcomeUpdated))
	}
	if _, ok := crm.updates["u1"]; ok {
		t.Error("A directory miss must not trigger an update")
	}
	if !strings.Contains(logs.String(), "WARN: no directory entry") {
		t.Errorf("Expected a warning for the miss, got logs:\n%s", logs.String())
	}
}

func TestRunUpdateFailureDoesNotAbort(t *testing.T) {
	logs := captureLog(t)

	crm := &fakeCRM{
		users: []domain.CRMUser{
			{ID: "u1", DomainName: `CONTOSO\jdoe`},
			{ID: "u2", DomainName: `CONTOSO\asmith`},
		},
		updateErr: map[string]error{"u1": errors.New("status=400")},
	}
	dir := &fakeDirectory{entries: map[string]*domain.DirectoryUser{
		`CONTOSO\jdoe`:   {FirstName: "John", LastName: "Doe"},
		`CONTOSO\asmith`: {FirstName: "Anna", LastName: "Smith"},
	}}

	report, err := Run(context.Background(), crm, dir, Options{})
	if err != nil {
		t.Fatalf("Per-record failures must not abort the run, got %v", err)
	}

	if report.Count(OutcomeError) != 1 {
		t.Errorf("Expected 1 error, got %d", report.Count(OutcomeError))
	}
	if report.Count(OutcomeUpdated) != 1 {
		t.Errorf("Expected 1 updated, got %d", report.Count(OutcomeUpdated))
	}
	if _, ok := crm.updates["u2"]; !ok {
		t.Error("Expected the second user to be updated after the first failed")
	}

	// The error line carries id, full name and the attempted payload.
	out := logs.String()
	for _, want := range []string{"u1", "John Doe", "firstname"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected error log to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunDirectoryErrorIsIsolated(t *testing.T) {
	captureLog(t)

	crm := &fakeCRM{users: []domain.CRMUser{{ID: "u1", DomainName: `CONTOSO\jdoe`}}}
	dir := &fakeDirectory{err: errors.New("soap fault")}

	report, err := Run(context.Background(), crm, dir, Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Count(OutcomeError) != 1 {
		t.Errorf("Expected 1 error, got %d", report.Count(OutcomeError))
	}
}

func TestRunDryRunDoesNotPatch(t *testing.T) {
	logs := captureLog(t)

	crm := &fakeCRM{users: []domain.CRMUser{{ID: "u1", DomainName: `CONTOSO\jdoe`}}}
	dir := &fakeDirectory{entries: map[string]*domain.DirectoryUser{
		`CONTOSO\jdoe`: {FirstName: "John"},
	}}

	report, err := Run(context.Background(), crm, dir, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(crm.updates) != 0 {
		t.Errorf("Dry run must not patch, got updates: %v", crm.updates)
	}
	if report.Count(OutcomeDryRun) != 1 {
		t.Errorf("Expected 1 dry-run result, got %d", report.Count(OutcomeDryRun))
	}
	if !strings.Contains(logs.String(), "[DRY-RUN]") {
		t.Errorf("Expected a dry-run log line, got:\n%s", logs.String())
	}
}

// End-to-end against real clients and fake servers: one enabled user whose
// directory record carries first name, last name and mobile phone must end
// as a PATCH with exactly those fields, and a success line naming the user.
func TestRunEndToEnd(t *testing.T) {
	logs := captureLog(t)

	var patchedPath string
	var patchedBody map[string]string

	crmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"value":[{"domainname":"CONTOSO\\jdoe","systemuserid":"u1"}]}`))
		case http.MethodPatch:
			patchedPath = r.URL.Path
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &patchedBody); err != nil {
				t.Errorf("PATCH body is not valid JSON: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("Unexpected method %s", r.Method)
		}
	}))
	defer crmServer.Close()

	inner := `<ADUserProperties><systemuser firstname="John" lastname="Doe" mobilephone="555-1234"/></ADUserProperties>`
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(inner))
	dirServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <RetrieveADUserPropertiesResponse xmlns="http://schemas.microsoft.com/crm/2009/WebServices">
      <RetrieveADUserPropertiesResult>%s</RetrieveADUserPropertiesResult>
    </RetrieveADUserPropertiesResponse>
  </soap:Body>
</soap:Envelope>`, escaped.String())
	}))
	defer dirServer.Close()

	crm := dynamics.New(crmServer.URL)
	dir := directory.New(dirServer.URL)

	report, err := Run(context.Background(), crm, dir, Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if patchedPath != "/api/data/v8.2/systemusers(u1)" {
		t.Errorf("Unexpected PATCH path %q", patchedPath)
	}

	expected := map[string]string{
		"firstname":   "John",
		"lastname":    "Doe",
		"mobilephone": "555-1234",
	}
	if len(patchedBody) != len(expected) {
		t.Errorf("Expected PATCH body with exactly %d fields, got %v", len(expected), patchedBody)
	}
	for k, v := range expected {
		if patchedBody[k] != v {
			t.Errorf("Expected body[%q] = %q, got %q", k, v, patchedBody[k])
		}
	}

	if report.Count(OutcomeUpdated) != 1 {
		t.Errorf("Expected 1 updated, got %d", report.Count(OutcomeUpdated))
	}
	if !strings.Contains(logs.String(), "u1") {
		t.Errorf("Expected success log to name the user id, got:\n%s", logs.String())
	}
}
