package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/ynabsync/pkg/config"
	"github.com/yurifrl/ynabsync/pkg/executors"
	"github.com/yurifrl/ynabsync/pkg/models"
	"github.com/yurifrl/ynabsync/pkg/plan"
)

const ledger = `[
  {"id": "a1", "date": {"date": "2018-03-01 00:00:00.000000"}, "amount": "50.00", "title": "Salary"},
  {"id": "a2", "date": {"date": "2017-01-01 00:00:00.000000"}, "amount": "10.00", "title": "Old"}
]`

type fakeClient struct {
	accounts []models.Account
	remote   []models.DestinationTransaction
	token    string
}

func (f *fakeClient) Accounts(budgetID string) ([]models.Account, error) {
	return f.accounts, nil
}

func (f *fakeClient) ResolveAccount(budgetID, name string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.Name == name {
			found := a
			return &found, nil
		}
	}
	return nil, &models.AccountNotFoundError{Name: name}
}

func (f *fakeClient) Transactions(budgetID, accountID string) ([]models.DestinationTransaction, error) {
	return f.remote, nil
}

type countingApplier struct {
	ops []plan.Operation
}

func (c *countingApplier) Apply(ctx context.Context, ops []plan.Operation) (*plan.Outcome, error) {
	c.ops = append(c.ops, ops...)
	return &plan.Outcome{Created: len(ops)}, nil
}

func newTestServer(client *fakeClient, applier *countingApplier) *Server {
	cfg := &config.Config{YNAB: config.YNABConfig{BudgetID: "budget"}, Years: []string{"2018"}, Backend: config.BackendAPI}
	s := New(cfg, log.New(&bytes.Buffer{}))
	s.connect = func(token string) Client {
		client.token = token
		return client
	}
	s.applier = func(*executors.Executor, Client, *plan.Plan) plan.Applier { return applier }
	return s
}

func ledgerRequest(t *testing.T, path string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("ledger", "ledger.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(ledger)); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleAccounts(t *testing.T) {
	client := &fakeClient{accounts: []models.Account{{ID: "acc-1", Name: "Checking"}}}
	s := newTestServer(client, &countingApplier{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts?token=secret", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if client.token != "secret" {
		t.Errorf("token not passed to client")
	}
	var body struct {
		Accounts []models.Account `json:"accounts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Accounts) != 1 || body.Accounts[0].Name != "Checking" {
		t.Errorf("unexpected accounts: %+v", body.Accounts)
	}
}

func TestHandleAccountsErrors(t *testing.T) {
	s := newTestServer(&fakeClient{}, &countingApplier{})

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"wrong method", http.MethodPost, "/api/accounts?token=x", http.StatusMethodNotAllowed},
		{"missing token", http.MethodGet, "/api/accounts", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestHandlePlan(t *testing.T) {
	client := &fakeClient{accounts: []models.Account{{ID: "acc-1", Name: "Checking"}}}
	s := newTestServer(client, &countingApplier{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, ledgerRequest(t, "/api/plan", map[string]string{"token": "secret", "account": "Checking"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp PlanResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Missing != 1 || len(resp.Operations) != 1 {
		t.Fatalf("expected one missing record, got %+v", resp)
	}
	if op := resp.Operations[0]; op.Kind != plan.Create || op.ImportID != "a1" || op.Amount != -50000 {
		t.Errorf("unexpected operation: %+v", op)
	}
	if resp.RunID == "" || resp.Account != "Checking" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandlePlanErrors(t *testing.T) {
	client := &fakeClient{accounts: []models.Account{{ID: "acc-1", Name: "Checking"}}}
	s := newTestServer(client, &countingApplier{})

	tests := []struct {
		name   string
		fields map[string]string
		want   int
	}{
		{"missing token", map[string]string{"account": "Checking"}, http.StatusBadRequest},
		{"unknown account", map[string]string{"token": "x", "account": "Savings"}, http.StatusNotFound},
		{"explicit years", map[string]string{"token": "x", "account": "Checking", "years": "2018"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, ledgerRequest(t, "/api/plan", tt.fields))
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleApply(t *testing.T) {
	client := &fakeClient{accounts: []models.Account{{ID: "acc-1", Name: "Checking"}}}
	applier := &countingApplier{}
	s := newTestServer(client, applier)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, ledgerRequest(t, "/api/apply", map[string]string{"token": "secret", "account": "Checking", "years": "2017,2018"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(applier.ops) != 2 {
		t.Fatalf("expected both records to be created, got %+v", applier.ops)
	}
	var body struct {
		Outcome plan.Outcome `json:"outcome"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Outcome.Created != 2 {
		t.Errorf("unexpected outcome: %+v", body.Outcome)
	}
}
