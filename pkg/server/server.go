package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/ynabsync/pkg/config"
	"github.com/yurifrl/ynabsync/pkg/executors"
	"github.com/yurifrl/ynabsync/pkg/models"
	"github.com/yurifrl/ynabsync/pkg/parser"
	"github.com/yurifrl/ynabsync/pkg/plan"
	"github.com/yurifrl/ynabsync/pkg/ynab"
)

// Client is the part of the YNAB client the handlers need.
type Client interface {
	executors.Destination
	Accounts(budgetID string) ([]models.Account, error)
}

// Server exposes planning and applying over a small JSON API
type Server struct {
	config  *config.Config
	logger  *log.Logger
	mux     *http.ServeMux
	parser  *parser.Parser
	connect func(token string) Client
	applier func(exec *executors.Executor, client Client, p *plan.Plan) plan.Applier
}

// New creates a new HTTP server
func New(config *config.Config, logger *log.Logger) *Server {
	s := &Server{
		config:  config,
		logger:  logger,
		mux:     http.NewServeMux(),
		parser:  parser.New(logger),
		connect: func(token string) Client { return ynab.New(token) },
		applier: func(exec *executors.Executor, client Client, p *plan.Plan) plan.Applier {
			yc, _ := client.(*ynab.YNABClient)
			return exec.Applier(yc, p)
		},
	}
	s.setupRoutes()
	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/accounts", s.withLogging(s.handleAccounts))
	s.mux.HandleFunc("/api/plan", s.withLogging(s.handlePlan))
	s.mux.HandleFunc("/api/apply", s.withLogging(s.handleApply))
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		s.respondError(w, r, http.StatusBadRequest, "token required", nil)
		return
	}
	budgetID := r.URL.Query().Get("budget_id")
	if budgetID == "" {
		budgetID = s.config.YNAB.BudgetID
	}
	if budgetID == "" {
		s.respondError(w, r, http.StatusBadRequest, "budget_id required", nil)
		return
	}

	accounts, err := s.connect(token).Accounts(budgetID)
	if err != nil {
		s.respondError(w, r, http.StatusBadGateway, "failed to fetch accounts", err)
		return
	}

	s.logger.Info("accounts response", "budget_id", budgetID, "accounts_count", len(accounts))
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"accounts": accounts,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// PlanResponse is the body returned by /api/plan.
type PlanResponse struct {
	Status     string           `json:"status"`
	RunID      string           `json:"run_id"`
	Account    string           `json:"account"`
	InSync     int              `json:"in_sync"`
	Changed    int              `json:"changed"`
	Missing    int              `json:"missing"`
	Operations []plan.Operation `json:"operations"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	run, _, status, err := s.plan(r)
	if err != nil {
		s.respondError(w, r, status, "failed to plan", err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, PlanResponse{
		Status:     "success",
		RunID:      run.ID,
		Account:    run.Account.Name,
		InSync:     run.Result.InSyncCount(),
		Changed:    run.Result.ChangedCount(),
		Missing:    run.Result.MissingCount(),
		Operations: run.Plan.Operations,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	run, exec, status, err := s.plan(r)
	if err != nil {
		s.respondError(w, r, status, "failed to plan", err)
		return
	}

	outcome, err := exec.Apply(r.Context(), run.Plan, s.applier(exec, s.connect(r.FormValue("token")), run.Plan))
	if err != nil {
		s.respondError(w, r, http.StatusBadGateway, "apply failed", err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "applied",
		"run_id":  run.ID,
		"outcome": outcome,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// plan reads the uploaded ledger and the destination form values and runs
// the planner. The returned status is meaningful only when err is set.
func (s *Server) plan(r *http.Request) (*executors.Run, *executors.Executor, int, error) {
	file, header, err := r.FormFile("ledger")
	if err != nil {
		return nil, nil, http.StatusBadRequest, fmt.Errorf("ledger file required: %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, http.StatusInternalServerError, fmt.Errorf("failed to read file: %w", err)
	}

	token := r.FormValue("token")
	if token == "" {
		return nil, nil, http.StatusBadRequest, errors.New("token required")
	}

	records, err := s.parser.ProcessBytes(data, header.Filename)
	if err != nil {
		return nil, nil, http.StatusBadRequest, err
	}

	cfg := s.requestConfig(r)
	exec := executors.New(s.logger, cfg, s.connect(token))
	run, err := exec.Plan(records)
	if err != nil {
		return nil, nil, statusFor(err), err
	}
	return run, exec, http.StatusOK, nil
}

// requestConfig overlays the form values of a request on the server config.
func (s *Server) requestConfig(r *http.Request) *config.Config {
	cfg := *s.config
	if v := r.FormValue("budget_id"); v != "" {
		cfg.YNAB.BudgetID = v
	}
	if v := r.FormValue("account"); v != "" {
		cfg.YNAB.Account = v
	}
	if v := r.FormValue("years"); v != "" {
		cfg.Years = strings.Split(v, ",")
	}
	if v := r.FormValue("from"); v != "" {
		cfg.From = v
	}
	if v := r.FormValue("to"); v != "" {
		cfg.To = v
	}
	// debug dumps and verbose output are CLI only
	cfg.DebugFile = ""
	cfg.Verbose = false
	return &cfg
}

func statusFor(err error) int {
	var (
		notFound  *models.AccountNotFoundError
		parseErr  *models.ParseError
		ambiguous *models.AmbiguousFingerprintError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.As(err, &ambiguous):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	body := map[string]string{
		"status": "error",
		"error":  message,
	}
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
		body["detail"] = err.Error()
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, body)
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
