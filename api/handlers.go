package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seenimoa/loanlens/internal/export"
	"github.com/seenimoa/loanlens/internal/finance"
	"github.com/seenimoa/loanlens/internal/parser"
	"github.com/seenimoa/loanlens/internal/report"
	"github.com/seenimoa/loanlens/internal/textsource"
	"github.com/seenimoa/loanlens/pkg/models"
)

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ContractRequest carries contract text and an optional schedule start date.
type ContractRequest struct {
	Text      string `json:"text"`
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD, default from config or today
}

// SensitivityRequest is the body for POST /api/v1/sensitivity.
type SensitivityRequest struct {
	ContractRequest
	Shifts []float64 `json:"shifts,omitempty"` // percentage points, default -1 to +2
}

// PrepaymentRequest is the body for POST /api/v1/prepayment.
type PrepaymentRequest struct {
	ContractRequest
	Period int     `json:"period"`
	Amount float64 `json:"amount"`
}

// ReportRequest is the body for POST /api/v1/report.
type ReportRequest struct {
	ContractRequest
	Sections []string `json:"sections,omitempty"` // default: all
	Title    string   `json:"title,omitempty"`
}

// ExtractResponse is returned by POST /api/v1/extract.
type ExtractResponse struct {
	ID       string                 `json:"id"`
	Contract models.Contract        `json:"contract"`
	Summary  parser.ContractSummary `json:"summary"`
}

// ScheduleResponse is returned by POST /api/v1/schedule.
type ScheduleResponse struct {
	ID            string                   `json:"id"`
	Currency      string                   `json:"currency"`
	FirstPayment  float64                  `json:"first_payment"`
	TotalInterest float64                  `json:"total_interest"`
	Schedule      []models.AmortizationRow `json:"schedule"`
}

// SensitivityResponse is returned by POST /api/v1/sensitivity.
type SensitivityResponse struct {
	ID          string                    `json:"id"`
	NominalRate float64                   `json:"nominal_rate"`
	Report      *models.SensitivityReport `json:"sensitivity"`
}

// PrepaymentResponse is returned by POST /api/v1/prepayment.
type PrepaymentResponse struct {
	ID     string                  `json:"id"`
	Result models.PrepaymentResult `json:"prepayment"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":  "ok",
			"version": s.version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ContractRequest
	if !s.readContract(w, r, &req) {
		return
	}
	contract := s.analyzer.Parse(req.Text)
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ExtractResponse{
			ID:       uuid.NewString(),
			Contract: contract,
			Summary:  parser.Summarize(contract),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req ContractRequest
	if !s.readContract(w, r, &req) {
		return
	}
	start, ok := s.startDate(w, req.StartDate)
	if !ok {
		return
	}
	rep, err := s.analyzer.Analyze(r.Context(), req.Text, start)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep})
}

// handleSchedule returns the amortization schedule as JSON, or as an XLSX
// workbook when the query has format=xlsx.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req ContractRequest
	if !s.readContract(w, r, &req) {
		return
	}
	start, ok := s.startDate(w, req.StartDate)
	if !ok {
		return
	}
	rep, err := s.analyzer.Analyze(r.Context(), req.Text, start)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule-%s.xlsx"`, rep.ID))
		if err := export.Schedule(w, rep.Contract, rep.Result); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ScheduleResponse{
			ID:            rep.ID,
			Currency:      rep.Contract.Currency,
			FirstPayment:  rep.Result.FirstPayment,
			TotalInterest: rep.Result.TotalInterest,
			Schedule:      rep.Result.Schedule,
		},
	})
}

func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req SensitivityRequest
	if !s.readContract(w, r, &req) {
		return
	}
	start, ok := s.startDate(w, req.StartDate)
	if !ok {
		return
	}
	contract, sens, err := s.analyzer.Sensitivity(req.Text, start, req.Shifts...)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: SensitivityResponse{
			ID:          uuid.NewString(),
			NominalRate: contract.NominalRate,
			Report:      sens,
		},
	})
}

func (s *Server) handlePrepayment(w http.ResponseWriter, r *http.Request) {
	var req PrepaymentRequest
	if !s.readContract(w, r, &req) {
		return
	}
	if req.Period < 1 {
		s.writeError(w, http.StatusBadRequest, "period must be at least 1")
		return
	}
	start, ok := s.startDate(w, req.StartDate)
	if !ok {
		return
	}
	_, res, err := s.analyzer.Prepay(req.Text, start, req.Period, req.Amount)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    PrepaymentResponse{ID: uuid.NewString(), Result: res},
	})
}

// handleReport renders an HTML report, or plain text when the query has
// format=text.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ReportRequest
	if !s.readContract(w, r, &req) {
		return
	}
	start, ok := s.startDate(w, req.StartDate)
	if !ok {
		return
	}
	rep, err := s.analyzer.Analyze(r.Context(), req.Text, start)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	cfg := report.DefaultConfig()
	cfg.Title = req.Title
	if len(req.Sections) > 0 {
		cfg.Sections = make([]report.Section, len(req.Sections))
		for i, sec := range req.Sections {
			cfg.Sections[i] = report.Section(sec)
		}
	}
	out, err := report.Generate(rep, format, cfg)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contentType := "text/html; charset=utf-8"
	if format == report.FormatText {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(out)); err != nil {
		s.logger.Warn("api: failed to write report", zap.Error(err))
	}
}

// ============================================================
// Helpers
// ============================================================

// textHolder is satisfied by every request that carries contract text.
type textHolder interface {
	contractText() string
}

func (c ContractRequest) contractText() string { return c.Text }

// readContract decodes the body into req and rejects blank contract text.
// It writes the error response itself and reports whether to continue.
func (s *Server) readContract(w http.ResponseWriter, r *http.Request, req textHolder) bool {
	if err := decode(w, r, req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if strings.TrimSpace(req.contractText()) == "" {
		s.writeError(w, http.StatusUnprocessableEntity, textsource.ErrNoText.Error())
		return false
	}
	return true
}

// startDate parses an explicit start date, falling back to the configured one.
func (s *Server) startDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		if s.cfg == nil {
			return time.Time{}, true
		}
		start, err := s.cfg.Engine.Start()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return time.Time{}, false
		}
		return start, true
	}
	start, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return start, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, finance.ErrNotVariableRate),
		errors.Is(err, finance.ErrInvalidPeriod),
		errors.Is(err, finance.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
