package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seenimoa/loanlens/internal/config"
)

const fixedLoan = `LENDER: First Bank
BORROWER: Acme Corp
The Lender agrees to lend $100,000.00 to the Borrower.
Interest rate: 12% fixed annual.
Term: 12 months with monthly payments.`

const variableLoan = `LENDER: First Bank
BORROWER: Acme Corp
The Lender agrees to lend $100,000.00 to the Borrower.
Interest rate: SOFR + 2.5% per annum.
Term: 12 months with monthly payments.`

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{API: config.APIConfig{CORSOrigins: []string{"http://localhost:3000"}}}
	return NewServer(cfg, nil, nil, nil, "test")
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func body(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// decodeData decodes the envelope's data field into v.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

// ════════════════════════════════════════════════════════════════════
// APIResponse type tests
// ════════════════════════════════════════════════════════════════════

func TestAPIResponseJSON(t *testing.T) {
	tests := []struct {
		name string
		resp APIResponse
		want string
	}{
		{"success with data", APIResponse{Success: true, Data: map[string]string{"key": "value"}}, `{"success":true,"data":{"key":"value"}}`},
		{"error", APIResponse{Success: false, Error: "something went wrong"}, `{"success":false,"error":"something went wrong"}`},
		{"success with nil data", APIResponse{Success: true}, `{"success":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.resp)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got %s, want %s", data, tt.want)
			}
		})
	}
}

func TestPrepaymentRequestJSON(t *testing.T) {
	raw := `{"text":"loan","start_date":"2025-01-01","period":6,"amount":10000}`
	var req PrepaymentRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Text != "loan" || req.StartDate != "2025-01-01" {
		t.Errorf("embedded fields: got %+v", req.ContractRequest)
	}
	if req.Period != 6 || req.Amount != 10000 {
		t.Errorf("got period %d amount %f", req.Period, req.Amount)
	}
}

// ════════════════════════════════════════════════════════════════════
// Health
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := do(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status got %d, want %d", path, rec.Code, http.StatusOK)
		}
		resp := decodeResponse(t, rec)
		if !resp.Success {
			t.Errorf("%s: expected success", path)
		}
		data, ok := resp.Data.(map[string]any)
		if !ok {
			t.Fatalf("%s: data is %T", path, resp.Data)
		}
		if data["status"] != "ok" || data["version"] != "test" {
			t.Errorf("%s: got %v", path, data)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Request validation
// ════════════════════════════════════════════════════════════════════

func TestContractEndpoints_InvalidJSON(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/api/v1/extract", "/api/v1/analyze", "/api/v1/schedule", "/api/v1/report", "/api/v1/sensitivity", "/api/v1/prepayment"} {
		rec := do(t, srv, http.MethodPost, path, "not json")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want %d", path, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestContractEndpoints_UnknownField(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/extract", `{"text":"x","ticker":"ACME"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestContractEndpoints_BlankText(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/analyze", `{"text":"   "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	resp := decodeResponse(t, rec)
	if !strings.Contains(resp.Error, "no text extracted") {
		t.Errorf("error got %q", resp.Error)
	}
}

func TestHandleAnalyze_InvalidStartDate(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/analyze",
		body(t, ContractRequest{Text: fixedLoan, StartDate: "01/02/2025"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// ════════════════════════════════════════════════════════════════════
// Pipeline
// ════════════════════════════════════════════════════════════════════

func TestHandleExtract(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/extract", body(t, ContractRequest{Text: fixedLoan}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusOK)
	}
	var got ExtractResponse
	decodeData(t, rec, &got)
	if got.ID == "" {
		t.Error("expected an ID")
	}
	if got.Contract.Principal != 100000 {
		t.Errorf("Principal: got %f, want 100000", got.Contract.Principal)
	}
	if got.Contract.Lender != "First Bank" {
		t.Errorf("Lender: got %q", got.Contract.Lender)
	}
	if got.Contract.RawText != "" {
		t.Error("raw text should not be serialized")
	}
}

func TestHandleAnalyze(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/analyze",
		body(t, ContractRequest{Text: fixedLoan, StartDate: "2025-01-01"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusOK)
	}
	var got struct {
		ID     string `json:"id"`
		Result struct {
			FirstPayment        float64 `json:"first_payment"`
			EffectiveAnnualRate float64 `json:"effective_annual_rate"`
		} `json:"financial_result"`
	}
	decodeData(t, rec, &got)
	if got.ID == "" {
		t.Error("expected an ID")
	}
	if got.Result.FirstPayment != 8884.88 {
		t.Errorf("FirstPayment: got %f, want 8884.88", got.Result.FirstPayment)
	}
	if got.Result.EffectiveAnnualRate != 12.68 {
		t.Errorf("EffectiveAnnualRate: got %f, want 12.68", got.Result.EffectiveAnnualRate)
	}
}

func TestHandleSchedule(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/schedule",
		body(t, ContractRequest{Text: fixedLoan, StartDate: "2025-01-01"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusOK)
	}
	var got ScheduleResponse
	decodeData(t, rec, &got)
	if len(got.Schedule) != 12 {
		t.Fatalf("Schedule: got %d rows, want 12", len(got.Schedule))
	}
	if got.Schedule[0].Date.Format("2006-01-02") != "2025-01-31" {
		t.Errorf("first date: got %s, want 2025-01-31", got.Schedule[0].Date.Format("2006-01-02"))
	}
	if got.Currency != "USD" {
		t.Errorf("Currency: got %q", got.Currency)
	}
}

func TestHandleSchedule_XLSX(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/schedule?format=xlsx",
		body(t, ContractRequest{Text: fixedLoan, StartDate: "2025-01-01"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type: got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("body should be a zip container")
	}
}

func TestHandleReport_HTML(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/report",
		body(t, ReportRequest{ContractRequest: ContractRequest{Text: fixedLoan, StartDate: "2025-01-01"}}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q", ct)
	}
	out := rec.Body.String()
	for _, want := range []string{"<!DOCTYPE html>", "Loan Analysis: Acme Corp", "$8,884.88", "<svg"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestHandleReport_TextSections(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/report?format=text", body(t, ReportRequest{
		ContractRequest: ContractRequest{Text: fixedLoan, StartDate: "2025-01-01"},
		Sections:        []string{"cost"},
		Title:           "Acme facility",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type: got %q", ct)
	}
	out := rec.Body.String()
	if !strings.Contains(out, "Acme facility") || !strings.Contains(out, "COST OF CREDIT") {
		t.Errorf("unexpected text report:\n%s", out)
	}
	if strings.Contains(out, "AMORTIZATION SCHEDULE") {
		t.Error("schedule section should be excluded")
	}
}

func TestHandleReport_UnknownFormat(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/report?format=pdf", body(t, ContractRequest{Text: fixedLoan}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// ════════════════════════════════════════════════════════════════════
// On-demand analyses
// ════════════════════════════════════════════════════════════════════

func TestHandleSensitivity_FixedRate(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/sensitivity", body(t, SensitivityRequest{
		ContractRequest: ContractRequest{Text: fixedLoan},
	}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestHandleSensitivity(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/v1/sensitivity", body(t, SensitivityRequest{
		ContractRequest: ContractRequest{Text: variableLoan, StartDate: "2025-01-01"},
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusOK)
	}
	var got SensitivityResponse
	decodeData(t, rec, &got)
	if got.Report == nil || len(got.Report.Scenarios) != 6 {
		t.Fatalf("expected 6 scenarios, got %+v", got.Report)
	}
	if got.Report.Index != "SOFR" {
		t.Errorf("Index: got %q, want SOFR", got.Report.Index)
	}

	rec = do(t, testServer(t), http.MethodPost, "/api/v1/sensitivity", body(t, SensitivityRequest{
		ContractRequest: ContractRequest{Text: variableLoan},
		Shifts:          []float64{1},
	}))
	decodeData(t, rec, &got)
	if len(got.Report.Scenarios) != 1 {
		t.Errorf("custom shifts: got %d scenarios, want 1", len(got.Report.Scenarios))
	}
}

func TestHandlePrepayment(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, http.MethodPost, "/api/v1/prepayment", body(t, PrepaymentRequest{
		ContractRequest: ContractRequest{Text: fixedLoan}, Period: 0, Amount: 1000,
	}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("period 0: status got %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = do(t, srv, http.MethodPost, "/api/v1/prepayment", body(t, PrepaymentRequest{
		ContractRequest: ContractRequest{Text: fixedLoan}, Period: 20, Amount: 1000,
	}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("period 20: status got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	rec = do(t, srv, http.MethodPost, "/api/v1/prepayment", body(t, PrepaymentRequest{
		ContractRequest: ContractRequest{Text: fixedLoan}, Period: 6, Amount: 10000,
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusOK)
	}
	var got PrepaymentResponse
	decodeData(t, rec, &got)
	if got.Result.ReducedBalance != 41492.11 {
		t.Errorf("ReducedBalance: got %f, want 41492.11", got.Result.ReducedBalance)
	}
	if len(got.Result.Revised) != 6 {
		t.Errorf("Revised: got %d rows, want 6", len(got.Result.Revised))
	}
}

// ════════════════════════════════════════════════════════════════════
// Reference data & configuration
// ════════════════════════════════════════════════════════════════════

func TestHandleRefData_Builtin(t *testing.T) {
	rec := do(t, testServer(t), http.MethodGet, "/api/v1/refdata", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusOK)
	}
	var got struct {
		Market     map[string]map[string]any `json:"market_rates"`
		MarketFrom string                    `json:"market_source"`
	}
	decodeData(t, rec, &got)
	if got.MarketFrom != "builtin" {
		t.Errorf("market_source: got %q", got.MarketFrom)
	}
	if len(got.Market) != 3 {
		t.Errorf("size tiers: got %d, want 3", len(got.Market))
	}
}

func TestHandleGetConfig(t *testing.T) {
	rec := do(t, testServer(t), http.MethodGet, "/api/v1/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want %d", rec.Code, http.StatusOK)
	}

	noCfg := NewServer(nil, nil, nil, nil, "")
	rec = do(t, noCfg, http.MethodGet, "/api/v1/config", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("nil config: status got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleGetConfigFiles(t *testing.T) {
	rec := do(t, testServer(t), http.MethodGet, "/api/v1/config/files", "")
	var got []config.FileStatus
	decodeData(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("got %d statuses, want 2", len(got))
	}
	if got[0].Source != config.SourceBuiltin {
		t.Errorf("source: got %q", got[0].Source)
	}
}

// ════════════════════════════════════════════════════════════════════
// Middleware
// ════════════════════════════════════════════════════════════════════

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	testServer(t).Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin: got %q", got)
	}
}

func TestNotFound(t *testing.T) {
	rec := do(t, testServer(t), http.MethodGet, "/api/v1/quote/ACME", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
