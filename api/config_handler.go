// Configuration and reference data endpoints.
package api

import (
	"net/http"

	"github.com/seenimoa/loanlens/internal/config"
	"github.com/seenimoa/loanlens/internal/refdata"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config *config.Config `json:"config"`
}

// handleGetConfig returns the current (running) configuration.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		s.writeError(w, http.StatusServiceUnavailable, "configuration not loaded")
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ConfigResponse{Config: s.cfg},
	})
}

// handleGetConfigFiles returns where each reference table comes from.
func (s *Server) handleGetConfigFiles(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg
	if cfg == nil {
		cfg = &config.Config{}
	}
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckReferenceFiles(cfg),
	})
}

// handleRefData returns the loaded market bands and risk weights.
func (s *Server) handleRefData(w http.ResponseWriter, r *http.Request) {
	tables := s.tables
	if tables == nil {
		tables = &refdata.Tables{
			Market:      refdata.DefaultMarketRates(),
			RiskFactors: refdata.DefaultRiskFactors(),
			MarketFrom:  refdata.BuiltinSource,
			RiskFrom:    refdata.BuiltinSource,
		}
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: tables})
}
