package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/rebalancing"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "shadowfund",
	})
}

// handleRebalance runs the full pipeline for a signed request.
func (s *Server) handleRebalance(w http.ResponseWriter, r *http.Request) {
	var req rebalancing.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := s.rebalancing.Rebalance(r.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "unauthorized") {
			status = http.StatusUnauthorized
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleStats returns aggregated per-vault statistics for a wallet.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")
	stats, err := s.rebalancing.VaultStats(r.Context(), wallet)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"wallet": wallet,
		"vaults": stats,
	})
}

// handleAllocationPreview computes a target allocation without moving funds.
func (s *Server) handleAllocationPreview(w http.ResponseWriter, r *http.Request) {
	profile := domain.RiskProfile(r.URL.Query().Get("risk_profile"))
	if profile == "" {
		profile = domain.RiskMedium
	}
	if !domain.IsValidRiskProfile(profile) {
		s.writeError(w, http.StatusBadRequest, "unknown risk profile")
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Target(r.Context(), profile))
}

// handleHistory lists recent rebalance runs.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "history ledger not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.history.Recent(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{"error": message})
}
