package api

import (
	"net/http"
)

func (s *Server) handleExtractionStats(w http.ResponseWriter, r *http.Request) {
	proc := s.orchestrator.Processor()
	writeJSON(w, http.StatusOK, map[string]any{
		"extraction":  proc.ExtractStats.Snapshot(),
		"match":       proc.MatchStats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func (s *Server) handleListResidents(w http.ResponseWriter, r *http.Request) {
	residents, err := s.roster.Residents(r.Context())
	if err != nil {
		s.log.Error("list residents failed", "error", err)
		jsonError(w, "roster unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"residents": residents,
		"roster":    s.roster.Info(),
	})
}

func (s *Server) handleRefreshResidents(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.Refresh(r.Context()); err != nil {
		s.log.Error("roster refresh failed", "error", err)
		jsonError(w, "roster refresh failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, s.roster.Info())
}
