package web

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/JonMunkholm/LeadTracker/internal/core"
	"github.com/JonMunkholm/LeadTracker/internal/logging"
)

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.ListCampaigns(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

type campaignRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body campaignRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.service.CreateCampaign(r.Context(), body.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, c)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.service.GetCampaign(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) handleCampaignStats(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := s.service.GetCampaign(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeStats(w, r, &id)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeStats(w, r, nil)
}

func (s *Server) writeStats(w http.ResponseWriter, r *http.Request, campaignID *uuid.UUID) {
	stats, err := s.service.Stats(r.Context(), campaignID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

type healthResponse struct {
	Status  string             `json:"status"`
	Storage string             `json:"storage"`
	Imports core.LimiterStatus `json:"imports"`
}

// handleHealth reports storage reachability and import slot usage. It
// answers 503 when storage is down so load balancers stop routing.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Storage: "ok", Imports: s.service.LimiterStatus()}
	status := http.StatusOK
	if err := s.service.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("health check: storage unreachable", "error", err)
		resp.Status = "degraded"
		resp.Storage = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, r, status, resp)
}
