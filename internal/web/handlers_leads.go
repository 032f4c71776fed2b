package web

import (
	"net/http"

	"github.com/JonMunkholm/LeadTracker/internal/core"
	"github.com/JonMunkholm/LeadTracker/internal/web/templates"
)

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	q, err := parseLeadQuery(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page, err := s.service.ListLeads(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		renderFragment(w, r, http.StatusOK, templates.LeadRows(page))
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id, err := leadIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	lead, err := s.service.GetLead(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, lead)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	id, err := leadIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var body statusRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	status, err := core.ParseLeadStatus(body.Status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	lead, err := s.service.UpdateLeadStatus(r.Context(), id, status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, lead)
}

func (s *Server) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := leadIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.DeleteLead(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	id, err := leadIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	acts, err := s.service.ListActivities(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, acts)
}

type activityRequest struct {
	ContactMethod string `json:"contact_method"`
	Notes         string `json:"notes"`
}

func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	id, err := leadIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var body activityRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	method, err := core.ParseContactMethod(body.ContactMethod)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	act, err := s.service.AddActivity(r.Context(), id, method, body.Notes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, act)
}
