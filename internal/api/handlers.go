package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"NewsNotify/internal/domain"
)

type statusResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type sourceResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Kind             string `json:"kind"`
	BaseURL          string `json:"base_url"`
	Avatar           string `json:"avatar,omitempty"`
	Selector         string `json:"selector,omitempty"`
	IsActive         bool   `json:"is_active"`
	NeedsTranslation bool   `json:"needs_translation"`
	TargetWebhookIDs string `json:"target_webhook_ids,omitempty"`
	CreatedAt        string `json:"created_at"`
}

type sourceCreateRequest struct {
	Name             string `json:"name"`
	Kind             string `json:"kind"`
	BaseURL          string `json:"base_url"`
	Avatar           string `json:"avatar"`
	Selector         string `json:"selector"`
	IsActive         *bool  `json:"is_active"`
	NeedsTranslation bool   `json:"needs_translation"`
	TargetWebhookIDs string `json:"target_webhook_ids"`
}

type webhookResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Endpoint    string `json:"endpoint"`
	ServiceKind string `json:"service_kind"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

type webhookCreateRequest struct {
	Name        string `json:"name"`
	Endpoint    string `json:"endpoint"`
	ServiceKind string `json:"service_kind"`
	IsActive    *bool  `json:"is_active"`
}

// updateRequest mirrors the original API: only the active flag can be
// updated in place, everything else requires delete and recreate.
type updateRequest struct {
	IsActive *bool `json:"is_active"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "news notify API",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sources, err := s.catalog.ListActiveSources(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "load sources failed")
		return
	}
	targets, err := s.catalog.ListActiveTargets(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "load webhooks failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int{
		"total_articles":  s.seen.Count(ctx, ""),
		"active_sources":  len(sources),
		"active_webhooks": len(targets),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.trigger == nil {
		s.writeError(w, http.StatusServiceUnavailable, "manual runs are disabled")
		return
	}
	go s.trigger()
	s.writeJSON(w, http.StatusAccepted, statusResponse{Message: "collection run started", Success: true})
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.catalog.ListActiveSources(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "load sources failed")
		return
	}

	out := make([]sourceResponse, 0, len(sources))
	for _, src := range sources {
		out = append(out, toSourceResponse(src))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var req sourceCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.BaseURL == "" {
		s.writeError(w, http.StatusBadRequest, "name and base_url are required")
		return
	}
	switch req.Kind {
	case domain.SourceKindFeed:
	case domain.SourceKindSelector:
		if req.Selector == "" {
			s.writeError(w, http.StatusBadRequest, "selector sources require a selector")
			return
		}
	default:
		s.writeError(w, http.StatusBadRequest, "kind must be feed or selector")
		return
	}

	src := domain.Source{
		Name:             req.Name,
		Kind:             req.Kind,
		BaseURL:          req.BaseURL,
		Avatar:           req.Avatar,
		Selector:         req.Selector,
		Active:           activeOrDefault(req.IsActive),
		NeedsTranslation: req.NeedsTranslation,
		TargetWebhookIDs: req.TargetWebhookIDs,
	}

	if _, err := s.catalog.CreateSource(r.Context(), src); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			s.writeError(w, http.StatusBadRequest, "source name already exists")
			return
		}
		s.logError("create source", err)
		s.writeError(w, http.StatusInternalServerError, "create source failed")
		return
	}

	s.writeJSON(w, http.StatusCreated, statusResponse{Message: "source created", Success: true})
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	src, err := s.catalog.GetSource(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, "get source", err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSourceResponse(src))
}

func (s *Server) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IsActive == nil {
		s.writeJSON(w, http.StatusOK, statusResponse{Message: "nothing to update", Success: true})
		return
	}

	if err := s.catalog.SetSourceActive(r.Context(), id, *req.IsActive); err != nil {
		s.writeCatalogError(w, "update source", err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Message: "source updated", Success: true})
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.catalog.DeleteSource(r.Context(), id); err != nil {
		s.writeCatalogError(w, "delete source", err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Message: "source deleted", Success: true})
}

func (s *Server) handleListWebhooks(w http.ResponseWriter, r *http.Request) {
	targets, err := s.catalog.ListActiveTargets(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "load webhooks failed")
		return
	}

	out := make([]webhookResponse, 0, len(targets))
	for _, target := range targets {
		out = append(out, toWebhookResponse(target))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Endpoint == "" || req.ServiceKind == "" {
		s.writeError(w, http.StatusBadRequest, "name, endpoint, and service_kind are required")
		return
	}

	target := domain.Webhook{
		Name:        req.Name,
		Endpoint:    req.Endpoint,
		ServiceKind: req.ServiceKind,
		Active:      activeOrDefault(req.IsActive),
	}

	if _, err := s.catalog.CreateTarget(r.Context(), target); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			s.writeError(w, http.StatusBadRequest, "webhook name already exists")
			return
		}
		s.logError("create webhook", err)
		s.writeError(w, http.StatusInternalServerError, "create webhook failed")
		return
	}

	s.writeJSON(w, http.StatusCreated, statusResponse{Message: "webhook created", Success: true})
}

func (s *Server) handleGetWebhook(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	target, err := s.catalog.GetTarget(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, "get webhook", err)
		return
	}
	s.writeJSON(w, http.StatusOK, toWebhookResponse(target))
}

func (s *Server) handleUpdateWebhook(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IsActive == nil {
		s.writeJSON(w, http.StatusOK, statusResponse{Message: "nothing to update", Success: true})
		return
	}

	if err := s.catalog.SetTargetActive(r.Context(), id, *req.IsActive); err != nil {
		s.writeCatalogError(w, "update webhook", err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Message: "webhook updated", Success: true})
}

func (s *Server) handleDeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.catalog.DeleteTarget(r.Context(), id); err != nil {
		s.writeCatalogError(w, "delete webhook", err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Message: "webhook deleted", Success: true})
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) writeCatalogError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.logError(op, err)
	s.writeError(w, http.StatusInternalServerError, op+" failed")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logError("encode response", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, statusResponse{Message: message, Success: false})
}

func (s *Server) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, "error", err)
	}
}

func toSourceResponse(src domain.Source) sourceResponse {
	return sourceResponse{
		ID:               src.ID,
		Name:             src.Name,
		Kind:             src.Kind,
		BaseURL:          src.BaseURL,
		Avatar:           src.Avatar,
		Selector:         src.Selector,
		IsActive:         src.Active,
		NeedsTranslation: src.NeedsTranslation,
		TargetWebhookIDs: src.TargetWebhookIDs,
		CreatedAt:        src.CreatedAt,
	}
}

func toWebhookResponse(target domain.Webhook) webhookResponse {
	return webhookResponse{
		ID:          target.ID,
		Name:        target.Name,
		Endpoint:    target.Endpoint,
		ServiceKind: target.ServiceKind,
		IsActive:    target.Active,
		CreatedAt:   target.CreatedAt,
	}
}

func activeOrDefault(flag *bool) bool {
	if flag == nil {
		return true
	}
	return *flag
}
