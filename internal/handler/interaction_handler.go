package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"cinerec/internal/models"
	"cinerec/internal/service"
)

type InteractionHandler struct {
	svc *service.InteractionService
}

func NewInteractionHandler(s *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{svc: s}
}

type interactionRequest struct {
	MovieID  int            `json:"movieId"`
	Type     string         `json:"type"`
	Rating   *float64       `json:"rating,omitempty"`
	Source   string         `json:"source,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// @Summary Registrar interaccion
// @Description Guarda view/like/dislike/click/rating/favorite/watchlist e invalida cache.
// @Tags interactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body interactionRequest true "interaccion"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /me/interactions [post]
func (h *InteractionHandler) Record(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	it := &models.InteractionDoc{
		UserID:    UserIDFromContext(r.Context()),
		MovieID:   req.MovieID,
		Type:      req.Type,
		Rating:    req.Rating,
		Source:    req.Source,
		Metadata:  req.Metadata,
		Timestamp: time.Now().Unix(),
	}

	if err := h.svc.Record(r.Context(), it); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"userId":  it.UserID,
		"movieId": it.MovieID,
		"type":    it.Type,
		"ok":      true,
	})
}
