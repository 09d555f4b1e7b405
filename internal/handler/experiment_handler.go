package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"cinerec/internal/models"
	"cinerec/internal/service"
)

type ExperimentHandler struct {
	svc *service.ExperimentService
}

func NewExperimentHandler(s *service.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{svc: s}
}

type experimentRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	AlgorithmA   string  `json:"algorithmA"`
	AlgorithmB   string  `json:"algorithmB"`
	TrafficSplit float64 `json:"trafficSplit"`
	DurationDays int     `json:"durationDays"`
}

// @Summary Crear experimento A/B
// @Tags experiments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body experimentRequest true "experimento"
// @Success 201 {object} models.ExperimentDoc
// @Failure 400 {object} map[string]string
// @Router /admin/experiments [post]
func (h *ExperimentHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req experimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	days := req.DurationDays
	if days <= 0 {
		days = 14
	}
	now := time.Now()
	exp := &models.ExperimentDoc{
		Name:         req.Name,
		Description:  req.Description,
		AlgorithmA:   req.AlgorithmA,
		AlgorithmB:   req.AlgorithmB,
		TrafficSplit: req.TrafficSplit,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, days),
		IsActive:     true,
		CreatedAt:    now,
	}

	if err := h.svc.CreateExperiment(r.Context(), exp); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(exp)
}

// @Summary Listar experimentos
// @Tags experiments
// @Produce json
// @Security BearerAuth
// @Param limit query int false "max resultados"
// @Success 200 {array} models.ExperimentDoc
// @Router /admin/experiments [get]
func (h *ExperimentHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit := int64(queryInt(r, "limit", 50))
	exps, err := h.svc.ListExperiments(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(exps)
}

// @Summary Performance por algoritmo
// @Description CTR y score promedio de las recomendaciones servidas.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param algo query string false "algoritmo (vacio = todos)"
// @Param days query int false "ventana en dias (default 30)"
// @Success 200 {object} map[string]models.AlgorithmPerformance
// @Router /admin/analytics/performance [get]
func (h *ExperimentHandler) Performance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	algo := r.URL.Query().Get("algo")
	days := queryInt(r, "days", 30)

	perf, err := h.svc.Performance(r.Context(), algo, days)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(perf)
}

// @Summary Limpiar recomendaciones viejas
// @Description Borra recomendaciones no clickeadas con mas de N dias.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param days query int false "antiguedad minima en dias (default 30)"
// @Success 200 {object} map[string]any
// @Router /admin/analytics/cleanup [post]
func (h *ExperimentHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	days := queryInt(r, "days", 30)
	deleted, err := h.svc.Cleanup(r.Context(), days)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"deleted": deleted, "days": days})
}

// @Summary Historial de recomendaciones del usuario
// @Tags recommend
// @Produce json
// @Security BearerAuth
// @Param limit query int false "max resultados"
// @Success 200 {array} models.UserRecommendationDoc
// @Router /me/recommendations/history [get]
func (h *ExperimentHandler) History(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())
	limit := int64(queryInt(r, "limit", 100))

	hist, err := h.svc.History(r.Context(), userID, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(hist)
}
