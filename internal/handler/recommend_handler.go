package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"cinerec/internal/models"
	"cinerec/internal/service"
)

type RecommendHandler struct {
	recSvc *service.RecommendService
	expSvc *service.ExperimentService
}

func NewRecommendHandler(r *service.RecommendService, e *service.ExperimentService) *RecommendHandler {
	return &RecommendHandler{recSvc: r, expSvc: e}
}

// @Summary Recomendaciones del usuario autenticado
// @Description Sin query algo usa el experimento A/B activo (o hybrid).
// @Tags recommend
// @Produce json
// @Security BearerAuth
// @Param algo query string false "hybrid | collaborative | content_based | trending"
// @Param k query int false "cantidad de recomendaciones (máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} map[string]any
// @Router /me/recommendations [get]
func (h *RecommendHandler) MyRecommendations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())
	h.respond(w, r, userID)
}

// @Summary Recomendaciones para un usuario (admin)
// @Tags recommend
// @Produce json
// @Security BearerAuth
// @Param id path int true "userId"
// @Param algo query string false "algoritmo"
// @Param k query int false "cantidad de recomendaciones (máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} map[string]any
// @Router /users/{id}/recommendations [get]
func (h *RecommendHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	h.respond(w, r, userID)
}

func (h *RecommendHandler) respond(w http.ResponseWriter, r *http.Request, userID int) {
	algo := r.URL.Query().Get("algo")
	k := queryInt(r, "k", 0)
	refresh := queryBool(r, "refresh")

	var items []models.ScoredRec
	used := algo
	if algo == "" {
		used, items = h.expSvc.RecommendForUser(r.Context(), userID, k, refresh)
	} else {
		items = h.recSvc.Recommend(r.Context(), userID, algo, k, refresh)
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"userId":    userID,
		"algorithm": used,
		"items":     items,
	})
}

// upgrader global (no afecta a swagger)
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Recomendaciones en tiempo real (WebSocket)
// @Tags recommend
// @Produce json
// @Param id path int true "userId"
// @Param algo query string false "algoritmo"
// @Param k query int false "cantidad de recomendaciones (máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} map[string]interface{}
// @Router /users/{id}/ws/recommendations [get]
func (h *RecommendHandler) GetRecommendationsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "No se pudo abrir WebSocket", 400)
		return
	}
	defer conn.Close()

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	algo := r.URL.Query().Get("algo")
	k := queryInt(r, "k", 0)
	refresh := queryBool(r, "refresh")

	// Mensaje inicial
	conn.WriteJSON(map[string]any{
		"type": "start",
		"msg":  "Conexión WS abierta, iniciando cálculo…",
	})

	used := algo
	var items []models.ScoredRec
	if algo == "" {
		used, items = h.expSvc.RecommendForUser(r.Context(), userID, k, refresh)
	} else {
		items = h.recSvc.Recommend(r.Context(), userID, algo, k, refresh)
	}

	conn.WriteJSON(map[string]any{
		"type":        "recommendations",
		"userId":      userID,
		"algorithm":   used,
		"items":       items,
		"generatedAt": time.Now(),
	})
}

// @Summary Peliculas similares por genero
// @Tags recommend
// @Produce json
// @Param id path int true "movieId"
// @Param k query int false "cantidad (máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {array} models.ScoredRec
// @Router /movies/{id}/similar [get]
func (h *RecommendHandler) SimilarMovies(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	movieID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid movie id", http.StatusBadRequest)
		return
	}
	k := queryInt(r, "k", 0)
	refresh := queryBool(r, "refresh")

	items := h.recSvc.SimilarMovies(r.Context(), movieID, k, refresh)
	_ = json.NewEncoder(w).Encode(items)
}

// @Summary Trending global
// @Tags recommend
// @Produce json
// @Param k query int false "cantidad (máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {array} models.ScoredRec
// @Router /trending [get]
func (h *RecommendHandler) Trending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	k := queryInt(r, "k", 0)
	refresh := queryBool(r, "refresh")

	// userID 0 = sin perfil, trending global puro
	items := h.recSvc.TrendingRecommendations(r.Context(), 0, k, refresh)
	_ = json.NewEncoder(w).Encode(items)
}
