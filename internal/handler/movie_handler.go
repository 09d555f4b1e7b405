package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cinerec/internal/models"
	"cinerec/internal/service"
)

type MovieHandler struct {
	svc *service.MovieService
}

func NewMovieHandler(s *service.MovieService) *MovieHandler {
	return &MovieHandler{svc: s}
}

// queryInt lee un query param entero con default.
func queryInt(r *http.Request, name string, def int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}

func queryBool(r *http.Request, name string) bool {
	return r.URL.Query().Get(name) == "true"
}

// @Summary Detalle de pelicula
// @Tags movies
// @Produce json
// @Param id path int true "movieId"
// @Success 200 {object} models.MovieData
// @Failure 404 {object} map[string]string
// @Router /movies/{id} [get]
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid movie id", http.StatusBadRequest)
		return
	}

	movie, err := h.svc.GetMovie(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if movie == nil {
		http.Error(w, "movie not found", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(movie.DisplayData())
}

// @Summary Buscar peliculas
// @Tags movies
// @Produce json
// @Param q query string false "texto"
// @Param genre query string false "genero"
// @Param yearFrom query int false "anio desde"
// @Param yearTo query int false "anio hasta"
// @Param limit query int false "max resultados"
// @Param offset query int false "offset"
// @Success 200 {array} models.MovieData
// @Router /movies/search [get]
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	q := r.URL.Query().Get("q")
	genre := r.URL.Query().Get("genre")
	yearFrom := queryInt(r, "yearFrom", 0)
	yearTo := queryInt(r, "yearTo", 0)
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	movies, err := h.svc.Search(r.Context(), q, genre, yearFrom, yearTo, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(toMovieList(movies))
}

// @Summary Top de peliculas por metrica
// @Tags movies
// @Produce json
// @Param by query string false "popularity | rating"
// @Param limit query int false "max resultados"
// @Success 200 {array} models.MovieData
// @Router /movies/top [get]
func (h *MovieHandler) Top(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	metric := r.URL.Query().Get("by")
	if metric == "" {
		metric = "popularity"
	}
	limit := queryInt(r, "limit", 20)

	movies, err := h.svc.Top(r.Context(), metric, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	_ = json.NewEncoder(w).Encode(toMovieList(movies))
}

func toMovieList(movies []models.MovieDoc) []*models.MovieData {
	out := make([]*models.MovieData, 0, len(movies))
	for i := range movies {
		out = append(out, movies[i].DisplayData())
	}
	return out
}
