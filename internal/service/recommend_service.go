package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"cinerec/internal/cache"
	"cinerec/internal/models"
)

const (
	DefaultK = 10
	MaxK     = 50 // por seguridad, no deja pedir listas gigantes
)

// RecommendService es el motor de scoring: colaborativo por usuario y por
// ítem, contenido, tendencia, fallback de popularidad y blend híbrido.
// Todos los métodos públicos son totales: siempre devuelven una lista
// (posiblemente el fallback), nunca propagan el error al caller.
type RecommendService struct {
	interactions InteractionStore
	movies       MovieStore
	cache        cache.Cache
	params       Params
}

func NewRecommendService(i InteractionStore, m MovieStore, c cache.Cache, p Params) *RecommendService {
	return &RecommendService{
		interactions: i,
		movies:       m,
		cache:        c,
		params:       p,
	}
}

// ====== claves de cache ======
// Todo lo personalizado cuelga de rec:user:{id}: para poder invalidar
// con un solo patrón cuando entra una interacción nueva.

func userRecsKey(userID int, algo string, k int) string {
	return fmt.Sprintf("rec:user:%d:algo:%s:k:%d", userID, algo, k)
}

func similarUsersKey(userID int) string {
	return fmt.Sprintf("rec:user:%d:simusers", userID)
}

func userPattern(userID int) string {
	return fmt.Sprintf("rec:user:%d:*", userID)
}

func similarMoviesKey(movieID, k int) string {
	return fmt.Sprintf("rec:movie:%d:similar:k:%d", movieID, k)
}

func globalTrendingKey(k int) string {
	return fmt.Sprintf("rec:global:trending:k:%d", k)
}

func normalizeLimit(k int) int {
	if k <= 0 {
		return DefaultK
	}
	if k > MaxK {
		return MaxK
	}
	return k
}

// ====== dispatch por nombre de algoritmo ======

// Recommend delega al scorer que corresponde al nombre. Nombre
// desconocido cae a hybrid con un warning, sin error.
func (s *RecommendService) Recommend(ctx context.Context, userID int, algorithm string, limit int, refresh bool) []models.ScoredRec {
	switch algorithm {
	case models.AlgoCollaborative:
		return s.UserBasedRecommendations(ctx, userID, limit, refresh)
	case models.AlgoContentBased:
		return s.ContentBasedRecommendations(ctx, userID, limit, refresh)
	case models.AlgoTrending:
		return s.TrendingRecommendations(ctx, userID, limit, refresh)
	case models.AlgoHybrid, "":
		return s.HybridRecommendations(ctx, userID, limit, refresh)
	default:
		log.Printf("[recsvc] algoritmo desconocido %q, usando hybrid", algorithm)
		return s.HybridRecommendations(ctx, userID, limit, refresh)
	}
}

// ====== colaborativo basado en usuarios ======

func (s *RecommendService) UserBasedRecommendations(ctx context.Context, userID, limit int, refresh bool) []models.ScoredRec {
	limit = normalizeLimit(limit)
	key := userRecsKey(userID, models.AlgoUserCollaborative, limit)

	if !refresh {
		var cached []models.ScoredRec
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached
		}
	}

	recs, err := s.computeUserBased(ctx, userID, limit)
	if err != nil {
		log.Printf("[recsvc] user-based user %d: %v", userID, err)
		return s.PopularityRecommendations(ctx, limit)
	}
	if recs == nil {
		// usuario frío o sin vecinos útiles: fallback sin cachear
		return s.PopularityRecommendations(ctx, limit)
	}

	s.cacheSet(ctx, key, recs, s.params.TTL.UserRecs)
	return recs
}

func (s *RecommendService) computeUserBased(ctx context.Context, userID, limit int) ([]models.ScoredRec, error) {
	ratings, err := s.interactions.UserRatings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, nil
	}

	similar, err := s.similarUsers(ctx, userID, ratings)
	if err != nil {
		return nil, err
	}
	if len(similar) == 0 {
		return nil, nil
	}

	watched, err := s.interactions.WatchedMovieIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(similar) > s.params.TopSimilarUsers {
		similar = similar[:s.params.TopSimilarUsers]
	}

	// contribuciones por película: (rating/5) * similitud del vecino
	contributions := make(map[int][]float64)
	for _, su := range similar {
		highRated, err := s.interactions.UserHighRated(ctx, su.UserID, s.params.HighRatingMin)
		if err != nil {
			return nil, err
		}
		for movieID, rating := range highRated {
			if watched[movieID] {
				continue
			}
			contributions[movieID] = append(contributions[movieID], (rating/5.0)*su.Sim)
		}
	}

	recs := make([]models.ScoredRec, 0, len(contributions))
	for movieID, scores := range contributions {
		avg := mean(scores)
		// bonus de consenso entre vecinos, con techo en 1.0
		bonus := 1.0 + float64(len(scores)-1)*0.1
		recs = append(recs, models.ScoredRec{
			MovieID:             movieID,
			Score:               math.Min(1.0, avg*bonus),
			Algorithm:           models.AlgoUserCollaborative,
			RecommendationCount: len(scores),
		})
	}

	sortRecs(recs)
	return truncate(recs, limit), nil
}

// userSim es la similitud ya calculada contra un candidato.
type userSim struct {
	UserID int     `json:"userId"`
	Sim    float64 `json:"sim"`
}

// similarUsers filtra los candidatos del store por similitud coseno.
// El intermedio se cachea aparte (TTL más largo que el de las listas).
func (s *RecommendService) similarUsers(ctx context.Context, userID int, ratings map[int]float64) ([]userSim, error) {
	key := similarUsersKey(userID)
	var cached []userSim
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	candidates, err := s.interactions.SimilarUserCandidates(ctx, userID, s.params.MinCommonItems, s.params.MaxSimilarUsers)
	if err != nil {
		return nil, err
	}

	var out []userSim
	for _, candID := range candidates {
		other, err := s.interactions.UserRatings(ctx, candID)
		if err != nil {
			return nil, err
		}
		sim := CosineSimilarity(ratings, other, s.params.MinCommonItems)
		if sim > s.params.MinSimilarity {
			out = append(out, userSim{UserID: candID, Sim: sim})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Sim != out[j].Sim {
			return out[i].Sim > out[j].Sim
		}
		return out[i].UserID < out[j].UserID
	})

	s.cacheSet(ctx, key, out, s.params.TTL.UserSimilarity)
	return out, nil
}

// ====== colaborativo basado en ítems ======

func (s *RecommendService) ItemBasedRecommendations(ctx context.Context, userID, limit int, refresh bool) []models.ScoredRec {
	limit = normalizeLimit(limit)
	key := userRecsKey(userID, models.AlgoItemCollaborative, limit)

	if !refresh {
		var cached []models.ScoredRec
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached
		}
	}

	recs, err := s.computeItemBased(ctx, userID, limit)
	if err != nil {
		log.Printf("[recsvc] item-based user %d: %v", userID, err)
		return s.PopularityRecommendations(ctx, limit)
	}
	if recs == nil {
		return s.PopularityRecommendations(ctx, limit)
	}

	s.cacheSet(ctx, key, recs, s.params.TTL.UserRecs)
	return recs
}

func (s *RecommendService) computeItemBased(ctx context.Context, userID, limit int) ([]models.ScoredRec, error) {
	highRated, err := s.interactions.UserHighRated(ctx, userID, s.params.HighRatingMin)
	if err != nil {
		return nil, err
	}
	if len(highRated) == 0 {
		return nil, nil
	}

	watched, err := s.interactions.WatchedMovieIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	// contribución = overlap de géneros * (rating de la fuente / 5)
	contributions := make(map[int][]float64)
	for sourceID, rating := range highRated {
		source, err := s.movies.GetByID(ctx, sourceID)
		if err != nil {
			return nil, err
		}
		if source == nil {
			continue
		}

		similar, err := s.similarMoviesFor(ctx, source, s.params.MaxSimilarMovies)
		if err != nil {
			return nil, err
		}
		for _, sm := range similar {
			if watched[sm.MovieID] {
				continue
			}
			contributions[sm.MovieID] = append(contributions[sm.MovieID], sm.Score*(rating/5.0))
		}
	}

	// candidatas repetidas se agregan promediando
	recs := make([]models.ScoredRec, 0, len(contributions))
	for movieID, scores := range contributions {
		recs = append(recs, models.ScoredRec{
			MovieID:             movieID,
			Score:               mean(scores),
			Algorithm:           models.AlgoItemCollaborative,
			RecommendationCount: len(scores),
		})
	}

	sortRecs(recs)
	recs = truncate(recs, limit)
	return s.enrich(ctx, recs), nil
}

// ====== basado en contenido ======

func (s *RecommendService) ContentBasedRecommendations(ctx context.Context, userID, limit int, refresh bool) []models.ScoredRec {
	limit = normalizeLimit(limit)
	key := userRecsKey(userID, models.AlgoContentBased, limit)

	if !refresh {
		var cached []models.ScoredRec
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached
		}
	}

	recs, err := s.computeContentBased(ctx, userID, limit)
	if err != nil {
		log.Printf("[recsvc] content-based user %d: %v", userID, err)
		return s.PopularityRecommendations(ctx, limit)
	}
	if recs == nil {
		return s.PopularityRecommendations(ctx, limit)
	}

	s.cacheSet(ctx, key, recs, s.params.TTL.UserRecs)
	return recs
}

func (s *RecommendService) computeContentBased(ctx context.Context, userID, limit int) ([]models.ScoredRec, error) {
	profile := s.buildUserProfile(ctx, userID)
	if profile == nil {
		return nil, nil
	}

	watched, err := s.interactions.WatchedMovieIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	excludeIDs := make([]int, 0, len(watched))
	for id := range watched {
		excludeIDs = append(excludeIDs, id)
	}

	// pool acotado por performance, no por corrección
	candidates, err := s.movies.ContentCandidates(ctx, excludeIDs, s.params.ContentMinRating, s.params.MaxContentCandidates)
	if err != nil {
		return nil, err
	}

	recs := make([]models.ScoredRec, 0, limit)
	for i := range candidates {
		movie := &candidates[i]
		score := ContentSimilarity(s.params, profile, movie)
		if score > s.params.MinSimilarity {
			recs = append(recs, models.ScoredRec{
				MovieID:   movie.MovieID,
				Score:     score,
				Algorithm: models.AlgoContentBased,
				MovieData: movie.DisplayData(),
			})
		}
	}

	sortRecs(recs)
	return truncate(recs, limit), nil
}

// ====== tendencia ======

// TrendingRecommendations puntúa las películas con más interacciones
// recientes. Con userID > 0 excluye lo ya visto y, si hay perfil, mezcla
// 0.6*tendencia + 0.4*afinidad de contenido.
func (s *RecommendService) TrendingRecommendations(ctx context.Context, userID, limit int, refresh bool) []models.ScoredRec {
	limit = normalizeLimit(limit)
	key := globalTrendingKey(limit)
	if userID > 0 {
		key = userRecsKey(userID, models.AlgoTrending, limit)
	}

	if !refresh {
		var cached []models.ScoredRec
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached
		}
	}

	recs, err := s.computeTrending(ctx, userID, limit)
	if err != nil {
		log.Printf("[recsvc] trending user %d: %v", userID, err)
		return s.PopularityRecommendations(ctx, limit)
	}

	s.cacheSet(ctx, key, recs, s.params.TTL.Trending)
	return recs
}

func (s *RecommendService) computeTrending(ctx context.Context, userID, limit int) ([]models.ScoredRec, error) {
	// se piden limit*2 señales para tener margen tras filtrar vistas
	signals, err := s.interactions.Trending(ctx, s.params.TrendingDays, s.params.TrendingTypes, limit*2)
	if err != nil {
		return nil, err
	}

	watched := map[int]bool{}
	var profile *models.UserProfile
	if userID > 0 {
		watched, err = s.interactions.WatchedMovieIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		profile = s.buildUserProfile(ctx, userID)
	}

	movieIDs := make([]int, 0, len(signals))
	for _, sig := range signals {
		movieIDs = append(movieIDs, sig.MovieID)
	}
	moviesByID, err := s.movies.GetByIDs(ctx, movieIDs)
	if err != nil {
		return nil, err
	}

	algo := models.AlgoTrendingGlobal
	if userID > 0 {
		algo = models.AlgoTrendingPersonal
	}

	recs := make([]models.ScoredRec, 0, len(signals))
	for _, sig := range signals {
		if watched[sig.MovieID] {
			continue
		}
		movie, ok := moviesByID[sig.MovieID]
		if !ok {
			// película desaparecida del catálogo: se descarta el ítem
			continue
		}

		// 0.6 interacciones + 0.4 usuarios únicos, sobre la escala fija
		raw := float64(sig.InteractionCount)*0.6 + float64(sig.UniqueUsers)*0.4
		trendScore := math.Min(1.0, raw/s.params.PopularityNorm)

		score := trendScore
		if profile != nil {
			score = trendScore*0.6 + ContentSimilarity(s.params, profile, &movie)*0.4
		}

		recs = append(recs, models.ScoredRec{
			MovieID:   sig.MovieID,
			Score:     score,
			Algorithm: algo,
			MovieData: movie.DisplayData(),
		})
	}

	sortRecs(recs)
	return truncate(recs, limit), nil
}

// ====== híbrido ======

// HybridRecommendations combina user/item colaborativo, contenido y
// popularidad con pesos fijos más un bonus de consenso 1 + 0.1*(k-1).
// El score final no se re-clampa a [0,1]: con consenso fuerte puede
// superar 1.0.
func (s *RecommendService) HybridRecommendations(ctx context.Context, userID, limit int, refresh bool) []models.ScoredRec {
	limit = normalizeLimit(limit)
	key := userRecsKey(userID, models.AlgoHybrid, limit)

	if !refresh {
		var cached []models.ScoredRec
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached
		}
	}

	// cada scorer al doble del límite para tolerar pérdidas en el merge
	userRecs := s.UserBasedRecommendations(ctx, userID, limit*2, refresh)
	itemRecs := s.ItemBasedRecommendations(ctx, userID, limit*2, refresh)
	contentRecs := s.ContentBasedRecommendations(ctx, userID, limit*2, refresh)
	popularRecs := s.PopularityRecommendations(ctx, limit)

	type contribution struct {
		algo  string
		score float64
	}
	combined := make(map[int][]contribution)

	// ambos colaborativos comparten el mismo peso, solo difiere el tag
	for _, rec := range userRecs {
		combined[rec.MovieID] = append(combined[rec.MovieID], contribution{
			algo:  models.AlgoUserCollaborative,
			score: rec.Score * s.params.Weights.Collaborative,
		})
	}
	for _, rec := range itemRecs {
		combined[rec.MovieID] = append(combined[rec.MovieID], contribution{
			algo:  models.AlgoItemCollaborative,
			score: rec.Score * s.params.Weights.Collaborative,
		})
	}
	for _, rec := range contentRecs {
		combined[rec.MovieID] = append(combined[rec.MovieID], contribution{
			algo:  models.AlgoContentBased,
			score: rec.Score * s.params.Weights.ContentBased,
		})
	}
	for _, rec := range popularRecs {
		combined[rec.MovieID] = append(combined[rec.MovieID], contribution{
			algo:  models.AlgoPopularity,
			score: rec.Score * s.params.Weights.Popularity,
		})
	}

	final := make([]models.ScoredRec, 0, len(combined))
	for movieID, contribs := range combined {
		var total float64
		algos := make([]string, 0, len(contribs))
		for _, c := range contribs {
			total += c.score
			algos = append(algos, c.algo)
		}

		bonus := 1.0 + float64(len(contribs)-1)*0.1
		final = append(final, models.ScoredRec{
			MovieID:                movieID,
			Score:                  total * bonus,
			Algorithm:              models.AlgoHybrid,
			ContributingAlgorithms: algos,
			RecommendationCount:    len(contribs),
		})
	}

	sortRecs(final)
	final = truncate(final, limit)
	final = s.enrich(ctx, final)

	s.cacheSet(ctx, key, final, s.params.TTL.UserRecs)
	return final
}

// ====== popularidad (fallback compartido) ======

// PopularityRecommendations es el fallback común de todos los scorers:
// películas con rating TMDB >= 7 ordenadas por popularidad. El score se
// clampa a 1.0 (popularidad puede superar la escala de normalización).
func (s *RecommendService) PopularityRecommendations(ctx context.Context, limit int) []models.ScoredRec {
	limit = normalizeLimit(limit)

	popular, err := s.movies.Popular(ctx, s.params.PopularMinRating, limit)
	if err != nil {
		// sin catálogo no hay nada que devolver
		log.Printf("[recsvc] fallback de popularidad: %v", err)
		return []models.ScoredRec{}
	}

	recs := make([]models.ScoredRec, 0, len(popular))
	for i := range popular {
		movie := &popular[i]
		recs = append(recs, models.ScoredRec{
			MovieID:   movie.MovieID,
			Score:     math.Min(1.0, movie.PopularityScore/s.params.PopularityNorm),
			Algorithm: models.AlgoPopularityFallback,
			MovieData: movie.DisplayData(),
		})
	}
	return recs
}

// ====== similitud película-a-película ======

// SimilarMovies devuelve las películas más parecidas por contenido.
// A diferencia de los scorers personalizados, ante error devuelve lista
// vacía (no hay fallback que tenga sentido por película).
func (s *RecommendService) SimilarMovies(ctx context.Context, movieID, limit int, refresh bool) []models.ScoredRec {
	limit = normalizeLimit(limit)
	key := similarMoviesKey(movieID, limit)

	if !refresh {
		var cached []models.ScoredRec
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached
		}
	}

	source, err := s.movies.GetByID(ctx, movieID)
	if err != nil || source == nil {
		if err != nil {
			log.Printf("[recsvc] similar movies %d: %v", movieID, err)
		}
		return []models.ScoredRec{}
	}

	similar, err := s.similarMoviesFor(ctx, source, limit)
	if err != nil {
		log.Printf("[recsvc] similar movies %d: %v", movieID, err)
		return []models.ScoredRec{}
	}
	similar = s.enrich(ctx, similar)

	s.cacheSet(ctx, key, similar, s.params.TTL.SimilarMovies)
	return similar
}

// similarMoviesFor rankea candidatas del store por overlap de géneros.
func (s *RecommendService) similarMoviesFor(ctx context.Context, source *models.MovieDoc, limit int) ([]models.ScoredRec, error) {
	// se piden de más porque el ranking fino se hace acá
	candidates, err := s.movies.SimilarByGenres(ctx, source.MovieID, source.Genres, limit*3)
	if err != nil {
		return nil, err
	}

	recs := make([]models.ScoredRec, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		overlap := GenreOverlap(source.Genres, c.Genres)
		if overlap <= 0 {
			continue
		}
		recs = append(recs, models.ScoredRec{
			MovieID:   c.MovieID,
			Score:     overlap,
			Algorithm: models.AlgoContentSimilarity,
		})
	}

	sortRecs(recs)
	return truncate(recs, limit), nil
}

// ====== invalidación ======

// InvalidateUserCaches borra best-effort todas las entradas personalizadas
// del usuario. Nunca propaga el error: recalcular es aceptable, romper el
// write que disparó la invalidación no.
func (s *RecommendService) InvalidateUserCaches(ctx context.Context, userID int) {
	if err := s.cache.DeleteByPattern(ctx, userPattern(userID)); err != nil {
		log.Printf("[recsvc] invalidando cache de user %d: %v", userID, err)
	}
}

// ====== helpers ======

// enrich adjunta los datos de display en un solo fetch por lote.
// Las películas que ya no existen en el catálogo se descartan.
func (s *RecommendService) enrich(ctx context.Context, recs []models.ScoredRec) []models.ScoredRec {
	ids := make([]int, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.MovieID)
	}

	moviesByID, err := s.movies.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("[recsvc] enriqueciendo recomendaciones: %v", err)
		return recs
	}

	out := make([]models.ScoredRec, 0, len(recs))
	for _, rec := range recs {
		movie, ok := moviesByID[rec.MovieID]
		if !ok {
			continue
		}
		rec.MovieData = movie.DisplayData()
		out = append(out, rec)
	}
	return out
}

func (s *RecommendService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := s.cache.SetJSON(ctx, key, value, ttl); err != nil {
		log.Printf("[recsvc] error cacheando %s: %v", key, err)
	}
}

// sortRecs ordena por score descendente con desempate estable por
// movieId, para que dos corridas sobre el mismo snapshot devuelvan
// exactamente lo mismo.
func sortRecs(recs []models.ScoredRec) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].MovieID < recs[j].MovieID
	})
}

func truncate(recs []models.ScoredRec, limit int) []models.ScoredRec {
	if len(recs) > limit {
		return recs[:limit]
	}
	return recs
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
