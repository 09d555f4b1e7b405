package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"cinerec/internal/models"
)

// topes del perfil: cuántos directores/actores/idiomas se retienen
const (
	profileGenreLimit    = 10
	profileDirectorLimit = 10
	profileActorLimit    = 15
	profileLanguageLimit = 5
	// solo los primeros actores del cast cuentan para el perfil
	profileCastDepth = 3
)

// buildUserProfile arma el perfil de preferencias del usuario a partir de
// su historial. Devuelve nil para usuarios fríos (sin interacciones) y
// también ante cualquier error interno: el caller trata ambos casos igual
// y cae al scoring no personalizado.
func (s *RecommendService) buildUserProfile(ctx context.Context, userID int) *models.UserProfile {
	profile, err := s.computeUserProfile(ctx, userID)
	if err != nil {
		log.Printf("[recsvc] error armando perfil de user %d: %v", userID, err)
		return nil
	}
	return profile
}

func (s *RecommendService) computeUserProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	ratings, err := s.interactions.UserRatings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ratings: %w", err)
	}

	positives, err := s.interactions.PositiveInteractions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("interacciones positivas: %w", err)
	}

	preferredGenres, err := s.interactions.PreferredGenres(ctx, userID, profileGenreLimit)
	if err != nil {
		return nil, fmt.Errorf("géneros preferidos: %w", err)
	}

	// usuario frío: nada con qué personalizar
	if len(ratings) == 0 && len(positives) == 0 && len(preferredGenres) == 0 {
		return nil, nil
	}

	avgRating := 3.0
	if len(ratings) > 0 {
		var sum float64
		for _, r := range ratings {
			sum += r
		}
		avgRating = sum / float64(len(ratings))
	}

	// batch: todas las películas de las interacciones positivas de una vez
	movieIDs := make([]int, 0, len(positives))
	seen := make(map[int]bool, len(positives))
	for _, it := range positives {
		if !seen[it.MovieID] {
			seen[it.MovieID] = true
			movieIDs = append(movieIDs, it.MovieID)
		}
	}
	moviesByID, err := s.movies.GetByIDs(ctx, movieIDs)
	if err != nil {
		return nil, fmt.Errorf("películas del perfil: %w", err)
	}

	directors := make(map[string]float64)
	actors := make(map[string]float64)
	languages := make(map[string]float64)

	for _, it := range positives {
		movie, ok := moviesByID[it.MovieID]
		if !ok {
			continue
		}
		w := it.EngagementWeight()

		if movie.Director != "" {
			directors[movie.Director] += w
		}
		cast := movie.Cast
		if len(cast) > profileCastDepth {
			cast = cast[:profileCastDepth]
		}
		for _, actor := range cast {
			actors[actor] += w
		}
		if movie.Language != "" {
			languages[movie.Language] += w
		}
	}

	genreWeights := make(map[string]float64, len(preferredGenres))
	for _, g := range preferredGenres {
		// peso plano por ahora; el ranking ya viene del agregado de
		// engagement, refinar el peso individual queda pendiente
		genreWeights[g] = 1.0
	}

	return &models.UserProfile{
		PreferredGenres:    preferredGenres,
		GenreWeights:       genreWeights,
		PreferredDirectors: topNWeights(directors, profileDirectorLimit),
		PreferredActors:    topNWeights(actors, profileActorLimit),
		PreferredLanguages: topNWeights(languages, profileLanguageLimit),
		AvgRating:          avgRating,
		TotalRatings:       len(ratings),
		RatingDistribution: ratingDistribution(ratings),
	}, nil
}

// ratingDistribution bucketiza los ratings a entero y devuelve la
// fracción de cada bucket sobre el total.
func ratingDistribution(ratings map[int]float64) map[string]float64 {
	if len(ratings) == 0 {
		return map[string]float64{}
	}

	counts := make(map[int]int)
	for _, r := range ratings {
		counts[int(r)]++
	}

	total := float64(len(ratings))
	out := make(map[string]float64, len(counts))
	for bucket, n := range counts {
		out[fmt.Sprintf("%d", bucket)] = float64(n) / total
	}
	return out
}

// topNWeights recorta un mapa de pesos a sus n claves más pesadas.
func topNWeights(weights map[string]float64, n int) map[string]float64 {
	if len(weights) <= n {
		return weights
	}

	type kw struct {
		key    string
		weight float64
	}
	ranked := make([]kw, 0, len(weights))
	for k, w := range weights {
		ranked = append(ranked, kw{k, w})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].key < ranked[j].key
	})

	out := make(map[string]float64, n)
	for _, e := range ranked[:n] {
		out[e.key] = e.weight
	}
	return out
}
