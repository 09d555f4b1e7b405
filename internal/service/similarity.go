package service

import (
	"math"

	"cinerec/internal/models"
)

// CosineSimilarity calcula el coseno entre dos vectores de ratings
// (movieId -> rating) sobre su soporte común. Si las películas en común
// son menos que minCommon, o alguna norma es cero, devuelve 0.0 (piso
// duro, no se saltea). Función pura y determinística.
func CosineSimilarity(a, b map[int]float64, minCommon int) float64 {
	var dot, normA, normB float64
	common := 0

	for movieID, ra := range a {
		rb, ok := b[movieID]
		if !ok {
			continue
		}
		common++
		dot += ra * rb
		normA += ra * ra
		normB += rb * rb
	}

	if common < minCommon {
		return 0.0
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// GenreOverlap es el overlap de Jaccard entre dos listas de géneros:
// |A∩B| / |A∪B|. Devuelve 0 si alguna viene vacía.
func GenreOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	setA := make(map[string]bool, len(a))
	for _, g := range a {
		setA[g] = true
	}

	union := len(setA)
	inter := 0
	seenB := make(map[string]bool, len(b))
	for _, g := range b {
		if seenB[g] {
			continue
		}
		seenB[g] = true
		if setA[g] {
			inter++
		} else {
			union++
		}
	}

	return float64(inter) / float64(union)
}

// ContentSimilarity puntúa qué tan bien calza una película con el perfil
// del usuario. Suma ponderada normalizada por los pesos efectivamente
// aplicados: una feature solo aporta si perfil y película tienen datos.
// Sin ninguna feature aplicable devuelve 0.5 (prior neutro, típico de
// película fría). Resultado siempre en [0,1].
func ContentSimilarity(p Params, profile *models.UserProfile, movie *models.MovieDoc) float64 {
	if profile == nil {
		return 0.5
	}

	var score, weightSum float64

	// géneros
	if len(profile.PreferredGenres) > 0 && len(movie.Genres) > 0 {
		score += GenreOverlap(profile.PreferredGenres, movie.Genres) * p.Content.Genre
		weightSum += p.Content.Genre
	}

	// director: aplica solo si el director está en el perfil
	if movie.Director != "" {
		if w, ok := profile.PreferredDirectors[movie.Director]; ok {
			score += math.Min(1.0, w/10.0) * p.Content.Director
			weightSum += p.Content.Director
		}
	}

	// cast: suma de afinidades por actor, promediada sobre el cast
	if len(profile.PreferredActors) > 0 && len(movie.Cast) > 0 {
		var castScore float64
		for _, actor := range movie.Cast {
			if w, ok := profile.PreferredActors[actor]; ok {
				castScore += math.Min(1.0, w/10.0)
			}
		}
		castSim := math.Min(1.0, castScore/float64(len(movie.Cast)))
		score += castSim * p.Content.Cast
		weightSum += p.Content.Cast
	}

	// compatibilidad de rating: cercanía al promedio del usuario
	if movie.TMDBRating != nil {
		diff := math.Abs(*movie.TMDBRating - profile.AvgRating)
		ratingSim := math.Max(0.0, 1.0-diff/5.0)
		score += ratingSim * p.Content.Rating
		weightSum += p.Content.Rating
	}

	if weightSum == 0 {
		return 0.5
	}
	return clamp01(score / weightSum)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
