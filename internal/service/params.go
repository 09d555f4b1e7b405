package service

import (
	"time"

	"cinerec/internal/models"
)

// AlgorithmWeights son los pesos fijos del blend híbrido. Trending tiene
// peso definido pero el blend no lo consume: el híbrido combina ambos
// colaborativos, contenido y popularidad, nada más.
type AlgorithmWeights struct {
	Collaborative float64
	ContentBased  float64
	Popularity    float64
	Trending      float64
}

// ContentWeights son los pesos de cada feature en la similitud
// perfil-película. Cada feature aporta solo si ambos lados tienen datos.
type ContentWeights struct {
	Genre    float64
	Director float64
	Cast     float64
	Rating   float64
}

// CacheTTLs por categoría de resultado.
type CacheTTLs struct {
	UserRecs       time.Duration // sets personalizados
	SimilarMovies  time.Duration // película-a-película
	UserSimilarity time.Duration // intermedios de usuarios similares
	Trending       time.Duration // popularidad / tendencia
}

// Params agrupa todos los pesos, umbrales y topes del motor en un valor
// inmutable que se pasa al construirlo. Nada de constantes sueltas:
// los tests pueden correr con otra configuración.
type Params struct {
	Weights        AlgorithmWeights
	Content        ContentWeights
	MinSimilarity  float64
	MinCommonItems int
	// rating mínimo para considerar una película "bien puntuada"
	HighRatingMin float64
	// corte de calidad del pool de candidatas de contenido
	ContentMinRating float64
	// corte de calidad del pool de popularidad
	PopularMinRating float64
	// divisor fijo para llevar popularidad/tendencia a escala 0-1
	PopularityNorm float64

	// topes de candidatos (una sola query acotada, sin paginar)
	MaxSimilarUsers      int
	TopSimilarUsers      int
	MaxSimilarMovies     int
	MaxContentCandidates int

	TrendingDays  int
	TrendingTypes []string

	TTL CacheTTLs
}

func DefaultParams() Params {
	return Params{
		Weights: AlgorithmWeights{
			Collaborative: 0.4,
			ContentBased:  0.3,
			Popularity:    0.2,
			Trending:      0.1,
		},
		Content: ContentWeights{
			Genre:    0.4,
			Director: 0.2,
			Cast:     0.25,
			Rating:   0.15,
		},
		MinSimilarity:  0.1,
		MinCommonItems: 3,

		HighRatingMin:    4.0,
		ContentMinRating: 6.0,
		PopularMinRating: 7.0,
		PopularityNorm:   100.0,

		MaxSimilarUsers:      20,
		TopSimilarUsers:      10,
		MaxSimilarMovies:     20,
		MaxContentCandidates: 1000,

		TrendingDays: 7,
		TrendingTypes: []string{
			models.InteractionView,
			models.InteractionLike,
			models.InteractionFavorite,
			models.InteractionRating,
		},

		TTL: CacheTTLs{
			UserRecs:       time.Hour,
			SimilarMovies:  24 * time.Hour,
			UserSimilarity: 2 * time.Hour,
			Trending:       30 * time.Minute,
		},
	}
}
