package service

import (
	"context"
	"time"

	"cinerec/internal/models"
)

// Contratos de datos que consume el motor. Los implementan los
// repositorios Mongo; los tests usan fakes en memoria.

type InteractionStore interface {
	Insert(ctx context.Context, it *models.InteractionDoc) error
	// movieId -> rating (puede venir vacío)
	UserRatings(ctx context.Context, userID int) (map[int]float64, error)
	UserHighRated(ctx context.Context, userID int, min float64) (map[int]float64, error)
	// set de películas con cualquier interacción del usuario
	WatchedMovieIDs(ctx context.Context, userID int) (map[int]bool, error)
	PositiveInteractions(ctx context.Context, userID int) ([]models.InteractionDoc, error)
	// candidatos a usuarios similares, acotado por limit
	SimilarUserCandidates(ctx context.Context, userID, minCommon, limit int) ([]int, error)
	// ranking de géneros del usuario, acotado por limit
	PreferredGenres(ctx context.Context, userID, limit int) ([]string, error)
	Trending(ctx context.Context, days int, types []string, limit int) ([]models.TrendingSignal, error)
}

type MovieStore interface {
	GetByID(ctx context.Context, movieID int) (*models.MovieDoc, error)
	// lote en una sola query; ids inexistentes no aparecen en el mapa
	GetByIDs(ctx context.Context, movieIDs []int) (map[int]models.MovieDoc, error)
	Popular(ctx context.Context, minRating float64, limit int) ([]models.MovieDoc, error)
	ContentCandidates(ctx context.Context, excludeIDs []int, minRating float64, limit int) ([]models.MovieDoc, error)
	SimilarByGenres(ctx context.Context, sourceID int, genres []string, limit int) ([]models.MovieDoc, error)
}

type RecommendationStore interface {
	Upsert(ctx context.Context, userID, movieID int, algorithm string, score float64) error
	MarkClicked(ctx context.Context, userID, movieID int, algorithm string) error
	FindByUser(ctx context.Context, userID int, limit int64) ([]models.UserRecommendationDoc, error)
	Algorithms(ctx context.Context) ([]string, error)
	Performance(ctx context.Context, algorithm string, days int) (*models.AlgorithmPerformance, error)
	CleanupOld(ctx context.Context, days int) (int64, error)
}

type ExperimentStore interface {
	Active(ctx context.Context, now time.Time) (*models.ExperimentDoc, error)
	Insert(ctx context.Context, exp *models.ExperimentDoc) error
	List(ctx context.Context, limit int64) ([]models.ExperimentDoc, error)
}
