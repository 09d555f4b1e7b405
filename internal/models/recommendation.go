package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Etiquetas de algoritmo. Las cuatro primeras son las que puede asignar
// un experimento; el resto son tags internos de cada scorer.
const (
	AlgoCollaborative = "collaborative"
	AlgoContentBased  = "content_based"
	AlgoHybrid        = "hybrid"
	AlgoTrending      = "trending"

	AlgoUserCollaborative  = "user_collaborative"
	AlgoItemCollaborative  = "item_collaborative"
	AlgoPopularity         = "popularity"
	AlgoPopularityFallback = "popularity_fallback"
	AlgoTrendingPersonal   = "trending_personalized"
	AlgoTrendingGlobal     = "trending_global"
	AlgoContentSimilarity  = "content_similarity"
)

// ScoredRec es una recomendación puntuada, transitoria hasta que el
// dispatcher de experimentos decida persistirla.
type ScoredRec struct {
	MovieID int     `json:"movieId" bson:"movieId"`
	Score   float64 `json:"score" bson:"score"`
	// tag del scorer que la produjo
	Algorithm string `json:"algorithm" bson:"algorithm"`
	// solo para hybrid: qué scorers aportaron
	ContributingAlgorithms []string `json:"contributingAlgorithms,omitempty" bson:"contributingAlgorithms,omitempty"`
	// cuántas contribuciones se agregaron en este score
	RecommendationCount int        `json:"recommendationCount,omitempty" bson:"recommendationCount,omitempty"`
	MovieData           *MovieData `json:"movieData,omitempty" bson:"movieData,omitempty"`
}

// UserRecommendationDoc es la recomendación persistida (colección
// "user_recommendations"), con clave lógica (userId, movieId, algorithm).
type UserRecommendationDoc struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      int                `json:"userId" bson:"userId"`
	MovieID     int                `json:"movieId" bson:"movieId"`
	Algorithm   string             `json:"algorithm" bson:"algorithm"`
	Score       float64            `json:"score" bson:"score"`
	GeneratedAt time.Time          `json:"generatedAt" bson:"generatedAt"`
	Clicked     bool               `json:"clicked" bson:"clicked"`
	ClickedAt   *time.Time         `json:"clickedAt,omitempty" bson:"clickedAt,omitempty"`
}

// AlgorithmPerformance es el reporte de analítica de un algoritmo
// (CTR sobre recomendaciones generadas en la ventana).
type AlgorithmPerformance struct {
	Algorithm        string  `json:"algorithm"`
	TotalRecs        int64   `json:"totalRecommendations"`
	ClickedRecs      int64   `json:"clickedRecommendations"`
	ClickThroughRate float64 `json:"clickThroughRate"`
	AverageScore     float64 `json:"averageScore"`
	PeriodDays       int     `json:"periodDays"`
}
