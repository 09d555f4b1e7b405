package repository

import (
	"context"
	"math"
	"time"

	"cinerec/internal/db"
	"cinerec/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tolerancia para no reescribir scores que casi no cambiaron
const scoreUpdateTolerance = 0.01

type RecommendationRepository struct {
	col *mongo.Collection
}

func NewRecommendationRepository() *RecommendationRepository {
	return &RecommendationRepository{
		col: db.DB().Collection("user_recommendations"),
	}
}

// Upsert inserta o actualiza por clave (userId, movieId, algorithm).
// Si ya existe, solo pisa el score cuando el delta supera la tolerancia;
// el flag clicked y generatedAt del documento original se conservan.
func (r *RecommendationRepository) Upsert(ctx context.Context, userID, movieID int, algorithm string, score float64) error {
	filter := bson.M{
		"userId":    userID,
		"movieId":   movieID,
		"algorithm": algorithm,
	}

	var existing models.UserRecommendationDoc
	err := r.col.FindOne(ctx, filter).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		_, err := r.col.InsertOne(ctx, &models.UserRecommendationDoc{
			UserID:      userID,
			MovieID:     movieID,
			Algorithm:   algorithm,
			Score:       score,
			GeneratedAt: time.Now(),
			Clicked:     false,
		})
		return err
	}
	if err != nil {
		return err
	}

	if math.Abs(existing.Score-score) <= scoreUpdateTolerance {
		return nil
	}

	_, err = r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"score": score}})
	return err
}

// MarkClicked marca la recomendación como clickeada. El algoritmo es
// opcional: si viene vacío matchea cualquiera.
func (r *RecommendationRepository) MarkClicked(ctx context.Context, userID, movieID int, algorithm string) error {
	filter := bson.M{"userId": userID, "movieId": movieID}
	if algorithm != "" {
		filter["algorithm"] = algorithm
	}

	now := time.Now()
	_, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"clicked":   true,
		"clickedAt": now,
	}})
	return err
}

func (r *RecommendationRepository) FindByUser(ctx context.Context, userID int, limit int64) ([]models.UserRecommendationDoc, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}, {Key: "generatedAt", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.UserRecommendationDoc
	for cur.Next(ctx) {
		var rec models.UserRecommendationDoc
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, cur.Err()
}

// Algorithms lista los algoritmos con recomendaciones persistidas.
func (r *RecommendationRepository) Algorithms(ctx context.Context) ([]string, error) {
	vals, err := r.col.Distinct(ctx, "algorithm", bson.M{})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Performance calcula el CTR y score promedio de un algoritmo sobre las
// recomendaciones generadas en los últimos `days` días.
func (r *RecommendationRepository) Performance(ctx context.Context, algorithm string, days int) (*models.AlgorithmPerformance, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	filter := bson.M{
		"algorithm":   algorithm,
		"generatedAt": bson.M{"$gte": cutoff},
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	clickedFilter := bson.M{
		"algorithm":   algorithm,
		"generatedAt": bson.M{"$gte": cutoff},
		"clicked":     true,
	}
	clicked, err := r.col.CountDocuments(ctx, clickedFilter)
	if err != nil {
		return nil, err
	}

	var avgScore float64
	if total > 0 {
		cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
			{{Key: "$match", Value: filter}},
			{{Key: "$group", Value: bson.M{
				"_id":      nil,
				"avgScore": bson.M{"$avg": "$score"},
			}}},
		})
		if err != nil {
			return nil, err
		}
		defer cur.Close(ctx)

		if cur.Next(ctx) {
			var row struct {
				AvgScore float64 `bson:"avgScore"`
			}
			if err := cur.Decode(&row); err != nil {
				return nil, err
			}
			avgScore = row.AvgScore
		}
		if err := cur.Err(); err != nil {
			return nil, err
		}
	}

	perf := &models.AlgorithmPerformance{
		Algorithm:    algorithm,
		TotalRecs:    total,
		ClickedRecs:  clicked,
		AverageScore: math.Round(avgScore*100) / 100,
		PeriodDays:   days,
	}
	if total > 0 {
		perf.ClickThroughRate = math.Round(float64(clicked)/float64(total)*100*100) / 100
	}
	return perf, nil
}

// CleanupOld borra recomendaciones viejas nunca clickeadas.
func (r *RecommendationRepository) CleanupOld(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	res, err := r.col.DeleteMany(ctx, bson.M{
		"generatedAt": bson.M{"$lt": cutoff},
		"clicked":     false,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
