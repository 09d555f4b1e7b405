package repository

import (
	"context"
	"time"

	"cinerec/internal/db"
	"cinerec/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ExperimentRepository struct {
	col *mongo.Collection
}

func NewExperimentRepository() *ExperimentRepository {
	return &ExperimentRepository{col: db.DB().Collection("experiments")}
}

// Active devuelve el experimento activo dentro de su ventana de fechas,
// o nil si no hay ninguno. Con más de uno activo gana el primero según
// el orden natural de Mongo.
func (r *ExperimentRepository) Active(ctx context.Context, now time.Time) (*models.ExperimentDoc, error) {
	var exp models.ExperimentDoc
	err := r.col.FindOne(ctx, bson.M{
		"isActive":  true,
		"startDate": bson.M{"$lte": now},
		"endDate":   bson.M{"$gte": now},
	}).Decode(&exp)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

func (r *ExperimentRepository) Insert(ctx context.Context, exp *models.ExperimentDoc) error {
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, exp)
	return err
}

func (r *ExperimentRepository) List(ctx context.Context, limit int64) ([]models.ExperimentDoc, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ExperimentDoc
	for cur.Next(ctx) {
		var exp models.ExperimentDoc
		if err := cur.Decode(&exp); err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, cur.Err()
}
