package repository

import (
	"context"

	"cinerec/internal/db"
	"cinerec/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MovieRepository struct {
	col *mongo.Collection
}

func NewMovieRepository() *MovieRepository {
	return &MovieRepository{col: db.DB().Collection("movies")}
}

func (r *MovieRepository) GetByID(ctx context.Context, movieID int) (*models.MovieDoc, error) {
	var m models.MovieDoc
	err := r.col.FindOne(ctx, bson.M{"movieId": movieID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &m, err
}

// GetByIDs trae un lote de películas en un solo Find. Las que no existen
// simplemente no aparecen en el mapa (el caller las descarta).
func (r *MovieRepository) GetByIDs(ctx context.Context, movieIDs []int) (map[int]models.MovieDoc, error) {
	if len(movieIDs) == 0 {
		return map[int]models.MovieDoc{}, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"movieId": bson.M{"$in": movieIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[int]models.MovieDoc, len(movieIDs))
	for cur.Next(ctx) {
		var m models.MovieDoc
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out[m.MovieID] = m
	}
	return out, cur.Err()
}

func (r *MovieRepository) Search(
	ctx context.Context,
	q string,
	genre string,
	yearFrom, yearTo int,
	limit, offset int,
) ([]models.MovieDoc, error) {

	filter := bson.M{}

	if q != "" {
		filter["title"] = bson.M{"$regex": q, "$options": "i"}
	}
	if genre != "" {
		// genres es un array, esto busca que lo contenga
		filter["genres"] = genre
	}
	if yearFrom > 0 || yearTo > 0 {
		yearCond := bson.M{}
		if yearFrom > 0 {
			yearCond["$gte"] = yearFrom
		}
		if yearTo > 0 {
			yearCond["$lte"] = yearTo
		}
		filter["year"] = yearCond
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	return r.findMovies(ctx, filter, opts)
}

// Top por popularidad o por rating TMDB.
func (r *MovieRepository) Top(ctx context.Context, metric string, limit int) ([]models.MovieDoc, error) {
	sortField := "popularityScore"
	if metric == "rating" {
		sortField = "tmdbRating"
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}}).
		SetLimit(int64(limit))

	return r.findMovies(ctx, bson.M{}, opts)
}

// Popular es el pool del fallback de popularidad: rating TMDB >= minRating,
// ordenado por popularityScore desc y tmdbRating desc.
func (r *MovieRepository) Popular(ctx context.Context, minRating float64, limit int) ([]models.MovieDoc, error) {
	opts := options.Find().
		SetSort(bson.D{
			{Key: "popularityScore", Value: -1},
			{Key: "tmdbRating", Value: -1},
			{Key: "movieId", Value: 1},
		}).
		SetLimit(int64(limit))

	return r.findMovies(ctx, bson.M{"tmdbRating": bson.M{"$gte": minRating}}, opts)
}

// ContentCandidates es el pool acotado del scorer de contenido: películas
// no vistas con rating decente, las `limit` más populares. Una sola query,
// nada de paginar ni de N+1.
func (r *MovieRepository) ContentCandidates(ctx context.Context, excludeIDs []int, minRating float64, limit int) ([]models.MovieDoc, error) {
	filter := bson.M{"tmdbRating": bson.M{"$gte": minRating}}
	if len(excludeIDs) > 0 {
		filter["movieId"] = bson.M{"$nin": excludeIDs}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "popularityScore", Value: -1}, {Key: "movieId", Value: 1}}).
		SetLimit(int64(limit))

	return r.findMovies(ctx, filter, opts)
}

// SimilarByGenres trae candidatas que compartan al menos un género con la
// fuente. El ranking fino (overlap de Jaccard) lo hace el motor.
func (r *MovieRepository) SimilarByGenres(ctx context.Context, sourceID int, genres []string, limit int) ([]models.MovieDoc, error) {
	if len(genres) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"movieId": bson.M{"$ne": sourceID},
		"genres":  bson.M{"$in": genres},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "tmdbRating", Value: -1}, {Key: "movieId", Value: 1}}).
		SetLimit(int64(limit))

	return r.findMovies(ctx, filter, opts)
}

func (r *MovieRepository) findMovies(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.MovieDoc, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MovieDoc
	for cur.Next(ctx) {
		var m models.MovieDoc
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}
