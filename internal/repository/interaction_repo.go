package repository

import (
	"context"
	"sort"
	"time"

	"cinerec/internal/db"
	"cinerec/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tipos que cuentan como señal positiva para perfiles y usuarios similares
var positiveTypes = []string{
	models.InteractionLike,
	models.InteractionFavorite,
	models.InteractionWatchlist,
}

var collabTypes = []string{
	models.InteractionLike,
	models.InteractionFavorite,
	models.InteractionRating,
}

type InteractionRepository struct {
	col    *mongo.Collection
	movies *mongo.Collection // para el ranking de géneros preferidos
}

func NewInteractionRepository() *InteractionRepository {
	return &InteractionRepository{
		col:    db.DB().Collection("interactions"),
		movies: db.DB().Collection("movies"),
	}
}

func (r *InteractionRepository) Insert(ctx context.Context, it *models.InteractionDoc) error {
	if it.Timestamp == 0 {
		it.Timestamp = time.Now().Unix()
	}
	_, err := r.col.InsertOne(ctx, it)
	return err
}

// UserRatings devuelve el mapa movieId -> rating del usuario
// (solo interacciones de tipo rating con valor).
func (r *InteractionRepository) UserRatings(ctx context.Context, userID int) (map[int]float64, error) {
	return r.ratingsAbove(ctx, userID, 0)
}

// UserHighRated devuelve las películas con rating >= min.
func (r *InteractionRepository) UserHighRated(ctx context.Context, userID int, min float64) (map[int]float64, error) {
	return r.ratingsAbove(ctx, userID, min)
}

func (r *InteractionRepository) ratingsAbove(ctx context.Context, userID int, min float64) (map[int]float64, error) {
	filter := bson.M{
		"userId": userID,
		"type":   models.InteractionRating,
		"rating": bson.M{"$ne": nil},
	}
	if min > 0 {
		filter["rating"] = bson.M{"$gte": min}
	}

	// orden ascendente por timestamp: si hay varios ratings del mismo
	// par, la última escritura al map es la más reciente
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[int]float64)
	for cur.Next(ctx) {
		var it models.InteractionDoc
		if err := cur.Decode(&it); err != nil {
			return nil, err
		}
		if it.Rating != nil {
			out[it.MovieID] = *it.Rating
		}
	}
	return out, cur.Err()
}

// WatchedMovieIDs devuelve el set de películas con las que el usuario
// interactuó de cualquier forma.
func (r *InteractionRepository) WatchedMovieIDs(ctx context.Context, userID int) (map[int]bool, error) {
	ids, err := r.col.Distinct(ctx, "movieId", bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}

	out := make(map[int]bool, len(ids))
	for _, v := range ids {
		out[asInt(v)] = true
	}
	return out, nil
}

// PositiveInteractions devuelve las interacciones like/favorite/watchlist
// del usuario (insumo del perfil de contenido).
func (r *InteractionRepository) PositiveInteractions(ctx context.Context, userID int) ([]models.InteractionDoc, error) {
	cur, err := r.col.Find(ctx, bson.M{
		"userId": userID,
		"type":   bson.M{"$in": positiveTypes},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.InteractionDoc
	for cur.Next(ctx) {
		var it models.InteractionDoc
		if err := cur.Decode(&it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, cur.Err()
}

// SimilarUserCandidates devuelve usuarios que comparten al menos
// minCommon películas con el target, ordenados por cantidad en común.
// Es solo la lista de candidatos; la similitud coseno la calcula el motor.
func (r *InteractionRepository) SimilarUserCandidates(ctx context.Context, userID, minCommon, limit int) ([]int, error) {
	movieIDs, err := r.col.Distinct(ctx, "movieId", bson.M{
		"userId": userID,
		"type":   bson.M{"$in": collabTypes},
	})
	if err != nil {
		return nil, err
	}
	if len(movieIDs) == 0 {
		return nil, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"movieId": bson.M{"$in": movieIDs},
			"type":    bson.M{"$in": collabTypes},
			"userId":  bson.M{"$ne": userID},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$userId",
			"movies": bson.M{"$addToSet": "$movieId"},
		}}},
		{{Key: "$project", Value: bson.M{
			"commonMovies": bson.M{"$size": "$movies"},
		}}},
		{{Key: "$match", Value: bson.M{
			"commonMovies": bson.M{"$gte": minCommon},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "commonMovies", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []int
	for cur.Next(ctx) {
		var row struct {
			UserID int `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row.UserID)
	}
	return out, cur.Err()
}

// PreferredGenres devuelve el ranking de géneros del usuario según el
// peso de engagement acumulado de sus interacciones positivas.
func (r *InteractionRepository) PreferredGenres(ctx context.Context, userID, limit int) ([]string, error) {
	interactions, err := r.PositiveInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(interactions) == 0 {
		return nil, nil
	}

	ids := make([]int, 0, len(interactions))
	seen := make(map[int]bool, len(interactions))
	for _, it := range interactions {
		if !seen[it.MovieID] {
			seen[it.MovieID] = true
			ids = append(ids, it.MovieID)
		}
	}

	// batch: un solo Find para los géneros de todas las películas tocadas
	cur, err := r.movies.Find(ctx, bson.M{"movieId": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"movieId": 1, "genres": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	genresByMovie := make(map[int][]string, len(ids))
	for cur.Next(ctx) {
		var m models.MovieDoc
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		genresByMovie[m.MovieID] = m.Genres
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	weights := make(map[string]float64)
	for _, it := range interactions {
		w := it.EngagementWeight()
		for _, g := range genresByMovie[it.MovieID] {
			weights[g] += w
		}
	}

	type gw struct {
		genre  string
		weight float64
	}
	ranked := make([]gw, 0, len(weights))
	for g, w := range weights {
		ranked = append(ranked, gw{g, w})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].genre < ranked[j].genre
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, g := range ranked {
		out[i] = g.genre
	}
	return out, nil
}

// Trending agrega las interacciones recientes por película:
// cuántas hubo y cuántos usuarios distintos participaron.
func (r *InteractionRepository) Trending(ctx context.Context, days int, types []string, limit int) ([]models.TrendingSignal, error) {
	cutoff := time.Now().AddDate(0, 0, -days).Unix()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"timestamp": bson.M{"$gte": cutoff},
			"type":      bson.M{"$in": types},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":              "$movieId",
			"interactionCount": bson.M{"$sum": 1},
			"users":            bson.M{"$addToSet": "$userId"},
		}}},
		{{Key: "$project", Value: bson.M{
			"interactionCount": 1,
			"uniqueUsers":      bson.M{"$size": "$users"},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "interactionCount", Value: -1},
			{Key: "uniqueUsers", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TrendingSignal
	for cur.Next(ctx) {
		var row models.TrendingSignal
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, cur.Err()
}

// helpers de casteo seguro para Distinct (Mongo devuelve int32/int64)
func asInt(v any) int {
	switch x := v.(type) {
	case int32:
		return int(x)
	case int64:
		return int(x)
	case float64:
		return int(x)
	case int:
		return x
	default:
		return 0
	}
}
