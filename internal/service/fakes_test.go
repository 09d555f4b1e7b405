package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"cinerec/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakes en memoria de los stores y del cache, compartidos por los tests
// del paquete.

type fakeCache struct {
	data map[string][]byte
	hits int
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	c.hits++
	return true, nil
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.sets++
	return nil
}

func (c *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type fakeInteractionStore struct {
	// userID -> movieID -> rating
	ratings map[int]map[int]float64
	// userID -> interacciones positivas
	positives map[int][]models.InteractionDoc
	// userID -> géneros preferidos ya rankeados
	genres map[int][]string
	// userID -> candidatos a usuarios similares
	candidates map[int][]int
	trending   []models.TrendingSignal
	inserted   []*models.InteractionDoc
	insertErr  error
}

func newFakeInteractionStore() *fakeInteractionStore {
	return &fakeInteractionStore{
		ratings:    map[int]map[int]float64{},
		positives:  map[int][]models.InteractionDoc{},
		genres:     map[int][]string{},
		candidates: map[int][]int{},
	}
}

func (f *fakeInteractionStore) Insert(ctx context.Context, it *models.InteractionDoc) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, it)
	return nil
}

func (f *fakeInteractionStore) UserRatings(ctx context.Context, userID int) (map[int]float64, error) {
	out := map[int]float64{}
	for id, r := range f.ratings[userID] {
		out[id] = r
	}
	return out, nil
}

func (f *fakeInteractionStore) UserHighRated(ctx context.Context, userID int, min float64) (map[int]float64, error) {
	out := map[int]float64{}
	for id, r := range f.ratings[userID] {
		if r >= min {
			out[id] = r
		}
	}
	return out, nil
}

func (f *fakeInteractionStore) WatchedMovieIDs(ctx context.Context, userID int) (map[int]bool, error) {
	out := map[int]bool{}
	for id := range f.ratings[userID] {
		out[id] = true
	}
	for _, it := range f.positives[userID] {
		out[it.MovieID] = true
	}
	return out, nil
}

func (f *fakeInteractionStore) PositiveInteractions(ctx context.Context, userID int) ([]models.InteractionDoc, error) {
	return f.positives[userID], nil
}

func (f *fakeInteractionStore) SimilarUserCandidates(ctx context.Context, userID, minCommon, limit int) ([]int, error) {
	out := f.candidates[userID]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInteractionStore) PreferredGenres(ctx context.Context, userID, limit int) ([]string, error) {
	out := f.genres[userID]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInteractionStore) Trending(ctx context.Context, days int, types []string, limit int) ([]models.TrendingSignal, error) {
	out := f.trending
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeMovieStore struct {
	movies         map[int]models.MovieDoc
	popular        []models.MovieDoc
	contentPool    []models.MovieDoc
	similarByGenre map[int][]models.MovieDoc
}

func newFakeMovieStore() *fakeMovieStore {
	return &fakeMovieStore{
		movies:         map[int]models.MovieDoc{},
		similarByGenre: map[int][]models.MovieDoc{},
	}
}

func (f *fakeMovieStore) GetByID(ctx context.Context, movieID int) (*models.MovieDoc, error) {
	m, ok := f.movies[movieID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeMovieStore) GetByIDs(ctx context.Context, movieIDs []int) (map[int]models.MovieDoc, error) {
	out := map[int]models.MovieDoc{}
	for _, id := range movieIDs {
		if m, ok := f.movies[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (f *fakeMovieStore) Popular(ctx context.Context, minRating float64, limit int) ([]models.MovieDoc, error) {
	out := f.popular
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMovieStore) ContentCandidates(ctx context.Context, excludeIDs []int, minRating float64, limit int) ([]models.MovieDoc, error) {
	excluded := map[int]bool{}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	out := make([]models.MovieDoc, 0, len(f.contentPool))
	for _, m := range f.contentPool {
		if !excluded[m.MovieID] {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMovieStore) SimilarByGenres(ctx context.Context, sourceID int, genres []string, limit int) ([]models.MovieDoc, error) {
	out := f.similarByGenre[sourceID]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type upsertCall struct {
	UserID    int
	MovieID   int
	Algorithm string
	Score     float64
}

type clickCall struct {
	UserID    int
	MovieID   int
	Algorithm string
}

type fakeRecommendationStore struct {
	upserts []upsertCall
	clicks  []clickCall
	byUser  map[int][]models.UserRecommendationDoc
	algos   []string
	perf    map[string]*models.AlgorithmPerformance
	deleted int64
	markErr error
}

func newFakeRecommendationStore() *fakeRecommendationStore {
	return &fakeRecommendationStore{
		byUser: map[int][]models.UserRecommendationDoc{},
		perf:   map[string]*models.AlgorithmPerformance{},
	}
}

func (f *fakeRecommendationStore) Upsert(ctx context.Context, userID, movieID int, algorithm string, score float64) error {
	f.upserts = append(f.upserts, upsertCall{userID, movieID, algorithm, score})
	return nil
}

func (f *fakeRecommendationStore) MarkClicked(ctx context.Context, userID, movieID int, algorithm string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.clicks = append(f.clicks, clickCall{userID, movieID, algorithm})
	return nil
}

func (f *fakeRecommendationStore) FindByUser(ctx context.Context, userID int, limit int64) ([]models.UserRecommendationDoc, error) {
	out := f.byUser[userID]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRecommendationStore) Algorithms(ctx context.Context) ([]string, error) {
	return f.algos, nil
}

func (f *fakeRecommendationStore) Performance(ctx context.Context, algorithm string, days int) (*models.AlgorithmPerformance, error) {
	if p, ok := f.perf[algorithm]; ok {
		return p, nil
	}
	return &models.AlgorithmPerformance{Algorithm: algorithm, PeriodDays: days}, nil
}

func (f *fakeRecommendationStore) CleanupOld(ctx context.Context, days int) (int64, error) {
	return f.deleted, nil
}

type fakeExperimentStore struct {
	active   *models.ExperimentDoc
	inserted []*models.ExperimentDoc
	list     []models.ExperimentDoc
}

func (f *fakeExperimentStore) Active(ctx context.Context, now time.Time) (*models.ExperimentDoc, error) {
	return f.active, nil
}

func (f *fakeExperimentStore) Insert(ctx context.Context, exp *models.ExperimentDoc) error {
	if exp.ID.IsZero() {
		exp.ID = primitive.NewObjectID()
	}
	f.inserted = append(f.inserted, exp)
	return nil
}

func (f *fakeExperimentStore) List(ctx context.Context, limit int64) ([]models.ExperimentDoc, error) {
	out := f.list
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// newTestService arma un RecommendService con fakes vacíos.
func newTestService() (*RecommendService, *fakeInteractionStore, *fakeMovieStore, *fakeCache) {
	interactions := newFakeInteractionStore()
	movies := newFakeMovieStore()
	cache := newFakeCache()
	svc := NewRecommendService(interactions, movies, cache, DefaultParams())
	return svc, interactions, movies, cache
}

func floatPtr(v float64) *float64 { return &v }
