package service

import (
	"context"
	"testing"
	"time"

	"cinerec/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestExperimentService(active *models.ExperimentDoc) (*ExperimentService, *fakeExperimentStore, *fakeRecommendationStore, *fakeMovieStore) {
	interactions := newFakeInteractionStore()
	movies := newFakeMovieStore()
	recSvc := NewRecommendService(interactions, movies, newFakeCache(), DefaultParams())

	exps := &fakeExperimentStore{active: active}
	recs := newFakeRecommendationStore()
	return NewExperimentService(exps, recs, recSvc), exps, recs, movies
}

func runningExperiment(a, b string, split float64) *models.ExperimentDoc {
	now := time.Now()
	return &models.ExperimentDoc{
		ID:           primitive.NewObjectID(),
		Name:         "test-exp",
		AlgorithmA:   a,
		AlgorithmB:   b,
		TrafficSplit: split,
		StartDate:    now.Add(-time.Hour),
		EndDate:      now.Add(time.Hour),
		IsActive:     true,
	}
}

func TestRecommendForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("no active experiment means hybrid", func(t *testing.T) {
		svc, _, recs, movies := newTestExperimentService(nil)
		movie := models.MovieDoc{MovieID: 7, PopularityScore: 50, TMDBRating: floatPtr(8.0)}
		movies.movies[7] = movie
		movies.popular = []models.MovieDoc{movie}

		algo, items := svc.RecommendForUser(ctx, 1, 5, false)
		if algo != models.AlgoHybrid {
			t.Errorf("algorithm = %q, want hybrid", algo)
		}
		if len(items) == 0 {
			t.Fatal("expected recommendations")
		}
		// cada ítem servido queda persistido con el tag asignado
		if len(recs.upserts) != len(items) {
			t.Errorf("upserts = %d, want %d", len(recs.upserts), len(items))
		}
		for _, call := range recs.upserts {
			if call.Algorithm != models.AlgoHybrid || call.UserID != 1 {
				t.Errorf("upsert = %+v", call)
			}
		}
	})

	t.Run("active experiment assigns deterministically", func(t *testing.T) {
		exp := runningExperiment(models.AlgoHybrid, models.AlgoTrending, 0.5)
		svc, _, _, movies := newTestExperimentService(exp)
		movie := models.MovieDoc{MovieID: 7, PopularityScore: 50, TMDBRating: floatPtr(8.0)}
		movies.movies[7] = movie
		movies.popular = []models.MovieDoc{movie}

		first, _ := svc.RecommendForUser(ctx, 42, 5, false)
		if first != models.AlgoHybrid && first != models.AlgoTrending {
			t.Fatalf("algorithm = %q, want one of the experiment arms", first)
		}
		for i := 0; i < 5; i++ {
			again, _ := svc.RecommendForUser(ctx, 42, 5, false)
			if again != first {
				t.Fatalf("assignment flapped: %q then %q", first, again)
			}
		}
	})
}

func TestCreateExperiment(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	valid := func() *models.ExperimentDoc {
		return &models.ExperimentDoc{
			Name:         "hybrid-vs-trending",
			AlgorithmA:   models.AlgoHybrid,
			AlgorithmB:   models.AlgoTrending,
			TrafficSplit: 0.5,
			StartDate:    now,
			EndDate:      now.AddDate(0, 0, 14),
		}
	}

	t.Run("valid experiment is stored", func(t *testing.T) {
		svc, exps, _, _ := newTestExperimentService(nil)
		if err := svc.CreateExperiment(ctx, valid()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(exps.inserted) != 1 {
			t.Errorf("inserted = %d, want 1", len(exps.inserted))
		}
	})

	t.Run("rejects missing name", func(t *testing.T) {
		svc, _, _, _ := newTestExperimentService(nil)
		exp := valid()
		exp.Name = ""
		if err := svc.CreateExperiment(ctx, exp); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		svc, _, _, _ := newTestExperimentService(nil)
		exp := valid()
		exp.AlgorithmB = "quantum"
		if err := svc.CreateExperiment(ctx, exp); err == nil {
			t.Error("expected error")
		}
		// tags internos tampoco son asignables
		exp = valid()
		exp.AlgorithmA = models.AlgoPopularityFallback
		if err := svc.CreateExperiment(ctx, exp); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects traffic split out of range", func(t *testing.T) {
		svc, _, _, _ := newTestExperimentService(nil)
		for _, split := range []float64{0.0, 0.05, 0.95, 1.0} {
			exp := valid()
			exp.TrafficSplit = split
			if err := svc.CreateExperiment(ctx, exp); err == nil {
				t.Errorf("split %v: expected error", split)
			}
		}
	})

	t.Run("rejects end date before start", func(t *testing.T) {
		svc, _, _, _ := newTestExperimentService(nil)
		exp := valid()
		exp.EndDate = exp.StartDate.Add(-time.Hour)
		if err := svc.CreateExperiment(ctx, exp); err == nil {
			t.Error("expected error")
		}
	})
}

func TestPerformance(t *testing.T) {
	ctx := context.Background()

	t.Run("empty algorithm reports all known ones", func(t *testing.T) {
		svc, _, recs, _ := newTestExperimentService(nil)
		recs.algos = []string{models.AlgoHybrid, models.AlgoTrending}
		recs.perf[models.AlgoHybrid] = &models.AlgorithmPerformance{
			Algorithm: models.AlgoHybrid, TotalRecs: 100, ClickedRecs: 10, ClickThroughRate: 10,
		}

		out, err := svc.Performance(ctx, "", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("len = %d, want 2", len(out))
		}
		if out[models.AlgoHybrid].ClickThroughRate != 10 {
			t.Errorf("ctr = %v", out[models.AlgoHybrid].ClickThroughRate)
		}
	})

	t.Run("single algorithm report", func(t *testing.T) {
		svc, _, _, _ := newTestExperimentService(nil)
		out, err := svc.Performance(ctx, models.AlgoTrending, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("len = %d, want 1", len(out))
		}
		if _, ok := out[models.AlgoTrending]; !ok {
			t.Error("missing requested algorithm")
		}
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, recs, _ := newTestExperimentService(nil)

	for i := 0; i < 3; i++ {
		recs.byUser[1] = append(recs.byUser[1], models.UserRecommendationDoc{
			UserID: 1, MovieID: 100 + i, Algorithm: models.AlgoHybrid,
		})
	}

	out, err := svc.History(ctx, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}
}
