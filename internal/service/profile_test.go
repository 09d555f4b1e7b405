package service

import (
	"context"
	"testing"

	"cinerec/internal/models"
)

func TestBuildUserProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("cold user has no profile", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		if got := svc.buildUserProfile(ctx, 42); got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("average and distribution from ratings", func(t *testing.T) {
		svc, interactions, _, _ := newTestService()
		interactions.ratings[1] = map[int]float64{10: 5, 11: 5, 12: 4, 13: 2}

		profile := svc.buildUserProfile(ctx, 1)
		if profile == nil {
			t.Fatal("expected a profile")
		}
		if !almostEqual(profile.AvgRating, 4.0) {
			t.Errorf("AvgRating = %v, want 4.0", profile.AvgRating)
		}
		if profile.TotalRatings != 4 {
			t.Errorf("TotalRatings = %d, want 4", profile.TotalRatings)
		}
		if !almostEqual(profile.RatingDistribution["5"], 0.5) {
			t.Errorf("distribution[5] = %v, want 0.5", profile.RatingDistribution["5"])
		}
		if !almostEqual(profile.RatingDistribution["2"], 0.25) {
			t.Errorf("distribution[2] = %v, want 0.25", profile.RatingDistribution["2"])
		}
	})

	t.Run("no ratings defaults the average to 3.0", func(t *testing.T) {
		svc, interactions, movies, _ := newTestService()
		movies.movies[10] = models.MovieDoc{MovieID: 10, Genres: []string{"Action"}}
		interactions.positives[2] = []models.InteractionDoc{
			{UserID: 2, MovieID: 10, Type: models.InteractionLike},
		}

		profile := svc.buildUserProfile(ctx, 2)
		if profile == nil {
			t.Fatal("expected a profile")
		}
		if !almostEqual(profile.AvgRating, 3.0) {
			t.Errorf("AvgRating = %v, want 3.0", profile.AvgRating)
		}
	})

	t.Run("engagement weights accumulate per director and language", func(t *testing.T) {
		svc, interactions, movies, _ := newTestService()
		movies.movies[10] = models.MovieDoc{MovieID: 10, Director: "Nolan", Language: "en"}
		movies.movies[11] = models.MovieDoc{MovieID: 11, Director: "Nolan", Language: "en"}
		interactions.positives[3] = []models.InteractionDoc{
			{UserID: 3, MovieID: 10, Type: models.InteractionLike},     // 3.0
			{UserID: 3, MovieID: 11, Type: models.InteractionFavorite}, // 5.0
		}

		profile := svc.buildUserProfile(ctx, 3)
		if profile == nil {
			t.Fatal("expected a profile")
		}
		if !almostEqual(profile.PreferredDirectors["Nolan"], 8.0) {
			t.Errorf("directors[Nolan] = %v, want 8.0", profile.PreferredDirectors["Nolan"])
		}
		if !almostEqual(profile.PreferredLanguages["en"], 8.0) {
			t.Errorf("languages[en] = %v, want 8.0", profile.PreferredLanguages["en"])
		}
	})

	t.Run("only the top of the cast counts", func(t *testing.T) {
		svc, interactions, movies, _ := newTestService()
		movies.movies[10] = models.MovieDoc{
			MovieID: 10,
			Cast:    []string{"A", "B", "C", "D", "E"},
		}
		interactions.positives[4] = []models.InteractionDoc{
			{UserID: 4, MovieID: 10, Type: models.InteractionLike},
		}

		profile := svc.buildUserProfile(ctx, 4)
		if profile == nil {
			t.Fatal("expected a profile")
		}
		if _, ok := profile.PreferredActors["C"]; !ok {
			t.Error("third cast member should be in the profile")
		}
		if _, ok := profile.PreferredActors["D"]; ok {
			t.Error("fourth cast member should not be in the profile")
		}
	})

	t.Run("preferred genres pass through with flat weights", func(t *testing.T) {
		svc, interactions, _, _ := newTestService()
		interactions.genres[5] = []string{"Action", "Sci-Fi"}

		profile := svc.buildUserProfile(ctx, 5)
		if profile == nil {
			t.Fatal("expected a profile")
		}
		if len(profile.PreferredGenres) != 2 {
			t.Fatalf("PreferredGenres = %v", profile.PreferredGenres)
		}
		if profile.GenreWeights["Action"] != 1.0 || profile.GenreWeights["Sci-Fi"] != 1.0 {
			t.Errorf("GenreWeights = %v, want flat 1.0", profile.GenreWeights)
		}
	})
}

func TestTopNWeights(t *testing.T) {
	weights := map[string]float64{"a": 5, "b": 3, "c": 8, "d": 3}

	got := topNWeights(weights, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if _, ok := got["c"]; !ok {
		t.Error("heaviest key missing")
	}
	if _, ok := got["a"]; !ok {
		t.Error("second heaviest key missing")
	}

	// n mayor que el mapa lo devuelve entero
	if got := topNWeights(weights, 10); len(got) != 4 {
		t.Errorf("len = %d, want 4", len(got))
	}
}
