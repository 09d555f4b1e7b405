package models

import "testing"

func f(v float64) *float64 { return &v }

func TestEngagementWeight(t *testing.T) {
	cases := []struct {
		name string
		it   InteractionDoc
		want float64
	}{
		{"view", InteractionDoc{Type: InteractionView}, 1.0},
		{"like", InteractionDoc{Type: InteractionLike}, 3.0},
		{"dislike", InteractionDoc{Type: InteractionDislike}, -2.0},
		{"click", InteractionDoc{Type: InteractionClick}, 1.5},
		{"favorite", InteractionDoc{Type: InteractionFavorite}, 5.0},
		{"watchlist", InteractionDoc{Type: InteractionWatchlist}, 4.0},
		{"unknown type defaults to 1", InteractionDoc{Type: "recommendation_click"}, 1.0},
		{"high rating boosts", InteractionDoc{Type: InteractionRating, Rating: f(4.5)}, 3.0},
		{"low rating dampens", InteractionDoc{Type: InteractionRating, Rating: f(1.5)}, 1.0},
		{"mid rating untouched", InteractionDoc{Type: InteractionRating, Rating: f(3.0)}, 2.0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.it.EngagementWeight(); got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}
