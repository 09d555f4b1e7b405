package models

// UserProfile es el perfil de preferencias derivado del historial de
// interacciones. Es una vista calculada por request (o servida de cache),
// nunca se persiste como entidad propia.
type UserProfile struct {
	// ranking de géneros (viene del agregado de interacciones positivas)
	PreferredGenres []string `json:"preferredGenres"`
	// peso por género; mismas claves que PreferredGenres. Hoy todos 1.0,
	// refinar el peso individual queda pendiente.
	GenreWeights       map[string]float64 `json:"genreWeights"`
	PreferredDirectors map[string]float64 `json:"preferredDirectors"`
	PreferredActors    map[string]float64 `json:"preferredActors"`
	PreferredLanguages map[string]float64 `json:"preferredLanguages"`
	AvgRating          float64            `json:"avgRating"`
	TotalRatings       int                `json:"totalRatings"`
	// fracción de ratings por bucket entero ("4" -> 0.5)
	RatingDistribution map[string]float64 `json:"ratingDistribution"`
}
