package models

type Links struct {
	IMDB string `json:"imdb,omitempty" bson:"imdb,omitempty"`
	TMDB string `json:"tmdb,omitempty" bson:"tmdb,omitempty"`
}

// MovieDoc es el snapshot de catálogo que consume el motor de scoring.
// Los campos de contenido (genres, director, cast, language) alimentan la
// similitud por contenido; tmdbRating y popularityScore los fallbacks
// de popularidad.
type MovieDoc struct {
	MovieID         int      `json:"movieId" bson:"movieId"`
	Title           string   `json:"title" bson:"title"`
	Year            *int     `json:"year,omitempty" bson:"year,omitempty"`
	Genres          []string `json:"genres" bson:"genres"`
	Director        string   `json:"director,omitempty" bson:"director,omitempty"`
	Cast            []string `json:"cast,omitempty" bson:"cast,omitempty"`
	Language        string   `json:"language,omitempty" bson:"language,omitempty"`
	TMDBRating      *float64 `json:"tmdbRating,omitempty" bson:"tmdbRating,omitempty"`
	PopularityScore float64  `json:"popularityScore" bson:"popularityScore"`
	ReleaseDate     string   `json:"releaseDate,omitempty" bson:"releaseDate,omitempty"`
	PosterURL       string   `json:"posterUrl,omitempty" bson:"posterUrl,omitempty"`
	Overview        string   `json:"overview,omitempty" bson:"overview,omitempty"`
	Links           *Links   `json:"links,omitempty" bson:"links,omitempty"`
	CreatedAt       string   `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt       string   `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// MovieData es el payload de display que se adjunta a una recomendación
// al enriquecerla (no se persiste como entidad, solo viaja en la
// respuesta y en cache).
type MovieData struct {
	Title      string   `json:"title"`
	Year       *int     `json:"year,omitempty"`
	Genres     []string `json:"genres"`
	TMDBRating *float64 `json:"tmdbRating,omitempty"`
	PosterURL  string   `json:"posterUrl,omitempty"`
	Overview   string   `json:"overview,omitempty"`
}

func (m *MovieDoc) DisplayData() *MovieData {
	return &MovieData{
		Title:      m.Title,
		Year:       m.Year,
		Genres:     m.Genres,
		TMDBRating: m.TMDBRating,
		PosterURL:  m.PosterURL,
		Overview:   m.Overview,
	}
}
