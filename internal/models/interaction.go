package models

// Tipos de interacción usuario-película. "rating" es la fuente de verdad
// del filtrado colaborativo; like/favorite/watchlist son señal positiva
// para el perfil de contenido.
const (
	InteractionView      = "view"
	InteractionLike      = "like"
	InteractionDislike   = "dislike"
	InteractionClick     = "click"
	InteractionRating    = "rating"
	InteractionFavorite  = "favorite"
	InteractionWatchlist = "watchlist"
	// click sobre una recomendación servida (feedback del motor)
	InteractionRecommendationClick = "recommendation_click"
)

// ValidInteractionTypes para validar el body del POST.
var ValidInteractionTypes = map[string]bool{
	InteractionView:                true,
	InteractionLike:                true,
	InteractionDislike:             true,
	InteractionClick:               true,
	InteractionRating:              true,
	InteractionFavorite:            true,
	InteractionWatchlist:           true,
	InteractionRecommendationClick: true,
}

// InteractionDoc es una fila del log de interacciones (colección
// "interactions"). Rating solo aplica cuando Type == "rating".
type InteractionDoc struct {
	UserID    int            `json:"userId" bson:"userId"`
	MovieID   int            `json:"movieId" bson:"movieId"`
	Type      string         `json:"type" bson:"type"`
	Rating    *float64       `json:"rating,omitempty" bson:"rating,omitempty"`
	Source    string         `json:"source,omitempty" bson:"source,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Timestamp int64          `json:"timestamp" bson:"timestamp"`
}

// pesos base por tipo de interacción
var engagementWeights = map[string]float64{
	InteractionView:      1.0,
	InteractionLike:      3.0,
	InteractionDislike:   -2.0,
	InteractionClick:     1.5,
	InteractionRating:    2.0,
	InteractionFavorite:  5.0,
	InteractionWatchlist: 4.0,
}

// EngagementWeight devuelve el peso de la interacción para los agregados
// de preferencias. Ratings altos (>=4) refuerzan la señal, ratings bajos
// (<=2) la atenúan.
func (i *InteractionDoc) EngagementWeight() float64 {
	w, ok := engagementWeights[i.Type]
	if !ok {
		w = 1.0
	}
	if i.Rating != nil {
		if *i.Rating >= 4.0 {
			w *= 1.5
		} else if *i.Rating <= 2.0 {
			w *= 0.5
		}
	}
	return w
}

// TrendingSignal es una fila del agregado de tendencia: cuántas
// interacciones recientes tuvo una película y de cuántos usuarios
// distintos vinieron.
type TrendingSignal struct {
	MovieID          int `json:"movieId" bson:"_id"`
	InteractionCount int `json:"interactionCount" bson:"interactionCount"`
	UniqueUsers      int `json:"uniqueUsers" bson:"uniqueUsers"`
}
