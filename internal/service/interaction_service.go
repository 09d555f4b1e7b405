package service

import (
	"context"
	"fmt"
	"log"

	"cinerec/internal/models"
)

// InteractionService registra interacciones usuario-película y dispara
// la invalidación de caches del usuario (fire-and-forget).
type InteractionService struct {
	interactions InteractionStore
	recs         RecommendationStore
	recSvc       *RecommendService
}

func NewInteractionService(i InteractionStore, r RecommendationStore, recSvc *RecommendService) *InteractionService {
	return &InteractionService{interactions: i, recs: r, recSvc: recSvc}
}

// Record valida y persiste la interacción. Después del insert: invalida
// los caches del usuario (best-effort) y, si fue un click sobre una
// recomendación, la marca como clickeada. Esos dos pasos nunca hacen
// fallar el registro.
func (s *InteractionService) Record(ctx context.Context, it *models.InteractionDoc) error {
	if !models.ValidInteractionTypes[it.Type] {
		return fmt.Errorf("tipo de interacción inválido: %q", it.Type)
	}
	if it.Type == models.InteractionRating {
		if it.Rating == nil {
			return fmt.Errorf("una interacción rating necesita el valor")
		}
		if *it.Rating < 1 || *it.Rating > 5 {
			return fmt.Errorf("rating fuera de rango [1,5]: %v", *it.Rating)
		}
	}
	if it.Source == "" {
		it.Source = "web"
	}

	if err := s.interactions.Insert(ctx, it); err != nil {
		return err
	}

	s.recSvc.InvalidateUserCaches(ctx, it.UserID)

	if it.Type == models.InteractionRecommendationClick {
		algorithm := ""
		if v, ok := it.Metadata["algorithm"].(string); ok {
			algorithm = v
		}
		if err := s.recs.MarkClicked(ctx, it.UserID, it.MovieID, algorithm); err != nil {
			log.Printf("[interactions] error marcando click user=%d movie=%d: %v", it.UserID, it.MovieID, err)
		}
	}

	return nil
}
