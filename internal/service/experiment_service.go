package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"cinerec/internal/models"
)

// algoritmos que un experimento puede asignar
var assignableAlgorithms = map[string]bool{
	models.AlgoCollaborative: true,
	models.AlgoContentBased:  true,
	models.AlgoHybrid:        true,
	models.AlgoTrending:      true,
}

// ExperimentService decide qué algoritmo ve cada usuario bajo el
// experimento A/B activo, delega el scoring y persiste los resultados
// etiquetados para el análisis de performance posterior.
type ExperimentService struct {
	exps   ExperimentStore
	recs   RecommendationStore
	recSvc *RecommendService
}

func NewExperimentService(e ExperimentStore, r RecommendationStore, recSvc *RecommendService) *ExperimentService {
	return &ExperimentService{exps: e, recs: r, recSvc: recSvc}
}

// RecommendForUser asigna la variante (hybrid por defecto si no hay
// experimento activo), genera las recomendaciones y las persiste.
// Devuelve el algoritmo usado junto con la lista.
func (s *ExperimentService) RecommendForUser(ctx context.Context, userID, limit int, refresh bool) (string, []models.ScoredRec) {
	algorithm := models.AlgoHybrid

	exp, err := s.exps.Active(ctx, time.Now())
	if err != nil {
		log.Printf("[experiments] error buscando experimento activo: %v", err)
	} else if exp != nil {
		algorithm = exp.AlgorithmForUser(userID, time.Now())
	}

	recs := s.recSvc.Recommend(ctx, userID, algorithm, limit, refresh)

	// persistencia best-effort: no rompemos la respuesta si falla
	s.store(ctx, userID, algorithm, recs)

	return algorithm, recs
}

func (s *ExperimentService) store(ctx context.Context, userID int, algorithm string, recs []models.ScoredRec) {
	for _, rec := range recs {
		if err := s.recs.Upsert(ctx, userID, rec.MovieID, algorithm, rec.Score); err != nil {
			log.Printf("[experiments] error guardando recomendación user=%d movie=%d: %v", userID, rec.MovieID, err)
		}
	}
}

// ====== administración de experimentos ======

func (s *ExperimentService) CreateExperiment(ctx context.Context, exp *models.ExperimentDoc) error {
	if exp.Name == "" {
		return fmt.Errorf("name es obligatorio")
	}
	if !assignableAlgorithms[exp.AlgorithmA] || !assignableAlgorithms[exp.AlgorithmB] {
		return fmt.Errorf("algoritmo inválido (collaborative|content_based|hybrid|trending)")
	}
	if exp.TrafficSplit < 0.1 || exp.TrafficSplit > 0.9 {
		return fmt.Errorf("trafficSplit debe estar entre 0.1 y 0.9")
	}
	if !exp.EndDate.After(exp.StartDate) {
		return fmt.Errorf("endDate debe ser posterior a startDate")
	}

	return s.exps.Insert(ctx, exp)
}

func (s *ExperimentService) ListExperiments(ctx context.Context, limit int64) ([]models.ExperimentDoc, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.exps.List(ctx, limit)
}

// ====== analítica ======

// Performance devuelve el reporte de un algoritmo, o de todos los que
// tengan recomendaciones persistidas si algorithm viene vacío.
func (s *ExperimentService) Performance(ctx context.Context, algorithm string, days int) (map[string]*models.AlgorithmPerformance, error) {
	if days <= 0 {
		days = 30
	}

	algorithms := []string{algorithm}
	if algorithm == "" {
		var err error
		algorithms, err = s.recs.Algorithms(ctx)
		if err != nil {
			return nil, err
		}
	}

	out := make(map[string]*models.AlgorithmPerformance, len(algorithms))
	for _, alg := range algorithms {
		perf, err := s.recs.Performance(ctx, alg, days)
		if err != nil {
			return nil, err
		}
		out[alg] = perf
	}
	return out, nil
}

// Cleanup borra recomendaciones viejas sin clicks.
func (s *ExperimentService) Cleanup(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = 30
	}
	return s.recs.CleanupOld(ctx, days)
}

// History lista las recomendaciones persistidas de un usuario.
func (s *ExperimentService) History(ctx context.Context, userID int, limit int64) ([]models.UserRecommendationDoc, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.recs.FindByUser(ctx, userID, limit)
}
