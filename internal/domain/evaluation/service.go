package evaluation

import (
	"context"
	"log/slog"

	"perfeval/internal/domain/matrix"
)

// CriteriaSource supplies the criterion metadata for a matrix; in production
// this is the matrix service.
type CriteriaSource interface {
	CriteriaByMatrix(ctx context.Context, matrixID string) ([]matrix.Criterion, error)
}

type Service struct {
	store    StoreAPI
	criteria CriteriaSource
}

func NewService(store StoreAPI, criteria CriteriaSource) *Service {
	return &Service{store: store, criteria: criteria}
}

func (s *Service) EvaluationByID(ctx context.Context, evaluationID string) (Evaluation, bool, error) {
	return s.store.EvaluationByID(ctx, evaluationID)
}

func (s *Service) ListForEmployee(ctx context.Context, employeeID string) ([]Evaluation, error) {
	return s.store.ListForEmployee(ctx, employeeID)
}

func (s *Service) Create(ctx context.Context, kind Kind, matrixID, employeeID, evaluatorID string) (string, error) {
	return s.store.CreateEvaluation(ctx, kind, matrixID, employeeID, evaluatorID)
}

func (s *Service) UpdateStatus(ctx context.Context, evaluationID string, status Status) error {
	return s.store.UpdateStatus(ctx, evaluationID, status)
}

func (s *Service) ScoresByEvaluation(ctx context.Context, evaluationID string) ([]CriterionScore, error) {
	return s.store.ScoresByEvaluation(ctx, evaluationID)
}

// SubmitScores validates and computes the weighted result for the submitted
// achievements, then replaces the evaluation's stored scores and total
// atomically. On any validation failure nothing is computed or persisted.
func (s *Service) SubmitScores(ctx context.Context, evaluationID, matrixID string, inputs []ScoreInput, actorID string) (ScoreResult, error) {
	record, found, err := s.store.EvaluationByID(ctx, evaluationID)
	if err != nil {
		return ScoreResult{}, err
	}
	if !found {
		return ScoreResult{}, ErrEvaluationNotFound
	}
	if record.MatrixID != matrixID {
		return ScoreResult{}, ErrMatrixMismatch
	}

	criteria, err := s.criteria.CriteriaByMatrix(ctx, matrixID)
	if err != nil {
		return ScoreResult{}, err
	}

	result, err := ComputeScores(evaluationID, criteria, inputs)
	if err != nil {
		return ScoreResult{}, err
	}

	if err := s.store.ReplaceScores(ctx, evaluationID, result.PerCriterionScores, result.OverallScore); err != nil {
		return ScoreResult{}, err
	}

	slog.Info("evaluation scores replaced",
		"evaluationId", evaluationID,
		"actorId", actorID,
		"overall", result.OverallScore,
		"criticalZero", result.CriticalZero)
	return result, nil
}
