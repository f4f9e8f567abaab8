package evaluation

import "context"

type StoreAPI interface {
	EvaluationByID(ctx context.Context, evaluationID string) (Evaluation, bool, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]Evaluation, error)
	CreateEvaluation(ctx context.Context, kind Kind, matrixID, employeeID, evaluatorID string) (string, error)
	UpdateStatus(ctx context.Context, evaluationID string, status Status) error
	ReplaceScores(ctx context.Context, evaluationID string, scores []CriterionScore, total float64) error
	ScoresByEvaluation(ctx context.Context, evaluationID string) ([]CriterionScore, error)
}
