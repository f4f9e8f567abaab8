package evaluation

import "time"

type Evaluation struct {
	ID                 string    `json:"id"`
	Kind               Kind      `json:"kind"`
	MatrixID           string    `json:"matrixId"`
	EmployeeID         string    `json:"employeeId"`
	EvaluatorID        string    `json:"evaluatorId,omitempty"`
	Status             Status    `json:"status"`
	TotalWeightedScore *float64  `json:"totalWeightedScore,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ScoreInput is one submitted per-criterion achievement.
type ScoreInput struct {
	CriterionID           string  `json:"criterionId"`
	AchievementPercentage float64 `json:"achievementPercentage"`
	Comments              string  `json:"comments,omitempty"`
}

// CriterionScore is a persisted per-criterion result. WeightAtEvaluation
// snapshots the criterion weight at submission time; later matrix edits do
// not touch it.
type CriterionScore struct {
	EvaluationID          string  `json:"evaluationId"`
	CriterionID           string  `json:"criterionId"`
	AchievementPercentage float64 `json:"achievementPercentage"`
	WeightAtEvaluation    float64 `json:"weightAtEvaluation"`
	NormalizedScore       float64 `json:"normalizedScore"`
	FinalWeightedScore    float64 `json:"finalWeightedScore"`
	Comments              string  `json:"comments,omitempty"`
}

// ScoreResult is the outcome of a score computation.
type ScoreResult struct {
	PerCriterionScores []CriterionScore `json:"perCriterionScores"`
	OverallScore       float64          `json:"overallScore"`
	CriticalZero       bool             `json:"criticalZero"`
}
