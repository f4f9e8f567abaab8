package evaluation

import (
	"fmt"
	"math"

	"perfeval/internal/domain/matrix"
)

// ComputeScores reduces per-criterion achievements to weighted scores and one
// bounded overall total. Weights are snapshotted from the criteria passed in,
// so a later matrix edit never changes an existing result. If any criterion
// flagged competency-gap-critical scores exactly 0%, the overall total is
// forced to 0 regardless of the other criteria.
func ComputeScores(evaluationID string, criteria []matrix.Criterion, inputs []ScoreInput) (ScoreResult, error) {
	if len(inputs) == 0 {
		return ScoreResult{}, ErrNoScoreInputs
	}

	byID := make(map[string]matrix.Criterion, len(criteria))
	for _, criterion := range criteria {
		byID[criterion.ID] = criterion
	}

	result := ScoreResult{PerCriterionScores: make([]CriterionScore, 0, len(inputs))}
	var total float64
	for _, input := range inputs {
		criterion, ok := byID[input.CriterionID]
		if !ok {
			return ScoreResult{}, &ValidationError{
				Field:  "criterionId",
				Reason: fmt.Sprintf("criterion %s is not part of the matrix", input.CriterionID),
			}
		}
		if input.AchievementPercentage < 0 || input.AchievementPercentage > 100 {
			return ScoreResult{}, &ValidationError{
				Field:  "achievementPercentage",
				Reason: fmt.Sprintf("criterion %s: must be between 0 and 100", input.CriterionID),
			}
		}

		normalized := input.AchievementPercentage / 100
		weighted := normalized * criterion.Weight
		if criterion.IsCompetencyGapCritical && input.AchievementPercentage == 0 {
			result.CriticalZero = true
		}

		result.PerCriterionScores = append(result.PerCriterionScores, CriterionScore{
			EvaluationID:          evaluationID,
			CriterionID:           input.CriterionID,
			AchievementPercentage: input.AchievementPercentage,
			WeightAtEvaluation:    criterion.Weight,
			NormalizedScore:       normalized,
			FinalWeightedScore:    round2(weighted),
			Comments:              input.Comments,
		})
		total += weighted
	}

	if result.CriticalZero {
		total = 0
	}
	result.OverallScore = round2(clamp(total, 0, 100))
	return result, nil
}

func clamp(value, low, high float64) float64 {
	return math.Min(math.Max(value, low), high)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
