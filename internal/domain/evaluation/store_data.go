package evaluation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) EvaluationByID(ctx context.Context, evaluationID string) (Evaluation, bool, error) {
	var out Evaluation
	var kind, status string
	var evaluatorID *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, kind, matrix_id, employee_id, evaluator_id, status, total_weighted_score, created_at, updated_at
    FROM evaluations
    WHERE id = $1
  `, evaluationID).Scan(&out.ID, &kind, &out.MatrixID, &out.EmployeeID, &evaluatorID,
		&status, &out.TotalWeightedScore, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, false, nil
	}
	if err != nil {
		return Evaluation{}, false, err
	}
	out.Kind = Kind(kind)
	out.Status = Status(status)
	if evaluatorID != nil {
		out.EvaluatorID = *evaluatorID
	}
	return out, true, nil
}

func (s *Store) ListForEmployee(ctx context.Context, employeeID string) ([]Evaluation, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, kind, matrix_id, employee_id, evaluator_id, status, total_weighted_score, created_at, updated_at
    FROM evaluations
    WHERE employee_id = $1
    ORDER BY created_at DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		var row Evaluation
		var kind, status string
		var evaluatorID *string
		if err := rows.Scan(&row.ID, &kind, &row.MatrixID, &row.EmployeeID, &evaluatorID,
			&status, &row.TotalWeightedScore, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		row.Kind = Kind(kind)
		row.Status = Status(status)
		if evaluatorID != nil {
			row.EvaluatorID = *evaluatorID
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) CreateEvaluation(ctx context.Context, kind Kind, matrixID, employeeID, evaluatorID string) (string, error) {
	var evaluator any
	if evaluatorID != "" {
		evaluator = evaluatorID
	}
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluations (kind, matrix_id, employee_id, evaluator_id, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, string(kind), matrixID, employeeID, evaluator, string(StatusDraft)).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateStatus(ctx context.Context, evaluationID string, status Status) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET status = $1, updated_at = now()
    WHERE id = $2
  `, string(status), evaluationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvaluationNotFound
	}
	return nil
}

// ReplaceScores swaps the evaluation's score rows and total in a single
// transaction. A failure rolls everything back, leaving the prior scores
// intact.
func (s *Store) ReplaceScores(ctx context.Context, evaluationID string, scores []CriterionScore, total float64) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM criterion_scores WHERE evaluation_id = $1", evaluationID); err != nil {
		return err
	}

	for _, score := range scores {
		if _, err := tx.Exec(ctx, `
      INSERT INTO criterion_scores
        (evaluation_id, criterion_id, achievement_percentage, weight_at_evaluation, normalized_score, final_weighted_score, comments)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, score.EvaluationID, score.CriterionID, score.AchievementPercentage,
			score.WeightAtEvaluation, score.NormalizedScore, score.FinalWeightedScore, score.Comments); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, `
    UPDATE evaluations
    SET total_weighted_score = $1, updated_at = now()
    WHERE id = $2
  `, total, evaluationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvaluationNotFound
	}

	return tx.Commit(ctx)
}

func (s *Store) ScoresByEvaluation(ctx context.Context, evaluationID string) ([]CriterionScore, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT evaluation_id, criterion_id, achievement_percentage, weight_at_evaluation, normalized_score, final_weighted_score, comments
    FROM criterion_scores
    WHERE evaluation_id = $1
    ORDER BY criterion_id
  `, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CriterionScore
	for rows.Next() {
		var score CriterionScore
		if err := rows.Scan(&score.EvaluationID, &score.CriterionID, &score.AchievementPercentage,
			&score.WeightAtEvaluation, &score.NormalizedScore, &score.FinalWeightedScore, &score.Comments); err != nil {
			return nil, err
		}
		out = append(out, score)
	}
	return out, rows.Err()
}
