package matrix

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) MatrixByID(ctx context.Context, matrixID string) (Matrix, bool, error) {
	var out Matrix
	var status string
	err := s.DB.QueryRow(ctx, `
    SELECT id, title, valid_from, valid_to, status, created_by
    FROM evaluation_matrices
    WHERE id = $1
  `, matrixID).Scan(&out.ID, &out.Title, &out.ValidFrom, &out.ValidTo, &status, &out.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return Matrix{}, false, nil
	}
	if err != nil {
		return Matrix{}, false, err
	}
	out.Status = Status(status)
	return out, true, nil
}

func (s *Store) ListMatrices(ctx context.Context) ([]Matrix, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, valid_from, valid_to, status, created_by
    FROM evaluation_matrices
    ORDER BY created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMatrices(rows)
}

func (s *Store) ListMatricesForEmployee(ctx context.Context, employeeID string, asOf time.Time) ([]Matrix, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT m.id, m.title, m.valid_from, m.valid_to, m.status, m.created_by
    FROM evaluation_matrices m
    JOIN matrix_applicability a ON a.matrix_id = m.id
    WHERE a.employee_id = $1
      AND a.status = $2
      AND a.valid_from <= $3 AND a.valid_to >= $3
    ORDER BY m.created_at DESC
  `, employeeID, string(ApplicabilityStatusActive), asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMatrices(rows)
}

func scanMatrices(rows pgx.Rows) ([]Matrix, error) {
	var out []Matrix
	for rows.Next() {
		var m Matrix
		var status string
		if err := rows.Scan(&m.ID, &m.Title, &m.ValidFrom, &m.ValidTo, &status, &m.CreatedBy); err != nil {
			return nil, err
		}
		m.Status = Status(status)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateMatrix(ctx context.Context, title string, validFrom, validTo time.Time, status Status, createdBy string) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_matrices (title, valid_from, valid_to, status, created_by)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, title, validFrom, validTo, string(status), createdBy).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateMatrix(ctx context.Context, matrixID, title string, validFrom, validTo time.Time, status Status) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_matrices
    SET title = $1, valid_from = $2, valid_to = $3, status = $4, updated_at = now()
    WHERE id = $5
  `, title, validFrom, validTo, string(status), matrixID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMatrixNotFound
	}
	return nil
}

func (s *Store) CriteriaByMatrix(ctx context.Context, matrixID string) ([]Criterion, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, matrix_id, name, weight, is_competency_gap_critical, min_score_possible, max_score_possible
    FROM criteria
    WHERE matrix_id = $1
    ORDER BY name
  `, matrixID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Criterion
	for rows.Next() {
		var c Criterion
		if err := rows.Scan(&c.ID, &c.MatrixID, &c.Name, &c.Weight, &c.IsCompetencyGapCritical, &c.MinScorePossible, &c.MaxScorePossible); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReplaceCriteria swaps the matrix's criterion set in one transaction so a
// failed write never leaves a partial set behind.
func (s *Store) ReplaceCriteria(ctx context.Context, matrixID string, criteria []CriterionInput) ([]Criterion, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM criteria WHERE matrix_id = $1", matrixID); err != nil {
		return nil, err
	}

	out := make([]Criterion, 0, len(criteria))
	for _, input := range criteria {
		var id string
		if err := tx.QueryRow(ctx, `
      INSERT INTO criteria (matrix_id, name, weight, is_competency_gap_critical, min_score_possible, max_score_possible)
      VALUES ($1,$2,$3,$4,$5,$6)
      RETURNING id
    `, matrixID, input.Name, input.Weight, input.IsCompetencyGapCritical, input.MinScorePossible, input.MaxScorePossible).Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, Criterion{
			ID:                      id,
			MatrixID:                matrixID,
			Name:                    input.Name,
			Weight:                  input.Weight,
			IsCompetencyGapCritical: input.IsCompetencyGapCritical,
			MinScorePossible:        input.MinScorePossible,
			MaxScorePossible:        input.MaxScorePossible,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ActiveApplicability(ctx context.Context, matrixID, employeeID string) (Applicability, bool, error) {
	var out Applicability
	var status string
	err := s.DB.QueryRow(ctx, `
    SELECT id, matrix_id, employee_id, valid_from, valid_to, status
    FROM matrix_applicability
    WHERE matrix_id = $1 AND employee_id = $2 AND status = $3
  `, matrixID, employeeID, string(ApplicabilityStatusActive)).Scan(
		&out.ID, &out.MatrixID, &out.EmployeeID, &out.ValidFrom, &out.ValidTo, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Applicability{}, false, nil
	}
	if err != nil {
		return Applicability{}, false, err
	}
	out.Status = ApplicabilityStatus(status)
	return out, true, nil
}

// ReplaceActiveApplicability retires any prior active row for the pair and
// inserts the new one in a single transaction, so the pair never loses its
// active row to a partial write.
func (s *Store) ReplaceActiveApplicability(ctx context.Context, matrixID, employeeID string, validFrom, validTo time.Time) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    UPDATE matrix_applicability
    SET status = $1
    WHERE matrix_id = $2 AND employee_id = $3 AND status = $4
  `, string(ApplicabilityStatusInactive), matrixID, employeeID, string(ApplicabilityStatusActive)); err != nil {
		return "", err
	}

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO matrix_applicability (matrix_id, employee_id, valid_from, valid_to, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, matrixID, employeeID, validFrom, validTo, string(ApplicabilityStatusActive)).Scan(&id); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DeactivateApplicability(ctx context.Context, matrixID, employeeID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE matrix_applicability
    SET status = $1
    WHERE matrix_id = $2 AND employee_id = $3 AND status = $4
  `, string(ApplicabilityStatusInactive), matrixID, employeeID, string(ApplicabilityStatusActive))
	return err
}
