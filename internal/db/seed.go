package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"perfeval/internal/domain/hierarchy"
)

// Seed installs a small demo dataset for local development. Every step is
// keyed on a stable natural key so reruns are no-ops.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := ensureEmployee(ctx, pool, "Ada", "Hale", "ada.hale@example.test", hierarchy.RoleAdmin, ""); err != nil {
		return err
	}
	hrID, err := ensureEmployee(ctx, pool, "Noor", "Sayed", "noor.sayed@example.test", hierarchy.RoleHR, "")
	if err != nil {
		return err
	}
	directorID, err := ensureEmployee(ctx, pool, "Femi", "Okafor", "femi.okafor@example.test", hierarchy.RoleManager, "")
	if err != nil {
		return err
	}
	managerID, err := ensureEmployee(ctx, pool, "Mara", "Lindt", "mara.lindt@example.test", hierarchy.RoleManager, directorID)
	if err != nil {
		return err
	}
	employeeID, err := ensureEmployee(ctx, pool, "Jon", "Petersen", "jon.petersen@example.test", hierarchy.RoleEmployee, managerID)
	if err != nil {
		return err
	}
	if err := ensureEdge(ctx, pool, directorID, managerID); err != nil {
		return err
	}
	if err := ensureEdge(ctx, pool, managerID, employeeID); err != nil {
		return err
	}

	matrixID, err := ensureMatrix(ctx, pool, "Engineering FY Review", hrID)
	if err != nil {
		return err
	}
	if err := ensureCriteria(ctx, pool, matrixID); err != nil {
		return err
	}
	return ensureApplicability(ctx, pool, matrixID, employeeID)
}

func ensureEmployee(ctx context.Context, pool *pgxpool.Pool, firstName, lastName, email string, role hierarchy.Role, managerID string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM employees WHERE email = $1", email).Scan(&id)
	if err == nil {
		return id, nil
	}

	var manager any
	if managerID != "" {
		manager = managerID
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO employees (first_name, last_name, email, manager_id, role)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, firstName, lastName, email, manager, string(role)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureEdge(ctx context.Context, pool *pgxpool.Pool, managerID, employeeID string) error {
	_, err := pool.Exec(ctx, `
    INSERT INTO hierarchy_edges (manager_id, employee_id, status)
    VALUES ($1,$2,$3)
    ON CONFLICT (manager_id, employee_id) DO NOTHING
  `, managerID, employeeID, hierarchy.EdgeStatusActive)
	return err
}

func ensureMatrix(ctx context.Context, pool *pgxpool.Pool, title, createdBy string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM evaluation_matrices WHERE title = $1", title).Scan(&id)
	if err == nil {
		return id, nil
	}

	now := time.Now().UTC()
	validFrom := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	validTo := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	err = pool.QueryRow(ctx, `
    INSERT INTO evaluation_matrices (title, valid_from, valid_to, status, created_by)
    VALUES ($1,$2,$3,'active',$4)
    RETURNING id
  `, title, validFrom, validTo, createdBy).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureCriteria(ctx context.Context, pool *pgxpool.Pool, matrixID string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM criteria WHERE matrix_id = $1", matrixID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seedCriteria := []struct {
		name     string
		weight   float64
		critical bool
	}{
		{"Delivery quality", 40, false},
		{"Collaboration", 30, false},
		{"Safety compliance", 30, true},
	}
	for _, criterion := range seedCriteria {
		_, err := pool.Exec(ctx, `
      INSERT INTO criteria (matrix_id, name, weight, is_competency_gap_critical, min_score_possible, max_score_possible)
      VALUES ($1,$2,$3,$4,0,100)
    `, matrixID, criterion.name, criterion.weight, criterion.critical)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureApplicability(ctx context.Context, pool *pgxpool.Pool, matrixID, employeeID string) error {
	var id string
	err := pool.QueryRow(ctx, `
    SELECT id FROM matrix_applicability
    WHERE matrix_id = $1 AND employee_id = $2 AND status = 'active'
  `, matrixID, employeeID).Scan(&id)
	if err == nil {
		return nil
	}

	now := time.Now().UTC()
	validFrom := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	validTo := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	_, err = pool.Exec(ctx, `
    INSERT INTO matrix_applicability (matrix_id, employee_id, valid_from, valid_to, status)
    VALUES ($1,$2,$3,$4,'active')
  `, matrixID, employeeID, validFrom, validTo)
	return err
}
