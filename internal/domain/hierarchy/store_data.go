package hierarchy

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

func (s *Store) EmployeeByID(ctx context.Context, employeeID string) (Employee, bool, error) {
	var out Employee
	var managerID *string
	var role string
	err := s.DB.QueryRow(ctx, `
    SELECT id, manager_id, department_id, business_unit_id, role, active
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&out.ID, &managerID, &out.DepartmentID, &out.BusinessUnitID, &role, &out.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, false, nil
	}
	if err != nil {
		return Employee{}, false, err
	}
	if managerID != nil {
		out.ManagerID = *managerID
	}
	parsed, ok := ParseRole(role)
	if !ok {
		parsed = RoleEmployee
	}
	out.Role = parsed
	return out, true, nil
}

func (s *Store) IsDirectManager(ctx context.Context, managerID, employeeID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM hierarchy_edges
    WHERE manager_id = $1 AND employee_id = $2 AND status = $3
  `, managerID, employeeID, EdgeStatusActive).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) DirectSubordinates(ctx context.Context, managerID string) ([]string, error) {
	return s.SubordinatesOfAll(ctx, []string{managerID})
}

func (s *Store) SubordinatesOfAll(ctx context.Context, managerIDs []string) ([]string, error) {
	if len(managerIDs) == 0 {
		return nil, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT employee_id
    FROM hierarchy_edges
    WHERE manager_id = ANY($1) AND status = $2
  `, managerIDs, EdgeStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
