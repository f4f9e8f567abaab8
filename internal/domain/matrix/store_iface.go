package matrix

import (
	"context"
	"time"
)

type StoreAPI interface {
	MatrixByID(ctx context.Context, matrixID string) (Matrix, bool, error)
	ListMatrices(ctx context.Context) ([]Matrix, error)
	ListMatricesForEmployee(ctx context.Context, employeeID string, asOf time.Time) ([]Matrix, error)
	CreateMatrix(ctx context.Context, title string, validFrom, validTo time.Time, status Status, createdBy string) (string, error)
	UpdateMatrix(ctx context.Context, matrixID, title string, validFrom, validTo time.Time, status Status) error
	CriteriaByMatrix(ctx context.Context, matrixID string) ([]Criterion, error)
	ReplaceCriteria(ctx context.Context, matrixID string, criteria []CriterionInput) ([]Criterion, error)
	ActiveApplicability(ctx context.Context, matrixID, employeeID string) (Applicability, bool, error)
	ReplaceActiveApplicability(ctx context.Context, matrixID, employeeID string, validFrom, validTo time.Time) (string, error)
	DeactivateApplicability(ctx context.Context, matrixID, employeeID string) error
}
