package matrix

import (
	"context"
	"time"
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) MatrixByID(ctx context.Context, matrixID string) (Matrix, bool, error) {
	return s.store.MatrixByID(ctx, matrixID)
}

func (s *Service) ListMatrices(ctx context.Context) ([]Matrix, error) {
	return s.store.ListMatrices(ctx)
}

func (s *Service) ListMatricesForEmployee(ctx context.Context, employeeID string) ([]Matrix, error) {
	return s.store.ListMatricesForEmployee(ctx, employeeID, s.now())
}

func (s *Service) CreateMatrix(ctx context.Context, title string, validFrom, validTo time.Time, status Status, createdBy string) (string, error) {
	if err := ValidateWindow(validFrom, validTo); err != nil {
		return "", err
	}
	return s.store.CreateMatrix(ctx, title, validFrom, validTo, status, createdBy)
}

func (s *Service) UpdateMatrix(ctx context.Context, matrixID, title string, validFrom, validTo time.Time, status Status) error {
	if err := ValidateWindow(validFrom, validTo); err != nil {
		return err
	}
	return s.store.UpdateMatrix(ctx, matrixID, title, validFrom, validTo, status)
}

func (s *Service) CriteriaByMatrix(ctx context.Context, matrixID string) ([]Criterion, error) {
	return s.store.CriteriaByMatrix(ctx, matrixID)
}

// ReplaceCriteria enforces the write-time criterion invariants (weight range,
// bounds, 100-point sum) before swapping the set atomically. Evaluations
// scored before the edit keep their snapshotted weights.
func (s *Service) ReplaceCriteria(ctx context.Context, matrixID string, criteria []CriterionInput) ([]Criterion, error) {
	if err := ValidateCriteria(criteria); err != nil {
		return nil, err
	}
	if _, found, err := s.store.MatrixByID(ctx, matrixID); err != nil {
		return nil, err
	} else if !found {
		return nil, ErrMatrixNotFound
	}
	return s.store.ReplaceCriteria(ctx, matrixID, criteria)
}

// HasCurrentApplicability reports whether the matrix governs the employee
// today: an active row whose window contains the current date.
func (s *Service) HasCurrentApplicability(ctx context.Context, matrixID, employeeID string) (bool, error) {
	applicability, found, err := s.store.ActiveApplicability(ctx, matrixID, employeeID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return applicability.CurrentlyApplies(s.now()), nil
}

// Assign activates the matrix for an employee. The store swaps any prior
// active row for the pair and the new one in a single transaction, keeping
// the at-most-one-active invariant through failures.
func (s *Service) Assign(ctx context.Context, matrixID, employeeID string, validFrom, validTo time.Time) (string, error) {
	if err := ValidateWindow(validFrom, validTo); err != nil {
		return "", err
	}
	if _, found, err := s.store.MatrixByID(ctx, matrixID); err != nil {
		return "", err
	} else if !found {
		return "", ErrMatrixNotFound
	}
	return s.store.ReplaceActiveApplicability(ctx, matrixID, employeeID, validFrom, validTo)
}

func (s *Service) Unassign(ctx context.Context, matrixID, employeeID string) error {
	return s.store.DeactivateApplicability(ctx, matrixID, employeeID)
}
