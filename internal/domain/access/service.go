// Package access decides who may view, create or modify evaluations,
// self-evaluations and matrices. Read visibility flows up the management
// chain; write authority stays with the direct evaluator. HR and admin form
// a universal override layer distinct from hierarchy-derived authority.
package access

import (
	"context"

	"perfeval/internal/domain/evaluation"
	"perfeval/internal/domain/hierarchy"
	"perfeval/internal/domain/matrix"
)

type RoleSource interface {
	GetRoleInfo(ctx context.Context, employeeID string) (*hierarchy.RoleInfo, error)
	IsDirectManager(ctx context.Context, managerID, employeeID string) (bool, error)
	IsIndirectManager(ctx context.Context, managerID, employeeID string) (bool, error)
}

type EvaluationSource interface {
	EvaluationByID(ctx context.Context, evaluationID string) (evaluation.Evaluation, bool, error)
}

type MatrixSource interface {
	MatrixByID(ctx context.Context, matrixID string) (matrix.Matrix, bool, error)
	HasCurrentApplicability(ctx context.Context, matrixID, employeeID string) (bool, error)
}

type Engine struct {
	roles       RoleSource
	evaluations EvaluationSource
	matrices    MatrixSource
}

func NewEngine(roles RoleSource, evaluations EvaluationSource, matrices MatrixSource) *Engine {
	return &Engine{roles: roles, evaluations: evaluations, matrices: matrices}
}

// CanAccessEvaluation reports read visibility. For employee evaluations the
// subject, the direct evaluator and every indirect manager may read; for
// self-evaluations only the owning employee.
func (e *Engine) CanAccessEvaluation(ctx context.Context, userID, evaluationID string, kind evaluation.Kind) (bool, error) {
	decision, err := e.accessEvaluation(ctx, userID, evaluationID, kind)
	return decision.Bool(), err
}

func (e *Engine) accessEvaluation(ctx context.Context, userID, evaluationID string, kind evaluation.Kind) (Decision, error) {
	info, err := e.roles.GetRoleInfo(ctx, userID)
	if err != nil {
		return Denied, err
	}
	if info == nil {
		return Denied, nil
	}
	if info.Role.Elevated() {
		return Allowed, nil
	}

	record, found, err := e.evaluations.EvaluationByID(ctx, evaluationID)
	if err != nil {
		return Denied, err
	}
	if !found || record.Kind != kind {
		return NotFound, nil
	}

	switch kind {
	case evaluation.KindSelf:
		if userID == record.EmployeeID {
			return Allowed, nil
		}
		return Denied, nil
	case evaluation.KindEmployee:
		if userID == record.EmployeeID || userID == record.EvaluatorID {
			return Allowed, nil
		}
		indirect, err := e.roles.IsIndirectManager(ctx, userID, record.EmployeeID)
		if err != nil {
			return Denied, err
		}
		if indirect {
			return Allowed, nil
		}
		return Denied, nil
	}
	return Denied, nil
}

// CanModifyEvaluation reports write authority, optionally for a specific
// requested status. Indirect managers never qualify: access does not imply
// modify.
func (e *Engine) CanModifyEvaluation(ctx context.Context, userID, evaluationID string, kind evaluation.Kind, newStatus *evaluation.Status) (bool, error) {
	decision, err := e.modifyEvaluation(ctx, userID, evaluationID, kind, newStatus)
	return decision.Bool(), err
}

func (e *Engine) modifyEvaluation(ctx context.Context, userID, evaluationID string, kind evaluation.Kind, newStatus *evaluation.Status) (Decision, error) {
	info, err := e.roles.GetRoleInfo(ctx, userID)
	if err != nil {
		return Denied, err
	}
	if info == nil {
		return Denied, nil
	}
	if info.Role.Elevated() {
		return Allowed, nil
	}

	record, found, err := e.evaluations.EvaluationByID(ctx, evaluationID)
	if err != nil {
		return Denied, err
	}
	if !found || record.Kind != kind {
		return NotFound, nil
	}

	switch kind {
	case evaluation.KindEmployee:
		if userID != record.EvaluatorID {
			return Denied, nil
		}
		if record.Status == evaluation.StatusValidated || record.Status == evaluation.StatusCancelled {
			return Denied, nil
		}
		if newStatus != nil {
			// Validation and reverting to draft stay with HR.
			if *newStatus == evaluation.StatusValidated {
				return Denied, nil
			}
			if *newStatus == evaluation.StatusDraft && record.Status != evaluation.StatusDraft {
				return Denied, nil
			}
		}
		return Allowed, nil
	case evaluation.KindSelf:
		if userID != record.EmployeeID {
			return Denied, nil
		}
		if record.Status == evaluation.StatusSubmitted || record.Status == evaluation.StatusCancelled {
			return Denied, nil
		}
		if newStatus != nil && *newStatus == evaluation.StatusDraft && record.Status != evaluation.StatusDraft {
			return Denied, nil
		}
		return Allowed, nil
	}
	return Denied, nil
}

// CanCreateEvaluation allows HR/admin and the employee's direct manager.
// Indirect managers may read but never create.
func (e *Engine) CanCreateEvaluation(ctx context.Context, userID, employeeID string) (bool, error) {
	info, err := e.roles.GetRoleInfo(ctx, userID)
	if err != nil {
		return false, err
	}
	if info == nil {
		return false, nil
	}
	if info.Role.Elevated() {
		return true, nil
	}
	return e.roles.IsDirectManager(ctx, userID, employeeID)
}

// CanCreateSelfEvaluation requires an active applicability row for the
// (matrix, user) pair whose window contains today. There is no override:
// even HR self-evaluates only against an assigned matrix.
func (e *Engine) CanCreateSelfEvaluation(ctx context.Context, userID, matrixID string) (bool, error) {
	info, err := e.roles.GetRoleInfo(ctx, userID)
	if err != nil {
		return false, err
	}
	if info == nil {
		return false, nil
	}
	return e.matrices.HasCurrentApplicability(ctx, matrixID, userID)
}

// CanAccessMatrix: HR/admin always; everyone else needs a current active
// applicability row.
func (e *Engine) CanAccessMatrix(ctx context.Context, actingEmployeeID, matrixID string) (bool, error) {
	decision, err := e.accessMatrix(ctx, actingEmployeeID, matrixID)
	return decision.Bool(), err
}

func (e *Engine) accessMatrix(ctx context.Context, actingEmployeeID, matrixID string) (Decision, error) {
	info, err := e.roles.GetRoleInfo(ctx, actingEmployeeID)
	if err != nil {
		return Denied, err
	}
	if info == nil {
		return Denied, nil
	}
	if info.Role.Elevated() {
		return Allowed, nil
	}

	if _, found, err := e.matrices.MatrixByID(ctx, matrixID); err != nil {
		return Denied, err
	} else if !found {
		return NotFound, nil
	}

	applies, err := e.matrices.HasCurrentApplicability(ctx, matrixID, actingEmployeeID)
	if err != nil {
		return Denied, err
	}
	if applies {
		return Allowed, nil
	}
	return Denied, nil
}

// CanManageMatrix: HR/admin always; otherwise ownership, not hierarchy — the
// matrix creator manages it.
func (e *Engine) CanManageMatrix(ctx context.Context, actingEmployeeID, matrixID string) (bool, error) {
	decision, err := e.manageMatrix(ctx, actingEmployeeID, matrixID)
	return decision.Bool(), err
}

func (e *Engine) manageMatrix(ctx context.Context, actingEmployeeID, matrixID string) (Decision, error) {
	info, err := e.roles.GetRoleInfo(ctx, actingEmployeeID)
	if err != nil {
		return Denied, err
	}
	if info == nil {
		return Denied, nil
	}
	if info.Role.Elevated() {
		return Allowed, nil
	}

	record, found, err := e.matrices.MatrixByID(ctx, matrixID)
	if err != nil {
		return Denied, err
	}
	if !found {
		return NotFound, nil
	}
	if record.CreatedBy == actingEmployeeID {
		return Allowed, nil
	}
	return Denied, nil
}
