package evaluation

import (
	"testing"

	"perfeval/internal/domain/hierarchy"
)

func TestSelfEvaluationEmployeeTransitions(t *testing.T) {
	if !IsTransitionAllowed(StatusDraft, StatusSubmitted, hierarchy.RoleEmployee, KindSelf) {
		t.Fatal("employee must be able to submit a draft self-evaluation")
	}
	if IsTransitionAllowed(StatusSubmitted, StatusDraft, hierarchy.RoleEmployee, KindSelf) {
		t.Fatal("submission is terminal for the employee")
	}
	if IsTransitionAllowed(StatusSubmitted, StatusCancelled, hierarchy.RoleEmployee, KindSelf) {
		t.Fatal("employees cannot cancel a submitted self-evaluation")
	}
}

func TestSelfEvaluationAdminRevert(t *testing.T) {
	if !IsTransitionAllowed(StatusSubmitted, StatusDraft, hierarchy.RoleAdmin, KindSelf) {
		t.Fatal("admin must be able to revert submitted to draft")
	}
	if !IsTransitionAllowed(StatusSubmitted, StatusDraft, hierarchy.RoleHR, KindSelf) {
		t.Fatal("hr must be able to revert submitted to draft")
	}
}

func TestSelfEvaluationManagerHasNoTransitions(t *testing.T) {
	for _, next := range []Status{StatusSubmitted, StatusDraft, StatusCancelled} {
		if IsTransitionAllowed(StatusDraft, next, hierarchy.RoleManager, KindSelf) {
			t.Fatalf("manager must not drive self-evaluations (draft -> %s)", next)
		}
	}
}

func TestEmployeeEvaluationManagerLoop(t *testing.T) {
	allowed := [][2]Status{
		{StatusDraft, StatusInProgress},
		{StatusInProgress, StatusDraft},
		{StatusInProgress, StatusSubmitted},
		{StatusSubmitted, StatusInProgress},
		{StatusDraft, StatusSubmitted},
	}
	for _, pair := range allowed {
		if !IsTransitionAllowed(pair[0], pair[1], hierarchy.RoleManager, KindEmployee) {
			t.Fatalf("manager transition %s -> %s should be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]Status{
		{StatusSubmitted, StatusDraft},
		{StatusSubmitted, StatusValidated},
		{StatusAcknowledged, StatusValidated},
		{StatusDraft, StatusCancelled},
		{StatusSubmitted, StatusAcknowledged},
	}
	for _, pair := range denied {
		if IsTransitionAllowed(pair[0], pair[1], hierarchy.RoleManager, KindEmployee) {
			t.Fatalf("manager transition %s -> %s must be denied", pair[0], pair[1])
		}
	}
}

func TestEmployeeEvaluationEmployeeAcknowledges(t *testing.T) {
	if !IsTransitionAllowed(StatusSubmitted, StatusAcknowledged, hierarchy.RoleEmployee, KindEmployee) {
		t.Fatal("employee must be able to acknowledge a submitted evaluation")
	}
	if IsTransitionAllowed(StatusDraft, StatusSubmitted, hierarchy.RoleEmployee, KindEmployee) {
		t.Fatal("employee cannot submit a manager evaluation")
	}
}

func TestEmployeeEvaluationHRFreedom(t *testing.T) {
	working := []Status{StatusDraft, StatusInProgress, StatusSubmitted, StatusAcknowledged}
	for _, from := range working {
		for _, to := range working {
			if from == to {
				continue
			}
			if !IsTransitionAllowed(from, to, hierarchy.RoleAdmin, KindEmployee) {
				t.Fatalf("admin transition %s -> %s should be allowed", from, to)
			}
		}
	}

	if !IsTransitionAllowed(StatusSubmitted, StatusValidated, hierarchy.RoleHR, KindEmployee) {
		t.Fatal("hr must be able to validate a submitted evaluation")
	}
	if !IsTransitionAllowed(StatusAcknowledged, StatusCancelled, hierarchy.RoleHR, KindEmployee) {
		t.Fatal("hr must be able to cancel before validation")
	}
	if IsTransitionAllowed(StatusValidated, StatusDraft, hierarchy.RoleHR, KindEmployee) {
		t.Fatal("validated is terminal even for hr")
	}
	if IsTransitionAllowed(StatusCancelled, StatusDraft, hierarchy.RoleHR, KindEmployee) {
		t.Fatal("cancelled is terminal even for hr")
	}
}

func TestNoOpTransitionDenied(t *testing.T) {
	if IsTransitionAllowed(StatusDraft, StatusDraft, hierarchy.RoleAdmin, KindEmployee) {
		t.Fatal("same-status transition must be denied")
	}
}
