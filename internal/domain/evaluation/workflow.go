package evaluation

import "perfeval/internal/domain/hierarchy"

// IsTransitionAllowed reports whether the actor role may move an evaluation
// of the given kind from current to next. Any pair not enumerated here is
// denied.
func IsTransitionAllowed(current, next Status, role hierarchy.Role, kind Kind) bool {
	if current == next {
		return false
	}
	switch kind {
	case KindSelf:
		return selfTransitionAllowed(current, next, role)
	case KindEmployee:
		return employeeTransitionAllowed(current, next, role)
	}
	return false
}

func selfTransitionAllowed(current, next Status, role hierarchy.Role) bool {
	switch role {
	case hierarchy.RoleEmployee:
		// Submission is terminal for the owning employee.
		return current == StatusDraft && next == StatusSubmitted
	case hierarchy.RoleHR, hierarchy.RoleAdmin:
		switch {
		case current == StatusSubmitted && next == StatusDraft:
			return true
		case current == StatusDraft && next == StatusCancelled:
			return true
		}
		return false
	case hierarchy.RoleManager:
		return false
	}
	return false
}

func employeeTransitionAllowed(current, next Status, role hierarchy.Role) bool {
	switch role {
	case hierarchy.RoleManager:
		switch current {
		case StatusDraft:
			return next == StatusInProgress || next == StatusSubmitted
		case StatusInProgress:
			return next == StatusDraft || next == StatusSubmitted
		case StatusSubmitted:
			return next == StatusInProgress
		}
		return false
	case hierarchy.RoleEmployee:
		return current == StatusSubmitted && next == StatusAcknowledged
	case hierarchy.RoleHR, hierarchy.RoleAdmin:
		return hrTransitionAllowed(current, next)
	}
	return false
}

// HR and admin move freely among the working states, may validate a finished
// evaluation, and may cancel anything not already terminal.
func hrTransitionAllowed(current, next Status) bool {
	working := func(s Status) bool {
		return s == StatusDraft || s == StatusInProgress || s == StatusSubmitted || s == StatusAcknowledged
	}
	switch {
	case working(current) && working(next):
		return true
	case next == StatusValidated:
		return current == StatusSubmitted || current == StatusAcknowledged
	case next == StatusCancelled:
		return current != StatusValidated && current != StatusCancelled
	}
	return false
}
