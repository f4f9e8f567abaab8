package matrix

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// weightSumTolerance absorbs float drift when checking the 100-point budget.
const weightSumTolerance = 0.001

// WindowContains reports whether day falls inside [from, to], comparing by
// calendar date (inclusive bounds).
func WindowContains(from, to, day time.Time) bool {
	dayOnly := truncateToDate(day)
	return !dayOnly.Before(truncateToDate(from)) && !dayOnly.After(truncateToDate(to))
}

func truncateToDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CurrentlyApplies reports whether this applicability row makes its matrix
// assignable on the given day.
func (a Applicability) CurrentlyApplies(now time.Time) bool {
	return a.Status == ApplicabilityStatusActive && WindowContains(a.ValidFrom, a.ValidTo, now)
}

func ValidateWindow(from, to time.Time) error {
	if to.Before(from) {
		return ErrWindowOrder
	}
	return nil
}

// ValidateCriteria enforces the matrix-write-time invariants: every weight in
// (0, 100], bounds 0 <= min <= max <= 100, and weights summing to 100. The sum
// is deliberately not re-checked at scoring time.
func ValidateCriteria(criteria []CriterionInput) error {
	if len(criteria) == 0 {
		return ErrNoCriteria
	}

	var sum float64
	for index, criterion := range criteria {
		if strings.TrimSpace(criterion.Name) == "" {
			return fmt.Errorf("criterion %d: name is required", index)
		}
		if criterion.Weight <= 0 || criterion.Weight > 100 {
			return fmt.Errorf("criterion %d: %w", index, ErrWeightOutOfRange)
		}
		if criterion.MinScorePossible < 0 ||
			criterion.MinScorePossible > criterion.MaxScorePossible ||
			criterion.MaxScorePossible > 100 {
			return fmt.Errorf("criterion %d: %w", index, ErrScoreBounds)
		}
		sum += criterion.Weight
	}

	if math.Abs(sum-100) > weightSumTolerance {
		return fmt.Errorf("%w (got %.2f)", ErrWeightSum, sum)
	}
	return nil
}
