package matrix

import "time"

// Status is the closed set of matrix lifecycle states.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusDraft, StatusActive, StatusInactive:
		return Status(value), true
	}
	return "", false
}

// ApplicabilityStatus is the closed set of assignment-row states.
type ApplicabilityStatus string

const (
	ApplicabilityStatusActive   ApplicabilityStatus = "active"
	ApplicabilityStatusInactive ApplicabilityStatus = "inactive"
)

type Matrix struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ValidFrom time.Time `json:"validFrom"`
	ValidTo   time.Time `json:"validTo"`
	Status    Status    `json:"status"`
	CreatedBy string    `json:"createdBy"`
}

type Criterion struct {
	ID                      string  `json:"id"`
	MatrixID                string  `json:"matrixId"`
	Name                    string  `json:"name"`
	Weight                  float64 `json:"weight"`
	IsCompetencyGapCritical bool    `json:"isCompetencyGapCritical"`
	MinScorePossible        float64 `json:"minScorePossible"`
	MaxScorePossible        float64 `json:"maxScorePossible"`
}

// CriterionInput is a criterion as submitted for a matrix write.
type CriterionInput struct {
	Name                    string  `json:"name"`
	Weight                  float64 `json:"weight"`
	IsCompetencyGapCritical bool    `json:"isCompetencyGapCritical"`
	MinScorePossible        float64 `json:"minScorePossible"`
	MaxScorePossible        float64 `json:"maxScorePossible"`
}

// Applicability assigns a matrix to an employee for a date window.
type Applicability struct {
	ID         string              `json:"id"`
	MatrixID   string              `json:"matrixId"`
	EmployeeID string              `json:"employeeId"`
	ValidFrom  time.Time           `json:"validFrom"`
	ValidTo    time.Time           `json:"validTo"`
	Status     ApplicabilityStatus `json:"status"`
}
