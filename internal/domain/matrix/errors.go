package matrix

import "errors"

var (
	ErrMatrixNotFound   = errors.New("evaluation matrix not found")
	ErrNoCriteria       = errors.New("matrix must define at least one criterion")
	ErrWeightOutOfRange = errors.New("criterion weight must be greater than 0 and at most 100")
	ErrWeightSum        = errors.New("criterion weights must sum to 100")
	ErrScoreBounds      = errors.New("criterion score bounds must satisfy 0 <= min <= max <= 100")
	ErrWindowOrder      = errors.New("validFrom must be on or before validTo")
)
