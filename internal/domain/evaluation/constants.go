package evaluation

// Kind distinguishes manager-authored evaluations from self-evaluations.
type Kind string

const (
	KindEmployee Kind = "employee"
	KindSelf     Kind = "self"
)

func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindEmployee, KindSelf:
		return Kind(value), true
	}
	return "", false
}

// Status is the closed evaluation lifecycle enum. Self-evaluations only use
// draft, submitted and cancelled.
type Status string

const (
	StatusDraft        Status = "draft"
	StatusInProgress   Status = "in_progress"
	StatusSubmitted    Status = "submitted"
	StatusAcknowledged Status = "acknowledged"
	StatusValidated    Status = "validated"
	StatusCancelled    Status = "cancelled"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusDraft, StatusInProgress, StatusSubmitted, StatusAcknowledged, StatusValidated, StatusCancelled:
		return Status(value), true
	}
	return "", false
}
