package access

// Decision is the internal tagged outcome of an authorization check. At the
// public boundary it projects to a plain bool so a caller probing for an
// entity cannot distinguish "does not exist" from "not yours".
type Decision int

const (
	NotFound Decision = iota
	Denied
	Allowed
)

func (d Decision) Bool() bool {
	return d == Allowed
}

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	}
	return "not_found"
}
