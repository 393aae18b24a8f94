package authgate

// UnauthorizedError is returned when the presented bearer matches none of
// the admin token, the shared token, or a decodable dynamic key.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason == "" {
		return "authgate: unauthorized"
	}
	return "authgate: unauthorized: " + e.Reason
}

// ForbiddenError is returned when the bearer is well-formed but does not
// carry the privilege an endpoint requires (e.g. a non-admin bearer hitting
// an admin-only pool endpoint).
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return "authgate: forbidden: " + e.Reason }
