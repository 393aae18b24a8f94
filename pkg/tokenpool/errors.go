package tokenpool

import "fmt"

// InvalidTokenError reports a syntactically malformed primary_token.
type InvalidTokenError struct {
	Reason string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("tokenpool: invalid token: %s", e.Reason)
}

// DuplicateAliasError is returned when set_alias targets an alias already
// in use.
type DuplicateAliasError struct {
	Alias string
}

func (e *DuplicateAliasError) Error() string {
	return fmt.Sprintf("tokenpool: alias %q already exists", e.Alias)
}

// UnknownAliasError is returned when an operation targets a missing alias.
type UnknownAliasError struct {
	Alias string
}

func (e *UnknownAliasError) Error() string {
	return fmt.Sprintf("tokenpool: unknown alias %q", e.Alias)
}

// EmptyMergeError is returned by Merge when the partial update carries no
// fields.
type EmptyMergeError struct{}

func (e *EmptyMergeError) Error() string { return "tokenpool: merge partial is empty" }

// TokenNotFoundError is returned by SelectFor when the dynamic key's
// numeric identifier does not resolve to any alias.
type TokenNotFoundError struct {
	Numeric string
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("tokenpool: no token for numeric identifier %s", e.Numeric)
}

// TokenBusyError is returned when the resolved token (and every token in
// its fallback cohort) is already in use.
type TokenBusyError struct {
	Alias string
}

func (e *TokenBusyError) Error() string {
	return fmt.Sprintf("tokenpool: token %q is busy", e.Alias)
}

// TokenDisabledError is returned when the resolved token (and every token
// in its fallback cohort) is disabled.
type TokenDisabledError struct {
	Alias string
}

func (e *TokenDisabledError) Error() string {
	return fmt.Sprintf("tokenpool: token %q is disabled", e.Alias)
}
