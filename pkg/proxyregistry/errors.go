package proxyregistry

import "fmt"

// UnknownNameError is returned when an operation targets a proxy entry that
// does not exist.
type UnknownNameError struct {
	Name string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("proxyregistry: unknown proxy %q", e.Name)
}

// InvalidURLError is returned when Set/Add is given an http_url value that
// does not parse as an absolute http(s) URL.
type InvalidURLError struct {
	Value string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("proxyregistry: invalid proxy URL %q: must be an absolute http or https URL", e.Value)
}
