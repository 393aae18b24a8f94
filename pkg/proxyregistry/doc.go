// Package proxyregistry implements the named-proxy registry (C6): entries
// of variant none/system/http_url keyed by name, with one "general" default
// used by tokens that carry no explicit proxy_name override.
//
// Each distinct http_url entry is backed by a single shared *http.Client so
// concurrent requests against the same upstream proxy reuse pooled TCP
// connections, following the connection-pooling convention of
// pkg/providers/http_provider.go's NewHTTPProvider.
package proxyregistry
