// Package authgate implements the auth gate (C10): it maps the bearer
// credential a client presents to either admin access, shared-pool access,
// or a specific leased token resolved from a dynamic key.
package authgate
