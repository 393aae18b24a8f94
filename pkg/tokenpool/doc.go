// Package tokenpool manages the multi-tenant pool of vendor session
// credentials (TokenRecord): an ordered alias-keyed map plus a numeric
// secondary index used to resolve a dynamic key's pool-stable identifier
// back to the token that backs it.
//
// The pool is a single process-wide mutex-guarded structure (see
// DESIGN.md's concurrency ledger). Selection hands out a scoped Lease that
// marks the token in_use on acquire and clears it on release, guaranteed on
// every exit path.
package tokenpool
