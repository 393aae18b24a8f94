// Package persistence implements the external token-pool and proxy-registry
// store collaborators (§6 "Persisted state layout"): each snapshot is a
// versioned binary blob (magic + u16 version + JSON body) held in a
// single-row SQLite table, written atomically via a temp-file-plus-rename
// swap of the whole database file so a crash mid-write can never leave a
// half-written snapshot in place.
//
// TokenStore uses the cgo mattn/go-sqlite3 driver and ProxyStore uses the
// pure-Go modernc.org/sqlite driver, deliberately distinct drivers so the
// two stores do not share a link-time dependency.
package persistence
