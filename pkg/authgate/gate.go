package authgate

import (
	"crypto/subtle"

	"github.com/relaygw/relay/pkg/dynamickey"
	"github.com/relaygw/relay/pkg/tokenpool"
)

// Kind identifies which of the three bearer forms authenticated the
// request (§4.10).
type Kind int

const (
	KindAdmin Kind = iota
	KindShared
	KindDynamicKey
)

// Config carries the two configurable bearer values the gate matches
// against, in order (§4.10).
type Config struct {
	AdminToken  string
	SharedToken string
}

// Gate is the process-wide auth gate (C10). It holds no mutable state of
// its own; every check reads through to the token pool.
type Gate struct {
	cfg  Config
	pool *tokenpool.Pool
}

// New constructs a Gate bound to cfg and pool.
func New(cfg Config, pool *tokenpool.Pool) *Gate {
	return &Gate{cfg: cfg, pool: pool}
}

// Context is what a successful Authenticate call hands to the rest of the
// request pipeline: which kind of bearer it was, and — for shared/dynamic
// key bearers — a live lease on the backing token. Admin bearers carry no
// lease; admin endpoints operate on the pool directly.
type Context struct {
	Kind  Kind
	Lease *tokenpool.Lease
}

// IsAdmin reports whether this context carries full admin privilege.
func (c Context) IsAdmin() bool { return c.Kind == KindAdmin }

// constantTimeEqual compares two bearer values without leaking timing
// information about where they first differ.
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Authenticate matches bearer against, in order: the admin token, the
// shared token, then a dynamic key decode (§4.10). A matched shared
// or dynamic-key bearer acquires a token lease immediately; callers must
// Release it (via Context.Lease) when the request ends.
func (g *Gate) Authenticate(bearer string) (Context, error) {
	if bearer == "" {
		return Context{}, &UnauthorizedError{Reason: "missing bearer"}
	}

	if g.cfg.AdminToken != "" && constantTimeEqual(bearer, g.cfg.AdminToken) {
		return Context{Kind: KindAdmin}, nil
	}

	if g.cfg.SharedToken != "" && constantTimeEqual(bearer, g.cfg.SharedToken) {
		lease, err := g.pool.SelectRoundRobin()
		if err != nil {
			return Context{}, err
		}
		return Context{Kind: KindShared, Lease: lease}, nil
	}

	payload, err := dynamickey.Decode(bearer)
	if err != nil {
		return Context{}, &UnauthorizedError{Reason: "not admin, shared, or a valid dynamic key"}
	}

	lease, err := g.pool.SelectFor(payload.Numeric, toPoolOverrides(payload.Overrides))
	if err != nil {
		return Context{}, err
	}
	return Context{Kind: KindDynamicKey, Lease: lease}, nil
}

func toPoolOverrides(o dynamickey.Overrides) tokenpool.Overrides {
	out := tokenpool.Overrides{
		ProxyName:            o.ProxyName,
		Timezone:             o.Timezone,
		DisableVision:        o.DisableVision,
		EnableSlowPool:       o.EnableSlowPool,
		IncludeWebReferences: o.IncludeWebReferences,
	}
	if o.GCPPHost != nil {
		host := tokenpool.GCPPHost(int(*o.GCPPHost) + 1) // dynamickey has no "unset" zero value; pool does
		out.GCPPHost = &host
	}
	return out
}

// RequireAdmin is a convenience check for endpoints gated by the
// SHARE_AUTH_TOKEN configuration option (/build-key, /config-version/get):
// when required is true, only an admin Context may proceed.
func RequireAdmin(ctx Context, required bool) error {
	if required && !ctx.IsAdmin() {
		return &ForbiddenError{Reason: "admin bearer required"}
	}
	return nil
}
