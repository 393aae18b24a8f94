package authgate

import (
	"math/big"
	"testing"

	"github.com/relaygw/relay/pkg/dynamickey"
	"github.com/relaygw/relay/pkg/tokenpool"
)

func newPoolWithOneToken(t *testing.T, alias string, numeric *big.Int) *tokenpool.Pool {
	t.Helper()
	pool := tokenpool.New(nil, nil)
	pool.Add([]tokenpool.TokenRecord{{
		Alias: alias, PrimaryToken: "tok-" + alias,
		ChecksumFirst: "a", ChecksumSecond: "b", ClientKey: "c",
		Status: tokenpool.Status{Enabled: true},
	}}, true)
	if err := pool.BindNumeric(numeric, alias); err != nil {
		t.Fatalf("BindNumeric: %v", err)
	}
	return pool
}

func TestAuthenticateAdmin(t *testing.T) {
	g := New(Config{AdminToken: "admin-secret"}, tokenpool.New(nil, nil))
	ctx, err := g.Authenticate("admin-secret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !ctx.IsAdmin() {
		t.Fatalf("expected admin context")
	}
}

func TestAuthenticateSharedRoundRobin(t *testing.T) {
	pool := newPoolWithOneToken(t, "a1", big.NewInt(1))
	g := New(Config{SharedToken: "shared-secret"}, pool)
	ctx, err := g.Authenticate("shared-secret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if ctx.Kind != KindShared || ctx.Lease == nil {
		t.Fatalf("expected shared context with lease, got %+v", ctx)
	}
	ctx.Lease.Release()
}

func TestAuthenticateDynamicKey(t *testing.T) {
	numeric := big.NewInt(42)
	pool := newPoolWithOneToken(t, "a1", numeric)
	g := New(Config{}, pool)

	key, err := dynamickey.Encode(dynamickey.Payload{Numeric: numeric})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	ctx, err := g.Authenticate(key)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if ctx.Kind != KindDynamicKey || ctx.Lease.Alias() != "a1" {
		t.Fatalf("unexpected context: %+v", ctx)
	}
	ctx.Lease.Release()
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	g := New(Config{AdminToken: "x", SharedToken: "y"}, tokenpool.New(nil, nil))
	if _, err := g.Authenticate("not-a-real-bearer"); err == nil {
		t.Fatalf("expected error for unrecognized bearer")
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(Context{Kind: KindShared}, true); err == nil {
		t.Fatalf("expected ForbiddenError for non-admin context")
	}
	if err := RequireAdmin(Context{Kind: KindShared}, false); err != nil {
		t.Fatalf("unexpected error when not required: %v", err)
	}
}
