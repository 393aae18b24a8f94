package middleware

import (
	"context"
	"net/http"

	securitytls "github.com/relaygw/relay/pkg/security/tls"
)

// ClientIdentityMiddleware extracts the identity from an mTLS client
// certificate (per identitySource, see pkg/security/tls.ExtractClientIdentity)
// and stores it in the request context for handlers and logging to read.
// It is a no-op when the connection carries no client certificate — the
// listener's tls.Config.ClientAuth policy (require/request/verify_if_given)
// is what actually enforces whether one must be present.
//
// Example usage:
//
//	handler = ClientIdentityMiddleware(identitySource)(handler)
func ClientIdentityMiddleware(identitySource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := securitytls.GetClientIdentity(r, identitySource)
			if identity != "" {
				r = r.WithContext(context.WithValue(r.Context(), ClientIdentityKey, identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClientIdentity extracts the mTLS client identity from the context.
// Returns empty string if not found (no client certificate, or mTLS disabled).
func GetClientIdentity(ctx context.Context) string {
	if identity, ok := ctx.Value(ClientIdentityKey).(string); ok {
		return identity
	}
	return ""
}
