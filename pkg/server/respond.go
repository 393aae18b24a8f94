package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/relaygw/relay/pkg/authgate"
	"github.com/relaygw/relay/pkg/config"
	"github.com/relaygw/relay/pkg/dynamickey"
	"github.com/relaygw/relay/pkg/persistence"
	"github.com/relaygw/relay/pkg/proxyregistry"
	"github.com/relaygw/relay/pkg/streaming"
	"github.com/relaygw/relay/pkg/tokenpool"
	"github.com/relaygw/relay/pkg/translator"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// retryAfterSeconds is the Retry-After value (§7 "token_busy, token_disabled
// → 429 with retry-after") sent with both 429 classifications below. A
// fixed, short value is appropriate here: the caller should simply try a
// different token or wait for the current lease to clear, not back off for
// long.
const retryAfterSeconds = "1"

// writeError renders err as the uniform error body (§7), classifying
// it by type into an HTTP status the way each component's error types
// already document.
func writeError(w http.ResponseWriter, err error) {
	status, code, name, message := classifyError(err)
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	writeJSON(w, status, translator.RenderError(status, code, name, message))
}

func classifyError(err error) (status int, code *int, name, message string) {
	var unauthorized *authgate.UnauthorizedError
	var forbidden *authgate.ForbiddenError
	var badRequest *translator.BadRequestError
	var modelNotAllowed *translator.ModelNotAllowedError
	var frameCorrupt *translator.FrameCorruptError
	var vendorErr *translator.VendorErrorFrame
	var upstreamStatus *translator.UpstreamStatusError
	var unknownAlias *tokenpool.UnknownAliasError
	var dupAlias *tokenpool.DuplicateAliasError
	var emptyMerge *tokenpool.EmptyMergeError
	var tokenNotFound *tokenpool.TokenNotFoundError
	var tokenBusy *tokenpool.TokenBusyError
	var tokenDisabled *tokenpool.TokenDisabledError
	var invalidToken *tokenpool.InvalidTokenError
	var invalidKey *dynamickey.InvalidKeyError
	var unknownProxy *proxyregistry.UnknownNameError
	var invalidURL *proxyregistry.InvalidURLError
	var badMagic *persistence.BadMagicError
	var unknownVersion *persistence.UnknownVersionError
	var hashMismatch *config.HashMismatchError
	var timeoutErr *streaming.TimeoutError
	var cancelledErr *streaming.ClientCancelledError

	switch {
	case errors.As(err, &cancelledErr):
		return http.StatusBadGateway, nil, "client_cancelled", cancelledErr.Error()
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout, nil, string(timeoutErr.Kind), timeoutErr.Error()
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, nil, "unauthorized", unauthorized.Error()
	case errors.As(err, &forbidden):
		return http.StatusForbidden, nil, "forbidden", forbidden.Error()
	case errors.As(err, &badRequest):
		return http.StatusBadRequest, nil, "bad_request", badRequest.Error()
	case errors.As(err, &modelNotAllowed):
		return http.StatusBadRequest, nil, "model_not_allowed", modelNotAllowed.Error()
	case errors.As(err, &frameCorrupt):
		return http.StatusBadGateway, nil, "upstream_frame_corrupt", frameCorrupt.Error()
	case errors.As(err, &vendorErr):
		if vendorErr.IsTokenExpired() {
			return http.StatusUnauthorized, nil, "token_expired", vendorErr.Error()
		}
		return http.StatusBadGateway, nil, "upstream_error", vendorErr.Error()
	case errors.As(err, &upstreamStatus):
		return http.StatusBadGateway, nil, "upstream_status", upstreamStatus.Error()
	case errors.As(err, &unknownAlias):
		return http.StatusNotFound, nil, "unknown_alias", unknownAlias.Error()
	case errors.As(err, &dupAlias):
		return http.StatusConflict, nil, "duplicate_alias", dupAlias.Error()
	case errors.As(err, &emptyMerge):
		return http.StatusBadRequest, nil, "empty_merge", emptyMerge.Error()
	case errors.As(err, &tokenNotFound):
		return http.StatusNotFound, nil, "token_not_found", tokenNotFound.Error()
	case errors.As(err, &tokenBusy):
		return http.StatusTooManyRequests, nil, "token_busy", tokenBusy.Error()
	case errors.As(err, &tokenDisabled):
		return http.StatusTooManyRequests, nil, "token_disabled", tokenDisabled.Error()
	case errors.As(err, &invalidToken):
		return http.StatusBadRequest, nil, "invalid_token", invalidToken.Error()
	case errors.As(err, &invalidKey):
		return http.StatusBadRequest, nil, "invalid_key", invalidKey.Error()
	case errors.As(err, &unknownProxy):
		return http.StatusNotFound, nil, "unknown_proxy", unknownProxy.Error()
	case errors.As(err, &invalidURL):
		return http.StatusBadRequest, nil, "invalid_proxy_url", invalidURL.Error()
	case errors.As(err, &badMagic):
		return http.StatusInternalServerError, nil, "corrupt_store", badMagic.Error()
	case errors.As(err, &unknownVersion):
		return http.StatusInternalServerError, nil, "corrupt_store", unknownVersion.Error()
	case errors.As(err, &hashMismatch):
		return http.StatusConflict, nil, "hash_mismatch", hashMismatch.Error()
	default:
		return http.StatusInternalServerError, nil, "internal", err.Error()
	}
}
