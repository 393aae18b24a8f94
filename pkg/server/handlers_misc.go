package server

import (
	"encoding/json"
	"math/big"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/relaygw/relay/pkg/authgate"
	"github.com/relaygw/relay/pkg/config"
	"github.com/relaygw/relay/pkg/dynamickey"
	"github.com/relaygw/relay/pkg/fingerprint"
	"github.com/relaygw/relay/pkg/recorder"
	"github.com/relaygw/relay/pkg/translator"
)

// buildKeyRequest is the POST /build-key body: a numeric identifier plus
// the optional override block a dynamic key may carry (§3 "dynamic
// key").
type buildKeyRequest struct {
	Numeric   string        `json:"numeric"`
	Alias     string        `json:"alias,omitempty"`
	Format    string        `json:"format,omitempty"` // "sk" (default) | "numeric_b64" | "numeric_decimal"
	Overrides *overridesDTO `json:"overrides,omitempty"`
}

// handleBuildKey implements POST /build-key: mints one of the three
// textual encodings of a dynamic key around a numeric identifier, and — if
// alias is given — binds that numeric to the alias so a future bearer
// carrying this key resolves to the right pooled token (§3 "Dynamic
// key lookup").
func (s *Server) handleBuildKey(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var req buildKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}

	numeric, ok := new(big.Int).SetString(req.Numeric, 10)
	if !ok || numeric.Sign() < 0 {
		writeError(w, &translator.BadRequestError{Reason: "numeric must be a non-negative decimal integer"})
		return
	}

	payload := dynamickey.Payload{Numeric: numeric}
	if req.Overrides != nil {
		payload.Overrides = req.Overrides.toDynamicKey()
	}

	var key string
	var err error
	switch req.Format {
	case "numeric_b64":
		key, err = dynamickey.EncodeNumericB64(payload)
	case "numeric_decimal":
		key, err = dynamickey.EncodeNumericDecimal(payload)
	case "", "sk":
		key, err = dynamickey.Encode(payload)
	default:
		writeError(w, &translator.BadRequestError{Reason: "unknown format: " + req.Format})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Alias != "" {
		if err := s.pool.BindNumeric(numeric, req.Alias); err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"key": key, "numeric": numeric.String()})
}

// handleConfigVersionGet implements POST /config-version/get: fetches a
// fresh vendor config_version for the named token, the same call
// /tokens/refresh makes on a schedule (§4.8).
func (s *Server) handleConfigVersionGet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Alias string `json:"alias"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}

	rec, err := s.pool.Get(body.Alias)
	if err != nil {
		writeError(w, err)
		return
	}

	version, err := s.vendor.FetchConfigVersion(r.Context(), rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"config_version": version})
}

// handleConfigGet implements GET /config/get: returns the current
// operator-editable text blob and its CAS hash tag.
func (s *Server) handleConfigGet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	text, hash := s.blob.Get()
	writeJSON(w, http.StatusOK, map[string]string{"text": text, "hash": hash})
}

// handleConfigSet implements POST /config/set: a compare-and-swap write
// against the hash the caller last observed from /config/get.
func (s *Server) handleConfigSet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Text        string `json:"text"`
		IfMatchHash string `json:"if_match_hash,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}

	hash, err := s.blob.Set(body.Text, body.IfMatchHash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hash": hash})
}

// handleConfigReload implements POST /config/reload: re-reads the
// gateway's own YAML configuration file from disk and env overlay,
// swapping the process-wide singleton on success. Mirrors the fsnotify
// watcher's own path in pkg/config/watch.go but as an explicit,
// synchronous operator action.
func (s *Server) handleConfigReload(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	if s.cfgPath == "" {
		writeError(w, &translator.BadRequestError{Reason: "no config file path configured for this process"})
		return
	}
	if err := config.ReloadConfig(s.cfgPath); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "reload failed: " + err.Error()})
		return
	}
	s.cfg = config.GetConfig()
	writeJSON(w, http.StatusOK, map[string]bool{"reloaded": true})
}

// ownTokenKey returns the hashed token_key authCtx's lease is bound to, and
// whether authCtx carries one at all — admin contexts hold no lease and
// are unscoped (§4.9 "Privacy": "Administrators may see all records").
func ownTokenKey(authCtx authgate.Context) (string, bool) {
	if authCtx.Lease == nil {
		return "", false
	}
	return recorder.TokenKey(authCtx.Lease.Token().PrimaryToken), true
}

// scopeFilter ANDs base with a restriction to authCtx's own token_key when
// authCtx is not admin, so a non-admin caller's requested filter can never
// widen past their own tokens (§4.9 "Privacy").
func scopeFilter(authCtx authgate.Context, base recorder.Filter) recorder.Filter {
	key, scoped := ownTokenKey(authCtx)
	if !scoped {
		return base
	}
	own := recorder.ByTokenKeys(key)
	if base == nil {
		return own
	}
	return func(rec recorder.LogRecord) bool { return own(rec) && base(rec) }
}

// handleLogs implements GET /logs: the telemetry ring, unfiltered for an
// admin bearer and scoped to the caller's own token_key otherwise (§4.9
// "Privacy").
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request, authCtx authgate.Context) {
	writeJSON(w, http.StatusOK, map[string]any{"records": s.ring.Query(scopeFilter(authCtx, nil)), "len": s.ring.Len()})
}

// handleLogsGet implements POST /logs/get: the ring filtered to the
// requested model, if given, further scoped to the caller's own token_key
// for a non-admin bearer (§4.9 "Privacy").
func (s *Server) handleLogsGet(w http.ResponseWriter, r *http.Request, authCtx authgate.Context) {
	var body struct {
		Model string `json:"model,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	var filter recorder.Filter
	if body.Model != "" {
		filter = func(rec recorder.LogRecord) bool { return rec.Model == body.Model }
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": s.ring.Query(scopeFilter(authCtx, filter))})
}

// handleLogsTokensGet implements POST /logs/tokens/get: the ring scoped to
// one or more token_key values (§4.9 "Privacy" — the hashed key, never
// the raw secret, is what a caller supplies here). An admin bearer gets
// exactly the requested keys; a non-admin bearer's request is overridden
// with their own lease's token_key, so they can never query another
// caller's tokens by passing a different key.
func (s *Server) handleLogsTokensGet(w http.ResponseWriter, r *http.Request, authCtx authgate.Context) {
	var body struct {
		TokenKeys []string `json:"token_keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	keys := body.TokenKeys
	if key, scoped := ownTokenKey(authCtx); scoped {
		keys = []string{key}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": s.ring.Query(recorder.ByTokenKeys(keys...))})
}

// handleGenUUID implements GET /gen-uuid: a fresh random UUID, for seeding
// a token's session_id outside of /tokens/add's own auto-generation.
func (s *Server) handleGenUUID(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"uuid": uuid.NewString()})
}

// handleGenHash implements GET /gen-hash: a fresh 32-byte secret, hex
// encoded, suitable for either checksum half or a client key.
func (s *Server) handleGenHash(w http.ResponseWriter, r *http.Request) {
	secret, err := fingerprint.GenerateChecksumSecret()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hash": secret})
}

// handleGenChecksum implements POST /gen-checksum: renders the
// x-cursor-checksum header value for a given checksum pair, as the vendor
// client would compute it for the current instant.
func (s *Server) handleGenChecksum(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ChecksumFirst  string `json:"checksum_first"`
		ChecksumSecond string `json:"checksum_second"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	checksum, err := fingerprint.BuildChecksumHeader(body.ChecksumFirst, body.ChecksumSecond, time.Now().UnixMilli())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"checksum": checksum})
}

// healthResponse is the GET /health body: process uptime, request
// counters, pool occupancy, and a memstats snapshot.
type healthResponse struct {
	Status    string `json:"status"`
	UptimeS   float64 `json:"uptime_s"`
	Requests  struct {
		Total   uint64 `json:"total"`
		Success uint64 `json:"success"`
		Failure uint64 `json:"failure"`
	} `json:"requests"`
	Pool struct {
		Total    int `json:"total"`
		Enabled  int `json:"enabled"`
		InUse    int `json:"in_use"`
		Failing  int `json:"failing"`
	} `json:"pool"`
	Logs struct {
		Len int `json:"len"`
	} `json:"logs"`
	Memory struct {
		AllocBytes uint64 `json:"alloc_bytes"`
		NumGC      uint32 `json:"num_gc"`
	} `json:"memory"`
}

// handleHealth implements GET /health. No auth is required, as with
// /gen-uuid, /gen-hash, /gen-checksum, /ready and /version.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var resp healthResponse
	resp.Status = "ok"
	resp.UptimeS = time.Since(s.startedAt).Seconds()

	s.requests.mu.Lock()
	resp.Requests.Total = s.requests.total
	resp.Requests.Success = s.requests.success
	resp.Requests.Failure = s.requests.failure
	s.requests.mu.Unlock()

	for _, e := range s.pool.List() {
		resp.Pool.Total++
		if e.Record.Status.Enabled {
			resp.Pool.Enabled++
		}
		if e.Record.Status.Failing {
			resp.Pool.Failing++
		}
		if e.Record.InUse {
			resp.Pool.InUse++
		}
	}

	resp.Logs.Len = s.ring.Len()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	resp.Memory.AllocBytes = mem.Alloc
	resp.Memory.NumGC = mem.NumGC

	writeJSON(w, http.StatusOK, resp)
}
