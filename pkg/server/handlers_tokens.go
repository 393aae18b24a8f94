package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/relaygw/relay/pkg/authgate"
	"github.com/relaygw/relay/pkg/fingerprint"
	"github.com/relaygw/relay/pkg/tokenpool"
	"github.com/relaygw/relay/pkg/translator"
)

// handleTokensAdd implements POST /tokens/add (§3 "Lifecycle").
// Missing secrets (checksum pair, client_key, session_id) are
// auto-generated the way the token's own TokenRecord lifecycle describes.
func (s *Server) handleTokensAdd(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Tokens  []tokenDTO `json:"tokens"`
		Enabled bool       `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}

	records := make([]tokenpool.TokenRecord, 0, len(body.Tokens))
	for _, d := range body.Tokens {
		rec := dtoToRecord(d)
		if err := fillAutoGeneratedSecrets(&rec); err != nil {
			writeError(w, err)
			return
		}
		records = append(records, rec)
	}

	result := s.pool.Add(records, body.Enabled)
	writeJSON(w, http.StatusOK, result)
}

// fillAutoGeneratedSecrets fills in any of the checksum pair, client_key,
// and session_id that the caller left blank (§3 "missing secrets are
// auto-generated: checksums from random 32-byte values, client_key from
// random 32 bytes, session_id from a fresh UUID").
func fillAutoGeneratedSecrets(rec *tokenpool.TokenRecord) error {
	if rec.ChecksumFirst == "" {
		v, err := fingerprint.GenerateChecksumSecret()
		if err != nil {
			return err
		}
		rec.ChecksumFirst = v
	}
	if rec.ChecksumSecond == "" {
		v, err := fingerprint.GenerateChecksumSecret()
		if err != nil {
			return err
		}
		rec.ChecksumSecond = v
	}
	if rec.ClientKey == "" {
		v, err := fingerprint.GenerateClientKey()
		if err != nil {
			return err
		}
		rec.ClientKey = v
	}
	if rec.SessionID == "" {
		rec.SessionID = uuid.NewString()
	}
	return nil
}

// handleTokensDel implements POST /tokens/del.
func (s *Server) handleTokensDel(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Aliases       []string `json:"aliases"`
		IncludeFailed bool     `json:"include_failed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	result := s.pool.Del(body.Aliases, body.IncludeFailed)
	writeJSON(w, http.StatusOK, result)
}

// handleTokensSet implements POST /tokens/set: a Merge into an existing
// alias of every non-empty field of the body. Fields left empty keep their
// current values, and the body's enabled/failing flags are not applied.
func (s *Server) handleTokensSet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var d tokenDTO
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	if err := s.pool.Merge(d.Alias, partialFromDTO(d)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"alias": d.Alias})
}

func partialFromDTO(d tokenDTO) tokenpool.Partial {
	p := tokenpool.Partial{}
	if d.PrimaryToken != "" {
		p.PrimaryToken = &d.PrimaryToken
	}
	if d.SecondaryToken != "" {
		p.SecondaryToken = &d.SecondaryToken
	}
	if d.ChecksumFirst != "" {
		p.ChecksumFirst = &d.ChecksumFirst
	}
	if d.ChecksumSecond != "" {
		p.ChecksumSecond = &d.ChecksumSecond
	}
	if d.ClientKey != "" {
		p.ClientKey = &d.ClientKey
	}
	if d.ConfigVersion != "" {
		p.ConfigVersion = &d.ConfigVersion
	}
	if d.SessionID != "" {
		p.SessionID = &d.SessionID
	}
	if d.ProxyName != "" {
		p.ProxyName = &d.ProxyName
	}
	if d.Timezone != "" {
		p.Timezone = &d.Timezone
	}
	if d.GCPPHost != "" {
		host := gcppHostFromString(d.GCPPHost)
		p.GCPPHost = &host
	}
	if d.User != "" {
		p.User = &d.User
	}
	if d.Stripe != "" {
		p.Stripe = &d.Stripe
	}
	if d.Usage != "" {
		p.Usage = &d.Usage
	}
	if d.Sessions != "" {
		p.Sessions = &d.Sessions
	}
	return p
}

// handleTokensGet implements POST /tokens/get: given a JSON body of
// {aliases: [...]} returns those records, or every record if aliases is
// omitted/empty (§6 "pool management; contracts per README").
func (s *Server) handleTokensGet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Aliases []string `json:"aliases"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if len(body.Aliases) == 0 {
		entries := s.pool.List()
		out := make([]tokenDTO, 0, len(entries))
		for _, e := range entries {
			out = append(out, recordToDTO(e.Alias, e.Record))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	out := make([]tokenDTO, 0, len(body.Aliases))
	for _, alias := range body.Aliases {
		rec, err := s.pool.Get(alias)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, recordToDTO(alias, rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleTokensMerge implements POST /tokens/merge.
func (s *Server) handleTokensMerge(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Alias   string   `json:"alias"`
		Partial tokenDTO `json:"partial"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	if err := s.pool.Merge(body.Alias, partialFromDTO(body.Partial)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"alias": body.Alias})
}

// handleTokensAliasSet implements POST /tokens/alias/set.
func (s *Server) handleTokensAliasSet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		OldAlias string `json:"old_alias"`
		NewAlias string `json:"new_alias"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	if err := s.pool.SetAlias(body.OldAlias, body.NewAlias); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"alias": body.NewAlias})
}

// handleTokensStatusSet implements POST /tokens/status/set.
func (s *Server) handleTokensStatusSet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Aliases []string `json:"aliases"`
		Enabled bool     `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	if err := s.pool.SetEnabled(body.Aliases, body.Enabled); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": body.Enabled})
}

// handleTokensProxySet implements POST /tokens/proxy/set. A nil/omitted
// "proxy_name" clears the per-token override (§4.5 SetProxy).
func (s *Server) handleTokensProxySet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Aliases   []string `json:"aliases"`
		ProxyName *string  `json:"proxy_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	if err := s.pool.SetProxy(body.Aliases, body.ProxyName); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"aliases": body.Aliases})
}

// handleTokensTimezoneSet implements POST /tokens/timezone/set.
func (s *Server) handleTokensTimezoneSet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Aliases  []string `json:"aliases"`
		Timezone *string  `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	if err := s.pool.SetTimezone(body.Aliases, body.Timezone); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"aliases": body.Aliases})
}

// handleTokensRefresh implements POST /tokens/refresh: re-fetches both the
// profile blobs and the config_version for the named aliases (§6
// "/tokens/... /refresh").
func (s *Server) handleTokensRefresh(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Aliases []string `json:"aliases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	type outcome struct {
		Alias string `json:"alias"`
		Error string `json:"error,omitempty"`
	}
	out := make([]outcome, 0, len(body.Aliases))
	for _, alias := range body.Aliases {
		o := outcome{Alias: alias}
		if err := s.pool.RefreshProfile(r.Context(), s.vendor, alias); err != nil {
			o.Error = err.Error()
		} else if err := s.pool.RefreshConfigVersion(r.Context(), s.vendor, alias); err != nil {
			o.Error = err.Error()
		}
		out = append(out, o)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleTokensProfileUpdate implements POST /tokens/profile/update.
func (s *Server) handleTokensProfileUpdate(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Aliases []string `json:"aliases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	for _, alias := range body.Aliases {
		if err := s.pool.RefreshProfile(r.Context(), s.vendor, alias); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"aliases": body.Aliases})
}

// handleTokensConfigVersionUpdate implements POST /tokens/config-version/update.
func (s *Server) handleTokensConfigVersionUpdate(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Aliases []string `json:"aliases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	for _, alias := range body.Aliases {
		if err := s.pool.RefreshConfigVersion(r.Context(), s.vendor, alias); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"aliases": body.Aliases})
}
