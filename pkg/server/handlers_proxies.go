package server

import (
	"encoding/json"
	"net/http"

	"github.com/relaygw/relay/pkg/authgate"
	"github.com/relaygw/relay/pkg/proxyregistry"
	"github.com/relaygw/relay/pkg/translator"
)

// proxyDTO is the wire JSON shape of a proxyregistry.Entry.
type proxyDTO struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // "none" | "system" | "http_url"
	URL  string `json:"url,omitempty"`
}

func proxyEntryToDTO(e proxyregistry.Entry) proxyDTO {
	d := proxyDTO{Name: e.Name, URL: e.URL}
	switch e.Kind {
	case proxyregistry.KindSystem:
		d.Kind = "system"
	case proxyregistry.KindHTTPURL:
		d.Kind = "http_url"
	default:
		d.Kind = "none"
	}
	return d
}

func proxyDTOToEntry(d proxyDTO) proxyregistry.Entry {
	e := proxyregistry.Entry{Name: d.Name, URL: d.URL}
	switch d.Kind {
	case "system":
		e.Kind = proxyregistry.KindSystem
	case "http_url":
		e.Kind = proxyregistry.KindHTTPURL
	default:
		e.Kind = proxyregistry.KindNone
	}
	return e
}

// handleProxiesGet implements POST /proxies/get: given {"name": "..."}
// returns that entry, or every entry if name is omitted.
func (s *Server) handleProxiesGet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if body.Name != "" {
		entry, err := s.proxies.Get(body.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, proxyEntryToDTO(entry))
		return
	}

	entries, general := s.proxies.Snapshot()
	out := make([]proxyDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, proxyEntryToDTO(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out, "general": general})
}

// handleProxiesSet implements POST /proxies/set.
func (s *Server) handleProxiesSet(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var d proxyDTO
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	if err := s.proxies.Set(proxyDTOToEntry(d)); err != nil {
		writeError(w, err)
		return
	}
	s.persistProxies()
	writeJSON(w, http.StatusOK, proxyEntryToDTO(proxyDTOToEntry(d)))
}

// handleProxiesAdd implements POST /proxies/add.
func (s *Server) handleProxiesAdd(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var d proxyDTO
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	if err := s.proxies.Add(proxyDTOToEntry(d)); err != nil {
		writeError(w, err)
		return
	}
	s.persistProxies()
	writeJSON(w, http.StatusOK, proxyEntryToDTO(proxyDTOToEntry(d)))
}

// handleProxiesDel implements POST /proxies/del.
func (s *Server) handleProxiesDel(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	if err := s.proxies.Del(body.Name); err != nil {
		writeError(w, err)
		return
	}
	s.persistProxies()
	writeJSON(w, http.StatusOK, map[string]string{"name": body.Name})
}

// handleProxiesSetGeneral implements POST /proxies/set-general.
func (s *Server) handleProxiesSetGeneral(w http.ResponseWriter, r *http.Request, _ authgate.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}
	if err := s.proxies.SetGeneral(body.Name); err != nil {
		writeError(w, err)
		return
	}
	s.persistProxies()
	writeJSON(w, http.StatusOK, map[string]string{"general": body.Name})
}

// persistProxies snapshots the registry and hands it to the proxy store,
// mirroring the token pool's own fire-and-forget persistence discipline
// (§4.5 "Persistence"): failures are logged but never roll back the
// in-memory registry.
func (s *Server) persistProxies() {
	if s.proxyStore == nil {
		return
	}
	entries, general := s.proxies.Snapshot()
	go func() {
		if err := s.proxyStore.Save(entries, general); err != nil {
			s.logger().Warn("proxy store save failed", "error", err)
		}
	}()
}
