package proxyregistry

import (
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Kind is the variant tag of an Entry.
type Kind int

const (
	// KindNone issues requests with no proxy.
	KindNone Kind = iota
	// KindSystem consults the process environment (HTTP_PROXY, HTTPS_PROXY,
	// NO_PROXY) via http.ProxyFromEnvironment.
	KindSystem
	// KindHTTPURL routes through an explicit HTTP/HTTPS proxy URL.
	KindHTTPURL
)

// Entry is one named proxy configuration (§3 ProxyEntry).
type Entry struct {
	Name string
	Kind Kind
	URL  string // only meaningful when Kind == KindHTTPURL
}

// generalName is the registry's fallback entry name.
const generalName = "general"

// Registry is the process-wide, mutex-guarded named-proxy table (C6).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	general string // name of the general entry, "" if unset

	clientsMu sync.Mutex
	clients   map[string]*http.Client // keyed by http_url
}

// New constructs an empty Registry. The "none" entry always exists
// implicitly and need not be added.
func New() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		clients: make(map[string]*http.Client),
	}
}

// LoadSnapshot replaces the registry's contents, used at startup.
func (r *Registry) LoadSnapshot(entries []Entry, general string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]Entry, len(entries))
	for _, e := range entries {
		r.entries[e.Name] = e
	}
	r.general = general
}

// Snapshot returns every entry plus the general name, for persistence.
func (r *Registry) Snapshot() ([]Entry, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out, r.general
}

// Get returns the named entry.
func (r *Registry) Get(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, &UnknownNameError{Name: name}
	}
	return e, nil
}

// Add inserts a new named entry, validating http_url values.
func (r *Registry) Add(e Entry) error {
	if e.Kind == KindHTTPURL {
		if err := validateHTTPURL(e.URL); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.Name] = e
	return nil
}

// Set replaces an existing entry (or adds it if absent), same validation as
// Add.
func (r *Registry) Set(e Entry) error {
	return r.Add(e)
}

// Del removes a named entry. Removing the current general entry clears the
// general default.
func (r *Registry) Del(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return &UnknownNameError{Name: name}
	}
	delete(r.entries, name)
	if r.general == name {
		r.general = ""
	}
	return nil
}

// SetGeneral designates name as the registry's default fallback. name must
// already exist, unless it is the special names "none"/"system" which are
// always valid.
func (r *Registry) SetGeneral(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name != "" && name != "none" && name != "system" {
		if _, ok := r.entries[name]; !ok {
			return &UnknownNameError{Name: name}
		}
	}
	r.general = name
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &InvalidURLError{Value: raw}
	}
	return nil
}

// ClientFor returns the ready-to-use HTTP client for a token whose
// proxy_name is tokenProxyName (empty if unset). Resolution order (§4.6):
// the token's own proxy_name, else the registry's general default, else
// none.
func (r *Registry) ClientFor(tokenProxyName string) (*http.Client, error) {
	name := tokenProxyName
	r.mu.RLock()
	if name == "" {
		name = r.general
	}
	var entry Entry
	var found bool
	if name == "" {
		entry = Entry{Kind: KindNone}
		found = true
	} else if name == "none" {
		entry = Entry{Kind: KindNone}
		found = true
	} else if name == "system" {
		entry = Entry{Kind: KindSystem}
		found = true
	} else {
		entry, found = r.entries[name]
	}
	r.mu.RUnlock()

	if !found {
		return nil, &UnknownNameError{Name: name}
	}
	return r.clientFor(entry), nil
}

func (r *Registry) clientFor(e Entry) *http.Client {
	switch e.Kind {
	case KindNone:
		return &http.Client{Transport: &http.Transport{Proxy: nil}, Timeout: defaultClientTimeout}
	case KindSystem:
		return &http.Client{Transport: &http.Transport{Proxy: http.ProxyFromEnvironment}, Timeout: defaultClientTimeout}
	case KindHTTPURL:
		r.clientsMu.Lock()
		defer r.clientsMu.Unlock()
		if c, ok := r.clients[e.URL]; ok {
			return c
		}
		proxyURL, _ := url.Parse(e.URL) // validated at Add/Set time
		c := &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyURL(proxyURL),
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
			Timeout: defaultClientTimeout,
		}
		r.clients[e.URL] = c
		return c
	default:
		return &http.Client{Timeout: defaultClientTimeout}
	}
}

const defaultClientTimeout = 0 // streaming responses: timeouts are enforced by the streaming pipeline (C8), not the client.
