package translator

// Catalog is the set of models the gateway will accept in a chat
// completion request (§4.7 step 1, §6 /v1/models).
type Catalog struct {
	entries map[string]ModelCatalogEntry
	order   []string
}

// NewCatalog builds a Catalog from the given entries, preserving order.
func NewCatalog(entries []ModelCatalogEntry) *Catalog {
	c := &Catalog{entries: make(map[string]ModelCatalogEntry, len(entries))}
	for _, e := range entries {
		if _, exists := c.entries[e.ID]; !exists {
			c.order = append(c.order, e.ID)
		}
		c.entries[e.ID] = e
	}
	return c
}

// Allowed reports whether model may be requested, either because it is in
// the shared catalog or because it appears in the token's own cached
// catalog (§4.7: "unless the token's cached catalog marks it
// available").
func (c *Catalog) Allowed(model string, tokenCached []string) bool {
	if _, ok := c.entries[model]; ok {
		return true
	}
	for _, m := range tokenCached {
		if m == model {
			return true
		}
	}
	return false
}

// Lookup returns the catalog entry for model, if present.
func (c *Catalog) Lookup(model string) (ModelCatalogEntry, bool) {
	e, ok := c.entries[model]
	return e, ok
}

// List returns every entry, filtered per the /v1/models request body
// (nightly, long-context, a max count, and an always-include extra-names
// list — §6).
type ListFilter struct {
	Nightly     *bool
	LongContext *bool
	MaxNamed    int
	ExtraNames  []string
}

// List applies filter and returns matching entries in catalog order.
func (c *Catalog) List(filter ListFilter) []ModelCatalogEntry {
	extra := make(map[string]bool, len(filter.ExtraNames))
	for _, n := range filter.ExtraNames {
		extra[n] = true
	}

	var out []ModelCatalogEntry
	named := 0
	for _, id := range c.order {
		e := c.entries[id]
		if extra[id] {
			out = append(out, e)
			continue
		}
		if filter.Nightly != nil && e.Nightly != *filter.Nightly {
			continue
		}
		if filter.LongContext != nil && e.LongContext != *filter.LongContext {
			continue
		}
		if filter.MaxNamed > 0 && named >= filter.MaxNamed {
			continue
		}
		out = append(out, e)
		named++
	}
	return out
}
