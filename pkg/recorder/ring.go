package recorder

import (
	"sync"
	"time"
)

// DefaultCapacity is the ring's record count when none is configured
// (§4.9).
const DefaultCapacity = 2048

// Ring is the process-wide, mutex-guarded append-only telemetry ring (C9).
// The zero value is not usable; construct with New.
type Ring struct {
	mu       sync.Mutex
	capacity int
	records  []*LogRecord // fixed-size, circular; nil slots before first wrap
	next     int          // index of the next slot to write
	nextID   uint64
	now      func() time.Time
}

// New constructs a Ring with the given capacity (DefaultCapacity if <= 0).
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{capacity: capacity, records: make([]*LogRecord, capacity), now: time.Now}
}

// Handle is a scoped writer into one LogRecord, returned by Open. Callers
// append delays and finally Close it exactly once; Close is idempotent.
type Handle struct {
	ring     *Ring
	mu       sync.Mutex
	record   *LogRecord
	start    time.Time
	closed   bool
}

// Open reserves the next ring slot and returns a Handle for the in-flight
// request. The record starts in StatusPending.
func (r *Ring) Open(model, tokenKey string, stream bool) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	rec := &LogRecord{
		ID:        r.nextID,
		Timestamp: now,
		Model:     model,
		TokenKey:  tokenKey,
		Stream:    stream,
		Status:    StatusPending,
	}
	r.nextID++
	r.records[r.next%r.capacity] = rec
	r.next++

	return &Handle{ring: r, record: rec, start: now}
}

// AddDelay appends one (label, chars, ms) entry to the chain.
func (h *Handle) AddDelay(label string, chars, ms uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record.Chain.Delays = append(h.record.Chain.Delays, Delay{Label: label, Chars: chars, MS: ms})
}

// SetUsage overwrites the chain's usage (§9 Open Question 2: the last
// usage-bearing frame wins).
func (h *Handle) SetUsage(u Usage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record.Chain.Usage = &u
}

// AddWarning appends a non-fatal annotation to the record, e.g.
// "vision_disabled" (§4.7 step 2).
func (h *Handle) AddWarning(warning string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record.Warnings = append(h.record.Warnings, warning)
}

// Close finalizes the record with the given status/error and total
// elapsed time. Safe to call more than once; only the first call has
// effect.
func (h *Handle) Close(status Status, errDetail *ErrorDetail) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.record.Status = status
	h.record.Error = errDetail
	h.record.Timing.TotalSeconds = h.ring.now().Sub(h.start).Seconds()
}

// Record returns a copy of the record's current state.
func (h *Handle) Record() LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return *h.record
}

// Filter is a predicate over LogRecord applied by Query.
type Filter func(LogRecord) bool

// ByTokenKeys restricts results to the given set of token keys (used to
// scope non-admin callers to only their own tokens, §4.9 "Privacy").
func ByTokenKeys(keys ...string) Filter {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return func(r LogRecord) bool { return set[r.TokenKey] }
}

// Query applies filter over a point-in-time copy of the live ring and
// returns matching records, newest first. A nil filter matches everything.
// Query never blocks an in-flight Append/Close — it only holds the mutex
// long enough to copy pointers.
func (r *Ring) Query(filter Filter) []LogRecord {
	r.mu.Lock()
	snapshot := make([]*LogRecord, len(r.records))
	copy(snapshot, r.records)
	next := r.next
	r.mu.Unlock()

	n := len(snapshot)
	out := make([]LogRecord, 0, n)
	for i := 1; i <= n; i++ {
		rec := snapshot[((next-i)%n+n)%n]
		if rec == nil {
			continue
		}
		if filter == nil || filter(*rec) {
			out = append(out, *rec)
		}
	}
	return out
}

// Len returns the number of live records currently held (<= capacity).
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec != nil {
			n++
		}
	}
	return n
}
