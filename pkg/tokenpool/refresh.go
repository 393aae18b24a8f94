package tokenpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// ProfileFetcher is the external RPC collaborator used by RefreshProfile and
// RefreshConfigVersion (§4.5): given a token's primary_token it returns the
// vendor's latest profile/config-version blobs for that session.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, rec TokenRecord) (user, stripe, usage, sessions string, err error)
	FetchConfigVersion(ctx context.Context, rec TokenRecord) (string, error)
}

// RefreshProfile re-fetches the profile/stripe/usage/sessions blobs for one
// token and stores them, for telemetry/filtering only (§3).
func (p *Pool) RefreshProfile(ctx context.Context, fetcher ProfileFetcher, alias string) error {
	p.mu.Lock()
	rec, ok := p.byAlias[alias]
	if !ok {
		p.mu.Unlock()
		return &UnknownAliasError{Alias: alias}
	}
	snapshot := rec.Clone()
	p.mu.Unlock()

	user, stripe, usage, sessions, err := fetcher.FetchProfile(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("tokenpool: refresh profile for %q: %w", alias, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok = p.byAlias[alias]
	if !ok {
		return &UnknownAliasError{Alias: alias}
	}
	rec.User, rec.Stripe, rec.Usage, rec.Sessions = user, stripe, usage, sessions
	p.persist()
	return nil
}

// RefreshConfigVersion re-issues the vendor's config_version for one token.
func (p *Pool) RefreshConfigVersion(ctx context.Context, fetcher ProfileFetcher, alias string) error {
	p.mu.Lock()
	rec, ok := p.byAlias[alias]
	if !ok {
		p.mu.Unlock()
		return &UnknownAliasError{Alias: alias}
	}
	snapshot := rec.Clone()
	p.mu.Unlock()

	version, err := fetcher.FetchConfigVersion(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("tokenpool: refresh config version for %q: %w", alias, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok = p.byAlias[alias]
	if !ok {
		return &UnknownAliasError{Alias: alias}
	}
	rec.ConfigVersion = version
	p.persist()
	return nil
}

// RefreshScheduler periodically sweeps every enabled token through
// RefreshProfile/RefreshConfigVersion, per Design Notes §9's "model them as
// periodic tasks submitted to a task scheduler with explicit cancellation
// tokens".
type RefreshScheduler struct {
	pool    *Pool
	fetcher ProfileFetcher
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	running bool
}

// NewRefreshScheduler builds a scheduler over pool using fetcher for the
// vendor RPCs.
func NewRefreshScheduler(pool *Pool, fetcher ProfileFetcher) *RefreshScheduler {
	return &RefreshScheduler{
		pool:    pool,
		fetcher: fetcher,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "tokenpool.refresh"),
	}
}

// Start schedules a sweep at the given cron expression (e.g. "0 */6 * * *"
// for every six hours) and begins running it in the background. The
// context controls the scheduler's lifetime: cancelling it stops the cron
// runner and waits for any in-flight sweep to finish.
func (s *RefreshScheduler) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if schedule == "" {
		s.logger.Info("profile refresh schedule not configured, skipping")
		return nil
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.sweep(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule profile refresh: %w", err)
	}
	s.cron.Start()
	s.running = true

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *RefreshScheduler) sweep(ctx context.Context) {
	for _, entry := range s.pool.List() {
		if !entry.Record.Status.Enabled {
			continue
		}
		if err := s.pool.RefreshProfile(ctx, s.fetcher, entry.Alias); err != nil {
			s.logger.Warn("profile refresh failed", "alias", entry.Alias, "error", err)
		}
	}
}

// Stop stops the cron runner and waits for any running sweep to finish.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		doneCtx := s.cron.Stop()
		<-doneCtx.Done()
		s.running = false
	}
}
