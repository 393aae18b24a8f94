package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/relaygw/relay/pkg/authgate"
	"github.com/relaygw/relay/pkg/config"
	"github.com/relaygw/relay/pkg/persistence"
	"github.com/relaygw/relay/pkg/proxy/middleware"
	"github.com/relaygw/relay/pkg/proxyregistry"
	"github.com/relaygw/relay/pkg/recorder"
	securitytls "github.com/relaygw/relay/pkg/security/tls"
	"github.com/relaygw/relay/pkg/telemetry/health"
	"github.com/relaygw/relay/pkg/telemetry/metrics"
	"github.com/relaygw/relay/pkg/telemetry/tracing"
	"github.com/relaygw/relay/pkg/tokenpool"
	"github.com/relaygw/relay/pkg/translator"
	"github.com/relaygw/relay/pkg/vendorclient"
)

// Server is the gateway's HTTP server: an http.Server plus every component
// its handlers dispatch into.
type Server struct {
	cfg     *config.Config
	cfgPath string

	gate       *authgate.Gate
	pool       *tokenpool.Pool
	proxies    *proxyregistry.Registry
	proxyStore *persistence.ProxyStore
	ring       *recorder.Ring
	vendor     *vendorclient.Client
	metrics    *metrics.Collector
	scheduler  *tokenpool.RefreshScheduler
	blob       *config.TextBlob
	tracer     *tracing.Tracer

	catalogMu sync.RWMutex
	catalog   *translator.Catalog

	startedAt time.Time
	requests  struct {
		mu      sync.Mutex
		total   uint64
		success uint64
		failure uint64
	}

	httpServer   *http.Server
	certReloader *securitytls.CertificateReloader
	reloaderStop context.CancelFunc
	checker      *health.Checker

	version   string
	commit    string
	buildTime string
}

func (s *Server) logger() *slog.Logger {
	return slog.Default().With("component", "server")
}

// Deps bundles every collaborator New needs, so the constructor's own
// signature stays small and explicit.
type Deps struct {
	Config     *config.Config
	ConfigPath string
	Gate       *authgate.Gate
	Pool       *tokenpool.Pool
	Proxies    *proxyregistry.Registry
	ProxyStore *persistence.ProxyStore
	Ring       *recorder.Ring
	Vendor     *vendorclient.Client
	Metrics    *metrics.Collector
	Scheduler  *tokenpool.RefreshScheduler
	Catalog    *translator.Catalog
	Blob       *config.TextBlob
	Tracer     *tracing.Tracer

	// Version, Commit, and BuildTime back GET /version. Each defaults to
	// "unknown" when left empty.
	Version   string
	Commit    string
	BuildTime string
}

// New constructs a Server from deps and builds its route table.
func New(deps Deps) *Server {
	s := &Server{
		cfg:        deps.Config,
		cfgPath:    deps.ConfigPath,
		gate:       deps.Gate,
		pool:       deps.Pool,
		proxies:    deps.Proxies,
		proxyStore: deps.ProxyStore,
		ring:       deps.Ring,
		vendor:     deps.Vendor,
		metrics:    deps.Metrics,
		scheduler:  deps.Scheduler,
		catalog:    deps.Catalog,
		blob:       deps.Blob,
		tracer:     deps.Tracer,
		startedAt:  time.Now(),
		version:    orDefault(deps.Version, "unknown"),
		commit:     orDefault(deps.Commit, "unknown"),
		buildTime:  orDefault(deps.BuildTime, "unknown"),
	}
	if s.blob == nil {
		s.blob = config.NewTextBlob("")
	}
	if s.tracer == nil {
		if noop, err := tracing.New(&config.TracingConfig{Enabled: false}); err == nil {
			s.tracer = noop
		}
	}

	s.checker = health.New(5 * time.Second)
	s.registerHealthChecks()

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := s.wrapMiddleware(mux)

	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		IdleTimeout:    s.cfg.Server.IdleTimeout,
		MaxHeaderBytes: s.cfg.Server.MaxHeaderBytes,
	}

	if s.cfg.Security.TLS.Enabled {
		if tlsConfig, err := s.configureTLS(); err != nil {
			slog.Error("TLS configuration failed, listener will reject the upgrade at Start", "error", err)
		} else {
			s.httpServer.TLSConfig = tlsConfig
		}
	}

	return s
}

func (s *Server) prefix(path string) string {
	return s.cfg.Server.RoutePrefix + path
}

// registerRoutes mounts every endpoint §6 names.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc(s.prefix("/v1/chat/completions"), s.handleChatCompletions)
	mux.HandleFunc(s.prefix("/v1/models"), s.handleModels)
	mux.HandleFunc(s.prefix("/v1/cpp/complete"), s.handleCppComplete)

	mux.HandleFunc(s.prefix("/tokens/add"), s.requireAuth(s.handleTokensAdd))
	mux.HandleFunc(s.prefix("/tokens/del"), s.requireAuth(s.handleTokensDel))
	mux.HandleFunc(s.prefix("/tokens/set"), s.requireAuth(s.handleTokensSet))
	mux.HandleFunc(s.prefix("/tokens/get"), s.requireAuth(s.handleTokensGet))
	mux.HandleFunc(s.prefix("/tokens/merge"), s.requireAuth(s.handleTokensMerge))
	mux.HandleFunc(s.prefix("/tokens/alias/set"), s.requireAuth(s.handleTokensAliasSet))
	mux.HandleFunc(s.prefix("/tokens/status/set"), s.requireAuth(s.handleTokensStatusSet))
	mux.HandleFunc(s.prefix("/tokens/proxy/set"), s.requireAuth(s.handleTokensProxySet))
	mux.HandleFunc(s.prefix("/tokens/timezone/set"), s.requireAuth(s.handleTokensTimezoneSet))
	mux.HandleFunc(s.prefix("/tokens/refresh"), s.requireAuth(s.handleTokensRefresh))
	mux.HandleFunc(s.prefix("/tokens/profile/update"), s.requireAuth(s.handleTokensProfileUpdate))
	mux.HandleFunc(s.prefix("/tokens/config-version/update"), s.requireAuth(s.handleTokensConfigVersionUpdate))

	mux.HandleFunc(s.prefix("/proxies/get"), s.requireAuth(s.handleProxiesGet))
	mux.HandleFunc(s.prefix("/proxies/set"), s.requireAuth(s.handleProxiesSet))
	mux.HandleFunc(s.prefix("/proxies/add"), s.requireAuth(s.handleProxiesAdd))
	mux.HandleFunc(s.prefix("/proxies/del"), s.requireAuth(s.handleProxiesDel))
	mux.HandleFunc(s.prefix("/proxies/set-general"), s.requireAuth(s.handleProxiesSetGeneral))

	mux.HandleFunc(s.prefix("/build-key"), s.requireAdminIfConfigured(s.handleBuildKey))
	mux.HandleFunc(s.prefix("/config-version/get"), s.requireAdminIfConfigured(s.handleConfigVersionGet))

	mux.HandleFunc(s.prefix("/config/get"), s.requireAuth(s.handleConfigGet))
	mux.HandleFunc(s.prefix("/config/set"), s.requireAuth(s.handleConfigSet))
	mux.HandleFunc(s.prefix("/config/reload"), s.requireAuth(s.handleConfigReload))

	mux.HandleFunc(s.prefix("/logs"), s.requireAuthenticated(s.handleLogs))
	mux.HandleFunc(s.prefix("/logs/get"), s.requireAuthenticated(s.handleLogsGet))
	mux.HandleFunc(s.prefix("/logs/tokens/get"), s.requireAuthenticated(s.handleLogsTokensGet))

	mux.HandleFunc(s.prefix("/gen-uuid"), s.handleGenUUID)
	mux.HandleFunc(s.prefix("/gen-hash"), s.handleGenHash)
	mux.HandleFunc(s.prefix("/gen-checksum"), s.handleGenChecksum)

	mux.HandleFunc(s.prefix("/health"), s.handleHealth)
	mux.HandleFunc(s.prefix("/ready"), s.checker.ReadinessHandler())
	mux.HandleFunc(s.prefix("/version"), health.VersionHandler(s.version, s.commit, s.buildTime))
	if s.metrics != nil && s.cfg.Telemetry.Metrics.Enabled {
		mux.Handle(s.cfg.Telemetry.Metrics.Path, s.metrics.Handler())
	}
}

// registerHealthChecks wires the readiness checker's component probes: the
// token pool must have at least one enabled token and the proxy registry
// must be addressable at all. These back GET /ready, distinct from the
// spec's own GET /health (uptime/request counters/memory — see
// handleHealth), which never blocks and never fails.
func (s *Server) registerHealthChecks() {
	s.checker.RegisterCheck("token_pool", func(ctx context.Context) error {
		for _, e := range s.pool.List() {
			if e.Record.Status.Enabled {
				return nil
			}
		}
		return fmt.Errorf("no enabled tokens in pool")
	})
	s.checker.RegisterCheck("proxy_registry", func(ctx context.Context) error {
		if s.proxies == nil {
			return fmt.Errorf("proxy registry not configured")
		}
		return nil
	})
}

func (s *Server) wrapMiddleware(h http.Handler) http.Handler {
	if s.cfg.Security.TLS.Enabled && s.cfg.Security.TLS.MTLS.Enabled {
		h = middleware.ClientIdentityMiddleware(s.cfg.Security.TLS.MTLS.IdentitySource)(h)
	}
	h = middleware.TimeoutMiddleware(s.cfg.Server.WriteTimeout)(h)
	h = middleware.CORSMiddleware(middleware.DefaultCORSConfig())(h)
	h = middleware.LoggingMiddleware(h)
	h = middleware.RecoveryMiddleware(h)
	h = middleware.RequestIDMiddleware(h)
	return h
}

// configureTLS builds the listener's tls.Config via pkg/security/tls,
// which loads the certificate pair, applies the configured minimum version
// and cipher suite policy, and layers in mTLS (client CA pool, client auth
// mode) when enabled. When a cert_reload_interval is configured, it starts
// a background CertificateReloader instead of a static certificate so
// renewed certs are picked up without a restart.
func (s *Server) configureTLS() (*tls.Config, error) {
	tlsCfg := s.cfg.Security.TLS
	tlsConfig, err := tlsCfg.ToTLSConfig()
	if err != nil {
		return nil, fmt.Errorf("configure TLS: %w", err)
	}

	if tlsCfg.ReloadInterval != "" {
		ctx, cancel := context.WithCancel(context.Background())
		reloader := securitytls.NewCertificateReloader(tlsCfg.CertFile, tlsCfg.KeyFile, tlsCfg.ParseReloadInterval())
		if err := reloader.Start(ctx); err != nil {
			cancel()
			return nil, fmt.Errorf("start certificate reloader: %w", err)
		}
		tlsConfig.Certificates = nil
		tlsConfig.GetCertificate = func(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
			return reloader.GetCertificateFunc()(hello)
		}
		s.certReloader = reloader
		s.reloaderStop = cancel
	}

	return tlsConfig, nil
}

// Start begins serving, blocking until the listener is closed or it fails
// to bind. Use with Shutdown from a separate goroutine watching a signal.
func (s *Server) Start() error {
	slog.Info("gateway listening", "addr", s.httpServer.Addr, "tls", s.cfg.Security.TLS.Enabled)
	if s.cfg.Security.TLS.Enabled {
		// Certificates are already loaded into httpServer.TLSConfig by New,
		// so the file-path arguments here are unused by net/http in that case.
		return s.httpServer.ListenAndServeTLS("", "")
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the configured shutdown
// timeout, then stops the background refresh scheduler and certificate
// reloader, if any.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.reloaderStop != nil {
		s.reloaderStop()
	}
	return err
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (s *Server) recordOutcome(success bool) {
	s.requests.mu.Lock()
	defer s.requests.mu.Unlock()
	s.requests.total++
	if success {
		s.requests.success++
	} else {
		s.requests.failure++
	}
}
