package server

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/relaygw/relay/pkg/authgate"
	"github.com/relaygw/relay/pkg/config"
	"github.com/relaygw/relay/pkg/proxyregistry"
	"github.com/relaygw/relay/pkg/recorder"
	"github.com/relaygw/relay/pkg/telemetry/tracing"
	"github.com/relaygw/relay/pkg/tokenpool"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{AdminToken: "initial-admin"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	pool := tokenpool.New(nil, nil)
	tracer, err := tracing.New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("tracing.New: %v", err)
	}
	return &Server{
		cfg:       testConfig(),
		pool:      pool,
		proxies:   proxyregistry.New(),
		ring:      recorder.New(16),
		blob:      config.NewTextBlob("initial text"),
		tracer:    tracer,
		startedAt: time.Now(),
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v (body=%s)", err, rr.Body.String())
	}
}

func TestHandleBuildKeyAndBindAlias(t *testing.T) {
	s := newTestServer(t)
	s.pool.Add([]tokenpool.TokenRecord{{Alias: "one", PrimaryToken: "tok-1"}}, true)

	body := `{"numeric":"4242","alias":"one","format":"sk"}`
	req := httptest.NewRequest(http.MethodPost, "/build-key", strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.handleBuildKey(rr, req, authgate.Context{})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	decodeJSON(t, rr, &resp)
	if resp["key"] == "" || resp["numeric"] != "4242" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if _, err := s.pool.Get("one"); err != nil {
		t.Fatalf("pool.Get: %v", err)
	}
	if err := s.pool.BindNumeric(big.NewInt(4242), "unknown-alias"); err == nil {
		t.Error("expected BindNumeric against an unknown alias to fail")
	}
}

func TestHandleBuildKeyRejectsNonNumeric(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/build-key", strings.NewReader(`{"numeric":"not-a-number"}`))
	rr := httptest.NewRecorder()
	s.handleBuildKey(rr, req, authgate.Context{})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleConfigGetSetRoundTrip(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/config/get", nil)
	rr := httptest.NewRecorder()
	s.handleConfigGet(rr, req, authgate.Context{})

	var got struct {
		Text string `json:"text"`
		Hash string `json:"hash"`
	}
	decodeJSON(t, rr, &got)
	if got.Text != "initial text" {
		t.Fatalf("text = %q, want %q", got.Text, "initial text")
	}

	setBody := `{"text":"updated text","if_match_hash":"` + got.Hash + `"}`
	req2 := httptest.NewRequest(http.MethodPost, "/config/set", strings.NewReader(setBody))
	rr2 := httptest.NewRecorder()
	s.handleConfigSet(rr2, req2, authgate.Context{})
	if rr2.Code != http.StatusOK {
		t.Fatalf("set status = %d, body = %s", rr2.Code, rr2.Body.String())
	}

	text, _ := s.blob.Get()
	if text != "updated text" {
		t.Errorf("blob text = %q, want updated text", text)
	}
}

func TestHandleConfigSetRejectsStaleHash(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/config/set", strings.NewReader(`{"text":"x","if_match_hash":"stale"}`))
	rr := httptest.NewRecorder()
	s.handleConfigSet(rr, req, authgate.Context{})
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rr.Code)
	}
}

func TestHandleConfigReloadReadsFromDisk(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9191\nauth:\n  admin_token: reload-test\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	s.cfgPath = path
	config.SetConfig(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/config/reload", nil)
	rr := httptest.NewRecorder()
	s.handleConfigReload(rr, req, authgate.Context{})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if s.cfg.Auth.AdminToken != "reload-test" {
		t.Errorf("AdminToken = %q, want reload-test", s.cfg.Auth.AdminToken)
	}
}

func TestHandleConfigReloadWithoutPathFails(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/config/reload", nil)
	rr := httptest.NewRecorder()
	s.handleConfigReload(rr, req, authgate.Context{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleLogsAndFilters(t *testing.T) {
	s := newTestServer(t)
	h := s.ring.Open("gpt-4", "alias-a", false)
	h.SetUsage(recorder.Usage{})
	h.Close(recorder.StatusSuccess, nil)

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	rr := httptest.NewRecorder()
	s.handleLogs(rr, req, authgate.Context{})

	var resp struct {
		Len int `json:"len"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Len != 1 {
		t.Errorf("len = %d, want 1", resp.Len)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/logs/get", strings.NewReader(`{"model":"does-not-exist"}`))
	rr2 := httptest.NewRecorder()
	s.handleLogsGet(rr2, req2, authgate.Context{})
	var resp2 struct {
		Records []recorder.LogRecord `json:"records"`
	}
	decodeJSON(t, rr2, &resp2)
	if len(resp2.Records) != 0 {
		t.Errorf("expected no records for an unmatched model filter, got %d", len(resp2.Records))
	}
}

func TestHandleLogsTokensGet(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/logs/tokens/get", strings.NewReader(`{"token_keys":["deadbeef"]}`))
	rr := httptest.NewRecorder()
	s.handleLogsTokensGet(rr, req, authgate.Context{})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestHandleGenUUIDAndHash(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/gen-uuid", nil)
	rr := httptest.NewRecorder()
	s.handleGenUUID(rr, req)
	var uuidResp map[string]string
	decodeJSON(t, rr, &uuidResp)
	if len(uuidResp["uuid"]) != 36 {
		t.Errorf("uuid = %q, want 36 characters", uuidResp["uuid"])
	}

	req2 := httptest.NewRequest(http.MethodGet, "/gen-hash", nil)
	rr2 := httptest.NewRecorder()
	s.handleGenHash(rr2, req2)
	var hashResp map[string]string
	decodeJSON(t, rr2, &hashResp)
	if len(hashResp["hash"]) != 64 {
		t.Errorf("hash = %q, want 64 hex characters", hashResp["hash"])
	}
}

func TestHandleGenChecksum(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/gen-checksum", strings.NewReader(`{"checksum_first":"`+strings.Repeat("a", 64)+`","checksum_second":"`+strings.Repeat("b", 64)+`"}`))
	rr := httptest.NewRecorder()
	s.handleGenChecksum(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	decodeJSON(t, rr, &resp)
	if resp["checksum"] == "" {
		t.Error("expected non-empty checksum")
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	s.pool.Add([]tokenpool.TokenRecord{{Alias: "one", PrimaryToken: "tok-1"}}, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.handleHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp healthResponse
	decodeJSON(t, rr, &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Pool.Total != 1 || resp.Pool.Enabled != 1 {
		t.Errorf("pool stats = %+v, want total=1 enabled=1", resp.Pool)
	}
}
