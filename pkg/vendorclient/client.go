// Package vendorclient implements the outbound vendor RPCs that sit outside
// the chat-completion hot path: refreshing a token's profile/billing blobs
// and re-issuing its config_version, plus fetching the vendor's model
// catalog. These calls share the same fingerprint headers as the streaming
// chat request (pkg/fingerprint, pkg/proxyregistry) but not its framed
// Protobuf body — the vendor's account/usage surface is a plain JSON REST
// API, distinct from the ChatService/CppService streaming endpoints.
package vendorclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/relaygw/relay/pkg/config"
	"github.com/relaygw/relay/pkg/fingerprint"
	"github.com/relaygw/relay/pkg/frame"
	"github.com/relaygw/relay/pkg/proxyregistry"
	"github.com/relaygw/relay/pkg/tokenpool"
	"github.com/relaygw/relay/pkg/wire"
)

// maxResponseBody caps how much of a vendor response this client will read.
const maxResponseBody = 4 * 1024 * 1024

// requestTimeout bounds every call this client makes; these are
// short-lived, single-shot RPCs, not the streaming chat pipeline.
const requestTimeout = 30 * time.Second

// Client issues the vendor's non-streaming RPCs on behalf of the token
// pool's refresh scheduler and the /config-version/get, /tokens/refresh,
// /profile/update and /config-version/update admin endpoints.
type Client struct {
	proxies *proxyregistry.Registry
	vendor  config.VendorConfig
}

// New constructs a Client bound to the given proxy registry (C6) and
// vendor endpoint configuration.
func New(proxies *proxyregistry.Registry, vendor config.VendorConfig) *Client {
	return &Client{proxies: proxies, vendor: vendor}
}

func (c *Client) clientFor(rec tokenpool.TokenRecord) (*http.Client, error) {
	return c.proxies.ClientFor(rec.ProxyName)
}

func (c *Client) headersFor(rec tokenpool.TokenRecord, nowMs int64) (map[string]string, error) {
	headers, err := fingerprint.BuildHeaders(fingerprint.TokenFingerprint{
		ChecksumFirst:  rec.ChecksumFirst,
		ChecksumSecond: rec.ChecksumSecond,
		ClientKey:      rec.ClientKey,
		ConfigVersion:  rec.ConfigVersion,
		Timezone:       rec.Timezone,
	}, nowMs)
	if err != nil {
		return nil, err
	}
	if c.vendor.ClientVersion != "" {
		headers["x-cursor-client-version"] = c.vendor.ClientVersion
	}
	headers["Authorization"] = "Bearer " + rec.PrimaryToken
	return headers, nil
}

// profileResponse is the JSON shape the vendor's account/usage endpoint
// returns; field names mirror the opaque blobs TokenRecord stores for
// telemetry/filtering only (§3: "opaque profile blobs").
type profileResponse struct {
	User     json.RawMessage `json:"user"`
	Stripe   json.RawMessage `json:"stripe"`
	Usage    json.RawMessage `json:"usage"`
	Sessions json.RawMessage `json:"sessions"`
}

// FetchProfile satisfies tokenpool.ProfileFetcher: it re-fetches the
// user/stripe/usage/sessions blobs for one token from the vendor's account
// endpoint, returning each as its raw JSON text.
func (c *Client) FetchProfile(ctx context.Context, rec tokenpool.TokenRecord) (user, stripe, usage, sessions string, err error) {
	if c.vendor.ProfileURL == "" {
		return "", "", "", "", fmt.Errorf("vendorclient: no profile_url configured")
	}
	httpClient, err := c.clientFor(rec)
	if err != nil {
		return "", "", "", "", err
	}
	headers, err := c.headersFor(rec, time.Now().UnixMilli())
	if err != nil {
		return "", "", "", "", err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.vendor.ProfileURL, nil)
	if err != nil {
		return "", "", "", "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", "", "", "", fmt.Errorf("vendorclient: profile request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", "", "", "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", "", "", fmt.Errorf("vendorclient: profile request status %d", resp.StatusCode)
	}

	var parsed profileResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", "", "", "", fmt.Errorf("vendorclient: decode profile response: %w", err)
	}
	return string(parsed.User), string(parsed.Stripe), string(parsed.Usage), string(parsed.Sessions), nil
}

// configVersionResponse is the vendor's config-version issuance reply.
type configVersionResponse struct {
	ConfigVersion string `json:"config_version"`
}

// FetchConfigVersion satisfies tokenpool.ProfileFetcher: it asks the vendor
// to issue a fresh config_version for the token (§6
// "/config-version/get... Request a vendor-issued config_version").
func (c *Client) FetchConfigVersion(ctx context.Context, rec tokenpool.TokenRecord) (string, error) {
	httpClient, err := c.clientFor(rec)
	if err != nil {
		return "", err
	}
	headers, err := c.headersFor(rec, time.Now().UnixMilli())
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.vendor.ConfigVersionURL, nil)
	if err != nil {
		return "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vendorclient: config-version request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("vendorclient: config-version request status %d", resp.StatusCode)
	}

	var parsed configVersionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("vendorclient: decode config-version response: %w", err)
	}
	return parsed.ConfigVersion, nil
}

// FetchModels fetches the vendor's model catalog on behalf of rec, framed
// and decoded the same way the chat stream's frames are (§4.2 C2,
// §4.1 C1). The vendor's AvailableModels call takes no request body beyond
// the shared headers, so an empty message frame is sent.
func (c *Client) FetchModels(ctx context.Context, rec tokenpool.TokenRecord) (wire.ModelList, error) {
	httpClient, err := c.clientFor(rec)
	if err != nil {
		return wire.ModelList{}, err
	}
	headers, err := c.headersFor(rec, time.Now().UnixMilli())
	if err != nil {
		return wire.ModelList{}, err
	}
	headers["Content-Type"] = "application/connect+proto"

	body, err := frame.EncodeMessage(nil)
	if err != nil {
		return wire.ModelList{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.vendor.ModelsURL, bytes.NewReader(body))
	if err != nil {
		return wire.ModelList{}, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return wire.ModelList{}, fmt.Errorf("vendorclient: models request: %w", err)
	}
	defer resp.Body.Close()

	tag, payload, err := frame.ReadFrame(resp.Body)
	if err != nil {
		return wire.ModelList{}, fmt.Errorf("vendorclient: read models frame: %w", err)
	}
	if frame.IsError(tag) {
		return wire.ModelList{}, fmt.Errorf("vendorclient: vendor returned an error frame for models")
	}

	var list wire.ModelList
	if err := list.Unmarshal(payload); err != nil {
		return wire.ModelList{}, fmt.Errorf("vendorclient: decode model list: %w", err)
	}
	return list, nil
}
