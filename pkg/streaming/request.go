package streaming

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/relaygw/relay/pkg/translator"
	"github.com/relaygw/relay/pkg/wire"
)

// maxErrorBodyRead caps how much of a non-2xx, non-framed response body is
// read when classifying the failure.
const maxErrorBodyRead = 64 * 1024

// Post issues the vendor HTTPS POST under a context bounded by
// totalTimeout (§4.8 "A per-request wall-clock budget"). On a non-2xx
// status it attempts to decode the body as wire.ErrorEnvelope (the vendor
// error frame shape can also arrive as a plain JSON body on some failure
// paths); otherwise it returns *translator.UpstreamStatusError.
//
// Post returns the timeout-bounded request context alongside its cancel
// func: that context, not the caller's own ctx, is what actually carries
// the §4.8 total-timeout deadline, so callers driving the response body
// (Drive) must check it rather than ctx when classifying a read failure.
func Post(ctx context.Context, client *http.Client, url string, headers map[string]string, body []byte, totalTimeout time.Duration) (*http.Response, context.Context, context.CancelFunc, error) {
	reqCtx, cancel := context.WithTimeout(ctx, totalTimeout)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, nil, nil, &TimeoutError{Kind: TimeoutTotal}
		}
		return nil, nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		limited := io.LimitReader(resp.Body, maxErrorBodyRead)
		raw, _ := io.ReadAll(limited)
		cancel()

		var env wire.ErrorEnvelope
		if json.Unmarshal(raw, &env) == nil && env.Code != "" {
			return nil, nil, nil, &translator.VendorErrorFrame{Code: env.Code, Message: env.Message, Detail: env.Detail}
		}
		return nil, nil, nil, &translator.UpstreamStatusError{Status: resp.StatusCode, Detail: string(raw)}
	}

	return resp, reqCtx, cancel, nil
}
