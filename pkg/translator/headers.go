package translator

import (
	"github.com/relaygw/relay/pkg/fingerprint"
	"github.com/relaygw/relay/pkg/tokenpool"
)

// BuildHeaders assembles the full HTTP header set for the outbound vendor
// chat call (§4.7 step 4), combining the fixed framing/auth headers
// with the per-token fingerprint (C3).
func BuildHeaders(token tokenpool.TokenRecord, nowMs int64) (map[string]string, error) {
	fp := fingerprint.TokenFingerprint{
		ChecksumFirst:  token.ChecksumFirst,
		ChecksumSecond: token.ChecksumSecond,
		ClientKey:      token.ClientKey,
		ConfigVersion:  token.ConfigVersion,
		Timezone:       token.Timezone,
	}
	headers, err := fingerprint.BuildHeaders(fp, nowMs)
	if err != nil {
		return nil, err
	}
	headers["authorization"] = "Bearer " + token.PrimaryToken
	headers["content-type"] = "application/connect+proto"
	return headers, nil
}
