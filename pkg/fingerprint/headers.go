package fingerprint

const (
	// ClientVersion is the fabricated x-cursor-client-version value the
	// gateway presents to the vendor. It is a fixed, plausible version
	// string, not a live probe of any real client install.
	ClientVersion = "1.5.11"

	// GhostMode is the constant x-ghost-mode flag value; the vendor's own
	// clients send this to opt out of any training-data retention the
	// vendor performs by default.
	GhostMode = "true"
)

// TokenFingerprint is the set of per-token values needed to fill in the
// vendor request headers described in §4.7.
type TokenFingerprint struct {
	ChecksumFirst  string
	ChecksumSecond string
	ClientKey      string
	ConfigVersion  string
	Timezone       string
}

// BuildHeaders assembles the vendor-facing headers that accompany every
// request, given the selected token's fingerprint and the current time.
// The authorization and content-type headers are added by the caller, which
// also knows the request body's framing tag.
func BuildHeaders(fp TokenFingerprint, nowMs int64) (map[string]string, error) {
	checksum, err := BuildChecksumHeader(fp.ChecksumFirst, fp.ChecksumSecond, nowMs)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"x-cursor-checksum":       checksum,
		"x-cursor-client-key":     fp.ClientKey,
		"x-cursor-client-version": ClientVersion,
		"x-cursor-config-version": fp.ConfigVersion,
		"x-ghost-mode":            GhostMode,
		"connect-protocol-version": "1",
	}
	if fp.Timezone != "" {
		headers["x-cursor-timezone"] = fp.Timezone
	}
	return headers, nil
}
