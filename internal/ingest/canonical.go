package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Query parameters that carry tracking state, not identity.
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"ref":     true,
	"ref_src": true,
}

// CanonicalURL normalizes a URL so the same document always yields the
// same string: lowercase scheme and host, fragment dropped, tracking
// parameters stripped, remaining query sorted, trailing slash trimmed on
// non-root paths. The rule is idempotent.
func CanonicalURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url %s: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %s: missing scheme or host", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	query := u.Query()
	for key := range query {
		if trackingParams[key] || strings.HasPrefix(key, "utm_") {
			query.Del(key)
		}
	}
	u.RawQuery = query.Encode() // Encode sorts keys

	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

// ContentID derives the stable item identity from the canonical URL.
func ContentID(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])
}
