package normalize

import (
	"encoding/base32"
	"fmt"
	"strings"
	"time"
)

const (
	fallbackIDLength         = 24
	fallbackContentPrefixLen = 32
)

var fallbackEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// FallbackReviewID synthesizes an external id for providers that expose none.
// The result is salted with the extraction time, so re-extracting the same
// review later yields a different id; the remote store treats it as new.
func FallbackReviewID(author string, rating int, content string, now time.Time) string {
	prefix := content
	if len(prefix) > fallbackContentPrefixLen {
		prefix = prefix[:fallbackContentPrefixLen]
	}

	raw := fmt.Sprintf("%s|%d|%s|%d", strings.ToLower(author), rating, prefix, now.UnixNano())
	id := fallbackEncoding.EncodeToString([]byte(raw))
	if len(id) > fallbackIDLength {
		id = id[:fallbackIDLength]
	}
	return id
}
