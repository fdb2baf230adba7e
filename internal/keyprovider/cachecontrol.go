package keyprovider

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxAgeLimit keeps max-age * time.Second from overflowing.
const maxAgeLimit = 1 << 31

// maxAge extracts the max-age directive from every Cache-Control line.
// Malformed or negative values count as absent.
func maxAge(h http.Header) (time.Duration, bool) {
	for _, line := range h.Values("Cache-Control") {
		for _, directive := range strings.Split(line, ",") {
			name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(name), "max-age") {
				continue
			}
			secs, err := strconv.ParseInt(strings.Trim(strings.TrimSpace(value), `"`), 10, 64)
			if err != nil || secs < 0 {
				return 0, false
			}
			secs = min(secs, maxAgeLimit)
			return time.Duration(secs) * time.Second, true
		}
	}
	return 0, false
}
