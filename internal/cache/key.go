package cache

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint reduces a set of query parameters to a stable cache key.
// Parameter order does not matter; two requests asking for the same
// page produce the same key.
func Fingerprint(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}

	return fmt.Sprintf("%x", md5.Sum([]byte(b.String())))
}
