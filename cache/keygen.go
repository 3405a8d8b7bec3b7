package cache

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"strings"
)

var unsafeChars = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	"#", "_",
	"&", "_",
	"=", "_",
	" ", "_",
)

// FileName converts an httpcache key (a request URL, optionally prefixed by
// the method) into a safe filename.
func FileName(key string) string {
	name := key
	if u, err := url.Parse(key); err == nil && u.Host != "" {
		// Build key from host + path + query
		parts := []string{u.Host}
		if p := strings.Trim(u.Path, "/"); p != "" {
			parts = append(parts, p)
		}
		if u.RawQuery != "" {
			parts = append(parts, u.RawQuery)
		}
		name = strings.Join(parts, "_")
	}

	name = unsafeChars.Replace(name)

	// For very long keys, use hash to avoid filesystem limits
	if len(name) > 200 {
		return fmt.Sprintf("hash_%x.json", md5.Sum([]byte(key)))
	}
	return name + ".json"
}
