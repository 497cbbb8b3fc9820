package crawl

import (
	"net/url"
	"strings"
)

// publicDomainSuffixes identify government, association, and academic hosts.
// Articles from these sources may retain their raw content; everything else
// stores only the generated summary (copyright policy).
var publicDomainSuffixes = []string{
	".go.kr",
	".or.kr",
	".ac.kr",
	".gov",
}

// IsPublicSource reports whether the URL's host belongs to an official
// public-sector domain.
func IsPublicSource(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	for _, suffix := range publicDomainSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}

	return strings.Contains(host, "government")
}
