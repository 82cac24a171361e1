package extractor

import (
	"net/url"
	"strings"

	"github.com/rohmanhakim/searchcrawl/pkg/urlutil"
)

/*
Link filtering (spec.md §4.1, applied during extraction):

  - reject non-HTTPS
  - reject URLs whose path ends with a blocklisted extension
  - accept only hosts whose suffix appears in the accepted-domain list

FilterLinks resolves every raw href against the page it was discovered
on, drops anything that fails resolution or the rules above, and
deduplicates by canonical form. It is a pure function — no frontier or
VisitedSet state is consulted here; that happens at frontier enqueue
time.
*/
func FilterLinks(source url.URL, rawLinks []string, acceptedDomains map[string]struct{}, skipExtensions map[string]struct{}) []url.URL {
	seen := make(map[string]struct{}, len(rawLinks))
	filtered := make([]url.URL, 0, len(rawLinks))

	for _, raw := range rawLinks {
		resolved, ok := urlutil.Resolve(source, raw)
		if !ok {
			continue
		}
		if resolved.Scheme != "https" {
			continue
		}
		if hasSkippedExtension(resolved.Path, skipExtensions) {
			continue
		}
		if !hostAccepted(resolved.Hostname(), acceptedDomains) {
			continue
		}

		key := resolved.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		filtered = append(filtered, resolved)
	}

	return filtered
}

func hasSkippedExtension(path string, skipExtensions map[string]struct{}) bool {
	idx := strings.LastIndex(path, ".")
	if idx == -1 || idx == len(path)-1 {
		return false
	}
	ext := strings.ToLower(path[idx+1:])
	_, skipped := skipExtensions[ext]
	return skipped
}

func hostAccepted(host string, acceptedDomains map[string]struct{}) bool {
	host = strings.ToLower(host)
	for domain := range acceptedDomains {
		domain = strings.ToLower(domain)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
