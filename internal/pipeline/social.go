package pipeline

import (
	"net/url"
	"strings"

	"github.com/Kaliakbarb/persona/internal/provider"
)

// socialPlatforms maps known social-platform domains to display labels.
var socialPlatforms = map[string]string{
	"linkedin.com":  "LinkedIn",
	"twitter.com":   "Twitter",
	"x.com":         "Twitter",
	"facebook.com":  "Facebook",
	"instagram.com": "Instagram",
	"github.com":    "GitHub",
}

// ClassifySocialProfiles extracts social-platform entries from organic search
// results. A result matches when its URL host equals a known platform domain
// or is a subdomain of one; anything else stays in the raw results only.
func ClassifySocialProfiles(results []provider.SearchResult) []SocialProfile {
	profiles := []SocialProfile{}
	for _, r := range results {
		platform, ok := matchPlatform(r.Link)
		if !ok {
			continue
		}
		profiles = append(profiles, SocialProfile{
			Platform: platform,
			URL:      r.Link,
			Title:    r.Title,
			Snippet:  r.Snippet,
		})
	}
	return profiles
}

func matchPlatform(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	// A scheme-less link ("linkedin.com/in/jdoe") parses with an empty host.
	if u.Hostname() == "" {
		if u, err = url.Parse("https://" + link); err != nil {
			return "", false
		}
	}
	host := strings.ToLower(u.Hostname())
	for domain, platform := range socialPlatforms {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform, true
		}
	}
	return "", false
}
