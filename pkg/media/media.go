// Package media resolves event media references into fetchable URLs and
// decides whether a URL is worth rendering as an image.
package media

import (
	"net/url"
	"strings"
)

// imageExtensions lists the suffixes treated as displayable images.
// Anything else (video, documents) is skipped rather than attempted and failed.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// IsLikelyImage reports whether the URL looks like a displayable image,
// by case-insensitive extension match.
func IsLikelyImage(u string) bool {
	lower := strings.ToLower(u)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Resolve turns a possibly-relative media reference into an absolute URL.
// Empty input resolves to empty. Absolute http(s) URLs pass through unchanged.
// Paths under /media/ are joined to the origin of apiBase, dropping any path
// prefix apiBase carries; other relative paths are joined onto apiBase with
// exactly one separating slash. An unparseable apiBase degrades to returning
// the raw input instead of failing the caller.
func Resolve(media, apiBase string) string {
	if media == "" {
		return ""
	}
	if strings.HasPrefix(media, "http://") || strings.HasPrefix(media, "https://") {
		return media
	}

	base, err := url.Parse(apiBase)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return media
	}

	if strings.HasPrefix(media, "/media/") {
		return base.Scheme + "://" + base.Host + media
	}

	return strings.TrimRight(apiBase, "/") + "/" + strings.TrimLeft(media, "/")
}
