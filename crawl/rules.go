package crawl

import (
	"net/url"
	"path"
	"strings"
)

// assetExtensions never point at a recipe page.
var assetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".avif": true,
	".css": true, ".js": true, ".mjs": true, ".json": true,
	".woff": true, ".woff2": true, ".ttf": true,
	".mp4": true, ".webm": true, ".mp3": true,
	".zip": true, ".gz": true, ".xml": true,
	".pdf": true, ".doc": true, ".docx": true,
}

// Rules decides which discovered links are recipe candidates.
type Rules struct {
	// Host restricts candidates to one site.
	Host string
	// Match, when set, must appear in the candidate's path
	// (e.g. "/recette" or "/recipes/").
	Match string
}

// Follow reports whether rawURL may be visited while crawling: an http(s)
// page on the same host that is not a static asset.
func (r Rules) Follow(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if !strings.EqualFold(u.Host, r.Host) {
		return false
	}
	return !assetExtensions[strings.ToLower(path.Ext(u.Path))]
}

// Allow reports whether rawURL is a candidate recipe page.
func (r Rules) Allow(rawURL string) bool {
	if !r.Follow(rawURL) {
		return false
	}
	u, _ := url.Parse(rawURL)
	if u.Path == "" || u.Path == "/" {
		return false
	}
	return r.Match == "" || strings.Contains(u.Path, r.Match)
}

// Canonical drops the fragment and any trailing slash so the same page is
// ingested once.
func Canonical(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
	return u.String()
}
