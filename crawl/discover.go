// Package crawl finds recipe pages linked from an index page, for batch
// ingestion with `ingest --all`. It reads the site's sitemap.xml first and
// falls back to following links from the index page.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/recipepipe/core"
)

const (
	// DefaultLimit caps the number of recipe URLs returned.
	DefaultLimit = 50
	// DefaultDepth follows links from the index page only.
	DefaultDepth = 1

	maxPages = 100
)

// Options tunes discovery.
type Options struct {
	Match string
	Limit int
	Depth int
}

type urlset struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// Discover returns candidate recipe URLs reachable from indexURL, in
// discovery order. The index page itself is never included.
func Discover(ctx context.Context, indexURL string, fetcher core.Fetcher, opts Options) ([]string, error) {
	base, err := url.Parse(indexURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid index URL: %s", indexURL)
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Depth <= 0 {
		opts.Depth = DefaultDepth
	}
	rules := Rules{Host: base.Host, Match: opts.Match}

	if urls := fromSitemap(ctx, base, fetcher, rules, opts.Limit); len(urls) > 0 {
		return urls, nil
	}
	return fromLinks(ctx, base, fetcher, rules, opts)
}

func fromSitemap(ctx context.Context, base *url.URL, fetcher core.Fetcher, rules Rules, limit int) []string {
	sitemap := (&url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/sitemap.xml"}).String()
	page, err := fetcher.Fetch(ctx, sitemap)
	if err != nil {
		return nil
	}

	var set urlset
	if err := xml.Unmarshal([]byte(page.HTML), &set); err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, u := range set.URLs {
		loc := Canonical(strings.TrimSpace(u.Loc))
		if seen[loc] || !rules.Allow(loc) {
			continue
		}
		seen[loc] = true
		out = append(out, loc)
		if len(out) == limit {
			break
		}
	}
	return out
}

func fromLinks(ctx context.Context, base *url.URL, fetcher core.Fetcher, rules Rules, opts Options) ([]string, error) {
	start := Canonical(base.String())
	queue := newFrontier()
	queue.push(start, 0)

	var out []string
	for visited := 0; queue.more() && len(out) < opts.Limit && visited < maxPages; visited++ {
		current := queue.pop()
		if err := ctx.Err(); err != nil {
			return out, err
		}

		page, err := fetcher.Fetch(ctx, current.url)
		if err != nil {
			if current.url == start {
				return nil, fmt.Errorf("fetching index page: %w", err)
			}
			continue
		}

		links, err := pageLinks(page.HTML, current.url)
		if err != nil {
			continue
		}
		for _, link := range links {
			link = Canonical(link)
			if link == start || queue.seen[link] || !rules.Follow(link) {
				continue
			}
			// Listing pages are crawled even when Match excludes them.
			queue.push(link, current.depth+1)
			if !rules.Allow(link) {
				continue
			}
			out = append(out, link)
			if len(out) == opts.Limit {
				break
			}
		}
		// Pages at the depth limit are returned but not expanded.
		for queue.more() && queue.items[queue.next].depth >= opts.Depth {
			queue.pop()
		}
	}
	return out, nil
}

// pageLinks returns every href on the page resolved against pageURL.
func pageLinks(html, pageURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})
	return links, nil
}
