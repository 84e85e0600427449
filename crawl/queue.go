package crawl

// frontier is a breadth-first queue of pages to visit. Each URL is queued
// at most once.
type frontier struct {
	items []visit
	seen  map[string]bool
	next  int
}

type visit struct {
	url   string
	depth int
}

func newFrontier() *frontier {
	return &frontier{seen: make(map[string]bool)}
}

// push queues url unless it was already seen.
func (f *frontier) push(url string, depth int) {
	if f.seen[url] {
		return
	}
	f.seen[url] = true
	f.items = append(f.items, visit{url: url, depth: depth})
}

func (f *frontier) more() bool { return f.next < len(f.items) }

func (f *frontier) pop() visit {
	v := f.items[f.next]
	f.next++
	return v
}
