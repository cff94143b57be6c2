package highlight

import (
	"hash/maphash"
	"log/slog"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/five82/tmplplay/internal/logging"
)

const (
	cacheExpiration = 5 * time.Minute
	cacheCleanup    = 10 * time.Minute

	// rendersPerSlot bounds the texts kept per syntax and palette. The
	// struct and generated panes share the Go slot.
	rendersPerSlot = 4
)

// Renderer highlights and merges text, caching the merged nodes. The view
// asks for the same three buffers on every frame, so hits dominate.
type Renderer struct {
	hl    Highlighter
	cache *gocache.Cache
	log   *slog.Logger
	seed  maphash.Seed

	mu     sync.Mutex
	recent map[string][]string // slot -> cache keys, oldest first
}

type cached struct {
	text  string
	nodes []Node
}

// NewRenderer wraps a Highlighter. A nil Highlighter uses Chroma.
func NewRenderer(hl Highlighter) *Renderer {
	if hl == nil {
		hl = Chroma{}
	}
	return &Renderer{
		hl:    hl,
		cache:  gocache.New(cacheExpiration, cacheCleanup),
		log:    logging.For(logging.CatHighlight),
		seed:   maphash.MakeSeed(),
		recent: make(map[string][]string),
	}
}

// Render returns the merged nodes for text. Highlighter errors degrade to a
// single plain node so the text is always shown.
func (r *Renderer) Render(text string, syntax Syntax, p Palette) []Node {
	slot := string(syntax) + "\x00" + p.ID
	key := slot + "\x00" + strconv.FormatUint(maphash.String(r.seed, text), 16)
	if v, ok := r.cache.Get(key); ok {
		if c, ok := v.(cached); ok && c.text == text {
			r.remember(slot, key)
			return c.nodes
		}
	}

	var nodes []Node
	fragments, err := r.hl.Highlight(text, syntax, p)
	if err != nil {
		r.log.Debug("highlight failed", "syntax", syntax, "error", err)
		if text != "" {
			nodes = []Node{Plain(text)}
		}
	} else {
		nodes = Merge(fragments, p.Defaults.Resolve)
	}

	r.cache.Set(key, cached{text: text, nodes: nodes}, gocache.DefaultExpiration)
	r.remember(slot, key)
	return nodes
}

// remember marks key as the most recently used render in slot and evicts
// the least recently used once the slot is full.
func (r *Renderer) remember(slot, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := r.recent[slot]
	for i, k := range keys {
		if k == key {
			keys = append(keys[:i], keys[i+1:]...)
			break
		}
	}
	keys = append(keys, key)
	for len(keys) > rendersPerSlot {
		r.cache.Delete(keys[0])
		keys = keys[1:]
	}
	r.recent[slot] = keys
}

// Len reports the number of cached renders.
func (r *Renderer) Len() int {
	return r.cache.ItemCount()
}

// Flush drops cached renders.
func (r *Renderer) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Flush()
	clear(r.recent)
}
