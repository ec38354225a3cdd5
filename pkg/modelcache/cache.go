/*
Package modelcache owns the lifecycle of loaded embedding models.

The cache guarantees at most one concurrent load per model identifier:
the first caller for a cold model starts the load, every other caller for
the same identifier waits on that load and receives the same result. Loads
for distinct identifiers proceed independently. Ready tables are immutable,
so handing them to any number of concurrent readers needs no locking beyond
the brief map access, and evicting an entry never invalidates a table
reference a caller already holds.
*/
package modelcache

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordvec/internal/sysinfo"
	"github.com/bastiangx/wordvec/pkg/catalog"
	"github.com/bastiangx/wordvec/pkg/embedding"
)

// State is the lifecycle state of a cache entry.
type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

// entry tracks one model identifier. state, table, err and loadTime are
// written before ready is closed and never after, so waiters may read them
// once ready is done. An entry left in the map is Loading or Ready; failed
// entries are removed immediately so the next Acquire can retry.
type entry struct {
	state      State
	table      embedding.Table
	err        error
	ready      chan struct{}
	loadTime   time.Duration
	lastAccess time.Time
}

// Options configures cache limits.
type Options struct {
	// MaxLoaded bounds the number of Ready models; 0 means unlimited.
	// When exceeded, the least recently used model is evicted.
	MaxLoaded int
	// LoadTimeout bounds a single load; 0 means no timeout.
	LoadTimeout time.Duration
}

// Cache is the shared model store. Safe for concurrent use.
type Cache struct {
	catalog *catalog.Catalog
	loader  embedding.Loader
	opts    Options

	mu      sync.Mutex
	entries map[string]*entry
}

// Info describes one Ready model for listing and health reporting.
type Info struct {
	ID          string        `json:"model"`
	Description string        `json:"description"`
	VocabSize   int           `json:"vocabulary_size"`
	VectorSize  int           `json:"vector_size"`
	LoadTime    time.Duration `json:"-"`
	LoadSeconds float64       `json:"load_time_seconds"`
	LastAccess  time.Time     `json:"last_access"`
}

// New creates a cache over the given catalog and loader.
func New(cat *catalog.Catalog, loader embedding.Loader, opts Options) *Cache {
	return &Cache{
		catalog: cat,
		loader:  loader,
		opts:    opts,
		entries: make(map[string]*entry),
	}
}

// Acquire returns the table for id, loading it on first use.
//
// Identifiers not present in the catalog fail immediately with
// *UnknownModelError and never reach the loader. If a load for id is in
// flight the call blocks until it resolves and shares its outcome. ctx
// cancels only this caller's wait, never the load itself: other waiters
// keep waiting and the table still lands in the cache.
func (c *Cache) Acquire(ctx context.Context, id string) (embedding.Table, error) {
	if !c.catalog.Has(id) {
		return nil, &UnknownModelError{Model: id, Available: c.catalog.IDs()}
	}

	c.mu.Lock()
	if e, ok := c.entries[id]; ok {
		if e.state == StateReady {
			e.lastAccess = time.Now()
			t := e.table
			c.mu.Unlock()
			return t, nil
		}
		c.mu.Unlock()
		return c.wait(ctx, e)
	}

	e := &entry{state: StateLoading, ready: make(chan struct{})}
	c.entries[id] = e
	c.mu.Unlock()

	log.Infof("Loading model: %s", id)
	go c.load(id, e)
	return c.wait(ctx, e)
}

// wait blocks until e resolves or ctx is done.
func (c *Cache) wait(ctx context.Context, e *entry) (embedding.Table, error) {
	select {
	case <-e.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.state == StateReady {
		e.lastAccess = time.Now()
		return e.table, nil
	}
	return nil, e.err
}

// load runs the loader for id and publishes the outcome on e.
// The load context is detached from any caller so cancellation of one
// waiter cannot poison the load for the rest.
func (c *Cache) load(id string, e *entry) {
	ctx := context.Background()
	cancel := func() {}
	if c.opts.LoadTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.opts.LoadTimeout)
	}
	defer cancel()

	start := time.Now()
	table, err := c.loader.Load(ctx, id)
	elapsed := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		e.state = StateFailed
		e.err = err
		// Remove so a later Acquire retries; waiters already hold e.
		delete(c.entries, id)
		close(e.ready)
		log.Errorf("Failed to load model %s after %s: %v", id, elapsed.Round(time.Millisecond), err)
		return
	}

	e.state = StateReady
	e.table = table
	e.loadTime = elapsed
	e.lastAccess = time.Now()
	close(e.ready)
	c.evictLocked(id)

	rep := sysinfo.Snapshot()
	log.Infof("Loaded model %s in %s: %d words, %dD, process memory %.1f MB",
		id, elapsed.Round(time.Millisecond), table.Len(), table.Dim(), rep.ProcessRSSMB)
}

// evictLocked drops least-recently-used Ready entries until the count is
// within MaxLoaded, never touching keep or in-flight loads. Tables already
// handed out stay valid; eviction only forgets the cache's own reference.
func (c *Cache) evictLocked(keep string) {
	if c.opts.MaxLoaded <= 0 {
		return
	}
	for {
		ready := 0
		oldestID := ""
		var oldest time.Time
		for id, e := range c.entries {
			if e.state != StateReady {
				continue
			}
			ready++
			if id == keep {
				continue
			}
			if oldestID == "" || e.lastAccess.Before(oldest) {
				oldestID = id
				oldest = e.lastAccess
			}
		}
		if ready <= c.opts.MaxLoaded || oldestID == "" {
			return
		}
		delete(c.entries, oldestID)
		log.Infof("Evicted model %s (LRU, limit %d)", oldestID, c.opts.MaxLoaded)
	}
}

// Unload removes a Ready model. Returns false when the model is not
// loaded; models mid-load cannot be unloaded.
func (c *Cache) Unload(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || e.state != StateReady {
		return false
	}
	delete(c.entries, id)
	log.Infof("Unloaded model: %s", id)
	return true
}

// UnloadAll removes every Ready model and returns how many were dropped.
func (c *Cache) UnloadAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, e := range c.entries {
		if e.state != StateReady {
			continue
		}
		delete(c.entries, id)
		n++
	}
	if n > 0 {
		log.Infof("Unloaded %d models", n)
	}
	return n
}

// Loaded returns info for every Ready model, sorted by identifier.
func (c *Cache) Loaded() []Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Info
	for id, e := range c.entries {
		if e.state != StateReady {
			continue
		}
		meta, _ := c.catalog.Get(id)
		out = append(out, Info{
			ID:          id,
			Description: meta.Description,
			VocabSize:   e.table.Len(),
			VectorSize:  e.table.Dim(),
			LoadTime:    e.loadTime,
			LoadSeconds: math.Round(e.loadTime.Seconds()*100) / 100,
			LastAccess:  e.lastAccess,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadedIDs returns the identifiers of Ready models, sorted.
func (c *Cache) LoadedIDs() []string {
	infos := c.Loaded()
	ids := make([]string, len(infos))
	for i, in := range infos {
		ids[i] = in.ID
	}
	return ids
}

// IsLoaded reports whether id is Ready.
func (c *Cache) IsLoaded(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return ok && e.state == StateReady
}

// EstimateMemoryMB approximates the memory held by Ready tables:
// vocabulary size times dimensionality times 4 bytes per float32.
func (c *Cache) EstimateMemoryMB() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, e := range c.entries {
		if e.state != StateReady {
			continue
		}
		total += float64(e.table.Len()) * float64(e.table.Dim()) * 4 / (1024 * 1024)
	}
	return math.Round(total*100) / 100
}
