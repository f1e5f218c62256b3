package db

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

// ExistingCache remembers Node.Existing listings and forgets a listing
// as soon as the filesystem reports a change in any directory that
// listing read.  It is meant for callers that enumerate the same level
// many times during one operation, such as a dedup run that reloads
// its siblings for every candidate.
type ExistingCache struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	entries map[string][]Locs
	deps    map[string]map[string]bool // watched dir -> cache keys
	done    chan struct{}
}

func NewExistingCache() (c *ExistingCache, err error) {
	defer Return(&err)
	c = &ExistingCache{
		entries: make(map[string][]Locs),
		deps:    make(map[string]map[string]bool),
		done:    make(chan struct{}),
	}
	c.watcher, err = fsnotify.NewWatcher()
	Ck(err)
	go c.run()
	return c, nil
}

func (c *ExistingCache) run() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.Invalidate(filepath.Dir(event.Name))
			// the event may be for a watched directory itself
			c.Invalidate(event.Name)
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("existing cache watcher: %v", err)
			c.Flush()
		}
	}
}

func cacheKey(n *Node, root string, parentLocs Locs) string {
	return filepath.Clean(root) + "\x00" + n.Name() + "\x00" + parentLocs.String()
}

// Existing returns n.Existing(root, parentLocs), from the cache when
// possible.  The returned slice is shared; don't modify it.
func (c *ExistingCache) Existing(n *Node, root string, parentLocs Locs) (res []Locs, err error) {
	key := cacheKey(n, root, parentLocs)
	c.mu.Lock()
	res, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return
	}

	// List once to learn which directories to watch, then list again
	// with the watches in place so no change can slip in between.
	_, visited, err := n.existing(root, parentLocs)
	if err != nil {
		return
	}
	if len(visited) == 0 {
		// parent directory missing; nothing to watch yet
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.watch(key, visited)
	if err != nil {
		return
	}
	res, visited, err = n.existing(root, parentLocs)
	if err != nil {
		return
	}
	err = c.watch(key, visited)
	if err != nil {
		return
	}
	c.entries[key] = res
	return
}

// watch must be called with c.mu held.
func (c *ExistingCache) watch(key string, dirs []string) (err error) {
	for _, dir := range dirs {
		if c.deps[dir] == nil {
			err = c.watcher.Add(dir)
			if err != nil {
				return
			}
			c.deps[dir] = make(map[string]bool)
		}
		c.deps[dir][key] = true
	}
	return
}

// Invalidate drops every listing that read dir.
func (c *ExistingCache) Invalidate(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.deps[dir] {
		delete(c.entries, key)
	}
	delete(c.deps, dir)
	// keep watching: removing and re-adding races with new events
}

// Flush drops every listing.
func (c *ExistingCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]Locs)
	for dir := range c.deps {
		c.deps[dir] = make(map[string]bool)
	}
}

func (c *ExistingCache) Close() error {
	close(c.done)
	return c.watcher.Close()
}
