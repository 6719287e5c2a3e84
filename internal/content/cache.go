package content

import "sync"

// Cache holds resolved documents keyed by "section/slug".
type Cache interface {
	Get(key string) (*SerializedDocument, bool)
	Set(key string, doc *SerializedDocument)
}

// MemoryCache is a process-wide, write-once/read-many cache. Entries never
// expire; content is deployed with the build.
type MemoryCache struct {
	mu   sync.RWMutex
	docs map[string]*SerializedDocument
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{docs: make(map[string]*SerializedDocument)}
}

func (c *MemoryCache) Get(key string) (*SerializedDocument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[key]
	return doc, ok
}

// Set stores doc under key. A concurrent Set for the same key is harmless:
// both values were rendered from the same file, last write wins.
func (c *MemoryCache) Set(key string, doc *SerializedDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[key] = doc
}

// Len returns the number of cached documents.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// NopCache never stores anything; every resolution reads the file.
type NopCache struct{}

func (NopCache) Get(string) (*SerializedDocument, bool) { return nil, false }

func (NopCache) Set(string, *SerializedDocument) {}

func cacheKey(section, slug string) string {
	return section + "/" + slug
}
