package metadata

import "sync"

// Key identifies an instance metadata fact. Its value is the path under
// /latest/meta-data/.
type Key string

const (
	KeyInstanceID Key = "instance-id"
	KeyRegion     Key = "placement/region"
)

// State tags a cached Fact.
type State uint8

const (
	// StateUnknown means the last fetch failed. Reads of an unknown fact
	// always go back to the metadata service.
	StateUnknown State = iota
	// StateEmpty means the process is not running on an EC2 Linux host. The
	// empty value is final.
	StateEmpty
	// StatePopulated means Value holds the fetched fact.
	StatePopulated
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// Fact is a metadata value tagged with how it was obtained.
type Fact struct {
	State State
	Value string
}

// Populated reports whether the fact holds a fetched value.
func (f Fact) Populated() bool {
	return f.State == StatePopulated
}

// String returns the fact's value, which is empty unless populated.
func (f Fact) String() string {
	return f.Value
}

// Cache memoizes facts for the lifetime of its owner. It is safe for
// concurrent use; entries for different keys are independent.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]Fact
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]Fact)}
}

// Get returns the fact stored under key, if any.
func (c *Cache) Get(key Key) (Fact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.entries[key]
	return f, ok
}

// Set stores the fact under key, replacing any previous entry.
func (c *Cache) Set(key Key, f Fact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = f
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
