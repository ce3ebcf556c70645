// Package accessor reads members of objects whose internal layout is not part
// of their public contract.
//
// An accessor is resolved once per (type, member) pair with reflection and
// then reads the member through a fixed offset, so steady-state reads cost a
// pointer addition and a load. Accessors are memoized in a Cache that is
// safe for concurrent use: lookups of published accessors take no lock,
// misses serialize on a single cache-wide mutex.
package accessor

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
)

type kind uint8

const (
	kindField kind = iota + 1
	kindNested
	kindIndex
)

func (k kind) String() string {
	switch k {
	case kindField:
		return "field"
	case kindNested:
		return "nested"
	case kindIndex:
		return "index"
	}
	return "unknown"
}

type key struct {
	owner  reflect.Type
	member string
	kind   kind
	result reflect.Type
}

// Cache memoizes accessors for the lifetime of the process or session that
// owns it. The zero value is not usable; create one with NewCache.
type Cache struct {
	mu      sync.Mutex
	entries atomic.Pointer[map[key]any]
	builds  atomic.Int64
	logger  *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used to report accessor builds and defects.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache returns an empty Cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	empty := make(map[key]any)
	c.entries.Store(&empty)
	return c
}

// Builds reports how many accessors this cache has built.
func (c *Cache) Builds() int64 {
	return c.builds.Load()
}

// Len reports how many accessors are published.
func (c *Cache) Len() int {
	return len(*c.entries.Load())
}

func (c *Cache) lookup(k key) (any, bool) {
	v, ok := (*c.entries.Load())[k]
	return v, ok
}

// load returns the accessor for k, building it with build on a miss.
// Failed builds are not published.
func (c *Cache) load(k key, build func() (any, error)) (any, error) {
	if v, ok := c.lookup(k); ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := *c.entries.Load()
	if v, ok := current[k]; ok {
		return v, nil
	}

	v, err := build()
	if err != nil {
		c.logger.Error("opaque accessor build failed",
			"type", typeName(k.owner), "member", k.member, "kind", k.kind.String(), "error", err)
		return nil, err
	}
	c.builds.Add(1)

	next := make(map[key]any, len(current)+1)
	for ek, ev := range current {
		next[ek] = ev
	}
	next[k] = v
	c.entries.Store(&next)

	c.logger.Debug("opaque accessor built",
		"type", typeName(k.owner), "member", k.member, "kind", k.kind.String())
	return v, nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
