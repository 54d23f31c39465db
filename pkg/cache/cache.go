// Package cache provides a thread-safe LRU cache for pre-link bytecode
// programs, keyed on both the source text and the target VMDescriptor.
//
// A program compiled for one VM is binary garbage on another — different
// opcode numbering, a different stack limit, a different small-immediate
// range — so the same source text compiled against two VMDescriptors must
// never collide on one cache entry. Digest folds both into the key.
//
// # Example
//
//	c := cache.New(1024)
//	key := cache.Digest(sourceText, vm)
//	program, err := c.GetOrCompile(key, compile)
package cache

import (
	"container/list"
	"encoding/binary"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/blake2b"

	"github.com/eventscript-lang/evc/pkg/bytecode"
	"github.com/eventscript-lang/evc/pkg/types"
)

// Key is the blake2b-256 digest of a source text plus the VMDescriptor it
// was (or would be) compiled against, used instead of either as the cache's
// key type.
type Key [blake2b.Size256]byte

// Digest computes the cache key for source compiled against vm. The
// opcode table is walked in class order rather than map iteration order so
// two descriptors with identical assignments always hash identically
// regardless of how their Opcodes map was built.
func Digest(source []byte, vm *types.VMDescriptor) Key {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic("cache: blake2b.New256: " + err.Error())
	}
	h.Write(source)

	var word [8]byte
	putUint := func(v int64) {
		binary.LittleEndian.PutUint64(word[:], uint64(v))
		h.Write(word[:])
	}
	putUint(int64(vm.BitWidth))
	putUint(int64(vm.SmallImmediateMin))
	putUint(int64(vm.SmallImmediateMax))
	putUint(int64(vm.MaxStackDepth))

	classes := make([]types.OpcodeClass, 0, len(vm.Opcodes))
	for c := range vm.Opcodes {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	for _, c := range classes {
		putUint(int64(c))
		putUint(int64(vm.Opcodes[c]))
	}

	var key Key
	copy(key[:], h.Sum(nil))
	return key
}

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	key     Key
	program *bytecode.Program
}

// Stats counts a Cache's lifetime hits, misses and evictions, for callers
// that want to log or export cache effectiveness alongside pass timings.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a thread-safe LRU (Least Recently Used) cache for compiled
// programs. Once the capacity is reached, the least recently accessed
// entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[Key]*list.Element

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[Key]*list.Element, capacity),
	}
}

// Get retrieves a compiled program from the cache.
// Returns (program, true) if found and moves the entry to front (MRU).
// Returns (nil, false) if not present.
func (c *Cache) Get(key Key) (*bytecode.Program, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	alreadyFront := ok && c.ll.Front() == el
	var program *bytecode.Program
	if ok {
		program = el.Value.(*entry).program
	}
	c.mu.RUnlock()
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if !alreadyFront {
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
			program = el.Value.(*entry).program
		}
		c.mu.Unlock()

		if !ok {
			c.misses.Add(1)
			return nil, false
		}
	}
	c.hits.Add(1)
	return program, true
}

// Set inserts or replaces a program in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(key Key, program *bytecode.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).program = program
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry{key: key, program: program})
	c.items[key] = el
}

// GetOrCompile retrieves the program for key from cache, or calls compile()
// to create it, caches the result, and returns it.
// A failed compile is not cached (no negative caching of errors), so the
// next call for the same key calls compile again. Callers that miss on the
// same key at the same time may each call compile.
func (c *Cache) GetOrCompile(key Key, compile func() (*bytecode.Program, error)) (*bytecode.Program, error) {
	if program, ok := c.Get(key); ok {
		return program, nil
	}
	program, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(key, program)
	return program, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[Key]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
	c.evictions.Add(1)
}

// Stats returns a snapshot of the cache's lifetime hit/miss/eviction
// counts.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
