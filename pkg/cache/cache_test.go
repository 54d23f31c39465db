package cache_test

import (
	"errors"
	"testing"

	"github.com/eventscript-lang/evc/pkg/bytecode"
	"github.com/eventscript-lang/evc/pkg/cache"
	"github.com/eventscript-lang/evc/pkg/types"
)

func program(maxStack int) *bytecode.Program {
	return &bytecode.Program{MaxStackDepth: maxStack}
}

var defaultVM = types.DefaultVMDescriptor()

func TestCacheGetSet(t *testing.T) {
	c := cache.New(2)
	key := cache.Digest([]byte("on tick => mem[0] = 1"), defaultVM)

	if _, ok := c.Get(key); ok {
		t.Fatalf("expected a miss on an empty cache")
	}

	c.Set(key, program(4))
	got, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected a hit after Set")
	}
	if got.MaxStackDepth != 4 {
		t.Errorf("got MaxStackDepth %d, want 4", got.MaxStackDepth)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.New(2)
	keyA := cache.Digest([]byte("a"), defaultVM)
	keyB := cache.Digest([]byte("b"), defaultVM)
	keyC := cache.Digest([]byte("c"), defaultVM)

	c.Set(keyA, program(1))
	c.Set(keyB, program(2))
	c.Get(keyA) // touch A, making B the LRU entry
	c.Set(keyC, program(3))

	if _, ok := c.Get(keyB); ok {
		t.Errorf("expected B to have been evicted as the least recently used entry")
	}
	if _, ok := c.Get(keyA); !ok {
		t.Errorf("expected A to still be cached")
	}
	if _, ok := c.Get(keyC); !ok {
		t.Errorf("expected C to still be cached")
	}
}

func TestCacheGetOrCompileCallsOnce(t *testing.T) {
	c := cache.New(8)
	key := cache.Digest([]byte("on tick => mem[0] = 1"), defaultVM)
	calls := 0
	compile := func() (*bytecode.Program, error) {
		calls++
		return program(1), nil
	}

	if _, err := c.GetOrCompile(key, compile); err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	if _, err := c.GetOrCompile(key, compile); err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	if calls != 1 {
		t.Errorf("got %d compile calls, want 1", calls)
	}
}

func TestCacheGetOrCompileDoesNotCacheErrors(t *testing.T) {
	c := cache.New(8)
	key := cache.Digest([]byte("broken"), defaultVM)
	boom := errors.New("boom")
	calls := 0
	compile := func() (*bytecode.Program, error) {
		calls++
		return nil, boom
	}

	if _, err := c.GetOrCompile(key, compile); err != boom {
		t.Fatalf("got error %v, want boom", err)
	}
	if _, ok := c.Get(key); ok {
		t.Errorf("a failed compile must not populate the cache")
	}
	if _, err := c.GetOrCompile(key, compile); err != boom {
		t.Fatalf("got error %v, want boom on retry", err)
	}
	if calls != 2 {
		t.Errorf("got %d compile calls, want 2 (no negative caching)", calls)
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := cache.New(8)
	key := cache.Digest([]byte("x"), defaultVM)
	c.Set(key, program(1))

	c.Invalidate(key)
	if _, ok := c.Get(key); ok {
		t.Errorf("expected Invalidate to remove the entry")
	}

	c.Set(key, program(1))
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("got Len() %d after Clear, want 0", c.Len())
	}
}

func TestDigestDistinguishesVMDescriptors(t *testing.T) {
	source := []byte("on tick => mem[0] = 1")
	otherVM := *defaultVM
	otherVM.MaxStackDepth = defaultVM.MaxStackDepth + 1

	if cache.Digest(source, defaultVM) == cache.Digest(source, &otherVM) {
		t.Fatalf("two VM descriptors that differ only in MaxStackDepth must not collide on the same key")
	}

	reordered := types.DefaultVMDescriptor()
	reordered.Opcodes = make(map[types.OpcodeClass]uint16, len(defaultVM.Opcodes))
	for k, v := range defaultVM.Opcodes {
		reordered.Opcodes[k] = v
	}
	if cache.Digest(source, defaultVM) != cache.Digest(source, reordered) {
		t.Errorf("two descriptors with identical opcode assignments built in different map-insertion order must hash identically")
	}
}

func TestCacheStats(t *testing.T) {
	c := cache.New(8)
	key := cache.Digest([]byte("x"), defaultVM)

	c.Get(key) // miss
	c.Set(key, program(1))
	c.Get(key) // hit

	stats := c.Stats()
	if stats.Misses != 1 || stats.Hits != 1 {
		t.Errorf("got stats %+v, want 1 miss and 1 hit", stats)
	}

	small := cache.New(1)
	small.Set(cache.Digest([]byte("a"), defaultVM), program(1))
	small.Set(cache.Digest([]byte("b"), defaultVM), program(1))
	if got := small.Stats().Evictions; got != 1 {
		t.Errorf("got %d evictions, want 1", got)
	}
}
