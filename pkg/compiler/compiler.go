// Package compiler wires the five passes — pkg/expand, pkg/typecheck,
// pkg/optimize, pkg/stackdepth and pkg/emit — into a single pipeline, in
// spec §5's fixed order. It owns no parsing: callers hand it an already
// parsed Program node and a SymbolTable, and get back a pre-link
// bytecode.Program or the first pass error encountered.
package compiler

import (
	"log/slog"

	"github.com/eventscript-lang/evc/pkg/bytecode"
	"github.com/eventscript-lang/evc/pkg/cache"
	"github.com/eventscript-lang/evc/pkg/emit"
	"github.com/eventscript-lang/evc/pkg/expand"
	"github.com/eventscript-lang/evc/pkg/optimize"
	"github.com/eventscript-lang/evc/pkg/stackdepth"
	"github.com/eventscript-lang/evc/pkg/typecheck"
	"github.com/eventscript-lang/evc/pkg/types"
)

// Compiler runs the fixed five-pass pipeline against a target VMDescriptor.
type Compiler struct {
	opts   CompilerOptions
	logger *slog.Logger
	cache  *cache.Cache // non-nil when Caching is enabled
}

// CompilerOptions configures Compiler behavior.
type CompilerOptions struct {
	// VM is the target VM descriptor. Defaults to types.DefaultVMDescriptor().
	VM *types.VMDescriptor
	// Caching enables keying compiled programs by a blake2b digest of the
	// source text and the target VM (see pkg/cache). Only useful when callers compile
	// through CompileSource, which has source bytes to hash.
	Caching bool
	// CacheSize sets the cache's capacity. Only used when Caching is true
	// and no explicit Cache is provided. Defaults to 256.
	CacheSize int
	// Cache is a custom program cache. If non-nil, Caching is implicitly
	// enabled.
	Cache *cache.Cache
	// Debug tags the logger with component=compiler and makes CompileSource
	// log cache hit/miss/eviction counts. Pass-by-pass trace lines are
	// written at debug level whether or not Debug is set; they appear only
	// when the logger's handler enables debug level.
	Debug bool
	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// CompilerOption configures a Compiler at construction time.
type CompilerOption func(*CompilerOptions)

// WithVM overrides the target VM descriptor.
func WithVM(vm *types.VMDescriptor) CompilerOption {
	return func(o *CompilerOptions) { o.VM = vm }
}

// WithMaxStackDepth overrides the VM descriptor's stack limit without
// replacing the rest of its opcode table: it shallow-copies the current VM
// (or DefaultVMDescriptor if none was set yet) and substitutes depth.
func WithMaxStackDepth(depth int) CompilerOption {
	return func(o *CompilerOptions) {
		base := o.VM
		if base == nil {
			base = types.DefaultVMDescriptor()
		}
		vm := *base
		vm.MaxStackDepth = depth
		o.VM = &vm
	}
}

// WithCaching enables or disables program caching.
func WithCaching(enabled bool) CompilerOption {
	return func(o *CompilerOptions) { o.Caching = enabled }
}

// WithCacheSize sets the cache capacity used when Caching is enabled and no
// explicit Cache was supplied.
func WithCacheSize(size int) CompilerOption {
	return func(o *CompilerOptions) { o.CacheSize = size }
}

// WithCache installs a pre-built cache, implicitly enabling Caching.
func WithCache(c *cache.Cache) CompilerOption {
	return func(o *CompilerOptions) {
		o.Cache = c
		o.Caching = true
	}
}

// WithDebug sets CompilerOptions.Debug (component tag and cache-stat
// logging; pass trace lines do not depend on it).
func WithDebug(enabled bool) CompilerOption {
	return func(o *CompilerOptions) { o.Debug = enabled }
}

// WithLogger installs a custom structured logger.
func WithLogger(logger *slog.Logger) CompilerOption {
	return func(o *CompilerOptions) { o.Logger = logger }
}

// New creates a Compiler with default options, overridden by opts.
func New(opts ...CompilerOption) *Compiler {
	options := CompilerOptions{
		VM:        types.DefaultVMDescriptor(),
		Caching:   false,
		CacheSize: 256,
	}
	for _, opt := range opts {
		opt(&options)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if options.Debug {
		logger = logger.With("component", "compiler")
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New(options.CacheSize)
	}

	return &Compiler{opts: options, logger: logger, cache: c}
}

// Compile runs root (an already parsed Program node) through all five
// passes in order and returns the resulting pre-link bytecode.Program.
// root is consumed: passes mutate and may replace nodes in place, so
// callers must not reuse root afterward.
func (c *Compiler) Compile(root *types.Node, symbols types.SymbolTable) (*bytecode.Program, error) {
	vm := c.opts.VM
	if vm == nil {
		vm = types.DefaultVMDescriptor()
	}

	c.logger.Debug("compiler: expand")
	root, err := expand.Program(root, expand.NewContext(symbols, c.logger))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiler: typecheck")
	if err := typecheck.Program(root); err != nil {
		return nil, err
	}

	c.logger.Debug("compiler: optimize")
	root, err = optimize.Program(root)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiler: stackdepth")
	maxDepth, err := stackdepth.Program(root, vm)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiler: emit", "maxStackDepth", maxDepth)
	return emit.Program(root, vm, maxDepth)
}

// CompileSource is Compile with an added caching layer keyed on a blake2b
// digest of source and the target VM: when caching is enabled and source
// has been compiled before (byte-for-byte) for the same VM and is still
// cached, the cached program is returned without re-running any pass or
// parse. With caching disabled, parse and every pass run on each call; a
// failed parse or compile is not cached.
func (c *Compiler) CompileSource(source []byte, symbols types.SymbolTable, parse func([]byte) (*types.Node, error)) (*bytecode.Program, error) {
	vm := c.opts.VM
	if vm == nil {
		vm = types.DefaultVMDescriptor()
	}

	if c.cache == nil {
		root, err := parse(source)
		if err != nil {
			return nil, err
		}
		return c.Compile(root, symbols)
	}

	key := cache.Digest(source, vm)
	program, err := c.cache.GetOrCompile(key, func() (*bytecode.Program, error) {
		root, err := parse(source)
		if err != nil {
			return nil, err
		}
		return c.Compile(root, symbols)
	})
	if c.opts.Debug {
		stats := c.cache.Stats()
		c.logger.Debug("compiler: cache", "hits", stats.Hits, "misses", stats.Misses, "evictions", stats.Evictions)
	}
	return program, err
}
