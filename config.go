package voltkv

import "fmt"

// Backend selects the region a Store is built over (spec §6.1).
type Backend int

const (
	BackendOffHeap Backend = iota
	BackendMmap
)

// IndexVariant selects which Index implementation backs a Store.
type IndexVariant int

const (
	VariantHash IndexVariant = iota
	VariantSegmented
	VariantLongPrim
	VariantIntPrim
)

const (
	defaultMaxMemory       uint64 = 1 << 30  // 1 GiB
	defaultAllocateSize    uint64 = 10 << 30 // 10 GiB
	defaultSegments        int    = 64
	defaultInitialCapacity uint32 = 16
)

// Config is the builder/configuration surface: an out-of-scope external
// collaborator per spec §1, reduced here to a plain options record, the
// way the teacher's folder-based Hashmap.init and the viant-mmcb
// sibling's BufferConfig both keep configuration a flat struct rather
// than a fluent builder object.
type Config struct {
	Backend         Backend
	IndexVariant    IndexVariant
	Segments        int
	InitialCapacity uint32

	// OffHeap-only.
	MaxMemory uint64

	// Mmap-only.
	Temporary    bool
	Path         string
	AllocateSize uint64
}

// Option mutates a Config being built.
type Option func(*Config)

func WithIndexVariant(v IndexVariant) Option { return func(c *Config) { c.IndexVariant = v } }
func WithSegments(n int) Option              { return func(c *Config) { c.Segments = n } }
func WithInitialCapacity(n uint32) Option    { return func(c *Config) { c.InitialCapacity = n } }
func WithMaxMemory(n uint64) Option          { return func(c *Config) { c.MaxMemory = n } }
func WithAllocateSize(n uint64) Option       { return func(c *Config) { c.AllocateSize = n } }

// NewOffHeapConfig builds a Config for the OffHeap backend.
func NewOffHeapConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Backend:         BackendOffHeap,
		IndexVariant:    VariantHash,
		Segments:        defaultSegments,
		InitialCapacity: defaultInitialCapacity,
		MaxMemory:       defaultMaxMemory,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewMmapConfig builds a Config for the Mmap backend. Pass path == "" to
// request a Temporary, delete-on-close file in the OS temp directory.
func NewMmapConfig(path string, opts ...Option) (*Config, error) {
	c := &Config{
		Backend:         BackendMmap,
		IndexVariant:    VariantHash,
		Segments:        defaultSegments,
		InitialCapacity: defaultInitialCapacity,
		AllocateSize:    defaultAllocateSize,
		Path:            path,
		Temporary:       path == "",
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate returns ErrConfig for a misconfigured Config (spec §6.1).
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOffHeap:
		if c.MaxMemory < 1 {
			return wrap(ErrConfig, fmt.Errorf("max memory must be >= 1"))
		}
	case BackendMmap:
		if !c.Temporary && c.Path == "" {
			return wrap(ErrConfig, fmt.Errorf("persistent mode requires a path"))
		}
		if c.AllocateSize < 1 {
			return wrap(ErrConfig, fmt.Errorf("allocate size must be >= 1"))
		}
	default:
		return wrap(ErrConfig, fmt.Errorf("unknown backend %d", c.Backend))
	}
	if c.IndexVariant == VariantSegmented {
		if c.Segments <= 0 || c.Segments&(c.Segments-1) != 0 {
			return wrap(ErrConfig, fmt.Errorf("segments must be a power of two, got %d", c.Segments))
		}
	}
	return nil
}
