package replication

import "runtime"

// Strategy selects how a task treats each record before writing it to the
// destination.
type Strategy int

const (
	// Clone copies records unmodified.
	Clone Strategy = iota
	// Mask runs each record through its processor's Masker before writing.
	Mask
)

func (s Strategy) String() string {
	if s == Mask {
		return "mask"
	}
	return "clone"
}

// Config is the run-wide configuration shared by every processor.
// Processor-level ProcessorConfig values override the batch size, strategy
// and adaptive-batching settings here, but never the thread count.
type Config struct {
	ThreadCount      int
	Strategy         Strategy
	ClearBeforeRun   bool
	DefaultBatchSize uint64

	// AdaptiveBatching enables the batchsize heuristic when a processor has
	// no explicit batch size and its source adapter can estimate average
	// record size. Defaults to true via NewConfig; set false to always use
	// DefaultBatchSize (or a processor's own BatchSize) unscaled.
	AdaptiveBatching bool
	// TargetBatchBytes overrides the piecewise target-bytes table adaptive
	// batching would otherwise use. Zero means use the piecewise table.
	TargetBatchBytes uint64
	// CursorBatchSize overrides the adapter-level fetch granularity
	// adaptive batching derives from BatchSize. Zero means derive it as
	// 1.2x the computed batch size.
	CursorBatchSize uint64
}

// Option mutates a Config. Functional options, matching the teacher's
// preference for explicit config construction over a fluent builder chain.
type Option func(*Config)

// WithThreadCount bounds the number of tasks the consumer pool runs
// concurrently. Values less than 1 are clamped to 1.
func WithThreadCount(n int) Option {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}
		c.ThreadCount = n
	}
}

// WithStrategy sets the run-wide default strategy.
func WithStrategy(s Strategy) Option {
	return func(c *Config) { c.Strategy = s }
}

// WithClearBeforeRun enables dropping allow-listed destination entities
// before replication begins.
func WithClearBeforeRun(clear bool) Option {
	return func(c *Config) { c.ClearBeforeRun = clear }
}

// WithDefaultBatchSize overrides the engine-wide fallback batch size used
// when a processor has none configured and its source adapter cannot
// estimate an average record size.
func WithDefaultBatchSize(n uint64) Option {
	return func(c *Config) { c.DefaultBatchSize = n }
}

// WithAdaptiveBatching toggles the run-wide adaptive batching heuristic.
func WithAdaptiveBatching(enabled bool) Option {
	return func(c *Config) { c.AdaptiveBatching = enabled }
}

// WithTargetBatchBytes overrides the run-wide target byte budget adaptive
// batching sizes each batch against, replacing the piecewise table.
func WithTargetBatchBytes(n uint64) Option {
	return func(c *Config) { c.TargetBatchBytes = n }
}

// WithCursorBatchSize overrides the run-wide adapter-level cursor fetch
// granularity, replacing the derived 1.2x multiplier.
func WithCursorBatchSize(n uint64) Option {
	return func(c *Config) { c.CursorBatchSize = n }
}

// NewConfig builds a Config from options, defaulting ThreadCount to
// runtime.NumCPU, Strategy to Mask (the safer default for copying
// production-shaped data into a lower environment), and AdaptiveBatching to
// true.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		ThreadCount:      runtime.NumCPU(),
		Strategy:         Mask,
		DefaultBatchSize: 1000,
		AdaptiveBatching: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// ProcessorConfig configures how a single entity is replicated. Q is the
// adapter pair's query type.
type ProcessorConfig[Q any] struct {
	// Query restricts which records are replicated. The zero value selects
	// all records.
	Query Q
	// BatchSize overrides the adaptive/default batch size for this entity
	// only. Nil defers to the source adapter's estimate.
	BatchSize *uint64
	// Strategy overrides the run-wide Config.Strategy for this entity only.
	// Nil defers to the run-wide value.
	Strategy *Strategy
	// SortField overrides the field ReadChunk orders by for this entity
	// only. Nil defers to the source adapter's DefaultSortField.
	SortField *string
	// AdaptiveBatching overrides the run-wide Config.AdaptiveBatching for
	// this entity only. Nil defers to the run-wide value.
	AdaptiveBatching *bool
	// TargetBatchBytes overrides the run-wide Config.TargetBatchBytes for
	// this entity only. Nil defers to the run-wide value.
	TargetBatchBytes *uint64
	// CursorBatchSize overrides the run-wide Config.CursorBatchSize for
	// this entity only. Nil defers to the run-wide value.
	CursorBatchSize *uint64
}

// ProcessorOption mutates a ProcessorConfig[Q].
type ProcessorOption[Q any] func(*ProcessorConfig[Q])

// WithQuery sets the entity's query filter.
func WithQuery[Q any](query Q) ProcessorOption[Q] {
	return func(c *ProcessorConfig[Q]) { c.Query = query }
}

// WithBatchSize overrides the batch size for one entity.
func WithBatchSize[Q any](n uint64) ProcessorOption[Q] {
	return func(c *ProcessorConfig[Q]) { c.BatchSize = &n }
}

// WithEntityStrategy overrides the replication strategy for one entity.
func WithEntityStrategy[Q any](s Strategy) ProcessorOption[Q] {
	return func(c *ProcessorConfig[Q]) { c.Strategy = &s }
}

// WithSortField overrides the sort field ReadChunk orders by for one
// entity, instead of the source adapter's DefaultSortField.
func WithSortField[Q any](field string) ProcessorOption[Q] {
	return func(c *ProcessorConfig[Q]) { c.SortField = &field }
}

// WithEntityAdaptiveBatching overrides the run-wide adaptive batching flag
// for one entity.
func WithEntityAdaptiveBatching[Q any](enabled bool) ProcessorOption[Q] {
	return func(c *ProcessorConfig[Q]) { c.AdaptiveBatching = &enabled }
}

// WithEntityTargetBatchBytes overrides the run-wide target byte budget for
// one entity.
func WithEntityTargetBatchBytes[Q any](n uint64) ProcessorOption[Q] {
	return func(c *ProcessorConfig[Q]) { c.TargetBatchBytes = &n }
}

// WithEntityCursorBatchSize overrides the run-wide cursor batch size for
// one entity.
func WithEntityCursorBatchSize[Q any](n uint64) ProcessorOption[Q] {
	return func(c *ProcessorConfig[Q]) { c.CursorBatchSize = &n }
}
