package replication

import (
	"context"
	"errors"
	"fmt"

	"github.com/jfoltran/envclone/internal/batchsize"
	"github.com/jfoltran/envclone/internal/dbpair"
	"github.com/jfoltran/envclone/internal/mask"
	"github.com/jfoltran/envclone/internal/progress"
	"github.com/rs/zerolog"
)

// processorRunner is the type-erased interface Manager holds one per
// entity. Processor[T,Q] implements it without Manager ever needing to
// know T.
type processorRunner interface {
	Run(ctx context.Context, sink chan<- Runnable, runCfg Config) error
	EntityName() string
}

// Processor enumerates one entity's records into batches and dispatches one
// task per batch onto the shared sink channel.
type Processor[T any, Q any] struct {
	entity string
	source dbpair.Source[Q]
	dest   dbpair.Destination
	reader dbpair.Reader[T, Q]
	writer dbpair.Writer[T]
	masker mask.Masker[T]
	cfg    ProcessorConfig[Q]
	bar    progress.Bar
	log    zerolog.Logger
}

func (p *Processor[T, Q]) EntityName() string { return p.entity }

// Run copies one entity end to end:
//  1. count total records; skip the entity entirely on error
//  2. report total to the progress bar; finish immediately if empty
//  3. copy indexes from source to destination, logging but not failing on error
//  4. resolve batch size (explicit -> adaptive -> default) and sort field
//  5. dispatch one task per batch in ascending StartPosition order
func (p *Processor[T, Q]) Run(ctx context.Context, sink chan<- Runnable, runCfg Config) error {
	total, err := p.source.CountTotalRecords(ctx, p.entity, p.cfg.Query)
	if err != nil {
		p.log.Error().Err(err).Str("entity", p.entity).Msg("could not count records, skipping entity")
		return nil
	}

	p.bar.SetLength(total)

	if total == 0 {
		p.bar.FinishWithMessage("no records to process")
		p.log.Info().Str("entity", p.entity).Msg("no records to process, skipping")
		return nil
	}

	if err := p.copyIndexes(ctx); err != nil {
		p.log.Error().Err(err).Str("entity", p.entity).Msg("failed to copy indexes, continuing without them")
	}

	sizes, sortField := p.resolveBatchSize(ctx, runCfg)
	strategy := runCfg.Strategy
	if p.cfg.Strategy != nil {
		strategy = *p.cfg.Strategy
	}

	batchSize := sizes.BatchSize
	batchCount := (total + batchSize - 1) / batchSize
	for i := uint64(0); i < batchCount; i++ {
		start := i * batchSize
		remaining := total - start
		limit := batchSize
		if remaining < limit {
			limit = remaining
		}
		if limit == 0 {
			break
		}

		t := &task[T, Q]{
			entity:   p.entity,
			query:    p.cfg.Query,
			page:     dbpair.Pagination{StartPosition: start, Limit: limit},
			opts:     dbpair.ReadOptions{SortField: sortField, CursorBatch: sizes.CursorBatchSize},
			reader:   p.reader,
			writer:   p.writer,
			masker:   p.masker,
			strategy: strategy,
			bar:      p.bar,
			log:      p.log,
		}

		select {
		case sink <- t:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// resolveBatchSize picks this entity's batch/cursor sizes and sort field,
// applying entity-level overrides before run-wide ones before adapter
// defaults.
func (p *Processor[T, Q]) resolveBatchSize(ctx context.Context, runCfg Config) (batchsize.Sizes, string) {
	sortField := p.source.DefaultSortField()
	if p.cfg.SortField != nil {
		sortField = *p.cfg.SortField
	}

	defaultSize := runCfg.DefaultBatchSize
	if defaultSize == 0 {
		defaultSize = p.source.DefaultBatchSize()
	}

	if p.cfg.BatchSize != nil {
		return batchsize.ComputeWithOptions(0, *p.cfg.BatchSize, p.batchsizeOptions(runCfg)), sortField
	}

	adaptive := runCfg.AdaptiveBatching
	if p.cfg.AdaptiveBatching != nil {
		adaptive = *p.cfg.AdaptiveBatching
	}
	if !adaptive {
		return batchsize.ComputeWithOptions(0, defaultSize, p.batchsizeOptions(runCfg)), sortField
	}

	avg, err := p.source.AverageRecordSize(ctx, p.entity)
	var unsupported *dbpair.ErrUnsupported
	if err != nil {
		if !errors.As(err, &unsupported) {
			p.log.Warn().Err(err).Str("entity", p.entity).Msg("average record size estimate failed, using default batch size")
		}
		return batchsize.ComputeWithOptions(0, defaultSize, p.batchsizeOptions(runCfg)), sortField
	}

	return batchsize.ComputeWithOptions(avg, defaultSize, p.batchsizeOptions(runCfg)), sortField
}

// batchsizeOptions resolves the target-bytes/cursor-batch-size overrides,
// entity-level taking precedence over run-wide.
func (p *Processor[T, Q]) batchsizeOptions(runCfg Config) batchsize.Options {
	opts := batchsize.Options{
		TargetBatchBytes: runCfg.TargetBatchBytes,
		CursorBatchSize:  runCfg.CursorBatchSize,
	}
	if p.cfg.TargetBatchBytes != nil {
		opts.TargetBatchBytes = *p.cfg.TargetBatchBytes
	}
	if p.cfg.CursorBatchSize != nil {
		opts.CursorBatchSize = *p.cfg.CursorBatchSize
	}
	return opts
}

func (p *Processor[T, Q]) copyIndexes(ctx context.Context) error {
	indexes, err := p.source.ListIndexes(ctx, p.entity)
	if err != nil {
		return fmt.Errorf("list source indexes: %w", err)
	}
	if len(indexes.Indexes) == 0 {
		return nil
	}
	if err := p.dest.CreateIndexes(ctx, indexes); err != nil {
		return fmt.Errorf("create destination indexes: %w", err)
	}
	return nil
}

// AddProcessor registers an entity with m. Methods cannot introduce
// additional type parameters in Go, so this is a free function rather than
// a Manager method; Q is inferred from m, T from reader/writer.
func AddProcessor[T any, Q any](
	m *Manager[Q],
	entityName string,
	reader dbpair.Reader[T, Q],
	writer dbpair.Writer[T],
	bar progress.Bar,
	opts ...ProcessorOption[Q],
) {
	cfg := ProcessorConfig[Q]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Processor[T, Q]{
		entity: entityName,
		source: m.pair.Source,
		dest:   m.pair.Destination,
		reader: reader,
		writer: writer,
		cfg:    cfg,
		bar:    bar,
		log:    m.log.With().Str("entity", entityName).Logger(),
	}
	m.processors = append(m.processors, p)
}

// AddMaskedProcessor is AddProcessor plus a Masker, for entities that
// participate in masked replication.
func AddMaskedProcessor[T any, Q any](
	m *Manager[Q],
	entityName string,
	reader dbpair.Reader[T, Q],
	writer dbpair.Writer[T],
	masker mask.Masker[T],
	bar progress.Bar,
	opts ...ProcessorOption[Q],
) {
	cfg := ProcessorConfig[Q]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Processor[T, Q]{
		entity: entityName,
		source: m.pair.Source,
		dest:   m.pair.Destination,
		reader: reader,
		writer: writer,
		masker: masker,
		cfg:    cfg,
		bar:    bar,
		log:    m.log.With().Str("entity", entityName).Logger(),
	}
	m.processors = append(m.processors, p)
}
