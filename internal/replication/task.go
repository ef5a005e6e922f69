package replication

import (
	"context"
	"fmt"

	"github.com/jfoltran/envclone/internal/dbpair"
	"github.com/jfoltran/envclone/internal/mask"
	"github.com/jfoltran/envclone/internal/progress"
	"github.com/rs/zerolog"
)

// Runnable is the type-erased unit the consumer pool runs. Every task[T,Q]
// satisfies this without the interface itself needing to know T or Q.
type Runnable interface {
	Run(ctx context.Context) error
}

// task reads one page of one entity, applies masking if the strategy calls
// for it, and writes the (possibly transformed) page to the destination.
type task[T any, Q any] struct {
	entity   string
	query    Q
	page     dbpair.Pagination
	opts     dbpair.ReadOptions
	reader   dbpair.Reader[T, Q]
	writer   dbpair.Writer[T]
	masker   mask.Masker[T]
	strategy Strategy
	bar      progress.Bar
	log      zerolog.Logger
}

func (t *task[T, Q]) Run(ctx context.Context) error {
	records, err := t.reader.ReadChunk(ctx, t.entity, t.query, t.page, t.opts)
	if err != nil {
		t.log.Error().Err(err).Str("entity", t.entity).
			Uint64("start", t.page.StartPosition).
			Msg("failed to read batch, skipping")
		return newError(ErrDatabase, t.entity, fmt.Errorf("read batch at %d: %w", t.page.StartPosition, err))
	}

	if len(records) == 0 {
		return nil
	}

	if t.strategy == Mask && t.masker != nil {
		for i := range records {
			if err := t.masker.Mask(&records[i]); err != nil {
				t.log.Error().Err(err).Str("entity", t.entity).Msg("masking failed for record, skipping batch")
				return newError(ErrSerialization, t.entity, fmt.Errorf("mask record: %w", err))
			}
		}
	}

	if err := t.writer.Write(ctx, t.entity, records); err != nil {
		t.log.Error().Err(err).Str("entity", t.entity).
			Int("count", len(records)).
			Msg("failed to write batch")
		return newError(ErrDatabase, t.entity, fmt.Errorf("write batch of %d: %w", len(records), err))
	}

	t.bar.Inc(uint64(len(records)))
	return nil
}
