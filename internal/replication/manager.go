// Package replication is the core replication engine: it enumerates
// entities, partitions them into batches, dispatches batches to a bounded
// worker pool, and copies schema metadata between a source and destination
// adapter pair. Concrete driver bindings, masking rule definitions,
// CLI/config parsing, logging setup and progress-bar rendering are supplied
// by callers through the dbpair, mask and progress interfaces.
package replication

import (
	"context"
	"fmt"

	"github.com/jfoltran/envclone/internal/dbpair"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Manager owns one database pair and every entity's processor for a single
// run. Q is the adapter pair's shared query type.
type Manager[Q any] struct {
	pair       *dbpair.Pair[Q]
	cfg        Config
	processors []processorRunner
	log        zerolog.Logger
}

// NewManager builds a Manager over pair with the given run-wide Config.
func NewManager[Q any](pair *dbpair.Pair[Q], cfg Config, logger zerolog.Logger) *Manager[Q] {
	return &Manager[Q]{pair: pair, cfg: cfg, log: logger}
}

// Run executes the full replication: verify connectivity, optionally clear
// destination entities, dispatch every processor's batches through a
// bounded worker pool, wait for all writes to finish, and finally copy any
// native views the adapter pair supports.
func (m *Manager[Q]) Run(ctx context.Context) error {
	if err := m.pair.VerifyConnections(ctx); err != nil {
		return newError(ErrConnection, "", err)
	}

	if m.cfg.ClearBeforeRun {
		if err := m.clearEntities(ctx); err != nil {
			return newError(ErrDatabase, "", err)
		}
	}

	sink := make(chan Runnable, m.cfg.ThreadCount*4)

	workGroup, workCtx := errgroup.WithContext(ctx)
	workGroup.SetLimit(m.cfg.ThreadCount)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for {
			select {
			case t, ok := <-sink:
				if !ok {
					return
				}
				workGroup.Go(func() error {
					if err := t.Run(workCtx); err != nil {
						m.log.Error().Err(err).Msg("task failed")
					}
					return nil
				})
			case <-workCtx.Done():
				return
			}
		}
	}()

	produceGroup, produceCtx := errgroup.WithContext(ctx)
	for _, p := range m.processors {
		p := p
		produceGroup.Go(func() error {
			return p.Run(produceCtx, sink, m.cfg)
		})
	}

	produceErr := produceGroup.Wait()
	close(sink)
	<-consumerDone

	if produceErr != nil {
		return newError(ErrTask, "", produceErr)
	}
	if err := workGroup.Wait(); err != nil {
		return newError(ErrTask, "", err)
	}

	m.copyViews(ctx)

	return nil
}

// copyViews enumerates and copies native views in parallel when both sides
// of the pair support them. Adapters without a view concept (anything not
// implementing dbpair.ViewSource/ViewDestination) are silently skipped;
// per-view failures are logged but never fail the run, since views are a
// convenience copy on top of the entity data the run already replicated.
func (m *Manager[Q]) copyViews(ctx context.Context) {
	viewSource, ok := m.pair.Source.(dbpair.ViewSource)
	if !ok {
		return
	}
	viewDest, ok := m.pair.Destination.(dbpair.ViewDestination)
	if !ok {
		return
	}

	views, err := viewSource.ListViews(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to list source views, skipping view copy")
		return
	}
	if len(views) == 0 {
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(m.cfg.ThreadCount)
	for _, view := range views {
		view := view
		group.Go(func() error {
			if err := viewDest.CreateView(groupCtx, view); err != nil {
				m.log.Error().Err(err).Str("view", view.Name).Msg("failed to create destination view")
			}
			return nil
		})
	}
	_ = group.Wait()
}

func (m *Manager[Q]) clearEntities(ctx context.Context) error {
	names := make([]string, 0, len(m.processors))
	for _, p := range m.processors {
		names = append(names, p.EntityName())
	}

	decisions, err := m.pair.ClearEntities(ctx, names)
	if err != nil {
		return fmt.Errorf("clear destination entities: %w", err)
	}
	for _, d := range decisions {
		m.log.Info().Str("entity", d.Entity).Bool("dropped", d.Dropped).Str("reason", d.Reason).Msg("clear decision")
	}
	return nil
}
