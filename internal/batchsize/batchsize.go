// Package batchsize implements the adaptive batch-size math used by the
// replication processor: a piecewise target-bytes function of average
// record size, from which a logical batch size and a (slightly larger)
// cursor fetch size are derived.
package batchsize

import "math"

const (
	kib = 1024
	mib = 1024 * kib
)

// targetBytes returns the per-batch byte budget for a given average record
// size, per the following piecewise thresholds:
//
//	avg <   1 KiB -> 75 MiB
//	avg <  10 KiB -> 50 MiB
//	avg < 100 KiB -> 30 MiB
//	avg < 500 KiB -> 15 MiB
//	otherwise     ->  5 MiB
func targetBytes(avgRecordSize uint64) uint64 {
	switch {
	case avgRecordSize < 1*kib:
		return 75 * mib
	case avgRecordSize < 10*kib:
		return 50 * mib
	case avgRecordSize < 100*kib:
		return 30 * mib
	case avgRecordSize < 500*kib:
		return 15 * mib
	default:
		return 5 * mib
	}
}

// Sizes is the pair of derived batch sizes for one entity.
type Sizes struct {
	// BatchSize is the logical number of records per dispatched task.
	BatchSize uint64
	// CursorBatchSize is the adapter-level fetch granularity, 20% larger
	// than BatchSize so that streaming cursors (e.g. MongoDB's
	// getMore batching) stay slightly ahead of the logical batch boundary.
	CursorBatchSize uint64
}

// Options overrides specific knobs of the piecewise heuristic, set from the
// run-wide or per-entity replication config. A zero value for either field
// leaves the corresponding default (the piecewise target-bytes table, or
// the 1.2x cursor multiplier) in place.
type Options struct {
	TargetBatchBytes uint64
	CursorBatchSize  uint64
}

// Compute derives BatchSize and CursorBatchSize from an entity's average
// record size. avgRecordSize of 0 (an adapter that cannot estimate it, or
// an empty entity) falls back to defaultBatchSize unscaled, with
// CursorBatchSize at the usual 1.2x.
func Compute(avgRecordSize uint64, defaultBatchSize uint64) Sizes {
	return ComputeWithOptions(avgRecordSize, defaultBatchSize, Options{})
}

// ComputeWithOptions is Compute with explicit overrides for the target
// byte budget and the cursor batch size, used when a run or entity
// configures either directly instead of relying on the piecewise defaults.
func ComputeWithOptions(avgRecordSize uint64, defaultBatchSize uint64, opts Options) Sizes {
	if avgRecordSize == 0 {
		batch := defaultBatchSize
		cursor := opts.CursorBatchSize
		if cursor == 0 {
			cursor = scaleUp(batch)
		}
		return Sizes{BatchSize: batch, CursorBatchSize: cursor}
	}

	target := opts.TargetBatchBytes
	if target == 0 {
		target = targetBytes(avgRecordSize)
	}

	batch := target / avgRecordSize
	if batch < 1 {
		batch = 1
	}
	cursor := opts.CursorBatchSize
	if cursor == 0 {
		cursor = scaleUp(batch)
	}
	return Sizes{BatchSize: batch, CursorBatchSize: cursor}
}

// scaleUp applies the 1.2x cursor-batch multiplier, rounding up.
func scaleUp(batchSize uint64) uint64 {
	return uint64(math.Ceil(float64(batchSize) * 1.2))
}
