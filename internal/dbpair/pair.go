package dbpair

import (
	"context"
	"fmt"
)

// Pair bundles one source and one destination connection, shared by
// reference across every task for the lifetime of a run. Q is the source
// adapter's query type; the Destination interface is not parameterized by
// it, since only the source ever receives a Q value (the destination's
// Write is unconditional).
type Pair[Q any] struct {
	Source      Source[Q]
	Destination Destination
}

// New bundles a source and destination into a Pair. It performs no I/O;
// call VerifyConnections before starting a run.
func New[Q any](source Source[Q], destination Destination) *Pair[Q] {
	return &Pair[Q]{Source: source, Destination: destination}
}

// VerifyConnections probes both sides via TestConnection, then lets each
// side prepare itself. Both probes run before either Prepare call so that a
// dead source is reported before the destination does any setup work.
func (p *Pair[Q]) VerifyConnections(ctx context.Context) error {
	if err := p.Source.TestConnection(ctx); err != nil {
		return fmt.Errorf("source connection: %w", err)
	}
	if err := p.Destination.TestConnection(ctx); err != nil {
		return fmt.Errorf("destination connection: %w", err)
	}
	if err := p.Source.Prepare(ctx); err != nil {
		return fmt.Errorf("source prepare: %w", err)
	}
	if err := p.Destination.Prepare(ctx); err != nil {
		return fmt.Errorf("destination prepare: %w", err)
	}
	return nil
}

// ClearDecision is one entry of a clear operation's outcome, suitable for
// logging at the call site.
type ClearDecision struct {
	Entity  string
	Dropped bool
	Reason  string
}

// ClearEntities applies the entity-clearing safety rules to entityNames and
// drops the surviving subset on the destination. It returns one ClearDecision per
// requested entity, dropped or not, so the caller can log each decision
// without re-deriving the plan.
func (p *Pair[Q]) ClearEntities(ctx context.Context, entityNames []string) ([]ClearDecision, error) {
	plan := PlanClear(entityNames)

	decisions := make([]ClearDecision, 0, len(entityNames))
	for _, skip := range plan.Skipped {
		decisions = append(decisions, ClearDecision{Entity: skip.Entity, Dropped: false, Reason: skip.Reason})
	}

	if len(plan.ToDrop) > 0 {
		if err := p.Destination.ClearDatabase(ctx, plan.ToDrop); err != nil {
			return decisions, fmt.Errorf("clear destination entities: %w", err)
		}
	}
	for _, name := range plan.ToDrop {
		decisions = append(decisions, ClearDecision{Entity: name, Dropped: true, Reason: "allow-listed for clear"})
	}
	return decisions, nil
}
