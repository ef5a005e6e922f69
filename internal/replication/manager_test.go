package replication_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/jfoltran/envclone/internal/dbpair"
	"github.com/jfoltran/envclone/internal/mask"
	"github.com/jfoltran/envclone/internal/progress"
	"github.com/jfoltran/envclone/internal/replication"
	"github.com/rs/zerolog"
)

type fakeQuery struct{}

type fakeRecord struct {
	ID   int
	Name string
}

// fakeSource is an in-memory dbpair.Source[fakeQuery] + dbpair.Reader over
// fakeRecord, used to exercise the engine without a real database.
type fakeSource struct {
	mu      sync.Mutex
	records []fakeRecord
	indexes dbpair.SourceIndexes
	views   []dbpair.ViewDefinition
}

func newFakeSource(n int) *fakeSource {
	records := make([]fakeRecord, n)
	for i := range records {
		records[i] = fakeRecord{ID: i, Name: "user"}
	}
	return &fakeSource{records: records}
}

func (s *fakeSource) CountTotalRecords(ctx context.Context, entity string, query fakeQuery) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(len(s.records)), nil
}

func (s *fakeSource) ReadChunk(ctx context.Context, entity string, query fakeQuery, page dbpair.Pagination, opts dbpair.ReadOptions) ([]fakeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := int(page.StartPosition)
	if start >= len(s.records) {
		return nil, nil
	}
	end := start + int(page.Limit)
	if end > len(s.records) {
		end = len(s.records)
	}

	out := make([]fakeRecord, end-start)
	copy(out, s.records[start:end])
	return out, nil
}

func (s *fakeSource) ListIndexes(ctx context.Context, entity string) (dbpair.SourceIndexes, error) {
	return s.indexes, nil
}

func (s *fakeSource) TestConnection(ctx context.Context) error { return nil }
func (s *fakeSource) Prepare(ctx context.Context) error        { return nil }

func (s *fakeSource) AverageRecordSize(ctx context.Context, entity string) (uint64, error) {
	return 0, &dbpair.ErrUnsupported{Capability: "average_record_size"}
}

func (s *fakeSource) DefaultBatchSize() uint64 { return 10 }
func (s *fakeSource) DefaultSortField() string { return "id" }

func (s *fakeSource) ListViews(ctx context.Context) ([]dbpair.ViewDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views, nil
}

// fakeDestination is an in-memory dbpair.Destination + dbpair.Writer.
type fakeDestination struct {
	mu             sync.Mutex
	written        []fakeRecord
	createdIndexes []dbpair.SourceIndexes
	createdViews   []dbpair.ViewDefinition
	cleared        []string
}

func (d *fakeDestination) Write(ctx context.Context, entity string, records []fakeRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.written = append(d.written, records...)
	return nil
}

func (d *fakeDestination) CreateIndexes(ctx context.Context, indexes dbpair.SourceIndexes) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.createdIndexes = append(d.createdIndexes, indexes)
	return nil
}

func (d *fakeDestination) DropIndex(ctx context.Context, entity, indexName string) error { return nil }

func (d *fakeDestination) CreateView(ctx context.Context, view dbpair.ViewDefinition) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.createdViews = append(d.createdViews, view)
	return nil
}

func (d *fakeDestination) ClearDatabase(ctx context.Context, entityNames []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cleared = append(d.cleared, entityNames...)
	return nil
}

func (d *fakeDestination) TestConnection(ctx context.Context) error { return nil }
func (d *fakeDestination) Prepare(ctx context.Context) error        { return nil }

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// TestManagerRunClonesAllRecords is the Completeness-under-Clone property:
// every source record appears exactly once at the destination, with no
// duplicates and no gaps, after a Clone-strategy run.
func TestManagerRunClonesAllRecords(t *testing.T) {
	source := newFakeSource(237)
	dest := &fakeDestination{}
	pair := dbpair.New[fakeQuery](source, dest)

	cfg := replication.NewConfig(
		replication.WithThreadCount(4),
		replication.WithStrategy(replication.Clone),
	)
	manager := replication.NewManager[fakeQuery](pair, cfg, testLogger())

	replication.AddProcessor[fakeRecord](manager, "users", source, dest, progress.Noop{},
		replication.WithBatchSize[fakeQuery](17))

	if err := manager.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	dest.mu.Lock()
	defer dest.mu.Unlock()

	if len(dest.written) != 237 {
		t.Fatalf("wrote %d records, want 237", len(dest.written))
	}

	seen := make(map[int]bool, 237)
	for _, r := range dest.written {
		if seen[r.ID] {
			t.Fatalf("record %d written more than once", r.ID)
		}
		seen[r.ID] = true
	}
	for i := 0; i < 237; i++ {
		if !seen[i] {
			t.Fatalf("record %d never written", i)
		}
	}
}

// TestManagerRunMaskingIsDeterministic pins the masking-determinism
// boundary: two runs with the same masker produce identical masked output,
// and every record written is masked.
func TestManagerRunMaskingIsDeterministic(t *testing.T) {
	run := func() []fakeRecord {
		source := newFakeSource(50)
		dest := &fakeDestination{}
		pair := dbpair.New[fakeQuery](source, dest)

		cfg := replication.NewConfig(replication.WithThreadCount(1), replication.WithStrategy(replication.Mask))
		manager := replication.NewManager[fakeQuery](pair, cfg, testLogger())

		replication.AddMaskedProcessor[fakeRecord](manager, "users", source, dest,
			mask.Func[fakeRecord](func(r *fakeRecord) error {
				r.Name = "masked"
				return nil
			}),
			progress.Noop{})

		if err := manager.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		dest.mu.Lock()
		defer dest.mu.Unlock()
		out := make([]fakeRecord, len(dest.written))
		copy(out, dest.written)
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out
	}

	first := run()
	second := run()

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("masked output differs at %d: %+v vs %+v", i, first[i], second[i])
		}
		if first[i].Name != "masked" {
			t.Fatalf("record %d not masked: %+v", i, first[i])
		}
	}
}

// TestManagerRunSkipsEmptyEntity is scenario S1: an entity with zero
// records finishes immediately and never dispatches a write.
func TestManagerRunSkipsEmptyEntity(t *testing.T) {
	source := newFakeSource(0)
	dest := &fakeDestination{}
	pair := dbpair.New[fakeQuery](source, dest)

	cfg := replication.NewConfig()
	manager := replication.NewManager[fakeQuery](pair, cfg, testLogger())
	replication.AddProcessor[fakeRecord](manager, "empty", source, dest, progress.Noop{})

	if err := manager.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	dest.mu.Lock()
	defer dest.mu.Unlock()
	if len(dest.written) != 0 {
		t.Fatalf("wrote %d records for empty entity, want 0", len(dest.written))
	}
}

// TestManagerRunClearBeforeRunSkipsProtectedEntities is the system-entity
// safety property: a protected entity name is never passed to
// ClearDatabase even when requested.
func TestManagerRunClearBeforeRunSkipsProtectedEntities(t *testing.T) {
	source := newFakeSource(1)
	dest := &fakeDestination{}
	pair := dbpair.New[fakeQuery](source, dest)

	cfg := replication.NewConfig(replication.WithClearBeforeRun(true))
	manager := replication.NewManager[fakeQuery](pair, cfg, testLogger())
	replication.AddProcessor[fakeRecord](manager, "system.profile", source, dest, progress.Noop{})

	if err := manager.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	dest.mu.Lock()
	defer dest.mu.Unlock()
	for _, name := range dest.cleared {
		if name == "system.profile" {
			t.Fatalf("ClearDatabase was called with protected entity %q", name)
		}
	}
}

// TestManagerRunCopiesViews is the final run phase: once every entity is
// copied, views the source adapter can enumerate are created at the
// destination.
func TestManagerRunCopiesViews(t *testing.T) {
	source := newFakeSource(3)
	source.views = []dbpair.ViewDefinition{
		{Name: "active_users", ViewOn: "users", Pipeline: []map[string]any{{"$match": map[string]any{"active": true}}}},
	}
	dest := &fakeDestination{}
	pair := dbpair.New[fakeQuery](source, dest)

	cfg := replication.NewConfig()
	manager := replication.NewManager[fakeQuery](pair, cfg, testLogger())
	replication.AddProcessor[fakeRecord](manager, "users", source, dest, progress.Noop{})

	if err := manager.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	dest.mu.Lock()
	defer dest.mu.Unlock()
	if len(dest.createdViews) != 1 {
		t.Fatalf("created %d views, want 1", len(dest.createdViews))
	}
	if dest.createdViews[0].Name != "active_users" {
		t.Fatalf("created view %q, want %q", dest.createdViews[0].Name, "active_users")
	}
}
