package metrics

// EntityBar implements progress.Bar by forwarding updates into a Collector
// under one entity name, bridging the replication core's narrow progress
// contract to the richer per-entity Snapshot the status server and TUI
// read from. It does not import internal/progress; it satisfies
// progress.Bar structurally.
type EntityBar struct {
	collector *Collector
	entity    string
	done      int64
}

// NewEntityBar registers name with collector and returns a bar that
// reports into it.
func NewEntityBar(collector *Collector, name string) *EntityBar {
	collector.mu.Lock()
	if _, ok := collector.entities[name]; !ok {
		ep := &EntityProgress{Name: name}
		collector.entities[name] = ep
		collector.entityOrder = append(collector.entityOrder, name)
	}
	collector.mu.Unlock()
	return &EntityBar{collector: collector, entity: name}
}

func (b *EntityBar) SetLength(n uint64) {
	b.collector.mu.Lock()
	if ep, ok := b.collector.entities[b.entity]; ok {
		ep.RecordsTotal = int64(n)
	}
	b.collector.mu.Unlock()
	b.collector.EntityStarted(b.entity)
}

func (b *EntityBar) Inc(n uint64) {
	b.done += int64(n)
	b.collector.UpdateEntityProgress(b.entity, b.done)
	b.collector.RecordWritten(int64(n))
}

func (b *EntityBar) FinishWithMessage(msg string) {
	b.collector.EntityDoneMark(b.entity, b.done)
	b.collector.AddLog(LogEntry{Message: msg, Level: "info"})
}
