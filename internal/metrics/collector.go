package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// EntityStatus represents the current state of one entity's replication.
type EntityStatus string

const (
	EntityPending EntityStatus = "pending"
	EntityCopying EntityStatus = "copying"
	EntityDone    EntityStatus = "done"
)

// EntityProgress tracks per-entity replication progress.
type EntityProgress struct {
	Name         string       `json:"name"`
	Status       EntityStatus `json:"status"`
	RecordsTotal int64        `json:"records_total"`
	RecordsDone  int64        `json:"records_done"`
	Percent      float64      `json:"percent"`
	ElapsedSec   float64      `json:"elapsed_sec"`
	StartedAt    time.Time    `json:"-"`
}

// Snapshot is the complete metrics state at a point in time.
type Snapshot struct {
	Timestamp  time.Time `json:"timestamp"`
	Phase      string    `json:"phase"`
	ElapsedSec float64   `json:"elapsed_sec"`

	EntitiesTotal int              `json:"entities_total"`
	EntitiesDone  int              `json:"entities_done"`
	Entities      []EntityProgress `json:"entities"`

	RecordsPerSec float64 `json:"records_per_sec"`
	TotalRecords  int64   `json:"total_records"`

	ErrorCount int    `json:"error_count"`
	LastError  string `json:"last_error,omitempty"`
}

// LogEntry represents a log line captured for the UI.
type LogEntry struct {
	Time    time.Time         `json:"time"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Collector aggregates replication metrics and provides snapshots for
// consumption by the status server and TUI.
type Collector struct {
	logger zerolog.Logger

	mu           sync.RWMutex
	phase        string
	startedAt    time.Time
	entities     map[string]*EntityProgress
	entityOrder  []string

	totalRecords atomic.Int64

	errorCount atomic.Int64
	lastError  atomic.Value // string

	recordWindow *slidingWindow

	subMu       sync.Mutex
	subscribers map[chan Snapshot]struct{}

	logMu  sync.Mutex
	logs   []LogEntry
	logCap int

	done chan struct{}
}

// NewCollector creates a new Collector.
func NewCollector(logger zerolog.Logger) *Collector {
	c := &Collector{
		logger:       logger.With().Str("component", "metrics").Logger(),
		entities:     make(map[string]*EntityProgress),
		subscribers:  make(map[chan Snapshot]struct{}),
		recordWindow: newSlidingWindow(60 * time.Second),
		logs:         make([]LogEntry, 0, 500),
		logCap:       500,
		done:         make(chan struct{}),
	}
	go c.broadcastLoop()
	return c
}

// SetPhase updates the current replication phase.
func (c *Collector) SetPhase(phase string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = phase
	if c.startedAt.IsZero() {
		c.startedAt = time.Now()
	}
}

// SetEntities initializes the entity tracking list.
func (c *Collector) SetEntities(entities []EntityProgress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities = make(map[string]*EntityProgress, len(entities))
	c.entityOrder = make([]string, 0, len(entities))
	for i := range entities {
		ep := entities[i]
		c.entities[ep.Name] = &ep
		c.entityOrder = append(c.entityOrder, ep.Name)
	}
}

// EntityStarted marks an entity as actively being copied.
func (c *Collector) EntityStarted(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ep, ok := c.entities[name]; ok {
		ep.Status = EntityCopying
		ep.StartedAt = time.Now()
	}
}

// UpdateEntityProgress updates copy progress for an entity.
func (c *Collector) UpdateEntityProgress(name string, recordsDone int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ep, ok := c.entities[name]; ok {
		ep.RecordsDone = recordsDone
		if ep.RecordsTotal > 0 {
			ep.Percent = float64(recordsDone) / float64(ep.RecordsTotal) * 100
		}
		if !ep.StartedAt.IsZero() {
			ep.ElapsedSec = time.Since(ep.StartedAt).Seconds()
		}
	}
}

// EntityDoneMark marks an entity's replication as complete.
func (c *Collector) EntityDoneMark(name string, recordsDone int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ep, ok := c.entities[name]; ok {
		ep.Status = EntityDone
		ep.RecordsDone = recordsDone
		ep.Percent = 100
		if !ep.StartedAt.IsZero() {
			ep.ElapsedSec = time.Since(ep.StartedAt).Seconds()
		}
	}
}

// RecordWritten records a completed batch write of n records.
func (c *Collector) RecordWritten(n int64) {
	c.totalRecords.Add(n)
	c.recordWindow.Add(time.Now(), float64(n))
}

// RecordError increments the error count and stores the last error message.
func (c *Collector) RecordError(err error) {
	c.errorCount.Add(1)
	if err != nil {
		c.lastError.Store(err.Error())
	}
}

// AddLog appends a log entry to the ring buffer.
func (c *Collector) AddLog(entry LogEntry) {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	if len(c.logs) >= c.logCap {
		n := c.logCap / 4
		copy(c.logs, c.logs[n:])
		c.logs = c.logs[:len(c.logs)-n]
	}
	c.logs = append(c.logs, entry)
}

// Logs returns a copy of recent log entries.
func (c *Collector) Logs() []LogEntry {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	out := make([]LogEntry, len(c.logs))
	copy(out, c.logs)
	return out
}

// Snapshot returns the current metrics state (thread-safe). EntitiesDone
// never exceeds EntitiesTotal since it only counts entries present in
// entityOrder, whose length is EntitiesTotal.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	var elapsed float64
	if !c.startedAt.IsZero() {
		elapsed = now.Sub(c.startedAt).Seconds()
	}

	entities := make([]EntityProgress, 0, len(c.entityOrder))
	entitiesDone := 0
	for _, name := range c.entityOrder {
		ep := *c.entities[name]
		entities = append(entities, ep)
		if ep.Status == EntityDone {
			entitiesDone++
		}
	}

	var lastErr string
	if v := c.lastError.Load(); v != nil {
		lastErr = v.(string)
	}

	return Snapshot{
		Timestamp:     now,
		Phase:         c.phase,
		ElapsedSec:    elapsed,
		EntitiesTotal: len(c.entityOrder),
		EntitiesDone:  entitiesDone,
		Entities:      entities,
		RecordsPerSec: c.recordWindow.Rate(),
		TotalRecords:  c.totalRecords.Load(),
		ErrorCount:    int(c.errorCount.Load()),
		LastError:     lastErr,
	}
}

// Subscribe returns a channel that receives periodic Snapshot updates.
func (c *Collector) Subscribe() chan Snapshot {
	ch := make(chan Snapshot, 4)
	c.subMu.Lock()
	c.subscribers[ch] = struct{}{}
	c.subMu.Unlock()
	return ch
}

// Unsubscribe removes a subscription channel.
func (c *Collector) Unsubscribe(ch chan Snapshot) {
	c.subMu.Lock()
	delete(c.subscribers, ch)
	c.subMu.Unlock()
}

// Close stops the broadcast loop.
func (c *Collector) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

func (c *Collector) broadcastLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			snap := c.Snapshot()
			c.subMu.Lock()
			for ch := range c.subscribers {
				select {
				case ch <- snap:
				default:
				}
			}
			c.subMu.Unlock()
		}
	}
}

// --- Sliding window for throughput calculation ---

type windowEntry struct {
	time  time.Time
	value float64
}

type slidingWindow struct {
	mu      sync.Mutex
	entries []windowEntry
	window  time.Duration
}

func newSlidingWindow(d time.Duration) *slidingWindow {
	return &slidingWindow{
		entries: make([]windowEntry, 0, 128),
		window:  d,
	}
}

func (w *slidingWindow) Add(t time.Time, val float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, windowEntry{time: t, value: val})
	w.evict(t)
}

func (w *slidingWindow) Rate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.evict(now)
	if len(w.entries) == 0 {
		return 0
	}
	var total float64
	for _, e := range w.entries {
		total += e.value
	}
	elapsed := now.Sub(w.entries[0].time).Seconds()
	if elapsed < 1 {
		elapsed = 1
	}
	return total / elapsed
}

func (w *slidingWindow) evict(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.entries) && w.entries[i].time.Before(cutoff) {
		i++
	}
	if i > 0 {
		copy(w.entries, w.entries[i:])
		w.entries = w.entries[:len(w.entries)-i]
	}
}
