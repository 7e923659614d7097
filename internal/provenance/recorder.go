package provenance

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Recorder hands out run handles and tracks which runs are still open. The
// registry exists for cleanup and finalization only; runs never share event
// data through it.
type Recorder struct {
	logger hclog.Logger

	mu   sync.Mutex
	open map[string]*Run
}

// NewRecorder creates a Recorder that logs each event at debug level.
func NewRecorder(logger hclog.Logger) *Recorder {
	return &Recorder{
		logger: logger,
		open:   make(map[string]*Run),
	}
}

// Start begins a run. The returned handle owns an empty event sequence and
// belongs exclusively to the caller.
func (rec *Recorder) Start(label, reference string) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		Label:     label,
		Reference: reference,
		recorder:  rec,
		logger:    rec.logger,
	}

	rec.mu.Lock()
	rec.open[run.ID] = run
	rec.mu.Unlock()

	rec.logger.Debug("provenance run started", "run", label, "id", run.ID, "reference", reference)
	return run
}

// OpenRuns returns the labels of runs that were started and not yet closed,
// sorted for stable output.
func (rec *Recorder) OpenRuns() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	labels := make([]string, 0, len(rec.open))
	for _, run := range rec.open {
		labels = append(labels, run.Label)
	}
	sort.Strings(labels)
	return labels
}

func (rec *Recorder) finish(run *Run) {
	rec.mu.Lock()
	delete(rec.open, run.ID)
	rec.mu.Unlock()
	rec.logger.Debug("provenance run closed", "run", run.Label, "id", run.ID, "events", run.Len())
}

// Merge concatenates the event sequences of several runs in the order the
// runs are given, renumbering sequence indices. Callers parallelizing a
// computation give each branch its own run and merge by branch index, so the
// combined sequence is deterministic and never arbitrarily interleaved.
func Merge(runs ...*Run) []Event {
	var merged []Event
	for _, run := range runs {
		for _, event := range run.events {
			event.Seq = len(merged)
			merged = append(merged, event)
		}
	}
	return merged
}
