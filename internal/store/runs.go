package store

import (
	"errors"
	"sync"

	"github.com/lromero/covid-data-pipeline/internal/covid"
)

var (
	// ErrNoRuns is returned when no pipeline run has completed yet.
	ErrNoRuns = errors.New("no completed pipeline runs")
)

// RunOutcome is one recorded pipeline run: the result plus the error message
// if the run failed.
type RunOutcome struct {
	Result covid.RunResult `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// OK reports whether the run completed without error.
func (o RunOutcome) OK() bool {
	return o.Error == ""
}

// RunHistory is a concurrency-safe in-memory record of recent pipeline runs,
// consumed by the status endpoints in scheduled mode.
type RunHistory struct {
	mu sync.RWMutex

	runs []RunOutcome

	// retention: max number of runs to keep (0 = unlimited)
	maxHistory int
}

// NewRunHistory creates a RunHistory keeping at most maxHistory entries.
// If maxHistory is <= 0, it is treated as unlimited.
func NewRunHistory(maxHistory int) *RunHistory {
	return &RunHistory{maxHistory: maxHistory}
}

// Record appends a run outcome and enforces retention.
func (h *RunHistory) Record(res covid.RunResult, err error) {
	outcome := RunOutcome{Result: res}
	if err != nil {
		outcome.Error = err.Error()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append(h.runs, outcome)

	if h.maxHistory > 0 && len(h.runs) > h.maxHistory {
		over := len(h.runs) - h.maxHistory
		h.runs = h.runs[over:]
	}
}

// Latest returns the most recently recorded run.
func (h *RunHistory) Latest() (RunOutcome, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.runs) == 0 {
		return RunOutcome{}, ErrNoRuns
	}
	return h.runs[len(h.runs)-1], nil
}

// All returns the recorded runs, oldest first.
func (h *RunHistory) All() []RunOutcome {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]RunOutcome, len(h.runs))
	copy(out, h.runs)
	return out
}
