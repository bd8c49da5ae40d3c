package metrics

import (
	"sync"
	"time"
)

// Snapshot is a JSON-friendly view of the counters, suitable for logging
// after a run.
type Snapshot struct {
	StartedAt       string         `json:"started_at"`
	UptimeSeconds   int64          `json:"uptime_seconds"`
	TotalRuns       int64          `json:"total_runs"`
	TotalFailures   int64          `json:"total_failures"`
	LastRunMs       int64          `json:"last_run_ms"`
	FilesParsed     int64          `json:"files_parsed"`
	RecordsParsed   int64          `json:"records_parsed"`
	ResultCells     int64          `json:"result_cells"`
	FindingsByKind  map[string]int `json:"findings_by_kind"`
	ConfirmedOpen   int            `json:"confirmed_open"`
	UnconfirmedOpen int            `json:"unconfirmed_open"`
}

type metricsState struct {
	mu sync.Mutex

	startedAt time.Time

	totalRuns     int64
	totalFailures int64
	lastRun       time.Duration

	filesParsed   int64
	recordsParsed int64
	resultCells   int64

	findingsByKind  map[string]int
	confirmedOpen   int
	unconfirmedOpen int
}

var st = &metricsState{
	startedAt:      time.Now(),
	findingsByKind: make(map[string]int),
}

// RecordRun accumulates the outcome of one pipeline run.
func RecordRun(duration time.Duration, files, records, cells int, failed bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.totalRuns++
	if failed {
		st.totalFailures++
	}
	st.lastRun = duration
	st.filesParsed += int64(files)
	st.recordsParsed += int64(records)
	st.resultCells += int64(cells)
}

// RecordFindings replaces the finding counters with the latest run's view.
func RecordFindings(byKind map[string]int, confirmed, unconfirmed int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.findingsByKind = make(map[string]int, len(byKind))
	for k, v := range byKind {
		st.findingsByKind[k] = v
	}
	st.confirmedOpen = confirmed
	st.unconfirmedOpen = unconfirmed
}

// Current returns a copy of the counters.
func Current() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	byKind := make(map[string]int, len(st.findingsByKind))
	for k, v := range st.findingsByKind {
		byKind[k] = v
	}

	return Snapshot{
		StartedAt:       st.startedAt.Format(time.RFC3339),
		UptimeSeconds:   int64(time.Since(st.startedAt).Seconds()),
		TotalRuns:       st.totalRuns,
		TotalFailures:   st.totalFailures,
		LastRunMs:       st.lastRun.Milliseconds(),
		FilesParsed:     st.filesParsed,
		RecordsParsed:   st.recordsParsed,
		ResultCells:     st.resultCells,
		FindingsByKind:  byKind,
		ConfirmedOpen:   st.confirmedOpen,
		UnconfirmedOpen: st.unconfirmedOpen,
	}
}

// Reset clears all counters. Intended for tests.
func Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.startedAt = time.Now()
	st.totalRuns = 0
	st.totalFailures = 0
	st.lastRun = 0
	st.filesParsed = 0
	st.recordsParsed = 0
	st.resultCells = 0
	st.findingsByKind = make(map[string]int)
	st.confirmedOpen = 0
	st.unconfirmedOpen = 0
}
