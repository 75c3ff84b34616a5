package models

import "time"

// RunSummary describes a finished batch
type RunSummary struct {
	RunID          string
	Mode           string
	Total          int
	Counts         map[string]int
	OutputPaths    []string
	ProcessingTime time.Duration
}

// NewRunSummary creates an empty summary for a run
func NewRunSummary(runID, mode string) *RunSummary {
	return &RunSummary{
		RunID:  runID,
		Mode:   mode,
		Counts: make(map[string]int),
	}
}

// Add counts one processed item under key
func (s *RunSummary) Add(key string) {
	s.Total++
	s.Counts[key]++
}
