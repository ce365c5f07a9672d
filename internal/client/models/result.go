package models

import "time"

// CategoryCounts holds the outcome of one record category.
type CategoryCounts struct {
	New       int
	Duplicate int
}

func (c CategoryCounts) Total() int { return c.New + c.Duplicate }

// SyncResult is the client-side view of one completed sync attempt.
type SyncResult struct {
	Success    bool
	Personnel  CategoryCounts
	Owners     CategoryCounts
	Incidents  CategoryCounts
	Errors     []string
	Details    []string
	Summary    string
	SyncID     int64
	ServerTime time.Time

	// NothingToSync is set when the attempt found no local records and
	// never contacted the server.
	NothingToSync bool
}

// Totals sums the per-category counts.
func (r SyncResult) Totals() CategoryCounts {
	return CategoryCounts{
		New:       r.Personnel.New + r.Owners.New + r.Incidents.New,
		Duplicate: r.Personnel.Duplicate + r.Owners.Duplicate + r.Incidents.Duplicate,
	}
}
