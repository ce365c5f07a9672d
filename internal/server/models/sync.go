package models

import "time"

// SyncLog is one processed envelope.
type SyncLog struct {
	ID         int64
	User       string
	ClientUUID string
	Timestamp  time.Time
	Total      int
	New        int
	Duplicate  int
	Status     string
	Details    string
}

// SyncedRecord is a ledger row. A (Kind, RecordID) pair is stored at most
// once; later submissions of the same pair are duplicates.
type SyncedRecord struct {
	User      string
	Kind      string
	RecordID  string
	CentralID int64
	Hash      string
	SyncedAt  time.Time
}
