// Package records is the client's local store of seizure records.
//
// Collector is the read side used by the sync orchestrator: it returns full
// snapshots of every category and writes back the globally unique record
// identifier minted during a sync attempt. AssignRecordID never overwrites an
// identifier that is already set.
//
// SQLiteRepository implements Collector on the local SQLite database and also
// provides the Add* methods used by the CLI to capture records offline.
package records
