// Package models defines the client-side record and sync result types.
//
// Local records carry two identities: LocalKey, the row id in the local
// SQLite store, and RecordID, the globally unique identifier sent to the
// server as uuid_local. RecordID is empty until the record's first sync
// attempt mints one.
package models
