// Package metadata persists small client-side settings as key/value pairs in
// the local SQLite database.
//
// The sync subsystem stores three keys here: the installation identifier
// (KeyClientID), the operator name used for sync (KeySyncUser) and the
// timestamp of the last successful sync (KeyLastSync, RFC 3339).
//
// Get returns (nil, nil) for a missing key so callers can tell "absent" from
// a storage failure.
package metadata
