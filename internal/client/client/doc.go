// Package client contains the client-side transport to the SECRIMPO sync
// server and the local database bootstrap.
//
// # Overview
//
//  1. Client is the transport contract used by the sync orchestrator: Ping,
//     Sync, Status, History and Close.
//  2. HTTPClient implements it with JSON over HTTP against the
//     /sincronizar endpoints.
//  3. InitDatabase opens the local SQLite database and applies the embedded
//     goose migrations; NewRepositories wires the local repositories on it.
//
// # Error Handling
//
// A server that cannot be reached (connection failure, timeout, cancelled
// context) yields an error matching ErrUnavailable. A server that answers
// with a non-2xx status yields a *ServerError carrying the server's message
// verbatim when the body has one.
package client
