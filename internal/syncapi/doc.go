// Package syncapi defines the JSON wire contract between the SECRIMPO
// desktop client and the central sync server.
//
// Record types are tagged per category and validated with
// go-playground/validator before they are allowed into an Envelope, so a
// malformed record never reaches the transport. JSON field names follow the
// server's Portuguese schema (usuario, dados, policiais, uuid_local, ...).
//
// Endpoints
//
//	POST /sincronizar/teste                  connectivity probe
//	POST /sincronizar                        submit an Envelope, returns Response
//	GET  /sincronizar/status/{usuario}       Status
//	GET  /sincronizar/historico/{usuario}    []HistoryEntry, newest first
package syncapi
