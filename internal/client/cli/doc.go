// Package cli implements the interactive SECRIMPO client: a small REPL to
// set the sync user, capture seizure records offline, trigger a sync and
// inspect connectivity, status and history.
//
// Commands
//
//	help                   show available commands
//	user [name]            show or set the sync user
//	online                 probe the server now
//	addofficer             add a police officer
//	addowner               add an item owner
//	addincident            add a seizure report with its items
//	list                   list local records and whether they were sent
//	sync                   synchronize local records with the server
//	status                 show local and server sync status
//	history [n]            show the last n server sync log entries
//	exit | quit            leave the program
package cli
