package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/secrimpo/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8001")
//	-d string   PostgreSQL DSN
//	-m int      maximum number of history entries per request
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddr, "a", cfg.EndpointAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.IntVar(&cfg.HistoryMax, "m", cfg.HistoryMax, "history limit cap")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
