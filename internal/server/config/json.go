package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/secrimpo/internal/flagx"
	"github.com/dmitrijs2005/secrimpo/internal/timex"
)

// jsonConfig is the on-disk shape of the server configuration file.
type jsonConfig struct {
	EndpointAddr    string         `json:"endpoint_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	HistoryMax      int            `json:"history_max"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
}

// parseJSON overlays values from the file named by -c/-config. Keys that are
// absent keep their current value. It panics on read or decode errors.
func parseJSON(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.EndpointAddr != "" {
		cfg.EndpointAddr = jc.EndpointAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.HistoryMax > 0 {
		cfg.HistoryMax = jc.HistoryMax
	}
	if jc.ShutdownTimeout.Duration > 0 {
		cfg.ShutdownTimeout = jc.ShutdownTimeout.Duration
	}
}
