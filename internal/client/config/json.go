package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/secrimpo/internal/flagx"
	"github.com/dmitrijs2005/secrimpo/internal/timex"
)

type jsonConfig struct {
	ServerURL           string         `json:"server_url"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	ProbeTimeout        timex.Duration `json:"probe_timeout"`
	SyncTimeout         timex.Duration `json:"sync_timeout"`
	DatabasePath        string         `json:"database_path"`
	LogFile             string         `json:"log_file"`
	HistoryLimit        int            `json:"history_limit"`
}

// parseJSON overlays values from the file named by -c/-config. It panics on
// read or decode errors.
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

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.ProbeTimeout.Duration > 0 {
		cfg.ProbeTimeout = jc.ProbeTimeout.Duration
	}
	if jc.SyncTimeout.Duration > 0 {
		cfg.SyncTimeout = jc.SyncTimeout.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.LogFile != "" {
		cfg.LogFile = jc.LogFile
	}
	if jc.HistoryLimit > 0 {
		cfg.HistoryLimit = jc.HistoryLimit
	}
}
