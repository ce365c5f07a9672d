package config

import "time"

type Config struct {
	ServerURL           string
	OnlineCheckInterval time.Duration
	ProbeTimeout        time.Duration
	SyncTimeout         time.Duration
	DatabasePath        string
	LogFile             string
	HistoryLimit        int
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8001"
	c.OnlineCheckInterval = 30 * time.Second
	c.ProbeTimeout = 5 * time.Second
	c.SyncTimeout = 60 * time.Second
	c.DatabasePath = "secrimpo.db"
	c.LogFile = "secrimpo-client.log"
	c.HistoryLimit = 10
}

func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
