package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.Dashboard.Host == "" {
		cfg.Dashboard.Host = "localhost"
	}
	if cfg.Dashboard.Port == 0 {
		cfg.Dashboard.Port = 5173
	}
	if cfg.Dashboard.PageSize == 0 {
		cfg.Dashboard.PageSize = 20
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.PageSize == 0 {
		cfg.Server.PageSize = 20
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/dealbrief/data/db/deals.db"
	}
	if cfg.Storage.SearchIndexPath == "" {
		cfg.Storage.SearchIndexPath = "/usr/local/var/dealbrief/data/indices/bleve"
	}
	if cfg.Briefer.Region == "" {
		cfg.Briefer.Region = "us-central1"
	}
	if cfg.Briefer.Model == "" {
		cfg.Briefer.Model = "gemini-2.0-flash"
	}
	if cfg.Briefer.Workers == 0 {
		cfg.Briefer.Workers = 4
	}
	if cfg.Inbox.Extensions == nil {
		cfg.Inbox.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".odt", ".rtf", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Inbox.Directories) > 0 && cfg.Inbox.Recursive == nil {
		t := true
		cfg.Inbox.Recursive = &t
	}
}
