package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	EntryPath string // entry world source file
	OutPath   string // document destination; empty means stdout
	FactsDB   string // optional SQLite export of the fact set
	CheckOnly bool   // validate without writing a document

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.EntryPath == "" {
		return nil, errors.New("EntryPath is a required configuration field and cannot be empty")
	}
	if cfg.CheckOnly && cfg.OutPath != "" {
		return nil, errors.New("an output path makes no sense in check-only mode")
	}
	return &cfg, nil
}
