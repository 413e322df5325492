package config

import "os"

// Source represents where a configured reference file comes from.
type Source string

const (
	SourceEnv     Source = "env"
	SourceConfig  Source = "config"
	SourceBuiltin Source = "builtin"
)

// FileStatus represents the status of a configured reference data file.
type FileStatus struct {
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Source Source `json:"source"`
	Exists bool   `json:"exists"`
}

// CheckReferenceFiles returns the status of the reference data files.
func CheckReferenceFiles(cfg *Config) []FileStatus {
	return []FileStatus{
		checkFile("Market rate bands", cfg.Engine.MarketRatesFile, EnvPrefix+"_ENGINE_MARKET_RATES_FILE"),
		checkFile("Risk factor weights", cfg.Engine.RiskFactorsFile, EnvPrefix+"_ENGINE_RISK_FACTORS_FILE"),
	}
}

// checkFile checks if a path is set, where it came from and whether it exists.
func checkFile(name, path, envVar string) FileStatus {
	status := FileStatus{Name: name, Path: path}

	if path == "" {
		status.Source = SourceBuiltin
		return status
	}
	if os.Getenv(envVar) != "" {
		status.Source = SourceEnv
	} else {
		status.Source = SourceConfig
	}
	if _, err := os.Stat(path); err == nil {
		status.Exists = true
	}
	return status
}
