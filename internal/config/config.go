package config

import (
	"fmt"
	"os"
	"strings"
)

// Catalog drivers
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Environment variables read by FromEnv
const (
	EnvCatalog       = "CSVDB_CATALOG"
	EnvCatalogDriver = "CSVDB_CATALOG_DRIVER"
	EnvLogLevel      = "CSVDB_LOG_LEVEL"
	EnvSeqURL        = "CSVDB_SEQ_URL"
)

// Config holds process settings. Precedence: defaults, then environment,
// then command line flags.
type Config struct {
	Catalog       string // catalog directory, or sqlite DSN
	CatalogDriver string // file or sqlite
	LogLevel      string
	SeqURL        string
}

func Default() Config {
	return Config{
		Catalog:       ".",
		CatalogDriver: DriverFile,
		LogLevel:      "info",
	}
}

// FromEnv overlays the CSVDB_* environment variables on base
func FromEnv(base Config) Config {
	return fromLookup(base, os.LookupEnv)
}

func fromLookup(base Config, lookup func(string) (string, bool)) Config {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&base.Catalog, EnvCatalog)
	set(&base.CatalogDriver, EnvCatalogDriver)
	set(&base.LogLevel, EnvLogLevel)
	set(&base.SeqURL, EnvSeqURL)
	return base
}

func (c Config) Validate() error {
	switch c.CatalogDriver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("unknown catalog driver %q (want %s or %s)", c.CatalogDriver, DriverFile, DriverSQLite)
	}
	if c.Catalog == "" {
		return fmt.Errorf("catalog location is required")
	}
	return nil
}
