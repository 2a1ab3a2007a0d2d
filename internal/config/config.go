// Package config defines the application configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/velmoro/tienda/internal/pkg/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// Defaults applied by Validate when a value is not configured.
const (
	DefaultDataDir      = "data"
	DefaultProductsFile = "products.csv"
	DefaultSalesFile    = "sales.csv"
	DefaultTopLimit     = 10
)

type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Log     LogConfig     `koanf:"log"`
	Report  ReportConfig  `koanf:"report"`
}

// StorageConfig locates the two CSV resources backing the catalog and the
// sales ledger. Files are created with a header row on first access.
type StorageConfig struct {
	Dir          string `koanf:"dir"`
	ProductsFile string `koanf:"products_file"`
	SalesFile    string `koanf:"sales_file"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type ReportConfig struct {
	TopLimit int `koanf:"top_limit"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Storage Configuration ---\n")
	b.WriteString(fmt.Sprintf("  storage.dir: %s\n", c.Storage.Dir))
	b.WriteString(fmt.Sprintf("  storage.products_file: %s\n", c.Storage.ProductsFile))
	b.WriteString(fmt.Sprintf("  storage.sales_file: %s\n", c.Storage.SalesFile))

	b.WriteString("\n--- Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))

	b.WriteString("\n--- Reports ---\n")
	b.WriteString(fmt.Sprintf("  report.top_limit: %d\n", c.Report.TopLimit))

	return b.String()
}

// Validate fills in defaults for unset values and checks the rest.
func (c *Config) Validate() error {
	if c.Storage.Dir == "" {
		c.Storage.Dir = DefaultDataDir
	}
	if c.Storage.ProductsFile == "" {
		c.Storage.ProductsFile = DefaultProductsFile
	}
	if c.Storage.SalesFile == "" {
		c.Storage.SalesFile = DefaultSalesFile
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Report.TopLimit == 0 {
		c.Report.TopLimit = DefaultTopLimit
	}
	if c.Report.TopLimit < 0 {
		return fmt.Errorf("report.top_limit must be positive, got %d", c.Report.TopLimit)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return nil
}
