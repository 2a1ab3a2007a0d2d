package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_Validate_AppliesDefaults(t *testing.T) {
	// given
	cfg := &Config{}
	// when
	err := cfg.Validate()
	// then
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDir, cfg.Storage.Dir)
	assert.Equal(t, DefaultProductsFile, cfg.Storage.ProductsFile)
	assert.Equal(t, DefaultSalesFile, cfg.Storage.SalesFile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultTopLimit, cfg.Report.TopLimit)
}

func Test_Config_Validate_KeepsExplicitValues(t *testing.T) {
	// given
	cfg := &Config{}
	cfg.Storage.Dir = "/var/lib/tienda"
	cfg.Log.Level = "debug"
	cfg.Report.TopLimit = 5
	// when
	err := cfg.Validate()
	// then
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/tienda", cfg.Storage.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Report.TopLimit)
}

func Test_Config_Validate_Rejections(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(*Config)
	}{
		{name: "unknown log level", setup: func(c *Config) { c.Log.Level = "verbose" }},
		{name: "negative top limit", setup: func(c *Config) { c.Report.TopLimit = -1 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			tc.setup(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
