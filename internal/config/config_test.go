package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "sqlite", cfg.Store.Driver)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, "memory", cfg.Catalog.Cache)
	require.Equal(t, "filesystem", cfg.Blob.Backend)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FILMVAULT_STORE_DRIVER", "memory")
	t.Setenv("FILMVAULT_SERVER_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Store.Driver)
	require.Equal(t, 9090, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad store driver", func(c *Config) { c.Store.Driver = "etcd" }, true},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }, true},
		{"postgres without host", func(c *Config) { c.Store.Driver = "postgres"; c.Store.Host = "" }, true},
		{"bad catalog cache", func(c *Config) { c.Catalog.Cache = "disk" }, true},
		{"s3 without bucket", func(c *Config) { c.Blob.Backend = "s3" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
