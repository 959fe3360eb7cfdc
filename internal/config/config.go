package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Backend selects the persistence strategy.
const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"
)

type Config struct {
	Addr        string `mapstructure:"addr"`
	DataDir     string `mapstructure:"data_dir"`
	Backend     string `mapstructure:"backend"`
	SupabaseURL string `mapstructure:"supabase_url"`
	SupabaseKey string `mapstructure:"supabase_key"`
}

// Load reads an optional config.yaml from the working directory with
// environment overrides, e.g. VENDAS_BACKEND=supabase.
//
// The Supabase defaults point at the hosted project the app ships
// against; the key is a publishable anon key, not a secret, but
// deployments should still override both.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8081")
	v.SetDefault("data_dir", "data")
	v.SetDefault("backend", BackendLocal)
	v.SetDefault("supabase_url", "https://rbcywozraqjiqohelwmj.supabase.co")
	v.SetDefault("supabase_key", "sb_publishable_GKQZL94aK6hkNroTUBUOzg_rZ-cIKMh")

	v.SetEnvPrefix("VENDAS")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Backend != BackendLocal && c.Backend != BackendSupabase {
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
	return &c, nil
}
