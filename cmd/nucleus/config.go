package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tinytelemetry/nucleus/internal/backup"
	"github.com/tinytelemetry/nucleus/internal/engine"
	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/provider"
	"github.com/tinytelemetry/nucleus/internal/selection"
	"github.com/tinytelemetry/nucleus/internal/ticker"
)

const (
	defaultBindHost          = "127.0.0.1"
	defaultAPIPort           = 3737
	defaultQueryTimeout      = 30 * time.Second
	defaultSnapshotRetention = 90 // days, 0 = disabled
	defaultSkin              = model.DefaultSkin
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	DBPath            string            `mapstructure:"db-path"`
	QueryTimeout      time.Duration     `mapstructure:"query-timeout"`
	SnapshotRetention int               `mapstructure:"snapshot-retention"`
	Skin              string            `mapstructure:"skin"`
	SkinFile          string            `mapstructure:"skin-file"`
	ReducedMotion     bool              `mapstructure:"reduced-motion"`
	FrameRate         int               `mapstructure:"frame-rate"`
	APIEnabled        bool              `mapstructure:"api-enabled"`
	APIPort           int               `mapstructure:"api-port"`
	APIAddr           string            `mapstructure:"api-addr"`
	Engine            engine.Config     `mapstructure:"engine"`
	Ticker            ticker.Config     `mapstructure:"ticker"`
	Selection         selection.Weights `mapstructure:"selection"`
	Providers         provider.Config   `mapstructure:"providers"`
	Backup            backup.Config     `mapstructure:"backup"`
	ConfigPath        string            `mapstructure:"-"` // not from config file
}

// needsStore reports whether the DuckDB snapshot store must be opened.
func (c appConfig) needsStore() bool {
	src := c.Providers.Source
	return src == "" || src == provider.SourceStore || c.APIEnabled
}

func loadConfig(configPath string, flags *pflag.FlagSet) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	defaultDBPath := filepath.Join(home, ".local", "share", "nucleus", "nucleus.duckdb")
	defaultFixtures := filepath.Join(home, ".config", "nucleus", "slides")
	defaultBackupDir := filepath.Join(home, ".local", "share", "nucleus", "backups")

	v := viper.New()
	v.SetEnvPrefix("NUCLEUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("db-path", defaultDBPath)
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("snapshot-retention", defaultSnapshotRetention)
	v.SetDefault("skin", defaultSkin)
	v.SetDefault("skin-file", "")
	v.SetDefault("reduced-motion", false)
	v.SetDefault("frame-rate", model.DefaultFrameRate)
	v.SetDefault("api-enabled", false)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("api-addr", "")
	v.SetDefault("engine.auto-advance", model.DefaultAutoAdvance)
	v.SetDefault("engine.idle-timeout", model.DefaultIdleTimeout)
	v.SetDefault("engine.transition", model.DefaultTransition)
	v.SetDefault("engine.swipe-threshold", model.DefaultSwipeThreshold)
	v.SetDefault("ticker.swap-delay", model.DefaultTickerSwapDelay)
	v.SetDefault("ticker.fade", model.DefaultTickerFade)
	v.SetDefault("ticker.blank-values", model.DefaultBlankValues)
	v.SetDefault("selection.first", model.DefaultSelectionFirst)
	v.SetDefault("selection.second", model.DefaultSelectionSecond)
	v.SetDefault("selection.third", model.DefaultSelectionThird)
	v.SetDefault("selection.remainder", model.DefaultSelectionRemainder)
	v.SetDefault("providers.source", provider.SourceStore)
	v.SetDefault("providers.fixtures-dir", defaultFixtures)
	v.SetDefault("providers.timeout", model.DefaultProviderTimeout)
	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.interval", 24*time.Hour)
	v.SetDefault("backup.dir", defaultBackupDir)
	v.SetDefault("backup.keep-last", 7)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return cfg, fmt.Errorf("binding flags: %w", err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		defaultConfigPath := filepath.Join(home, ".config", "nucleus", "config.yml")
		v.SetConfigFile(defaultConfigPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if cfg.FrameRate <= 0 || cfg.FrameRate > 120 {
		return cfg, fmt.Errorf("invalid frame-rate: %d", cfg.FrameRate)
	}

	// Expand ~ in paths
	cfg.DBPath = expandHome(home, cfg.DBPath)
	cfg.SkinFile = expandHome(home, cfg.SkinFile)
	cfg.Providers.FixturesDir = expandHome(home, cfg.Providers.FixturesDir)
	cfg.Backup.LocalDir = expandHome(home, cfg.Backup.LocalDir)

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}

func expandHome(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
