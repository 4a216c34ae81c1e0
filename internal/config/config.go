package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/catalog"
	"codeberg.org/mutker/nvme-exporter/internal/collector"
	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"codeberg.org/mutker/nvme-exporter/internal/nvme"
	"codeberg.org/mutker/nvme-exporter/internal/server"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix     = "NVME_EXPORTER"
	EnvConfigPath = EnvPrefix + "_CONFIG"

	configName = "nvme-exporter"
	configType = "toml"
	configDir  = "/etc"

	DefaultLogLevel = "info"
	defaultInterval = 10 * time.Second

	flagConfig = "config"
)

type Config struct {
	ListenAddress string        `mapstructure:"listen_address"`
	MetricsPath   string        `mapstructure:"metrics_path"`
	Interval      time.Duration `mapstructure:"interval"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	Concurrency   int           `mapstructure:"concurrency"`
	NVMeBinary    string        `mapstructure:"nvme_binary"`
	Sudo          bool          `mapstructure:"sudo"`
	DeviceDir     string        `mapstructure:"device_dir"`
	DevicePattern string        `mapstructure:"device_pattern"`
	Sources       []string      `mapstructure:"sources"`
	LogLevel      string        `mapstructure:"log_level"`
	PIDFile       string        `mapstructure:"pid_file"`
	Catalog       CatalogConfig `mapstructure:"catalog"`
}

type CatalogConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	DBPath       string        `mapstructure:"db_path"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"listen-address": "listen_address",
	"metrics-path":   "metrics_path",
	"interval":       "interval",
	"fetch-timeout":  "fetch_timeout",
	"concurrency":    "concurrency",
	"nvme-binary":    "nvme_binary",
	"sudo":           "sudo",
	"device-dir":     "device_dir",
	"device-pattern": "device_pattern",
	"sources":        "sources",
	"log-level":      "log_level",
	"pid-file":       "pid_file",
	"catalog":        "catalog.enabled",
	"catalog-db":     "catalog.db_path",
}

func DefaultConfig() *Config {
	nvmeCfg := nvme.DefaultConfig()
	collectorCfg := collector.DefaultConfig()
	serverCfg := server.DefaultConfig()
	catalogCfg := catalog.DefaultConfig()

	return &Config{
		ListenAddress: serverCfg.ListenAddress,
		MetricsPath:   serverCfg.MetricsPath,
		Interval:      defaultInterval,
		FetchTimeout:  collectorCfg.FetchTimeout,
		Concurrency:   collectorCfg.Concurrency,
		NVMeBinary:    nvmeCfg.Binary,
		Sudo:          nvmeCfg.Sudo,
		DeviceDir:     nvmeCfg.DeviceDir,
		DevicePattern: nvmeCfg.DevicePattern,
		Sources:       collectorCfg.Sources,
		LogLevel:      DefaultLogLevel,
		Catalog: CatalogConfig{
			Enabled:      catalogCfg.Enabled,
			DBPath:       catalogCfg.DBPath,
			BatchSize:    catalogCfg.BatchSize,
			BatchTimeout: catalogCfg.BatchTimeout,
		},
	}
}

// BindFlags registers every configuration flag on fs, defaulted from
// DefaultConfig.
func BindFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	fs.String(flagConfig, "", "Path to a TOML configuration file (default /etc/nvme-exporter.toml)")
	fs.String("listen-address", d.ListenAddress, "Address to expose metrics on")
	fs.String("metrics-path", d.MetricsPath, "HTTP path for metrics")
	fs.Duration("interval", d.Interval, "Interval between collection cycles")
	fs.Duration("fetch-timeout", d.FetchTimeout, "Timeout for a single nvme-cli invocation")
	fs.Int("concurrency", d.Concurrency, "Number of devices queried at once")
	fs.String("nvme-binary", d.NVMeBinary, "Path to the nvme-cli binary")
	fs.Bool("sudo", d.Sudo, "Run nvme-cli through sudo")
	fs.String("device-dir", d.DeviceDir, "Directory holding NVMe device nodes")
	fs.String("device-pattern", d.DevicePattern, "Regular expression selecting device nodes")
	fs.StringSlice("sources", d.Sources, "nvme-cli telemetry queries issued per device")
	fs.String("log-level", d.LogLevel, "Log level (debug, info, warning, error)")
	fs.String("pid-file", d.PIDFile, "Write the process ID to this file")
	fs.Bool("catalog", d.Catalog.Enabled, "Record series definitions in the catalog")
	fs.String("catalog-db", d.Catalog.DBPath, "Path to the series catalog database")
}

// Load resolves the configuration from flags, NVME_EXPORTER_* environment
// variables, the TOML file and defaults, in that order of precedence. fs may
// be nil; flags that were not set on the command line do not override
// anything.
func Load(fs *pflag.FlagSet) (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if pf := fs.Lookup(name); pf != nil {
				if err := v.BindPFlag(key, pf); err != nil {
					return nil, errFactory.Wrap(errors.ErrBindFlags, err)
				}
			}
		}
	}

	if err := readConfigFile(v, configPath(fs)); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("listen_address", d.ListenAddress)
	v.SetDefault("metrics_path", d.MetricsPath)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("fetch_timeout", d.FetchTimeout)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("nvme_binary", d.NVMeBinary)
	v.SetDefault("sudo", d.Sudo)
	v.SetDefault("device_dir", d.DeviceDir)
	v.SetDefault("device_pattern", d.DevicePattern)
	v.SetDefault("sources", d.Sources)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("pid_file", d.PIDFile)
	v.SetDefault("catalog.enabled", d.Catalog.Enabled)
	v.SetDefault("catalog.db_path", d.Catalog.DBPath)
	v.SetDefault("catalog.batch_size", d.Catalog.BatchSize)
	v.SetDefault("catalog.batch_timeout", d.Catalog.BatchTimeout)
}

// configPath returns an explicitly requested config file, or "" to search
// the default location.
func configPath(fs *pflag.FlagSet) string {
	if fs != nil {
		if pf := fs.Lookup(flagConfig); pf != nil && pf.Changed {
			return pf.Value.String()
		}
	}

	return os.Getenv(EnvConfigPath)
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path != "" {
		// An explicit file must exist
		v.SetConfigFile(path)
		v.SetConfigType(configType)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if _, err := regexp.Compile(c.DevicePattern); err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Server().Validate(); err != nil {
		return err
	}
	if err := c.Collector().Validate(); err != nil {
		return err
	}

	return c.CatalogStore().Validate()
}

// Level returns the parsed log level.
func (c *Config) Level() logger.LogLevel {
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}

func (c *Config) NVMe() nvme.Config {
	return nvme.Config{
		Binary:        c.NVMeBinary,
		Sudo:          c.Sudo,
		DeviceDir:     c.DeviceDir,
		DevicePattern: c.DevicePattern,
	}
}

func (c *Config) Collector() collector.Config {
	return collector.Config{
		Sources:      c.Sources,
		FetchTimeout: c.FetchTimeout,
		Concurrency:  c.Concurrency,
	}
}

func (c *Config) Server() server.Config {
	return server.Config{
		ListenAddress: c.ListenAddress,
		MetricsPath:   c.MetricsPath,
	}
}

func (c *Config) CatalogStore() catalog.Config {
	return catalog.Config{
		Enabled:      c.Catalog.Enabled,
		DBPath:       c.Catalog.DBPath,
		BatchSize:    c.Catalog.BatchSize,
		BatchTimeout: c.Catalog.BatchTimeout,
	}
}
