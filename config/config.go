package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppName is used for the env prefix and the config search paths.
const AppName = "quotecollector"

type Config struct {
	Delay       int            `mapstructure:"delay"`       // seconds between cycles, 0 runs once
	Stocks      []string       `mapstructure:"stocks"`      // ticker symbols, polled in this order
	CSV         string         `mapstructure:"csv"`         // snapshot destination
	Environment string         `mapstructure:"environment"` // "dev" or "prod"
	Version     bool           `mapstructure:"version"`
	Provider    ProviderConfig `mapstructure:"provider"`
	Log         LogConfig      `mapstructure:"log"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
}

// ProviderConfig selects and tunes the market-data backend.
type ProviderConfig struct {
	Name      string        `mapstructure:"name"`     // "yahoo" or "finance-go"
	BaseURL   string        `mapstructure:"base_url"` // yahoo only
	Timeout   time.Duration `mapstructure:"timeout"`
	Interval  string        `mapstructure:"interval"` // bar granularity, e.g. "1d"
	Range     string        `mapstructure:"range"`    // lookback window, e.g. "1mo"
	UserAgent string        `mapstructure:"user_agent"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

const (
	ProviderYahoo     = "yahoo"
	ProviderFinanceGo = "finance-go"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Load builds the configuration from defaults, an optional config.yaml,
// QUOTECOLLECTOR_* environment variables and command line flags, in
// increasing order of precedence. The result is validated.
func Load(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.IntP("delay", "d", v.GetInt("delay"), "time between pulls (seconds), 0 runs a single cycle")
	fs.StringSliceP("stocks", "s", nil, "comma separated list of stocks to track")
	fs.StringP("csv", "c", v.GetString("csv"), "output CSV file")
	fs.Bool("version", false, "print version and exit")
	configFile := fs.String("config", "", "path to a config file (default: search for config.yaml)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Support environment variables with dot notation (e.g., QUOTECOLLECTOR_PROVIDER_BASE_URL)
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(fmt.Sprintf("/etc/%s/", AppName))
		v.AddConfigPath(fmt.Sprintf("$HOME/.%s", AppName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Flags override file and env values only when set on the command line.
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Stocks = splitCSV(cfg.Stocks)
	if cfg.Log.Environment == "" {
		cfg.Log.Environment = cfg.Environment
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("delay", 300)
	v.SetDefault("stocks", []string{})
	v.SetDefault("csv", "out.csv")
	v.SetDefault("environment", "dev")
	v.SetDefault("version", false)

	v.SetDefault("provider.name", ProviderYahoo)
	v.SetDefault("provider.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("provider.timeout", 10*time.Second)
	v.SetDefault("provider.interval", "1d")
	v.SetDefault("provider.range", "1mo")
	v.SetDefault("provider.user_agent", "Mozilla/5.0 (compatible; quotecollector/1.0)")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "")

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.create_database", false)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", AppName)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("postgres.max_open_conns", 4)
	v.SetDefault("postgres.max_idle_conns", 2)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("postgres.ssm.host", "")
	v.SetDefault("postgres.ssm.user", "")
	v.SetDefault("postgres.ssm.password", "")
}

// Validate rejects configurations the collector cannot run with.
func (c *Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("%w: delay must be non-negative, got %d", ErrInvalidConfig, c.Delay)
	}
	for i, s := range c.Stocks {
		if s == "" {
			return fmt.Errorf("%w: empty symbol at position %d", ErrInvalidConfig, i)
		}
	}
	if c.CSV == "" {
		return fmt.Errorf("%w: csv output path is empty", ErrInvalidConfig)
	}
	switch c.Provider.Name {
	case ProviderYahoo, ProviderFinanceGo:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider.Name)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("%w: provider timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// DelayDuration is the pause between two cycles.
func (c *Config) DelayDuration() time.Duration {
	return time.Duration(c.Delay) * time.Second
}

// splitCSV flattens comma separated entries and trims whitespace. Empty
// entries are kept so Validate can report them.
func splitCSV(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, p := range strings.Split(item, ",") {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}
