// Package config loads ynabsync settings from a config file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/yurifrl/ynabsync/pkg/reconcile"
)

const (
	BackendAPI = "api"
	BackendCSV = "csv"
)

type YNABConfig struct {
	BudgetID string `mapstructure:"budget_id"`
	TokenEnv string `mapstructure:"token_env"`
	Account  string `mapstructure:"account"`
}

type Config struct {
	YNAB      YNABConfig `mapstructure:"ynab"`
	Ledger    string     `mapstructure:"ledger"`
	Years     []string   `mapstructure:"years"`
	From      string     `mapstructure:"from"`
	To        string     `mapstructure:"to"`
	Backend   string     `mapstructure:"backend"`
	Output    string     `mapstructure:"output"`
	DebugFile string     `mapstructure:"debug_file"`
	Strict    bool       `mapstructure:"strict"`
	Verbose   bool       `mapstructure:"verbose"`
	LogLevel  string     `mapstructure:"log_level"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"budget":     "ynab.budget_id",
	"account":    "ynab.account",
	"token-env":  "ynab.token_env",
	"years":      "years",
	"from":       "from",
	"to":         "to",
	"backend":    "backend",
	"output":     "output",
	"debug-file": "debug_file",
	"strict":     "strict",
	"verbose":    "verbose",
	"log-level":  "log_level",
}

// Build loads configuration. cfgFile may be empty, in which case config.yaml
// in the working directory is used when present. A .env file is loaded into
// the environment first. flags may be nil.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = gotenv.Load()

	v := viper.New()
	// every key needs a default so env overrides reach Unmarshal
	v.SetDefault("ynab.budget_id", "")
	v.SetDefault("ynab.token_env", "YNAB_TOKEN")
	v.SetDefault("ynab.account", "")
	v.SetDefault("ledger", "")
	v.SetDefault("years", []string{})
	v.SetDefault("from", "")
	v.SetDefault("to", "")
	v.SetDefault("backend", BackendAPI)
	v.SetDefault("output", ".")
	v.SetDefault("debug_file", "")
	v.SetDefault("strict", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("YNABSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, c.validate()
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendAPI, BackendCSV:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendAPI, BackendCSV)
	}
	for _, bound := range []string{c.From, c.To} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", bound); err != nil {
			return fmt.Errorf("invalid date bound %q: %w", bound, err)
		}
	}
	return nil
}

// Filter returns the date filter for a run. Explicit years and/or a date
// range are combined; with neither, the current and previous calendar years
// relative to now are used.
func (c *Config) Filter(now time.Time) reconcile.Filter {
	var filters []reconcile.Filter
	if len(c.Years) > 0 {
		filters = append(filters, reconcile.YearPrefixes(c.Years...))
	}
	if c.From != "" || c.To != "" {
		filters = append(filters, reconcile.DateRange(c.From, c.To))
	}
	if len(filters) == 0 {
		return reconcile.YearPrefixes(DefaultYears(now)...)
	}
	return reconcile.And(filters...)
}

// DefaultYears returns the current and previous calendar year.
func DefaultYears(now time.Time) []string {
	year := now.Year()
	return []string{strconv.Itoa(year), strconv.Itoa(year - 1)}
}

// Token reads the YNAB personal access token from the configured env var.
func (c *Config) Token() (string, error) {
	token := os.Getenv(c.YNAB.TokenEnv)
	if token == "" {
		return "", fmt.Errorf("environment variable %s is empty", c.YNAB.TokenEnv)
	}
	return token, nil
}

// RequireDestination checks the settings needed to talk to a budget account.
func (c *Config) RequireDestination() error {
	if c.YNAB.BudgetID == "" {
		return fmt.Errorf("ynab.budget_id is required")
	}
	if c.YNAB.Account == "" {
		return fmt.Errorf("ynab.account is required")
	}
	return nil
}
