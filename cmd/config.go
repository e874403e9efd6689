package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	consts "github.com/khanhnv2901/seca-sri/internal/shared/constants"
)

const defaultConfigName = ".seca-sri"

// CLIConfig captures runtime configuration for one audit run.
type CLIConfig struct {
	ConfigFile  string
	Document    string
	TimeoutSecs int
	Concurrency int
	RateLimit   int
	Format      string
	Output      string
	ExemptHosts []string
	Suggest     bool
	Progress    bool

	SuggestAlgorithm string
	NoColor     bool
	Verbose     bool
}

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Document:    consts.DefaultDocument,
		TimeoutSecs: int(consts.DefaultFetchTimeout.Seconds()),
		Concurrency: consts.DefaultConcurrency,
		RateLimit:   consts.DefaultRateLimit,
		Format:      "text",

		SuggestAlgorithm: consts.DefaultSuggestAlgorithm,
	}
}

// loadConfigFile reads the optional config file. A missing default file is
// not an error; a missing file named with --config is.
func loadConfigFile(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return v, nil
}

// applyConfigDefaults merges config file values into cfg when the user did
// not explicitly set the corresponding flag. Exempt hosts from both sources
// are combined.
func applyConfigDefaults(flags *pflag.FlagSet, v *viper.Viper, cfg *CLIConfig) {
	if v == nil {
		return
	}

	if v.IsSet("document") {
		cfg.Document = v.GetString("document")
	}

	if v.IsSet("timeout_secs") {
		applyIntDefault(flags, "timeout", v.GetInt("timeout_secs"), func(val int) {
			cfg.TimeoutSecs = val
		})
	}

	if v.IsSet("concurrency") {
		applyIntDefault(flags, "concurrency", v.GetInt("concurrency"), func(val int) {
			cfg.Concurrency = val
		})
	}

	if v.IsSet("rate_limit") {
		applyIntDefault(flags, "rate-limit", v.GetInt("rate_limit"), func(val int) {
			cfg.RateLimit = val
		})
	}

	if v.IsSet("format") {
		applyStringDefault(flags, "format", v.GetString("format"), func(val string) {
			cfg.Format = val
		})
	}

	if v.IsSet("suggest") {
		applyBoolDefault(flags, "suggest", v.GetBool("suggest"), func(val bool) {
			cfg.Suggest = val
		})
	}

	if v.IsSet("suggest_algorithm") {
		applyStringDefault(flags, "suggest-algorithm", v.GetString("suggest_algorithm"), func(val string) {
			cfg.SuggestAlgorithm = val
		})
	}

	if v.IsSet("exempt_hosts") {
		cfg.ExemptHosts = append(cfg.ExemptHosts, v.GetStringSlice("exempt_hosts")...)
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringDefault(flags *pflag.FlagSet, name, value string, setter func(string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}
