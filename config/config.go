// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the root-level settings struct. Every field has a baked-in
// default, can be overridden by a YAML settings file passed with
// --settings, and (where a flag is bound) by the command line
type Config struct {
	// MAF below which (or above whose complement) a test is skipped
	MinMaf float64 `mapstructure:"min-maf"`

	// phenotype value marking a sample as unphenotyped
	MissingPhenotype string `mapstructure:"missing-phenotype"`

	// minimum reference allele length for a non-SNP variant to count
	// as an STR when SNP/STR inference is enabled
	MinSTRLength int `mapstructure:"min-str-length"`

	// iteration cap for the logistic regression optimizer
	MaxFitIterations int `mapstructure:"max-fit-iterations"`

	// convergence tolerance for the logistic regression optimizer
	FitTolerance float64 `mapstructure:"fit-tolerance"`
}

// New returns a Config populated from Viper: defaults, then the
// settings file named by the "settings" key (if any), then bound flags
func New() *Config {
	viper.SetDefault("min-maf", 0.05)
	viper.SetDefault("missing-phenotype", "-9")
	viper.SetDefault("min-str-length", 8)
	viper.SetDefault("max-fit-iterations", 1000)
	viper.SetDefault("fit-tolerance", 1e-8)

	if settings := viper.GetString("settings"); settings != "" {
		viper.SetConfigFile(settings)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatalf("failed to read settings file %s: %v", settings, err)
		}
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		log.Fatalf("unable to decode settings into struct: %v", err)
	}

	return &c
}
