package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/billgen/cfdi-bill-generator/dto"
)

// DefaultCFDIUse is the "Uso de CFDI" captured on every commission invoice.
const DefaultCFDIUse = "G03 Gastos en general"

// InsurerProfile carries the receiver data the portal needs for one insurer.
type InsurerProfile struct {
	RFC              string `mapstructure:"rfc" yaml:"rfc"`
	Name             string `mapstructure:"name" yaml:"name"`
	AgentNumber      string `mapstructure:"agent_number" yaml:"agent_number"`
	PaymentCondition string `mapstructure:"payment_condition" yaml:"payment_condition"`
}

// ReceiverLabel returns the receiver as the portal lists it: "<RFC> <NAME>".
func (p InsurerProfile) ReceiverLabel() string {
	return strings.TrimSpace(p.RFC + " " + p.Name)
}

type Config struct {
	ServerPort         string                    `mapstructure:"server_port"`
	TessdataPrefix     string                    `mapstructure:"tessdata_prefix"`
	MaxFileSize        int64                     `mapstructure:"max_file_size"`
	MaxStatementPages  int                       `mapstructure:"max_statement_pages"`
	OCRFallback        bool                      `mapstructure:"ocr_fallback"`
	ReconcileTolerance string                    `mapstructure:"reconcile_tolerance"`
	LogLevel           string                    `mapstructure:"log_level"`
	LogFormat          string                    `mapstructure:"log_format"`
	CFDIUse            string                    `mapstructure:"cfdi_use"`
	Insurers           map[string]InsurerProfile `mapstructure:"insurers"`

	tolerance decimal.Decimal
}

// DefaultInsurers returns the receiver data of the three insurers.
func DefaultInsurers() map[string]InsurerProfile {
	return map[string]InsurerProfile{
		dto.InsurerAxa.ID(): {
			RFC:              "ASE931116231",
			Name:             "AXA SEGUROS SA DE CV",
			AgentNumber:      "124109",
			PaymentCondition: "En una sola exhibición",
		},
		dto.InsurerQualitas.ID(): {
			RFC:              "QCS931209G49",
			Name:             "QUALITAS COMPAÑIA DE SEGUROS SA DE CV",
			AgentNumber:      "05886",
			PaymentCondition: "En una sola exhibición",
		},
		dto.InsurerPotosi.ID(): {
			RFC:              "SPO830427DQ1",
			Name:             "SEGUROS EL POTOSI, S.A.",
			PaymentCondition: "Al contado",
		},
	}
}

// LoadConfig reads configuration from defaults, an optional config file and
// BILLGEN_* environment variables, in increasing order of precedence.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server_port", "8080")
	v.SetDefault("tessdata_prefix", "/usr/share/tesseract-ocr/5/tessdata/")
	v.SetDefault("max_file_size", 10*1024*1024) // 10 MB
	v.SetDefault("max_statement_pages", 3)
	v.SetDefault("ocr_fallback", false)
	v.SetDefault("reconcile_tolerance", "0.05")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("cfdi_use", DefaultCFDIUse)

	v.SetEnvPrefix("BILLGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.billgen")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Profiles from the file override the built-in ones field by field.
	profiles := DefaultInsurers()
	for id, p := range cfg.Insurers {
		base := profiles[id]
		if p.RFC != "" {
			base.RFC = p.RFC
		}
		if p.Name != "" {
			base.Name = p.Name
		}
		if p.AgentNumber != "" {
			base.AgentNumber = p.AgentNumber
		}
		if p.PaymentCondition != "" {
			base.PaymentCondition = p.PaymentCondition
		}
		profiles[id] = base
	}
	cfg.Insurers = profiles

	tolerance, err := decimal.NewFromString(cfg.ReconcileTolerance)
	if err != nil || tolerance.IsNegative() {
		return nil, fmt.Errorf("invalid reconcile_tolerance %q", cfg.ReconcileTolerance)
	}
	cfg.tolerance = tolerance

	if cfg.MaxStatementPages < 1 {
		return nil, fmt.Errorf("max_statement_pages must be at least 1, got %d", cfg.MaxStatementPages)
	}

	return &cfg, nil
}

// Tolerance returns the accepted difference between the expected and the
// portal grand total.
func (c *Config) Tolerance() decimal.Decimal {
	return c.tolerance
}

// Profile returns the receiver data for an insurer.
func (c *Config) Profile(insurer dto.Insurer) (InsurerProfile, error) {
	p, ok := c.Insurers[insurer.ID()]
	if !ok {
		return InsurerProfile{}, fmt.Errorf("%w: no profile for %s", dto.ErrUnknownInsurer, insurer)
	}
	return p, nil
}
