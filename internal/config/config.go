package config

import (
	"fmt"
	"os"
	"time"
)

// Config is the top-level configuration for ZabReport.
type Config struct {
	Source     SourceConfig     `yaml:"source" mapstructure:"source"`
	Zabbix     ZabbixConfig     `yaml:"zabbix" mapstructure:"zabbix"`
	Prometheus PrometheusConfig `yaml:"prometheus" mapstructure:"prometheus"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Notify     NotifyConfig     `yaml:"notify" mapstructure:"notify"`
	Tenants    []TenantConfig   `yaml:"tenants" mapstructure:"tenants"`
}

type SourceConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // zabbix, prometheus, or static
	Static  string `yaml:"static" mapstructure:"static"`   // JSON fixture path for the static backend
}

type ZabbixConfig struct {
	URL      string        `yaml:"url" mapstructure:"url"`
	User     string        `yaml:"user" mapstructure:"user"`
	Password string        `yaml:"password" mapstructure:"password"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type PrometheusConfig struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Step    time.Duration `yaml:"step" mapstructure:"step"`
}

type StorageConfig struct {
	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	Region string `yaml:"region" mapstructure:"region"`
}

type ReportConfig struct {
	TopN       int         `yaml:"top_n" mapstructure:"top_n"`
	PeriodDays int         `yaml:"period_days" mapstructure:"period_days"`
	Bands      BandsConfig `yaml:"bands" mapstructure:"bands"`
}

type BandsConfig struct {
	Critical float64 `yaml:"critical" mapstructure:"critical"`
	Warning  float64 `yaml:"warning" mapstructure:"warning"`
}

type NotifyConfig struct {
	WebhookURL  string   `yaml:"webhook_url" mapstructure:"webhook_url"`
	ExpiryHours int      `yaml:"expiry_hours" mapstructure:"expiry_hours"`
	OnlyLatest  bool     `yaml:"only_latest" mapstructure:"only_latest"`
	Languages   []string `yaml:"languages" mapstructure:"languages"`
}

// TenantConfig describes one monitored account. EnvPrefix selects the
// environment variables holding that tenant's Zabbix credentials, e.g.
// prefix "ACME" reads ACME_ZABBIX_URL, ACME_ZABBIX_USER, ACME_ZABBIX_PASSWORD.
type TenantConfig struct {
	Name      string `yaml:"name" mapstructure:"name"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	EnvPrefix string `yaml:"env_prefix" mapstructure:"env_prefix"`
}

// ZabbixFor resolves the Zabbix connection for a tenant, falling back to
// the global zabbix section for fields its environment does not override.
func (c *Config) ZabbixFor(t TenantConfig) ZabbixConfig {
	z := c.Zabbix
	if t.EnvPrefix == "" {
		return z
	}
	if v := os.Getenv(t.EnvPrefix + "_ZABBIX_URL"); v != "" {
		z.URL = v
	}
	if v := os.Getenv(t.EnvPrefix + "_ZABBIX_USER"); v != "" {
		z.User = v
	}
	if v := os.Getenv(t.EnvPrefix + "_ZABBIX_PASSWORD"); v != "" {
		z.Password = v
	}
	return z
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Backend: "zabbix",
		},
		Zabbix: ZabbixConfig{
			Timeout: 30 * time.Second,
		},
		Prometheus: PrometheusConfig{
			Timeout: 60 * time.Second,
			Step:    5 * time.Minute,
		},
		Storage: StorageConfig{
			Region: detectRegion(),
		},
		Report: ReportConfig{
			TopN:       5,
			PeriodDays: 30,
			Bands: BandsConfig{
				Critical: 80,
				Warning:  60,
			},
		},
		Notify: NotifyConfig{
			ExpiryHours: 24,
			OnlyLatest:  true,
			Languages:   []string{"es", "en"},
		},
	}
}

// Validate checks the config for consistency.
func (c *Config) Validate() error {
	validBackends := map[string]bool{"zabbix": true, "prometheus": true, "static": true}
	if !validBackends[c.Source.Backend] {
		return fmt.Errorf("source backend must be zabbix, prometheus, or static, got %q", c.Source.Backend)
	}
	if c.Source.Backend == "static" && c.Source.Static == "" {
		return fmt.Errorf("static backend requires a fixture path")
	}
	if c.Report.PeriodDays <= 0 {
		return fmt.Errorf("period_days must be positive, got %d", c.Report.PeriodDays)
	}
	if c.Report.Bands.Warning >= c.Report.Bands.Critical {
		return fmt.Errorf("warning band %v must be below critical band %v",
			c.Report.Bands.Warning, c.Report.Bands.Critical)
	}
	if c.Notify.ExpiryHours <= 0 {
		return fmt.Errorf("expiry_hours must be positive, got %d", c.Notify.ExpiryHours)
	}
	for _, lang := range c.Notify.Languages {
		if lang != "es" && lang != "en" {
			return fmt.Errorf("notification language must be es or en, got %q", lang)
		}
	}
	seen := map[string]bool{}
	for _, t := range c.Tenants {
		if t.Name == "" {
			return fmt.Errorf("tenant name must not be empty")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate tenant %q", t.Name)
		}
		seen[t.Name] = true
	}
	if c.Report.TopN <= 0 {
		c.Report.TopN = 5
	}
	return nil
}

// detectRegion checks environment variables for the AWS region.
func detectRegion() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	if r := os.Getenv("AWS_DEFAULT_REGION"); r != "" {
		return r
	}
	return "us-east-1"
}
