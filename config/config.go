package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"quoteflow/internal/catalog"
	"quoteflow/internal/model"
)

type Config struct {
	Quoteflow QuoteflowConfig  `yaml:"quoteflow"`
	Engine    EngineConfig     `yaml:"engine"`
	Providers []ProviderConfig `yaml:"providers"`
	Metrics   MetricsConfig    `yaml:"metrics"`
	Logging   LoggingConfig    `yaml:"logging"`
}

type QuoteflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Duration decodes YAML values like "30s" or "1h" via time.ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type EngineConfig struct {
	LiveTTL             Duration `yaml:"live_ttl"`
	HistoricalTTL       Duration `yaml:"historical_ttl"`
	DefaultLookbackDays int      `yaml:"default_lookback_days"`
	CacheSweepInterval  Duration `yaml:"cache_sweep_interval"`
}

// ProviderConfig is one catalog entry as declared in YAML. The API key is
// never written into the file; APIKeyEnv names the environment variable that
// holds it, and a provider whose variable is unset is disabled rather than
// crashing the engine.
type ProviderConfig struct {
	Name              string   `yaml:"name"`
	PriorityRank      int      `yaml:"priority_rank"`
	AssetClasses      []string `yaml:"asset_classes"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
	APIKeyEnv         string   `yaml:"api_key_env"`
	Enabled           *bool    `yaml:"enabled,omitempty"`
}

type MetricsConfig struct {
	CloudWatch    bool   `yaml:"cloudwatch"`
	Region        string `yaml:"region"`
	Namespace     string `yaml:"namespace"`
	DashboardName string `yaml:"dashboard_name"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

const defaultConfigPath = "config/config.yml"

func LoadConfig(path string) (*Config, error) {
	path = resolveEnvSpecificPath(path, defaultConfigPath, map[string]string{
		environmentProduction: "config/config.production.yml",
		environmentStaging:    "config/config.staging.yml",
	})

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Engine: EngineConfig{
			LiveTTL:             Duration(30 * time.Second),
			HistoricalTTL:       Duration(time.Hour),
			DefaultLookbackDays: 30,
			CacheSweepInterval:  Duration(5 * time.Minute),
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if v := os.Getenv("AWS_REGION"); v != "" {
		config.Metrics.Region = strings.TrimSpace(v)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Quoteflow.Name == "" {
		return fmt.Errorf("quoteflow.name is required")
	}

	if cfg.Quoteflow.Version == "" {
		return fmt.Errorf("quoteflow.version is required")
	}

	if cfg.Engine.LiveTTL <= 0 {
		return fmt.Errorf("engine.live_ttl must be greater than 0")
	}
	if cfg.Engine.HistoricalTTL <= 0 {
		return fmt.Errorf("engine.historical_ttl must be greater than 0")
	}
	if cfg.Engine.DefaultLookbackDays <= 0 {
		return fmt.Errorf("engine.default_lookback_days must be greater than 0")
	}

	if len(cfg.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	for _, p := range cfg.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers entries require a name")
		}
		if p.RequestsPerMinute <= 0 {
			return fmt.Errorf("providers.%s.requests_per_minute must be greater than 0", p.Name)
		}
		if len(p.AssetClasses) == 0 {
			return fmt.Errorf("providers.%s.asset_classes is required", p.Name)
		}
		for _, c := range p.AssetClasses {
			if _, ok := model.ParseAssetClass(c); !ok {
				return fmt.Errorf("providers.%s: unknown asset class %q", p.Name, c)
			}
		}
	}

	return nil
}

// APIKey resolves the provider's key from the environment. An empty
// APIKeyEnv means the provider needs no key.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(p.APIKeyEnv))
}

// CatalogEntries converts the provider list into catalog descriptors. A
// provider with an unset key variable or enabled: false comes out inactive;
// disabled names are returned so the caller can log them.
func (cfg *Config) CatalogEntries() (entries []catalog.Descriptor, disabled []string) {
	for _, p := range cfg.Providers {
		active := true
		if p.Enabled != nil && !*p.Enabled {
			active = false
		}
		if p.APIKeyEnv != "" && p.APIKey() == "" {
			active = false
		}
		if !active {
			disabled = append(disabled, p.Name)
		}

		classes := make([]model.AssetClass, 0, len(p.AssetClasses))
		for _, c := range p.AssetClasses {
			class, _ := model.ParseAssetClass(c)
			classes = append(classes, class)
		}

		entries = append(entries, catalog.Descriptor{
			Name:                  p.Name,
			PriorityRank:          p.PriorityRank,
			SupportedAssetClasses: classes,
			RequestsPerMinute:     p.RequestsPerMinute,
			Active:                active,
		})
	}
	return entries, disabled
}

// BudgetLimits returns provider name -> requests per minute for the tracker.
func (cfg *Config) BudgetLimits() map[string]int {
	limits := make(map[string]int, len(cfg.Providers))
	for _, p := range cfg.Providers {
		limits[p.Name] = p.RequestsPerMinute
	}
	return limits
}
