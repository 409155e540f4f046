package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	API       APIConfig       `yaml:"api" mapstructure:"api"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Campaign  CampaignConfig  `yaml:"campaign" mapstructure:"campaign"`
	SMTP      SMTPConfig      `yaml:"smtp" mapstructure:"smtp"`
	CRM       CRMConfig       `yaml:"crm" mapstructure:"crm"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// APIConfig points at the backend scoring and generation service.
type APIConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// DashboardConfig configures analytics presentation.
type DashboardConfig struct {
	TopN int `yaml:"top_n" mapstructure:"top_n"`
}

// CampaignConfig configures the outbound campaign workflow.
type CampaignConfig struct {
	Subject        string  `yaml:"subject" mapstructure:"subject"`
	SentWindowSecs int     `yaml:"sent_window_secs" mapstructure:"sent_window_secs"`
	MinSelectScore float64 `yaml:"min_select_score" mapstructure:"min_select_score"`
}

// SMTPConfig holds direct SMTP delivery credentials.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	From     string `yaml:"from" mapstructure:"from"`
}

// CRMConfig holds Salesforce JWT auth settings for lead sync.
type CRMConfig struct {
	Enabled      bool    `yaml:"enabled" mapstructure:"enabled"`
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	Username     string  `yaml:"username" mapstructure:"username"`
	KeyPath      string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL     string  `yaml:"login_url" mapstructure:"login_url"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields required for the given run mode. Modes map to
// top-level commands: "serve", "campaign", and "crm".
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
		if c.API.BaseURL == "" {
			missing = append(missing, "api.base_url is required")
		}
	case "campaign":
		if c.API.BaseURL == "" {
			missing = append(missing, "api.base_url is required")
		}
		if c.Campaign.SentWindowSecs <= 0 {
			missing = append(missing, "campaign.sent_window_secs must be > 0")
		}
		if c.Campaign.MinSelectScore < 0 || c.Campaign.MinSelectScore > 1 {
			missing = append(missing, "campaign.min_select_score must be between 0 and 1")
		}
	case "crm":
		if c.CRM.ClientID == "" {
			missing = append(missing, "crm.client_id is required")
		}
		if c.CRM.Username == "" {
			missing = append(missing, "crm.username is required")
		}
		if c.CRM.KeyPath == "" {
			missing = append(missing, "crm.key_path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Dashboard.TopN <= 0 {
		missing = append(missing, "dashboard.top_n must be > 0")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SALESDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout_secs", 60)
	v.SetDefault("server.port", 8080)
	v.SetDefault("dashboard.top_n", 10)
	v.SetDefault("campaign.subject", "Exclusive IT Solutions for Your Business")
	v.SetDefault("campaign.sent_window_secs", 5)
	v.SetDefault("campaign.min_select_score", 0.6)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("crm.login_url", "https://login.salesforce.com")
	v.SetDefault("crm.rate_limit_rps", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
