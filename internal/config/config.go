// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for the contact relay.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults used when neither the YAML file nor the environment sets a value.
const (
	DefaultFromEmail = "noreply@yourdomain.com"
	DefaultToEmail   = "contact@yourdomain.com"
	DefaultSubject   = "New Contact Form Message"

	defaultListen       = ":8080"
	defaultSendTimeout  = 15 * time.Second
	defaultMaxBodyBytes = 64 << 10
	defaultSMTPPort     = 587
)

// Provider names accepted in PROVIDER.
const (
	ProviderResend = "resend"
	ProviderSES    = "ses"
	ProviderGraph  = "graph"
	ProviderSMTP   = "smtp"
	ProviderStdout = "stdout"
)

// Config holds the complete application configuration. It is built once at
// startup and must not be mutated afterwards.
type Config struct {
	Provider string        `yaml:"provider"`
	HTTP     HTTPConfig    `yaml:"http"`
	Mail     MailConfig    `yaml:"mail"`
	Resend   ResendConfig  `yaml:"resend"`
	SES      SESConfig     `yaml:"ses"`
	Graph    GraphConfig   `yaml:"graph"`
	SMTP     SMTPConfig    `yaml:"smtp"`
	TLS      TLSConfig     `yaml:"tls"`
	Logging  LoggingConfig `yaml:"logging"`
}

// HTTPConfig holds the HTTP listener and request handling settings.
type HTTPConfig struct {
	Listen string `yaml:"listen"`

	// AllowedOrigins are Origin/Referer prefixes. Empty means unrestricted.
	AllowedOrigins []string `yaml:"allowed_origins"`

	SendTimeout        time.Duration `yaml:"send_timeout"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes"`
	ExposeErrorDetails bool          `yaml:"expose_error_details"`
	CORSEnabled        bool          `yaml:"cors_enabled"`
}

// MailConfig holds the server-side envelope of every outbound message.
type MailConfig struct {
	From    string   `yaml:"from"`
	To      []string `yaml:"to"`
	Subject string   `yaml:"subject"`
}

// ResendConfig holds Resend API configuration.
type ResendConfig struct {
	APIKey string `yaml:"api_key"`
}

// SESConfig holds AWS SES configuration.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// GraphConfig holds Microsoft Graph API configuration.
type GraphConfig struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// SMTPConfig holds SMTP relay configuration.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSL      bool   `yaml:"ssl"`
}

// TLSConfig controls the optional HTTPS listener.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// into the process environment. Variables already set are not overridden.
// A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	if err := cfg.applyEnvVars(); err != nil {
		return nil, err
	}
	cfg.resolveProvider()
	return cfg, cfg.validate()
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	if err := cfg.applyEnvVars(); err != nil {
		return nil, err
	}
	cfg.resolveProvider()
	return cfg, cfg.validate()
}

// Ready reports whether the selected provider has the credentials it needs.
func (c *Config) Ready() bool {
	switch c.Provider {
	case ProviderResend:
		return c.Resend.APIKey != ""
	case ProviderSES:
		return c.SESConfigured()
	case ProviderGraph:
		return c.GraphConfigured()
	case ProviderSMTP:
		return c.SMTP.Host != ""
	case ProviderStdout:
		return true
	default:
		return false
	}
}

// MissingSettings names the environment variables the selected provider
// still needs. Empty when Ready is true.
func (c *Config) MissingSettings() []string {
	var missing []string
	add := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}

	switch c.Provider {
	case ProviderResend:
		add("RESEND_API_KEY", c.Resend.APIKey)
	case ProviderSES:
		add("SES_REGION", c.SES.Region)
	case ProviderGraph:
		add("GRAPH_TENANT_ID", c.Graph.TenantID)
		add("GRAPH_CLIENT_ID", c.Graph.ClientID)
		add("GRAPH_CLIENT_SECRET", c.Graph.ClientSecret)
	case ProviderSMTP:
		add("SMTP_HOST", c.SMTP.Host)
	}
	return missing
}

// SESConfigured returns true if an SES region is set. Credentials may come
// from the default AWS chain.
func (c *Config) SESConfigured() bool {
	return c.SES.Region != ""
}

// GraphConfigured returns true if all three Graph API credentials are set.
func (c *Config) GraphConfigured() bool {
	return c.Graph.TenantID != "" &&
		c.Graph.ClientID != "" &&
		c.Graph.ClientSecret != ""
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.HTTP.Listen = defaultListen
	c.HTTP.SendTimeout = defaultSendTimeout
	c.HTTP.MaxBodyBytes = defaultMaxBodyBytes
	c.HTTP.ExposeErrorDetails = true
	c.HTTP.CORSEnabled = true
	c.Mail.From = DefaultFromEmail
	c.Mail.To = []string{DefaultToEmail}
	c.Mail.Subject = DefaultSubject
	c.SMTP.Port = defaultSMTPPort
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() error {
	if v := os.Getenv("PROVIDER"); v != "" {
		c.Provider = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv("PORT"); v != "" {
		c.HTTP.Listen = ":" + v
	}
	if v := os.Getenv("HTTP_LISTEN"); v != "" {
		c.HTTP.Listen = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.HTTP.AllowedOrigins = SplitList(v)
	}
	if v := os.Getenv("SEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SEND_TIMEOUT %q: %w", v, err)
		}
		c.HTTP.SendTimeout = d
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.HTTP.MaxBodyBytes = size
		}
	}
	c.HTTP.ExposeErrorDetails = envBool("EXPOSE_ERROR_DETAILS", c.HTTP.ExposeErrorDetails)
	c.HTTP.CORSEnabled = envBool("CORS_ENABLED", c.HTTP.CORSEnabled)

	if v := os.Getenv("FROM_EMAIL"); v != "" {
		c.Mail.From = v
	}
	if v := os.Getenv("TO_EMAIL"); v != "" {
		c.Mail.To = SplitList(v)
	}
	if v := os.Getenv("EMAIL_SUBJECT"); v != "" {
		c.Mail.Subject = v
	}

	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		c.Resend.APIKey = v
	}

	if v := os.Getenv("SES_REGION"); v != "" {
		c.SES.Region = v
	}
	if v := os.Getenv("SES_ACCESS_KEY_ID"); v != "" {
		c.SES.AccessKeyID = v
	}
	if v := os.Getenv("SES_SECRET_ACCESS_KEY"); v != "" {
		c.SES.SecretAccessKey = v
	}

	if v := os.Getenv("GRAPH_TENANT_ID"); v != "" {
		c.Graph.TenantID = v
	}
	if v := os.Getenv("GRAPH_CLIENT_ID"); v != "" {
		c.Graph.ClientID = v
	}
	if v := os.Getenv("GRAPH_CLIENT_SECRET"); v != "" {
		c.Graph.ClientSecret = v
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	c.SMTP.SSL = envBool("SMTP_SSL", c.SMTP.SSL)

	c.TLS.Enabled = envBool("TLS_ENABLED", c.TLS.Enabled)
	if v := os.Getenv("TLS_CERT_FILE"); v != "" {
		c.TLS.CertFile = v
	}
	if v := os.Getenv("TLS_KEY_FILE"); v != "" {
		c.TLS.KeyFile = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	return nil
}

// resolveProvider picks a provider when none was named: Resend when its key
// is set, then Graph, then SES, and Resend (not ready) otherwise.
func (c *Config) resolveProvider() {
	if c.Provider != "" {
		return
	}
	switch {
	case c.Resend.APIKey != "":
		c.Provider = ProviderResend
	case c.GraphConfigured():
		c.Provider = ProviderGraph
	case c.SESConfigured():
		c.Provider = ProviderSES
	default:
		c.Provider = ProviderResend
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderResend, ProviderSES, ProviderGraph, ProviderSMTP, ProviderStdout:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.HTTP.SendTimeout <= 0 {
		return fmt.Errorf("send timeout must be positive, got %s", c.HTTP.SendTimeout)
	}
	if len(c.Mail.To) == 0 {
		return errors.New("at least one recipient address is required")
	}
	return nil
}

// SplitList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envBool reads a boolean environment variable. Only "true"/"false"
// (case-insensitive) and "1"/"0" are recognised; anything else keeps def.
func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return def
	}
}
