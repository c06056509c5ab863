// Package config loads tilemark settings from flags, environment, config file
// and .env through viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/kiesman99/tilemark/internal/telegram"
	"github.com/kiesman99/tilemark/pkg/tile"
)

// EnvPrefix is prepended to every environment variable, e.g. TILEMARK_SERVER_PORT
const EnvPrefix = "TILEMARK"

// LegacyTokenEnv is the variable the original bot deployment reads its token from
const LegacyTokenEnv = "TELEGRAM_API_KEY"

var (
	tokenPattern  = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)
	secretPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)
)

// Config is the complete tilemark configuration
type Config struct {
	Style    StyleConfig    `mapstructure:"style"`
	Server   ServerConfig   `mapstructure:"server"`
	Source   SourceConfig   `mapstructure:"source"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Log      LogConfig      `mapstructure:"log"`
	Workers  int            `mapstructure:"workers"`
}

type StyleConfig struct {
	Font      string  `mapstructure:"font"`
	Size      float64 `mapstructure:"size"`
	Color     string  `mapstructure:"color"`
	Opacity   float64 `mapstructure:"opacity"`
	Spacing   int     `mapstructure:"spacing"`
	Angle     float64 `mapstructure:"angle"`
	RowHeight float64 `mapstructure:"row_height"`
}

type ServerConfig struct {
	Bind         string        `mapstructure:"bind"`
	Port         int           `mapstructure:"port"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	Burst        int           `mapstructure:"burst"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

type SourceConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	MaxBytes  int64         `mapstructure:"max_bytes"`
	// MaxFieldPixels bounds width²+height² of a decoded source
	MaxFieldPixels int64 `mapstructure:"max_field_pixels"`
}

type TelegramConfig struct {
	Token          string `mapstructure:"token"`
	APIURL         string `mapstructure:"api_url"`
	WebhookURL     string `mapstructure:"webhook_url"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	DeleteOriginal bool   `mapstructure:"delete_original"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every key with its default so that environment
// variables are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("style.font", "")
	v.SetDefault("style.size", tile.DefaultSize)
	v.SetDefault("style.color", tile.DefaultColor)
	v.SetDefault("style.opacity", tile.DefaultOpacity)
	v.SetDefault("style.spacing", tile.DefaultSpacing)
	v.SetDefault("style.angle", tile.DefaultAngle)
	v.SetDefault("style.row_height", tile.DefaultRowHeight)

	v.SetDefault("server.bind", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", 0.0)
	v.SetDefault("server.burst", 4)
	v.SetDefault("server.max_body_bytes", 20<<20)

	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.user_agent", "tilemark/1.0.0")
	v.SetDefault("source.max_bytes", 20<<20)
	v.SetDefault("source.max_field_pixels", 100_000_000)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.api_url", telegram.DefaultAPIURL)
	v.SetDefault("telegram.webhook_url", "")
	v.SetDefault("telegram.webhook_secret", "")
	v.SetDefault("telegram.delete_original", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("workers", runtime.NumCPU())
}

// BindEnv maps TILEMARK_* variables onto keys and accepts TELEGRAM_API_KEY
// for telegram.token.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v.BindEnv("telegram.token", EnvPrefix+"_TELEGRAM_TOKEN", LegacyTokenEnv)
}

// LoadDotEnv loads variables from the given .env files without overriding the
// real environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := gotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the configuration out of v, applying defaults and validating.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.TileStyle(); err != nil {
		errs = append(errs, fmt.Errorf("style: %w", err))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", c.Server.Port))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("server.timeout: must be positive"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit: must not be negative"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes: must be positive"))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("source.timeout: must be positive"))
	}
	if c.Source.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("source.max_bytes: must be positive"))
	}
	if c.Source.MaxFieldPixels <= 0 {
		errs = append(errs, fmt.Errorf("source.max_field_pixels: must be positive"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers: must be at least 1"))
	}

	t := c.Telegram
	if t.Token != "" && !tokenPattern.MatchString(t.Token) {
		errs = append(errs, fmt.Errorf("telegram.token: malformed bot token"))
	}
	if err := checkURL(t.APIURL, "http", "https"); err != nil {
		errs = append(errs, fmt.Errorf("telegram.api_url: %w", err))
	}
	if t.WebhookURL != "" {
		if t.Token == "" {
			errs = append(errs, fmt.Errorf("telegram.webhook_url: requires telegram.token"))
		}
		if err := checkURL(t.WebhookURL, "https"); err != nil {
			errs = append(errs, fmt.Errorf("telegram.webhook_url: %w", err))
		}
	}
	if t.WebhookSecret != "" && !secretPattern.MatchString(t.WebhookSecret) {
		errs = append(errs, fmt.Errorf("telegram.webhook_secret: only A-Z, a-z, 0-9, _ and - allowed, up to 256 characters"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: %q is not text or json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// TileStyle converts the style section into a validated tile.Style.
func (c *Config) TileStyle() (tile.Style, error) {
	col, err := tile.ParseColor(c.Style.Color)
	if err != nil {
		return tile.Style{}, err
	}
	s := tile.Style{
		FontPath:  c.Style.Font,
		Size:      c.Style.Size,
		Color:     col,
		Opacity:   c.Style.Opacity,
		Spacing:   c.Style.Spacing,
		Angle:     c.Style.Angle,
		RowHeight: c.Style.RowHeight,
	}
	return s, s.Validate()
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != ""
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q must be an absolute %s URL", raw, strings.Join(schemes, " or "))
}
