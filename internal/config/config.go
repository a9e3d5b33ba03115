package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPAddr             string   `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL          string   `envconfig:"DATABASE_URL" required:"true"`
	CORSAllowedOrigins   []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	CORSAllowCredentials bool     `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	CookieSecure         bool     `envconfig:"COOKIE_SECURE" default:"false"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// AI settings are checked per request, not at startup.
	AIAPIKey   string `envconfig:"AI_API_KEY"`
	AIAPIURL   string `envconfig:"AI_API_URL"`
	AIAPIModel string `envconfig:"AI_API_MODEL"`

	ChatRatePerMin float64 `envconfig:"CHAT_RATE_PER_MIN" default:"20"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, fmt.Errorf("missing env: DATABASE_URL")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, fmt.Errorf("missing env: JWT_SECRET")
	}

	origins := cfg.CORSAllowedOrigins[:0]
	for _, o := range cfg.CORSAllowedOrigins {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	cfg.CORSAllowedOrigins = origins

	cfg.AIAPIURL = strings.TrimRight(strings.TrimSpace(cfg.AIAPIURL), "/")
	return cfg, nil
}
