package app

import (
	"strings"
	"time"

	"github.com/yungbote/journey-backend/internal/platform/envutil"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type Config struct {
	Port string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AdminEmails     []string

	// Location decides what a calendar day is for streaks and the calendar.
	Location      *time.Location
	TemplatesPath string

	RedisAddr    string
	RedisChannel string

	AllowedOrigins []string

	TokenJanitorInterval time.Duration

	Environment string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	tzName := envutil.String("JOURNEY_TIMEZONE", "UTC", log)
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Warn("invalid JOURNEY_TIMEZONE, using UTC", "value", tzName, "error", err)
		loc = time.UTC
	}
	secret := envutil.String("JWT_SECRET_KEY", "defaultsecret", log)
	if secret == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	return Config{
		Port:                 envutil.String("PORT", "8080", log),
		JWTSecretKey:         secret,
		AccessTokenTTL:       envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour, log),
		RefreshTokenTTL:      envutil.Seconds("REFRESH_TOKEN_TTL", 24*time.Hour, log),
		AdminEmails:          envutil.List("ADMIN_EMAILS", nil, log),
		Location:             loc,
		TemplatesPath:        envutil.String("JOURNEY_TEMPLATES_YAML", "", log),
		RedisAddr:            strings.TrimSpace(envutil.String("REDIS_ADDR", "", log)),
		RedisChannel:         envutil.String("REDIS_CHANNEL", "journey:sse", log),
		AllowedOrigins:       envutil.List("CORS_ALLOWED_ORIGINS", nil, log),
		TokenJanitorInterval: envutil.Seconds("TOKEN_JANITOR_INTERVAL", 10*time.Minute, log),
		Environment:          envutil.String("APP_ENV", "development", log),
		Version:              envutil.String("APP_VERSION", "dev", log),
	}
}
