package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Config centraliza la configuración del bot.
type Config struct {
	TelegramToken         string        `env:"TELEGRAM_BOT_TOKEN,required,notEmpty" validate:"required"`
	TelegramMode          string        `env:"TELEGRAM_MODE" envDefault:"polling" validate:"oneof=polling webhook"`
	TelegramWebhookURL    string        `env:"TELEGRAM_WEBHOOK_URL" validate:"required_if=TelegramMode webhook"`
	TelegramWebhookSecret string        `env:"TELEGRAM_WEBHOOK_SECRET"`
	TelegramPollTimeout   int           `env:"TELEGRAM_POLL_TIMEOUT" envDefault:"30" validate:"min=1,max=60"`
	HTTPPort              string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL           string        `env:"DATABASE_URL"`
	RedisAddr             string        `env:"REDIS_ADDR"`
	RedisPassword         string        `env:"REDIS_PASSWORD"`
	RedisDB               int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL            time.Duration `env:"SESSION_TTL" envDefault:"30m" validate:"gt=0"`
	SessionPruneSchedule  string        `env:"SESSION_PRUNE_SCHEDULE" envDefault:"*/10 * * * *"`
	SMTPHost              string        `env:"SMTP_HOST"`
	SMTPPort              int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser              string        `env:"SMTP_USER"`
	SMTPPass              string        `env:"SMTP_PASS"`
	SMTPFrom              string        `env:"SMTP_FROM" validate:"omitempty,email"`
	SMTPFromName          string        `env:"SMTP_FROM_NAME"`
	SMTPUseTLS            bool          `env:"SMTP_USE_TLS" envDefault:"false"`
	EmailLogCodes         bool          `env:"EMAIL_LOG_CODES" envDefault:"false"`
	CodeHashCost          int           `env:"CODE_HASH_COST" envDefault:"10" validate:"min=4,max=31"`
	WhoisTimeout          time.Duration `env:"WHOIS_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	ReminderSchedule      string        `env:"REMINDER_SCHEDULE" envDefault:"0 9 */3 * *" validate:"required"`
	ReminderConcurrency   int           `env:"REMINDER_CONCURRENCY" envDefault:"4" validate:"min=1"`
	ReminderRatePerSecond float64       `env:"REMINDER_RATE_PER_SECOND" envDefault:"20" validate:"gt=0"`
	DispatchWorkers       int           `env:"DISPATCH_WORKERS" envDefault:"8" validate:"min=1"`
	LogDevelopment        bool          `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

var validate = validator.New()

// LoadConfig carga la configuración desde variables de entorno y la valida.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa las reglas que env no cubre (dependencias entre campos, rangos).
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}
