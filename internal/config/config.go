// Package config загружает конфигурацию движка из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"engine"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"study_engine"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Rewards ---
	// Порог стрика, с которого начисляется стрик-бонус к опыту
	RewardStreakThreshold int `envconfig:"REWARD_STREAK_THRESHOLD" default:"5"`
	// Максимальный стрик-бонус к опыту
	RewardStreakCap int `envconfig:"REWARD_STREAK_CAP" default:"25"`

	// --- Scheduler ---
	// Верхняя граница интервала повторения в часах (1 год).
	// Без неё экспоненциальный рост interval*ease уводит даты в бесконечность.
	SRSMaxIntervalHours int `envconfig:"SRS_MAX_INTERVAL_HOURS" default:"8760"`

	// --- Session builder ---
	// Оценка времени на один вопрос в минутах
	SessionMinutesPerQuestion float64 `envconfig:"SESSION_MINUTES_PER_QUESTION" default:"1.5"`

	// --- Jobs ---
	// Час начала и конца окна напоминаний (локальное время приложения)
	ReminderStartHour int `envconfig:"REMINDER_START_HOUR" default:"8"`
	ReminderEndHour   int `envconfig:"REMINDER_END_HOUR" default:"22"`

	// --- Rate Limiting (защита пайплайна от шквала событий одного пользователя) ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Validate проверяет согласованность настроек до старта приложения.
func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.SRSMaxIntervalHours <= 0 {
		return fmt.Errorf("SRS_MAX_INTERVAL_HOURS должен быть > 0")
	}
	if c.SessionMinutesPerQuestion <= 0 {
		return fmt.Errorf("SESSION_MINUTES_PER_QUESTION должен быть > 0")
	}
	if c.ReminderStartHour < 0 || c.ReminderStartHour > 23 ||
		c.ReminderEndHour < 0 || c.ReminderEndHour > 23 {
		return fmt.Errorf("часы напоминаний должны быть в диапазоне 0-23")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
