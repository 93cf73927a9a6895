package config

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config is the runtime configuration read from the environment
type Config struct {
	TelegramToken         string        // TELEGRAM_BOT_TOKEN
	OwnerChatID           int64         // TELEGRAM_CHAT_ID (0: any chat)
	Source                string        // WORDMEMO_SOURCE (default: words.txt)
	DBDriver              string        // DB_DRIVER (default: sqlite3)
	DBDSN                 string        // DB_DSN (default: data/wordmemo.db)
	CheckInterval         time.Duration // CHECK_INTERVAL (default: 5m, 0 disables)
	ReminderInterval      time.Duration // REMINDER_INTERVAL (default: 1h, 0 disables)
	NotificationStartHour int           // NOTIFICATION_START_HOUR (default: 8)
	NotificationEndHour   int           // NOTIFICATION_END_HOUR (default: 22)
	ReverseOrder          bool          // REVERSE_ORDER (default: false)
	LogMode               string        // LOG_MODE (default: dev)

	// Warnings lists values that were ignored in favour of defaults
	Warnings []string
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		Source:                "words.txt",
		DBDriver:              "sqlite3",
		DBDSN:                 "data/wordmemo.db",
		CheckInterval:         5 * time.Minute,
		ReminderInterval:      time.Hour,
		NotificationStartHour: 8,
		NotificationEndHour:   22,
		LogMode:               "dev",
	}
}

// Load reads .env when present and then the environment
func Load() *Config {
	c := DefaultConfig()
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.warn("failed to read .env: %v", err)
	}
	c.FromEnv()
	return c
}

// FromEnv overrides c with the environment variables that are set
func (c *Config) FromEnv() {
	c.TelegramToken = getEnvOrDefault("TELEGRAM_BOT_TOKEN", c.TelegramToken)
	c.Source = getEnvOrDefault("WORDMEMO_SOURCE", c.Source)
	c.DBDriver = getEnvOrDefault("DB_DRIVER", c.DBDriver)
	c.DBDSN = getEnvOrDefault("DB_DSN", c.DBDSN)
	c.LogMode = getEnvOrDefault("LOG_MODE", c.LogMode)

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			c.warn("invalid TELEGRAM_CHAT_ID %q, accepting any chat", v)
		} else {
			c.OwnerChatID = id
		}
	}

	c.CheckInterval = c.getEnvDuration("CHECK_INTERVAL", c.CheckInterval)
	c.ReminderInterval = c.getEnvDuration("REMINDER_INTERVAL", c.ReminderInterval)
	c.NotificationStartHour = c.getEnvHour("NOTIFICATION_START_HOUR", c.NotificationStartHour)
	c.NotificationEndHour = c.getEnvHour("NOTIFICATION_END_HOUR", c.NotificationEndHour)
	c.ReverseOrder = c.getEnvBool("REVERSE_ORDER", c.ReverseOrder)
}

func (c *Config) warn(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s", "5m") and bare numbers of minutes
func (c *Config) getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Minute
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		c.warn("invalid %s %q, using %s", key, v, def)
		return def
	}
	return d
}

func (c *Config) getEnvHour(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 23 {
		c.warn("invalid %s %q, using %d", key, v, def)
		return def
	}
	return h
}

func (c *Config) getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		c.warn("invalid %s %q, using %t", key, v, def)
		return def
	}
}
