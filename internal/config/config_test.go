package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "WORDMEMO_SOURCE", "DB_DRIVER", "DB_DSN",
	"CHECK_INTERVAL", "REMINDER_INTERVAL", "NOTIFICATION_START_HOUR", "NOTIFICATION_END_HOUR",
	"REVERSE_ORDER", "LOG_MODE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	c := DefaultConfig()
	c.FromEnv()

	assert.Equal(t, DefaultConfig(), c)
	assert.Empty(t, c.Warnings)
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")
	t.Setenv("WORDMEMO_SOURCE", "https://example.com/words.txt")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/wordmemo")
	t.Setenv("CHECK_INTERVAL", "0")
	t.Setenv("REMINDER_INTERVAL", "90s")
	t.Setenv("NOTIFICATION_START_HOUR", "7")
	t.Setenv("NOTIFICATION_END_HOUR", "21")
	t.Setenv("REVERSE_ORDER", "yes")
	t.Setenv("LOG_MODE", "prod")

	c := DefaultConfig()
	c.FromEnv()

	assert.Equal(t, "123:abc", c.TelegramToken)
	assert.Equal(t, int64(-1001), c.OwnerChatID)
	assert.Equal(t, "https://example.com/words.txt", c.Source)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "postgres://localhost/wordmemo", c.DBDSN)
	assert.Equal(t, time.Duration(0), c.CheckInterval)
	assert.Equal(t, 90*time.Second, c.ReminderInterval)
	assert.Equal(t, 7, c.NotificationStartHour)
	assert.Equal(t, 21, c.NotificationEndHour)
	assert.True(t, c.ReverseOrder)
	assert.Equal(t, "prod", c.LogMode)
	assert.Empty(t, c.Warnings)
}

func TestInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_CHAT_ID", "me")
	t.Setenv("CHECK_INTERVAL", "soon")
	t.Setenv("NOTIFICATION_START_HOUR", "24")
	t.Setenv("REVERSE_ORDER", "maybe")

	c := DefaultConfig()
	c.FromEnv()

	assert.Equal(t, int64(0), c.OwnerChatID)
	assert.Equal(t, 5*time.Minute, c.CheckInterval)
	assert.Equal(t, 8, c.NotificationStartHour)
	assert.False(t, c.ReverseOrder)
	assert.Len(t, c.Warnings, 4)
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("WORDMEMO_SOURCE")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WORDMEMO_SOURCE=lists/verbs.txt\n"), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	c := Load()

	assert.Equal(t, "lists/verbs.txt", c.Source)
	assert.Empty(t, c.Warnings)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	c := Load()

	assert.Empty(t, c.Warnings)
	assert.Equal(t, "words.txt", c.Source)
}
