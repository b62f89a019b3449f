package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ACCOUNT_COUNT", "14")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Run.AccountCount)
	assert.Equal(t, 200, cfg.Run.QuotaPerAccount)
	assert.Equal(t, 1, cfg.Run.AccountConcurrency)
	assert.Equal(t, DefaultEndpoint, cfg.Notifier.Endpoint)
	assert.Equal(t, "URL_UPDATED", cfg.Notifier.NotificationType)
	assert.Equal(t, 3, cfg.Notifier.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Notifier.RetryDelay)
	assert.True(t, cfg.Notifier.InsecureSkipVerify)
	assert.Equal(t, "account%d.json", cfg.Credentials.Pattern)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ACCOUNT_COUNT", "3")
	t.Setenv("URLS_PER_ACCOUNT", "2")
	t.Setenv("RETRY_DELAY", "10ms")
	t.Setenv("INSECURE_SKIP_VERIFY", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_EVENTS_TOPIC", "indexing-events")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Run.QuotaPerAccount)
	assert.Equal(t, 10*time.Millisecond, cfg.Notifier.RetryDelay)
	assert.False(t, cfg.Notifier.InsecureSkipVerify)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
}

func TestFromEnvAccountCountRequired(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"missing", ""},
		{"not a number", "fifteen"},
		{"zero", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ACCOUNT_COUNT", tt.value)
			_, err := FromEnv()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, "ACCOUNT_COUNT", cfgErr.Field)
		})
	}
}

func TestValidateRejectsBadPattern(t *testing.T) {
	t.Setenv("ACCOUNT_COUNT", "1")
	t.Setenv("CREDENTIALS_PATTERN", "account.json")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CREDENTIALS_PATTERN")
}
