package common

import (
	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestDefaultClientConfig(t *testing.T) {
	config := DefaultClientConfig("ws://localhost:8080/ws")
	assert.Equal(t, 5, config.Retries)
	assert.Equal(t, 2*time.Second, config.RetryInterval())
	assert.Equal(t, time.Duration(0), config.HandshakeTimeout())
	assert.NoError(t, config.Validate())
	assert.Contains(t, config.String(), "ws://localhost:8080/ws")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ClientConfig)
	}{
		{"no endpoint", func(c *ClientConfig) { c.Endpoint = "" }},
		{"negative retries", func(c *ClientConfig) { c.Retries = -1 }},
		{"negative interval", func(c *ClientConfig) { c.RetryIntervalMillis = -1 }},
		{"invalid log level", func(c *ClientConfig) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultClientConfig("ws://localhost:8080/ws")
			tt.mutate(&config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for input, want := range tests {
		got, err := parseLogLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := parseLogLevel("verbose")
	assert.Error(t, err)
}
