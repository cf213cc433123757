package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	// DefaultRetries is the number of reconnect attempts after an unclean close
	DefaultRetries = 5
	// DefaultRetryIntervalMillis is the fixed delay between reconnect attempts
	DefaultRetryIntervalMillis = 2000
	// DefaultLogLevel is the log level used when none is configured
	DefaultLogLevel = "info"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all parameters needed to connect a client to a relay.
type ClientConfig struct {
	// Endpoint is the relay address, e.g. ws://localhost:8080/ws
	Endpoint string

	// Reconnect policy
	Retries             int
	RetryIntervalMillis int

	// Transport settings (0 means no timeout)
	HandshakeTimeoutSecond int

	// Logging configuration
	LogLevel string
}

// DefaultClientConfig returns a configuration with the default reconnect policy
func DefaultClientConfig(endpoint string) ClientConfig {
	return ClientConfig{
		Endpoint:            endpoint,
		Retries:             DefaultRetries,
		RetryIntervalMillis: DefaultRetryIntervalMillis,
		LogLevel:            DefaultLogLevel,
	}
}

// RetryInterval returns the reconnect delay as a duration
func (c *ClientConfig) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMillis) * time.Millisecond
}

// HandshakeTimeout returns the transport handshake timeout as a duration
func (c *ClientConfig) HandshakeTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeoutSecond) * time.Second
}

// Validate checks the configuration for obviously invalid values
func (c *ClientConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("no endpoint provided")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if c.RetryIntervalMillis < 0 {
		return fmt.Errorf("retry interval must not be negative, got %d", c.RetryIntervalMillis)
	}
	if c.LogLevel != "" {
		if _, err := parseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint)
	addField("Handshake Timeout", fmt.Sprintf("%d sec", c.HandshakeTimeoutSecond))

	addSection("Reconnect")
	addField("Retries", strconv.Itoa(c.Retries))
	addField("Retry Interval", fmt.Sprintf("%d ms", c.RetryIntervalMillis))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
