package util

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/xPeer/rpc/client"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/ValentinKolb/xPeer/rpc/serializer"
	"github.com/ValentinKolb/xPeer/rpc/transport/ws"
	"github.com/VictoriaMetrics/metrics"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the relay connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "endpoint"
	cmd.PersistentFlags().String(key, "ws://localhost:8080/ws", WrapString("The websocket address of the xPeer relay"))

	key = "retries"
	cmd.PersistentFlags().Int(key, common.DefaultRetries, WrapString("How many times to reconnect after the connection died"))

	key = "retry-interval"
	cmd.PersistentFlags().Int(key, common.DefaultRetryIntervalMillis, WrapString("The delay between reconnect attempts (in milliseconds)"))

	key = "handshake-timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout of the websocket handshake (in seconds, 0 for no timeout)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, common.DefaultLogLevel, WrapString("The log level (debug, info, warning, error)"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout of a single operation against the relay (in seconds, 0 for no timeout)"))

	key = "metrics"
	cmd.PersistentFlags().Bool(key, false, WrapString("Print the client metrics in prometheus format on exit"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("xpeer")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		Endpoint:               viper.GetString("endpoint"),
		Retries:                viper.GetInt("retries"),
		RetryIntervalMillis:    viper.GetInt("retry-interval"),
		HandshakeTimeoutSecond: viper.GetInt("handshake-timeout"),
		LogLevel:               viper.GetString("log-level"),
	}
}

// OperationContext returns the context for a single operation against the relay
func OperationContext() (context.Context, context.CancelFunc) {
	timeout := viper.GetInt("timeout")
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
}

// InterruptContext returns a context that is cancelled on SIGINT or SIGTERM
func InterruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Connect creates a client for the configured relay and waits until it has an identity
func Connect() (*client.Client, error) {
	config := GetClientConfig()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := common.InitLoggers(*config); err != nil {
		return nil, err
	}

	c := client.NewClient(*config, ws.NewWebSocketClientTransport(*config))

	ctx, cancel := OperationContext()
	defer cancel()
	if _, err := c.AwaitIdentity(ctx); err != nil {
		_ = c.Disconnect()
		return nil, fmt.Errorf("no identity from %s: %w", config.Endpoint, err)
	}
	return c, nil
}

// Close disconnects the client and prints the metrics if requested
func Close(c *client.Client) {
	_ = c.Disconnect()
	if viper.GetBool("metrics") {
		fmt.Println()
		metrics.WritePrometheus(os.Stdout, false)
	}
}

// GetVirtualPeer acquires the peer with the given id and checks that it is a virtual peer
func GetVirtualPeer(c *client.Client, id string) (*client.VirtualPeer, error) {
	ctx, cancel := OperationContext()
	defer cancel()

	peer, err := c.GetPeer(ctx, id)
	if err != nil {
		return nil, err
	}
	if peer == nil {
		return nil, fmt.Errorf("peer %s is not available", id)
	}
	vp, ok := peer.(*client.VirtualPeer)
	if !ok {
		return nil, fmt.Errorf("peer %s is not a virtual peer", id)
	}
	return vp, nil
}

// ParseState decodes a state given on the command line
func ParseState(arg string) (common.State, error) {
	state, err := serializer.NewJSONSerializer().Deserialize(arg)
	if err != nil {
		return nil, fmt.Errorf("state must be a json object: %w", err)
	}
	return state, nil
}

// FormatState encodes a state for printing
func FormatState(state common.State) string {
	s, err := serializer.NewJSONSerializer().Serialize(state)
	if err != nil {
		return fmt.Sprintf("<invalid state: %v>", err)
	}
	return s
}
