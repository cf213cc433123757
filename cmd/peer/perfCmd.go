package peer

import (
	"context"
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/xPeer/cmd/util"
	"github.com/ValentinKolb/xPeer/rpc/client"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf [id]",
		Short:   "Measures the round trip of exchanges with a peer",
		Long:    "Measures the round trip of ping and send exchanges with the given peer. Exchanges of one client are single-flight, so the numbers are sequential latencies.",
		Args:    cobra.ExactArgs(1),
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfSkip        = make([]string, 0)
	perfMessageSize = 1
)

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. ping,send)"))
	key = "message-size"
	perfTestCmd.Flags().Int(key, 1, util.WrapString("How large the message of the send test should be (in KB)"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfMessageSize = viper.GetInt("message-size")
	perfSkip = strings.Split(viper.GetString("skip"), ",")
	return nil
}

func runPerf(_ *cobra.Command, args []string) error {
	id := args[0]

	fmt.Println("Performance testing tool for xPeer relays")

	config := util.GetClientConfig()
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Peer: %s\n", id)
	fmt.Println()

	c, err := util.Connect()
	if err != nil {
		return err
	}
	defer util.Close(c)

	ctx, cancel := util.OperationContext()
	peer, err := c.GetPeer(ctx, id)
	cancel()
	if err != nil {
		return err
	}
	if peer == nil {
		return fmt.Errorf("peer %s is not available", id)
	}
	defer peer.Close()

	fmt.Println("staring tests...")

	results := make(map[string]testing.BenchmarkResult)

	pingResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("ping") {
			return
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := peer.Ping(context.Background()); err != nil {
				log.Printf("(ping) - error: %v\n", err)
			}
		}
	})
	results["ping"] = pingResult
	printResult("ping", pingResult)

	sendResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("send") {
			return
		}
		msg := strings.Repeat("x", perfMessageSize*1024)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			sendOnce(peer, msg)
		}
	})
	results["send"] = sendResult
	printResult("send", sendResult)

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, results, config); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", csvPath)
	}
	return nil
}

func sendOnce(peer client.IPeer, msg string) {
	resp, err := peer.SendMessage(context.Background(), msg)
	if err != nil {
		log.Printf("(send) - error: %v\n", err)
		return
	}
	if !resp.Success {
		log.Printf("(send) - failure: %s\n", resp.Message)
	}
}

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoint", "Retries", "RetryIntervalMillis", "MessageSizeKB",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		skipped := "true"

		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			config.Endpoint,
			strconv.Itoa(config.Retries),
			strconv.Itoa(config.RetryIntervalMillis),
			strconv.Itoa(perfMessageSize),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
