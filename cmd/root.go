package cmd

import (
	"fmt"
	"github.com/ValentinKolb/xPeer/cmd/peer"
	"github.com/ValentinKolb/xPeer/cmd/state"
	"github.com/ValentinKolb/xPeer/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "xpeer",
		Short: "xPeer relay client",
		Long: fmt.Sprintf(`xPeer (v%s)

A client for the xPeer relay protocol written in Go. It obtains a peer id
from the relay, exchanges direct messages with other peers and manages the
shared state of virtual peers.

Every flag can also be set via environment variables in the format
XPEER_<flag> (e.g. XPEER_ENDPOINT=ws://relay:8080/ws).`, Version),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return util.BindCommandFlags(cmd)
		},
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of xPeer",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xPeer v%s\n", Version)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add Commands
	RootCmd.AddCommand(peer.Commands...)
	RootCmd.AddCommand(state.StateCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupClientFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
