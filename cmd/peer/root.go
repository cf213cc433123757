package peer

import (
	"github.com/spf13/cobra"
)

// Commands are the top level peer commands of the CLI
var Commands = []*cobra.Command{
	idCmd,
	pingCmd,
	sendCmd,
	createCmd,
	listenCmd,
	perfTestCmd,
}
