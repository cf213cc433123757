package peer

import (
	"fmt"
	"github.com/ValentinKolb/xPeer/cmd/util"
	"github.com/ValentinKolb/xPeer/lib/listener"
	"github.com/ValentinKolb/xPeer/rpc/client"
	"github.com/spf13/cobra"
)

var (
	idCmd = &cobra.Command{
		Use:   "id",
		Short: "Connects to the relay and prints the assigned peer id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := util.Connect()
			if err != nil {
				return err
			}
			defer util.Close(c)

			fmt.Println(c.PeerID())
			return nil
		},
	}
	pingCmd = &cobra.Command{
		Use:   "ping [id]",
		Short: "Checks whether a peer is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := util.Connect()
			if err != nil {
				return err
			}
			defer util.Close(c)

			ctx, cancel := util.OperationContext()
			defer cancel()

			available, err := c.Ping(ctx, args[0])
			if err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
			fmt.Printf("available=%v\n", available)
			return nil
		},
	}
	sendCmd = &cobra.Command{
		Use:   "send [id] [message]",
		Short: "Sends a direct message to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := util.Connect()
			if err != nil {
				return err
			}
			defer util.Close(c)

			ctx, cancel := util.OperationContext()
			defer cancel()

			peer, err := c.GetPeer(ctx, args[0])
			if err != nil {
				return err
			}
			if peer == nil {
				return fmt.Errorf("peer %s is not available", args[0])
			}

			resp, err := peer.SendMessage(ctx, args[1])
			if err != nil {
				return err
			}
			fmt.Println(resp)
			return resp.Err()
		},
	}
	createCmd = &cobra.Command{
		Use:   "create",
		Short: "Creates a new virtual peer and prints its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := util.Connect()
			if err != nil {
				return err
			}
			defer util.Close(c)

			ctx, cancel := util.OperationContext()
			defer cancel()

			vp, resp, err := c.CreateVirtualPeer(ctx)
			if err != nil {
				return err
			}
			if !resp.Success {
				return resp.Err()
			}
			fmt.Println(vp.ID())
			return nil
		},
	}
	listenCmd = &cobra.Command{
		Use:   "listen [id...]",
		Short: "Prints the peer id and all received messages until interrupted",
		Long: `Prints the peer id and all received messages until interrupted.
Messages of the given peers are printed to stdout, every other message is logged.`,
		RunE: runListen,
	}
)

func runListen(_ *cobra.Command, args []string) error {
	c, err := util.Connect()
	if err != nil {
		return err
	}
	defer util.Close(c)

	fmt.Printf("listening as %s\n", c.PeerID())

	for _, id := range args {
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

		peer.OnMessage(func(msg string, from client.IPeer, _ *listener.Subscription) {
			fmt.Printf("[%s] %s\n", from.ID(), msg)
		})
	}

	ctx, stop := util.InterruptContext()
	defer stop()
	<-ctx.Done()
	return nil
}
