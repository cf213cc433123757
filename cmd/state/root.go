package state

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/xPeer/cmd/util"
	"github.com/ValentinKolb/xPeer/lib/listener"
	"github.com/ValentinKolb/xPeer/rpc/client"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/spf13/cobra"
)

var (
	// StateCommands represents the virtual peer state command group
	StateCommands = &cobra.Command{
		Use:   "state",
		Short: "Perform virtual peer state operations",
	}

	watchCmd = &cobra.Command{
		Use:   "watch [id]",
		Short: "Connects to a virtual peer and prints every state update until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	putCmd = &cobra.Command{
		Use:   "put [id] [json]",
		Short: "Replaces the state of a virtual peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(args, (*client.VirtualPeer).PutState)
		},
	}
	patchCmd = &cobra.Command{
		Use:   "patch [id] [json]",
		Short: "Merges a partial state into the state of a virtual peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(args, (*client.VirtualPeer).PatchState)
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [id]",
		Short: "Deletes a virtual peer",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
)

func init() {
	StateCommands.AddCommand(watchCmd)
	StateCommands.AddCommand(putCmd)
	StateCommands.AddCommand(patchCmd)
	StateCommands.AddCommand(deleteCmd)
}

// runWatch handles the watch command
func runWatch(_ *cobra.Command, args []string) error {
	c, err := util.Connect()
	if err != nil {
		return err
	}
	defer util.Close(c)

	vp, err := util.GetVirtualPeer(c, args[0])
	if err != nil {
		return err
	}

	vp.OnState(func(state common.State, from *client.VirtualPeer, _ *listener.Subscription) {
		fmt.Printf("[%s] %s\n", from.ID(), util.FormatState(state))
	})

	ctx, cancel := util.OperationContext()
	resp, err := vp.Connect(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	if !resp.Success {
		return resp.Err()
	}

	interrupt, stop := util.InterruptContext()
	defer stop()
	<-interrupt.Done()

	ctx, cancel = util.OperationContext()
	defer cancel()
	resp, err = vp.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	return resp.Err()
}

// runUpdate handles the put and patch commands
func runUpdate(args []string, update func(*client.VirtualPeer, context.Context, common.State) (client.Response, error)) error {
	state, err := util.ParseState(args[1])
	if err != nil {
		return err
	}

	c, err := util.Connect()
	if err != nil {
		return err
	}
	defer util.Close(c)

	vp, err := util.GetVirtualPeer(c, args[0])
	if err != nil {
		return err
	}
	defer vp.Close()

	ctx, cancel := util.OperationContext()
	defer cancel()

	resp, err := update(vp, ctx, state)
	if err != nil {
		return err
	}
	fmt.Println(resp)
	return resp.Err()
}

// runDelete handles the delete command
func runDelete(_ *cobra.Command, args []string) error {
	c, err := util.Connect()
	if err != nil {
		return err
	}
	defer util.Close(c)

	vp, err := util.GetVirtualPeer(c, args[0])
	if err != nil {
		return err
	}
	if err := vp.Destroy(); err != nil {
		return err
	}

	// the delete request is not acknowledged, a ping afterward confirms it was processed
	ctx, cancel := util.OperationContext()
	defer cancel()
	available, err := c.Ping(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("deleted=%v\n", !available)
	return nil
}
