package list

import (
	"github.com/kvquill/quill/cmd/util"
	"github.com/kvquill/quill/lib/store"
	"github.com/kvquill/quill/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcStore store.IStore

	// ListCommands represents the list command group
	ListCommands = &cobra.Command{
		Use:               "list",
		Short:             "Perform list value operations",
		PersistentPreRunE: setupListClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the list command
	util.SetupRPCClientFlags(ListCommands)

	// Set default shard ID for list operations (same as KV, lists live in
	// the same keyspace)
	ListCommands.PersistentFlags().Int("shard", 100, util.WrapString("ID of the shard to connect to"))

	// Add subcommands
	ListCommands.AddCommand(lpushCmd)
	ListCommands.AddCommand(rpushCmd)
	ListCommands.AddCommand(lpopCmd)
	ListCommands.AddCommand(rpopCmd)
	ListCommands.AddCommand(llenCmd)
	ListCommands.AddCommand(lindexCmd)
	ListCommands.AddCommand(lsetCmd)
	ListCommands.AddCommand(lrangeCmd)
	ListCommands.AddCommand(ltrimCmd)
	ListCommands.AddCommand(linsertCmd)
	ListCommands.AddCommand(lremCmd)
	ListCommands.AddCommand(blpopCmd)
	ListCommands.AddCommand(brpopCmd)
	ListCommands.AddCommand(brpoplpushCmd)
	ListCommands.AddCommand(rpoplpushCmd)
}

// setupListClient initializes the RPC store client
func setupListClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	shardId := util.GetShardID()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the store client
	rpcStore, err = client.NewRPCStore(
		shardId,
		*config,
		t,
		s,
	)

	return err
}
