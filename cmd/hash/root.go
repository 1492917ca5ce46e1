package hash

import (
	"github.com/kvquill/quill/cmd/util"
	"github.com/kvquill/quill/lib/store"
	"github.com/kvquill/quill/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcStore store.IStore

	// HashCommands represents the hash command group
	HashCommands = &cobra.Command{
		Use:               "hash",
		Short:             "Perform hash value operations",
		PersistentPreRunE: setupHashClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the hash command
	util.SetupRPCClientFlags(HashCommands)

	// Set default shard ID for hash operations (same as KV, hashes live in
	// the same keyspace)
	HashCommands.PersistentFlags().Int("shard", 100, util.WrapString("ID of the shard to connect to"))

	// Add subcommands
	HashCommands.AddCommand(hsetCmd)
	HashCommands.AddCommand(hgetCmd)
	HashCommands.AddCommand(hdelCmd)
	HashCommands.AddCommand(hlenCmd)
	HashCommands.AddCommand(hexistsCmd)
	HashCommands.AddCommand(hgetallCmd)
	HashCommands.AddCommand(hincrbyCmd)
	HashCommands.AddCommand(hincrbyfloatCmd)
}

// setupHashClient initializes the RPC store client
func setupHashClient(cmd *cobra.Command, _ []string) error {
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
