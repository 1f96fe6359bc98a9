package blockchain

import (
	"fmt"

	"github.com/mannapay/mannapay/internal/models"
)

var networks = map[models.NetworkName]models.NetworkConfig{
	models.Testnet: {
		Network:     models.Testnet,
		RPCURL:      "https://api.testnet.hiro.so",
		ExplorerURL: "https://explorer.stacks.co/txid",
	},
	models.Mainnet: {
		Network:     models.Mainnet,
		RPCURL:      "https://api.hiro.so",
		ExplorerURL: "https://explorer.stacks.co/txid",
	},
}

// NetworkConfigFor returns the endpoints of a known network.
func NetworkConfigFor(name models.NetworkName) (models.NetworkConfig, error) {
	cfg, ok := networks[name]
	if !ok {
		return models.NetworkConfig{}, fmt.Errorf("unknown network %q", name)
	}
	return cfg, nil
}

// ExplorerTxURL links a transaction in the block explorer of the network.
func ExplorerTxURL(cfg models.NetworkConfig, txID string) string {
	return fmt.Sprintf("%s/%s?chain=%s", cfg.ExplorerURL, txID, cfg.Network)
}
