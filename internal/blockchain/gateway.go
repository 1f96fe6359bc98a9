package blockchain

import (
	"fmt"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

const (
	GatewayTestnet = "testnet"
	GatewayHiro    = "hiro"
)

// NewGateway builds the payment gateway selected by kind.
func NewGateway(kind string, testnetCfg TestnetConfig, hiroCfg HiroConfig, logger *logger.Logger) (models.PaymentGateway, error) {
	testnet, err := NewTestnet(testnetCfg, logger)
	if err != nil {
		return nil, err
	}
	switch kind {
	case GatewayTestnet, "":
		return testnet, nil
	case GatewayHiro:
		return NewHiro(hiroCfg, testnet, logger), nil
	}
	return nil, fmt.Errorf("unsupported gateway %q", kind)
}
