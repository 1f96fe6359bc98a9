package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

// usdcDecimals is the number of decimals of the USDC fungible token.
const usdcDecimals = 6

// BalancesResponse is the subset of /extended/v1/address/{address}/balances we read.
type BalancesResponse struct {
	STX struct {
		Balance string `json:"balance"`
	} `json:"stx"`
	FungibleTokens map[string]struct {
		Balance string `json:"balance"`
	} `json:"fungible_tokens"`
}

// TxResponse is the subset of /extended/v1/tx/{txId} we read.
type TxResponse struct {
	TxID     string `json:"tx_id"`
	TxStatus string `json:"tx_status"`
}

// HiroConfig configures the Hiro gateway.
type HiroConfig struct {
	// BaseURL overrides the RPC URL of the active network.
	BaseURL        string
	USDCContractID string
	Timeout        time.Duration
}

// Hiro reads balances and transaction status from the Stacks Hiro API.
// Wallet connection and payment initiation go through the embedded testnet
// gateway since transaction signing is not supported.
type Hiro struct {
	*Testnet

	logger   *logger.Logger
	client   *http.Client
	baseURL  string
	contract string
}

func NewHiro(cfg HiroConfig, testnet *Testnet, logger *logger.Logger) *Hiro {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Hiro{
		Testnet:  testnet,
		logger:   logger.Named("hiro"),
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		contract: cfg.USDCContractID,
	}
}

func (h *Hiro) rpcURL() string {
	if h.baseURL != "" {
		return h.baseURL
	}
	return h.Network().RPCURL
}

// ConnectWallet connects the testnet wallet and replaces its balances with the on-chain ones.
func (h *Hiro) ConnectWallet(ctx context.Context) (*models.Wallet, error) {
	w, err := h.Testnet.ConnectWallet(ctx)
	if err != nil {
		return nil, err
	}
	if w.Address == FallbackAddress {
		h.logger.Warnw("querying chain balances for the placeholder wallet address, set DEV_MNEMONIC or FALLBACK_WALLET_ADDRESS",
			"address", w.Address)
	}
	balances, err := h.GetBalance(ctx, w.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrWalletUnavailable, err)
	}
	w.Balances = balances
	return w, nil
}

// GetBalance returns the USDC balance held by address. Other currencies read as zero.
func (h *Hiro) GetBalance(ctx context.Context, address string) (models.Balances, error) {
	url := fmt.Sprintf("%s/extended/v1/address/%s/balances", h.rpcURL(), address)

	var resp BalancesResponse
	if err := h.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch balances: %w", err)
	}

	balances := make(models.Balances, len(models.Currencies))
	for _, c := range models.Currencies {
		balances[c] = decimal.Zero
	}
	if h.contract == "" {
		h.logger.Debugw("no USDC contract configured, reporting zero balance", "address", address)
		return balances, nil
	}
	for id, token := range resp.FungibleTokens {
		if id != h.contract && !strings.HasPrefix(id, h.contract+"::") {
			continue
		}
		micro, err := decimal.NewFromString(token.Balance)
		if err != nil {
			return nil, fmt.Errorf("invalid token balance %q: %w", token.Balance, err)
		}
		balances[models.USDC] = micro.Shift(-usdcDecimals)
		break
	}
	return balances, nil
}

// GetTransactionStatus maps the Hiro tx_status. Payments sent through the
// testnet path settle there and are never looked up on chain. Lookup errors
// read as failed.
func (h *Hiro) GetTransactionStatus(ctx context.Context, transactionID string) models.TxStatus {
	if h.Testnet.Sent(transactionID) {
		return h.Testnet.GetTransactionStatus(ctx, transactionID)
	}
	url := fmt.Sprintf("%s/extended/v1/tx/%s", h.rpcURL(), transactionID)

	var resp TxResponse
	if err := h.getJSON(ctx, url, &resp); err != nil {
		h.logger.Warnw("failed to fetch transaction status", "txId", transactionID, "error", err)
		return models.TxFailed
	}
	switch strings.ToLower(resp.TxStatus) {
	case "success":
		return models.TxConfirmed
	case "pending":
		return models.TxPending
	}
	return models.TxFailed
}

func (h *Hiro) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
