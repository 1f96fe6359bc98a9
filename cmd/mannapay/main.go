package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mannapay/mannapay/internal/blockchain"
	"github.com/mannapay/mannapay/internal/catalog"
	"github.com/mannapay/mannapay/internal/config"
	"github.com/mannapay/mannapay/internal/http_api"
	"github.com/mannapay/mannapay/internal/ledger"
	"github.com/mannapay/mannapay/internal/mannapay"
	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/internal/notificator"
	"github.com/mannapay/mannapay/internal/repository"
	"github.com/mannapay/mannapay/internal/wallet"
	"github.com/mannapay/mannapay/internal/wellknown"
	"github.com/mannapay/mannapay/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "mannapay",
		Usage: "MannaPay pays third-party subscriptions from a crypto wallet",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
			&cli.StringFlag{Name: "api-host", Usage: "Control API host"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"p"}, Usage: "Control API port"},
			&cli.StringFlag{Name: "storage-driver", Aliases: []string{"s"}, Usage: "Storage driver (file, postgres, mysql, memory)"},
			&cli.StringFlag{Name: "storage-path", Usage: "Snapshot file for the file storage driver"},
			&cli.StringFlag{Name: "network", Aliases: []string{"n"}, Usage: "Network (testnet, mainnet)"},
			&cli.StringFlag{Name: "gateway", Aliases: []string{"g"}, Usage: "Payment gateway (testnet, hiro)"},
			&cli.StringFlag{Name: "merchant-address", Aliases: []string{"m"}, Usage: "Address receiving subscription payments"},
			&cli.DurationFlag{Name: "confirmation-delay", Usage: "Mock confirmation delay of the testnet gateway"},
			&cli.BoolFlag{Name: "strict-transitions", Usage: "Reject subscription status changes that do not apply"},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the control API (default)",
				Action: serve,
			},
			{
				Name:   "inspect",
				Usage:  "Print the persisted snapshot",
				Action: inspect,
			},
			{
				Name:  "accounts",
				Usage: "Print the development accounts derived from DEV_MNEMONIC",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "count", Aliases: []string{"c"}, Value: 5, Usage: "Number of accounts"},
				},
				Action: accounts,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the configuration and applies the flags that were set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if c.IsSet("api-host") {
		cfg.APIHost = c.String("api-host")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("storage-driver") {
		cfg.StorageDriver = c.String("storage-driver")
	}
	if c.IsSet("storage-path") {
		cfg.StoragePath = c.String("storage-path")
	}
	if c.IsSet("network") {
		cfg.Network = c.String("network")
	}
	if c.IsSet("gateway") {
		cfg.Gateway = c.String("gateway")
	}
	if c.IsSet("merchant-address") {
		cfg.MerchantAddress = c.String("merchant-address")
	}
	if c.IsSet("confirmation-delay") {
		cfg.ConfirmationDelay = c.Duration("confirmation-delay")
	}
	if c.IsSet("strict-transitions") {
		cfg.StrictTransitions = c.Bool("strict-transitions")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}
	return cfg, nil
}

func sqlConfig(cfg *config.Config) repository.SQLConfig {
	if cfg.StorageDriver == repository.DriverMySQL {
		return repository.SQLConfig{
			Host:     cfg.MySQLHost,
			Port:     cfg.MySQLPort,
			User:     cfg.MySQLUser,
			Password: cfg.MySQLPassword,
			DBName:   cfg.MySQLDB,
		}
	}
	return repository.SQLConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
	}
}

func openSnapshots(cfg *config.Config, log *logger.Logger) (*repository.SnapshotRepository, error) {
	kv, err := repository.NewKeyValueStore(cfg.StorageDriver, cfg.StoragePath, sqlConfig(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %v", err)
	}
	return repository.NewSnapshotRepository(kv, cfg.StorageKey, log), nil
}

// walletAddress picks the address the testnet gateway connects: the derived
// development account when a mnemonic is set, the fallback address otherwise.
func walletAddress(cfg *config.Config, log *logger.Logger) (string, error) {
	if cfg.DevMnemonic == "" {
		return cfg.FallbackWalletAddress, nil
	}
	deriver, err := wallet.NewDeriver(cfg.DevMnemonic, "", cfg.Network == string(models.Mainnet))
	if err != nil {
		return "", fmt.Errorf("failed to load DEV_MNEMONIC: %v", err)
	}
	account, err := deriver.Account(uint32(cfg.DevAccountIndex))
	if err != nil {
		return "", err
	}
	log.Infow("Using development account", "address", account.StacksAddress, "path", account.DerivationPath)
	return account.StacksAddress, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	snapshots, err := openSnapshots(cfg, log)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	address, err := walletAddress(cfg, log)
	if err != nil {
		return err
	}
	gateway, err := blockchain.NewGateway(cfg.Gateway,
		blockchain.TestnetConfig{
			Network:           models.NetworkName(cfg.Network),
			WalletAddress:     address,
			ConfirmationDelay: cfg.ConfirmationDelay,
		},
		blockchain.HiroConfig{
			BaseURL:        cfg.HiroURL,
			USDCContractID: cfg.USDCContractID,
		}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize payment gateway: %v", err)
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.LoadFile(cfg.CatalogFile); err != nil {
			return err
		}
	}

	rates := wellknown.NewRateService(cfg.RatesURL, cfg.RatesRefreshInterval, cat.Rates(), log)
	rates.StartPeriodicUpdate()
	defer rates.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The telegram /status command reads the app, which needs the notificator first.
	var app *mannapay.MannaPay
	var telegram *notificator.TelegramNotificator
	var telegramSender notificator.MessageSender
	if cfg.TelegramBotToken != "" {
		telegram, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, func() string {
			return statusText(app.Summary())
		})
		if err != nil {
			return err
		}
		telegramSender = telegram
	}
	var emailSender notificator.MessageSender
	if cfg.NotifyEmail != "" {
		emailSender = notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPAlternativePort,
			cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender)
	}
	notif := notificator.NewNotificator(log, telegramSender, cfg.TelegramChatID, emailSender, cfg.NotifyEmail)
	var notifications models.NotificationService
	if notif.Enabled() {
		notifications = notif
	}

	refreshCurrencies, err := cfg.RefreshCurrencyList()
	if err != nil {
		return err
	}
	app = mannapay.NewMannaPay(ledger.NewStore(log), gateway, snapshots, notifications, cat, rates, log, mannapay.Options{
		MerchantAddress:        cfg.MerchantAddress,
		StatusPollInterval:     cfg.StatusPollInterval,
		StatusPollTimeout:      cfg.StatusPollTimeout,
		BalanceRefreshInterval: cfg.BalanceRefreshInterval,
		RefreshCurrencies:      refreshCurrencies,
		StrictTransitions:      cfg.StrictTransitions,
	})
	app.Start(ctx)
	if telegram != nil {
		telegram.Start(ctx)
	}

	apiServer := http_api.NewHTTPServer(app, cfg.APIAddress(), log)
	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err = <-errCh:
	}

	if shutdownErr := apiServer.Shutdown(); shutdownErr != nil {
		log.Errorw("Failed to shut down HTTP server", "error", shutdownErr)
	}
	app.Stop()
	return err
}

func statusText(s mannapay.Summary) string {
	if !s.Connected {
		return "Wallet not connected"
	}
	return fmt.Sprintf("Wallet %s\nActive subscriptions: %d\nMonthly spend: $%s\nPortfolio: $%s",
		s.Address, s.ActiveSubscriptions, s.MonthlySpendUSD.StringFixed(2), s.PortfolioUSD.StringFixed(2))
}

func inspect(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	snapshots, err := openSnapshots(cfg, log)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	raw, err := snapshots.Raw(c.Context)
	if errors.Is(err, models.ErrSnapshotNotFound) {
		fmt.Fprintln(c.App.Writer, "no saved session")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %v", err)
	}
	snap, err := repository.DecodeSnapshot(raw)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(out))
	return nil
}

func accounts(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.DevMnemonic == "" {
		return errors.New("DEV_MNEMONIC is not set")
	}
	deriver, err := wallet.NewDeriver(cfg.DevMnemonic, "", cfg.Network == string(models.Mainnet))
	if err != nil {
		return err
	}
	for i := 0; i < c.Int("count"); i++ {
		account, err := deriver.Account(uint32(i))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\t%s\n", account.Index, account.StacksAddress, account.BitcoinAddress, account.DerivationPath)
	}
	return nil
}
