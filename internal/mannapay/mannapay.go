package mannapay

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mannapay/mannapay/internal/catalog"
	"github.com/mannapay/mannapay/internal/ledger"
	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/internal/notificator"
	"github.com/mannapay/mannapay/pkg/logger"
)

const (
	DefaultStatusPollInterval     = time.Second
	DefaultStatusPollTimeout      = 30 * time.Second
	DefaultBalanceRefreshInterval = 30 * time.Second

	saveTimeout = 10 * time.Second
)

// Options tunes the orchestration.
type Options struct {
	MerchantAddress        string
	StatusPollInterval     time.Duration
	StatusPollTimeout      time.Duration
	BalanceRefreshInterval time.Duration
	RefreshCurrencies      []models.Currency
	// StrictTransitions rejects status changes that make no sense for the
	// current status (resuming a cancelled subscription and the like).
	StrictTransitions bool
}

// MannaPay drives the payment gateway and applies the resulting ledger transitions.
// It is the only caller of the gateway; the ledger never calls out.
type MannaPay struct {
	logger *logger.Logger
	opts   Options

	store       *ledger.Store
	gateway     models.PaymentGateway
	snapshots   models.SnapshotStore
	notificator models.NotificationService
	catalog     *catalog.Catalog
	rates       models.RateProvider

	now   func() time.Time
	newID func(prefix string) string

	refreshMu sync.Mutex
	refresher *BalanceRefresher

	// serializes payment flows so two subscriptions cannot spend the same balance
	payMu sync.Mutex
	// holds a status check and its dispatches together
	transitionMu sync.Mutex

	unsubscribe []func()
	wg          sync.WaitGroup
}

// NewMannaPay wires the service. snapshots, notificator and rates may be nil.
func NewMannaPay(
	store *ledger.Store,
	gateway models.PaymentGateway,
	snapshots models.SnapshotStore,
	notificator models.NotificationService,
	catalog *catalog.Catalog,
	rates models.RateProvider,
	logger *logger.Logger,
	opts Options,
) *MannaPay {
	if opts.StatusPollInterval <= 0 {
		opts.StatusPollInterval = DefaultStatusPollInterval
	}
	if opts.StatusPollTimeout <= 0 {
		opts.StatusPollTimeout = DefaultStatusPollTimeout
	}
	if opts.BalanceRefreshInterval <= 0 {
		opts.BalanceRefreshInterval = DefaultBalanceRefreshInterval
	}
	if len(opts.RefreshCurrencies) == 0 {
		opts.RefreshCurrencies = []models.Currency{models.USDC}
	}
	return &MannaPay{
		logger:      logger.Named("mannapay"),
		opts:        opts,
		store:       store,
		gateway:     gateway,
		snapshots:   snapshots,
		notificator: notificator,
		catalog:     catalog,
		rates:       rates,
		now:         time.Now,
		newID:       newID,
	}
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// Start restores the saved snapshot and registers the persistence and
// notification listeners. It runs once, before any other call.
func (m *MannaPay) Start(ctx context.Context) {
	if m.snapshots != nil {
		if snap := m.snapshots.Load(ctx); snap != nil {
			m.store.Dispatch(ledger.Hydrate{Snapshot: *snap})
			m.logger.Infow("restored saved session",
				"subscriptions", len(snap.Subscriptions),
				"transactions", len(snap.Transactions))
		}
		m.unsubscribe = append(m.unsubscribe, m.store.Subscribe(m.persist))
	}
	if m.notificator != nil {
		m.unsubscribe = append(m.unsubscribe, m.store.Subscribe(m.notify))
	}
}

// Stop halts the balance refresher and waits for pending notifications.
func (m *MannaPay) Stop() {
	m.stopRefresher()
	for _, unsubscribe := range m.unsubscribe {
		unsubscribe()
	}
	m.unsubscribe = nil
	m.wg.Wait()
	m.logger.Info("MannaPay stopped")
}

// State returns the current ledger state.
func (m *MannaPay) State() ledger.State {
	return m.store.State()
}

// persist saves the snapshot after every transition while a wallet is connected.
func (m *MannaPay) persist(_ ledger.Action, state ledger.State) {
	if !state.IsConnected {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	m.snapshots.Save(ctx, state.Snapshot())
}

func (m *MannaPay) notify(action ledger.Action, state ledger.State) {
	notification := notificator.FromAction(action, state)
	if notification == nil {
		return
	}
	m.safeGo(func() { m.notificator.SendNotification(notification) }, "notification")
}

// safeGo runs fn in a tracked goroutine with panic recovery.
func (m *MannaPay) safeGo(fn func(), context string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				m.logger.Errorw("Goroutine panicked",
					"context", context,
					"panic", r,
					"stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}
