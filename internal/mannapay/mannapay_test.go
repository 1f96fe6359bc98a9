package mannapay

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mannapay/mannapay/internal/blockchain"
	"github.com/mannapay/mannapay/internal/catalog"
	"github.com/mannapay/mannapay/internal/ledger"
	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

const merchant = "SP2C2M5XYZ123456789"

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type sentPayment struct {
	to       string
	amount   decimal.Decimal
	currency models.Currency
}

type fakeGateway struct {
	mu       sync.Mutex
	wallet   *models.Wallet
	balances models.Balances
	payment  models.PaymentResult
	statuses []models.TxStatus
	polls    int
	sent     []sentPayment
	network  models.NetworkConfig
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		wallet:   &models.Wallet{Address: "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"},
		balances: models.Balances{models.USDC: dec("1000")},
		payment:  models.PaymentResult{Success: true, TransactionID: "0xabc", ExplorerURL: "https://explorer/0xabc"},
		statuses: []models.TxStatus{models.TxPending, models.TxConfirmed},
		network:  models.NetworkConfig{Network: models.Testnet},
	}
}

func (g *fakeGateway) ConnectWallet(context.Context) (*models.Wallet, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.wallet == nil {
		return nil, models.ErrWalletUnavailable
	}
	return &models.Wallet{Address: g.wallet.Address, Balances: g.balances.Clone()}, nil
}

func (g *fakeGateway) GetBalance(context.Context, string) (models.Balances, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances.Clone(), nil
}

func (g *fakeGateway) SendPayment(_ context.Context, to string, amount decimal.Decimal, currency models.Currency) models.PaymentResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentPayment{to: to, amount: amount, currency: currency})
	return g.payment
}

func (g *fakeGateway) GetTransactionStatus(context.Context, string) models.TxStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.polls
	if i >= len(g.statuses) {
		i = len(g.statuses) - 1
	}
	g.polls++
	return g.statuses[i]
}

func (g *fakeGateway) Network() models.NetworkConfig {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.network
}

func (g *fakeGateway) SwitchNetwork(name models.NetworkName) error {
	if name != models.Testnet && name != models.Mainnet {
		return fmt.Errorf("unknown network %q", name)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.network = models.NetworkConfig{Network: name}
	return nil
}

type recordingSnapshots struct {
	mu     sync.Mutex
	loaded *models.Snapshot
	saved  []models.Snapshot
}

func (r *recordingSnapshots) Save(_ context.Context, snap models.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, snap)
}

func (r *recordingSnapshots) Load(context.Context) *models.Snapshot {
	return r.loaded
}

func (r *recordingSnapshots) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []models.NotificationKind
}

func (r *recordingNotifier) SendNotification(n *models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, n.Kind)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func newTestMannaPay(t *testing.T, gw models.PaymentGateway, opts Options) *MannaPay {
	t.Helper()
	if opts.MerchantAddress == "" {
		opts.MerchantAddress = merchant
	}
	if opts.StatusPollInterval == 0 {
		opts.StatusPollInterval = time.Millisecond
	}
	if opts.BalanceRefreshInterval == 0 {
		opts.BalanceRefreshInterval = time.Hour
	}
	m := NewMannaPay(ledger.NewStore(nil), gw, nil, nil, catalog.Default(), nil, logger.NewNop(), opts)
	m.now = func() time.Time { return fixedNow }
	var mu sync.Mutex
	n := 0
	m.newID = func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
	t.Cleanup(m.Stop)
	return m
}

// connect puts a wallet in the ledger without starting the balance refresher.
func connect(m *MannaPay, balances models.Balances) {
	m.store.Dispatch(ledger.Connect{Wallet: models.Wallet{Address: "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM", Balances: balances}})
}

func netflixBasic() SubscribeRequest {
	return SubscribeRequest{
		PlatformID:     "netflix",
		Plan:           models.PlanBasic,
		DurationMonths: 1,
		Currency:       models.USDC,
		Email:          "alice@example.com",
	}
}

func TestSubscribeRecordsSubscriptionAndTransaction(t *testing.T) {
	gw := newFakeGateway()
	m := newTestMannaPay(t, gw, Options{StrictTransitions: true})
	connect(m, models.Balances{models.USDC: dec("1000")})

	res, err := m.Subscribe(context.Background(), netflixBasic())
	require.NoError(t, err)

	sub := res.Subscription
	assert.Equal(t, "sub_1", sub.ID)
	assert.Equal(t, "Netflix", sub.Platform)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.Equal(t, fixedNow, sub.StartDate)
	assert.Equal(t, fixedNow.Add(30*24*time.Hour), sub.EndDate)
	assertDecimal(t, "15.99", sub.Price)
	assert.True(t, sub.AutoRenew)
	require.NotNil(t, sub.NextBillingDate)
	assert.Equal(t, sub.EndDate, *sub.NextBillingDate)
	require.NotNil(t, sub.Credentials)
	assert.Equal(t, "alice", sub.Credentials.Username)

	assert.Equal(t, "tx_2", res.Transaction.ID)
	assert.Equal(t, "0xabc", res.Transaction.Hash)
	assert.Equal(t, models.TransactionSubscription, res.Transaction.Type)
	assert.Equal(t, "https://explorer/0xabc", res.ExplorerURL)

	require.Len(t, gw.sent, 1)
	assert.Equal(t, merchant, gw.sent[0].to)
	assertDecimal(t, "15.99", gw.sent[0].amount)
	assert.Equal(t, 2, gw.polls)

	state := m.State()
	assertDecimal(t, "984.01", state.Wallet.Balances.Get(models.USDC))
	require.Len(t, state.Subscriptions, 1)
	require.Len(t, state.Transactions, 1)
}

func TestSubscribeThroughHiroGateway(t *testing.T) {
	const contract = "SP3Y2ZSH8P7D50B0VBTSX11S7XSG24M1VB9YFQA4K.token-aeusdc"
	var txLookups atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/extended/v1/address/"+blockchain.FallbackAddress+"/balances", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"stx": {"balance": "0"}, "fungible_tokens": {"` + contract + `::aeUSDC": {"balance": "100000000"}}}`))
	})
	mux.HandleFunc("/extended/v1/tx/", func(w http.ResponseWriter, r *http.Request) {
		txLookups.Add(1)
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	gw, err := blockchain.NewGateway(blockchain.GatewayHiro,
		blockchain.TestnetConfig{},
		blockchain.HiroConfig{BaseURL: srv.URL, USDCContractID: contract},
		logger.NewNop())
	require.NoError(t, err)

	m := newTestMannaPay(t, gw, Options{StrictTransitions: true})
	_, err = m.Connect(context.Background())
	require.NoError(t, err)
	assertDecimal(t, "100", m.State().Wallet.Balances.Get(models.USDC))

	res, err := m.Subscribe(context.Background(), netflixBasic())
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, res.Subscription.Status)
	assert.Zero(t, txLookups.Load())
	assertDecimal(t, "84.01", m.State().Wallet.Balances.Get(models.USDC))
}

func TestSubscribeMultipliesByDuration(t *testing.T) {
	gw := newFakeGateway()
	m := newTestMannaPay(t, gw, Options{})
	connect(m, models.Balances{models.USDC: dec("100")})

	req := netflixBasic()
	req.DurationMonths = 3
	res, err := m.Subscribe(context.Background(), req)
	require.NoError(t, err)

	assertDecimal(t, "47.97", res.Subscription.Price)
	assert.Equal(t, fixedNow.Add(90*24*time.Hour), res.Subscription.EndDate)
	assertDecimal(t, "52.03", m.State().Wallet.Balances.Get(models.USDC))
}

func TestSubscribeWithoutAutoRenewal(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{})
	connect(m, models.Balances{models.USDC: dec("100")})

	req := netflixBasic()
	req.PlatformID = "steam"
	res, err := m.Subscribe(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Subscription.AutoRenew)
	assert.Nil(t, res.Subscription.NextBillingDate)
}

func TestSubscribeThenCancelRefunds(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{StrictTransitions: true})
	connect(m, models.Balances{models.USDC: dec("1000")})

	res, err := m.Subscribe(context.Background(), netflixBasic())
	require.NoError(t, err)

	state, err := m.Cancel(res.Subscription.ID)
	require.NoError(t, err)

	assertDecimal(t, "996.802", state.Wallet.Balances.Get(models.USDC))
	sub, ok := state.FindSubscription(res.Subscription.ID)
	require.True(t, ok)
	assert.Equal(t, models.SubscriptionCancelled, sub.Status)

	require.Len(t, state.Transactions, 2)
	refund := state.Transactions[0]
	assert.Equal(t, models.TransactionRefund, refund.Type)
	assertDecimal(t, "12.792", refund.Amount)
	assert.Equal(t, models.TransactionSubscription, state.Transactions[1].Type)
}

func TestSubscribeFailuresLeaveLedgerUntouched(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(gw *fakeGateway)
		opts    Options
		wantErr error
	}{
		{
			name: "payment rejected",
			mutate: func(gw *fakeGateway) {
				gw.payment = models.PaymentResult{Success: false, Error: "Invalid recipient address"}
			},
			wantErr: models.ErrPaymentFailed,
		},
		{
			name:    "transaction failed",
			mutate:  func(gw *fakeGateway) { gw.statuses = []models.TxStatus{models.TxFailed} },
			wantErr: models.ErrTransactionFailed,
		},
		{
			name:    "still pending at timeout",
			mutate:  func(gw *fakeGateway) { gw.statuses = []models.TxStatus{models.TxPending} },
			opts:    Options{StatusPollTimeout: 20 * time.Millisecond},
			wantErr: models.ErrTransactionFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			tt.mutate(gw)
			m := newTestMannaPay(t, gw, tt.opts)
			connect(m, models.Balances{models.USDC: dec("1000")})
			before := m.State()

			_, err := m.Subscribe(context.Background(), netflixBasic())
			require.ErrorIs(t, err, tt.wantErr)

			after := m.State()
			assert.Empty(t, after.Subscriptions)
			assert.Empty(t, after.Transactions)
			assert.True(t, before.Wallet.Balances.Get(models.USDC).Equal(after.Wallet.Balances.Get(models.USDC)))
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *SubscribeRequest)
		balance string
		wantErr error
	}{
		{name: "zero duration", mutate: func(r *SubscribeRequest) { r.DurationMonths = 0 }, wantErr: models.ErrInvalidRequest},
		{name: "bad email", mutate: func(r *SubscribeRequest) { r.Email = "not-an-email" }, wantErr: models.ErrInvalidRequest},
		{name: "unknown platform", mutate: func(r *SubscribeRequest) { r.PlatformID = "hulu" }, wantErr: models.ErrUnknownPlatform},
		{name: "unknown plan", mutate: func(r *SubscribeRequest) { r.Plan = models.PlanEnterprise }, wantErr: models.ErrUnknownPlan},
		{name: "unsupported currency", mutate: func(r *SubscribeRequest) { r.Currency = models.ETH }, wantErr: models.ErrUnsupportedCurrency},
		{name: "insufficient balance", mutate: func(r *SubscribeRequest) {}, balance: "10", wantErr: models.ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			m := newTestMannaPay(t, gw, Options{})
			balance := tt.balance
			if balance == "" {
				balance = "1000"
			}
			connect(m, models.Balances{models.USDC: dec(balance)})

			req := netflixBasic()
			tt.mutate(&req)
			_, err := m.Subscribe(context.Background(), req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, gw.sent)
		})
	}
}

func TestSubscribeRequiresConnection(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{})
	_, err := m.Subscribe(context.Background(), netflixBasic())
	require.ErrorIs(t, err, models.ErrWalletNotConnected)
}

func TestStrictTransitions(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{StrictTransitions: true})
	connect(m, models.Balances{models.USDC: dec("1000")})

	netflix, err := m.Subscribe(context.Background(), netflixBasic())
	require.NoError(t, err)
	spotifyReq := netflixBasic()
	spotifyReq.PlatformID = "spotify"
	spotify, err := m.Subscribe(context.Background(), spotifyReq)
	require.NoError(t, err)

	_, err = m.Pause(spotify.Subscription.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = m.Resume(netflix.Subscription.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	state, err := m.Pause(netflix.Subscription.ID)
	require.NoError(t, err)
	sub, _ := state.FindSubscription(netflix.Subscription.ID)
	assert.Equal(t, models.SubscriptionPaused, sub.Status)

	_, err = m.Pause(netflix.Subscription.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	state, err = m.Resume(netflix.Subscription.ID)
	require.NoError(t, err)
	sub, _ = state.FindSubscription(netflix.Subscription.ID)
	assert.Equal(t, models.SubscriptionActive, sub.Status)

	_, err = m.Cancel(netflix.Subscription.ID)
	require.NoError(t, err)
	_, err = m.Cancel(netflix.Subscription.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = m.Resume(netflix.Subscription.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = m.Pause("sub_missing")
	require.ErrorIs(t, err, models.ErrSubscriptionNotFound)
}

func TestConcurrentCancelRefundsOnce(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{StrictTransitions: true})
	connect(m, models.Balances{models.USDC: dec("1000")})

	res, err := m.Subscribe(context.Background(), netflixBasic())
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Cancel(res.Subscription.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	}
	assert.Equal(t, 1, succeeded)

	state := m.State()
	assertDecimal(t, "996.802", state.Wallet.Balances.Get(models.USDC))
	refunds := 0
	for _, tx := range state.Transactions {
		if tx.Type == models.TransactionRefund {
			refunds++
		}
	}
	assert.Equal(t, 1, refunds)
}

func TestPermissiveTransitions(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{StrictTransitions: false})
	connect(m, models.Balances{models.USDC: dec("1000")})

	res, err := m.Subscribe(context.Background(), netflixBasic())
	require.NoError(t, err)
	_, err = m.Cancel(res.Subscription.ID)
	require.NoError(t, err)

	state, err := m.Resume(res.Subscription.ID)
	require.NoError(t, err)
	sub, _ := state.FindSubscription(res.Subscription.ID)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
}

func TestCancelRequiresWallet(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{})
	_, err := m.Cancel("sub_1")
	require.ErrorIs(t, err, models.ErrWalletNotConnected)
}

func TestConnectRefreshesBalancesUntilDisconnect(t *testing.T) {
	gw := newFakeGateway()
	m := newTestMannaPay(t, gw, Options{BalanceRefreshInterval: 5 * time.Millisecond})

	state, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, state.IsConnected)
	assertDecimal(t, "1000", state.Wallet.Balances.Get(models.USDC))

	gw.mu.Lock()
	gw.balances = models.Balances{models.USDC: dec("42")}
	gw.mu.Unlock()

	require.Eventually(t, func() bool {
		w := m.State().Wallet
		return w != nil && w.Balances.Get(models.USDC).Equal(dec("42"))
	}, time.Second, 5*time.Millisecond)

	state = m.Disconnect()
	assert.False(t, state.IsConnected)
	assert.Nil(t, state.Wallet)

	m.refreshMu.Lock()
	assert.Nil(t, m.refresher)
	m.refreshMu.Unlock()
}

func TestConnectWalletUnavailable(t *testing.T) {
	gw := newFakeGateway()
	gw.wallet = nil
	m := newTestMannaPay(t, gw, Options{})

	state, err := m.Connect(context.Background())
	require.ErrorIs(t, err, models.ErrWalletUnavailable)
	assert.False(t, state.IsConnected)
}

func TestUpdateBalance(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{})

	_, err := m.UpdateBalance(models.USDC, dec("5"))
	require.ErrorIs(t, err, models.ErrWalletNotConnected)

	connect(m, models.Balances{models.USDC: dec("1000")})
	_, err = m.UpdateBalance(models.USDC, dec("-1"))
	require.ErrorIs(t, err, models.ErrInvalidRequest)
	_, err = m.UpdateBalance("XRP", dec("1"))
	require.ErrorIs(t, err, models.ErrUnsupportedCurrency)

	state, err := m.UpdateBalance(models.BTC, dec("0.25"))
	require.NoError(t, err)
	assertDecimal(t, "0.25", state.Wallet.Balances.Get(models.BTC))
	assertDecimal(t, "1000", state.Wallet.Balances.Get(models.USDC))
}

func TestStartRestoresAndPersistsWhileConnected(t *testing.T) {
	snapshots := &recordingSnapshots{loaded: &models.Snapshot{
		Transactions:     []models.Transaction{{ID: "tx_old", Type: models.TransactionDeposit}},
		SelectedCurrency: models.DAI,
	}}
	m := NewMannaPay(ledger.NewStore(nil), newFakeGateway(), snapshots, nil, catalog.Default(), nil, logger.NewNop(), Options{})
	t.Cleanup(m.Stop)

	m.Start(context.Background())
	state := m.State()
	assert.False(t, state.IsConnected)
	assert.Equal(t, models.DAI, state.SelectedCurrency)
	require.Len(t, state.Transactions, 1)
	assert.Equal(t, 0, snapshots.count())

	_, err := m.SetCurrency(models.BTC)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshots.count())

	connect(m, models.Balances{models.USDC: dec("1")})
	assert.Equal(t, 1, snapshots.count())

	m.store.Dispatch(ledger.Disconnect{})
	assert.Equal(t, 1, snapshots.count())
}

func TestNotificationsFollowActions(t *testing.T) {
	notifier := &recordingNotifier{}
	m := NewMannaPay(ledger.NewStore(nil), newFakeGateway(), nil, notifier, catalog.Default(), nil, logger.NewNop(),
		Options{MerchantAddress: merchant, StatusPollInterval: time.Millisecond})
	m.Start(context.Background())

	connect(m, models.Balances{models.USDC: dec("100")})
	res, err := m.Subscribe(context.Background(), netflixBasic())
	require.NoError(t, err)
	_, err = m.Cancel(res.Subscription.ID)
	require.NoError(t, err)
	m.Stop()

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.ElementsMatch(t, []models.NotificationKind{
		models.NotifyWalletConnected,
		models.NotifySubscriptionActivated,
		models.NotifySubscriptionCancelled,
	}, notifier.kinds)
}

func TestUpdateProfile(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{})

	bad := "nope"
	_, err := m.UpdateProfile(models.UserProfilePatch{Email: &bad})
	require.ErrorIs(t, err, models.ErrInvalidRequest)

	email := "bob@example.com"
	state, err := m.UpdateProfile(models.UserProfilePatch{Email: &email})
	require.NoError(t, err)
	require.NotNil(t, state.UserProfile)
	assert.Equal(t, "user_1", state.UserProfile.ID)
	assert.Equal(t, fixedNow, state.UserProfile.CreatedAt)
	assert.Equal(t, fixedNow, state.UserProfile.LastActive)

	name := "Bob"
	state, err = m.UpdateProfile(models.UserProfilePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "user_1", state.UserProfile.ID)
	assert.Equal(t, email, state.UserProfile.Email)
	assert.Equal(t, name, state.UserProfile.Name)
}

func TestAddPaymentMethod(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{})

	_, err := m.AddPaymentMethod(models.PaymentMethod{Type: models.PaymentMethodWallet, Name: "Leather", Currency: models.USDC, Address: "0xdeadbeef"})
	require.ErrorIs(t, err, models.ErrInvalidRequest)

	_, err = m.AddPaymentMethod(models.PaymentMethod{Type: "crypto", Name: "x", Currency: models.USDC})
	require.ErrorIs(t, err, models.ErrInvalidRequest)

	state, err := m.AddPaymentMethod(models.PaymentMethod{Type: models.PaymentMethodCard, Name: "Visa", Currency: models.USDC, Last4: "4242"})
	require.NoError(t, err)
	require.Len(t, state.PaymentMethods, 1)
	assert.Equal(t, "pm_1", state.PaymentMethods[0].ID)
}

func TestSetCurrency(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{})

	_, err := m.SetCurrency("DOGE")
	require.ErrorIs(t, err, models.ErrUnsupportedCurrency)

	state, err := m.SetCurrency(models.ETH)
	require.NoError(t, err)
	assert.Equal(t, models.ETH, state.SelectedCurrency)
}

func TestSummary(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{})
	connect(m, models.Balances{models.USDC: dec("100"), models.BTC: dec("0.5")})

	active := models.Subscription{
		ID: "sub_a", Platform: "Netflix", DurationMonths: 3,
		StartDate: fixedNow.Add(-24 * time.Hour), EndDate: fixedNow.Add(89 * 24 * time.Hour),
		Price: dec("60"), Currency: models.USDC, Status: models.SubscriptionActive,
	}
	lapsed := active
	lapsed.ID = "sub_b"
	lapsed.StartDate = fixedNow.Add(-60 * 24 * time.Hour)
	lapsed.EndDate = fixedNow.Add(-30 * 24 * time.Hour)
	m.store.Dispatch(ledger.AddSubscription{Subscription: active})
	m.store.Dispatch(ledger.AddSubscription{Subscription: lapsed})

	s := m.Summary()
	assert.True(t, s.Connected)
	assert.Equal(t, 1, s.ActiveSubscriptions)
	assertDecimal(t, "20", s.MonthlySpendUSD)
	// 100 - 60 - 60 USDC plus 0.5 BTC at 45000
	assertDecimal(t, "22480", s.PortfolioUSD)

	require.Len(t, s.Subscriptions, 2)
	assert.Equal(t, models.SubscriptionExpired, s.Subscriptions[1].EffectiveStatus)
	assert.Equal(t, models.SubscriptionActive, s.Subscriptions[1].Status)
	assert.Equal(t, "Expired", s.Subscriptions[1].TimeRemaining)
	assert.Equal(t, "89d 0h", s.Subscriptions[0].TimeRemaining)
}

func TestSwitchNetwork(t *testing.T) {
	m := newTestMannaPay(t, newFakeGateway(), Options{})

	cfg, err := m.SwitchNetwork(models.Mainnet)
	require.NoError(t, err)
	assert.Equal(t, models.Mainnet, cfg.Network)

	_, err = m.SwitchNetwork("devnet")
	require.ErrorIs(t, err, models.ErrInvalidRequest)
}
