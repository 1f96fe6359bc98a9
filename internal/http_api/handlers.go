package http_api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mannapay/mannapay/internal/blockchain"
	"github.com/mannapay/mannapay/internal/ledger"
	"github.com/mannapay/mannapay/internal/mannapay"
	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/validation"
)

// SubscribeRequest represents the JSON body of a new subscription
type SubscribeRequest struct {
	PlatformID     string `json:"platformId" binding:"required"`
	Plan           string `json:"plan" binding:"required"`
	DurationMonths int    `json:"duration" binding:"required,min=1"`
	Currency       string `json:"currency"`
	Email          string `json:"email" binding:"required,email"`
}

// BalanceRequest represents the JSON body of a manual balance overwrite
type BalanceRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// CurrencyRequest represents the JSON body of a display currency change
type CurrencyRequest struct {
	Currency string `json:"currency" binding:"required"`
}

// NetworkRequest represents the JSON body of a network switch
type NetworkRequest struct {
	Network string `json:"network" binding:"required,oneof=testnet mainnet"`
}

// TransactionStatusResponse is the settlement state of one transaction
type TransactionStatusResponse struct {
	Hash        string          `json:"hash"`
	Status      models.TxStatus `json:"status"`
	ExplorerURL string          `json:"explorerUrl"`
}

// statusFor maps an orchestration error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRequest),
		errors.Is(err, models.ErrUnsupportedCurrency):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSubscriptionNotFound),
		errors.Is(err, models.ErrUnknownPlatform),
		errors.Is(err, models.ErrUnknownPlan):
		return http.StatusNotFound
	case errors.Is(err, models.ErrWalletNotConnected),
		errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrPaymentFailed),
		errors.Is(err, models.ErrTransactionFailed):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrWalletUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *HTTPServer) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Errorw("Request failed", "path", c.FullPath(), "error", err)
	} else {
		s.logger.Debugw("Request rejected", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func (s *HTTPServer) badRequest(c *gin.Context, err error) {
	s.logger.Debugw("Invalid request body", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request body: " + err.Error(),
	})
}

// reply writes the state of a ledger operation or its error.
func (s *HTTPServer) reply(c *gin.Context, state ledger.State, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *HTTPServer) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.mannapay.State())
}

func (s *HTTPServer) getSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.mannapay.Summary())
}

func (s *HTTPServer) connectWallet(c *gin.Context) {
	state, err := s.mannapay.Connect(c.Request.Context())
	s.reply(c, state, err)
}

func (s *HTTPServer) disconnectWallet(c *gin.Context) {
	c.JSON(http.StatusOK, s.mannapay.Disconnect())
}

func (s *HTTPServer) updateBalance(c *gin.Context) {
	currency, err := models.ParseCurrency(c.Param("currency"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if req.Amount == nil {
		s.badRequest(c, errors.New("amount is required"))
		return
	}
	state, err := s.mannapay.UpdateBalance(currency, *req.Amount)
	s.reply(c, state, err)
}

func (s *HTTPServer) refreshBalances(c *gin.Context) {
	state, err := s.mannapay.RefreshBalances(c.Request.Context())
	s.reply(c, state, err)
}

func (s *HTTPServer) listPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, s.mannapay.Platforms(models.Category(c.Query("category"))))
}

func (s *HTTPServer) listSubscriptions(c *gin.Context) {
	c.JSON(http.StatusOK, s.mannapay.Subscriptions())
}

// subscribe runs the whole payment flow and only answers once the payment has
// settled or failed.
func (s *HTTPServer) subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	var currency models.Currency
	if req.Currency != "" {
		parsed, err := models.ParseCurrency(req.Currency)
		if err != nil {
			s.fail(c, err)
			return
		}
		currency = parsed
	}

	res, err := s.mannapay.Subscribe(c.Request.Context(), mannapay.SubscribeRequest{
		PlatformID:     req.PlatformID,
		Plan:           models.PlanType(req.Plan),
		DurationMonths: req.DurationMonths,
		Currency:       currency,
		Email:          req.Email,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Infow("Subscription created", "id", res.Subscription.ID, "platform", res.Subscription.Platform)
	c.JSON(http.StatusCreated, res)
}

func (s *HTTPServer) cancelSubscription(c *gin.Context) {
	state, err := s.mannapay.Cancel(c.Param("id"))
	s.reply(c, state, err)
}

func (s *HTTPServer) pauseSubscription(c *gin.Context) {
	state, err := s.mannapay.Pause(c.Param("id"))
	s.reply(c, state, err)
}

func (s *HTTPServer) resumeSubscription(c *gin.Context) {
	state, err := s.mannapay.Resume(c.Param("id"))
	s.reply(c, state, err)
}

func (s *HTTPServer) listTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, s.mannapay.State().Transactions)
}

func (s *HTTPServer) transactionStatus(c *gin.Context) {
	hash := validation.NormalizeTxID(c.Param("hash"))
	if err := validation.ValidateTxID(hash); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid transaction id: " + err.Error(),
		})
		return
	}

	status := s.mannapay.TransactionStatus(c.Request.Context(), hash)
	c.JSON(http.StatusOK, TransactionStatusResponse{
		Hash:        hash,
		Status:      status,
		ExplorerURL: blockchain.ExplorerTxURL(s.mannapay.Network(), hash),
	})
}

func (s *HTTPServer) updateProfile(c *gin.Context) {
	var patch models.UserProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.badRequest(c, err)
		return
	}
	state, err := s.mannapay.UpdateProfile(patch)
	s.reply(c, state, err)
}

func (s *HTTPServer) setCurrency(c *gin.Context) {
	var req CurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	currency, err := models.ParseCurrency(req.Currency)
	if err != nil {
		s.fail(c, err)
		return
	}
	state, err := s.mannapay.SetCurrency(currency)
	s.reply(c, state, err)
}

func (s *HTTPServer) listPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, s.mannapay.State().PaymentMethods)
}

func (s *HTTPServer) addPaymentMethod(c *gin.Context) {
	var method models.PaymentMethod
	if err := c.ShouldBindJSON(&method); err != nil {
		s.badRequest(c, err)
		return
	}
	state, err := s.mannapay.AddPaymentMethod(method)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, state.PaymentMethods)
}

func (s *HTTPServer) getNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, s.mannapay.Network())
}

func (s *HTTPServer) switchNetwork(c *gin.Context) {
	var req NetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	cfg, err := s.mannapay.SwitchNetwork(models.NetworkName(req.Network))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *HTTPServer) getRates(c *gin.Context) {
	c.JSON(http.StatusOK, s.mannapay.Rates())
}
