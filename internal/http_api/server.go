package http_api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mannapay/mannapay/internal/ledger"
	"github.com/mannapay/mannapay/internal/mannapay"
	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second
)

// MannaPayI is the orchestration surface the API drives.
type MannaPayI interface {
	State() ledger.State
	Summary() mannapay.Summary

	Connect(ctx context.Context) (ledger.State, error)
	Disconnect() ledger.State
	UpdateBalance(currency models.Currency, amount decimal.Decimal) (ledger.State, error)
	RefreshBalances(ctx context.Context) (ledger.State, error)

	Platforms(category models.Category) []models.Platform
	Subscriptions() []mannapay.SubscriptionView
	Subscribe(ctx context.Context, req mannapay.SubscribeRequest) (*mannapay.SubscribeResult, error)
	Cancel(id string) (ledger.State, error)
	Pause(id string) (ledger.State, error)
	Resume(id string) (ledger.State, error)
	TransactionStatus(ctx context.Context, hash string) models.TxStatus

	UpdateProfile(patch models.UserProfilePatch) (ledger.State, error)
	SetCurrency(currency models.Currency) (ledger.State, error)
	AddPaymentMethod(method models.PaymentMethod) (ledger.State, error)

	Network() models.NetworkConfig
	SwitchNetwork(name models.NetworkName) (models.NetworkConfig, error)
	Rates() map[models.Currency]decimal.Decimal
}

// HTTPServer is the HTTP server struct that will serve the API
type HTTPServer struct {
	// logger is the logger instance
	logger *logger.Logger

	// router is the HTTP router
	router *gin.Engine
	// addr is the host:port the server listens on
	addr string

	// server is the underlying HTTP server
	server *http.Server

	// mannapay is the orchestration layer
	mannapay MannaPayI
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(mannapay MannaPayI, addr string, logger *logger.Logger) *HTTPServer {
	router := gin.Default()
	router.Use(corsMiddleware())

	server := &HTTPServer{
		router:   router,
		addr:     addr,
		mannapay: mannapay,
		logger:   logger.Named("http"),
	}

	server.routes()

	return server
}

// Start serves until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infow("Starting HTTP server", "address", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start the HTTP server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *HTTPServer) Shutdown() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server shut down successfully")
	return nil
}
