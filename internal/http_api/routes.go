package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	v1 := s.router.Group("/api/v1")

	v1.GET("/state", s.getState)
	v1.GET("/summary", s.getSummary)

	v1.POST("/wallet/connect", s.connectWallet)
	v1.POST("/wallet/disconnect", s.disconnectWallet)
	v1.PUT("/wallet/balances/:currency", s.updateBalance)
	v1.POST("/wallet/refresh", s.refreshBalances)

	v1.GET("/platforms", s.listPlatforms)

	v1.GET("/subscriptions", s.listSubscriptions)
	v1.POST("/subscriptions", s.subscribe)
	v1.POST("/subscriptions/:id/cancel", s.cancelSubscription)
	v1.POST("/subscriptions/:id/pause", s.pauseSubscription)
	v1.POST("/subscriptions/:id/resume", s.resumeSubscription)

	v1.GET("/transactions", s.listTransactions)
	v1.GET("/transactions/:hash/status", s.transactionStatus)

	v1.PUT("/profile", s.updateProfile)
	v1.PUT("/currency", s.setCurrency)
	v1.GET("/payment-methods", s.listPaymentMethods)
	v1.POST("/payment-methods", s.addPaymentMethod)

	v1.GET("/network", s.getNetwork)
	v1.PUT("/network", s.switchNetwork)
	v1.GET("/rates", s.getRates)
}
