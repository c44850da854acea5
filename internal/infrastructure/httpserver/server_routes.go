package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	protected := api.Group("")
	protected.Use(s.middleware.JWT.RequireJWT())
	// Rate limiting keys on the authenticated user, so it runs after JWT.
	protected.Use(s.middleware.RateLimit.Handler())

	users := protected.Group("/users")
	users.GET("/me", s.getOwnProfile)
	users.PUT("/me", s.updateOwnProfile)
	users.GET("/:id", s.getProfile)

	friends := protected.Group("/friends")
	friends.GET("", s.listFriends)
	friends.POST("/requests", s.sendFriendRequest)
	friends.GET("/requests", s.listPendingRequests)
	friends.GET("/requests/sent", s.listSentRequests)
	friends.PUT("/requests/:id/accept", s.acceptFriendRequest)
	friends.PUT("/requests/:id/decline", s.declineFriendRequest)
	friends.DELETE("/:id", s.removeFriend)
	friends.GET("/share-targets", s.listShareTargets)
	friends.POST("/invites", s.sendInvite)
	friends.POST("/invites/redeem", s.redeemInvite)

	chats := protected.Group("/chats")
	chats.GET("", s.listChats)
	chats.POST("/direct/:user_id", s.openDirectChat)
	chats.GET("/:id/messages", s.listMessages)
	chats.POST("/:id/messages", s.sendMessage)
	chats.POST("/:id/reads", s.markRead)
	chats.GET("/:id/receipts", s.listReceipts)
	chats.GET("/:id/unread", s.getUnread)

	messages := protected.Group("/messages")
	messages.POST("/:id/reactions", s.toggleReaction)
	messages.GET("/:id/reactions", s.getReactions)
	messages.GET("/:id/reactions/totals", s.getReactionTotals)

	assistant := protected.Group("/assistant")
	assistant.POST("/messages", s.sendAssistantMessage)
	assistant.GET("/messages", s.listAssistantHistory)
}
