package server

// RegisterGameRoutes registers routes for both round-based games
func (s *FiberServer) RegisterGameRoutes() {
	api := s.App.Group("/api/v1")

	// Rocket game routes
	rocket := api.Group("/rocket")
	rocket.Get("/state", s.rocketStateHandler)
	rocket.Get("/history", s.rocketHistoryHandler)
	rocket.Post("/bet", s.rocketBetHandler)
	rocket.Post("/cashout", s.rocketCashoutHandler)

	// Roulette game routes
	roulette := api.Group("/roulette")
	roulette.Get("/state", s.rouletteStateHandler)
	roulette.Get("/history", s.rouletteHistoryHandler)
	roulette.Post("/bet", s.rouletteBetHandler)
}
