package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/openarena/bracket-engine/handlers"
)

// SetupRoutes wires the engine's HTTP surface: bracket generation, matchup
// result recording, standings and leaderboard recomputation, and the
// websocket subscription endpoint.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Post("/bracket", bracketHandler.Generate)
			r.Get("/matchups", bracketHandler.List)
			r.Post("/byes/propagate", matchHandler.PropagateByes)
		})

		r.Post("/standings/recalculate", standingsHandler.Recalculate)
		r.Get("/standings", standingsHandler.List)

		r.Post("/leaderboard/rebuild", leaderboardHandler.Rebuild)
		r.Get("/leaderboard", leaderboardHandler.List)
	})

	router.Route("/matchups/{matchupID}", func(r chi.Router) {
		r.Put("/result", matchHandler.SubmitResult)
		r.Patch("/status", matchHandler.UpdateStatus)
		r.Post("/dispute", matchHandler.FlagDispute)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
