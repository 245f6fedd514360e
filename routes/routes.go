package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/swisscut/handlers"
	"github.com/Dosada05/swisscut/middleware"
)

type Options struct {
	// JWTSecret пустой: маршруты организатора не регистрируются.
	JWTSecret      []byte
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	catalogHandler *handlers.CatalogHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// websocket живёт дольше любого таймаута запроса
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/identities", catalogHandler.ListIdentities)
		r.Get("/cards", catalogHandler.GetCard)

		r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
			r.Get("/standings", tournamentHandler.GetStandings)
			r.Get("/rounds/{round}", tournamentHandler.GetRound)
			r.Get("/cut", tournamentHandler.GetCut)
			r.Get("/cut/rounds/{round}", tournamentHandler.GetCutRound)
			r.Get("/report", tournamentHandler.GetReport)

			if len(opts.JWTSecret) == 0 {
				if opts.Logger != nil {
					opts.Logger.Warn("JWT secret not configured, organizer routes disabled")
				}
				return
			}

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(opts.JWTSecret, opts.Logger))
				r.Use(middleware.RequireRole(middleware.RoleOrganizer))

				r.Post("/cut", tournamentHandler.OpenCut)
				r.Post("/cut/advance", tournamentHandler.AdvanceCut)
				r.Post("/report/publish", tournamentHandler.PublishReport)
			})
		})
	})
}
