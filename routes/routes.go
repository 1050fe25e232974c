package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/federgolf/referee-system/handlers"
	"github.com/federgolf/referee-system/middleware"
)

// SetupRoutes настраивает маршруты API. Администрирование турниров,
// уведомлений и клаузул требует роли admin (зональный) либо national_admin.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	availabilityHandler *handlers.AvailabilityHandler,
	validationHandler *handlers.ValidationHandler,
	clauseHandler *handlers.ClauseHandler,
	notificationHandler *handlers.NotificationHandler,
	zoneHandler *handlers.ZoneHandler,
	institutionalHandler *handlers.InstitutionalHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.Authorize("admin", "national_admin", "super_admin")

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/login", authHandler.LoginHandler)
	router.Post("/auth/register", authHandler.RegisterHandler)

	router.Get("/zones", zoneHandler.ListHandler)
	router.Get("/zones/{zoneID}", zoneHandler.GetByIDHandler)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", tournamentHandler.CreateHandler)
			r.Put("/{tournamentID}", tournamentHandler.UpdateHandler)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatusHandler)
			r.Get("/{tournamentID}/assignments", tournamentHandler.ListAssignmentsHandler)
			r.Post("/{tournamentID}/assignments", tournamentHandler.AssignRefereeHandler)
			r.Post("/{tournamentID}/notification", notificationHandler.PrepareHandler)
			r.Get("/{tournamentID}/notification", notificationHandler.GetByTournamentHandler)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Delete("/assignments/{assignmentID}", tournamentHandler.RemoveAssignmentHandler)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/{notificationID}", notificationHandler.GetHandler)
			r.Put("/{notificationID}/metadata", notificationHandler.UpdateMetadataHandler)
			r.Put("/{notificationID}/clauses", notificationHandler.SaveClausesHandler)
			r.Post("/{notificationID}/documents", notificationHandler.GenerateDocumentsHandler)
			r.Post("/{notificationID}/documents/{documentType}", notificationHandler.RegenerateDocumentHandler)
			r.Post("/{notificationID}/send", notificationHandler.SendHandler)
		})

		r.Route("/validation", func(r chi.Router) {
			r.Get("/conflicts", validationHandler.ConflictsHandler)
			r.Get("/summary", validationHandler.SummaryHandler)
		})

		r.Post("/clauses", clauseHandler.CreateHandler)
		r.Put("/clauses/{clauseID}", clauseHandler.UpdateHandler)
		r.Delete("/clauses/{clauseID}", clauseHandler.DeleteHandler)

		r.Get("/institutional-emails", institutionalHandler.ListHandler)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/clauses", clauseHandler.ListHandler)
		r.Get("/clauses/placeholders", clauseHandler.PlaceholdersHandler)

		r.Put("/profile", authHandler.UpdateProfileHandler)

		r.Route("/availabilities", func(r chi.Router) {
			r.Post("/", availabilityHandler.DeclareHandler)
			r.Get("/", availabilityHandler.ListMineHandler)
			r.Delete("/{availabilityID}", availabilityHandler.WithdrawHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
