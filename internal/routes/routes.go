package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/config"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/handlers"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/livews"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/middleware"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/repository"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	classRepo := repository.NewLiveClassRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	rooms := services.NewHTTPRoomProvider(cfg.RoomProviderURL, cfg.RoomProviderKey, cfg.RoomProviderTimeout)

	hub := livews.NewHub()
	go hub.Run()

	classService := services.NewLiveClassService(classRepo)
	enrollmentService := services.NewEnrollmentService(db, classRepo)
	sessionService := services.NewSessionService(db, sessionRepo, classRepo, rooms, hub)
	paymentService := services.NewPaymentService(db, paymentRepo, classRepo, cfg.CommissionRate)

	classHandler := handlers.NewClassHandler(classService, enrollmentService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	streamHandler := handlers.NewStreamHandler(hub, cfg.JWTSecret)

	api := app.Group("/api")

	// Gateway confirmations arrive without a user token; signature checks
	// live upstream.
	api.Post("/webhooks/payments", paymentHandler.ConfirmPayment)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	classes := authProtected.Group("/classes")
	classes.Post("", classHandler.CreateClass)
	classes.Get("", classHandler.ListClasses)
	classes.Get("/:id", classHandler.GetClass)
	classes.Post("/:id/disable", classHandler.DisableClass)
	classes.Post("/:id/enroll", classHandler.Enroll)
	classes.Delete("/:id/enroll", classHandler.Withdraw)
	classes.Post("/:id/sessions/start", sessionHandler.StartSession)
	classes.Post("/:id/sessions/schedule", sessionHandler.ScheduleSession)
	classes.Get("/:id/sessions", sessionHandler.ListClassSessions)
	classes.Get("/:id/payments", paymentHandler.ListClassPayments)

	sessions := authProtected.Group("/sessions")
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Post("/:id/end", sessionHandler.EndSession)
	sessions.Post("/:id/cancel", sessionHandler.CancelSession)
	sessions.Post("/:id/join", sessionHandler.RecordJoin)
	sessions.Post("/:id/leave", sessionHandler.RecordLeave)

	payments := authProtected.Group("/payments")
	payments.Post("", paymentHandler.RecordPayment)
	payments.Post("/:id/refund", paymentHandler.Refund)

	api.Use("/v1/ws/classes/:id", streamHandler.Upgrade)
	api.Get("/v1/ws/classes/:id", websocket.New(streamHandler.HandleClassEvents))
}
