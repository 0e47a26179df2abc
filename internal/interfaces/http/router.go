package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/makerforge/quote3d-api/internal/application/auth"
	"github.com/makerforge/quote3d-api/internal/application/notification"
	"github.com/makerforge/quote3d-api/internal/application/payment"
	"github.com/makerforge/quote3d-api/internal/application/quotation"
	"github.com/makerforge/quote3d-api/internal/application/rateconfig"
	"github.com/makerforge/quote3d-api/internal/application/user"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
	"github.com/makerforge/quote3d-api/internal/infrastructure/realtime"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	QuotationUC      *quotation.QuotationUseCase
	PaymentUC        *payment.PaymentUseCase
	NotificationUC   *notification.NotificationUseCase
	RateConfigUC     *rateconfig.RateConfigUseCase
	UserUC           *user.UserUseCase
	UserRepo         repository.UserRepository
	Hub              *realtime.Hub
	JWTSecret        string
	CookieExpireDays int
	SecureCookie     bool
}

// Router registra las rutas de la API bajo /api/v1.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1")
	authMW := AuthMiddleware(deps.JWTSecret, deps.UserRepo)
	adminOnly := RequireRole(entity.RoleAdmin)
	ownerRoles := RequireRole(entity.RoleUser, entity.RoleCompany)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, deps.CookieExpireDays, deps.SecureCookie)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/verify-email/:code", authHandler.VerifyEmail)
	authGroup.Post("/resend-verification", authHandler.ResendVerification)
	authGroup.Get("/me", authMW, authHandler.Me)
	authGroup.Get("/logout", authMW, authHandler.Logout)
	authGroup.Put("/updatedetails", authMW, authHandler.UpdateDetails)
	authGroup.Put("/updatepassword", authMW, authHandler.UpdatePassword)

	// Quotations
	quotationHandler := NewQuotationHandler(deps.QuotationUC)
	quotations := api.Group("/quotations", authMW)
	quotations.Get("/", adminOnly, quotationHandler.List)
	quotations.Post("/", quotationHandler.Create)
	quotations.Get("/my-quotations", quotationHandler.MyQuotations)
	quotations.Get("/user/:id", adminOnly, quotationHandler.ListByUser)
	quotations.Get("/:id", quotationHandler.Get)
	quotations.Put("/:id", quotationHandler.Update)
	quotations.Delete("/:id", adminOnly, quotationHandler.Delete)
	quotations.Put("/:id/quote", adminOnly, quotationHandler.RaiseQuote)
	quotations.Put("/:id/update-hour", adminOnly, quotationHandler.UpdateHour)
	quotations.Put("/:id/decision", ownerRoles, quotationHandler.Decision)
	quotations.Put("/:id/decisionpo", ownerRoles, quotationHandler.DecisionPO)
	quotations.Put("/:id/ongoing", adminOnly, quotationHandler.Ongoing)
	quotations.Put("/:id/complete", adminOnly, quotationHandler.Complete)
	quotations.Put("/:id/po-status", ownerRoles, quotationHandler.PoStatus)

	// Payments
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	payments := api.Group("/payments", authMW)
	payments.Post("/order", paymentHandler.CreateOrder)
	payments.Post("/verify", paymentHandler.Verify)
	payments.Get("/history", paymentHandler.History)
	payments.Post("/purchase-order", paymentHandler.PurchaseOrder)
	payments.Get("/:id/receipt", paymentHandler.Receipt)

	// Notifications
	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	notifications := api.Group("/notifications", authMW)
	notifications.Get("/", notificationHandler.List)
	notifications.Put("/:id/read", notificationHandler.MarkRead)
	notifications.Delete("/:id", notificationHandler.Delete)

	// Rate config (solo /current es pública)
	rateConfigHandler := NewRateConfigHandler(deps.RateConfigUC)
	rates := api.Group("/rateconfig")
	rates.Get("/current", rateConfigHandler.Current)
	rates.Get("/", authMW, adminOnly, rateConfigHandler.List)
	rates.Post("/", authMW, adminOnly, rateConfigHandler.Create)
	rates.Get("/:id", authMW, adminOnly, rateConfigHandler.Get)
	rates.Put("/:id", authMW, adminOnly, rateConfigHandler.Update)
	rates.Delete("/:id", authMW, adminOnly, rateConfigHandler.Delete)

	// Users (hours primero: no es solo-admin, la regla vive en el caso de uso)
	userHandler := NewUserHandler(deps.UserUC)
	api.Get("/users/:id/hours", authMW, userHandler.Hours)
	users := api.Group("/users", authMW, adminOnly)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Real-time
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", authMW, websocket.New(deps.Hub.Handler()))
}
