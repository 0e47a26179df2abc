package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/makerforge/quote3d-api/internal/application/auth"
	"github.com/makerforge/quote3d-api/internal/application/notification"
	"github.com/makerforge/quote3d-api/internal/application/payment"
	"github.com/makerforge/quote3d-api/internal/application/quotation"
	"github.com/makerforge/quote3d-api/internal/application/rateconfig"
	"github.com/makerforge/quote3d-api/internal/application/user"
	"github.com/makerforge/quote3d-api/internal/infrastructure/gateway"
	"github.com/makerforge/quote3d-api/internal/infrastructure/mail"
	infrapdf "github.com/makerforge/quote3d-api/internal/infrastructure/pdf"
	"github.com/makerforge/quote3d-api/internal/infrastructure/postgres"
	"github.com/makerforge/quote3d-api/internal/infrastructure/realtime"
	"github.com/makerforge/quote3d-api/internal/infrastructure/storage"
	httpRouter "github.com/makerforge/quote3d-api/internal/interfaces/http"
	"github.com/makerforge/quote3d-api/pkg/config"
	"github.com/makerforge/quote3d-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	quotationRepo := postgres.NewQuotationRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	rateConfigRepo := postgres.NewRateConfigRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	store, err := storage.NewLocalStore(cfg.Upload.BaseDir)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento local")
	}

	mailer, err := mail.NewMailer(cfg.SMTP)
	if err != nil {
		log.Fatal().Err(err).Msg("mailer SMTP")
	}

	hub := realtime.NewHub(log)

	razorpayClient := gateway.NewRazorpayClient(cfg.Razorpay)
	paypalClient, err := gateway.NewPaypalClient(cfg.PayPal)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente paypal")
	}
	receiptGen := infrapdf.NewReceiptGenerator(cfg.App.Name)

	authUC := auth.NewAuthUseCase(userRepo, mailer, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, cfg.App.FrontendURL)
	quotationUC := quotation.NewQuotationUseCase(
		quotationRepo, userRepo, notificationRepo, txRunner,
		store, mailer, hub, log, cfg.App.FrontendURL, cfg.App.SupportEmail,
	)
	paymentUC := payment.NewPaymentUseCase(
		paymentRepo, quotationRepo, userRepo, txRunner,
		razorpayClient, paypalClient, receiptGen, store,
		cfg.Razorpay.Secret, log,
	)
	notificationUC := notification.NewNotificationUseCase(notificationRepo, hub)
	rateConfigUC := rateconfig.NewRateConfigUseCase(rateConfigRepo, txRunner)
	userUC := user.NewUserUseCase(userRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    1 << 30, // modelos 3D de hasta 1 GiB
	})
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.FrontendURL,
		AllowCredentials: true,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	// Artefactos subidos, servidos bajo los mismos prefijos que guarda la DB.
	app.Static("/uploads", filepath.Join(store.BaseDir(), "uploads"))
	app.Static("/completed_files", filepath.Join(store.BaseDir(), "completed_files"))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		QuotationUC:      quotationUC,
		PaymentUC:        paymentUC,
		NotificationUC:   notificationUC,
		RateConfigUC:     rateConfigUC,
		UserUC:           userUC,
		UserRepo:         userRepo,
		Hub:              hub,
		JWTSecret:        cfg.JWT.Secret,
		CookieExpireDays: cfg.JWT.CookieExpireDays,
		SecureCookie:     cfg.App.Env == "production",
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
