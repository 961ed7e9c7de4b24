package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jhoicas/traslados-api/docs"
	"github.com/jhoicas/traslados-api/internal/application/auth"
	"github.com/jhoicas/traslados-api/internal/application/transfer"
	infrapdf "github.com/jhoicas/traslados-api/internal/infrastructure/pdf"
	"github.com/jhoicas/traslados-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/traslados-api/internal/interfaces/http"
	"github.com/jhoicas/traslados-api/pkg/clock"
	"github.com/jhoicas/traslados-api/pkg/config"
	"github.com/jhoicas/traslados-api/pkg/logger"
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
	branchRepo := postgres.NewBranchRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	historyRepo := postgres.NewStatusHistoryRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	clk := clock.System{}

	validator := transfer.NewRequestValidator(branchRepo, productRepo, userRepo, clk)
	authority := transfer.NewApprovalAuthority(transfer.ApprovalPolicy{
		ManagerApprovalThreshold:      cfg.Transfer.ManagerApprovalThreshold,
		EmergencyAutoApproveThreshold: cfg.Transfer.EmergencyAutoApproveThreshold,
	})
	estimator := transfer.EstimatorConfig{
		RatePerKMKG: cfg.Transfer.CostRatePerKMKG,
		MinimumCost: cfg.Transfer.MinimumCost,
	}

	createUC := transfer.NewCreateTransferUseCase(txRunner, validator, authority, estimator, clk, log)
	workflowUC := transfer.NewWorkflowUseCase(txRunner, userRepo, authority, clk, log)
	queryUC := transfer.NewQueryUseCase(transferRepo, historyRepo, userRepo, clk)

	// PDF: remisión que acompaña la mercancía entre sucursales
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	documentUC := transfer.NewDocumentUseCase(queryUC, transferRepo, branchRepo, productRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Traslados API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateTransfer: createUC,
		Workflow:       workflowUC,
		Query:          queryUC,
		Document:       documentUC,
		AuthUC:         authUC,
		JWTSecret:      cfg.JWT.Secret,
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
