package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/traslados-api/internal/application/auth"
	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateTransfer *transfer.CreateTransferUseCase
	Workflow       *transfer.WorkflowUseCase
	Query          *transfer.QueryUseCase
	Document       *transfer.DocumentUseCase
	AuthUC         *auth.AuthUseCase
	JWTSecret      string
}

// Roles con acceso al motor de traslados. Las reglas finas (umbral gerencial,
// alcance de sucursal) se deciden en los casos de uso.
var transferRoles = []string{
	string(entity.RoleAdmin),
	string(entity.RoleGerenteGeneral),
	string(entity.RoleGerenteSucursal),
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token + rol conocido)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole(transferRoles...))

	// Transfers (protegido)
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.CreateTransfer, deps.Workflow, deps.Query, deps.Document)
	transfers.Post("/", transferHandler.Create)
	transfers.Post("/bulk", transferHandler.CreateBulk)
	transfers.Post("/emergency", transferHandler.CreateEmergency)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/summary", transferHandler.Summary)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Get("/:id/history", transferHandler.History)
	transfers.Get("/:id/document", transferHandler.Document)
	transfers.Post("/:id/approve", transferHandler.Approve)
	transfers.Post("/:id/ship", transferHandler.Ship)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Post("/:id/cancel", transferHandler.Cancel)
}
