package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Validator *inventory.Validator
	Executor  *inventory.Executor
	Facade    *inventory.Facade
	Report    *inventory.ReportUseCase
	Reversal  *inventory.ReversalUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	inventoryHandler := NewInventoryHandler(deps.Validator, deps.Executor)
	inv := protected.Group("/inventory")
	inv.Post("/validate", inventoryHandler.Validate)
	inv.Post("/deduct", inventoryHandler.Deduct)

	saleHandler := NewSaleHandler(deps.Facade, deps.Report, deps.Reversal)
	sales := protected.Group("/sales")
	sales.Post("/checkout", saleHandler.Checkout)
	sales.Get("/:id/movements.pdf", saleHandler.MovementsPDF)
	sales.Get("/:id/movements", saleHandler.Movements)
	sales.Post("/:id/reversal", RequireRole(jwt.RoleAdmin), saleHandler.Reverse)
}
