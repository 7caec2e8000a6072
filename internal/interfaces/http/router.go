package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger/internal/application/availability"
	"github.com/jhoicas/stockledger/internal/application/bom"
	"github.com/jhoicas/stockledger/internal/application/costing"
	"github.com/jhoicas/stockledger/internal/application/importer"
	"github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/application/substitution"
	"github.com/jhoicas/stockledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	LocationUC    *usecase.LocationUseCase
	Ledger        *inventory.LedgerUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Costing       *costing.UseCase
	BOM           *bom.UseCase
	Availability  *availability.UseCase
	Substitution  *substitution.UseCase
	Importer      *importer.UseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras
// además exigen rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	canOperate := RequireRole(RoleAdmin, RoleOperator)
	canPlan := RequireRole(RoleAdmin, RolePlanner)
	adminOnly := RequireRole(RoleAdmin)

	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", canPlan, productHandler.Create)
	products.Put("/:id", canPlan, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Retire)
	api.Get("/usage/products", productHandler.Usage)

	locationHandler := NewLocationHandler(deps.LocationUC)
	locations := api.Group("/locations")
	locations.Get("/", locationHandler.List)
	locations.Post("/", adminOnly, locationHandler.Create)

	ledgerHandler := NewLedgerHandler(deps.Ledger)
	ledger := api.Group("/ledger")
	ledger.Post("/transactions", canOperate, ledgerHandler.Append)
	ledger.Get("/transactions", ledgerHandler.List)
	ledger.Get("/replay", ledgerHandler.Replay)
	ledger.Post("/reservations", canOperate, ledgerHandler.Reserve)

	valuationHandler := NewValuationHandler(deps.Costing)
	valuation := api.Group("/valuation")
	valuation.Get("/", valuationHandler.Get)
	valuation.Post("/cost-preview", valuationHandler.CostPreview)
	valuation.Get("/report.pdf", valuationHandler.ReportPDF)

	bomHandler := NewBOMHandler(deps.BOM, deps.Availability)
	boms := api.Group("/boms")
	boms.Post("/:productId/versions", canPlan, bomHandler.SaveVersion)
	boms.Get("/:productId/versions", bomHandler.Versions)
	boms.Get("/:productId/active", bomHandler.Active)
	boms.Get("/:productId/explode", bomHandler.Explode)
	api.Get("/atp/:productId", bomHandler.ATP)

	reorderHandler := NewReorderHandler(deps.Replenishment)
	reorder := api.Group("/reorder")
	reorder.Post("/suggest", reorderHandler.Suggest)
	reorder.Get("/replenishment-list", reorderHandler.ReplenishmentList)
	reorder.Get("/:productId", reorderHandler.ForProduct)

	substitutionHandler := NewSubstitutionHandler(deps.Substitution)
	subs := api.Group("/substitutions")
	subs.Get("/preview", substitutionHandler.Preview)
	subs.Post("/execute", canPlan, substitutionHandler.Execute)

	importHandler := NewImportHandler(deps.Importer)
	api.Post("/import/products", adminOnly, importHandler.Products)
}
