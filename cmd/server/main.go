package main

import (
	"log"
	"strings"

	"spine-backend/internal/activity"
	"spine-backend/internal/adjustment"
	"spine-backend/internal/admin"
	"spine-backend/internal/alerts"
	"spine-backend/internal/auth"
	"spine-backend/internal/catalog"
	"spine-backend/internal/config"
	"spine-backend/internal/dashboard"
	"spine-backend/internal/database"
	"spine-backend/internal/debts"
	"spine-backend/internal/models"
	"spine-backend/internal/reports"
	"spine-backend/internal/sales"
	"spine-backend/internal/transfer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den temizle
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-owner", auth.RegisterOwnerHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Owner routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleOwner))

	// Şube yönetimi
	adminRoutes.Post("/outlets", admin.CreateOutletHandler())
	adminRoutes.Get("/outlets", admin.ListOutletsHandler())
	adminRoutes.Get("/outlets/:id", admin.GetOutletHandler())
	adminRoutes.Put("/outlets/:id", admin.UpdateOutletHandler())
	adminRoutes.Delete("/outlets/:id", admin.DeleteOutletHandler())
	adminRoutes.Post("/outlets/:id/staff", admin.CreateStaffHandler())
	adminRoutes.Get("/outlets/:id/staff", admin.ListStaffHandler())

	// Ürün yönetimi
	adminRoutes.Post("/products", catalog.CreateProductHandler())
	adminRoutes.Put("/products/:id", catalog.UpdateProductHandler())
	adminRoutes.Delete("/products/:id", catalog.DeleteProductHandler())

	// Ortak (auth gerektiren) route'lar

	// Ürünler ve stok
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Post("/products/:id/restock", catalog.RestockHandler())
	protected.Get("/stock/balance", catalog.GetBalanceHandler())

	// Satış
	protected.Post("/sales", sales.CreateSaleHandler(cfg))
	protected.Get("/sales", sales.ListSalesHandler())
	protected.Get("/sales/:id", sales.GetSaleHandler())
	protected.Post("/sales/:id/void", sales.VoidSaleHandler())

	// Veresiye defteri
	protected.Post("/customers", debts.CreateCustomerHandler())
	protected.Get("/customers", debts.ListCustomersHandler())
	protected.Get("/customers/:id/sales", debts.ListCustomerSalesHandler())
	protected.Post("/customers/:id/repayments", debts.CreateRepaymentHandler())
	protected.Get("/customers/:id/repayments", debts.ListCustomerRepaymentsHandler())

	// Şubeler arası stok taşıma
	protected.Post("/transfers", transfer.CreateTransferHandler())
	protected.Get("/transfers", transfer.ListTransfersHandler())

	// Stok düzeltme (fire, kayıp, iade, SKT geçmiş)
	protected.Post("/adjustments", adjustment.CreateAdjustmentHandler(cfg))
	protected.Get("/adjustments", adjustment.ListAdjustmentsHandler())

	// Uyarılar
	protected.Get("/alerts", alerts.ListAlertsHandler())

	// İşlem günlüğü
	protected.Get("/activity-logs", activity.ListActivityLogsHandler())

	// Dashboard
	protected.Get("/dashboard/sales-chart", dashboard.SalesChartHandler())

	// Aylık raporlama
	protected.Get("/reports/monthly", reports.MonthlyReportHandler())
	protected.Get("/reports/monthly/export", reports.MonthlyReportExportHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
