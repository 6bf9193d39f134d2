package catalog

import (
	"fmt"
	"strings"

	"spine-backend/internal/activity"
	"spine-backend/internal/auth"
	"spine-backend/internal/database"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProductResponse struct {
	ID                   uint    `json:"id"`
	Name                 string  `json:"name"`
	Category             string  `json:"category"`
	SerialNumber         string  `json:"serial_number"`
	BulkUnitName         string  `json:"bulk_unit_name"`
	PieceUnitName        string  `json:"piece_unit_name"`
	UnitsPerBulk         int     `json:"units_per_bulk"`
	CostPricePerPiece    string  `json:"cost_price_per_piece"`
	SellingPricePerPiece string  `json:"selling_price_per_piece"`
	SellingPricePerBulk  *string `json:"selling_price_per_bulk"`
	BulkQuantity         int     `json:"bulk_quantity"`
	PieceQuantity        int     `json:"piece_quantity"`
}

type CreateProductRequest struct {
	Name                 string           `json:"name"`
	Category             string           `json:"category"`
	SerialNumber         string           `json:"serial_number"` // Opsiyonel barkod
	BulkUnitName         string           `json:"bulk_unit_name"`
	PieceUnitName        string           `json:"piece_unit_name"`
	UnitsPerBulk         int              `json:"units_per_bulk"`
	CostPricePerPiece    decimal.Decimal  `json:"cost_price_per_piece"`
	SellingPricePerPiece decimal.Decimal  `json:"selling_price_per_piece"`
	SellingPricePerBulk  *decimal.Decimal `json:"selling_price_per_bulk"` // Opsiyonel
}

type UpdateProductRequest struct {
	Name                 *string          `json:"name"`
	Category             *string          `json:"category"`
	SerialNumber         *string          `json:"serial_number"`
	CostPricePerPiece    *decimal.Decimal `json:"cost_price_per_piece"`
	SellingPricePerPiece *decimal.Decimal `json:"selling_price_per_piece"`
	SellingPricePerBulk  *decimal.Decimal `json:"selling_price_per_bulk"`
}

func toProductResponse(p *models.Product) ProductResponse {
	var bulkPrice *string
	if p.SellingPricePerBulk != nil {
		s := p.SellingPricePerBulk.StringFixed(2)
		bulkPrice = &s
	}
	return ProductResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Category:             p.Category,
		SerialNumber:         p.SerialNumber,
		BulkUnitName:         p.BulkUnitName,
		PieceUnitName:        p.PieceUnitName,
		UnitsPerBulk:         p.UnitsPerBulk,
		CostPricePerPiece:    p.CostPricePerPiece.StringFixed(2),
		SellingPricePerPiece: p.SellingPricePerPiece.StringFixed(2),
		SellingPricePerBulk:  bulkPrice,
		BulkQuantity:         p.BulkQuantity,
		PieceQuantity:        p.PieceQuantity,
	}
}

// GET /api/products?category=icecek (tüm authenticated kullanıcılar görebilir)
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})

		if cat := c.Query("category"); cat != "" {
			dbq = dbq.Where("category = ?", cat)
		}
		if serial := c.Query("serial_number"); serial != "" {
			dbq = dbq.Where("serial_number = ?", serial)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/products (sadece owner)
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.BulkUnitName = strings.TrimSpace(body.BulkUnitName)
		body.PieceUnitName = strings.TrimSpace(body.PieceUnitName)

		if body.Name == "" || body.BulkUnitName == "" || body.PieceUnitName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name, bulk_unit_name ve piece_unit_name zorunlu")
		}
		if body.UnitsPerBulk < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "units_per_bulk en az 1 olmalı")
		}
		if body.CostPricePerPiece.IsNegative() || body.SellingPricePerPiece.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyatlar negatif olamaz")
		}

		p := models.Product{
			Name:                 body.Name,
			Category:             strings.TrimSpace(body.Category),
			SerialNumber:         strings.TrimSpace(body.SerialNumber),
			BulkUnitName:         body.BulkUnitName,
			PieceUnitName:        body.PieceUnitName,
			UnitsPerBulk:         body.UnitsPerBulk,
			CostPricePerPiece:    body.CostPricePerPiece,
			SellingPricePerPiece: body.SellingPricePerPiece,
			SellingPricePerBulk:  body.SellingPricePerBulk,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		// Activity log
		if userID, userName, _, err := getUserInfoForCatalog(c); err == nil {
			_ = activity.Write(database.DB, activity.LogOptions{
				UserID:     userID,
				UserName:   userName,
				EntityType: "product",
				EntityID:   p.ID,
				Action:     models.ActivityProductCreated,
				Severity:   models.SeverityInfo,
				Details:    fmt.Sprintf("Ürün eklendi: %s (1 %s = %d %s)", p.Name, p.BulkUnitName, p.UnitsPerBulk, p.PieceUnitName),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&p))
	}
}

// PUT /api/admin/products/:id (sadece owner)
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün ID")
		}

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			p.Name = name
		}
		if body.Category != nil {
			p.Category = strings.TrimSpace(*body.Category)
		}
		if body.SerialNumber != nil {
			p.SerialNumber = strings.TrimSpace(*body.SerialNumber)
		}
		if body.CostPricePerPiece != nil {
			if body.CostPricePerPiece.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyatlar negatif olamaz")
			}
			p.CostPricePerPiece = *body.CostPricePerPiece
		}
		if body.SellingPricePerPiece != nil {
			if body.SellingPricePerPiece.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyatlar negatif olamaz")
			}
			p.SellingPricePerPiece = *body.SellingPricePerPiece
		}
		if body.SellingPricePerBulk != nil {
			p.SellingPricePerBulk = body.SellingPricePerBulk
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		return c.JSON(toProductResponse(&p))
	}
}

// DELETE /api/admin/products/:id (sadece owner)
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün ID")
		}

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		// Satış kalemi olan ürün silinemez; geçmiş fişler ürün adına referans verir
		var saleItemCount int64
		database.DB.Model(&models.SaleItem{}).Where("product_id = ?", id).Count(&saleItemCount)
		if saleItemCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Satış geçmişi olan ürün silinemez")
		}

		if err := database.DB.Where("product_id = ?", id).Delete(&models.Batch{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün partileri silinemedi")
		}
		if err := database.DB.Where("product_id = ?", id).Delete(&models.StockBalance{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün bakiyeleri silinemedi")
		}
		if err := database.DB.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Ürün silindi"})
	}
}

// Yardımcı: Kullanıcı bilgilerini al
func getUserInfoForCatalog(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", nil, fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	var outletID *uint
	oVal := c.Locals(auth.CtxOutletIDKey)
	if oPtr, ok := oVal.(*uint); ok && oPtr != nil {
		outletID = oPtr
	}

	return userID, user.Name, outletID, nil
}
