package sales

import (
	"errors"
	"fmt"
	"time"

	"spine-backend/internal/auth"
	"spine-backend/internal/config"
	"spine-backend/internal/database"
	"spine-backend/internal/ledger"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SaleItemRequest struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitType  string `json:"unit_type"` // "piece" veya "bulk"
}

type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items"`
	PaymentMethod string            `json:"payment_method"`
	CustomerID    *uint             `json:"customer_id"` // veresiye için zorunlu
	OutletID      *uint             `json:"outlet_id"`   // owner için
}

type SaleItemResponse struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	PriceAtSale string `json:"price_at_sale"`
	UnitType    string `json:"unit_type"`
}

type SaleResponse struct {
	ID            uint               `json:"id"`
	ReceiptNo     string             `json:"receipt_no"`
	OutletID      uint               `json:"outlet_id"`
	Timestamp     string             `json:"timestamp"`
	TotalAmount   string             `json:"total_amount"`
	TotalProfit   string             `json:"total_profit"`
	PaymentMethod string             `json:"payment_method"`
	CustomerID    *uint              `json:"customer_id"`
	AmountPaid    string             `json:"amount_paid"`
	BalanceDue    string             `json:"balance_due"`
	Items         []SaleItemResponse `json:"items"`
	Clamped       bool               `json:"clamped,omitempty"` // lenient politikada kısmi düşüm
}

func toSaleResponse(s *models.Sale, clamped bool) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SaleItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			PriceAtSale: it.PriceAtSale.StringFixed(2),
			UnitType:    string(it.UnitType),
		})
	}
	return SaleResponse{
		ID:            s.ID,
		ReceiptNo:     s.ReceiptNo,
		OutletID:      s.OutletID,
		Timestamp:     s.Timestamp.Format("2006-01-02 15:04:05"),
		TotalAmount:   s.TotalAmount.StringFixed(2),
		TotalProfit:   s.TotalProfit.StringFixed(2),
		PaymentMethod: string(s.PaymentMethod),
		CustomerID:    s.CustomerID,
		AmountPaid:    s.AmountPaid.StringFixed(2),
		BalanceDue:    s.BalanceDue.StringFixed(2),
		Items:         items,
		Clamped:       clamped,
	}
}

// Yardımcı: Kullanıcı bilgilerini al
func getUserInfoForSales(c *fiber.Ctx) (uint, string, *uint, error) {
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

func resolveOutletIDFromBodyOrRole(c *fiber.Ctx, bodyOutletID *uint) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleStaff {
		oVal := c.Locals(auth.CtxOutletIDKey)
		oPtr, ok := oVal.(*uint)
		if !ok || oPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		return *oPtr, nil
	}

	// owner
	if bodyOutletID == nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "outlet_id zorunlu")
	}
	return *bodyOutletID, nil
}

// POST /api/sales
func CreateSaleHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		outletID, err := resolveOutletIDFromBodyOrRole(c, body.OutletID)
		if err != nil {
			return err
		}

		userID, userName, _, err := getUserInfoForSales(c)
		if err != nil {
			return err
		}

		items := make([]ItemInput, 0, len(body.Items))
		for _, it := range body.Items {
			items = append(items, ItemInput{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitType:  models.SaleUnitType(it.UnitType),
			})
		}

		var result *RecordResult
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			result, err = Record(tx, RecordInput{
				OutletID:         outletID,
				Items:            items,
				PaymentMethod:    models.PaymentMethod(body.PaymentMethod),
				CustomerID:       body.CustomerID,
				RecordedByUserID: userID,
				RecordedByName:   userName,
			}, cfg.StockPolicy)
			return err
		})
		if txErr != nil {
			switch {
			case errors.Is(txErr, ErrOutletNotFound),
				errors.Is(txErr, ErrCustomerNotFound),
				errors.Is(txErr, ledger.ErrProductNotFound):
				return fiber.NewError(fiber.StatusNotFound, txErr.Error())
			case errors.Is(txErr, ledger.ErrInsufficientStock):
				return fiber.NewError(fiber.StatusBadRequest, txErr.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, txErr.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(toSaleResponse(result.Sale, result.Clamped))
	}
}

// POST /api/sales/:id/void
func VoidSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var saleID uint
		if _, err := fmt.Sscan(c.Params("id"), &saleID); err != nil || saleID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satış ID")
		}

		userID, userName, _, err := getUserInfoForSales(c)
		if err != nil {
			return err
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			return Void(tx, saleID, userID, userName)
		})
		if txErr != nil {
			if errors.Is(txErr, ErrSaleNotFound) {
				return fiber.NewError(fiber.StatusNotFound, txErr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Satış iptal edilemedi")
		}

		return c.JSON(fiber.Map{"message": "Satış iptal edildi, stok geri alındı"})
	}
}

// GET /api/sales?outlet_id=1&from=2026-08-01&to=2026-08-31&payment_method=debt
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(auth.CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
		}

		dbq := database.DB.Model(&models.Sale{}).Preload("Items")

		if role == models.RoleStaff {
			oPtr, ok := c.Locals(auth.CtxOutletIDKey).(*uint)
			if !ok || oPtr == nil {
				return fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
			}
			dbq = dbq.Where("outlet_id = ?", *oPtr)
		} else if oidStr := c.Query("outlet_id"); oidStr != "" {
			var oid uint
			if _, err := fmt.Sscan(oidStr, &oid); err != nil || oid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "outlet_id geçersiz")
			}
			dbq = dbq.Where("outlet_id = ?", oid)
		}

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("timestamp >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			dbq = dbq.Where("timestamp < ?", to.AddDate(0, 0, 1))
		}
		if pm := c.Query("payment_method"); pm != "" {
			dbq = dbq.Where("payment_method = ?", pm)
		}

		var salesList []models.Sale
		if err := dbq.Order("timestamp DESC, id DESC").Find(&salesList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		resp := make([]SaleResponse, 0, len(salesList))
		for i := range salesList {
			resp = append(resp, toSaleResponse(&salesList[i], false))
		}
		return c.JSON(resp)
	}
}

// GET /api/sales/:id
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var saleID uint
		if _, err := fmt.Sscan(c.Params("id"), &saleID); err != nil || saleID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satış ID")
		}

		var sale models.Sale
		if err := database.DB.Preload("Items").First(&sale, "id = ?", saleID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		return c.JSON(toSaleResponse(&sale, false))
	}
}
