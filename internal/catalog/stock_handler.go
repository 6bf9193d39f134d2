package catalog

import (
	"fmt"
	"time"

	"spine-backend/internal/auth"
	"spine-backend/internal/database"
	"spine-backend/internal/ledger"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RestockRequest struct {
	ProductID     uint   `json:"product_id"`
	BulkQuantity  int    `json:"bulk_quantity"`
	PieceQuantity int    `json:"piece_quantity"`
	ExpiryDate    string `json:"expiry_date"`   // "2026-03-15", boş = SKT'siz
	SerialNumber  string `json:"serial_number"` // opsiyonel barkod
	OutletID      *uint  `json:"outlet_id"`     // owner için
}

type RestockResponse struct {
	BatchID       uint   `json:"batch_id"`
	ProductID     uint   `json:"product_id"`
	OutletID      uint   `json:"outlet_id"`
	BulkQuantity  int    `json:"bulk_quantity"`
	PieceQuantity int    `json:"piece_quantity"`
	ExpiryDate    string `json:"expiry_date,omitempty"`
	AddedAt       string `json:"added_at"`
}

// body'den gelen outlet_id + role
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

// POST /api/products/:id/restock
func RestockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var productID uint
		if _, err := fmt.Sscan(c.Params("id"), &productID); err != nil || productID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün ID")
		}

		var body RestockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		outletID, err := resolveOutletIDFromBodyOrRole(c, body.OutletID)
		if err != nil {
			return err
		}

		var expiry *time.Time
		if body.ExpiryDate != "" {
			d, err := time.Parse("2006-01-02", body.ExpiryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "expiry_date formatı 'YYYY-MM-DD' olmalı")
			}
			expiry = &d
		}

		userID, userName, _, err := getUserInfoForCatalog(c)
		if err != nil {
			return err
		}

		var batch *models.Batch
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			batch, err = Restock(tx, RestockInput{
				ProductID:        productID,
				OutletID:         outletID,
				BulkQuantity:     body.BulkQuantity,
				PieceQuantity:    body.PieceQuantity,
				ExpiryDate:       expiry,
				SerialNumber:     body.SerialNumber,
				ReceivedByUserID: userID,
				ReceivedByName:   userName,
			})
			return err
		})
		if txErr != nil {
			switch txErr {
			case ledger.ErrProductNotFound:
				return fiber.NewError(fiber.StatusNotFound, txErr.Error())
			case ErrOutletNotFound:
				return fiber.NewError(fiber.StatusNotFound, txErr.Error())
			case ErrZeroQuantity:
				return fiber.NewError(fiber.StatusBadRequest, txErr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Stok girişi kaydedilemedi")
		}

		resp := RestockResponse{
			BatchID:       batch.ID,
			ProductID:     batch.ProductID,
			OutletID:      batch.OutletID,
			BulkQuantity:  batch.BulkQuantity,
			PieceQuantity: batch.PieceQuantity,
			AddedAt:       batch.AddedAt.Format("2006-01-02 15:04:05"),
		}
		if batch.ExpiryDate != nil {
			resp.ExpiryDate = batch.ExpiryDate.Format("2006-01-02")
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

type BalanceResponse struct {
	ProductID     uint `json:"product_id"`
	OutletID      uint `json:"outlet_id"`
	BulkQuantity  int  `json:"bulk_quantity"`
	PieceQuantity int  `json:"piece_quantity"`
}

// GET /api/stock/balance?product_id=1&outlet_id=1
func GetBalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var productID, outletID uint
		if _, err := fmt.Sscan(c.Query("product_id"), &productID); err != nil || productID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id geçersiz")
		}
		if _, err := fmt.Sscan(c.Query("outlet_id"), &outletID); err != nil || outletID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "outlet_id geçersiz")
		}

		bal, err := ledger.GetBalance(database.DB, productID, outletID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bakiye okunamadı")
		}

		return c.JSON(BalanceResponse{
			ProductID:     productID,
			OutletID:      outletID,
			BulkQuantity:  bal.BulkQuantity,
			PieceQuantity: bal.PieceQuantity,
		})
	}
}
