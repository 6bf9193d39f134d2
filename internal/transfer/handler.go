package transfer

import (
	"errors"
	"fmt"

	"spine-backend/internal/auth"
	"spine-backend/internal/database"
	"spine-backend/internal/ledger"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateTransferRequest struct {
	ProductID     uint   `json:"product_id"`
	FromOutletID  uint   `json:"from_outlet_id"`
	ToOutletID    uint   `json:"to_outlet_id"`
	BulkQuantity  int    `json:"bulk_quantity"`
	PieceQuantity int    `json:"piece_quantity"`
	Note          string `json:"note"`
}

type TransferResponse struct {
	ID            uint   `json:"id"`
	ProductID     uint   `json:"product_id"`
	FromOutletID  uint   `json:"from_outlet_id"`
	ToOutletID    uint   `json:"to_outlet_id"`
	BulkQuantity  int    `json:"bulk_quantity"`
	PieceQuantity int    `json:"piece_quantity"`
	Note          string `json:"note"`
	CreatedAt     string `json:"created_at"`
}

// Yardımcı: Kullanıcı bilgilerini al
func getUserInfoForTransfer(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	return userID, user.Name, nil
}

// POST /api/transfers
func CreateTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ProductID == 0 || body.FromOutletID == 0 || body.ToOutletID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id, from_outlet_id ve to_outlet_id zorunlu")
		}

		// Personel yalnızca kendi şubesinden taşıma başlatabilir
		roleVal := c.Locals(auth.CtxUserRoleKey)
		if role, ok := roleVal.(models.UserRole); ok && role == models.RoleStaff {
			oPtr, ok := c.Locals(auth.CtxOutletIDKey).(*uint)
			if !ok || oPtr == nil {
				return fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
			}
			if *oPtr != body.FromOutletID {
				return fiber.NewError(fiber.StatusForbidden, "Sadece kendi şubenizden taşıma yapabilirsiniz")
			}
		}

		userID, userName, err := getUserInfoForTransfer(c)
		if err != nil {
			return err
		}

		var rec *models.StockTransfer
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			rec, err = Move(tx, MoveInput{
				ProductID:         body.ProductID,
				FromOutletID:      body.FromOutletID,
				ToOutletID:        body.ToOutletID,
				BulkQuantity:      body.BulkQuantity,
				PieceQuantity:     body.PieceQuantity,
				PerformedByUserID: userID,
				PerformedByName:   userName,
				Note:              body.Note,
			})
			return err
		})
		if txErr != nil {
			switch {
			case errors.Is(txErr, ledger.ErrProductNotFound), errors.Is(txErr, ErrOutletNotFound):
				return fiber.NewError(fiber.StatusNotFound, txErr.Error())
			case errors.Is(txErr, ErrSameOutlet), errors.Is(txErr, ErrZeroQuantity), errors.Is(txErr, ErrInsufficientStock):
				return fiber.NewError(fiber.StatusBadRequest, txErr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Taşıma kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(TransferResponse{
			ID:            rec.ID,
			ProductID:     rec.ProductID,
			FromOutletID:  rec.FromOutletID,
			ToOutletID:    rec.ToOutletID,
			BulkQuantity:  rec.BulkQuantity,
			PieceQuantity: rec.PieceQuantity,
			Note:          rec.Note,
			CreatedAt:     rec.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/transfers?outlet_id=1&product_id=2
func ListTransfersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StockTransfer{})

		if oidStr := c.Query("outlet_id"); oidStr != "" {
			var oid uint
			if _, err := fmt.Sscan(oidStr, &oid); err != nil || oid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "outlet_id geçersiz")
			}
			dbq = dbq.Where("from_outlet_id = ? OR to_outlet_id = ?", oid, oid)
		}
		if pidStr := c.Query("product_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "product_id geçersiz")
			}
			dbq = dbq.Where("product_id = ?", pid)
		}

		var transfers []models.StockTransfer
		if err := dbq.Order("created_at DESC, id DESC").Find(&transfers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Taşımalar listelenemedi")
		}

		resp := make([]TransferResponse, 0, len(transfers))
		for _, t := range transfers {
			resp = append(resp, TransferResponse{
				ID:            t.ID,
				ProductID:     t.ProductID,
				FromOutletID:  t.FromOutletID,
				ToOutletID:    t.ToOutletID,
				BulkQuantity:  t.BulkQuantity,
				PieceQuantity: t.PieceQuantity,
				Note:          t.Note,
				CreatedAt:     t.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}
