package adjustment

import (
	"errors"
	"fmt"

	"spine-backend/internal/auth"
	"spine-backend/internal/config"
	"spine-backend/internal/database"
	"spine-backend/internal/ledger"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateAdjustmentRequest struct {
	ProductID     uint   `json:"product_id"`
	Type          string `json:"type"` // damage / loss / return / expired
	BulkQuantity  int    `json:"bulk_quantity"`
	PieceQuantity int    `json:"piece_quantity"`
	Note          string `json:"note"`
	OutletID      *uint  `json:"outlet_id"` // owner için
}

type AdjustmentResponse struct {
	ID            uint   `json:"id"`
	ProductID     uint   `json:"product_id"`
	OutletID      uint   `json:"outlet_id"`
	Type          string `json:"type"`
	BulkQuantity  int    `json:"bulk_quantity"`
	PieceQuantity int    `json:"piece_quantity"`
	Note          string `json:"note"`
	Clamped       bool   `json:"clamped,omitempty"` // lenient politikada kısmi düşüm
	CreatedAt     string `json:"created_at"`
}

// Yardımcı: Kullanıcı bilgilerini al
func getUserInfoForAdjustment(c *fiber.Ctx) (uint, string, error) {
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

func resolveOutletIDFromBodyOrRole(c *fiber.Ctx, bodyOutletID *uint) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleStaff {
		oPtr, ok := c.Locals(auth.CtxOutletIDKey).(*uint)
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

// POST /api/adjustments
func CreateAdjustmentHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAdjustmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}

		outletID, err := resolveOutletIDFromBodyOrRole(c, body.OutletID)
		if err != nil {
			return err
		}

		userID, userName, err := getUserInfoForAdjustment(c)
		if err != nil {
			return err
		}

		var result *ApplyResult
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			result, err = Apply(tx, ApplyInput{
				ProductID:         body.ProductID,
				OutletID:          outletID,
				Type:              models.AdjustmentType(body.Type),
				BulkQuantity:      body.BulkQuantity,
				PieceQuantity:     body.PieceQuantity,
				PerformedByUserID: userID,
				PerformedByName:   userName,
				Note:              body.Note,
			}, cfg.StockPolicy)
			return err
		})
		if txErr != nil {
			switch {
			case errors.Is(txErr, ledger.ErrProductNotFound), errors.Is(txErr, ErrOutletNotFound):
				return fiber.NewError(fiber.StatusNotFound, txErr.Error())
			case errors.Is(txErr, ErrInvalidType), errors.Is(txErr, ErrZeroQuantity), errors.Is(txErr, ledger.ErrInsufficientStock):
				return fiber.NewError(fiber.StatusBadRequest, txErr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Düzeltme kaydedilemedi")
		}

		rec := result.Adjustment
		return c.Status(fiber.StatusCreated).JSON(AdjustmentResponse{
			ID:            rec.ID,
			ProductID:     rec.ProductID,
			OutletID:      rec.OutletID,
			Type:          string(rec.Type),
			BulkQuantity:  rec.BulkQuantity,
			PieceQuantity: rec.PieceQuantity,
			Note:          rec.Note,
			Clamped:       result.Clamped,
			CreatedAt:     rec.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/adjustments?outlet_id=1&type=expired
func ListAdjustmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StockAdjustment{})

		if oidStr := c.Query("outlet_id"); oidStr != "" {
			var oid uint
			if _, err := fmt.Sscan(oidStr, &oid); err != nil || oid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "outlet_id geçersiz")
			}
			dbq = dbq.Where("outlet_id = ?", oid)
		}
		if t := c.Query("type"); t != "" {
			dbq = dbq.Where("type = ?", t)
		}

		var adjustments []models.StockAdjustment
		if err := dbq.Order("created_at DESC, id DESC").Find(&adjustments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Düzeltmeler listelenemedi")
		}

		resp := make([]AdjustmentResponse, 0, len(adjustments))
		for _, a := range adjustments {
			resp = append(resp, AdjustmentResponse{
				ID:            a.ID,
				ProductID:     a.ProductID,
				OutletID:      a.OutletID,
				Type:          string(a.Type),
				BulkQuantity:  a.BulkQuantity,
				PieceQuantity: a.PieceQuantity,
				Note:          a.Note,
				CreatedAt:     a.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}
