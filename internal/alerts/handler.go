package alerts

import (
	"fmt"
	"time"

	"spine-backend/internal/auth"
	"spine-backend/internal/database"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/alerts?outlet_id=1
func ListAlertsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(auth.CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
		}

		var outletID uint
		if role == models.RoleStaff {
			oVal := c.Locals(auth.CtxOutletIDKey)
			oPtr, ok := oVal.(*uint)
			if !ok || oPtr == nil {
				return fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
			}
			outletID = *oPtr
		} else {
			// owner: outlet_id query'den gelir
			oidStr := c.Query("outlet_id")
			if oidStr == "" {
				return fiber.NewError(fiber.StatusBadRequest, "outlet_id zorunlu")
			}
			if _, err := fmt.Sscan(oidStr, &outletID); err != nil || outletID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "outlet_id geçersiz")
			}
		}

		result, err := ForOutlet(database.DB, outletID, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Uyarılar hesaplanamadı")
		}

		return c.JSON(result)
	}
}
