package activity

import (
	"fmt"

	"spine-backend/internal/auth"
	"spine-backend/internal/database"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ActivityLogResponse struct {
	ID         uint                    `json:"id"`
	CreatedAt  string                  `json:"created_at"`
	OutletID   *uint                   `json:"outlet_id"`
	UserID     uint                    `json:"user_id"`
	UserName   string                  `json:"user_name"`
	EntityType string                  `json:"entity_type"`
	EntityID   uint                    `json:"entity_id"`
	Action     models.ActivityAction   `json:"action"`
	Severity   models.ActivitySeverity `json:"severity"`
	Details    string                  `json:"details"`
}

// GET /api/activity-logs?outlet_id=1&action=sale_recorded&severity=warning
func ListActivityLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(auth.CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
		}

		// Outlet ID çöz
		var outletID *uint
		if role == models.RoleStaff {
			oVal := c.Locals(auth.CtxOutletIDKey)
			oPtr, ok := oVal.(*uint)
			if ok && oPtr != nil {
				outletID = oPtr
			}
		} else {
			// owner için query'den al
			oidStr := c.Query("outlet_id")
			if oidStr != "" {
				var oid uint
				if _, err := fmt.Sscan(oidStr, &oid); err == nil && oid > 0 {
					outletID = &oid
				}
			}
		}

		action := c.Query("action")
		severity := c.Query("severity")
		entityType := c.Query("entity_type")
		entityIDStr := c.Query("entity_id")

		dbq := database.DB.Model(&models.ActivityLog{})

		if outletID != nil {
			dbq = dbq.Where("outlet_id = ?", *outletID)
		}
		if action != "" {
			dbq = dbq.Where("action = ?", action)
		}
		if severity != "" {
			dbq = dbq.Where("severity = ?", severity)
		}
		if entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if entityIDStr != "" {
			var eid uint
			if _, err := fmt.Sscan(entityIDStr, &eid); err == nil && eid > 0 {
				dbq = dbq.Where("entity_id = ?", eid)
			}
		}

		var logs []models.ActivityLog
		if err := dbq.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Günlük listelenemedi")
		}

		resp := make([]ActivityLogResponse, 0, len(logs))
		for _, entry := range logs {
			resp = append(resp, ActivityLogResponse{
				ID:         entry.ID,
				CreatedAt:  entry.CreatedAt.Format("2006-01-02 15:04:05"),
				OutletID:   entry.OutletID,
				UserID:     entry.UserID,
				UserName:   entry.UserName,
				EntityType: entry.EntityType,
				EntityID:   entry.EntityID,
				Action:     entry.Action,
				Severity:   entry.Severity,
				Details:    entry.Details,
			})
		}

		return c.JSON(resp)
	}
}
