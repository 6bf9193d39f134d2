package admin

import (
	"strings"

	"spine-backend/internal/activity"
	"spine-backend/internal/auth"
	"spine-backend/internal/database"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type OutletResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

type CreateOutletRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone"` // Opsiyonel
}

type UpdateOutletRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"` // Opsiyonel
}

type CreateStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StaffResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	OutletID  *uint  `json:"outlet_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ----------------------------------------
// ŞUBE CRUD
// ----------------------------------------

func CreateOutletHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOutletRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Şube adı boş olamaz")
		}

		outlet := models.Outlet{
			Name:    body.Name,
			Address: body.Address,
		}
		if body.Phone != nil {
			outlet.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Create(&outlet).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube oluşturulamadı")
		}

		if userID, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
			var user models.User
			if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
				_ = activity.Write(database.DB, activity.LogOptions{
					OutletID:   &outlet.ID,
					UserID:     user.ID,
					UserName:   user.Name,
					EntityType: "outlet",
					EntityID:   outlet.ID,
					Action:     models.ActivityOutletCreated,
					Severity:   models.SeverityInfo,
					Details:    "Şube açıldı: " + outlet.Name,
				})
			}
		}

		return c.Status(fiber.StatusCreated).JSON(OutletResponse{
			ID:        outlet.ID,
			Name:      outlet.Name,
			Address:   outlet.Address,
			Phone:     outlet.Phone,
			CreatedAt: outlet.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

func ListOutletsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {

		var outlets []models.Outlet
		if err := database.DB.Find(&outlets).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şubeler listelenemedi")
		}

		res := make([]OutletResponse, 0, len(outlets))
		for _, o := range outlets {
			res = append(res, OutletResponse{
				ID:        o.ID,
				Name:      o.Name,
				Address:   o.Address,
				Phone:     o.Phone,
				CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(res)
	}
}

func GetOutletHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var outlet models.Outlet
		if err := database.DB.First(&outlet, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		return c.JSON(OutletResponse{
			ID:        outlet.ID,
			Name:      outlet.Name,
			Address:   outlet.Address,
			Phone:     outlet.Phone,
			CreatedAt: outlet.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

func UpdateOutletHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var outlet models.Outlet
		if err := database.DB.First(&outlet, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		var body UpdateOutletRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Şube adı boş olamaz")
			}
			outlet.Name = name
		}

		if body.Address != nil {
			outlet.Address = *body.Address
		}

		if body.Phone != nil {
			outlet.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Save(&outlet).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube güncellenemedi")
		}

		return c.JSON(OutletResponse{
			ID:        outlet.ID,
			Name:      outlet.Name,
			Address:   outlet.Address,
			Phone:     outlet.Phone,
			CreatedAt: outlet.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

func DeleteOutletHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {

		id := c.Params("id")

		// Stok bakiyesi olan şube silinemez
		var balanceCount int64
		database.DB.Model(&models.StockBalance{}).Where("outlet_id = ?", id).Count(&balanceCount)
		if balanceCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stok kaydı olan şube silinemez")
		}

		if err := database.DB.Delete(&models.Outlet{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// ŞUBE PERSONELİ OLUŞTURMA
// ----------------------------------------

func CreateStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {

		outletID := c.Params("id")

		// Şube kontrolü
		var outlet models.Outlet
		if err := database.DB.First(&outlet, "id = ?", outletID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		var body CreateStaffRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}

		// Email kontrolü
		var exist models.User
		if err := database.DB.Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu email zaten kayıtlı")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleStaff,
			OutletID:     &outlet.ID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel oluşturulamadı")
		}

		// NOT: Şifre sadece oluşturma sırasında bir kez döndürülür
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"role":      user.Role,
			"outlet_id": user.OutletID,
			"password":  body.Password, // Sadece oluşturma sırasında (bir kez)
		})
	}
}

// GET /api/admin/outlets/:id/staff
func ListStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		outletID := c.Params("id")

		var users []models.User
		if err := database.DB.
			Where("outlet_id = ? AND role = ?", outletID, models.RoleStaff).
			Order("created_at DESC").
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel listelenemedi")
		}

		res := make([]StaffResponse, 0, len(users))
		for _, u := range users {
			res = append(res, StaffResponse{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				Role:      string(u.Role),
				OutletID:  u.OutletID,
				CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
				UpdatedAt: u.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(res)
	}
}
