package debts

import (
	"errors"
	"fmt"
	"strings"

	"spine-backend/internal/activity"
	"spine-backend/internal/auth"
	"spine-backend/internal/database"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CustomerResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	TotalOwed string `json:"total_owed"`
	CreatedAt string `json:"created_at"`
}

type CreateRepaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"` // cash / card / transfer
}

type RepaymentResponse struct {
	ID          uint   `json:"id"`
	CustomerID  uint   `json:"customer_id"`
	Amount      string `json:"amount"`
	Applied     string `json:"applied"`
	Unallocated string `json:"unallocated"` // toplam borcu aşan, dağıtılmayan kısım
	Method      string `json:"method"`
	ReceivedAt  string `json:"received_at"`
}

func toCustomerResponse(cu *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        cu.ID,
		Name:      cu.Name,
		Phone:     cu.Phone,
		TotalOwed: cu.TotalOwed.StringFixed(2),
		CreatedAt: cu.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Yardımcı: Kullanıcı bilgilerini al
func getUserInfoForDebts(c *fiber.Ctx) (uint, string, error) {
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

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Müşteri adı boş olamaz")
		}

		customer := models.Customer{
			Name:      body.Name,
			Phone:     strings.TrimSpace(body.Phone),
			TotalOwed: decimal.Zero,
		}

		if err := database.DB.Create(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri oluşturulamadı")
		}

		if userID, userName, err := getUserInfoForDebts(c); err == nil {
			_ = activity.Write(database.DB, activity.LogOptions{
				UserID:     userID,
				UserName:   userName,
				EntityType: "customer",
				EntityID:   customer.ID,
				Action:     models.ActivityCustomerCreated,
				Severity:   models.SeverityInfo,
				Details:    fmt.Sprintf("Müşteri eklendi: %s", customer.Name),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toCustomerResponse(&customer))
	}
}

// GET /api/customers?with_debt=true
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customers []models.Customer
		if err := database.DB.Order("name asc").Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler listelenemedi")
		}

		onlyWithDebt := c.Query("with_debt") == "true"

		resp := make([]CustomerResponse, 0, len(customers))
		for i := range customers {
			if onlyWithDebt && !customers[i].TotalOwed.IsPositive() {
				continue
			}
			resp = append(resp, toCustomerResponse(&customers[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/customers/:id/sales — müşterinin veresiye satışları (eski önce)
func ListCustomerSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customerID uint
		if _, err := fmt.Sscan(c.Params("id"), &customerID); err != nil || customerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz müşteri ID")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", customerID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		var salesList []models.Sale
		if err := database.DB.Preload("Items").
			Where("customer_id = ? AND payment_method = ?", customerID, models.PaymentMethodDebt).
			Order("timestamp ASC, id ASC").
			Find(&salesList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		type customerSale struct {
			ID          uint   `json:"id"`
			ReceiptNo   string `json:"receipt_no"`
			Timestamp   string `json:"timestamp"`
			TotalAmount string `json:"total_amount"`
			AmountPaid  string `json:"amount_paid"`
			BalanceDue  string `json:"balance_due"`
		}

		resp := struct {
			Customer CustomerResponse `json:"customer"`
			Sales    []customerSale   `json:"sales"`
		}{
			Customer: toCustomerResponse(&customer),
			Sales:    make([]customerSale, 0, len(salesList)),
		}
		for _, s := range salesList {
			resp.Sales = append(resp.Sales, customerSale{
				ID:          s.ID,
				ReceiptNo:   s.ReceiptNo,
				Timestamp:   s.Timestamp.Format("2006-01-02 15:04:05"),
				TotalAmount: s.TotalAmount.StringFixed(2),
				AmountPaid:  s.AmountPaid.StringFixed(2),
				BalanceDue:  s.BalanceDue.StringFixed(2),
			})
		}

		return c.JSON(resp)
	}
}

// POST /api/customers/:id/repayments
func CreateRepaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customerID uint
		if _, err := fmt.Sscan(c.Params("id"), &customerID); err != nil || customerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz müşteri ID")
		}

		var body CreateRepaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, userName, err := getUserInfoForDebts(c)
		if err != nil {
			return err
		}

		var result *RepaymentResult
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			result, err = ApplyRepayment(tx, RepaymentInput{
				CustomerID:       customerID,
				Amount:           body.Amount,
				Method:           models.PaymentMethod(body.Method),
				ReceivedByUserID: userID,
				ReceivedByName:   userName,
			})
			return err
		})
		if txErr != nil {
			if errors.Is(txErr, ErrCustomerNotFound) {
				return fiber.NewError(fiber.StatusNotFound, txErr.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, txErr.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(RepaymentResponse{
			ID:          result.Repayment.ID,
			CustomerID:  result.Repayment.CustomerID,
			Amount:      result.Repayment.Amount.StringFixed(2),
			Applied:     result.Applied.StringFixed(2),
			Unallocated: result.Unallocated.StringFixed(2),
			Method:      string(result.Repayment.Method),
			ReceivedAt:  result.Repayment.ReceivedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/customers/:id/repayments
func ListCustomerRepaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customerID uint
		if _, err := fmt.Sscan(c.Params("id"), &customerID); err != nil || customerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz müşteri ID")
		}

		var repayments []models.Repayment
		if err := database.DB.Where("customer_id = ?", customerID).
			Order("received_at DESC, id DESC").
			Find(&repayments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tahsilatlar listelenemedi")
		}

		type repaymentRow struct {
			ID         uint   `json:"id"`
			Amount     string `json:"amount"`
			Method     string `json:"method"`
			ReceivedAt string `json:"received_at"`
		}
		resp := make([]repaymentRow, 0, len(repayments))
		for _, r := range repayments {
			resp = append(resp, repaymentRow{
				ID:         r.ID,
				Amount:     r.Amount.StringFixed(2),
				Method:     string(r.Method),
				ReceivedAt: r.ReceivedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}
