package reports

import (
	"fmt"
	"time"

	"spine-backend/internal/auth"
	"spine-backend/internal/database"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type MonthlyReportItem struct {
	Method    models.PaymentMethod `json:"method"`
	SaleCount int                  `json:"sale_count"`
	Total     string               `json:"total"`
	Profit    string               `json:"profit"`
}

type MonthlyReportResponse struct {
	OutletID        uint                `json:"outlet_id"`
	Year            int                 `json:"year"`
	Month           int                 `json:"month"`
	Items           []MonthlyReportItem `json:"items"`
	SaleCount       int                 `json:"sale_count"`
	VoidedCount     int                 `json:"voided_count"`
	GrandTotal      string              `json:"grand_total"`
	GrandProfit     string              `json:"grand_profit"`
	RepaymentsTotal string              `json:"repayments_total"`
	AdjustmentCount int                 `json:"adjustment_count"`
}

// rapor parametrelerini çözer: şube + yıl/ay
func resolveReportParams(c *fiber.Ctx) (uint, int, int, error) {
	role := c.Locals(auth.CtxUserRoleKey).(models.UserRole)

	var outletID uint
	if role == models.RoleStaff {
		outletIDPtr, ok := c.Locals(auth.CtxOutletIDKey).(*uint)
		if !ok || outletIDPtr == nil {
			return 0, 0, 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		outletID = *outletIDPtr
	} else {
		// owner
		oidStr := c.Query("outlet_id")
		if oidStr == "" {
			return 0, 0, 0, fiber.NewError(fiber.StatusBadRequest, "outlet_id zorunlu")
		}
		var parsed uint
		if _, err := fmt.Sscan(oidStr, &parsed); err != nil || parsed == 0 {
			return 0, 0, 0, fiber.NewError(fiber.StatusBadRequest, "outlet_id geçersiz")
		}
		outletID = parsed
	}

	yearStr := c.Query("year")
	monthStr := c.Query("month")
	if yearStr == "" || monthStr == "" {
		return 0, 0, 0, fiber.NewError(fiber.StatusBadRequest, "year ve month zorunlu")
	}

	var year, month int
	if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
		return 0, 0, 0, fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
	}
	if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
	}

	return outletID, year, month, nil
}

type monthlyData struct {
	Sales           []models.Sale
	VoidedCount     int
	RepaymentsTotal decimal.Decimal
	AdjustmentCount int
}

// Tutar kolonları decimal (text) tutulduğundan toplamlar SQL yerine Go tarafında alınır
func collectMonthlyData(outletID uint, year, month int) (*monthlyData, error) {
	loc := time.Now().Location()
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	data := &monthlyData{RepaymentsTotal: decimal.Zero}

	if err := database.DB.
		Where("outlet_id = ? AND timestamp >= ? AND timestamp < ?", outletID, start, end).
		Order("timestamp ASC").
		Find(&data.Sales).Error; err != nil {
		return nil, err
	}

	// iptal edilen satışlar silindiği için sayı aktivite kaydından alınır
	var voidedCount int64
	if err := database.DB.Model(&models.ActivityLog{}).
		Where("outlet_id = ? AND action = ? AND created_at >= ? AND created_at < ?",
			outletID, models.ActivitySaleVoided, start, end).
		Count(&voidedCount).Error; err != nil {
		return nil, err
	}
	data.VoidedCount = int(voidedCount)

	// tahsilatlar şubeye bağlı değildir, ay bazında toplanır
	var repayments []models.Repayment
	if err := database.DB.
		Where("received_at >= ? AND received_at < ?", start, end).
		Find(&repayments).Error; err != nil {
		return nil, err
	}
	for _, r := range repayments {
		data.RepaymentsTotal = data.RepaymentsTotal.Add(r.Amount)
	}

	var adjCount int64
	if err := database.DB.Model(&models.StockAdjustment{}).
		Where("outlet_id = ? AND created_at >= ? AND created_at < ?", outletID, start, end).
		Count(&adjCount).Error; err != nil {
		return nil, err
	}
	data.AdjustmentCount = int(adjCount)

	return data, nil
}

// GET /api/reports/monthly?year=2026&month=8&outlet_id=1
func MonthlyReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		outletID, year, month, err := resolveReportParams(c)
		if err != nil {
			return err
		}

		data, err := collectMonthlyData(outletID, year, month)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor hesaplanamadı")
		}

		type agg struct {
			Count  int
			Total  decimal.Decimal
			Profit decimal.Decimal
		}
		byMethod := make(map[models.PaymentMethod]*agg)

		grandTotal := decimal.Zero
		grandProfit := decimal.Zero
		for i := range data.Sales {
			s := &data.Sales[i]
			a, ok := byMethod[s.PaymentMethod]
			if !ok {
				a = &agg{Total: decimal.Zero, Profit: decimal.Zero}
				byMethod[s.PaymentMethod] = a
			}
			a.Count++
			a.Total = a.Total.Add(s.TotalAmount)
			a.Profit = a.Profit.Add(s.TotalProfit)
			grandTotal = grandTotal.Add(s.TotalAmount)
			grandProfit = grandProfit.Add(s.TotalProfit)
		}

		resp := MonthlyReportResponse{
			OutletID:        outletID,
			Year:            year,
			Month:           month,
			Items:           make([]MonthlyReportItem, 0, len(byMethod)),
			SaleCount:       len(data.Sales),
			VoidedCount:     data.VoidedCount,
			GrandTotal:      grandTotal.StringFixed(2),
			GrandProfit:     grandProfit.StringFixed(2),
			RepaymentsTotal: data.RepaymentsTotal.StringFixed(2),
			AdjustmentCount: data.AdjustmentCount,
		}

		// sabit sırayla dön, map sırası değişken
		for _, m := range []models.PaymentMethod{
			models.PaymentMethodCash,
			models.PaymentMethodCard,
			models.PaymentMethodTransfer,
			models.PaymentMethodDebt,
		} {
			a, ok := byMethod[m]
			if !ok {
				continue
			}
			resp.Items = append(resp.Items, MonthlyReportItem{
				Method:    m,
				SaleCount: a.Count,
				Total:     a.Total.StringFixed(2),
				Profit:    a.Profit.StringFixed(2),
			})
		}

		return c.JSON(resp)
	}
}
