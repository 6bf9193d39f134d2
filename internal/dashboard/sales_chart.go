package dashboard

import (
	"fmt"
	"sort"
	"time"

	"spine-backend/internal/auth"
	"spine-backend/internal/database"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SalesChartPoint struct {
	Label     string `json:"label"` // tarih / hafta başlangıcı / ay başlangıcı
	Cash      string `json:"cash"`
	Card      string `json:"card"`
	Transfer  string `json:"transfer"`
	Debt      string `json:"debt"`
	Total     string `json:"total"`
	Profit    string `json:"profit"`
	SaleCount int    `json:"sale_count"`
}

type SalesChartResponse struct {
	OutletID uint              `json:"outlet_id"`
	Period   string            `json:"period"` // daily | weekly | monthly
	From     string            `json:"from"`
	To       string            `json:"to"`
	Points   []SalesChartPoint `json:"points"`
	Total    string            `json:"grand_total"`
	Profit   string            `json:"grand_profit"`
}

// context'ten outlet id çıkar (staff için JWT, owner için query param)
// owner için ?outlet_id=1 zorunlu
func getOutletIDFromContext(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	if role == models.RoleStaff {
		outletIDVal := c.Locals(auth.CtxOutletIDKey)
		outletIDPtr, ok := outletIDVal.(*uint)
		if !ok || outletIDPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		return *outletIDPtr, nil
	}

	// owner
	oidStr := c.Query("outlet_id")
	if oidStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "outlet_id zorunlu")
	}
	var oid uint
	if _, err := fmt.Sscan(oidStr, &oid); err != nil || oid == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "outlet_id geçersiz")
	}
	return oid, nil
}

// GET /api/dashboard/sales-chart?period=daily&count=7&outlet_id=1
func SalesChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		outletID, err := getOutletIDFromContext(c)
		if err != nil {
			return err
		}

		period := c.Query("period", "daily") // daily | weekly | monthly
		countStr := c.Query("count", "")

		var count int
		if countStr == "" {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				period = "daily"
				count = 7
			}
		} else {
			if _, err := fmt.Sscan(countStr, &count); err != nil || count <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "count geçersiz")
			}
		}

		now := time.Now()
		loc := now.Location()
		// bugünün 00:00'ı
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		var start time.Time

		switch period {
		case "weekly":
			days := 7 * (count - 1)
			start = end.AddDate(0, 0, -days)
		case "monthly":
			end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			start = end.AddDate(0, -(count - 1), 0)
		default:
			period = "daily"
			start = end.AddDate(0, 0, -(count - 1))
		}

		var upper time.Time
		switch period {
		case "weekly":
			upper = end.AddDate(0, 0, 7)
		case "monthly":
			upper = end.AddDate(0, 1, 0)
		default:
			upper = end.AddDate(0, 0, 1)
		}

		// Tutar kolonları decimal olduğundan toplamlar Go tarafında hesaplanır
		var salesList []models.Sale
		if err := database.DB.
			Where("outlet_id = ? AND timestamp >= ? AND timestamp < ?", outletID, start, upper).
			Find(&salesList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}

		type bucketAgg struct {
			Bucket    time.Time
			Cash      decimal.Decimal
			Card      decimal.Decimal
			Transfer  decimal.Decimal
			Debt      decimal.Decimal
			Total     decimal.Decimal
			Profit    decimal.Decimal
			SaleCount int
		}

		bucketOf := func(ts time.Time) time.Time {
			d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
			switch period {
			case "weekly":
				// hafta başlangıcı pazartesi
				offset := (int(d.Weekday()) + 6) % 7
				return d.AddDate(0, 0, -offset)
			case "monthly":
				return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, loc)
			}
			return d
		}

		buckets := make(map[time.Time]*bucketAgg)
		for i := range salesList {
			s := &salesList[i]
			b := bucketOf(s.Timestamp)
			agg, ok := buckets[b]
			if !ok {
				agg = &bucketAgg{
					Bucket: b, Cash: decimal.Zero, Card: decimal.Zero,
					Transfer: decimal.Zero, Debt: decimal.Zero,
					Total: decimal.Zero, Profit: decimal.Zero,
				}
				buckets[b] = agg
			}

			switch s.PaymentMethod {
			case models.PaymentMethodCash:
				agg.Cash = agg.Cash.Add(s.TotalAmount)
			case models.PaymentMethodCard:
				agg.Card = agg.Card.Add(s.TotalAmount)
			case models.PaymentMethodTransfer:
				agg.Transfer = agg.Transfer.Add(s.TotalAmount)
			case models.PaymentMethodDebt:
				agg.Debt = agg.Debt.Add(s.TotalAmount)
			}
			agg.Total = agg.Total.Add(s.TotalAmount)
			agg.Profit = agg.Profit.Add(s.TotalProfit)
			agg.SaleCount++
		}

		ordered := make([]*bucketAgg, 0, len(buckets))
		for _, v := range buckets {
			ordered = append(ordered, v)
		}
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].Bucket.Before(ordered[j].Bucket)
		})

		points := make([]SalesChartPoint, 0, len(ordered))
		grandTotal := decimal.Zero
		grandProfit := decimal.Zero

		for _, b := range ordered {
			points = append(points, SalesChartPoint{
				Label:     b.Bucket.Format("2006-01-02"),
				Cash:      b.Cash.StringFixed(2),
				Card:      b.Card.StringFixed(2),
				Transfer:  b.Transfer.StringFixed(2),
				Debt:      b.Debt.StringFixed(2),
				Total:     b.Total.StringFixed(2),
				Profit:    b.Profit.StringFixed(2),
				SaleCount: b.SaleCount,
			})
			grandTotal = grandTotal.Add(b.Total)
			grandProfit = grandProfit.Add(b.Profit)
		}

		return c.JSON(SalesChartResponse{
			OutletID: outletID,
			Period:   period,
			From:     start.Format("2006-01-02"),
			To:       end.Format("2006-01-02"),
			Points:   points,
			Total:    grandTotal.StringFixed(2),
			Profit:   grandProfit.StringFixed(2),
		})
	}
}
