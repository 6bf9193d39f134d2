package reports

import (
	"fmt"
	"time"

	"spine-backend/internal/database"
	"spine-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/reports/monthly/export?year=2026&month=8&outlet_id=1
// Ayın tüm satışlarını kalem bazında xlsx olarak indirir.
func MonthlyReportExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		outletID, year, month, err := resolveReportParams(c)
		if err != nil {
			return err
		}

		loc := time.Now().Location()
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0)

		var salesList []models.Sale
		if err := database.DB.
			Preload("Items").
			Preload("Customer").
			Where("outlet_id = ? AND timestamp >= ? AND timestamp < ?", outletID, start, end).
			Order("timestamp ASC").
			Find(&salesList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar okunamadı")
		}

		f := excelize.NewFile()
		defer f.Close()
		sheetName := "Satışlar"
		f.SetSheetName("Sheet1", sheetName)

		headers := []string{"Fiş No", "Tarih", "Ödeme", "Müşteri", "Ürün", "Miktar", "Birim", "Birim Fiyat", "Satış Toplamı", "Kalan Borç"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheetName, cell, h)
		}

		row := 2
		for i := range salesList {
			s := &salesList[i]
			customerName := ""
			if s.Customer != nil {
				customerName = s.Customer.Name
			}
			for _, item := range s.Items {
				unit := "adet"
				if item.UnitType == models.SaleUnitBulk {
					unit = "koli"
				}
				values := []interface{}{
					s.ReceiptNo,
					s.Timestamp.Format("2006-01-02 15:04"),
					string(s.PaymentMethod),
					customerName,
					item.ProductName,
					item.Quantity,
					unit,
					item.PriceAtSale.StringFixed(2),
					s.TotalAmount.StringFixed(2),
					s.BalanceDue.StringFixed(2),
				}
				for col, v := range values {
					cell, _ := excelize.CoordinatesToCellName(col+1, row)
					f.SetCellValue(sheetName, cell, v)
				}
				row++
			}
		}

		filename := fmt.Sprintf("satis-raporu-%d-%02d.xlsx", year, month)
		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", "attachment; filename="+filename)

		if err := f.Write(c.Response().BodyWriter()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya oluşturulamadı")
		}
		return nil
	}
}
