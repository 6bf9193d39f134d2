package sales

import (
	"errors"
	"fmt"
	"time"

	"spine-backend/internal/activity"
	"spine-backend/internal/config"
	"spine-backend/internal/ledger"
	"spine-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSaleNotFound     = errors.New("satış bulunamadı")
	ErrCustomerNotFound = errors.New("müşteri bulunamadı")
	ErrOutletNotFound   = errors.New("şube bulunamadı")
)

type ItemInput struct {
	ProductID uint
	Quantity  int
	UnitType  models.SaleUnitType
}

type RecordInput struct {
	OutletID         uint
	Items            []ItemInput
	PaymentMethod    models.PaymentMethod
	CustomerID       *uint
	RecordedByUserID uint
	RecordedByName   string
	Timestamp        time.Time // sıfırsa şimdi
}

type RecordResult struct {
	Sale *models.Sale
	// Clamped: En az bir kalemin stok düşümü sıfırda taban yaptı (lenient politika).
	Clamped bool
}

func validPaymentMethod(m models.PaymentMethod) bool {
	switch m {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodTransfer, models.PaymentMethodDebt:
		return true
	}
	return false
}

// lineUnitPrice: Kalemin satış anındaki birim fiyatı. Toptan kalemde ürünün
// toptan fiyatı, o yoksa adet fiyatı * UnitsPerBulk kullanılır.
func lineUnitPrice(p *models.Product, unitType models.SaleUnitType) decimal.Decimal {
	if unitType == models.SaleUnitBulk {
		if p.SellingPricePerBulk != nil {
			return *p.SellingPricePerBulk
		}
		return p.SellingPricePerPiece.Mul(decimal.NewFromInt(int64(p.UnitsPerBulk)))
	}
	return p.SellingPricePerPiece
}

func lineUnitCost(p *models.Product, unitType models.SaleUnitType) decimal.Decimal {
	if unitType == models.SaleUnitBulk {
		return p.CostPricePerPiece.Mul(decimal.NewFromInt(int64(p.UnitsPerBulk)))
	}
	return p.CostPricePerPiece
}

// Record: Satışı kaydeder ve her kalem için şube bakiyesinden kendi biriminde
// düşer (adet kalemi adet sayacından, toptan kalemi toptan sayacından; birimler
// arası dönüşüm yapılmaz). Veresiye satışta müşterinin borcu satışın TAM tutarı
// kadar artar ve satış AmountPaid=0 ile açılır. Çağıranın transaction'ı içinde
// çalışmalıdır.
func Record(db *gorm.DB, in RecordInput, policy config.StockPolicy) (*RecordResult, error) {
	if len(in.Items) == 0 {
		return nil, errors.New("en az bir satış kalemi gerekli")
	}
	if !validPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("geçersiz ödeme yöntemi: %q", in.PaymentMethod)
	}

	var outlet models.Outlet
	if err := db.First(&outlet, "id = ?", in.OutletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutletNotFound
		}
		return nil, err
	}

	var customer *models.Customer
	if in.PaymentMethod == models.PaymentMethodDebt {
		if in.CustomerID == nil {
			return nil, errors.New("veresiye satış için customer_id zorunlu")
		}
		customer = &models.Customer{}
		if err := db.First(customer, "id = ?", *in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCustomerNotFound
			}
			return nil, err
		}
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	totalAmount := decimal.Zero
	totalProfit := decimal.Zero
	clamped := false
	items := make([]models.SaleItem, 0, len(in.Items))

	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, errors.New("kalem miktarı 0'dan büyük olmalı")
		}
		if it.UnitType != models.SaleUnitPiece && it.UnitType != models.SaleUnitBulk {
			return nil, fmt.Errorf("geçersiz birim tipi: %q", it.UnitType)
		}

		var product models.Product
		if err := db.First(&product, "id = ?", it.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ledger.ErrProductNotFound
			}
			return nil, err
		}

		qty := decimal.NewFromInt(int64(it.Quantity))
		price := lineUnitPrice(&product, it.UnitType)
		cost := lineUnitCost(&product, it.UnitType)
		totalAmount = totalAmount.Add(price.Mul(qty))
		totalProfit = totalProfit.Add(price.Sub(cost).Mul(qty))

		// Stok düşümü kalemin kendi biriminde yapılır
		bulkDelta, pieceDelta := 0, 0
		if it.UnitType == models.SaleUnitBulk {
			bulkDelta = -it.Quantity
		} else {
			pieceDelta = -it.Quantity
		}
		res, err := ledger.ApplyDelta(db, it.ProductID, in.OutletID, bulkDelta, pieceDelta, policy)
		if err != nil {
			return nil, err
		}
		if res.Clamped {
			clamped = true
		}

		items = append(items, models.SaleItem{
			ProductID:   it.ProductID,
			ProductName: product.Name,
			Quantity:    it.Quantity,
			PriceAtSale: price,
			UnitType:    it.UnitType,
		})
	}

	sale := models.Sale{
		ReceiptNo:        uuid.NewString(),
		OutletID:         in.OutletID,
		Timestamp:        ts,
		TotalAmount:      totalAmount,
		TotalProfit:      totalProfit,
		PaymentMethod:    in.PaymentMethod,
		CustomerID:       in.CustomerID,
		AmountPaid:       totalAmount,
		BalanceDue:       decimal.Zero,
		RecordedByUserID: in.RecordedByUserID,
		Items:            items,
	}

	severity := models.SeverityInfo
	if in.PaymentMethod == models.PaymentMethodDebt {
		// Veresiye satış ödenmemiş başlar; borç TAM tutar kadar artar
		sale.AmountPaid = decimal.Zero
		sale.BalanceDue = totalAmount
		severity = models.SeverityWarning
	}

	if err := db.Create(&sale).Error; err != nil {
		return nil, err
	}

	if customer != nil {
		customer.TotalOwed = customer.TotalOwed.Add(totalAmount)
		if err := db.Save(customer).Error; err != nil {
			return nil, err
		}
	}

	details := fmt.Sprintf("Satış: %d kalem, toplam %s (%s)", len(items), totalAmount.StringFixed(2), in.PaymentMethod)
	if customer != nil {
		details = fmt.Sprintf("Veresiye satış: %s - toplam %s", customer.Name, totalAmount.StringFixed(2))
	}
	if err := activity.Write(db, activity.LogOptions{
		OutletID:   &in.OutletID,
		UserID:     in.RecordedByUserID,
		UserName:   in.RecordedByName,
		EntityType: "sale",
		EntityID:   sale.ID,
		Action:     models.ActivitySaleRecorded,
		Severity:   severity,
		Details:    details,
	}); err != nil {
		return nil, err
	}

	return &RecordResult{Sale: &sale, Clamped: clamped}, nil
}

// Void: Satışı siler ve stok düşümünü satışın yapıldığı şubede geri alır.
// Veresiye satışta müşterinin borcu satışın kalan bakiyesi kadar azalır;
// önceden yapılmış kısmi tahsilatlar geri verilmez.
func Void(db *gorm.DB, saleID uint, userID uint, userName string) error {
	var sale models.Sale
	if err := db.Preload("Items").First(&sale, "id = ?", saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSaleNotFound
		}
		return err
	}

	for _, it := range sale.Items {
		bulkDelta, pieceDelta := 0, 0
		if it.UnitType == models.SaleUnitBulk {
			bulkDelta = it.Quantity
		} else {
			pieceDelta = it.Quantity
		}
		// Pozitif delta hiçbir zaman taban yapmaz
		if _, err := ledger.ApplyDelta(db, it.ProductID, sale.OutletID, bulkDelta, pieceDelta, config.StockPolicyLenient); err != nil {
			return err
		}
	}

	// Veresiye satış iptalinde müşterinin önbellek borcu kalan bakiye kadar düşer,
	// yoksa "borç = veresiye satışların kalan toplamı" kuralı bozulur.
	if sale.PaymentMethod == models.PaymentMethodDebt && sale.CustomerID != nil && sale.BalanceDue.IsPositive() {
		var customer models.Customer
		if err := db.First(&customer, "id = ?", *sale.CustomerID).Error; err == nil {
			customer.TotalOwed = customer.TotalOwed.Sub(sale.BalanceDue)
			if customer.TotalOwed.IsNegative() {
				customer.TotalOwed = decimal.Zero
			}
			if err := db.Save(&customer).Error; err != nil {
				return err
			}
		}
	}

	if err := db.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	if err := db.Delete(&models.Sale{}, "id = ?", sale.ID).Error; err != nil {
		return err
	}

	return activity.Write(db, activity.LogOptions{
		OutletID:   &sale.OutletID,
		UserID:     userID,
		UserName:   userName,
		EntityType: "sale",
		EntityID:   sale.ID,
		Action:     models.ActivitySaleVoided,
		Severity:   models.SeverityWarning,
		Details:    fmt.Sprintf("Satış iptal edildi: fiş %s, toplam %s", sale.ReceiptNo, sale.TotalAmount.StringFixed(2)),
	})
}
