package sales_test

import (
	"errors"
	"testing"

	"spine-backend/internal/config"
	"spine-backend/internal/ledger"
	"spine-backend/internal/models"
	"spine-backend/internal/sales"
	"spine-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	outlet  *models.Outlet
	product *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)

	o := models.Outlet{Name: "Merkez"}
	if err := db.Create(&o).Error; err != nil {
		t.Fatal(err)
	}

	bulkPrice := decimal.NewFromInt(110)
	p := models.Product{
		Name:                 "Makarna",
		BulkUnitName:         "koli",
		PieceUnitName:        "adet",
		UnitsPerBulk:         24,
		CostPricePerPiece:    decimal.NewFromInt(3),
		SellingPricePerPiece: decimal.NewFromInt(5),
		SellingPricePerBulk:  &bulkPrice,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}

	// başlangıç stoğu: 10 koli + 50 adet
	if _, err := ledger.ApplyDelta(db, p.ID, o.ID, 10, 50, config.StockPolicyStrict); err != nil {
		t.Fatal(err)
	}

	return &fixture{db: db, outlet: &o, product: &p}
}

func TestRecordCashSaleDeductsInOwnUnit(t *testing.T) {
	fx := newFixture(t)

	res, err := sales.Record(fx.db, sales.RecordInput{
		OutletID: fx.outlet.ID,
		Items: []sales.ItemInput{
			{ProductID: fx.product.ID, Quantity: 3, UnitType: models.SaleUnitPiece},
			{ProductID: fx.product.ID, Quantity: 2, UnitType: models.SaleUnitBulk},
		},
		PaymentMethod:    models.PaymentMethodCash,
		RecordedByUserID: 1,
		RecordedByName:   "Ayşe",
	}, config.StockPolicyStrict)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	// adet kalemi adet sayacından, koli kalemi koli sayacından düşer
	bal, _ := ledger.GetBalance(fx.db, fx.product.ID, fx.outlet.ID)
	if bal.BulkQuantity != 8 || bal.PieceQuantity != 47 {
		t.Fatalf("bakiye 8/47 olmalıydı: %d/%d", bal.BulkQuantity, bal.PieceQuantity)
	}

	// 3*5 + 2*110 = 235
	if !res.Sale.TotalAmount.Equal(decimal.NewFromInt(235)) {
		t.Fatalf("toplam 235 olmalıydı: %s", res.Sale.TotalAmount)
	}
	// kar: 3*(5-3) + 2*(110-72) = 6 + 76 = 82
	if !res.Sale.TotalProfit.Equal(decimal.NewFromInt(82)) {
		t.Fatalf("kar 82 olmalıydı: %s", res.Sale.TotalProfit)
	}
	if !res.Sale.BalanceDue.IsZero() {
		t.Fatalf("peşin satışta kalan borç sıfır olmalı: %s", res.Sale.BalanceDue)
	}
	if res.Sale.ReceiptNo == "" {
		t.Fatal("fiş numarası boş olmamalı")
	}
}

func TestRecordBulkPriceFallsBackToPieceTimesUnits(t *testing.T) {
	fx := newFixture(t)
	fx.product.SellingPricePerBulk = nil
	if err := fx.db.Save(fx.product).Error; err != nil {
		t.Fatal(err)
	}

	res, err := sales.Record(fx.db, sales.RecordInput{
		OutletID:         fx.outlet.ID,
		Items:            []sales.ItemInput{{ProductID: fx.product.ID, Quantity: 1, UnitType: models.SaleUnitBulk}},
		PaymentMethod:    models.PaymentMethodCash,
		RecordedByUserID: 1,
		RecordedByName:   "Ayşe",
	}, config.StockPolicyStrict)
	if err != nil {
		t.Fatal(err)
	}

	// toptan fiyat yoksa adet fiyatı * UnitsPerBulk: 5*24 = 120
	if !res.Sale.TotalAmount.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("toplam 120 olmalıydı: %s", res.Sale.TotalAmount)
	}
}

func TestRecordDebtSaleIncreasesCustomerDebt(t *testing.T) {
	fx := newFixture(t)

	customer := models.Customer{Name: "Mehmet", TotalOwed: decimal.Zero}
	if err := fx.db.Create(&customer).Error; err != nil {
		t.Fatal(err)
	}

	res, err := sales.Record(fx.db, sales.RecordInput{
		OutletID:         fx.outlet.ID,
		Items:            []sales.ItemInput{{ProductID: fx.product.ID, Quantity: 10, UnitType: models.SaleUnitPiece}},
		PaymentMethod:    models.PaymentMethodDebt,
		CustomerID:       &customer.ID,
		RecordedByUserID: 1,
		RecordedByName:   "Ayşe",
	}, config.StockPolicyStrict)
	if err != nil {
		t.Fatal(err)
	}

	if !res.Sale.AmountPaid.IsZero() {
		t.Fatalf("veresiye satış ödenmemiş başlamalı: %s", res.Sale.AmountPaid)
	}
	if !res.Sale.BalanceDue.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("kalan borç 50 olmalıydı: %s", res.Sale.BalanceDue)
	}

	var fresh models.Customer
	fx.db.First(&fresh, "id = ?", customer.ID)
	if !fresh.TotalOwed.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("müşteri borcu 50 olmalıydı: %s", fresh.TotalOwed)
	}

	// veresiye satış warning şiddetinde loglanır
	var entry models.ActivityLog
	if err := fx.db.Where("action = ?", models.ActivitySaleRecorded).First(&entry).Error; err != nil {
		t.Fatalf("aktivite kaydı bulunamadı: %v", err)
	}
	if entry.Severity != models.SeverityWarning {
		t.Fatalf("warning bekleniyordu: %s", entry.Severity)
	}
}

func TestRecordDebtSaleRequiresCustomer(t *testing.T) {
	fx := newFixture(t)

	_, err := sales.Record(fx.db, sales.RecordInput{
		OutletID:         fx.outlet.ID,
		Items:            []sales.ItemInput{{ProductID: fx.product.ID, Quantity: 1, UnitType: models.SaleUnitPiece}},
		PaymentMethod:    models.PaymentMethodDebt,
		RecordedByUserID: 1,
	}, config.StockPolicyStrict)
	if err == nil {
		t.Fatal("müşterisiz veresiye satış reddedilmeliydi")
	}
}

func TestRecordStrictRejectsInsufficientStock(t *testing.T) {
	fx := newFixture(t)

	_, err := sales.Record(fx.db, sales.RecordInput{
		OutletID:         fx.outlet.ID,
		Items:            []sales.ItemInput{{ProductID: fx.product.ID, Quantity: 51, UnitType: models.SaleUnitPiece}},
		PaymentMethod:    models.PaymentMethodCash,
		RecordedByUserID: 1,
	}, config.StockPolicyStrict)
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("ErrInsufficientStock bekleniyordu: %v", err)
	}
}

func TestRecordLenientClampsAndFlags(t *testing.T) {
	fx := newFixture(t)

	res, err := sales.Record(fx.db, sales.RecordInput{
		OutletID:         fx.outlet.ID,
		Items:            []sales.ItemInput{{ProductID: fx.product.ID, Quantity: 60, UnitType: models.SaleUnitPiece}},
		PaymentMethod:    models.PaymentMethodCash,
		RecordedByUserID: 1,
	}, config.StockPolicyLenient)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Clamped {
		t.Fatal("Clamped işaretlenmeliydi")
	}

	bal, _ := ledger.GetBalance(fx.db, fx.product.ID, fx.outlet.ID)
	if bal.PieceQuantity != 0 {
		t.Fatalf("adet bakiyesi sıfırda taban yapmalıydı: %d", bal.PieceQuantity)
	}
	// satış tutarı istenen miktar üzerinden hesaplanır, stok clamp'i fiyatı etkilemez
	if !res.Sale.TotalAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("toplam 300 olmalıydı: %s", res.Sale.TotalAmount)
	}
}

func TestVoidRestoresStockAndDeletesSale(t *testing.T) {
	fx := newFixture(t)

	res, err := sales.Record(fx.db, sales.RecordInput{
		OutletID: fx.outlet.ID,
		Items: []sales.ItemInput{
			{ProductID: fx.product.ID, Quantity: 5, UnitType: models.SaleUnitPiece},
			{ProductID: fx.product.ID, Quantity: 1, UnitType: models.SaleUnitBulk},
		},
		PaymentMethod:    models.PaymentMethodCash,
		RecordedByUserID: 1,
		RecordedByName:   "Ayşe",
	}, config.StockPolicyStrict)
	if err != nil {
		t.Fatal(err)
	}

	if err := sales.Void(fx.db, res.Sale.ID, 1, "Ayşe"); err != nil {
		t.Fatalf("Void: %v", err)
	}

	// stok satıştan önceki haline döner
	bal, _ := ledger.GetBalance(fx.db, fx.product.ID, fx.outlet.ID)
	if bal.BulkQuantity != 10 || bal.PieceQuantity != 50 {
		t.Fatalf("bakiye 10/50'ye dönmeliydi: %d/%d", bal.BulkQuantity, bal.PieceQuantity)
	}

	var count int64
	fx.db.Model(&models.Sale{}).Where("id = ?", res.Sale.ID).Count(&count)
	if count != 0 {
		t.Fatal("satış silinmeliydi")
	}
	fx.db.Model(&models.SaleItem{}).Where("sale_id = ?", res.Sale.ID).Count(&count)
	if count != 0 {
		t.Fatal("satış kalemleri silinmeliydi")
	}
}

func TestVoidDebtSaleReducesCustomerDebt(t *testing.T) {
	fx := newFixture(t)

	customer := models.Customer{Name: "Mehmet", TotalOwed: decimal.Zero}
	fx.db.Create(&customer)

	res, err := sales.Record(fx.db, sales.RecordInput{
		OutletID:         fx.outlet.ID,
		Items:            []sales.ItemInput{{ProductID: fx.product.ID, Quantity: 8, UnitType: models.SaleUnitPiece}},
		PaymentMethod:    models.PaymentMethodDebt,
		CustomerID:       &customer.ID,
		RecordedByUserID: 1,
	}, config.StockPolicyStrict)
	if err != nil {
		t.Fatal(err)
	}

	if err := sales.Void(fx.db, res.Sale.ID, 1, "Ayşe"); err != nil {
		t.Fatal(err)
	}

	// borç, satışın kalan bakiyesi kadar geri düşer
	var fresh models.Customer
	fx.db.First(&fresh, "id = ?", customer.ID)
	if !fresh.TotalOwed.IsZero() {
		t.Fatalf("müşteri borcu sıfıra dönmeliydi: %s", fresh.TotalOwed)
	}
}

func TestVoidUnknownSale(t *testing.T) {
	fx := newFixture(t)

	if err := sales.Void(fx.db, 999, 1, "Ayşe"); !errors.Is(err, sales.ErrSaleNotFound) {
		t.Fatalf("ErrSaleNotFound bekleniyordu: %v", err)
	}
}
