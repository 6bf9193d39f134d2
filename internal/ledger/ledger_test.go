package ledger_test

import (
	"errors"
	"testing"
	"time"

	"spine-backend/internal/config"
	"spine-backend/internal/ledger"
	"spine-backend/internal/models"
	"spine-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, db *gorm.DB, name string, unitsPerBulk int) *models.Product {
	t.Helper()
	p := models.Product{
		Name:                 name,
		BulkUnitName:         "çuval",
		PieceUnitName:        "kg",
		UnitsPerBulk:         unitsPerBulk,
		CostPricePerPiece:    decimal.NewFromInt(10),
		SellingPricePerPiece: decimal.NewFromInt(15),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	return &p
}

func seedOutlet(t *testing.T, db *gorm.DB, name string) *models.Outlet {
	t.Helper()
	o := models.Outlet{Name: name}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("şube oluşturulamadı: %v", err)
	}
	return &o
}

func TestGetBalanceMissingReturnsZero(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := seedProduct(t, db, "Pirinç", 25)
	o := seedOutlet(t, db, "Merkez")

	bal, err := ledger.GetBalance(db, p.ID, o.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal.BulkQuantity != 0 || bal.PieceQuantity != 0 {
		t.Fatalf("bakiye sıfır olmalıydı, gelen: %d/%d", bal.BulkQuantity, bal.PieceQuantity)
	}
}

func TestApplyDeltaCreatesBalanceAndUpdatesTotals(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := seedProduct(t, db, "Pirinç", 25)
	o := seedOutlet(t, db, "Merkez")

	res, err := ledger.ApplyDelta(db, p.ID, o.ID, 3, 40, config.StockPolicyStrict)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if res.Clamped {
		t.Fatal("pozitif delta clamp etmemeli")
	}
	if res.AppliedBulk != 3 || res.AppliedPiece != 40 {
		t.Fatalf("uygulanan delta yanlış: %d/%d", res.AppliedBulk, res.AppliedPiece)
	}

	bal, _ := ledger.GetBalance(db, p.ID, o.ID)
	if bal.BulkQuantity != 3 || bal.PieceQuantity != 40 {
		t.Fatalf("bakiye yanlış: %d/%d", bal.BulkQuantity, bal.PieceQuantity)
	}

	var fresh models.Product
	if err := db.First(&fresh, "id = ?", p.ID).Error; err != nil {
		t.Fatal(err)
	}
	if fresh.BulkQuantity != 3 || fresh.PieceQuantity != 40 {
		t.Fatalf("dükkan geneli toplam bakiyeyle eş gitmiyor: %d/%d", fresh.BulkQuantity, fresh.PieceQuantity)
	}
}

func TestApplyDeltaStrictRejectsUnderflow(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := seedProduct(t, db, "Pirinç", 25)
	o := seedOutlet(t, db, "Merkez")

	if _, err := ledger.ApplyDelta(db, p.ID, o.ID, 0, 10, config.StockPolicyStrict); err != nil {
		t.Fatal(err)
	}

	_, err := ledger.ApplyDelta(db, p.ID, o.ID, 0, -11, config.StockPolicyStrict)
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("ErrInsufficientStock bekleniyordu, gelen: %v", err)
	}

	// Reddedilen istek hiçbir şeyi değiştirmemeli
	bal, _ := ledger.GetBalance(db, p.ID, o.ID)
	if bal.PieceQuantity != 10 {
		t.Fatalf("bakiye değişmemeliydi: %d", bal.PieceQuantity)
	}
}

func TestApplyDeltaLenientClampsAtZero(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := seedProduct(t, db, "Pirinç", 25)
	o := seedOutlet(t, db, "Merkez")

	if _, err := ledger.ApplyDelta(db, p.ID, o.ID, 2, 10, config.StockPolicyLenient); err != nil {
		t.Fatal(err)
	}

	res, err := ledger.ApplyDelta(db, p.ID, o.ID, 0, -25, config.StockPolicyLenient)
	if err != nil {
		t.Fatalf("lenient politika hata dönmemeli: %v", err)
	}
	if !res.Clamped {
		t.Fatal("Clamped işaretlenmeliydi")
	}
	if res.AppliedPiece != -10 {
		t.Fatalf("uygulanan delta -10 olmalıydı, gelen: %d", res.AppliedPiece)
	}

	bal, _ := ledger.GetBalance(db, p.ID, o.ID)
	if bal.BulkQuantity != 2 || bal.PieceQuantity != 0 {
		t.Fatalf("bakiye 2/0 olmalıydı: %d/%d", bal.BulkQuantity, bal.PieceQuantity)
	}

	// Toplamlar istenen değil, uygulanan delta kadar düşer
	var fresh models.Product
	db.First(&fresh, "id = ?", p.ID)
	if fresh.BulkQuantity != 2 || fresh.PieceQuantity != 0 {
		t.Fatalf("toplamlar 2/0 olmalıydı: %d/%d", fresh.BulkQuantity, fresh.PieceQuantity)
	}
}

func TestApplyDeltaProductNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	o := seedOutlet(t, db, "Merkez")

	_, err := ledger.ApplyDelta(db, 999, o.ID, 1, 0, config.StockPolicyStrict)
	if !errors.Is(err, ledger.ErrProductNotFound) {
		t.Fatalf("ErrProductNotFound bekleniyordu, gelen: %v", err)
	}
}

func TestSortBatchesForDepletionOrder(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	near := base.AddDate(0, 0, 5)
	far := base.AddDate(0, 0, 30)

	batches := []models.Batch{
		{ID: 1, ExpiryDate: nil, AddedAt: base},
		{ID: 2, ExpiryDate: &far, AddedAt: base},
		{ID: 3, ExpiryDate: &near, AddedAt: base.Add(time.Hour)},
		{ID: 4, ExpiryDate: &near, AddedAt: base},
		{ID: 5, ExpiryDate: nil, AddedAt: base.Add(-time.Hour)},
	}

	ledger.SortBatchesForDepletion(batches)

	// SKT yakın önce, eşitlikte eski giriş önce, SKT'sizler en sonda giriş sırasıyla
	want := []uint{4, 3, 2, 5, 1}
	for i, id := range want {
		if batches[i].ID != id {
			t.Fatalf("sıra %d: %d bekleniyordu, gelen: %d", i, id, batches[i].ID)
		}
	}
}

func TestDepleteBatchesWalksExpiryOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := seedProduct(t, db, "Süt", 12)
	o := seedOutlet(t, db, "Merkez")

	now := time.Now()
	soon := now.AddDate(0, 0, 5)

	// B1: 10 adet, SKT 5 gün sonra. B2: 20 adet, SKT'siz.
	b1 := models.Batch{ProductID: p.ID, OutletID: o.ID, ExpiryDate: &soon, PieceQuantity: 10, AddedAt: now.AddDate(0, 0, -3)}
	b2 := models.Batch{ProductID: p.ID, OutletID: o.ID, PieceQuantity: 20, AddedAt: now.AddDate(0, 0, -1)}
	if err := db.Create(&b1).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&b2).Error; err != nil {
		t.Fatal(err)
	}

	// 15 adet düş: B1 sıfırlanır, kalan 5 B2'den gider
	if err := ledger.DepleteBatches(db, p.ID, o.ID, 0, 15); err != nil {
		t.Fatalf("DepleteBatches: %v", err)
	}

	var f1, f2 models.Batch
	db.First(&f1, "id = ?", b1.ID)
	db.First(&f2, "id = ?", b2.ID)

	if f1.PieceQuantity != 0 {
		t.Fatalf("B1 sıfırlanmalıydı: %d", f1.PieceQuantity)
	}
	if f2.PieceQuantity != 15 {
		t.Fatalf("B2'de 15 kalmalıydı: %d", f2.PieceQuantity)
	}
}

func TestDepleteBatchesUnitsIndependent(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := seedProduct(t, db, "Un", 10)
	o := seedOutlet(t, db, "Merkez")

	now := time.Now()
	soon := now.AddDate(0, 0, 3)

	// İlk partide yalnız toptan, ikincide yalnız adet var
	b1 := models.Batch{ProductID: p.ID, OutletID: o.ID, ExpiryDate: &soon, BulkQuantity: 4, AddedAt: now.AddDate(0, 0, -2)}
	b2 := models.Batch{ProductID: p.ID, OutletID: o.ID, PieceQuantity: 8, AddedAt: now.AddDate(0, 0, -1)}
	db.Create(&b1)
	db.Create(&b2)

	if err := ledger.DepleteBatches(db, p.ID, o.ID, 2, 5); err != nil {
		t.Fatal(err)
	}

	var f1, f2 models.Batch
	db.First(&f1, "id = ?", b1.ID)
	db.First(&f2, "id = ?", b2.ID)

	if f1.BulkQuantity != 2 || f1.PieceQuantity != 0 {
		t.Fatalf("B1: 2/0 bekleniyordu, gelen: %d/%d", f1.BulkQuantity, f1.PieceQuantity)
	}
	if f2.BulkQuantity != 0 || f2.PieceQuantity != 3 {
		t.Fatalf("B2: 0/3 bekleniyordu, gelen: %d/%d", f2.BulkQuantity, f2.PieceQuantity)
	}
}
