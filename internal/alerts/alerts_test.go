package alerts_test

import (
	"testing"
	"time"

	"spine-backend/internal/alerts"
	"spine-backend/internal/models"
	"spine-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, db *gorm.DB, name string, unitsPerBulk int) *models.Product {
	t.Helper()
	p := models.Product{
		Name:                 name,
		BulkUnitName:         "koli",
		PieceUnitName:        "adet",
		UnitsPerBulk:         unitsPerBulk,
		CostPricePerPiece:    decimal.NewFromInt(5),
		SellingPricePerPiece: decimal.NewFromInt(8),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	return &p
}

func findAlert(list []alerts.Alert, typ alerts.AlertType, productID uint) *alerts.Alert {
	for i := range list {
		if list[i].Type == typ && list[i].ProductID == productID {
			return &list[i]
		}
	}
	return nil
}

func TestForOutletStockThresholds(t *testing.T) {
	db := testutil.NewTestDB(t)
	o := models.Outlet{Name: "Merkez"}
	db.Create(&o)

	empty := seedProduct(t, db, "Tuz", 10)
	low := seedProduct(t, db, "Şeker", 10)
	full := seedProduct(t, db, "Un", 10)

	db.Create(&models.StockBalance{ProductID: empty.ID, OutletID: o.ID})
	// 1 koli + 4 adet = 14 adet, eşiğin tam üstünde
	db.Create(&models.StockBalance{ProductID: low.ID, OutletID: o.ID, BulkQuantity: 1, PieceQuantity: 4})
	db.Create(&models.StockBalance{ProductID: full.ID, OutletID: o.ID, BulkQuantity: 1, PieceQuantity: 5})

	list, err := alerts.ForOutlet(db, o.ID, time.Now())
	if err != nil {
		t.Fatalf("ForOutlet: %v", err)
	}

	out := findAlert(list, alerts.AlertOutOfStock, empty.ID)
	if out == nil {
		t.Fatal("stok tükendi uyarısı bekleniyordu")
	}
	if !out.Critical {
		t.Fatal("stok tükendi kritik olmalı")
	}

	lowAlert := findAlert(list, alerts.AlertLowStock, low.ID)
	if lowAlert == nil {
		t.Fatal("düşük stok uyarısı bekleniyordu")
	}
	if lowAlert.TotalPieces == nil || *lowAlert.TotalPieces != 14 {
		t.Fatalf("toplam 14 adet raporlanmalıydı: %v", lowAlert.TotalPieces)
	}

	// 15 adet eşiğin üstünde, uyarı yok
	if a := findAlert(list, alerts.AlertLowStock, full.ID); a != nil {
		t.Fatalf("15 adet için uyarı olmamalıydı: %+v", a)
	}
	if a := findAlert(list, alerts.AlertOutOfStock, full.ID); a != nil {
		t.Fatalf("dolu stok için uyarı olmamalıydı: %+v", a)
	}
}

func TestForOutletExpiryWindow(t *testing.T) {
	db := testutil.NewTestDB(t)
	o := models.Outlet{Name: "Merkez"}
	db.Create(&o)
	p := seedProduct(t, db, "Süt", 12)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	in5 := now.AddDate(0, 0, 5)
	in20 := now.AddDate(0, 0, 20)
	in45 := now.AddDate(0, 0, 45)
	past := now.AddDate(0, 0, -1)

	critical := models.Batch{ProductID: p.ID, OutletID: o.ID, ExpiryDate: &in5, PieceQuantity: 6, AddedAt: now}
	warning := models.Batch{ProductID: p.ID, OutletID: o.ID, ExpiryDate: &in20, PieceQuantity: 6, AddedAt: now}
	outside := models.Batch{ProductID: p.ID, OutletID: o.ID, ExpiryDate: &in45, PieceQuantity: 6, AddedAt: now}
	expired := models.Batch{ProductID: p.ID, OutletID: o.ID, ExpiryDate: &past, PieceQuantity: 6, AddedAt: now}
	emptyBatch := models.Batch{ProductID: p.ID, OutletID: o.ID, ExpiryDate: &in5, AddedAt: now}

	for _, b := range []*models.Batch{&critical, &warning, &outside, &expired, &emptyBatch} {
		if err := db.Create(b).Error; err != nil {
			t.Fatal(err)
		}
	}
	// adet bakiyesi de olsun ki düşük stok uyarıları karışmasın
	db.Create(&models.StockBalance{ProductID: p.ID, OutletID: o.ID, PieceQuantity: 100})

	list, err := alerts.ForOutlet(db, o.ID, now)
	if err != nil {
		t.Fatal(err)
	}

	var got []alerts.Alert
	for _, a := range list {
		if a.Type == alerts.AlertExpiringSoon {
			got = append(got, a)
		}
	}
	if len(got) != 2 {
		t.Fatalf("2 SKT uyarısı bekleniyordu, gelen: %d", len(got))
	}

	for _, a := range got {
		switch *a.BatchID {
		case critical.ID:
			if !a.Critical {
				t.Fatal("5 günlük parti kritik işaretlenmeli")
			}
			if a.DaysLeft == nil || *a.DaysLeft != 5 {
				t.Fatalf("5 gün raporlanmalıydı: %v", a.DaysLeft)
			}
		case warning.ID:
			if a.Critical {
				t.Fatal("20 günlük parti kritik olmamalı")
			}
		default:
			t.Fatalf("beklenmeyen parti uyarısı: %d", *a.BatchID)
		}
	}
}
