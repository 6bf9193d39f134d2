package transfer_test

import (
	"errors"
	"testing"

	"spine-backend/internal/config"
	"spine-backend/internal/ledger"
	"spine-backend/internal/models"
	"spine-backend/internal/testutil"
	"spine-backend/internal/transfer"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	from    *models.Outlet
	to      *models.Outlet
	product *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)

	from := models.Outlet{Name: "Merkez"}
	to := models.Outlet{Name: "Çarşı"}
	if err := db.Create(&from).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&to).Error; err != nil {
		t.Fatal(err)
	}

	p := models.Product{
		Name:                 "Çay",
		BulkUnitName:         "koli",
		PieceUnitName:        "paket",
		UnitsPerBulk:         20,
		CostPricePerPiece:    decimal.NewFromInt(20),
		SellingPricePerPiece: decimal.NewFromInt(30),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := ledger.ApplyDelta(db, p.ID, from.ID, 5, 30, config.StockPolicyStrict); err != nil {
		t.Fatal(err)
	}

	return &fixture{db: db, from: &from, to: &to, product: &p}
}

func TestMoveConservesGlobalTotal(t *testing.T) {
	fx := newFixture(t)

	rec, err := transfer.Move(fx.db, transfer.MoveInput{
		ProductID:         fx.product.ID,
		FromOutletID:      fx.from.ID,
		ToOutletID:        fx.to.ID,
		BulkQuantity:      2,
		PieceQuantity:     10,
		PerformedByUserID: 1,
		PerformedByName:   "Ayşe",
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("taşıma kaydı oluşmalıydı")
	}

	src, _ := ledger.GetBalance(fx.db, fx.product.ID, fx.from.ID)
	dst, _ := ledger.GetBalance(fx.db, fx.product.ID, fx.to.ID)
	if src.BulkQuantity != 3 || src.PieceQuantity != 20 {
		t.Fatalf("kaynak 3/20 olmalıydı: %d/%d", src.BulkQuantity, src.PieceQuantity)
	}
	if dst.BulkQuantity != 2 || dst.PieceQuantity != 10 {
		t.Fatalf("hedef 2/10 olmalıydı: %d/%d", dst.BulkQuantity, dst.PieceQuantity)
	}

	// dükkan geneli toplam taşımadan etkilenmez
	var fresh models.Product
	fx.db.First(&fresh, "id = ?", fx.product.ID)
	if fresh.BulkQuantity != 5 || fresh.PieceQuantity != 30 {
		t.Fatalf("toplam 5/30 kalmalıydı: %d/%d", fresh.BulkQuantity, fresh.PieceQuantity)
	}
}

func TestMoveRejectsSameOutlet(t *testing.T) {
	fx := newFixture(t)

	_, err := transfer.Move(fx.db, transfer.MoveInput{
		ProductID:    fx.product.ID,
		FromOutletID: fx.from.ID,
		ToOutletID:   fx.from.ID,
		BulkQuantity: 1,
	})
	if !errors.Is(err, transfer.ErrSameOutlet) {
		t.Fatalf("ErrSameOutlet bekleniyordu: %v", err)
	}
}

func TestMoveRejectsZeroAndNegativeQuantity(t *testing.T) {
	fx := newFixture(t)

	_, err := transfer.Move(fx.db, transfer.MoveInput{
		ProductID:    fx.product.ID,
		FromOutletID: fx.from.ID,
		ToOutletID:   fx.to.ID,
	})
	if !errors.Is(err, transfer.ErrZeroQuantity) {
		t.Fatalf("ErrZeroQuantity bekleniyordu: %v", err)
	}

	_, err = transfer.Move(fx.db, transfer.MoveInput{
		ProductID:     fx.product.ID,
		FromOutletID:  fx.from.ID,
		ToOutletID:    fx.to.ID,
		PieceQuantity: -5,
	})
	if !errors.Is(err, transfer.ErrZeroQuantity) {
		t.Fatalf("negatif miktar reddedilmeliydi: %v", err)
	}
}

func TestMoveRejectsInsufficientStockWithoutWriting(t *testing.T) {
	fx := newFixture(t)

	_, err := transfer.Move(fx.db, transfer.MoveInput{
		ProductID:     fx.product.ID,
		FromOutletID:  fx.from.ID,
		ToOutletID:    fx.to.ID,
		BulkQuantity:  6, // elde 5 var
		PieceQuantity: 1,
	})
	if !errors.Is(err, transfer.ErrInsufficientStock) {
		t.Fatalf("ErrInsufficientStock bekleniyordu: %v", err)
	}

	// reddedilen taşıma hiçbir bakiyeyi değiştirmez
	src, _ := ledger.GetBalance(fx.db, fx.product.ID, fx.from.ID)
	dst, _ := ledger.GetBalance(fx.db, fx.product.ID, fx.to.ID)
	if src.BulkQuantity != 5 || src.PieceQuantity != 30 {
		t.Fatalf("kaynak değişmemeliydi: %d/%d", src.BulkQuantity, src.PieceQuantity)
	}
	if dst.BulkQuantity != 0 || dst.PieceQuantity != 0 {
		t.Fatalf("hedef boş kalmalıydı: %d/%d", dst.BulkQuantity, dst.PieceQuantity)
	}

	var count int64
	fx.db.Model(&models.StockTransfer{}).Count(&count)
	if count != 0 {
		t.Fatal("taşıma kaydı oluşmamalıydı")
	}
}

func TestMoveLeavesBatchesAtSource(t *testing.T) {
	fx := newFixture(t)

	b := models.Batch{ProductID: fx.product.ID, OutletID: fx.from.ID, BulkQuantity: 5, PieceQuantity: 30}
	if err := fx.db.Create(&b).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := transfer.Move(fx.db, transfer.MoveInput{
		ProductID:         fx.product.ID,
		FromOutletID:      fx.from.ID,
		ToOutletID:        fx.to.ID,
		BulkQuantity:      2,
		PerformedByUserID: 1,
	}); err != nil {
		t.Fatal(err)
	}

	// taşıma bakiye seviyesindedir; parti kaynakta olduğu gibi kalır
	var fresh models.Batch
	fx.db.First(&fresh, "id = ?", b.ID)
	if fresh.OutletID != fx.from.ID || fresh.BulkQuantity != 5 {
		t.Fatalf("parti kaynakta değişmeden kalmalıydı: şube %d, %d koli", fresh.OutletID, fresh.BulkQuantity)
	}
}

func TestMoveUnknownOutlet(t *testing.T) {
	fx := newFixture(t)

	_, err := transfer.Move(fx.db, transfer.MoveInput{
		ProductID:    fx.product.ID,
		FromOutletID: fx.from.ID,
		ToOutletID:   999,
		BulkQuantity: 1,
	})
	if !errors.Is(err, transfer.ErrOutletNotFound) {
		t.Fatalf("ErrOutletNotFound bekleniyordu: %v", err)
	}
}
