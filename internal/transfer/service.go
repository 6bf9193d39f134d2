package transfer

import (
	"errors"
	"fmt"

	"spine-backend/internal/activity"
	"spine-backend/internal/config"
	"spine-backend/internal/ledger"
	"spine-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSameOutlet        = errors.New("kaynak ve hedef şube aynı olamaz")
	ErrZeroQuantity      = errors.New("taşınacak miktar 0'dan büyük olmalı")
	ErrOutletNotFound    = errors.New("şube bulunamadı")
	ErrInsufficientStock = errors.New("kaynak şubede yeterli stok yok")
)

type MoveInput struct {
	ProductID         uint
	FromOutletID      uint
	ToOutletID        uint
	BulkQuantity      int
	PieceQuantity     int
	PerformedByUserID uint
	PerformedByName   string
	Note              string
}

// Move: Stoku kaynaktan hedefe sıfır toplamlı taşır; ürünün dükkan geneli
// toplamı değişmez. Yetersiz stok politikadan bağımsız her zaman reddedilir,
// hiçbir yazma yapılmadan önce doğrulanır. Partiler kaynak şubeye bağlı kalır.
// Çağıranın transaction'ı içinde çalışmalıdır.
func Move(db *gorm.DB, in MoveInput) (*models.StockTransfer, error) {
	if in.FromOutletID == in.ToOutletID {
		return nil, ErrSameOutlet
	}
	if in.BulkQuantity < 0 || in.PieceQuantity < 0 {
		return nil, ErrZeroQuantity
	}
	if in.BulkQuantity == 0 && in.PieceQuantity == 0 {
		return nil, ErrZeroQuantity
	}

	var product models.Product
	if err := db.First(&product, "id = ?", in.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrProductNotFound
		}
		return nil, err
	}

	var fromOutlet, toOutlet models.Outlet
	if err := db.First(&fromOutlet, "id = ?", in.FromOutletID).Error; err != nil {
		return nil, ErrOutletNotFound
	}
	if err := db.First(&toOutlet, "id = ?", in.ToOutletID).Error; err != nil {
		return nil, ErrOutletNotFound
	}

	src, err := ledger.GetBalance(db, in.ProductID, in.FromOutletID)
	if err != nil {
		return nil, err
	}
	if src.BulkQuantity < in.BulkQuantity || src.PieceQuantity < in.PieceQuantity {
		return nil, ErrInsufficientStock
	}

	// Kaynaktan düş, hedefe ekle; iki delta birbirini toplamda sıfırlar
	if _, err := ledger.ApplyDelta(db, in.ProductID, in.FromOutletID, -in.BulkQuantity, -in.PieceQuantity, config.StockPolicyStrict); err != nil {
		return nil, err
	}
	if _, err := ledger.ApplyDelta(db, in.ProductID, in.ToOutletID, in.BulkQuantity, in.PieceQuantity, config.StockPolicyStrict); err != nil {
		return nil, err
	}

	rec := models.StockTransfer{
		ProductID:         in.ProductID,
		FromOutletID:      in.FromOutletID,
		ToOutletID:        in.ToOutletID,
		BulkQuantity:      in.BulkQuantity,
		PieceQuantity:     in.PieceQuantity,
		PerformedByUserID: in.PerformedByUserID,
		Note:              in.Note,
	}
	if err := db.Create(&rec).Error; err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Stok taşıma: %s - %d %s + %d %s (%s → %s)",
		product.Name, in.BulkQuantity, product.BulkUnitName, in.PieceQuantity, product.PieceUnitName,
		fromOutlet.Name, toOutlet.Name)
	if err := activity.Write(db, activity.LogOptions{
		OutletID:   &in.FromOutletID,
		UserID:     in.PerformedByUserID,
		UserName:   in.PerformedByName,
		EntityType: "stock_transfer",
		EntityID:   rec.ID,
		Action:     models.ActivityStockTransferred,
		Severity:   models.SeverityInfo,
		Details:    details,
	}); err != nil {
		return nil, err
	}

	return &rec, nil
}
