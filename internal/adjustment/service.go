package adjustment

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
	ErrZeroQuantity   = errors.New("düşülecek miktar 0'dan büyük olmalı")
	ErrInvalidType    = errors.New("geçersiz düzeltme tipi")
	ErrOutletNotFound = errors.New("şube bulunamadı")
)

type ApplyInput struct {
	ProductID         uint
	OutletID          uint
	Type              models.AdjustmentType
	BulkQuantity      int
	PieceQuantity     int
	PerformedByUserID uint
	PerformedByName   string
	Note              string
}

type ApplyResult struct {
	Adjustment *models.StockAdjustment
	// Clamped: İstenen düşümün tamamı uygulanamadı, bakiye sıfırda taban yaptı.
	Clamped bool
}

func validType(t models.AdjustmentType) bool {
	switch t {
	case models.AdjustmentDamage, models.AdjustmentLoss, models.AdjustmentReturn, models.AdjustmentExpired:
		return true
	}
	return false
}

// Apply: Şube bakiyesinden ve dükkan geneli toplamlardan düşer, ardından aynı
// şubedeki partileri SKT sırasına göre (SKT'siz partiler en son) tüketir.
// Partilerden yalnızca bakiyeye gerçekten uygulanan miktar düşülür; böylece
// parti toplamları bakiyenin alt bölüntüsü olarak tutarlı kalır.
// Çağıranın transaction'ı içinde çalışmalıdır.
func Apply(db *gorm.DB, in ApplyInput, policy config.StockPolicy) (*ApplyResult, error) {
	if !validType(in.Type) {
		return nil, ErrInvalidType
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

	var outlet models.Outlet
	if err := db.First(&outlet, "id = ?", in.OutletID).Error; err != nil {
		return nil, ErrOutletNotFound
	}

	res, err := ledger.ApplyDelta(db, in.ProductID, in.OutletID, -in.BulkQuantity, -in.PieceQuantity, policy)
	if err != nil {
		return nil, err
	}

	// Bakiyeden gerçekte düşülen kadar partilerden de düş
	if err := ledger.DepleteBatches(db, in.ProductID, in.OutletID, -res.AppliedBulk, -res.AppliedPiece); err != nil {
		return nil, err
	}

	rec := models.StockAdjustment{
		ProductID:         in.ProductID,
		OutletID:          in.OutletID,
		Type:              in.Type,
		BulkQuantity:      in.BulkQuantity,
		PieceQuantity:     in.PieceQuantity,
		PerformedByUserID: in.PerformedByUserID,
		Note:              in.Note,
	}
	if err := db.Create(&rec).Error; err != nil {
		return nil, err
	}

	// SKT geçmiş stok düşümü alert, diğerleri warning
	severity := models.SeverityWarning
	if in.Type == models.AdjustmentExpired {
		severity = models.SeverityAlert
	}

	details := fmt.Sprintf("Stok düzeltme (%s): %s - %d %s + %d %s",
		in.Type, product.Name, in.BulkQuantity, product.BulkUnitName, in.PieceQuantity, product.PieceUnitName)
	if in.Note != "" {
		details += fmt.Sprintf(" (Not: %s)", in.Note)
	}
	if err := activity.Write(db, activity.LogOptions{
		OutletID:   &in.OutletID,
		UserID:     in.PerformedByUserID,
		UserName:   in.PerformedByName,
		EntityType: "stock_adjustment",
		EntityID:   rec.ID,
		Action:     models.ActivityStockAdjusted,
		Severity:   severity,
		Details:    details,
	}); err != nil {
		return nil, err
	}

	return &ApplyResult{Adjustment: &rec, Clamped: res.Clamped}, nil
}
