package catalog

import (
	"errors"
	"fmt"
	"time"

	"spine-backend/internal/activity"
	"spine-backend/internal/config"
	"spine-backend/internal/ledger"
	"spine-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrZeroQuantity   = errors.New("giriş miktarı 0'dan büyük olmalı")
	ErrOutletNotFound = errors.New("şube bulunamadı")
)

type RestockInput struct {
	ProductID        uint
	OutletID         uint
	BulkQuantity     int
	PieceQuantity    int
	ExpiryDate       *time.Time // nil = hiç bozulmaz
	SerialNumber     string     // opsiyonel; doluysa ürünün barkodu güncellenir
	ReceivedByUserID uint
	ReceivedByName   string
}

// Restock: Yeni stok girişi. Şubede tarihli bir parti açar ve şube bakiyesiyle
// dükkan geneli toplamları aynı miktarda artırır. Çağıranın transaction'ı
// içinde çalışmalıdır.
func Restock(db *gorm.DB, in RestockInput) (*models.Batch, error) {
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

	if in.SerialNumber != "" && in.SerialNumber != product.SerialNumber {
		// Aynı fiziksel ürünün yeni girişleri barkodu paylaşır
		product.SerialNumber = in.SerialNumber
		if err := db.Save(&product).Error; err != nil {
			return nil, err
		}
	}

	batch := models.Batch{
		ProductID:     in.ProductID,
		OutletID:      in.OutletID,
		ExpiryDate:    in.ExpiryDate,
		BulkQuantity:  in.BulkQuantity,
		PieceQuantity: in.PieceQuantity,
		AddedAt:       time.Now(),
	}
	if err := db.Create(&batch).Error; err != nil {
		return nil, err
	}

	if _, err := ledger.ApplyDelta(db, in.ProductID, in.OutletID, in.BulkQuantity, in.PieceQuantity, config.StockPolicyStrict); err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Stok girişi: %s - %d %s + %d %s (%s)",
		product.Name, in.BulkQuantity, product.BulkUnitName, in.PieceQuantity, product.PieceUnitName, outlet.Name)
	if in.ExpiryDate != nil {
		details += fmt.Sprintf(", SKT: %s", in.ExpiryDate.Format("2006-01-02"))
	}
	if err := activity.Write(db, activity.LogOptions{
		OutletID:   &in.OutletID,
		UserID:     in.ReceivedByUserID,
		UserName:   in.ReceivedByName,
		EntityType: "batch",
		EntityID:   batch.ID,
		Action:     models.ActivityStockReceived,
		Severity:   models.SeverityInfo,
		Details:    details,
	}); err != nil {
		return nil, err
	}

	return &batch, nil
}
