package alerts

import (
	"fmt"
	"math"
	"time"

	"spine-backend/internal/models"

	"gorm.io/gorm"
)

type AlertType string

const (
	AlertOutOfStock   AlertType = "out_of_stock"
	AlertLowStock     AlertType = "low_stock"
	AlertExpiringSoon AlertType = "expiring_soon"
)

// Düşük stok eşiği: toplam 1-14 adet arası uyarı verir.
const lowStockThreshold = 14

// SKT uyarı pencereleri (gün)
const (
	expiryWindowDays   = 30
	expiryCriticalDays = 7
)

type Alert struct {
	Type        AlertType `json:"type"`
	ProductID   uint      `json:"product_id"`
	ProductName string    `json:"product_name"`
	OutletID    uint      `json:"outlet_id"`
	BatchID     *uint     `json:"batch_id,omitempty"`
	TotalPieces *int      `json:"total_pieces,omitempty"`
	DaysLeft    *int      `json:"days_left,omitempty"`
	Critical    bool      `json:"critical"`
	Details     string    `json:"details"`
}

// ForOutlet: Şubenin türetilmiş stok uyarılarını hesaplar. Toplam adet,
// toptan bakiyenin UnitsPerBulk ile adete çevrilmesiyle bulunur; stok tükendi
// (0 adet) ve düşük stok (1-14 adet) bu toplam üzerinden verilir. SKT uyarısı
// 30 gün içinde bozulacak dolu partiler için, 7 gün ve altı kritik işaretli.
func ForOutlet(db *gorm.DB, outletID uint, now time.Time) ([]Alert, error) {
	alerts := make([]Alert, 0)

	var balances []models.StockBalance
	if err := db.Preload("Product").Where("outlet_id = ?", outletID).Find(&balances).Error; err != nil {
		return nil, err
	}

	for _, bal := range balances {
		unitsPerBulk := bal.Product.UnitsPerBulk
		if unitsPerBulk < 1 {
			unitsPerBulk = 1
		}
		total := bal.BulkQuantity*unitsPerBulk + bal.PieceQuantity
		totalCopy := total

		switch {
		case total == 0:
			alerts = append(alerts, Alert{
				Type:        AlertOutOfStock,
				ProductID:   bal.ProductID,
				ProductName: bal.Product.Name,
				OutletID:    outletID,
				TotalPieces: &totalCopy,
				Critical:    true,
				Details:     fmt.Sprintf("%s stoğu tükendi", bal.Product.Name),
			})
		case total <= lowStockThreshold:
			alerts = append(alerts, Alert{
				Type:        AlertLowStock,
				ProductID:   bal.ProductID,
				ProductName: bal.Product.Name,
				OutletID:    outletID,
				TotalPieces: &totalCopy,
				Details:     fmt.Sprintf("%s stoğu azaldı: %d %s kaldı", bal.Product.Name, total, bal.Product.PieceUnitName),
			})
		}
	}

	var batches []models.Batch
	if err := db.Preload("Product").
		Where("outlet_id = ? AND expiry_date IS NOT NULL", outletID).
		Find(&batches).Error; err != nil {
		return nil, err
	}

	for _, b := range batches {
		if b.BulkQuantity <= 0 && b.PieceQuantity <= 0 {
			continue // boş parti uyarı üretmez
		}
		days := int(math.Ceil(b.ExpiryDate.Sub(now).Hours() / 24))
		if days <= 0 || days > expiryWindowDays {
			continue
		}
		batchID := b.ID
		daysCopy := days
		alerts = append(alerts, Alert{
			Type:        AlertExpiringSoon,
			ProductID:   b.ProductID,
			ProductName: b.Product.Name,
			OutletID:    outletID,
			BatchID:     &batchID,
			DaysLeft:    &daysCopy,
			Critical:    days <= expiryCriticalDays,
			Details:     fmt.Sprintf("%s partisinin SKT'sine %d gün kaldı", b.Product.Name, days),
		})
	}

	return alerts, nil
}
