package models

import "time"

// Batch: Bir şubedeki tarihli stok partisi. SKT takibi ve tüketim sırası için kullanılır.
// ExpiryDate nil ise parti hiç bozulmaz ve en son tüketilir.
// Miktarı sıfıra inen parti silinmez, sıfır bakiyeli kayıt olarak kalır.
type Batch struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	OutletID  uint `gorm:"index;not null"`
	Outlet    Outlet

	ExpiryDate    *time.Time `gorm:"index"`
	BulkQuantity  int        `gorm:"not null;default:0"`
	PieceQuantity int        `gorm:"not null;default:0"`
	AddedAt       time.Time  `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
