package models

import "time"

type AdjustmentType string

const (
	AdjustmentDamage  AdjustmentType = "damage"
	AdjustmentLoss    AdjustmentType = "loss"
	AdjustmentReturn  AdjustmentType = "return"
	AdjustmentExpired AdjustmentType = "expired"
)

// StockTransfer: Şubeler arası stok taşıma kaydı. Taşıma bakiye seviyesindedir;
// partiler kaynak şubeye bağlı kalır.
type StockTransfer struct {
	ID           uint `gorm:"primaryKey"`
	ProductID    uint `gorm:"index;not null"`
	Product      Product
	FromOutletID uint `gorm:"index;not null"`
	FromOutlet   Outlet `gorm:"foreignKey:FromOutletID"`
	ToOutletID   uint   `gorm:"index;not null"`
	ToOutlet     Outlet `gorm:"foreignKey:ToOutletID"`

	BulkQuantity  int `gorm:"not null;default:0"`
	PieceQuantity int `gorm:"not null;default:0"`

	PerformedByUserID uint `gorm:"not null"`
	Note              string `gorm:"size:255"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StockAdjustment: Stok düşümü kaydı (fire, kayıp, iade, SKT geçmiş).
type StockAdjustment struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	OutletID  uint `gorm:"index;not null"`
	Outlet    Outlet

	Type          AdjustmentType `gorm:"size:20;not null;index"`
	BulkQuantity  int            `gorm:"not null;default:0"`
	PieceQuantity int            `gorm:"not null;default:0"`

	PerformedByUserID uint `gorm:"not null"`
	Note              string `gorm:"size:500"` // sebep açıklaması
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
