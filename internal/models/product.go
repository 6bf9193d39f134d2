package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product: Satılabilir ürün. Stok iki ayrı birimde tutulur (toptan + adet),
// birimler arası otomatik dönüşüm yapılmaz.
type Product struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:100;not null;unique"`
	Category      string `gorm:"size:50;index"`
	SerialNumber  string `gorm:"size:100;index"` // barkod, opsiyonel; aynı ürünün farklı girişleri paylaşabilir
	BulkUnitName  string `gorm:"size:20;not null"` // koli, çuval, kasa vs.
	PieceUnitName string `gorm:"size:20;not null"` // adet, paket vs.
	UnitsPerBulk  int    `gorm:"not null"`         // bir toptan birimindeki adet sayısı (>= 1)

	CostPricePerPiece    decimal.Decimal  `gorm:"type:decimal(20,4);not null"`
	SellingPricePerPiece decimal.Decimal  `gorm:"type:decimal(20,4);not null"`
	SellingPricePerBulk  *decimal.Decimal `gorm:"type:decimal(20,4)"` // opsiyonel; yoksa adet fiyatı * UnitsPerBulk

	// Dükkan geneli toplamlar. Değişmez kural: şube bakiyelerinin toplamına eşit tutulur.
	BulkQuantity  int `gorm:"not null;default:0"`
	PieceQuantity int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Batches  []Batch        `gorm:"foreignKey:ProductID"`
	Balances []StockBalance `gorm:"foreignKey:ProductID"`
}
