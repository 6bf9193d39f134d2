package models

import "time"

// StockBalance: Bir ürünün bir şubedeki stok bakiyesi. (product, outlet) başına tek kayıt.
// Miktarlar hiçbir zaman negatife düşmez; tüm mutasyonlar sıfırda taban yapar.
type StockBalance struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index:idx_stock_balance_product_outlet,unique;not null"`
	Product   Product
	OutletID  uint `gorm:"index:idx_stock_balance_product_outlet,unique;not null"`
	Outlet    Outlet

	BulkQuantity  int `gorm:"not null;default:0"`
	PieceQuantity int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
