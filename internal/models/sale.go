package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer" // havale/mobil ödeme
	PaymentMethodDebt     PaymentMethod = "debt"     // veresiye
)

type SaleUnitType string

const (
	SaleUnitPiece SaleUnitType = "piece"
	SaleUnitBulk  SaleUnitType = "bulk"
)

// Sale: Bir satış fişi. Oluşturulduktan sonra yalnızca AmountPaid/BalanceDue
// alanları tahsilat dağıtımı tarafından güncellenir; kalemler değişmez.
// Değişmez kural: BalanceDue = TotalAmount - AmountPaid.
type Sale struct {
	ID        uint   `gorm:"primaryKey"`
	ReceiptNo string `gorm:"size:36;uniqueIndex;not null"` // uuid
	OutletID  uint   `gorm:"index;not null"`
	Outlet    Outlet
	Timestamp time.Time `gorm:"index;not null"`

	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TotalProfit   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null;index"`
	CustomerID    *uint           `gorm:"index"` // veresiye satışta zorunlu
	Customer      *Customer
	AmountPaid    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	BalanceDue    decimal.Decimal `gorm:"type:decimal(20,4);not null"`

	RecordedByUserID uint `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// SaleItem: Satış kalemi. Satış oluşturulduktan sonra değişmez.
type SaleItem struct {
	ID          uint `gorm:"primaryKey"`
	SaleID      uint `gorm:"index;not null"`
	ProductID   uint `gorm:"index;not null"`
	ProductName string `gorm:"size:100;not null"` // satış anındaki ad (denormalize)
	Quantity    int    `gorm:"not null"`
	PriceAtSale decimal.Decimal `gorm:"type:decimal(20,4);not null"` // satış anındaki birim fiyat
	UnitType    SaleUnitType    `gorm:"size:10;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
