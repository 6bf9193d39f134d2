package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer: Veresiye defterindeki müşteri. TotalOwed önbelleklenmiş toplamdır;
// müşterinin veresiye satışlarındaki BalanceDue toplamına her zaman eşit tutulur.
type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:50"`
	TotalOwed decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repayment: Müşteriden alınan veresiye tahsilatı kaydı.
type Repayment struct {
	ID         uint `gorm:"primaryKey"`
	CustomerID uint `gorm:"index;not null"`
	Customer   Customer
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Method     PaymentMethod   `gorm:"size:20;not null"`
	ReceivedAt time.Time       `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
