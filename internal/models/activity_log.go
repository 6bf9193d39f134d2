package models

import "time"

type ActivityAction string

const (
	ActivitySaleRecorded     ActivityAction = "sale_recorded"
	ActivitySaleVoided       ActivityAction = "sale_voided"
	ActivityRepaymentReceived ActivityAction = "repayment_received"
	ActivityStockTransferred ActivityAction = "stock_transferred"
	ActivityStockAdjusted    ActivityAction = "stock_adjusted"
	ActivityStockReceived    ActivityAction = "stock_received"
	ActivityProductCreated   ActivityAction = "product_created"
	ActivityCustomerCreated  ActivityAction = "customer_created"
	ActivityOutletCreated    ActivityAction = "outlet_created"
)

type ActivitySeverity string

const (
	SeverityInfo    ActivitySeverity = "info"
	SeverityWarning ActivitySeverity = "warning"
	SeverityAlert   ActivitySeverity = "alert"
)

// ActivityLog: Salt ekleme (append-only) işlem günlüğü. Kayıtlar hiçbir zaman
// güncellenmez veya silinmez.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Hangi şube?
	OutletID *uint `json:"outlet_id"`

	// Hangi kullanıcı?
	UserID   uint   `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // kullanıcı adı (denormalize)

	// Hangi entity? (ör: "sale", "customer", "batch")
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action   ActivityAction   `gorm:"size:30;index" json:"action"`
	Severity ActivitySeverity `gorm:"size:10;index" json:"severity"`

	// İnsan tarafından okunabilir özet
	Details string `gorm:"size:500" json:"details"`
}
