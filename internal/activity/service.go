package activity

import (
	"fmt"

	"spine-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	OutletID   *uint
	UserID     uint
	UserName   string
	EntityType string
	EntityID   uint
	Action     models.ActivityAction
	Severity   models.ActivitySeverity
	Details    string
}

// Write: İşlem günlüğüne bir kayıt ekler. Günlük salt eklemedir; kayıtlar
// sonradan değiştirilmez. Çağıranın transaction'ı içinde çalışsın diye db
// parametre olarak alınır.
func Write(db *gorm.DB, opts LogOptions) error {
	if opts.Severity == "" {
		opts.Severity = models.SeverityInfo
	}

	entry := models.ActivityLog{
		OutletID:   opts.OutletID,
		UserID:     opts.UserID,
		UserName:   opts.UserName,
		EntityType: opts.EntityType,
		EntityID:   opts.EntityID,
		Action:     opts.Action,
		Severity:   opts.Severity,
		Details:    opts.Details,
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("işlem günlüğü kaydedilemedi: %w", err)
	}

	return nil
}
