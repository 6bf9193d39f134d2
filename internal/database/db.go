package database

import (
	"log"

	"spine-backend/internal/config"
	"spine-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: Tüm tablo şemalarını kurar. Testler aynı şemayı sqlite üzerinde kurmak
// için de çağırır.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Outlet{},
		&models.User{},
		&models.Product{},
		&models.StockBalance{},
		&models.Batch{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Customer{},
		&models.Repayment{},
		&models.StockTransfer{},
		&models.StockAdjustment{},
		&models.ActivityLog{},
	)
}
