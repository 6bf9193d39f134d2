package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// StockPolicy: Stoktan fazla düşüm istendiğinde motorun davranışı.
type StockPolicy string

const (
	// StockPolicyStrict: Yetersiz stok isteği reddedilir (varsayılan).
	StockPolicyStrict StockPolicy = "strict"
	// StockPolicyLenient: Düşüm sıfırda taban yapar, yanıtta "clamped" işaretlenir.
	StockPolicyLenient StockPolicy = "lenient"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	StockPolicy StockPolicy
}

func Load() *Config {
	// .env varsa yükle (yerel geliştirme için), yoksa sessizce geç
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=spine port=5432 sslmode=disable"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		StockPolicy: StockPolicy(getEnv("STOCK_POLICY", string(StockPolicyStrict))),
	}

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.StockPolicy != StockPolicyStrict && cfg.StockPolicy != StockPolicyLenient {
		log.Fatalf("[FATAL] STOCK_POLICY 'strict' veya 'lenient' olmalı, gelen: %q", cfg.StockPolicy)
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=spine port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
