package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.InfoLevel)
	logg.SetOutput(os.Stdout)
}

// LogClamp: Sıfırda taban yapan stok düşümleri için yapılandırılmış uyarı.
// Lenient politikada taban yapma hata dönmez, iz yalnızca burada kalır.
func LogClamp(module string, productID, outletID uint, bulkDelta, pieceDelta int) {
	logg.WithFields(logrus.Fields{
		"module":      module,
		"product_id":  productID,
		"outlet_id":   outletID,
		"bulk_delta":  bulkDelta,
		"piece_delta": pieceDelta,
	}).Warn("stok düşümü sıfırda taban yaptı")
}
