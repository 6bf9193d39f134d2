package ledger

import (
	"errors"
	"sort"

	"spine-backend/internal/config"
	"spine-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInsufficientStock = errors.New("yetersiz stok")
	ErrProductNotFound   = errors.New("ürün bulunamadı")
)

// DeltaResult: Bir bakiye mutasyonunun gerçekte uygulanan etkisi.
// Clamped true ise istenen düşümün tamamı uygulanamamış, bakiye sıfırda
// taban yapmıştır (lenient politika).
type DeltaResult struct {
	AppliedBulk  int
	AppliedPiece int
	Clamped      bool
}

// GetBalance: Ürünün şubedeki bakiyesini döner. Kayıt yoksa sıfır bakiye döner,
// hata üretmez.
func GetBalance(db *gorm.DB, productID, outletID uint) (models.StockBalance, error) {
	var bal models.StockBalance
	err := db.Where("product_id = ? AND outlet_id = ?", productID, outletID).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StockBalance{ProductID: productID, OutletID: outletID}, nil
	}
	if err != nil {
		return models.StockBalance{}, err
	}
	return bal, nil
}

// ApplyDelta: Şube bakiyesine (negatif olabilen) delta uygular ve ürünün dükkan
// geneli toplamlarını aynı miktarda günceller. Strict politikada yetersiz stok
// ErrInsufficientStock ile reddedilir; lenient politikada bakiye sıfırda taban
// yapar ve sonuç Clamped olarak işaretlenir. Toplamlar her zaman gerçekte
// uygulanan delta kadar oynar, böylece "toplam = şube bakiyeleri toplamı"
// kuralı bozulmaz.
func ApplyDelta(db *gorm.DB, productID, outletID uint, bulkDelta, pieceDelta int, policy config.StockPolicy) (DeltaResult, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DeltaResult{}, ErrProductNotFound
		}
		return DeltaResult{}, err
	}

	var bal models.StockBalance
	err := db.Where("product_id = ? AND outlet_id = ?", productID, outletID).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// İlk dokunuşta bakiye kaydı örtük olarak açılır
		bal = models.StockBalance{ProductID: productID, OutletID: outletID}
		if err := db.Create(&bal).Error; err != nil {
			return DeltaResult{}, err
		}
	} else if err != nil {
		return DeltaResult{}, err
	}

	newBulk := bal.BulkQuantity + bulkDelta
	newPiece := bal.PieceQuantity + pieceDelta

	if newBulk < 0 || newPiece < 0 {
		if policy == config.StockPolicyStrict {
			return DeltaResult{}, ErrInsufficientStock
		}
		config.LogClamp("ledger", productID, outletID, bulkDelta, pieceDelta)
	}

	res := DeltaResult{Clamped: newBulk < 0 || newPiece < 0}
	if newBulk < 0 {
		newBulk = 0
	}
	if newPiece < 0 {
		newPiece = 0
	}
	res.AppliedBulk = newBulk - bal.BulkQuantity
	res.AppliedPiece = newPiece - bal.PieceQuantity

	bal.BulkQuantity = newBulk
	bal.PieceQuantity = newPiece
	if err := db.Save(&bal).Error; err != nil {
		return DeltaResult{}, err
	}

	product.BulkQuantity += res.AppliedBulk
	product.PieceQuantity += res.AppliedPiece
	if product.BulkQuantity < 0 {
		product.BulkQuantity = 0
	}
	if product.PieceQuantity < 0 {
		product.PieceQuantity = 0
	}
	if err := db.Save(&product).Error; err != nil {
		return DeltaResult{}, err
	}

	return res, nil
}

// SortBatchesForDepletion: Partileri tüketim sırasına dizer: SKT'si en yakın
// önce, SKT'si olmayanlar (hiç bozulmayan stok) en sona, eşitlikte eski giriş önce.
func SortBatchesForDepletion(batches []models.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		bi, bj := batches[i], batches[j]
		if bi.ExpiryDate == nil && bj.ExpiryDate == nil {
			return bi.AddedAt.Before(bj.AddedAt)
		}
		if bi.ExpiryDate == nil {
			return false
		}
		if bj.ExpiryDate == nil {
			return true
		}
		if !bi.ExpiryDate.Equal(*bj.ExpiryDate) {
			return bi.ExpiryDate.Before(*bj.ExpiryDate)
		}
		return bi.AddedAt.Before(bj.AddedAt)
	})
}

// DepleteBatches: Şubedeki partilerden toplam bulkQty/pieceQty düşer. Birimler
// bağımsız yürür: her birim için sıralı parti listesi gezilir, partiden
// min(kalan, düşülecek) alınır. Partiler sıfıra inse de silinmez.
func DepleteBatches(db *gorm.DB, productID, outletID uint, bulkQty, pieceQty int) error {
	if bulkQty <= 0 && pieceQty <= 0 {
		return nil
	}

	var batches []models.Batch
	if err := db.Where("product_id = ? AND outlet_id = ?", productID, outletID).
		Find(&batches).Error; err != nil {
		return err
	}

	SortBatchesForDepletion(batches)

	bulkLeft := bulkQty
	pieceLeft := pieceQty
	for i := range batches {
		if bulkLeft <= 0 && pieceLeft <= 0 {
			break
		}
		changed := false
		if bulkLeft > 0 && batches[i].BulkQuantity > 0 {
			take := batches[i].BulkQuantity
			if take > bulkLeft {
				take = bulkLeft
			}
			batches[i].BulkQuantity -= take
			bulkLeft -= take
			changed = true
		}
		if pieceLeft > 0 && batches[i].PieceQuantity > 0 {
			take := batches[i].PieceQuantity
			if take > pieceLeft {
				take = pieceLeft
			}
			batches[i].PieceQuantity -= take
			pieceLeft -= take
			changed = true
		}
		if changed {
			if err := db.Save(&batches[i]).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
