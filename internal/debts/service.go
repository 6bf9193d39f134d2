package debts

import (
	"errors"
	"fmt"
	"time"

	"spine-backend/internal/activity"
	"spine-backend/internal/config"
	"spine-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrCustomerNotFound = errors.New("müşteri bulunamadı")

type RepaymentInput struct {
	CustomerID       uint
	Amount           decimal.Decimal
	Method           models.PaymentMethod
	ReceivedByUserID uint
	ReceivedByName   string
	ReceivedAt       time.Time // sıfırsa şimdi
}

type RepaymentResult struct {
	Repayment *models.Repayment
	// Applied: Borca gerçekten dağıtılan tutar.
	Applied decimal.Decimal
	// Unallocated: Toplam borcu aşan, hiçbir satışa dağıtılmayan fazla ödeme.
	Unallocated decimal.Decimal
}

// ApplyRepayment: Tahsilatı müşterinin açık veresiye satışlarına en eskiden
// yeniye (FIFO) dağıtır; önbellek borç toplamını aynı işlemde düşer. Toplam
// borcu aşan kısım hiçbir yere dağıtılmaz, yanıtta Unallocated olarak raporlanır.
// Çağıranın transaction'ı içinde çalışmalıdır.
func ApplyRepayment(db *gorm.DB, in RepaymentInput) (*RepaymentResult, error) {
	if !in.Amount.IsPositive() {
		return nil, errors.New("tahsilat tutarı 0'dan büyük olmalı")
	}
	switch in.Method {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodTransfer:
	default:
		return nil, fmt.Errorf("geçersiz tahsilat yöntemi: %q", in.Method)
	}

	var customer models.Customer
	if err := db.First(&customer, "id = ?", in.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	applied := decimal.Min(in.Amount, customer.TotalOwed)
	unallocated := in.Amount.Sub(applied)

	if unallocated.IsPositive() {
		// Fazla ödeme sessizce emilir; ama iz bırakmadan değil
		config.GetLogger().WithFields(logrus.Fields{
			"module":      "debts",
			"customer_id": customer.ID,
			"amount":      in.Amount.String(),
			"unallocated": unallocated.String(),
		}).Warn("tahsilat toplam borcu aşıyor, fazlası dağıtılmadı")
	}

	customer.TotalOwed = customer.TotalOwed.Sub(applied)

	// Açık veresiye satışlar, en eski önce. Kalan bakiye filtresi Go tarafında;
	// decimal kolonlar üzerinde SQL karşılaştırmasına güvenilmez.
	var sales []models.Sale
	if err := db.Where("customer_id = ? AND payment_method = ?", customer.ID, models.PaymentMethodDebt).
		Order("timestamp ASC, id ASC").
		Find(&sales).Error; err != nil {
		return nil, err
	}

	remaining := applied
	for i := range sales {
		if !remaining.IsPositive() {
			break
		}
		if !sales[i].BalanceDue.IsPositive() {
			continue
		}
		take := decimal.Min(sales[i].BalanceDue, remaining)
		sales[i].BalanceDue = sales[i].BalanceDue.Sub(take)
		sales[i].AmountPaid = sales[i].AmountPaid.Add(take)
		remaining = remaining.Sub(take)
		if err := db.Save(&sales[i]).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Save(&customer).Error; err != nil {
		return nil, err
	}

	ts := in.ReceivedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	repayment := models.Repayment{
		CustomerID: customer.ID,
		Amount:     in.Amount,
		Method:     in.Method,
		ReceivedAt: ts,
	}
	if err := db.Create(&repayment).Error; err != nil {
		return nil, err
	}

	if err := activity.Write(db, activity.LogOptions{
		UserID:     in.ReceivedByUserID,
		UserName:   in.ReceivedByName,
		EntityType: "customer",
		EntityID:   customer.ID,
		Action:     models.ActivityRepaymentReceived,
		Severity:   models.SeverityInfo,
		Details:    fmt.Sprintf("Tahsilat: %s - %s (%s)", customer.Name, in.Amount.StringFixed(2), in.Method),
	}); err != nil {
		return nil, err
	}

	return &RepaymentResult{
		Repayment:   &repayment,
		Applied:     applied,
		Unallocated: unallocated,
	}, nil
}
