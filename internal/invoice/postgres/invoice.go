package postgres

import (
	"errors"
	"time"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/invoice"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{
		db: db,
	}
}

func (r *InvoiceRepository) Create(inv *invoice.Invoice) error {
	return r.db.Create(inv).Error
}

func (r *InvoiceRepository) GetByNumber(number string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := r.db.Where("invoice_number = ?", number).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) GetByPaymentID(paymentID int64) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := r.db.Where("payment_id = ?", paymentID).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// LatestNumberForPrefix returns the highest invoice number with the given
// month prefix, or empty when the month has no invoices yet. Lexicographic
// ordering works because the sequence is zero padded.
func (r *InvoiceRepository) LatestNumberForPrefix(prefix string) (string, error) {
	var inv invoice.Invoice
	err := r.db.
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return inv.InvoiceNumber, nil
}

func (r *InvoiceRepository) MarkPaid(id int64, pdfPath string) error {
	return r.db.Model(&invoice.Invoice{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     invoice.StatusPaid,
		"pdf_path":   pdfPath,
		"updated_at": time.Now(),
	}).Error
}

func (r *InvoiceRepository) ListPending(limit int) ([]*invoice.Invoice, error) {
	var pending []*invoice.Invoice
	err := r.db.
		Where("status = ?", invoice.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&pending).Error
	return pending, err
}
