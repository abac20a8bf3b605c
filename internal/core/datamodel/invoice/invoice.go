package invoice

import (
	"encoding/json"
	"time"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// LineItem is one row of the invoice table. Amounts are integer cents.
type LineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Amount      int64  `json:"amount"`
}

type Invoice struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	InvoiceNumber  string          `json:"invoice_number" gorm:"column:invoice_number;not null;uniqueIndex"`
	PaymentID      int64           `json:"payment_id" gorm:"column:payment_id;not null;uniqueIndex"`
	UserEmail      string          `json:"user_email" gorm:"column:user_email;not null"`
	CustomerName   string          `json:"customer_name" gorm:"column:customer_name"`
	BillingAddress json.RawMessage `json:"billing_address,omitempty" gorm:"column:billing_address;type:jsonb"`
	Items          json.RawMessage `json:"items" gorm:"column:items;type:jsonb"`
	TotalCents     int64           `json:"total_cents" gorm:"column:total_cents;not null"`
	Currency       string          `json:"currency" gorm:"column:currency;default:USD"`
	Status         string          `json:"status" gorm:"column:status;default:pending"`
	DueDate        time.Time       `json:"due_date" gorm:"column:due_date"`
	PDFPath        string          `json:"pdf_path,omitempty" gorm:"column:pdf_path"`
	CreatedAt      time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// ParsedItems decodes the stored line items.
func (i *Invoice) ParsedItems() ([]LineItem, error) {
	var items []LineItem
	if len(i.Items) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(i.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// BillingAddressLines flattens the stored billing address into printable
// lines, skipping blanks, in the order street, street2, city/state/zip,
// country.
func (i *Invoice) BillingAddressLines() []string {
	if len(i.BillingAddress) == 0 {
		return nil
	}
	var addr struct {
		Street  string `json:"street"`
		Street2 string `json:"street2"`
		City    string `json:"city"`
		State   string `json:"state"`
		ZipCode string `json:"zip_code"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal(i.BillingAddress, &addr); err != nil {
		return nil
	}
	var lines []string
	if addr.Street != "" {
		lines = append(lines, addr.Street)
	}
	if addr.Street2 != "" {
		lines = append(lines, addr.Street2)
	}
	if addr.City != "" || addr.State != "" || addr.ZipCode != "" {
		lines = append(lines, joinCityLine(addr.City, addr.State, addr.ZipCode))
	}
	if addr.Country != "" {
		lines = append(lines, addr.Country)
	}
	return lines
}

func joinCityLine(city, state, zip string) string {
	line := city
	if state != "" {
		if line != "" {
			line += ", "
		}
		line += state
	}
	if zip != "" {
		if line != "" {
			line += " "
		}
		line += zip
	}
	return line
}
