package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind selects which side of the trade a document records
type DocumentKind string

const (
	KindSales    DocumentKind = "sales"    // penjualan
	KindPurchase DocumentKind = "purchase" // pembelian
)

// PartnerLabel names the counterparty field for the kind
func (k DocumentKind) PartnerLabel() string {
	if k == KindPurchase {
		return "Vendor"
	}
	return "Customer"
}

// Title is shown in the form header
func (k DocumentKind) Title() string {
	if k == KindPurchase {
		return "Purchase (Pembelian)"
	}
	return "Sales (Penjualan)"
}

// DocumentStatus mirrors the server-side lifecycle flag
type DocumentStatus string

const (
	StatusDraft  DocumentStatus = "DRAFT"
	StatusActive DocumentStatus = "ACTIVE"
)

// DocumentLine is one item row of a document
type DocumentLine struct {
	ItemID          string          `json:"item_id"`
	Description     string          `json:"description"`
	Unit            string          `json:"unit,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Amount          decimal.Decimal `json:"amount"`
}

// Document is the payload sent when a sales or purchase entry is submitted
type Document struct {
	ID              string          `json:"id,omitempty"`
	Kind            DocumentKind    `json:"kind"`
	Status          DocumentStatus  `json:"status"`
	PartnerID       string          `json:"partner_id"`
	WarehouseID     string          `json:"warehouse_id,omitempty"`
	CurrencyCode    string          `json:"currency_code,omitempty"`
	Date            time.Time       `json:"date"`
	Lines           []DocumentLine  `json:"lines"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	AttachmentIDs   []string        `json:"attachment_ids,omitempty"`
}

// Attachment is a file stored by the backend for a draft document
type Attachment struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	URL         string    `json:"url,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
