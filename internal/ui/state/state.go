package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"erpick/internal/domain"
	"erpick/internal/invoice"
)

var (
	ErrLineLimit      = errors.New("line limit reached")
	ErrMissingPartner = errors.New("partner is required")
	ErrMissingStore   = errors.New("warehouse is required")
	ErrSubmitted      = errors.New("document already submitted")
)

// Line is one row of the draft
type Line struct {
	Item            domain.Item
	Quantity        decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Header holds the selections made in the form's header fields
type Header struct {
	PartnerID    string
	WarehouseID  string
	CurrencyCode string
}

// DocumentState contains the draft being edited
type DocumentState struct {
	Kind       domain.DocumentKind
	Status     domain.DocumentStatus
	DocumentID string

	Lines       []Line
	CurrentLine int
	MaxLines    int

	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal

	// UI state
	StatusMessage string
	StatusIsError bool
	Busy          string // non-empty while a backend call runs
}

// NewDocumentState creates an empty draft
func NewDocumentState(kind domain.DocumentKind, maxLines int, discount, tax decimal.Decimal) *DocumentState {
	return &DocumentState{
		Kind:            kind,
		Status:          domain.StatusDraft,
		MaxLines:        maxLines,
		DiscountPercent: discount,
		TaxPercent:      tax,
	}
}

// Submitted reports whether the backend accepted the document
func (s *DocumentState) Submitted() bool {
	return s.Status == domain.StatusActive
}

// AtCapacity reports whether no more lines may be added
func (s *DocumentState) AtCapacity() bool {
	return s.MaxLines > 0 && len(s.Lines) >= s.MaxLines
}

// AddItem appends a line for item with quantity one. Picking an item that
// is already on the draft raises its quantity instead
func (s *DocumentState) AddItem(item domain.Item) error {
	if s.Submitted() {
		return ErrSubmitted
	}
	for i := range s.Lines {
		if s.Lines[i].Item.Key() == item.Key() {
			s.Lines[i].Quantity = s.Lines[i].Quantity.Add(decimal.NewFromInt(1))
			s.CurrentLine = i
			return nil
		}
	}
	if s.AtCapacity() {
		return fmt.Errorf("%w: %d", ErrLineLimit, s.MaxLines)
	}
	s.Lines = append(s.Lines, Line{Item: item, Quantity: decimal.NewFromInt(1)})
	s.CurrentLine = len(s.Lines) - 1
	return nil
}

// ChangeQuantity adds delta to the current line. Quantity never drops
// below one; use RemoveLine for that
func (s *DocumentState) ChangeQuantity(delta int) {
	if s.CurrentLine < 0 || s.CurrentLine >= len(s.Lines) {
		return
	}
	l := &s.Lines[s.CurrentLine]
	q := l.Quantity.Add(decimal.NewFromInt(int64(delta)))
	if q.LessThan(decimal.NewFromInt(1)) {
		q = decimal.NewFromInt(1)
	}
	l.Quantity = q
}

// RemoveLine deletes the current line
func (s *DocumentState) RemoveLine() {
	if s.CurrentLine < 0 || s.CurrentLine >= len(s.Lines) {
		return
	}
	s.Lines = append(s.Lines[:s.CurrentLine], s.Lines[s.CurrentLine+1:]...)
	if s.CurrentLine >= len(s.Lines) {
		s.CurrentLine = len(s.Lines) - 1
	}
	if s.CurrentLine < 0 {
		s.CurrentLine = 0
	}
}

// MoveCursor moves the line cursor
func (s *DocumentState) MoveCursor(direction string) {
	if len(s.Lines) == 0 {
		s.CurrentLine = 0
		return
	}
	switch direction {
	case "up":
		if s.CurrentLine > 0 {
			s.CurrentLine--
		}
	case "down":
		if s.CurrentLine < len(s.Lines)-1 {
			s.CurrentLine++
		}
	case "home":
		s.CurrentLine = 0
	case "end":
		s.CurrentLine = len(s.Lines) - 1
	}
}

// Totals computes the derived amounts of the draft
func (s *DocumentState) Totals() (invoice.Totals, error) {
	lines := make([]invoice.Line, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, invoice.Line{
			Quantity:        l.Quantity,
			UnitPrice:       l.Item.Price,
			DiscountPercent: l.DiscountPercent,
		})
	}
	return invoice.Compute(lines, invoice.Params{
		DiscountPercent: s.DiscountPercent,
		TaxPercent:      s.TaxPercent,
	})
}

// Build validates the draft and turns it into the payload the backend
// expects
func (s *DocumentState) Build(h Header, attachmentIDs []string, now time.Time) (domain.Document, error) {
	if s.Submitted() {
		return domain.Document{}, ErrSubmitted
	}
	if h.PartnerID == "" {
		return domain.Document{}, ErrMissingPartner
	}
	if h.WarehouseID == "" {
		return domain.Document{}, ErrMissingStore
	}
	totals, err := s.Totals()
	if err != nil {
		return domain.Document{}, err
	}

	doc := domain.Document{
		Kind:            s.Kind,
		Status:          domain.StatusActive,
		PartnerID:       h.PartnerID,
		WarehouseID:     h.WarehouseID,
		CurrencyCode:    h.CurrencyCode,
		Date:            now,
		Lines:           make([]domain.DocumentLine, 0, len(s.Lines)),
		DiscountPercent: s.DiscountPercent,
		TaxPercent:      s.TaxPercent,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.Tax,
		GrandTotal:      totals.GrandTotal,
		AttachmentIDs:   attachmentIDs,
	}
	for i, l := range s.Lines {
		doc.Lines = append(doc.Lines, domain.DocumentLine{
			ItemID:          l.Item.Key(),
			Description:     l.Item.Name,
			Unit:            l.Item.Unit,
			Quantity:        l.Quantity,
			UnitPrice:       l.Item.Price,
			DiscountPercent: l.DiscountPercent,
			Amount:          totals.Lines[i].Net,
		})
	}
	return doc, nil
}

// MarkSubmitted records the id the backend assigned
func (s *DocumentState) MarkSubmitted(id string) {
	s.Status = domain.StatusActive
	s.DocumentID = id
}

// SetStatus sets the status bar message
func (s *DocumentState) SetStatus(msg string, isErr bool) {
	s.StatusMessage = msg
	s.StatusIsError = isErr
}

// ClearStatus clears the status bar message
func (s *DocumentState) ClearStatus() {
	s.StatusMessage = ""
	s.StatusIsError = false
}

// Reset starts a new draft of the same kind
func (s *DocumentState) Reset() {
	*s = *NewDocumentState(s.Kind, s.MaxLines, s.DiscountPercent, s.TaxPercent)
}
