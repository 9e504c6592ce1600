package journals

import "time"

// DocumentType classifies which documents a journal numbers.
type DocumentType string

const (
	TypeSale     DocumentType = "sale"
	TypePurchase DocumentType = "purchase"
)

// IsValid reports whether the document type is known.
func (t DocumentType) IsValid() bool {
	return t == TypeSale || t == TypePurchase
}

// Status enumerates journal lifecycle values.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Journal is a per-company, per-type sequence generator for invoices.
// CurrentNumber is the last issued value; it only ever grows.
// MaxDocuments caps the sequence (0 means uncapped).
type Journal struct {
	ID            int64        `json:"id"`
	CompanyID     int64        `json:"company_id"`
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Type          DocumentType `json:"type"`
	CurrentNumber int64        `json:"current_number"`
	MaxDocuments  int64        `json:"max_documents"`
	Status        Status       `json:"status"`
	CreatedBy     int64        `json:"created_by"`
	UpdatedBy     *int64       `json:"updated_by,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
