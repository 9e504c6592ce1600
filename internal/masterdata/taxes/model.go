package taxes

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tax is a named percentage applicable to invoice lines.
type Tax struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"company_id"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	Active    bool            `json:"active"`
	CreatedBy int64           `json:"created_by"`
	UpdatedBy *int64          `json:"updated_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
