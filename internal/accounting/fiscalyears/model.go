package fiscalyears

import "time"

// Status enumerates fiscal year lifecycle values.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// FiscalYear bounds a posting period. Closing is terminal; no documents can
// be created in a closed year.
type FiscalYear struct {
	ID        int64      `json:"id"`
	CompanyID int64      `json:"company_id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Status    Status     `json:"status"`
	ClosedBy  *int64     `json:"closed_by,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedBy int64      `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
