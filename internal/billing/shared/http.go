package shared

import (
	"errors"
	"net/http"

	"github.com/meridian-erp/meridian/internal/platform/httpx"
)

// RespondError maps billing domain errors onto problem-detail responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrJournalNotFound),
		errors.Is(err, ErrInvoiceNotFound),
		errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, ErrTaxLineNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateNumber),
		errors.Is(err, ErrDuplicateRef),
		errors.Is(err, ErrDuplicateCode),
		errors.Is(err, ErrJournalExhausted),
		errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrJournalClosed),
		errors.Is(err, ErrFiscalYearClosed),
		errors.Is(err, ErrTypeMismatch),
		errors.Is(err, ErrOverpayment),
		errors.Is(err, ErrNoLines):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
