package domain

import "errors"

// Error kinds shared by repositories, services and handlers. Lower layers wrap
// them with context; handlers branch on them with errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrUpstreamPayment = errors.New("payment provider error")
	ErrStore           = errors.New("store error")
	// ErrAlreadyPaid means the parcel left the unpaid state before this call.
	ErrAlreadyPaid = errors.New("parcel already paid")
)

// Kind returns a short stable label for logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUpstreamPayment):
		return "upstream_payment"
	case errors.Is(err, ErrAlreadyPaid):
		return "already_processed"
	case errors.Is(err, ErrStore):
		return "store"
	default:
		return "internal"
	}
}
