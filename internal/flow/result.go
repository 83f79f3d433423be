package flow

// Result is the terminal outcome of a booking attempt. Every failure mode
// maps to a distinguishable Error string; the flow itself never returns a
// Go error because an individual failed booking must not stop the actor.
type Result struct {
	Success bool   `json:"success"`
	TripID  string `json:"tripId,omitempty"`
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Abort reasons. Kept as distinct constants so metrics and tests can tell
// the failure stages apart.
const (
	ErrNoRoute        = "no route found between configured stations"
	ErrNoTrips        = "no trips found for route"
	ErrLoginFailed    = "login failed"
	ErrNoSession      = "login response missing token or account id"
	ErrNoContacts     = "account has no contacts"
	ErrMissingContact = "contact entry missing id"
	ErrMalformed      = "malformed reservation response"
)
