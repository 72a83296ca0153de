package order

import (
	"encoding/json"
	"time"

	"github.com/arbaminim/order-intake/internal/cart"
)

// Form holds the raw customer fields exactly as collected, before any
// composition or derivation.
type Form struct {
	FullName        string
	Phone           string
	Email           string
	City            string
	Address         string
	NeedsShipping   bool
	Notes           string
	Terms           bool
	ContactApproval bool
}

// Record is a composed order, ready for transport. It is built once per
// submission attempt and never mutated.
type Record struct {
	OrderNumber string
	Timestamp   time.Time
	Form        Form
	Items       []cart.Item
	TotalItems  int
	TotalPrice  int
}

// cartPayload is the wire shape of the cartItems field, a JSON object
// holding the item list.
type cartPayload struct {
	Items []cart.Item `json:"items"`
}

// CartItemsJSON serializes the line items to the cartItems transport string.
func (r *Record) CartItemsJSON() string {
	b, err := json.Marshal(cartPayload{Items: r.Items})
	if err != nil {
		return `{"items":[]}`
	}
	return string(b)
}

// ParseCartItems parses a cartItems transport string back into line items.
func ParseCartItems(s string) ([]cart.Item, error) {
	var p cartPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

// Raw returns the pre-composition payload: the form fields plus the
// serialized cart, without any of the derived breakdown. This is what goes
// into the backup queue when delivery fails, so a later retry can recompose
// the transport fields from scratch.
func (r *Record) Raw() map[string]string {
	return map[string]string{
		"fullName":        r.Form.FullName,
		"phone":           r.Form.Phone,
		"email":           r.Form.Email,
		"city":            r.Form.City,
		"address":         r.Form.Address,
		"needsShipping":   boolString(r.Form.NeedsShipping),
		"notes":           r.Form.Notes,
		"terms":           boolString(r.Form.Terms),
		"contactApproval": boolString(r.Form.ContactApproval),
		"orderNumber":     r.OrderNumber,
		"timestamp":       r.Timestamp.Format(time.RFC3339),
		"cartItems":       r.CartItemsJSON(),
	}
}

// Fields flattens the record to the transport-safe scalar field set the
// intake endpoint recognizes.
func (r *Record) Fields() map[string]string {
	return prepareFields(r.Raw())
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
