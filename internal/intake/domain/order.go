package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StatusNew is the status every freshly appended order carries.
const StatusNew = "חדש"

// Order is one accepted intake row. Field values are kept exactly as they
// arrive on the wire (already-localized strings), because the system of
// record is an append-only human-readable sheet, not a normalized schema.
type Order struct {
	ID                     uuid.UUID
	OrderNumber            string
	FullName               string
	Phone                  string
	Email                  string
	City                   string
	Address                string
	NeedsShipping          string
	TotalPrice             string
	TotalItems             string
	DetailedSummary        string
	SetsOrdered            string
	EtrogimOrdered         string
	IndividualItemsOrdered string
	HasTimaniSet           string
	HasMoroccanSet         string
	HasAshkenaziSet        string
	HasEtrogim             string
	HasLulav               string
	HasHadas               string
	HasArava               string
	Notes                  string
	Terms                  string
	ContactApproval        string
	CartItems              string
	Status                 string
	CreatedAt              time.Time
}

// GenerateOrderNumber builds the server-side tracking label used when a
// submission arrives without one.
func GenerateOrderNumber(now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	return fmt.Sprintf("4MIN-%02d%02d%02d-%s", now.Year()%100, int(now.Month()), now.Day(), millis[len(millis)-4:])
}
