package order

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arbaminim/order-intake/internal/cart"
)

// ErrEmptyCart means there is nothing to order. Composition refuses before
// any transport is involved.
var ErrEmptyCart = errors.New("EMPTY_CART")

// ValidationError names the offending field so the caller can surface the
// message inline next to it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	fullNamePattern = regexp.MustCompile(`^[\x{0590}-\x{05FF}\sA-Za-z]+$`)
	phonePattern    = regexp.MustCompile(`^0\d{1,2}-?\d{7}$|^0\d{9}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Compose validates the form against the current cart and produces an
// immutable Record. The cart itself is never touched.
func Compose(items []cart.Item, form Form) (*Record, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// Without shipping the address is ignored entirely, including any
	// validation error it would otherwise produce.
	if !form.NeedsShipping {
		form.Address = ""
	}

	if err := validateForm(form); err != nil {
		return nil, err
	}

	totalPrice := 0
	for _, item := range items {
		totalPrice += item.UnitPrice * item.Quantity
	}

	rec := &Record{
		OrderNumber: GenerateOrderNumber(time.Now()),
		Timestamp:   time.Now(),
		Form:        form,
		Items:       append([]cart.Item(nil), items...),
		TotalItems:  len(items),
		TotalPrice:  totalPrice,
	}
	return rec, nil
}

func validateForm(form Form) error {
	name := strings.TrimSpace(form.FullName)
	if len([]rune(name)) < 2 || !fullNamePattern.MatchString(name) {
		return &ValidationError{Field: "fullName", Message: "נא להזין שם מלא בעברית או באנגלית (לפחות 2 תווים)"}
	}

	phone := strings.TrimSpace(form.Phone)
	if !phonePattern.MatchString(phone) {
		return &ValidationError{Field: "phone", Message: "נא להזין מספר טלפון תקין (לדוגמה: 050-123-4567)"}
	}

	if email := strings.TrimSpace(form.Email); email != "" && !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "נא להזין כתובת אימייל תקינה"}
	}

	if len([]rune(strings.TrimSpace(form.City))) < 2 {
		return &ValidationError{Field: "city", Message: "נא להזין עיר מגורים"}
	}

	if form.NeedsShipping && strings.TrimSpace(form.Address) == "" {
		return &ValidationError{Field: "address", Message: "נא להזין כתובת למשלוח"}
	}

	if !form.Terms {
		return &ValidationError{Field: "terms", Message: "נא לאשר את תנאי השימוש"}
	}
	if !form.ContactApproval {
		return &ValidationError{Field: "contactApproval", Message: "נא לאשר יצירת קשר"}
	}
	return nil
}

// GenerateOrderNumber builds a short tracking label: fixed prefix, two-digit
// year, month and day, and a 3-digit random suffix. Best-effort uniqueness
// only; the storage layer does not key on it.
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("4M%02d%02d%02d%03d", now.Year()%100, int(now.Month()), now.Day(), rand.Intn(1000))
}

const (
	originYemenite  = "תימני"
	originMoroccan  = "מרוקאי"
	originAshkenazi = "אשכנזי"

	noSets            = "לא הוזמנו סטים"
	noEtrogim         = "לא הוזמנו אתרוגים"
	noIndividualItems = "לא הוזמנו פריטים בודדים"
)

type categorized struct {
	origin    string
	gradeText string
	quantity  int
}

type breakdown struct {
	sets    []categorized
	etrogim []categorized
	lulav   int
	hadas   int
	arava   int
}

// classify walks the items in cart order, bucketing by substring match on
// the display name. Items matching no category still count toward totals
// and the detailed summary, just not toward the categorized counts.
func classify(items []cart.Item) (breakdown, string) {
	var b breakdown
	var summary strings.Builder

	for _, item := range items {
		fmt.Fprintf(&summary, "%s - %s × %d = %d₪\n", item.ProductName, item.GradeText, item.Quantity, item.TotalPrice)

		switch {
		case strings.Contains(item.ProductName, "סט"):
			b.sets = append(b.sets, categorized{
				origin:    originOf(item.ProductName),
				gradeText: item.GradeText,
				quantity:  item.Quantity,
			})
		case strings.Contains(item.ProductName, "אתרוג"):
			b.etrogim = append(b.etrogim, categorized{
				origin:    originOf(item.ProductName),
				gradeText: item.GradeText,
				quantity:  item.Quantity,
			})
		case strings.Contains(item.ProductName, "לולב"):
			b.lulav += item.Quantity
		case strings.Contains(item.ProductName, "הדס"):
			b.hadas += item.Quantity
		case strings.Contains(item.ProductName, "ערבה"):
			b.arava += item.Quantity
		}
	}

	return b, strings.TrimSuffix(summary.String(), "\n")
}

func originOf(name string) string {
	switch {
	case strings.Contains(name, originYemenite):
		return originYemenite
	case strings.Contains(name, originMoroccan):
		return originMoroccan
	case strings.Contains(name, originAshkenazi):
		return originAshkenazi
	}
	return ""
}

func categorySummary(items []categorized, emptyPhrase string) string {
	if len(items) == 0 {
		return emptyPhrase
	}
	parts := make([]string, len(items))
	for i, c := range items {
		parts[i] = fmt.Sprintf("%s (%s) × %d", c.origin, c.gradeText, c.quantity)
	}
	return strings.Join(parts, ", ")
}

func individualSummary(b breakdown) string {
	var parts []string
	if b.lulav > 0 {
		parts = append(parts, fmt.Sprintf("לולב × %d", b.lulav))
	}
	if b.hadas > 0 {
		parts = append(parts, fmt.Sprintf("הדס × %d", b.hadas))
	}
	if b.arava > 0 {
		parts = append(parts, fmt.Sprintf("ערבה × %d", b.arava))
	}
	if len(parts) == 0 {
		return noIndividualItems
	}
	return strings.Join(parts, ", ")
}

func (b breakdown) hasSet(origin string) bool {
	for _, s := range b.sets {
		if s.origin == origin {
			return true
		}
	}
	return false
}

func yesNo(v bool) string {
	if v {
		return "כן"
	}
	return "לא"
}

func approved(v bool) string {
	if v {
		return "מאושר"
	}
	return "לא מאושר"
}

// PrepareFields builds the transport field map from a raw pre-composition
// payload. Both the first submission and later retries of a backed-up entry
// go through here, so a retried order serializes identically. It is lenient:
// validation already happened before the payload was accepted, and a backup
// entry must remain sendable even when its cart string no longer parses.
func PrepareFields(raw map[string]string) map[string]string {
	return prepareFields(raw)
}

func prepareFields(raw map[string]string) map[string]string {
	var b breakdown
	detailed := ""
	totalItems := 0
	totalPrice := 0

	items, err := ParseCartItems(raw["cartItems"])
	if err != nil {
		detailed = "שגיאה בפענוח פרטי ההזמנה"
	} else {
		b, detailed = classify(items)
		totalItems = len(items)
		for _, item := range items {
			totalPrice += item.UnitPrice * item.Quantity
		}
	}

	orderNumber := raw["orderNumber"]
	if orderNumber == "" {
		orderNumber = GenerateOrderNumber(time.Now())
	}
	timestamp := raw["timestamp"]
	if timestamp == "" {
		timestamp = time.Now().Format(time.RFC3339)
	}

	return map[string]string{
		"timestamp":              timestamp,
		"orderNumber":            orderNumber,
		"fullName":               raw["fullName"],
		"phone":                  raw["phone"],
		"email":                  raw["email"],
		"city":                   raw["city"],
		"address":                raw["address"],
		"needsShipping":          yesNo(raw["needsShipping"] == "true"),
		"notes":                  raw["notes"],
		"terms":                  approved(raw["terms"] == "true"),
		"contactApproval":        approved(raw["contactApproval"] == "true"),
		"totalPrice":             strconv.Itoa(totalPrice),
		"totalItems":             strconv.Itoa(totalItems),
		"detailedOrderSummary":   detailed,
		"setsOrdered":            categorySummary(b.sets, noSets),
		"etrogimOrdered":         categorySummary(b.etrogim, noEtrogim),
		"individualItemsOrdered": individualSummary(b),
		"hasTimaniSet":           yesNo(b.hasSet(originYemenite)),
		"hasMoroccanSet":         yesNo(b.hasSet(originMoroccan)),
		"hasAshkenaziSet":        yesNo(b.hasSet(originAshkenazi)),
		"hasEtrogim":             yesNo(len(b.etrogim) > 0),
		"hasLulav":               yesNo(b.lulav > 0),
		"hasHadas":               yesNo(b.hadas > 0),
		"hasArava":               yesNo(b.arava > 0),
		"cartItems":              raw["cartItems"],
	}
}
