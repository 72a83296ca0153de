package cart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arbaminim/order-intake/internal/catalog"
)

const (
	MinQuantity = 1
	MaxQuantity = 50
)

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 50")
)

// Item is one cart line. Adding the same product and grade twice produces
// two distinct lines, never a quantity bump on an existing one.
type Item struct {
	ID          string        `json:"id"`
	ProductID   string        `json:"productId"`
	ProductName string        `json:"productName"`
	Grade       catalog.Grade `json:"grade"`
	GradeText   string        `json:"kashrutText"`
	Quantity    int           `json:"quantity"`
	UnitPrice   int           `json:"unitPrice"`
	TotalPrice  int           `json:"totalPrice"`
}

type Totals struct {
	// TotalItems counts cart lines, not the sum of quantities.
	TotalItems int
	TotalPrice int
}

// Store holds the line items of a single session, in insertion order.
// All mutation happens under the lock so observers never see an item whose
// total drifted from unit price times quantity.
type Store struct {
	mu    sync.RWMutex
	items []Item
}

func NewStore() *Store {
	return &Store{}
}

// AddItem validates the quantity and grade, resolves the unit price from the
// catalog and appends a new line item. The cart is unchanged on error.
func (s *Store) AddItem(productID string, grade catalog.Grade, quantity int) (Item, error) {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return Item{}, ErrInvalidQuantity
	}

	product, err := catalog.Lookup(productID)
	if err != nil {
		return Item{}, err
	}
	unitPrice, err := catalog.UnitPrice(productID, grade)
	if err != nil {
		return Item{}, err
	}

	item := Item{
		ID:          newItemID(productID, grade),
		ProductID:   productID,
		ProductName: product.Name,
		Grade:       grade,
		GradeText:   catalog.GradeText(grade),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  unitPrice * quantity,
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()

	return item, nil
}

// RemoveItem removes the line with the given id. Removing an unknown id is a
// no-op.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart. Callers are expected to confirm with the user
// before invoking it.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := Totals{TotalItems: len(s.items)}
	for _, item := range s.items {
		t.TotalPrice += item.UnitPrice * item.Quantity
	}
	return t
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func newItemID(productID string, grade catalog.Grade) string {
	return fmt.Sprintf("%d-%s-%s-%s", time.Now().UnixMilli(), productID, grade, uuid.NewString()[:8])
}
