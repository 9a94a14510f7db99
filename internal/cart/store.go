package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound    = errors.New("item not in cart")
	ErrInvalidItem     = errors.New("item must have an id and a non-negative price")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Item is a cart line.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
}

// Persister stores the serialized cart of a session. LoadCart returns nil
// data when nothing has been stored yet.
type Persister interface {
	LoadCart(ctx context.Context, sessionID string) ([]byte, error)
	SaveCart(ctx context.Context, sessionID string, data []byte) error
}

// Store holds the lines of one session's cart. Every mutation writes the
// whole cart through the Persister; the in-memory lines only change when
// the write succeeds.
type Store struct {
	mu        sync.Mutex
	sessionID string
	items     []Item
	persister Persister
}

// Open rehydrates the cart of sessionID. A missing or unreadable stored
// cart yields an empty one.
func Open(ctx context.Context, sessionID string, p Persister) (*Store, error) {
	data, err := p.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	return &Store{sessionID: sessionID, persister: p, items: decode(data)}, nil
}

func decode(data []byte) []Item {
	if len(data) == 0 {
		return nil
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return sanitize(items)
}

// reload replaces the lines with what the Persister holds now.
func (s *Store) reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.persister.LoadCart(ctx, s.sessionID)
	if err != nil {
		return errors.Wrap(err, "load cart")
	}
	s.items = decode(data)
	return nil
}

// sanitize drops lines that could not have been produced by the store.
func sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 || it.Price.IsNegative() {
			continue
		}
		out = append(out, it)
	}
	return out
}

// AddToCart inserts item or, when a line with the same id exists, increments
// its quantity. A zero quantity means one.
func (s *Store) AddToCart(ctx context.Context, item Item) error {
	if item.ID == "" || item.Price.IsNegative() {
		return ErrInvalidItem
	}
	if item.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyItems()
	if i := indexOf(next, item.ID); i >= 0 {
		next[i].Quantity += item.Quantity
	} else {
		next = append(next, item)
	}
	return s.commit(ctx, next)
}

// IncreaseQuantity adds one to the line's quantity.
func (s *Store) IncreaseQuantity(ctx context.Context, id string) error {
	return s.adjust(ctx, id, 1)
}

// DecreaseQuantity removes one from the line's quantity, never going below one.
// Use RemoveFromCart to drop a line.
func (s *Store) DecreaseQuantity(ctx context.Context, id string) error {
	return s.adjust(ctx, id, -1)
}

func (s *Store) adjust(ctx context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyItems()
	i := indexOf(next, id)
	if i < 0 {
		return ErrItemNotFound
	}
	next[i].Quantity = max(next[i].Quantity+delta, 1)
	return s.commit(ctx, next)
}

// RemoveFromCart deletes the line with the given id.
func (s *Store) RemoveFromCart(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, id)
	if i < 0 {
		return ErrItemNotFound
	}
	next := make([]Item, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	return s.commit(ctx, next)
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, []Item{})
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyItems()
}

// Total is Σ(price × quantity), recomputed on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Total(s.items)
}

// Count returns the number of units in the cart.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Total sums price × quantity over items.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (s *Store) copyItems() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// commit persists next and only then swaps it in. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []Item) error {
	data, err := json.Marshal(next)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := s.persister.SaveCart(ctx, s.sessionID, data); err != nil {
		return errors.Wrap(err, "save cart")
	}
	s.items = next
	return nil
}

func indexOf(items []Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
