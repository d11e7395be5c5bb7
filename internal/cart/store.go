// Package cart implements the session-backed shopping cart and its totals.
package cart

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// SessionKey is where the cart lives inside the session.
const SessionKey = "carrito"

// Scope is the per-visitor storage the cart reads and writes. Writes are not
// persisted unless MarkModified is called.
type Scope interface {
	Get(key string, dst any) (bool, error)
	Set(key string, v any) error
	MarkModified()
	Delete(key string)
}

// Line is one cart entry as stored in the session. Price is the unit price
// snapshot taken when the product was last added, encoded as text.
type Line struct {
	Quantity int    `json:"cantidad"`
	Price    string `json:"precio"`
}

type Entry struct {
	Key  string
	Line Line
}

// Adjustment reports what a quantity change did to a line.
type Adjustment int

const (
	NotInCart Adjustment = iota
	Increased
	Decreased
	Removed
)

func Key(productID int64) string { return strconv.FormatInt(productID, 10) }

type Store struct {
	scope Scope
}

func NewStore(scope Scope) *Store { return &Store{scope: scope} }

// load decodes the cart line by line. A line that does not decode is kept
// as a zero Line so totals drop it with a warning instead of failing the
// whole cart.
func (s *Store) load() (map[string]Line, error) {
	raw := map[string]json.RawMessage{}
	if _, err := s.scope.Get(SessionKey, &raw); err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	lines := make(map[string]Line, len(raw))
	for k, v := range raw {
		var l Line
		if err := json.Unmarshal(v, &l); err != nil {
			l = Line{}
		}
		lines[k] = l
	}
	return lines, nil
}

func (s *Store) save(lines map[string]Line) error {
	if err := s.scope.Set(SessionKey, lines); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	s.scope.MarkModified()
	return nil
}

// Add puts one more unit of the product in the cart and refreshes its price
// snapshot. It returns the resulting quantity.
func (s *Store) Add(productID int64, unitPrice decimal.Decimal) (int, error) {
	lines, err := s.load()
	if err != nil {
		return 0, err
	}
	k := Key(productID)
	l := lines[k]
	l.Quantity++
	l.Price = unitPrice.StringFixed(2)
	lines[k] = l
	if err := s.save(lines); err != nil {
		return 0, err
	}
	return l.Quantity, nil
}

// Increment adds one unit keeping the stored price. False if absent.
func (s *Store) Increment(productID int64) (bool, error) {
	lines, err := s.load()
	if err != nil {
		return false, err
	}
	k := Key(productID)
	l, ok := lines[k]
	if !ok {
		return false, nil
	}
	l.Quantity++
	lines[k] = l
	return true, s.save(lines)
}

// Decrement removes one unit; the last unit removes the line.
func (s *Store) Decrement(productID int64) (Adjustment, error) {
	lines, err := s.load()
	if err != nil {
		return NotInCart, err
	}
	k := Key(productID)
	l, ok := lines[k]
	if !ok {
		return NotInCart, nil
	}
	res := Decreased
	if l.Quantity > 1 {
		l.Quantity--
		lines[k] = l
	} else {
		delete(lines, k)
		res = Removed
	}
	return res, s.save(lines)
}

// Remove deletes the product's line. False if it was not in the cart.
func (s *Store) Remove(productID int64) (bool, error) {
	return s.Drop(Key(productID))
}

// Drop deletes a line by its raw session key.
func (s *Store) Drop(key string) (bool, error) {
	lines, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := lines[key]; !ok {
		return false, nil
	}
	delete(lines, key)
	return true, s.save(lines)
}

// Enumerate returns a snapshot of the lines ordered by key.
func (s *Store) Enumerate() ([]Entry, error) {
	lines, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(lines))
	for k, l := range lines {
		out = append(out, Entry{Key: k, Line: l})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Store) Len() (int, error) {
	lines, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

func (s *Store) Clear() {
	s.scope.Delete(SessionKey)
	s.scope.MarkModified()
}
