package cart

import (
	"fmt"
	"sync"

	"github.com/aims/storefront/domain"
	"github.com/google/uuid"
)

type Notifier interface {
	Notify(severity domain.Severity, message string) string
}

// Store holds the cart lines and the selection set.
// Every mutating call emits exactly one notification and leaves the state untouched on error.
type Store struct {
	mu       sync.RWMutex
	lines    []*domain.CartLineItem
	selected map[string]bool
	notifier Notifier
	newID    func() string
}

func NewStore(notifier Notifier) *Store {
	return &Store{
		selected: make(map[string]bool),
		notifier: notifier,
		newID:    func() string { return "line-" + uuid.NewString() },
	}
}

// AddItem adds quantity units of an active product. A new line is selected by default.
func (s *Store) AddItem(product domain.Product, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !product.Active {
		s.notifier.Notify(domain.SeverityWarning, fmt.Sprintf("%s is no longer available.", product.Name))
		return ErrProductInactive
	}
	if quantity < 1 {
		s.notifier.Notify(domain.SeverityWarning, "Quantity cannot be less than 1.")
		return ErrQuantityBelowOne
	}

	line := s.findLocked(product.ID)
	if line == nil {
		if quantity > product.Stock {
			s.notifier.Notify(domain.SeverityWarning,
				fmt.Sprintf("Only %d items available in stock. Cannot add %d.", product.Stock, quantity))
			return ErrExceedsStock
		}
		item := domain.NewCartLineItem(s.newID(), product, quantity)
		s.lines = append(s.lines, &item)
		s.selected[item.ID] = true
		s.notifier.Notify(domain.SeveritySuccess,
			fmt.Sprintf("Added %d item(s): %s to cart.", quantity, product.Name))
		return nil
	}

	total := line.Quantity + quantity
	if total > product.Stock {
		s.notifier.Notify(domain.SeverityWarning,
			fmt.Sprintf("Cannot add more. Total quantity exceeds stock (%d units available).", product.Stock))
		return ErrExceedsStock
	}
	*line = domain.NewCartLineItem(line.ID, product, total)
	s.notifier.Notify(domain.SeveritySuccess,
		fmt.Sprintf("Added %d item(s): %s to cart.", quantity, product.Name))
	return nil
}

// UpdateQuantity sets the quantity of the line holding productID.
// Removal goes through RemoveItem, never through a zero quantity.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := s.findLocked(productID)
	if line == nil {
		s.notifier.Notify(domain.SeverityError, "Update failed: item is not in the cart.")
		return ErrItemNotFound
	}
	if quantity > line.Product.Stock {
		s.notifier.Notify(domain.SeverityError,
			fmt.Sprintf("Update failed: Only %d items available in stock.", line.Product.Stock))
		return ErrExceedsStock
	}
	if quantity < 1 {
		s.notifier.Notify(domain.SeverityWarning, "Quantity cannot be less than 1. Please use the remove button.")
		return ErrQuantityBelowOne
	}

	*line = domain.NewCartLineItem(line.ID, line.Product, quantity)
	s.notifier.Notify(domain.SeverityInfo,
		fmt.Sprintf("Quantity updated to %d for %s.", quantity, line.Product.Name))
	return nil
}

// RemoveItem deletes the line holding productID and prunes it from the selection.
func (s *Store) RemoveItem(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.lines {
		if l.Product.ID != productID {
			continue
		}
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		delete(s.selected, l.ID)
		s.notifier.Notify(domain.SeveritySuccess, fmt.Sprintf("Removed item: %s from cart.", l.Product.Name))
		return nil
	}
	s.notifier.Notify(domain.SeverityError, "Remove failed: item is not in the cart.")
	return ErrItemNotFound
}

func (s *Store) ToggleSelection(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lineLocked(lineID) == nil {
		s.notifier.Notify(domain.SeverityWarning, "Item is not in the cart.")
		return ErrItemNotFound
	}
	if s.selected[lineID] {
		delete(s.selected, lineID)
		s.notifier.Notify(domain.SeverityInfo, "Item deselected.")
		return nil
	}
	s.selected[lineID] = true
	s.notifier.Notify(domain.SeverityInfo, "Item selected.")
	return nil
}

func (s *Store) SelectAll(selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = make(map[string]bool, len(s.lines))
	if selected {
		for _, l := range s.lines {
			s.selected[l.ID] = true
		}
		s.notifier.Notify(domain.SeverityInfo, "All items selected.")
		return
	}
	s.notifier.Notify(domain.SeverityInfo, "All items deselected.")
}

// RefreshStock replaces the stock of the product snapshot held by the cart.
// It warns when the line now exceeds the stock and stays silent otherwise.
func (s *Store) RefreshStock(productID string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := s.findLocked(productID)
	if line == nil {
		return ErrItemNotFound
	}
	line.Product.Stock = stock
	if line.ExceedsStock() {
		s.notifier.Notify(domain.SeverityWarning,
			fmt.Sprintf("Only %d items of %s left in stock.", stock, line.Product.Name))
	}
	return nil
}

// RemoveLines drops the given lines, typically the ones just paid for.
func (s *Store) RemoveLines(lineIDs []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]bool, len(lineIDs))
	for _, id := range lineIDs {
		drop[id] = true
	}
	kept := s.lines[:0]
	removed := 0
	for _, l := range s.lines {
		if drop[l.ID] {
			delete(s.selected, l.ID)
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.lines = kept
	if removed > 0 {
		s.notifier.Notify(domain.SeverityInfo, fmt.Sprintf("Removed %d purchased item(s) from cart.", removed))
	}
	return removed
}

// HasStockIssue is true iff a selected line asks for more than its product's stock.
func (s *Store) HasStockIssue() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.lines {
		if s.selected[l.ID] && l.ExceedsStock() {
			return true
		}
	}
	return false
}

// Totals aggregates the selected lines only.
func (s *Store) Totals() domain.Totals {
	return domain.SumLines(s.SelectedItems())
}

func (s *Store) Items() []domain.CartLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartLineItem, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, *l)
	}
	return out
}

func (s *Store) SelectedItems() []domain.CartLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartLineItem, 0, len(s.selected))
	for _, l := range s.lines {
		if s.selected[l.ID] {
			out = append(out, *l)
		}
	}
	return out
}

func (s *Store) IsSelected(lineID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[lineID]
}

func (s *Store) findLocked(productID string) *domain.CartLineItem {
	for _, l := range s.lines {
		if l.Product.ID == productID {
			return l
		}
	}
	return nil
}

func (s *Store) lineLocked(lineID string) *domain.CartLineItem {
	for _, l := range s.lines {
		if l.ID == lineID {
			return l
		}
	}
	return nil
}
