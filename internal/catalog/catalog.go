package catalog

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/aims/storefront/domain"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// Filter narrows a product listing. Zero values match everything.
type Filter struct {
	Types           []domain.ProductType
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Query           string
	IncludeInactive bool
}

// Catalog is the in-memory product store
type Catalog struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func New(products ...domain.Product) *Catalog {
	c := &Catalog{products: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *Catalog) Get(id string) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

// List returns the matching products sorted by name.
func (c *Catalog) List(f Filter) []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	types := make(map[domain.ProductType]bool, len(f.Types))
	for _, t := range f.Types {
		types[t] = true
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if !p.Active && !f.IncludeInactive {
			continue
		}
		if len(types) > 0 && !types[p.Type()] {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if query != "" && !matches(p, query) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetStock replaces the stock level of a product.
func (c *Catalog) SetStock(id string, stock int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock = stock
	c.products[id] = p
	return nil
}

func matches(p domain.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(p.Creator()), query)
}
